package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/linkvaultapp/linkvault-server/internal/http/response"
	"github.com/linkvaultapp/linkvault-server/internal/service"
	"github.com/linkvaultapp/linkvault-server/internal/store"
)

// handleCreateBookmark creates a bookmark. Audio and video bookmarks arrive
// as multipart/form-data carrying the media file under the "file" field;
// everything else is plain JSON.
func (s *Server) handleCreateBookmark(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := getUserID(ctx)

	var req service.CreateBookmarkRequest

	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			response.BadRequest(w, "Invalid or oversized multipart form", s.logger)
			return
		}

		req = service.CreateBookmarkRequest{
			Title:        r.FormValue("title"),
			URL:          r.FormValue("url"),
			Type:         r.FormValue("type"),
			Content:      r.FormValue("content"),
			Description:  r.FormValue("description"),
			CollectionID: r.FormValue("collection_id"),
			Favorite:     r.FormValue("favorite") == "true",
			Tags:         splitTags(r.FormValue("tags")),
		}

		file, header, err := r.FormFile("file")
		if err == nil {
			defer file.Close()
			req.Upload = file
			req.UploadFilename = header.Filename
		}
	} else {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.BadRequest(w, "Invalid request body", s.logger)
			return
		}
	}

	bookmark, err := s.bookmarkService.Create(ctx, userID, req)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Created(w, bookmark, s.logger)
}

// handleListBookmarks returns the user's bookmarks newest-first. Supports
// collection_id, favorite, search, and tag query filters.
func (s *Server) handleListBookmarks(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	filter := store.BookmarkFilter{
		CollectionID: q.Get("collection_id"),
		FavoriteOnly: q.Get("favorite") == "true",
		Search:       q.Get("search"),
		Tag:          q.Get("tag"),
	}

	bookmarks, err := s.bookmarkService.List(ctx, getUserID(ctx), filter)
	if err != nil {
		s.logger.Error("Failed to list bookmarks", "error", err, "user_id", getUserID(ctx))
		response.InternalError(w, "Failed to retrieve bookmarks", s.logger)
		return
	}

	response.Success(w, bookmarks, s.logger)
}

// handleGetBookmark returns a single bookmark by ID.
func (s *Server) handleGetBookmark(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	if id == "" {
		response.BadRequest(w, "Bookmark ID is required", s.logger)
		return
	}

	bookmark, err := s.bookmarkService.Get(ctx, id, getUserID(ctx))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, bookmark, s.logger)
}

// handleUpdateBookmark applies partial changes to a bookmark.
func (s *Server) handleUpdateBookmark(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	var req service.UpdateBookmarkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	bookmark, err := s.bookmarkService.Update(ctx, id, getUserID(ctx), req)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, bookmark, s.logger)
}

// handleDeleteBookmark removes a bookmark and its stored media, if any.
func (s *Server) handleDeleteBookmark(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	if err := s.bookmarkService.Delete(ctx, id, getUserID(ctx)); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.NoContent(w)
}

// handleListTags returns all of the user's tags.
func (s *Server) handleListTags(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	tags, err := s.bookmarkService.ListTags(ctx, getUserID(ctx))
	if err != nil {
		s.logger.Error("Failed to list tags", "error", err, "user_id", getUserID(ctx))
		response.InternalError(w, "Failed to retrieve tags", s.logger)
		return
	}

	response.Success(w, tags, s.logger)
}

// splitTags parses a comma-separated tag list from a form field.
func splitTags(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			tags = append(tags, p)
		}
	}
	return tags
}
