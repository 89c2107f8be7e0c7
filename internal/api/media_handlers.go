package api

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/linkvaultapp/linkvault-server/internal/http/response"
	"github.com/linkvaultapp/linkvault-server/internal/media"
)

// CacheOneYear is the Cache-Control value for stored media. Filenames embed
// a timestamp and nonce, so content under a given name never changes.
const CacheOneYear = "public, max-age=31536000"

// handleServeMedia streams a stored media file with HTTP Range support for
// seeking. Only the uploader may fetch their files, and only while a bookmark
// of theirs still references the file.
func (s *Server) handleServeMedia(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := getUserID(ctx)
	filename := chi.URLParam(r, "filename")

	if filename == "" {
		response.BadRequest(w, "Filename is required", s.logger)
		return
	}

	// Ownership is encoded in the filename prefix.
	if media.OwnerFromFilename(filename) != userID {
		response.Forbidden(w, "You do not have access to this file", s.logger)
		return
	}

	referenced, err := s.bookmarkService.MediaReferenced(ctx, userID, filename)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	if !referenced {
		response.NotFound(w, "File not found", s.logger)
		return
	}

	file, info, err := s.mediaStorage.Open(filename)
	if err != nil {
		response.NotFound(w, "File not found", s.logger)
		return
	}
	defer file.Close()

	// Re-sniff on the way out in case the file was tampered with on disk.
	buf := make([]byte, 512)
	n, err := file.Read(buf)
	if err != nil && err != io.EOF {
		response.InternalError(w, "Failed to read file", s.logger)
		return
	}
	if !media.SniffAllowed(http.DetectContentType(buf[:n])) {
		response.Forbidden(w, "File content is not servable", s.logger)
		return
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		response.InternalError(w, "Failed to read file", s.logger)
		return
	}

	if contentType := media.ContentTypeForFilename(filename); contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}
	w.Header().Set("Cache-Control", CacheOneYear)

	// ServeContent handles Range requests, Content-Length, and
	// Last-Modified based caching.
	http.ServeContent(w, r, info.Name(), info.ModTime(), file)
}
