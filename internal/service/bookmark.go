package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/linkvaultapp/linkvault-server/internal/domain"
	domainerrors "github.com/linkvaultapp/linkvault-server/internal/errors"
	"github.com/linkvaultapp/linkvault-server/internal/id"
	"github.com/linkvaultapp/linkvault-server/internal/media"
	"github.com/linkvaultapp/linkvault-server/internal/store"
	"github.com/linkvaultapp/linkvault-server/internal/validation"
)

// BookmarkService manages bookmark CRUD, tagging, and attached media files.
type BookmarkService struct {
	store     store.Store
	media     *media.Storage
	validator *validation.Validator
	logger    *slog.Logger
}

// NewBookmarkService creates a new bookmark service.
func NewBookmarkService(
	store store.Store,
	mediaStorage *media.Storage,
	validator *validation.Validator,
	logger *slog.Logger,
) *BookmarkService {
	return &BookmarkService{
		store:     store,
		media:     mediaStorage,
		validator: validator,
		logger:    logger,
	}
}

// CreateBookmarkRequest contains new bookmark data.
type CreateBookmarkRequest struct {
	Title        string   `json:"title" validate:"max=255"`
	URL          string   `json:"url" validate:"omitempty,url"`
	Type         string   `json:"type" validate:"required,oneof=link text image audio video"`
	Content      string   `json:"content"`
	Description  string   `json:"description" validate:"max=2000"`
	CollectionID string   `json:"collection_id"`
	Favorite     bool     `json:"favorite"`
	Tags         []string `json:"tags"`

	// Upload carries the media file for audio/video bookmarks. Populated by
	// the handler from the multipart form, never from JSON.
	Upload         io.Reader `json:"-"`
	UploadFilename string    `json:"-"`
}

// UpdateBookmarkRequest contains bookmark changes. Nil fields are left
// untouched; a request with every field nil is rejected. A non-nil Tags
// replaces the tag set wholesale.
type UpdateBookmarkRequest struct {
	Title        *string   `json:"title" validate:"omitempty,max=255"`
	URL          *string   `json:"url" validate:"omitempty,url"`
	Type         *string   `json:"type" validate:"omitempty,oneof=link text image audio video"`
	Content      *string   `json:"content"`
	Description  *string   `json:"description" validate:"omitempty,max=2000"`
	CollectionID *string   `json:"collection_id"`
	Favorite     *bool     `json:"favorite"`
	Tags         *[]string `json:"tags"`
}

// empty reports whether the patch carries no changes at all.
func (r UpdateBookmarkRequest) empty() bool {
	return r.Title == nil && r.URL == nil && r.Type == nil && r.Content == nil &&
		r.Description == nil && r.CollectionID == nil && r.Favorite == nil && r.Tags == nil
}

// Create adds a bookmark for the user. Audio and video bookmarks must carry
// an upload, which is stored and referenced from the content field. A blank
// title falls back to the URL's hostname.
func (s *BookmarkService) Create(ctx context.Context, userID string, req CreateBookmarkRequest) (*domain.Bookmark, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	bmType := domain.BookmarkType(req.Type)

	if req.CollectionID != "" {
		if _, err := s.store.GetCollection(ctx, req.CollectionID, userID); err != nil {
			if domainerrors.Is(err, store.ErrNotFound) {
				return nil, domainerrors.Validation("collection not found")
			}
			return nil, fmt.Errorf("check collection: %w", err)
		}
	}

	if bmType.IsMedia() && req.Upload == nil {
		return nil, domainerrors.Validationf("%s bookmarks require a media upload", req.Type)
	}

	title := domain.TitleOrHostname(strings.TrimSpace(req.Title), req.URL)
	if title == "" && bmType.IsMedia() {
		title = req.UploadFilename
	}
	if title == "" {
		return nil, domainerrors.Validation("title is required")
	}

	content := req.Content
	if bmType.IsMedia() {
		filename, err := s.media.Save(userID, req.UploadFilename, req.Type, req.Upload)
		if err != nil {
			return nil, err
		}
		content = filename
	}

	bm := &domain.Bookmark{
		ID:           id.MustGenerate("bm"),
		UserID:       userID,
		CollectionID: req.CollectionID,
		Title:        title,
		URL:          req.URL,
		Type:         bmType,
		Content:      content,
		Description:  strings.TrimSpace(req.Description),
		Favorite:     req.Favorite,
	}
	bm.InitTimestamps()

	if err := s.store.CreateBookmark(ctx, bm); err != nil {
		if bmType.IsMedia() {
			_ = s.media.Delete(content)
		}
		return nil, fmt.Errorf("create bookmark: %w", err)
	}

	if err := s.store.SetBookmarkTags(ctx, bm.ID, userID, normalizeTags(req.Tags)); err != nil {
		return nil, fmt.Errorf("set tags: %w", err)
	}

	return s.Get(ctx, bm.ID, userID)
}

// Get returns one bookmark owned by the user, tags and collection name
// included.
func (s *BookmarkService) Get(ctx context.Context, bookmarkID, userID string) (*domain.Bookmark, error) {
	bm, err := s.store.GetBookmark(ctx, bookmarkID, userID)
	if err != nil {
		if domainerrors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("bookmark not found")
		}
		return nil, fmt.Errorf("get bookmark: %w", err)
	}
	return bm, nil
}

// List returns the user's bookmarks newest-first, narrowed by the filter.
func (s *BookmarkService) List(ctx context.Context, userID string, filter store.BookmarkFilter) ([]*domain.Bookmark, error) {
	bookmarks, err := s.store.ListBookmarks(ctx, userID, filter)
	if err != nil {
		return nil, fmt.Errorf("list bookmarks: %w", err)
	}
	if bookmarks == nil {
		bookmarks = []*domain.Bookmark{}
	}
	return bookmarks, nil
}

// Update applies partial changes to a bookmark the user owns. At least one
// field must be present.
func (s *BookmarkService) Update(ctx context.Context, bookmarkID, userID string, req UpdateBookmarkRequest) (*domain.Bookmark, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if req.empty() {
		return nil, domainerrors.Validation("no fields to update")
	}

	bm, err := s.Get(ctx, bookmarkID, userID)
	if err != nil {
		return nil, err
	}

	if req.Type != nil {
		newType := domain.BookmarkType(*req.Type)
		// Media content points at a stored file, so a bookmark cannot change
		// into or out of a media type; re-upload as a new bookmark instead.
		if newType != bm.Type && (bm.Type.IsMedia() || newType.IsMedia()) {
			return nil, domainerrors.Validation("cannot change a bookmark into or out of a media type")
		}
		bm.Type = newType
	}
	if req.Title != nil {
		bm.Title = domain.TitleOrHostname(strings.TrimSpace(*req.Title), bm.URL)
		if bm.Title == "" {
			return nil, domainerrors.Validation("title is required")
		}
	}
	if req.URL != nil {
		bm.URL = *req.URL
	}
	if req.Content != nil && !bm.Type.IsMedia() {
		// Media content is not client-editable.
		bm.Content = *req.Content
	}
	if req.Description != nil {
		bm.Description = strings.TrimSpace(*req.Description)
	}
	if req.CollectionID != nil {
		if *req.CollectionID != "" {
			if _, err := s.store.GetCollection(ctx, *req.CollectionID, userID); err != nil {
				if domainerrors.Is(err, store.ErrNotFound) {
					return nil, domainerrors.Validation("collection not found")
				}
				return nil, fmt.Errorf("check collection: %w", err)
			}
		}
		bm.CollectionID = *req.CollectionID
	}
	if req.Favorite != nil {
		bm.Favorite = *req.Favorite
	}

	bm.Touch()
	if err := s.store.UpdateBookmark(ctx, bm); err != nil {
		return nil, fmt.Errorf("update bookmark: %w", err)
	}

	if req.Tags != nil {
		if err := s.store.SetBookmarkTags(ctx, bm.ID, userID, normalizeTags(*req.Tags)); err != nil {
			return nil, fmt.Errorf("set tags: %w", err)
		}
	}

	return s.Get(ctx, bm.ID, userID)
}

// Delete removes a bookmark the user owns, deleting its stored media file
// when it has one.
func (s *BookmarkService) Delete(ctx context.Context, bookmarkID, userID string) error {
	bm, err := s.Get(ctx, bookmarkID, userID)
	if err != nil {
		return err
	}

	if err := s.store.DeleteBookmark(ctx, bookmarkID, userID); err != nil {
		return fmt.Errorf("delete bookmark: %w", err)
	}

	if bm.Type.IsMedia() && bm.Content != "" {
		if err := s.media.Delete(bm.Content); err != nil && s.logger != nil {
			s.logger.Warn("Failed to delete media file",
				"bookmark_id", bookmarkID,
				"file", bm.Content,
				"error", err,
			)
		}
	}
	return nil
}

// MediaReferenced reports whether a stored media filename is the content of
// one of the user's bookmarks. Orphaned files stop being servable once their
// bookmark is gone.
func (s *BookmarkService) MediaReferenced(ctx context.Context, userID, filename string) (bool, error) {
	ok, err := s.store.BookmarkContentExists(ctx, userID, filename)
	if err != nil {
		return false, fmt.Errorf("check media reference: %w", err)
	}
	return ok, nil
}

// ListTags returns all of the user's tags.
func (s *BookmarkService) ListTags(ctx context.Context, userID string) ([]*domain.Tag, error) {
	tags, err := s.store.ListTags(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	if tags == nil {
		tags = []*domain.Tag{}
	}
	return tags, nil
}

// normalizeTags trims whitespace, drops empties and control characters, and
// truncates overlong names.
func normalizeTags(names []string) []string {
	out := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		name = strings.Map(func(r rune) rune {
			if r < 0x20 || r == 0x7f {
				return -1
			}
			return r
		}, name)
		if name == "" {
			continue
		}
		if len(name) > domain.TagMaxLength {
			name = name[:domain.TagMaxLength]
		}
		out = append(out, name)
	}
	return out
}
