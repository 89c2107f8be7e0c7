package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/linkvaultapp/linkvault-server/internal/domain"
	domainerrors "github.com/linkvaultapp/linkvault-server/internal/errors"
	"github.com/linkvaultapp/linkvault-server/internal/id"
	"github.com/linkvaultapp/linkvault-server/internal/store"
	"github.com/linkvaultapp/linkvault-server/internal/validation"
)

// CollectionService manages a user's collection hierarchy.
type CollectionService struct {
	store     store.Store
	validator *validation.Validator
	logger    *slog.Logger
}

// NewCollectionService creates a new collection service.
func NewCollectionService(store store.Store, validator *validation.Validator, logger *slog.Logger) *CollectionService {
	return &CollectionService{
		store:     store,
		validator: validator,
		logger:    logger,
	}
}

// CreateCollectionRequest contains new collection data.
type CreateCollectionRequest struct {
	Name     string `json:"name" validate:"required,min=1,max=100"`
	ParentID string `json:"parent_id"`
}

// UpdateCollectionRequest contains collection changes. Nil fields are left
// untouched; an empty-string ParentID moves the collection to the root.
type UpdateCollectionRequest struct {
	Name     *string `json:"name" validate:"omitempty,min=1,max=100"`
	ParentID *string `json:"parent_id"`
}

// Create adds a collection for the user, optionally nested under a parent the
// user owns.
func (s *CollectionService) Create(ctx context.Context, userID string, req CreateCollectionRequest) (*domain.Collection, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	if req.ParentID != "" {
		// Parent must exist and belong to the same user.
		if _, err := s.store.GetCollection(ctx, req.ParentID, userID); err != nil {
			if domainerrors.Is(err, store.ErrNotFound) {
				return nil, domainerrors.Validation("parent collection not found")
			}
			return nil, fmt.Errorf("check parent: %w", err)
		}
	}

	coll := &domain.Collection{
		ID:       id.MustGenerate("coll"),
		UserID:   userID,
		Name:     strings.TrimSpace(req.Name),
		ParentID: req.ParentID,
	}
	coll.InitTimestamps()

	if err := s.store.CreateCollection(ctx, coll); err != nil {
		return nil, fmt.Errorf("create collection: %w", err)
	}

	return coll, nil
}

// Get returns one collection owned by the user.
func (s *CollectionService) Get(ctx context.Context, collectionID, userID string) (*domain.Collection, error) {
	coll, err := s.store.GetCollection(ctx, collectionID, userID)
	if err != nil {
		if domainerrors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("collection not found")
		}
		return nil, fmt.Errorf("get collection: %w", err)
	}
	return coll, nil
}

// List returns the user's collections as a forest of nested trees, each node
// carrying its bookmark count.
func (s *CollectionService) List(ctx context.Context, userID string) ([]*domain.Collection, error) {
	flat, err := s.store.ListCollections(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	return domain.BuildCollectionTree(flat), nil
}

// Update renames and/or reparents a collection. Reparenting rejects moves
// that would make the collection its own ancestor.
func (s *CollectionService) Update(ctx context.Context, collectionID, userID string, req UpdateCollectionRequest) (*domain.Collection, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	coll, err := s.Get(ctx, collectionID, userID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		coll.Name = strings.TrimSpace(*req.Name)
	}
	if req.ParentID != nil {
		newParent := *req.ParentID
		if newParent != "" {
			if newParent == collectionID {
				return nil, domainerrors.Validation("collection cannot be its own parent")
			}
			if _, err := s.store.GetCollection(ctx, newParent, userID); err != nil {
				if domainerrors.Is(err, store.ErrNotFound) {
					return nil, domainerrors.Validation("parent collection not found")
				}
				return nil, fmt.Errorf("check parent: %w", err)
			}
			cycle, err := s.wouldCycle(ctx, collectionID, newParent, userID)
			if err != nil {
				return nil, err
			}
			if cycle {
				return nil, domainerrors.Validation("cannot move a collection under its own descendant")
			}
		}
		coll.ParentID = newParent
	}

	coll.Touch()
	if err := s.store.UpdateCollection(ctx, coll); err != nil {
		return nil, fmt.Errorf("update collection: %w", err)
	}
	return coll, nil
}

// Delete removes an empty collection. Collections still holding child
// collections or bookmarks are refused.
func (s *CollectionService) Delete(ctx context.Context, collectionID, userID string) error {
	children, err := s.store.CountCollectionChildren(ctx, collectionID, userID)
	if err != nil {
		return fmt.Errorf("count children: %w", err)
	}
	if children > 0 {
		return domainerrors.Conflict("collection has child collections")
	}

	bookmarks, err := s.store.CountCollectionBookmarks(ctx, collectionID, userID)
	if err != nil {
		return fmt.Errorf("count bookmarks: %w", err)
	}
	if bookmarks > 0 {
		return domainerrors.Conflict("collection still contains bookmarks")
	}

	if err := s.store.DeleteCollection(ctx, collectionID, userID); err != nil {
		if domainerrors.Is(err, store.ErrNotFound) {
			return domainerrors.NotFound("collection not found")
		}
		return fmt.Errorf("delete collection: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("Collection deleted", "collection_id", collectionID, "user_id", userID)
	}
	return nil
}

// wouldCycle reports whether newParent sits inside collectionID's subtree.
// Walks parent pointers from newParent up to the root.
func (s *CollectionService) wouldCycle(ctx context.Context, collectionID, newParent, userID string) (bool, error) {
	current := newParent
	for current != "" {
		if current == collectionID {
			return true, nil
		}
		coll, err := s.store.GetCollection(ctx, current, userID)
		if err != nil {
			if domainerrors.Is(err, store.ErrNotFound) {
				return false, nil
			}
			return false, fmt.Errorf("walk ancestors: %w", err)
		}
		current = coll.ParentID
	}
	return false, nil
}
