package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/linkvaultapp/linkvault-server/internal/domain"
	domainerrors "github.com/linkvaultapp/linkvault-server/internal/errors"
	"github.com/linkvaultapp/linkvault-server/internal/store"
	"github.com/linkvaultapp/linkvault-server/internal/validation"
)

// CanvasService manages per-collection canvas diagrams.
type CanvasService struct {
	store     store.Store
	validator *validation.Validator
	logger    *slog.Logger
}

// NewCanvasService creates a new canvas service.
func NewCanvasService(store store.Store, validator *validation.Validator, logger *slog.Logger) *CanvasService {
	return &CanvasService{
		store:     store,
		validator: validator,
		logger:    logger,
	}
}

// SaveCanvasRequest is the full diagram state submitted for one collection.
type SaveCanvasRequest struct {
	CollectionID string                    `json:"collection_id" validate:"required"`
	Positions    []domain.CanvasPosition   `json:"positions"`
	Connections  []domain.CanvasConnection `json:"connections"`
}

// GetLayout returns the saved diagram for a collection the user owns. A
// collection with no saved diagram yields an empty layout.
func (s *CanvasService) GetLayout(ctx context.Context, collectionID, userID string) (*domain.CanvasLayout, error) {
	if collectionID == "" {
		return nil, domainerrors.Validation("collection_id is required")
	}

	layout, err := s.store.GetCanvasLayout(ctx, collectionID, userID)
	if err != nil {
		if domainerrors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("collection not found")
		}
		return nil, fmt.Errorf("get canvas layout: %w", err)
	}
	return layout, nil
}

// SaveLayout replaces the collection's diagram wholesale. Items referencing
// bookmarks the user does not own are dropped silently; everything else is
// saved atomically.
func (s *CanvasService) SaveLayout(ctx context.Context, userID string, req SaveCanvasRequest) (*domain.CanvasLayout, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	layout := &domain.CanvasLayout{
		CollectionID: req.CollectionID,
		Positions:    req.Positions,
		Connections:  req.Connections,
	}
	if err := s.store.ReplaceCanvasLayout(ctx, layout, userID); err != nil {
		if domainerrors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("collection not found")
		}
		return nil, fmt.Errorf("save canvas layout: %w", err)
	}

	return s.GetLayout(ctx, req.CollectionID, userID)
}
