package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/linkvaultapp/linkvault-server/internal/http/response"
	"github.com/linkvaultapp/linkvault-server/internal/service"
)

// handleCreateCollection creates a new collection.
func (s *Server) handleCreateCollection(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := getUserID(ctx)

	var req service.CreateCollectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	collection, err := s.collectionService.Create(ctx, userID, req)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Created(w, collection, s.logger)
}

// handleListCollections returns the user's collections as nested trees.
func (s *Server) handleListCollections(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	collections, err := s.collectionService.List(ctx, getUserID(ctx))
	if err != nil {
		s.logger.Error("Failed to list collections", "error", err, "user_id", getUserID(ctx))
		response.InternalError(w, "Failed to retrieve collections", s.logger)
		return
	}

	response.Success(w, collections, s.logger)
}

// handleGetCollection returns a single collection by ID.
func (s *Server) handleGetCollection(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	if id == "" {
		response.BadRequest(w, "Collection ID is required", s.logger)
		return
	}

	collection, err := s.collectionService.Get(ctx, id, getUserID(ctx))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, collection, s.logger)
}

// handleUpdateCollection renames and/or reparents a collection.
func (s *Server) handleUpdateCollection(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	var req service.UpdateCollectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	collection, err := s.collectionService.Update(ctx, id, getUserID(ctx), req)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, collection, s.logger)
}

// handleDeleteCollection removes an empty collection.
func (s *Server) handleDeleteCollection(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	if err := s.collectionService.Delete(ctx, id, getUserID(ctx)); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.NoContent(w)
}
