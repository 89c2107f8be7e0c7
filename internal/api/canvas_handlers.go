package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/linkvaultapp/linkvault-server/internal/http/response"
	"github.com/linkvaultapp/linkvault-server/internal/service"
)

// handleGetCanvas returns the canvas layout for the collection in the path.
func (s *Server) handleGetCanvas(w http.ResponseWriter, r *http.Request) {
	s.serveCanvas(w, r, chi.URLParam(r, "id"))
}

// handleGetCanvasQuery returns the canvas layout for the collection named by
// the collection_id query parameter.
func (s *Server) handleGetCanvasQuery(w http.ResponseWriter, r *http.Request) {
	s.serveCanvas(w, r, r.URL.Query().Get("collection_id"))
}

func (s *Server) serveCanvas(w http.ResponseWriter, r *http.Request, collectionID string) {
	ctx := r.Context()

	layout, err := s.canvasService.GetLayout(ctx, collectionID, getUserID(ctx))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, layout, s.logger)
}

// handleSaveCanvas replaces a collection's canvas layout wholesale.
func (s *Server) handleSaveCanvas(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req service.SaveCanvasRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	layout, err := s.canvasService.SaveLayout(ctx, getUserID(ctx), req)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, layout, s.logger)
}
