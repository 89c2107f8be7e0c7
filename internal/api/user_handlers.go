package api

import (
	"net/http"

	"github.com/linkvaultapp/linkvault-server/internal/http/response"
)

// handleGetCurrentUser returns the authenticated user's account.
func (s *Server) handleGetCurrentUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, err := s.authService.LookupHeaderIdentity(ctx, getUserID(ctx), getEmail(ctx))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, user, s.logger)
}
