package api

import (
	"encoding/json"
	"net/http"

	"github.com/linkvaultapp/linkvault-server/internal/http/response"
	"github.com/linkvaultapp/linkvault-server/internal/service"
)

// LogoutRequest is the request body for logout.
type LogoutRequest struct {
	SessionID string `json:"session_id"`
}

// handleSignup creates a new account and logs it straight in.
func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req service.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	resp, err := s.authService.Signup(r.Context(), req)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Created(w, resp, s.logger)
}

// handleLogin authenticates a user and returns tokens.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req service.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}
	req.IPAddress = getClientIP(r)

	resp, err := s.authService.Login(r.Context(), req)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, resp, s.logger)
}

// handleRefresh exchanges a refresh token for new tokens.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req service.RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}
	req.IPAddress = getClientIP(r)

	resp, err := s.authService.RefreshTokens(r.Context(), req)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, resp, s.logger)
}

// handleLogout revokes the named session.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	var req LogoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	if req.SessionID == "" {
		response.BadRequest(w, "Session ID is required", s.logger)
		return
	}

	if err := s.authService.Logout(r.Context(), req.SessionID); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.SuccessMessage(w, nil, "Logged out successfully", s.logger)
}

// handleAuthCheck reports the resolved identity. Useful for clients probing
// whether their stored credentials still work.
func (s *Server) handleAuthCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	response.Success(w, map[string]string{
		"user_id": getUserID(ctx),
		"email":   getEmail(ctx),
	}, s.logger)
}
