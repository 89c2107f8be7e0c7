package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/linkvaultapp/linkvault-server/internal/domain"
	"github.com/linkvaultapp/linkvault-server/internal/http/response"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	contextKeyUserID    contextKey = "user_id"
	contextKeyEmail     contextKey = "email"
	contextKeySessionID contextKey = "session_id"
)

// requireAuth is middleware that resolves the caller's identity and attaches
// it to the request context. Three schemes are accepted, strongest first:
//
//  1. Authorization: Bearer <access token>
//  2. X-User-ID and X-User-Email headers
//  3. user_id and user_email query parameters
//
// The header and query schemes exist for browser-extension and direct-link
// clients that cannot attach an Authorization header.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, sessionID, err := s.resolveIdentity(r)
		if err != nil {
			response.Unauthorized(w, "Authentication required", s.logger)
			return
		}

		ctx := context.WithValue(r.Context(), contextKeyUserID, user.ID)
		ctx = context.WithValue(ctx, contextKeyEmail, user.Email)
		if sessionID != "" {
			ctx = context.WithValue(ctx, contextKeySessionID, sessionID)
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// resolveIdentity tries each authentication scheme in order. The session ID
// is only known for token auth.
func (s *Server) resolveIdentity(r *http.Request) (*domain.User, string, error) {
	ctx := r.Context()

	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			return nil, "", errInvalidAuthHeader
		}
		user, claims, err := s.authService.VerifyAccessToken(ctx, parts[1])
		if err != nil {
			return nil, "", err
		}
		return user, claims.TokenID, nil
	}

	if userID := r.Header.Get("X-User-ID"); userID != "" {
		user, err := s.authService.LookupHeaderIdentity(ctx, userID, r.Header.Get("X-User-Email"))
		if err != nil {
			return nil, "", err
		}
		return user, "", nil
	}

	if userID := r.URL.Query().Get("user_id"); userID != "" {
		user, err := s.authService.LookupHeaderIdentity(ctx, userID, r.URL.Query().Get("user_email"))
		if err != nil {
			return nil, "", err
		}
		return user, "", nil
	}

	return nil, "", errNoCredentials
}

// getUserID extracts the authenticated user ID from request context.
// Returns empty string if not authenticated.
func getUserID(ctx context.Context) string {
	if userID, ok := ctx.Value(contextKeyUserID).(string); ok {
		return userID
	}
	return ""
}

// getEmail extracts the authenticated user email from request context.
// Returns empty string if not authenticated.
func getEmail(ctx context.Context) string {
	if email, ok := ctx.Value(contextKeyEmail).(string); ok {
		return email
	}
	return ""
}

// getSessionID extracts the session ID from request context.
// Returns empty string if not available.
func getSessionID(ctx context.Context) string {
	if sessionID, ok := ctx.Value(contextKeySessionID).(string); ok {
		return sessionID
	}
	return ""
}
