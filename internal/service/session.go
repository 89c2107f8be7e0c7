package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/linkvaultapp/linkvault-server/internal/auth"
	"github.com/linkvaultapp/linkvault-server/internal/domain"
	domainerrors "github.com/linkvaultapp/linkvault-server/internal/errors"
	"github.com/linkvaultapp/linkvault-server/internal/id"
	"github.com/linkvaultapp/linkvault-server/internal/store"
)

// SessionService owns the session lifecycle: issuing token pairs on login,
// rotating refresh tokens, and cleaning up expired rows.
type SessionService struct {
	store        store.Store
	tokenService *auth.TokenService
	logger       *slog.Logger
}

func NewSessionService(
	store store.Store,
	tokenService *auth.TokenService,
	logger *slog.Logger,
) *SessionService {
	return &SessionService{
		store:        store,
		tokenService: tokenService,
		logger:       logger,
	}
}

// SessionResponse is the token pair handed to clients.
type SessionResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"` // seconds until the access token expires
	SessionID    string `json:"session_id"`
}

// CreateSession issues a fresh token pair and records the session.
func (s *SessionService) CreateSession(
	ctx context.Context,
	user *domain.User,
	clientName string,
	ipAddress string,
) (*SessionResponse, error) {
	sessionID, err := id.Generate("session")
	if err != nil {
		return nil, fmt.Errorf("generate session ID: %w", err)
	}

	accessToken, refreshToken, err := s.issueTokens(user)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	session := &domain.Session{
		ID:               sessionID,
		UserID:           user.ID,
		RefreshTokenHash: auth.HashRefreshToken(refreshToken),
		ClientName:       clientName,
		IPAddress:        ipAddress,
		CreatedAt:        now,
		LastSeenAt:       now,
		ExpiresAt:        now.Add(s.tokenService.RefreshTokenDuration()),
	}

	if err := s.store.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	return s.respond(sessionID, accessToken, refreshToken), nil
}

// RefreshSession exchanges a valid refresh token for a new token pair.
// The presented token is consumed: its hash is replaced by the new one, so
// a replayed old token fails the lookup.
func (s *SessionService) RefreshSession(
	ctx context.Context,
	refreshToken string,
	ipAddress string,
) (*SessionResponse, *domain.User, error) {
	session, err := s.store.GetSessionByRefreshToken(ctx, auth.HashRefreshToken(refreshToken))
	if err != nil {
		return nil, nil, domainerrors.TokenExpired("invalid or expired refresh token").WithCause(err)
	}

	if session.IsExpired() {
		_ = s.store.DeleteSession(ctx, session.ID)
		return nil, nil, domainerrors.TokenExpired("invalid or expired refresh token")
	}

	user, err := s.store.GetUser(ctx, session.UserID)
	if err != nil {
		// Account gone; the session has nothing left to refresh for.
		_ = s.store.DeleteSession(ctx, session.ID)
		return nil, nil, domainerrors.NotFound("user not found").WithCause(err)
	}

	accessToken, newRefreshToken, err := s.issueTokens(user)
	if err != nil {
		return nil, nil, err
	}

	session.RefreshTokenHash = auth.HashRefreshToken(newRefreshToken)
	session.LastSeenAt = time.Now()
	if ipAddress != "" {
		session.IPAddress = ipAddress
	}

	if err := s.store.UpdateSession(ctx, session); err != nil {
		return nil, nil, fmt.Errorf("update session: %w", err)
	}

	return s.respond(session.ID, accessToken, newRefreshToken), user, nil
}

func (s *SessionService) issueTokens(user *domain.User) (access, refresh string, err error) {
	if access, err = s.tokenService.GenerateAccessToken(user); err != nil {
		return "", "", fmt.Errorf("generate access token: %w", err)
	}
	if refresh, err = s.tokenService.GenerateRefreshToken(); err != nil {
		return "", "", fmt.Errorf("generate refresh token: %w", err)
	}
	return access, refresh, nil
}

func (s *SessionService) respond(sessionID, accessToken, refreshToken string) *SessionResponse {
	return &SessionResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int(s.tokenService.AccessTokenDuration().Seconds()),
		SessionID:    sessionID,
	}
}

// DeleteSession ends a session (logout).
func (s *SessionService) DeleteSession(ctx context.Context, sessionID string) error {
	if err := s.store.DeleteSession(ctx, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("Session deleted", "session_id", sessionID)
	}

	return nil
}

// DeleteExpiredSessions removes expired rows; run periodically.
func (s *SessionService) DeleteExpiredSessions(ctx context.Context) (int, error) {
	count, err := s.store.DeleteExpiredSessions(ctx)
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}

	if s.logger != nil && count > 0 {
		s.logger.Info("Deleted expired sessions", "count", count)
	}

	return count, nil
}
