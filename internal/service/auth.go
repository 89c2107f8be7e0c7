package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/linkvaultapp/linkvault-server/internal/auth"
	"github.com/linkvaultapp/linkvault-server/internal/domain"
	domainerrors "github.com/linkvaultapp/linkvault-server/internal/errors"
	"github.com/linkvaultapp/linkvault-server/internal/id"
	"github.com/linkvaultapp/linkvault-server/internal/ratelimit"
	"github.com/linkvaultapp/linkvault-server/internal/store"
	"github.com/linkvaultapp/linkvault-server/internal/validation"
)

// AuthService handles account creation, login, and token verification.
// Session lifecycle is delegated to SessionService.
type AuthService struct {
	store          store.Store
	tokenService   *auth.TokenService
	sessionService *SessionService
	lockout        *ratelimit.Lockout
	validator      *validation.Validator
	logger         *slog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(
	store store.Store,
	tokenService *auth.TokenService,
	sessionService *SessionService,
	lockout *ratelimit.Lockout,
	validator *validation.Validator,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		store:          store,
		tokenService:   tokenService,
		sessionService: sessionService,
		lockout:        lockout,
		validator:      validator,
		logger:         logger,
	}
}

// SignupRequest contains new account data.
type SignupRequest struct {
	Username        string `json:"username" validate:"required,min=3,max=50"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=8,max=1024,specialchar"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
}

// LoginRequest contains user credentials.
type LoginRequest struct {
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required"`
	ClientName string `json:"client_name"`
	IPAddress  string `json:"-"` // Extracted from request by handler
}

// RefreshRequest contains the refresh token presented for rotation.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
	IPAddress    string `json:"-"` // Extracted from request by handler
}

// AuthResponse contains authentication tokens and user data.
type AuthResponse struct {
	User *domain.User `json:"user"`
	SessionResponse
}

// Signup creates a new account plus its default collection, and logs the
// user straight in.
func (s *AuthService) Signup(ctx context.Context, req SignupRequest) (*AuthResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	userID, err := id.Generate("user")
	if err != nil {
		return nil, fmt.Errorf("generate user ID: %w", err)
	}

	user := &domain.User{
		ID:           userID,
		Username:     strings.TrimSpace(req.Username),
		Email:        strings.TrimSpace(req.Email),
		PasswordHash: passwordHash,
		LastLoginAt:  time.Now(),
	}
	user.InitTimestamps()

	if err := s.store.CreateUser(ctx, user); err != nil {
		if domainerrors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.AlreadyExists("username or email already in use")
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	// Every account starts with an unsorted default collection.
	defaultColl := &domain.Collection{
		ID:     id.MustGenerate("coll"),
		UserID: userID,
		Name:   domain.DefaultCollectionName,
	}
	defaultColl.InitTimestamps()
	if err := s.store.CreateCollection(ctx, defaultColl); err != nil {
		return nil, fmt.Errorf("create default collection: %w", err)
	}

	sessionResp, err := s.sessionService.CreateSession(ctx, user, "", "")
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("User signed up",
			"user_id", userID,
			"username", user.Username,
		)
	}

	return &AuthResponse{
		User:            user,
		SessionResponse: *sessionResp,
	}, nil
}

// Login authenticates a user and creates a new session. Failed attempts count
// toward a per-email lockout; a locked email is refused before credentials
// are even checked.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	lockoutKey := strings.ToLower(strings.TrimSpace(req.Email))
	if s.lockout.Locked(lockoutKey) {
		return nil, domainerrors.RateLimited("too many failed attempts, try again later")
	}

	user, err := s.store.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if domainerrors.Is(err, store.ErrNotFound) {
			// Unknown emails burn an attempt too, so probing is as
			// costly as guessing passwords.
			s.lockout.RecordFailure(lockoutKey)
			return nil, domainerrors.InvalidCredentials("invalid email or password")
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	valid, err := auth.VerifyPassword(user.PasswordHash, req.Password)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !valid {
		locked := s.lockout.RecordFailure(lockoutKey)
		if locked && s.logger != nil {
			s.logger.Warn("Login lockout tripped", "email", lockoutKey)
		}
		return nil, domainerrors.InvalidCredentials("invalid email or password")
	}

	s.lockout.Reset(lockoutKey)

	user.LastLoginAt = time.Now()
	user.Touch()
	if err := s.store.UpdateUser(ctx, user); err != nil {
		if s.logger != nil {
			s.logger.Warn("Failed to update last login time",
				"user_id", user.ID,
				"error", err,
			)
		}
	}

	sessionResp, err := s.sessionService.CreateSession(ctx, user, req.ClientName, req.IPAddress)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("User logged in", "user_id", user.ID)
	}

	return &AuthResponse{
		User:            user,
		SessionResponse: *sessionResp,
	}, nil
}

// RefreshTokens generates new tokens using a refresh token.
// The old refresh token is invalidated (token rotation).
func (s *AuthService) RefreshTokens(ctx context.Context, req RefreshRequest) (*AuthResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	sessionResp, user, err := s.sessionService.RefreshSession(ctx, req.RefreshToken, req.IPAddress)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{
		User:            user,
		SessionResponse: *sessionResp,
	}, nil
}

// Logout revokes a session, invalidating its refresh token.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	return s.sessionService.DeleteSession(ctx, sessionID)
}

// VerifyAccessToken validates a token and returns the associated user.
// Used by authentication middleware.
func (s *AuthService) VerifyAccessToken(ctx context.Context, tokenString string) (*domain.User, *auth.AccessClaims, error) {
	claims, err := s.tokenService.VerifyAccessToken(tokenString)
	if err != nil {
		return nil, nil, domainerrors.Unauthorized("invalid token").WithCause(err)
	}

	user, err := s.store.GetUser(ctx, claims.UserID)
	if err != nil {
		if domainerrors.Is(err, store.ErrNotFound) {
			return nil, nil, domainerrors.Unauthorized("user not found")
		}
		return nil, nil, fmt.Errorf("get user: %w", err)
	}

	return user, claims, nil
}

// LookupHeaderIdentity resolves the weak header identity (user ID plus email)
// to a user. Both values must match the same account.
func (s *AuthService) LookupHeaderIdentity(ctx context.Context, userID, email string) (*domain.User, error) {
	if userID == "" || email == "" {
		return nil, domainerrors.Unauthorized("missing credentials")
	}

	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		if domainerrors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.Unauthorized("invalid credentials")
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	if !strings.EqualFold(strings.TrimSpace(email), user.Email) {
		return nil, domainerrors.Unauthorized("invalid credentials")
	}
	return user, nil
}
