package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/linkvaultapp/linkvault-server/internal/auth"
	domainerrors "github.com/linkvaultapp/linkvault-server/internal/errors"
	"github.com/linkvaultapp/linkvault-server/internal/ratelimit"
	"github.com/linkvaultapp/linkvault-server/internal/store/sqlite"
	"github.com/linkvaultapp/linkvault-server/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupAuthTest creates services with temporary storage for testing.
func setupAuthTest(t *testing.T) (*AuthService, *CollectionService) {
	t.Helper()

	tmpDir := t.TempDir()
	s, err := sqlite.Open(filepath.Join(tmpDir, "test.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	authKey, err := auth.LoadOrGenerateKey(tmpDir)
	require.NoError(t, err)

	tokenService, err := auth.NewTokenService(authKey, 15*time.Minute, 30*24*time.Hour)
	require.NoError(t, err)

	validator := validation.New()
	lockout := ratelimit.NewLockout(5, 5*time.Minute)
	sessionService := NewSessionService(s, tokenService, nil)
	authService := NewAuthService(s, tokenService, sessionService, lockout, validator, nil)
	collectionService := NewCollectionService(s, validator, nil)

	return authService, collectionService
}

func validSignup() SignupRequest {
	return SignupRequest{
		Username:        "alice",
		Email:           "alice@example.com",
		Password:        "hunter2!secure",
		ConfirmPassword: "hunter2!secure",
	}
}

func TestAuthService_Signup_Success(t *testing.T) {
	authService, collectionService := setupAuthTest(t)
	ctx := context.Background()

	resp, err := authService.Signup(ctx, validSignup())
	require.NoError(t, err)
	require.NotNil(t, resp)

	assert.Equal(t, "alice", resp.User.Username)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "Bearer", resp.TokenType)

	// Signup seeds a default collection.
	colls, err := collectionService.List(ctx, resp.User.ID)
	require.NoError(t, err)
	require.Len(t, colls, 1)
	assert.Equal(t, "Unsorted", colls[0].Name)
}

func TestAuthService_Signup_Validation(t *testing.T) {
	authService, _ := setupAuthTest(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*SignupRequest)
	}{
		{"short username", func(r *SignupRequest) { r.Username = "al" }},
		{"bad email", func(r *SignupRequest) { r.Email = "nope" }},
		{"short password", func(r *SignupRequest) {
			r.Password = "a!b"
			r.ConfirmPassword = "a!b"
		}},
		{"no special char", func(r *SignupRequest) {
			r.Password = "password1234"
			r.ConfirmPassword = "password1234"
		}},
		{"confirmation mismatch", func(r *SignupRequest) { r.ConfirmPassword = "different!1234" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validSignup()
			tt.mutate(&req)

			_, err := authService.Signup(ctx, req)
			assert.ErrorIs(t, err, domainerrors.ErrValidation)
		})
	}
}

func TestAuthService_Signup_Duplicate(t *testing.T) {
	authService, _ := setupAuthTest(t)
	ctx := context.Background()

	_, err := authService.Signup(ctx, validSignup())
	require.NoError(t, err)

	dup := validSignup()
	dup.Username = "alice2"
	// Same email, different casing.
	dup.Email = "ALICE@example.com"
	_, err = authService.Signup(ctx, dup)
	assert.ErrorIs(t, err, domainerrors.ErrAlreadyExists)
}

func TestAuthService_Login_Success(t *testing.T) {
	authService, _ := setupAuthTest(t)
	ctx := context.Background()

	_, err := authService.Signup(ctx, validSignup())
	require.NoError(t, err)

	resp, err := authService.Login(ctx, LoginRequest{
		Email:    "alice@example.com",
		Password: "hunter2!secure",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.False(t, resp.User.LastLoginAt.IsZero())
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	authService, _ := setupAuthTest(t)
	ctx := context.Background()

	_, err := authService.Signup(ctx, validSignup())
	require.NoError(t, err)

	_, err = authService.Login(ctx, LoginRequest{
		Email:    "alice@example.com",
		Password: "wrong!password",
	})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)
}

func TestAuthService_Login_UnknownEmailSameError(t *testing.T) {
	authService, _ := setupAuthTest(t)

	// Unknown email and wrong password are indistinguishable to callers.
	_, err := authService.Login(context.Background(), LoginRequest{
		Email:    "ghost@example.com",
		Password: "whatever!123",
	})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)
}

func TestAuthService_Login_Lockout(t *testing.T) {
	authService, _ := setupAuthTest(t)
	ctx := context.Background()

	_, err := authService.Signup(ctx, validSignup())
	require.NoError(t, err)

	bad := LoginRequest{Email: "alice@example.com", Password: "wrong!password"}
	for i := 0; i < 5; i++ {
		_, err := authService.Login(ctx, bad)
		assert.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)
	}

	// Even the correct password is refused while locked.
	_, err = authService.Login(ctx, LoginRequest{
		Email:    "alice@example.com",
		Password: "hunter2!secure",
	})
	assert.ErrorIs(t, err, domainerrors.ErrRateLimited)
}

func TestAuthService_Login_LockoutResetOnSuccess(t *testing.T) {
	authService, _ := setupAuthTest(t)
	ctx := context.Background()

	_, err := authService.Signup(ctx, validSignup())
	require.NoError(t, err)

	bad := LoginRequest{Email: "alice@example.com", Password: "wrong!password"}
	good := LoginRequest{Email: "alice@example.com", Password: "hunter2!secure"}

	for i := 0; i < 4; i++ {
		_, _ = authService.Login(ctx, bad)
	}
	_, err = authService.Login(ctx, good)
	require.NoError(t, err)

	// The successful login cleared the counter; four more failures don't lock.
	for i := 0; i < 4; i++ {
		_, err = authService.Login(ctx, bad)
		assert.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)
	}
}

func TestAuthService_RefreshTokens_Rotation(t *testing.T) {
	authService, _ := setupAuthTest(t)
	ctx := context.Background()

	signup, err := authService.Signup(ctx, validSignup())
	require.NoError(t, err)

	refreshed, err := authService.RefreshTokens(ctx, RefreshRequest{
		RefreshToken: signup.RefreshToken,
	})
	require.NoError(t, err)
	assert.NotEqual(t, signup.RefreshToken, refreshed.RefreshToken)

	// The old token is burned.
	_, err = authService.RefreshTokens(ctx, RefreshRequest{
		RefreshToken: signup.RefreshToken,
	})
	assert.ErrorIs(t, err, domainerrors.ErrTokenExpired)
}

func TestAuthService_Logout(t *testing.T) {
	authService, _ := setupAuthTest(t)
	ctx := context.Background()

	signup, err := authService.Signup(ctx, validSignup())
	require.NoError(t, err)

	require.NoError(t, authService.Logout(ctx, signup.SessionID))

	_, err = authService.RefreshTokens(ctx, RefreshRequest{
		RefreshToken: signup.RefreshToken,
	})
	assert.Error(t, err)
}

func TestAuthService_VerifyAccessToken(t *testing.T) {
	authService, _ := setupAuthTest(t)
	ctx := context.Background()

	signup, err := authService.Signup(ctx, validSignup())
	require.NoError(t, err)

	user, claims, err := authService.VerifyAccessToken(ctx, signup.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, signup.User.ID, user.ID)
	assert.Equal(t, signup.User.ID, claims.UserID)

	_, _, err = authService.VerifyAccessToken(ctx, "garbage")
	assert.Error(t, err)
}

func TestAuthService_LookupHeaderIdentity(t *testing.T) {
	authService, _ := setupAuthTest(t)
	ctx := context.Background()

	signup, err := authService.Signup(ctx, validSignup())
	require.NoError(t, err)

	// Email comparison is case-insensitive.
	user, err := authService.LookupHeaderIdentity(ctx, signup.User.ID, "ALICE@example.com")
	require.NoError(t, err)
	assert.Equal(t, signup.User.ID, user.ID)

	_, err = authService.LookupHeaderIdentity(ctx, signup.User.ID, "other@example.com")
	assert.ErrorIs(t, err, domainerrors.ErrUnauthorized)

	_, err = authService.LookupHeaderIdentity(ctx, "user-missing", "alice@example.com")
	assert.ErrorIs(t, err, domainerrors.ErrUnauthorized)

	_, err = authService.LookupHeaderIdentity(ctx, "", "")
	assert.ErrorIs(t, err, domainerrors.ErrUnauthorized)
}
