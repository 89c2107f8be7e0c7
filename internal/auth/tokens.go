package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"aidanwoods.dev/go-paseto"

	"github.com/linkvaultapp/linkvault-server/internal/domain"
	"github.com/linkvaultapp/linkvault-server/internal/id"
)

const (
	tokenIssuer   = "linkvault-server"
	tokenAudience = "linkvault-client"

	symmetricKeySize = 32 // PASETO v4.local requirement
	refreshTokenSize = 32 // bytes of entropy per refresh token
)

// TokenService issues and verifies the two token kinds: PASETO v4.local
// access tokens carrying identity claims, and opaque random refresh tokens
// whose hashes live in the sessions table.
type TokenService struct {
	key             paseto.V4SymmetricKey
	accessLifetime  time.Duration
	refreshLifetime time.Duration
}

// NewTokenService builds a token service from a raw 32-byte symmetric key.
func NewTokenService(key []byte, accessLifetime, refreshLifetime time.Duration) (*TokenService, error) {
	if len(key) != symmetricKeySize {
		return nil, fmt.Errorf("PASETO v4 key must be exactly %d bytes, got %d", symmetricKeySize, len(key))
	}

	symKey, err := paseto.V4SymmetricKeyFromBytes(key)
	if err != nil {
		return nil, fmt.Errorf("load PASETO symmetric key: %w", err)
	}

	return &TokenService{
		key:             symKey,
		accessLifetime:  accessLifetime,
		refreshLifetime: refreshLifetime,
	}, nil
}

// GenerateAccessToken issues an encrypted access token for the user.
func (s *TokenService) GenerateAccessToken(user *domain.User) (string, error) {
	tokenID, err := id.Generate("token")
	if err != nil {
		return "", fmt.Errorf("generate token ID: %w", err)
	}

	now := time.Now()
	token := paseto.NewToken()
	token.SetIssuer(tokenIssuer)
	token.SetAudience(tokenAudience)
	token.SetSubject(user.ID)
	token.SetJti(tokenID)
	token.SetIssuedAt(now)
	token.SetNotBefore(now)
	token.SetExpiration(now.Add(s.accessLifetime))

	// Set only errors on unserializable values; these are all strings.
	_ = token.Set("user_id", user.ID)
	_ = token.Set("username", user.Username)
	_ = token.Set("email", user.Email)

	return token.V4Encrypt(s.key, nil), nil
}

// VerifyAccessToken decrypts and validates an access token, returning its
// claims. Expired, tampered, or foreign tokens all fail here.
func (s *TokenService) VerifyAccessToken(tokenString string) (*AccessClaims, error) {
	parser := paseto.NewParser()
	parser.AddRule(paseto.IssuedBy(tokenIssuer))
	parser.AddRule(paseto.ForAudience(tokenAudience))
	parser.AddRule(paseto.NotExpired())
	parser.AddRule(paseto.ValidAt(time.Now()))

	token, err := parser.ParseV4Local(s.key, tokenString, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	var claims AccessClaims
	if err := json.Unmarshal(token.ClaimsJSON(), &claims); err != nil {
		return nil, fmt.Errorf("parse claims: %w", err)
	}

	return &claims, nil
}

// GenerateRefreshToken returns a fresh opaque token: random bytes,
// base64url-encoded. It is not a PASETO token; validity is established by
// matching its hash against the sessions table.
func (s *TokenService) GenerateRefreshToken() (string, error) {
	b := make([]byte, refreshTokenSize)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate refresh token: %w", err)
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// HashRefreshToken returns the hex SHA-256 of the token. Only hashes are
// stored, so a leaked database does not yield usable refresh tokens.
func HashRefreshToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// AccessTokenDuration returns the configured access token lifetime.
func (s *TokenService) AccessTokenDuration() time.Duration {
	return s.accessLifetime
}

// RefreshTokenDuration returns the configured refresh token lifetime.
func (s *TokenService) RefreshTokenDuration() time.Duration {
	return s.refreshLifetime
}
