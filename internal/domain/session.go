package domain

import "time"

// Session tracks one refresh-token lineage for a logged-in client. The
// refresh token itself is never stored, only its hash; rotation replaces
// the hash in place.
type Session struct {
	ID               string    `json:"id"`
	UserID           string    `json:"user_id"`
	RefreshTokenHash string    `json:"-"`
	ClientName       string    `json:"client_name,omitempty"`
	IPAddress        string    `json:"ip_address,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	LastSeenAt       time.Time `json:"last_seen_at"`
	ExpiresAt        time.Time `json:"expires_at"`
}

// IsExpired reports whether the session's refresh window has passed.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}
