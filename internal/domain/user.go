// Package domain defines the core entities of the LinkVault server.
package domain

import "time"

// Username length bounds enforced at signup.
const (
	UsernameMinLength = 3
	UsernameMaxLength = 50
)

// User represents an authenticated user account in the system.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Stored hashed, never serialized
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	LastLoginAt  time.Time `json:"last_login_at"`
}

// InitTimestamps sets both CreatedAt and UpdatedAt to now.
// Call this when creating a new user.
func (u *User) InitTimestamps() {
	now := time.Now()
	u.CreatedAt = now
	u.UpdatedAt = now
}

// Touch updates the UpdatedAt timestamp to the current time.
func (u *User) Touch() {
	u.UpdatedAt = time.Now()
}
