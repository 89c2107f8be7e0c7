package domain

import "time"

// TagMaxLength bounds the length of a single tag name.
const TagMaxLength = 50

// Tag is a user-scoped label. Names are unique per user; the same name
// belonging to two users is two distinct tags.
type Tag struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
