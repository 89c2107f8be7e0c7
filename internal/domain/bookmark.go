package domain

import (
	"net/url"
	"time"
)

// BookmarkType classifies what a bookmark's content field holds.
type BookmarkType string

// The five bookmark content types.
const (
	TypeLink  BookmarkType = "link"
	TypeText  BookmarkType = "text"
	TypeImage BookmarkType = "image"
	TypeAudio BookmarkType = "audio"
	TypeVideo BookmarkType = "video"
)

// Valid reports whether t is one of the known bookmark types.
func (t BookmarkType) Valid() bool {
	switch t {
	case TypeLink, TypeText, TypeImage, TypeAudio, TypeVideo:
		return true
	}
	return false
}

// IsMedia reports whether the type carries an uploaded media file.
func (t BookmarkType) IsMedia() bool {
	return t == TypeAudio || t == TypeVideo
}

// Bookmark is a saved reference to content, owned by exactly one user.
// Content interpretation depends on Type: a URL for links and images, a
// text body for text, and an uploaded-file relative path for audio/video.
type Bookmark struct {
	ID           string       `json:"id"`
	UserID       string       `json:"user_id"`
	CollectionID string       `json:"collection_id,omitempty"` // empty = unsorted
	Title        string       `json:"title"`
	URL          string       `json:"url,omitempty"`
	Type         BookmarkType `json:"type"`
	Content      string       `json:"content,omitempty"`
	Description  string       `json:"description,omitempty"`
	Favorite     bool         `json:"favorite"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`

	// Denormalized for list responses.
	Tags           []string `json:"tags"`
	CollectionName string   `json:"collection_name,omitempty"`
}

// InitTimestamps sets both CreatedAt and UpdatedAt to now.
func (b *Bookmark) InitTimestamps() {
	now := time.Now()
	b.CreatedAt = now
	b.UpdatedAt = now
}

// Touch updates the UpdatedAt timestamp to the current time.
func (b *Bookmark) Touch() {
	b.UpdatedAt = time.Now()
}

// TitleOrHostname returns title, falling back to the URL's hostname when the
// title is blank. Returns "" if neither is usable.
func TitleOrHostname(title, rawURL string) string {
	if title != "" {
		return title
	}
	if rawURL == "" {
		return ""
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
