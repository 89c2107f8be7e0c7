// Package store defines the persistence interface for the LinkVault server.
package store

import (
	"context"

	"github.com/linkvaultapp/linkvault-server/internal/domain"
)

// BookmarkFilter narrows ListBookmarks results. Zero-value fields are
// ignored; set fields combine with AND.
type BookmarkFilter struct {
	// CollectionID restricts to one collection.
	CollectionID string
	// FavoriteOnly keeps only favorited bookmarks.
	FavoriteOnly bool
	// Search matches a case-insensitive substring of title, description,
	// or content.
	Search string
	// Tag keeps only bookmarks carrying the named tag.
	Tag string
}

// Store defines the interface for all persistence operations.
type Store interface {
	// Lifecycle
	Close() error

	// Users
	CreateUser(ctx context.Context, user *domain.User) error
	GetUser(ctx context.Context, id string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
	UpdateUser(ctx context.Context, user *domain.User) error
	DeleteUser(ctx context.Context, id string) error

	// Auth Sessions
	CreateSession(ctx context.Context, session *domain.Session) error
	GetSession(ctx context.Context, id string) (*domain.Session, error)
	GetSessionByRefreshToken(ctx context.Context, tokenHash string) (*domain.Session, error)
	UpdateSession(ctx context.Context, session *domain.Session) error
	DeleteSession(ctx context.Context, id string) error
	DeleteAllUserSessions(ctx context.Context, userID string) error
	DeleteExpiredSessions(ctx context.Context) (int, error)

	// Collections
	CreateCollection(ctx context.Context, coll *domain.Collection) error
	GetCollection(ctx context.Context, id, userID string) (*domain.Collection, error)
	ListCollections(ctx context.Context, userID string) ([]*domain.Collection, error)
	UpdateCollection(ctx context.Context, coll *domain.Collection) error
	DeleteCollection(ctx context.Context, id, userID string) error
	CountCollectionChildren(ctx context.Context, id, userID string) (int, error)
	CountCollectionBookmarks(ctx context.Context, id, userID string) (int, error)

	// Bookmarks
	CreateBookmark(ctx context.Context, bm *domain.Bookmark) error
	GetBookmark(ctx context.Context, id, userID string) (*domain.Bookmark, error)
	ListBookmarks(ctx context.Context, userID string, filter BookmarkFilter) ([]*domain.Bookmark, error)
	UpdateBookmark(ctx context.Context, bm *domain.Bookmark) error
	DeleteBookmark(ctx context.Context, id, userID string) error
	BookmarkContentExists(ctx context.Context, userID, content string) (bool, error)

	// Tags
	FindOrCreateTag(ctx context.Context, userID, name string) (*domain.Tag, error)
	ListTags(ctx context.Context, userID string) ([]*domain.Tag, error)
	SetBookmarkTags(ctx context.Context, bookmarkID, userID string, names []string) error
	GetBookmarkTags(ctx context.Context, bookmarkID string) ([]string, error)

	// Canvas
	GetCanvasLayout(ctx context.Context, collectionID, userID string) (*domain.CanvasLayout, error)
	ReplaceCanvasLayout(ctx context.Context, layout *domain.CanvasLayout, userID string) error
}
