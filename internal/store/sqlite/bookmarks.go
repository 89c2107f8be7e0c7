package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/linkvaultapp/linkvault-server/internal/domain"
	"github.com/linkvaultapp/linkvault-server/internal/store"
)

// bookmarkColumns is the ordered list of columns selected in bookmark queries,
// including denormalized collection name and tag list. Must match the scan
// order in scanBookmark.
const bookmarkColumns = `b.id, b.user_id, b.collection_id, b.title, b.url, b.type,
	b.content, b.description, b.favorite, b.created_at, b.updated_at,
	c.name,
	(SELECT GROUP_CONCAT(t.name, char(31))
	 FROM bookmark_tags bt JOIN tags t ON t.id = bt.tag_id
	 WHERE bt.bookmark_id = b.id)`

// tagSeparator joins tag names inside GROUP_CONCAT. Unit separator cannot
// appear in validated tag names.
const tagSeparator = "\x1f"

// scanBookmark scans a sql.Row (or sql.Rows via its Scan method) into a
// domain.Bookmark.
func scanBookmark(scanner interface{ Scan(dest ...any) error }) (*domain.Bookmark, error) {
	var b domain.Bookmark

	var (
		collectionID   sql.NullString
		url            sql.NullString
		typ            string
		content        sql.NullString
		description    sql.NullString
		favorite       int
		createdAt      string
		updatedAt      string
		collectionName sql.NullString
		tagList        sql.NullString
	)

	err := scanner.Scan(
		&b.ID,
		&b.UserID,
		&collectionID,
		&b.Title,
		&url,
		&typ,
		&content,
		&description,
		&favorite,
		&createdAt,
		&updatedAt,
		&collectionName,
		&tagList,
	)
	if err != nil {
		return nil, err
	}

	b.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	b.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	b.Type = domain.BookmarkType(typ)
	b.Favorite = favorite != 0

	if collectionID.Valid {
		b.CollectionID = collectionID.String
	}
	if url.Valid {
		b.URL = url.String
	}
	if content.Valid {
		b.Content = content.String
	}
	if description.Valid {
		b.Description = description.String
	}
	if collectionName.Valid {
		b.CollectionName = collectionName.String
	}

	// Tags: always non-nil so JSON renders [] instead of null.
	b.Tags = []string{}
	if tagList.Valid && tagList.String != "" {
		b.Tags = strings.Split(tagList.String, tagSeparator)
	}

	return &b, nil
}

// CreateBookmark inserts a new bookmark into the database.
// Returns store.ErrAlreadyExists if the bookmark ID already exists.
func (s *Store) CreateBookmark(ctx context.Context, bm *domain.Bookmark) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO bookmarks (
			id, user_id, collection_id, title, url, type,
			content, description, favorite, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		bm.ID,
		bm.UserID,
		nullString(bm.CollectionID),
		bm.Title,
		nullString(bm.URL),
		string(bm.Type),
		nullString(bm.Content),
		nullString(bm.Description),
		boolToInt(bm.Favorite),
		formatTime(bm.CreatedAt),
		formatTime(bm.UpdatedAt),
	)
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists
	}
	return err
}

// GetBookmark retrieves a bookmark by ID, scoped to the owning user.
// Returns store.ErrNotFound if the bookmark does not exist or belongs to
// another user.
func (s *Store) GetBookmark(ctx context.Context, id, userID string) (*domain.Bookmark, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+bookmarkColumns+`
		FROM bookmarks b
		LEFT JOIN collections c ON c.id = b.collection_id
		WHERE b.id = ? AND b.user_id = ?`, id, userID)

	b, err := scanBookmark(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

// ListBookmarks returns the user's bookmarks newest-first, narrowed by the
// filter. Search matches a case-insensitive substring of title, description,
// or content.
func (s *Store) ListBookmarks(ctx context.Context, userID string, filter store.BookmarkFilter) ([]*domain.Bookmark, error) {
	query := `
		SELECT ` + bookmarkColumns + `
		FROM bookmarks b
		LEFT JOIN collections c ON c.id = b.collection_id
		WHERE b.user_id = ?`
	args := []any{userID}

	if filter.CollectionID != "" {
		query += ` AND b.collection_id = ?`
		args = append(args, filter.CollectionID)
	}
	if filter.FavoriteOnly {
		query += ` AND b.favorite = 1`
	}
	if filter.Search != "" {
		pattern := "%" + escapeLike(filter.Search) + "%"
		query += ` AND (b.title LIKE ? ESCAPE '\'
			OR b.description LIKE ? ESCAPE '\'
			OR b.content LIKE ? ESCAPE '\')`
		args = append(args, pattern, pattern, pattern)
	}
	if filter.Tag != "" {
		query += ` AND EXISTS (
			SELECT 1 FROM bookmark_tags bt
			JOIN tags t ON t.id = bt.tag_id
			WHERE bt.bookmark_id = b.id AND t.name = ?)`
		args = append(args, filter.Tag)
	}

	query += ` ORDER BY b.created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookmarks []*domain.Bookmark
	for rows.Next() {
		b, err := scanBookmark(rows)
		if err != nil {
			return nil, err
		}
		bookmarks = append(bookmarks, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return bookmarks, nil
}

// UpdateBookmark performs a full row update, scoped to the owning user.
// Returns store.ErrNotFound if the bookmark does not exist or belongs to
// another user.
func (s *Store) UpdateBookmark(ctx context.Context, bm *domain.Bookmark) error {
	return s.execOne(ctx, `
		UPDATE bookmarks SET
			collection_id = ?,
			title = ?,
			url = ?,
			type = ?,
			content = ?,
			description = ?,
			favorite = ?,
			updated_at = ?
		WHERE id = ? AND user_id = ?`,
		nullString(bm.CollectionID),
		bm.Title,
		nullString(bm.URL),
		string(bm.Type),
		nullString(bm.Content),
		nullString(bm.Description),
		boolToInt(bm.Favorite),
		formatTime(bm.UpdatedAt),
		bm.ID,
		bm.UserID,
	)
}

// DeleteBookmark performs a hard delete, scoped to the owning user. Tag links
// and canvas rows cascade.
// Returns store.ErrNotFound if the bookmark does not exist or belongs to
// another user.
func (s *Store) DeleteBookmark(ctx context.Context, id, userID string) error {
	return s.execOne(ctx, `DELETE FROM bookmarks WHERE id = ? AND user_id = ?`, id, userID)
}

// BookmarkContentExists reports whether the user owns a bookmark whose content
// field equals the given value. Used to confirm a stored media file is still
// referenced before serving it.
func (s *Store) BookmarkContentExists(ctx context.Context, userID, content string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM bookmarks WHERE user_id = ? AND content = ?`,
		userID, content).Scan(&n)
	return n > 0, err
}

// escapeLike escapes LIKE wildcards so user input matches literally.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}
