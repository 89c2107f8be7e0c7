package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/linkvaultapp/linkvault-server/internal/domain"
	"github.com/linkvaultapp/linkvault-server/internal/id"
	"github.com/linkvaultapp/linkvault-server/internal/store"
)

// tagColumns is the ordered list of columns selected in tag queries.
// Must match the scan order in scanTag.
const tagColumns = `id, user_id, name, created_at`

// scanTag scans a sql.Row (or sql.Rows via its Scan method) into a domain.Tag.
func scanTag(scanner interface{ Scan(dest ...any) error }) (*domain.Tag, error) {
	var t domain.Tag
	var createdAt string

	err := scanner.Scan(&t.ID, &t.UserID, &t.Name, &createdAt)
	if err != nil {
		return nil, err
	}

	t.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// FindOrCreateTag returns the user's tag with the given name, creating it if
// absent. Lookup is exact-match on name.
func (s *Store) FindOrCreateTag(ctx context.Context, userID, name string) (*domain.Tag, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+tagColumns+` FROM tags WHERE user_id = ? AND name = ?`,
		userID, name)

	t, err := scanTag(row)
	if err == nil {
		return t, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	tag := &domain.Tag{
		ID:        id.MustGenerate("tag"),
		UserID:    userID,
		Name:      name,
		CreatedAt: time.Now(),
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO tags (id, user_id, name, created_at)
		VALUES (?, ?, ?, ?)`,
		tag.ID, tag.UserID, tag.Name, formatTime(tag.CreatedAt))
	if err != nil {
		// Lost a create race; the row exists now, so fetch it.
		if isUniqueViolation(err) {
			row := s.db.QueryRowContext(ctx,
				`SELECT `+tagColumns+` FROM tags WHERE user_id = ? AND name = ?`,
				userID, name)
			return scanTag(row)
		}
		return nil, err
	}
	return tag, nil
}

// ListTags returns all tags owned by a user, ordered by name.
func (s *Store) ListTags(ctx context.Context, userID string) ([]*domain.Tag, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+tagColumns+` FROM tags WHERE user_id = ? ORDER BY name ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tags []*domain.Tag
	for rows.Next() {
		t, err := scanTag(rows)
		if err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tags, nil
}

// SetBookmarkTags replaces the bookmark's tag set wholesale. Missing tags are
// created; existing links are dropped and relinked inside one transaction.
// Returns store.ErrNotFound if the bookmark does not exist or belongs to
// another user.
func (s *Store) SetBookmarkTags(ctx context.Context, bookmarkID, userID string, names []string) error {
	// Resolve tags up front; FindOrCreateTag handles its own races.
	tagIDs := make([]string, 0, len(names))
	for _, name := range names {
		t, err := s.FindOrCreateTag(ctx, userID, name)
		if err != nil {
			return err
		}
		tagIDs = append(tagIDs, t.ID)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck // Rollback after commit is a no-op

	// Ownership check inside the transaction.
	var owner string
	err = tx.QueryRowContext(ctx,
		`SELECT user_id FROM bookmarks WHERE id = ?`, bookmarkID).Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && owner != userID) {
		return store.ErrNotFound
	}
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM bookmark_tags WHERE bookmark_id = ?`, bookmarkID); err != nil {
		return err
	}

	for _, tagID := range tagIDs {
		if _, err := tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO bookmark_tags (bookmark_id, tag_id)
			VALUES (?, ?)`, bookmarkID, tagID); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetBookmarkTags returns the tag names linked to a bookmark, ordered by name.
func (s *Store) GetBookmarkTags(ctx context.Context, bookmarkID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT t.name FROM bookmark_tags bt
		JOIN tags t ON t.id = bt.tag_id
		WHERE bt.bookmark_id = ?
		ORDER BY t.name ASC`, bookmarkID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return names, nil
}
