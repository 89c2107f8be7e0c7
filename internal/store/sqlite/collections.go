package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/linkvaultapp/linkvault-server/internal/domain"
	"github.com/linkvaultapp/linkvault-server/internal/store"
)

// collectionColumns is the ordered list of columns selected in collection
// queries. Must match the scan order in scanCollection.
const collectionColumns = `id, user_id, name, parent_id, created_at, updated_at`

// scanCollection scans a sql.Row (or sql.Rows via its Scan method) into a
// domain.Collection.
func scanCollection(scanner interface{ Scan(dest ...any) error }) (*domain.Collection, error) {
	var c domain.Collection

	var (
		parentID  sql.NullString
		createdAt string
		updatedAt string
	)

	err := scanner.Scan(
		&c.ID,
		&c.UserID,
		&c.Name,
		&parentID,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	c.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	c.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}
	if parentID.Valid {
		c.ParentID = parentID.String
	}

	return &c, nil
}

// CreateCollection inserts a new collection into the database.
// Returns store.ErrAlreadyExists if the collection ID already exists.
func (s *Store) CreateCollection(ctx context.Context, coll *domain.Collection) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO collections (
			id, user_id, name, parent_id, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?)`,
		coll.ID,
		coll.UserID,
		coll.Name,
		nullString(coll.ParentID),
		formatTime(coll.CreatedAt),
		formatTime(coll.UpdatedAt),
	)
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists
	}
	return err
}

// GetCollection retrieves a collection by ID, scoped to the owning user.
// Returns store.ErrNotFound if the collection does not exist or belongs to
// another user.
func (s *Store) GetCollection(ctx context.Context, id, userID string) (*domain.Collection, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+collectionColumns+` FROM collections WHERE id = ? AND user_id = ?`,
		id, userID)

	c, err := scanCollection(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// ListCollections returns all collections owned by a user, with per-collection
// bookmark counts, ordered alphabetically by name.
func (s *Store) ListCollections(ctx context.Context, userID string) ([]*domain.Collection, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.user_id, c.name, c.parent_id, c.created_at, c.updated_at,
			COUNT(b.id)
		FROM collections c
		LEFT JOIN bookmarks b ON b.collection_id = c.id
		WHERE c.user_id = ?
		GROUP BY c.id
		ORDER BY c.name COLLATE NOCASE ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var collections []*domain.Collection
	for rows.Next() {
		var c domain.Collection
		var (
			parentID  sql.NullString
			createdAt string
			updatedAt string
		)
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &parentID,
			&createdAt, &updatedAt, &c.BookmarkCount); err != nil {
			return nil, err
		}
		if c.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		if c.UpdatedAt, err = parseTime(updatedAt); err != nil {
			return nil, err
		}
		if parentID.Valid {
			c.ParentID = parentID.String
		}
		collections = append(collections, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return collections, nil
}

// UpdateCollection performs a full row update, scoped to the owning user.
// Returns store.ErrNotFound if the collection does not exist or belongs to
// another user.
func (s *Store) UpdateCollection(ctx context.Context, coll *domain.Collection) error {
	return s.execOne(ctx, `
		UPDATE collections SET
			name = ?,
			parent_id = ?,
			updated_at = ?
		WHERE id = ? AND user_id = ?`,
		coll.Name,
		nullString(coll.ParentID),
		formatTime(coll.UpdatedAt),
		coll.ID,
		coll.UserID,
	)
}

// DeleteCollection performs a hard delete, scoped to the owning user.
// Returns store.ErrNotFound if the collection does not exist or belongs to
// another user. The caller is responsible for checking children and bookmarks
// first.
func (s *Store) DeleteCollection(ctx context.Context, id, userID string) error {
	return s.execOne(ctx, `DELETE FROM collections WHERE id = ? AND user_id = ?`, id, userID)
}

// CountCollectionChildren returns the number of direct child collections.
func (s *Store) CountCollectionChildren(ctx context.Context, id, userID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM collections WHERE parent_id = ? AND user_id = ?`,
		id, userID).Scan(&n)
	return n, err
}

// CountCollectionBookmarks returns the number of bookmarks filed in the
// collection.
func (s *Store) CountCollectionBookmarks(ctx context.Context, id, userID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM bookmarks WHERE collection_id = ? AND user_id = ?`,
		id, userID).Scan(&n)
	return n, err
}
