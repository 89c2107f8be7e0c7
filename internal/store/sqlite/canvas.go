package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/linkvaultapp/linkvault-server/internal/domain"
	"github.com/linkvaultapp/linkvault-server/internal/id"
	"github.com/linkvaultapp/linkvault-server/internal/store"
)

// GetCanvasLayout returns the saved diagram for a collection canvas. The
// collection must belong to the user; an empty layout is returned when
// nothing has been saved yet.
func (s *Store) GetCanvasLayout(ctx context.Context, collectionID, userID string) (*domain.CanvasLayout, error) {
	if err := s.checkCollectionOwner(ctx, s.db, collectionID, userID); err != nil {
		return nil, err
	}

	layout := &domain.CanvasLayout{
		CollectionID: collectionID,
		Positions:    []domain.CanvasPosition{},
		Connections:  []domain.CanvasConnection{},
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT bookmark_id, collection_id, x, y
		FROM canvas_positions WHERE collection_id = ?`, collectionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var p domain.CanvasPosition
		if err := rows.Scan(&p.BookmarkID, &p.CollectionID, &p.X, &p.Y); err != nil {
			return nil, err
		}
		layout.Positions = append(layout.Positions, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	connRows, err := s.db.QueryContext(ctx, `
		SELECT id, collection_id, from_id, to_id, label
		FROM canvas_connections WHERE collection_id = ?`, collectionID)
	if err != nil {
		return nil, err
	}
	defer connRows.Close()

	for connRows.Next() {
		var c domain.CanvasConnection
		var label sql.NullString
		if err := connRows.Scan(&c.ID, &c.CollectionID, &c.FromID, &c.ToID, &label); err != nil {
			return nil, err
		}
		if label.Valid {
			c.Label = label.String
		}
		layout.Connections = append(layout.Connections, c)
	}
	if err := connRows.Err(); err != nil {
		return nil, err
	}

	return layout, nil
}

// ReplaceCanvasLayout swaps the collection's diagram for the given one inside
// a single transaction: existing rows are deleted, then the new positions and
// connections inserted. Items referencing bookmarks the user does not own are
// dropped rather than failing the save.
func (s *Store) ReplaceCanvasLayout(ctx context.Context, layout *domain.CanvasLayout, userID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck // Rollback after commit is a no-op

	if err := s.checkCollectionOwner(ctx, tx, layout.CollectionID, userID); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM canvas_positions WHERE collection_id = ?`, layout.CollectionID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM canvas_connections WHERE collection_id = ?`, layout.CollectionID); err != nil {
		return err
	}

	owned := func(bookmarkID string) (bool, error) {
		var one int
		err := tx.QueryRowContext(ctx,
			`SELECT 1 FROM bookmarks WHERE id = ? AND user_id = ?`,
			bookmarkID, userID).Scan(&one)
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		return true, nil
	}

	for _, p := range layout.Positions {
		ok, err := owned(p.BookmarkID)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT OR REPLACE INTO canvas_positions (bookmark_id, collection_id, x, y)
			VALUES (?, ?, ?, ?)`,
			p.BookmarkID, layout.CollectionID, p.X, p.Y); err != nil {
			return err
		}
	}

	for _, c := range layout.Connections {
		fromOK, err := owned(c.FromID)
		if err != nil {
			return err
		}
		toOK, err := owned(c.ToID)
		if err != nil {
			return err
		}
		if !fromOK || !toOK {
			continue
		}
		connID := c.ID
		if connID == "" {
			connID = id.MustGenerate("conn")
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT OR REPLACE INTO canvas_connections (id, collection_id, from_id, to_id, label)
			VALUES (?, ?, ?, ?, ?)`,
			connID, layout.CollectionID, c.FromID, c.ToID, nullString(c.Label)); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// checkCollectionOwner returns store.ErrNotFound unless the collection exists
// and belongs to the user.
func (s *Store) checkCollectionOwner(ctx context.Context, q querier, collectionID, userID string) error {
	var one int
	err := q.QueryRowContext(ctx,
		`SELECT 1 FROM collections WHERE id = ? AND user_id = ?`,
		collectionID, userID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}
