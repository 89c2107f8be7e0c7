package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/linkvaultapp/linkvault-server/internal/domain"
	"github.com/linkvaultapp/linkvault-server/internal/store"
)

// sessionColumns is the ordered list of columns selected in session queries.
// Must match the scan order in scanSession.
const sessionColumns = `id, user_id, refresh_token_hash, client_name, ip_address,
	created_at, last_seen_at, expires_at`

func scanSession(scanner interface{ Scan(dest ...any) error }) (*domain.Session, error) {
	var (
		sess                             domain.Session
		tokenHash, clientName, ipAddress sql.NullString
		createdAt, lastSeenAt, expiresAt string
	)

	err := scanner.Scan(&sess.ID, &sess.UserID, &tokenHash, &clientName, &ipAddress,
		&createdAt, &lastSeenAt, &expiresAt)
	if err != nil {
		return nil, err
	}

	if sess.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if sess.LastSeenAt, err = parseTime(lastSeenAt); err != nil {
		return nil, err
	}
	if sess.ExpiresAt, err = parseTime(expiresAt); err != nil {
		return nil, err
	}

	sess.RefreshTokenHash = tokenHash.String
	sess.ClientName = clientName.String
	sess.IPAddress = ipAddress.String

	return &sess, nil
}

// CreateSession inserts a new session row.
// Returns store.ErrAlreadyExists if the session ID is taken.
func (s *Store) CreateSession(ctx context.Context, session *domain.Session) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (
			id, user_id, refresh_token_hash, client_name, ip_address,
			created_at, last_seen_at, expires_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		session.ID,
		session.UserID,
		nullString(session.RefreshTokenHash),
		nullString(session.ClientName),
		nullString(session.IPAddress),
		formatTime(session.CreatedAt),
		formatTime(session.LastSeenAt),
		formatTime(session.ExpiresAt),
	)
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists
	}
	return err
}

// GetSession retrieves a session by ID.
func (s *Store) GetSession(ctx context.Context, id string) (*domain.Session, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE id = ?`, id)
	return sessionOrNotFound(scanSession(row))
}

// GetSessionByRefreshToken retrieves the session holding the given refresh
// token hash.
func (s *Store) GetSessionByRefreshToken(ctx context.Context, tokenHash string) (*domain.Session, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE refresh_token_hash = ?`, tokenHash)
	return sessionOrNotFound(scanSession(row))
}

func sessionOrNotFound(sess *domain.Session, err error) (*domain.Session, error) {
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return sess, nil
}

// UpdateSession performs a full row update on an existing session.
// Returns store.ErrNotFound if the session does not exist.
func (s *Store) UpdateSession(ctx context.Context, session *domain.Session) error {
	return s.execOne(ctx, `
		UPDATE sessions SET
			user_id = ?,
			refresh_token_hash = ?,
			client_name = ?,
			ip_address = ?,
			created_at = ?,
			last_seen_at = ?,
			expires_at = ?
		WHERE id = ?`,
		session.UserID,
		nullString(session.RefreshTokenHash),
		nullString(session.ClientName),
		nullString(session.IPAddress),
		formatTime(session.CreatedAt),
		formatTime(session.LastSeenAt),
		formatTime(session.ExpiresAt),
		session.ID,
	)
}

// DeleteSession removes a session by ID.
// Returns store.ErrNotFound if the session does not exist.
func (s *Store) DeleteSession(ctx context.Context, id string) error {
	return s.execOne(ctx, `DELETE FROM sessions WHERE id = ?`, id)
}

// DeleteAllUserSessions removes every session belonging to a user.
func (s *Store) DeleteAllUserSessions(ctx context.Context, userID string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM sessions WHERE user_id = ?`, userID)
	return err
}

// DeleteExpiredSessions removes sessions past their expiry and reports how
// many were deleted.
func (s *Store) DeleteExpiredSessions(ctx context.Context) (int, error) {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM sessions WHERE expires_at < ?`, formatTime(time.Now()))
	if err != nil {
		return 0, err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}
