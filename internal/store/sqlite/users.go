package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/linkvaultapp/linkvault-server/internal/domain"
	"github.com/linkvaultapp/linkvault-server/internal/store"
)

// userColumns is the ordered list of columns selected in user queries.
// Must match the scan order in scanUser.
const userColumns = `id, username, email, password_hash, created_at, updated_at, last_login_at`

func scanUser(scanner interface{ Scan(dest ...any) error }) (*domain.User, error) {
	var (
		u                    domain.User
		createdAt, updatedAt string
		lastLoginAt          sql.NullString
	)

	err := scanner.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash,
		&createdAt, &updatedAt, &lastLoginAt)
	if err != nil {
		return nil, err
	}

	if u.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if u.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	if lastLoginAt.Valid && lastLoginAt.String != "" {
		if u.LastLoginAt, err = parseTime(lastLoginAt.String); err != nil {
			return nil, err
		}
	}

	return &u, nil
}

// userOrNotFound converts sql.ErrNoRows from a user lookup.
func userOrNotFound(u *domain.User, err error) (*domain.User, error) {
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

// CreateUser inserts a new user row. The email_lower column backs the
// case-insensitive uniqueness and lookup guarantees.
// Returns store.ErrAlreadyExists if the username or email is taken.
func (s *Store) CreateUser(ctx context.Context, user *domain.User) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (
			id, username, email, email_lower, password_hash,
			created_at, updated_at, last_login_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID,
		user.Username,
		user.Email,
		normalizeEmail(user.Email),
		user.PasswordHash,
		formatTime(user.CreatedAt),
		formatTime(user.UpdatedAt),
		lastLoginValue(user),
	)
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists
	}
	return err
}

// GetUser retrieves a user by ID.
func (s *Store) GetUser(ctx context.Context, id string) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return userOrNotFound(scanUser(row))
}

// GetUserByEmail retrieves a user by case-insensitive email match.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email_lower = ?`, normalizeEmail(email))
	return userOrNotFound(scanUser(row))
}

// GetUserByUsername retrieves a user by exact username match.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = ?`, username)
	return userOrNotFound(scanUser(row))
}

// UpdateUser performs a full row update on an existing user.
// Returns store.ErrNotFound if the user does not exist, or
// store.ErrAlreadyExists if the new username or email collides.
func (s *Store) UpdateUser(ctx context.Context, user *domain.User) error {
	err := s.execOne(ctx, `
		UPDATE users SET
			username = ?,
			email = ?,
			email_lower = ?,
			password_hash = ?,
			created_at = ?,
			updated_at = ?,
			last_login_at = ?
		WHERE id = ?`,
		user.Username,
		user.Email,
		normalizeEmail(user.Email),
		user.PasswordHash,
		formatTime(user.CreatedAt),
		formatTime(user.UpdatedAt),
		lastLoginValue(user),
		user.ID,
	)
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists
	}
	return err
}

// DeleteUser removes a user by ID. Owned rows cascade.
// Returns store.ErrNotFound if the user does not exist.
func (s *Store) DeleteUser(ctx context.Context, id string) error {
	return s.execOne(ctx, `DELETE FROM users WHERE id = ?`, id)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func lastLoginValue(user *domain.User) sql.NullString {
	if user.LastLoginAt.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(user.LastLoginAt), Valid: true}
}
