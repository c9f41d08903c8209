// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/danielhkuo/goodreads/models"
)

const userColumns = `id, username, first_name, last_name, email, password, is_active, date_joined, last_login`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	var u models.User
	var lastLogin sql.NullTime
	err := row.Scan(&u.ID, &u.Username, &u.FirstName, &u.LastName, &u.Email,
		&u.Password, &u.IsActive, &u.DateJoined, &lastLogin)
	if err != nil {
		return nil, err
	}
	if lastLogin.Valid {
		t := lastLogin.Time
		u.LastLogin = &t
	}
	return &u, nil
}

// CreateUser hashes rawPassword and inserts the user. ID and DateJoined are
// filled in when unset.
func CreateUser(ctx context.Context, db *sql.DB, u *models.User, rawPassword string) error {
	hash, err := HashPassword(rawPassword)
	if err != nil {
		return err
	}
	u.Password = hash
	if u.ID == "" {
		u.ID = GenerateID()
	}
	if u.DateJoined.IsZero() {
		u.DateJoined = time.Now().UTC()
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO users (id, username, first_name, last_name, email, password, is_active, date_joined)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, u.ID, u.Username, u.FirstName, u.LastName, u.Email, u.Password, u.IsActive, u.DateJoined)
	if isUniqueViolation(err) {
		return ErrUsernameTaken
	}
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

// GetUserByUsername returns ErrUserNotFound when no row matches
func GetUserByUsername(ctx context.Context, db *sql.DB, username string) (*models.User, error) {
	row := db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return u, nil
}

// GetUserByID returns ErrUserNotFound when no row matches
func GetUserByID(ctx context.Context, db *sql.DB, id string) (*models.User, error) {
	row := db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return u, nil
}

// UsernameTaken reports whether another user (not exceptID) owns username
func UsernameTaken(ctx context.Context, db *sql.DB, username, exceptID string) (bool, error) {
	var n int
	err := db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM users WHERE username = $1 AND id <> $2
	`, username, exceptID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to check username: %w", err)
	}
	return n > 0, nil
}

// UpdateProfile writes the editable profile fields of u
func UpdateProfile(ctx context.Context, db *sql.DB, u *models.User) error {
	res, err := db.ExecContext(ctx, `
		UPDATE users
		SET username = $1, first_name = $2, last_name = $3, email = $4
		WHERE id = $5
	`, u.Username, u.FirstName, u.LastName, u.Email, u.ID)
	if isUniqueViolation(err) {
		return ErrUsernameTaken
	}
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrUserNotFound
	}
	return nil
}

// isUniqueViolation reports whether err is a unique or primary key
// constraint failure from either supported driver
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		code := sqliteErr.Code()
		return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}
