// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/danielhkuo/goodreads/models"
)

// sessionClaims carries the session key in jti and the user ID in sub
type sessionClaims struct {
	jwt.RegisteredClaims
}

// Sessions manages login sessions. The cookie holds an HS256 token that
// names a row in the sessions table; deleting the row logs the user out
// even while the token itself is still unexpired.
type Sessions struct {
	db     *sql.DB
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewSessions(db *sql.DB, secret string, ttl time.Duration) *Sessions {
	return &Sessions{
		db:     db,
		secret: []byte(secret),
		ttl:    ttl,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// TTL is the lifetime of newly created sessions
func (s *Sessions) TTL() time.Duration {
	return s.ttl
}

// Authenticate checks a username and password pair. Unknown users,
// inactive users and wrong passwords all yield ErrInvalidCredentials.
func (s *Sessions) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	u, err := GetUserByUsername(ctx, s.db, username)
	if errors.Is(err, ErrUserNotFound) {
		CheckPassword(dummyHash, password)
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !CheckPassword(u.Password, password) || !u.IsActive {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// Login opens a session for userID, records the login time and returns
// the signed cookie token.
func (s *Sessions) Login(ctx context.Context, userID string) (string, time.Time, error) {
	key, err := GenerateSessionKey()
	if err != nil {
		return "", time.Time{}, err
	}
	now := s.now()
	expires := now.Add(s.ttl)

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sessions (session_key, user_id, created_at, expires_at)
		VALUES ($1, $2, $3, $4)
	`, key, userID, now, expires)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to insert session: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, `UPDATE users SET last_login = $1 WHERE id = $2`, now, userID); err != nil {
		slog.Error("failed to update last_login", "user_id", userID, "error", err)
	}
	if _, err := s.db.ExecContext(ctx, `
		DELETE FROM sessions WHERE user_id = $1 AND expires_at < $2
	`, userID, now); err != nil {
		slog.Error("failed to purge expired sessions", "user_id", userID, "error", err)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        key,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign session token: %w", err)
	}

	return signed, expires, nil
}

// Resolve returns the active user behind a session token
func (s *Sessions) Resolve(ctx context.Context, token string) (*models.User, error) {
	claims, err := s.parse(token)
	if err != nil {
		return nil, err
	}

	var userID string
	var expiresAt time.Time
	err = s.db.QueryRowContext(ctx, `
		SELECT user_id, expires_at FROM sessions WHERE session_key = $1
	`, claims.ID).Scan(&userID, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query session: %w", err)
	}

	if userID != claims.Subject {
		return nil, ErrInvalidToken
	}
	if !expiresAt.After(s.now()) {
		if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE session_key = $1`, claims.ID); err != nil {
			slog.Error("failed to delete expired session", "error", err)
		}
		return nil, ErrNoSession
	}

	u, err := GetUserByID(ctx, s.db, userID)
	if errors.Is(err, ErrUserNotFound) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, err
	}
	if !u.IsActive {
		return nil, ErrNoSession
	}
	return u, nil
}

// Logout deletes the session behind token. Unknown or malformed tokens
// are not an error: the caller is logged out either way.
func (s *Sessions) Logout(ctx context.Context, token string) error {
	claims, err := s.parse(token)
	if err != nil {
		return nil
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE session_key = $1`, claims.ID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func (s *Sessions) parse(token string) (*sessionClaims, error) {
	claims := &sessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid || claims.ID == "" || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
