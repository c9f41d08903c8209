// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/danielhkuo/goodreads/auth"
	"github.com/danielhkuo/goodreads/cliparse"
	"github.com/danielhkuo/goodreads/db"
	"github.com/danielhkuo/goodreads/middleware"
	"github.com/danielhkuo/goodreads/models"
)

// SetupTestDB creates a fresh SQLite database file with all migrations applied
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	dsn := "file:" + filepath.Join(t.TempDir(), "test.db")
	conn, err := db.Open(context.Background(), cliparse.DatabaseSQLite, dsn)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.Migrate(context.Background(), conn, cliparse.DatabaseSQLite); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:         3318,
		DatabaseURL:  "file:test.db",
		DatabaseType: cliparse.DatabaseSQLite,
		SecretKey:    "test-secret-key",
		PageSize:     cliparse.DefaultPageSize,
		SessionTTL:   time.Hour,
		LogLevel:     "error",
	}
}

// CreateTestUser inserts an active user with the given password
func CreateTestUser(t *testing.T, db *sql.DB, u models.User, password string) *models.User {
	t.Helper()

	u.IsActive = true
	if err := auth.CreateUser(context.Background(), db, &u, password); err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return &u
}

// CountUsers returns the number of rows in users
func CountUsers(t *testing.T, db *sql.DB) int {
	t.Helper()

	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		t.Fatalf("Failed to count users: %v", err)
	}
	return n
}

// CreateTestAuthor inserts an author and returns its ID
func CreateTestAuthor(t *testing.T, db *sql.DB, firstName, lastName string) string {
	t.Helper()

	id := auth.GenerateID()
	_, err := db.Exec(`
		INSERT INTO authors (id, first_name, last_name)
		VALUES ($1, $2, $3)
	`, id, firstName, lastName)
	if err != nil {
		t.Fatalf("Failed to create test author: %v", err)
	}
	return id
}

// CreateTestBook inserts a book and returns its ID
func CreateTestBook(t *testing.T, db *sql.DB, title string) string {
	t.Helper()

	id := auth.GenerateID()
	_, err := db.Exec(`
		INSERT INTO books (id, title, description, isbn)
		VALUES ($1, $2, 'A test book', '9780000000000')
	`, id, title)
	if err != nil {
		t.Fatalf("Failed to create test book: %v", err)
	}
	return id
}

// LinkBookAuthor inserts a book_authors row and returns its ID
func LinkBookAuthor(t *testing.T, db *sql.DB, bookID, authorID string) string {
	t.Helper()

	id := auth.GenerateID()
	_, err := db.Exec(`
		INSERT INTO book_authors (id, book_id, author_id)
		VALUES ($1, $2, $3)
	`, id, bookID, authorID)
	if err != nil {
		t.Fatalf("Failed to link book author: %v", err)
	}
	return id
}

// CreateTestReview inserts a review and returns its ID
func CreateTestReview(t *testing.T, db *sql.DB, userID, bookID, comment string, stars int, createdAt time.Time) string {
	t.Helper()

	id := auth.GenerateID()
	_, err := db.Exec(`
		INSERT INTO book_reviews (id, user_id, book_id, comment, stars_given, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, id, userID, bookID, comment, stars, createdAt.UTC())
	if err != nil {
		t.Fatalf("Failed to create test review: %v", err)
	}
	return id
}

// CountRows returns the number of rows in table
func CountRows(t *testing.T, db *sql.DB, table string) int {
	t.Helper()

	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM ` + table).Scan(&n); err != nil {
		t.Fatalf("Failed to count %s: %v", table, err)
	}
	return n
}

// LoginAs opens a session for u and returns the matching cookie
func LoginAs(t *testing.T, db *sql.DB, cfg cliparse.Config, u *models.User) *http.Cookie {
	t.Helper()

	sessions := auth.NewSessions(db, cfg.SecretKey, cfg.SessionTTL)
	token, _, err := sessions.Login(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("Failed to log in test user: %v", err)
	}
	return &http.Cookie{Name: middleware.SessionCookieName, Value: token}
}

// SessionUser resolves the user behind a session cookie, or nil when the
// cookie is missing or no longer authenticates anyone
func SessionUser(t *testing.T, db *sql.DB, cfg cliparse.Config, cookie *http.Cookie) *models.User {
	t.Helper()

	if cookie == nil || cookie.Value == "" || cookie.MaxAge < 0 {
		return nil
	}
	sessions := auth.NewSessions(db, cfg.SecretKey, cfg.SessionTTL)
	u, err := sessions.Resolve(context.Background(), cookie.Value)
	if err != nil {
		return nil
	}
	return u
}

// SessionCookie returns the session cookie set by a response, if any
func SessionCookie(w *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == middleware.SessionCookieName {
			return c
		}
	}
	return nil
}

// MakeFormRequest creates a form-encoded HTTP test request
func MakeFormRequest(method, path string, form url.Values, cookies ...*http.Cookie) *http.Request {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for _, c := range cookies {
		if c != nil {
			req.AddCookie(c)
		}
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}
