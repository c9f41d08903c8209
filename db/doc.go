// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db opens the database and applies the schema migrations.

# Backends

Open accepts "sqlite" (modernc.org/sqlite, pure Go) or "postgres"
(github.com/lib/pq):

	conn, err := db.Open(ctx, cliparse.DatabaseSQLite, "file:goodreads.db")

SQLite connections get foreign keys and a busy timeout through DSN
pragmas. Both backends use $N placeholders, so the same SQL runs on either.

# Migrations

Migrate applies the embedded goose migrations in migrations/ and is safe
to call on every start:

	if err := db.Migrate(ctx, conn, cliparse.DatabaseSQLite); err != nil {
		return err
	}

# Tables

  - users: accounts, unique username
  - sessions: server-side login sessions
  - authors, books
  - book_authors: book to author links
  - book_reviews: one user's rating (1-5 stars) and comment on a book

# Relationships

	users 1──* sessions
	users 1──* book_reviews
	books 1──* book_reviews
	books *──* authors (via book_authors)

All foreign keys use ON DELETE CASCADE.
*/
package db
