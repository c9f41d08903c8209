// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the Goodreads web server.

Goodreads is a small book-review site: visitors register, log in, manage
their profile and browse everyone's reviews, newest first.

# Starting the Server

The server reads configuration from flags, the environment and an optional
.env file in the working directory:

	DATABASE_URL=file:goodreads.db SECRET_KEY=change-me go run .

Or with flags:

	go run . -p 3318 -d "postgres://..." -t postgres -secret change-me

# Configuration

Required settings:

  - DATABASE_URL (-d): SQLite file DSN or PostgreSQL connection string
  - SECRET_KEY (-secret): key signing the session cookie

Optional settings:

  - PORT (-p): server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - PAGE_SIZE (-page-size): reviews per page (default: 10)
  - SESSION_TTL (-session-ttl): session lifetime (default: 336h)
  - COOKIE_SECURE (-cookie-secure): mark the session cookie Secure
  - LOG_LEVEL (-log-level): debug, info, warn or error (default: info)

# Architecture

  - handlers: page handlers (books, users)
  - router: route definitions using Go 1.22+ routing
  - middleware: logging, sessions, login-required redirects
  - templates: embedded html/template pages
  - forms: form parsing and validation
  - paginate: page arithmetic for the review listing
  - auth: password hashing, users and sessions
  - metrics: Prometheus collectors
  - logging: slog setup
  - models: domain types
  - db: connections and goose migrations
  - cliparse: configuration parsing

See package documentation for each component.
*/
package main
