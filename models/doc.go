// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines the domain types shared by handlers, auth and tests.

# Users

  - User: account record; Password holds a bcrypt hash
  - Session: server-side login session referenced by the session cookie

# Books

  - Author, Book: reference entities
  - BookAuthor: many-to-many join row between Book and Author
  - BookReview: one user's review of one book (1-5 stars)
  - ReviewListing: BookReview joined with username and book title

# Cascades

	users 1──* book_reviews   (ON DELETE CASCADE)
	users 1──* sessions       (ON DELETE CASCADE)
	books 1──* book_reviews   (ON DELETE CASCADE)
	books *──* authors        (via book_authors, ON DELETE CASCADE)
*/
package models
