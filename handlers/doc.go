// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains the HTTP request handlers for the Goodreads site.

# Handler Types

Each handler is a struct with its dependencies injected by a constructor:

  - BookHandler: landing page and the paginated review listing
  - UserHandler: registration, login, logout and profile pages

	bookHandler := handlers.NewBookHandler(db, cfg, tmpl)
	userHandler := handlers.NewUserHandler(db, cfg, tmpl, sessions)

GET and POST on the same URL are separate methods (RegisterForm and
Register, LoginForm and Login, ProfileEditForm and ProfileEdit) so the
router can dispatch on method patterns.

# Forms

POST handlers read the body with the forms package and validate it. A form
with errors is rendered again with status 200, the submitted values and
one message per failing field. Nothing is written to the database in that
case. Successful submissions answer with a 302:

	POST /users/register/      -> /users/login/
	POST /users/login/         -> next, or /home/
	POST /users/profile/edit/  -> /users/profile/

Failed logins show a single form-level error and never say whether the
username exists.

# Review Listing

Home counts all reviews, picks a page with paginate and loads that slice
newest first, joined with the reviewer's username and the book title.
page_size defaults to the configured page size and is capped at
cliparse.MaxPageSize. A page number that is not an integer shows the first
page, one that is out of range shows the last.

# Errors

Database failures are logged with slog and answered with a plain 500.
*/
package handlers
