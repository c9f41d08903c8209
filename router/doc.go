// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines the HTTP routes of the Goodreads site.

# Route Registration

NewRouter builds the handler tree for all pages:

	handler, err := router.NewRouter(db, cfg)

It fails only when the embedded templates cannot be parsed.

# Endpoints

Pages:

	GET /                          - Landing page
	GET /home/?page=&page_size=    - Paginated review listing

Accounts:

	GET  /users/register/     - Registration form
	POST /users/register/     - Create account, redirect to login
	GET  /users/login/        - Login form (keeps ?next=)
	POST /users/login/        - Open session, redirect to next or /home/
	GET  /users/logout/       - Close session, redirect to /

Login required (anonymous visitors go to /users/login/?next=...):

	GET  /users/profile/       - Profile details
	GET  /users/profile/edit/  - Profile edit form
	POST /users/profile/edit/  - Save profile, redirect to /users/profile/

Operations:

	GET /health   - Liveness check, plain "OK"
	GET /metrics  - Prometheus exposition

Every page pattern ends in {$}, so /home/extra is a 404 rather than a
match for /home/.

# Middleware

Requests pass through, outermost first:

	CrossOriginProtection -> WithSession -> metrics.InstrumentHandler -> ServeMux -> WithLogging -> [LoginRequired] -> handler

CrossOriginProtection answers 403 to POSTs whose Sec-Fetch-Site or Origin
header names another site. GET, HEAD and OPTIONS always pass.
WithSession resolves the session cookie into the request context.
InstrumentHandler labels request metrics by the matched route pattern.
*/
package router
