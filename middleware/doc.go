// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

Wrap handlers with request logging:

	mux.HandleFunc("GET /health", middleware.WithLogging(handler))

Logs request start at debug level (method, path, remote) and completion
(status, duration_ms).

# Sessions

WithSession resolves the session cookie into a user stored on the request
context. Handlers read it back with CurrentUser:

	handler := middleware.WithSession(sessions, cfg.CookieSecure, mux)

	if u := middleware.CurrentUser(r); u != nil {
		// authenticated
	}

LoginRequired redirects anonymous requests with 302 Found to
/users/login/?next=<original path>. SafeNext filters next values so that
a login can only redirect within the site.

# Client IP Extraction

Get the original client IP (handles X-Forwarded-For, X-Real-IP):

	ip := middleware.GetClientIP(r)
*/
package middleware
