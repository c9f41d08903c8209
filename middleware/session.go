// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/danielhkuo/goodreads/auth"
	"github.com/danielhkuo/goodreads/models"
)

// SessionCookieName is the cookie carrying the signed session token
const SessionCookieName = "sessionid"

// LoginPath is where LoginRequired sends anonymous visitors
const LoginPath = "/users/login/"

type userKey struct{}

// SessionResolver maps a session token to its user
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (*models.User, error)
}

// WithSession attaches the logged-in user, if any, to the request context.
// Stale or forged cookies are cleared and the request continues anonymously.
func WithSession(sessions SessionResolver, secureCookie bool, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie(SessionCookieName)
		if err != nil || c.Value == "" {
			next.ServeHTTP(w, r)
			return
		}

		u, err := sessions.Resolve(r.Context(), c.Value)
		switch {
		case err == nil:
			r = r.WithContext(WithUser(r.Context(), u))
		case errors.Is(err, auth.ErrNoSession), errors.Is(err, auth.ErrInvalidToken):
			ClearSessionCookie(w, secureCookie)
		default:
			slog.Error("failed to resolve session", "error", err)
		}

		next.ServeHTTP(w, r)
	})
}

// WithUser returns a copy of ctx carrying u
func WithUser(ctx context.Context, u *models.User) context.Context {
	return context.WithValue(ctx, userKey{}, u)
}

// CurrentUser returns the authenticated user or nil for anonymous requests
func CurrentUser(r *http.Request) *models.User {
	u, _ := r.Context().Value(userKey{}).(*models.User)
	return u
}

// LoginRequired redirects anonymous requests to the login page with a
// next parameter pointing back at the original URL
func LoginRequired(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if CurrentUser(r) == nil {
			http.Redirect(w, r, LoginURL(r.URL.RequestURI()), http.StatusFound)
			return
		}
		next(w, r)
	}
}

// LoginURL builds the login redirect target for next. Slashes stay
// readable: /users/login/?next=/users/profile/
func LoginURL(next string) string {
	return LoginPath + "?next=" + strings.ReplaceAll(url.QueryEscape(next), "%2F", "/")
}

// SafeNext returns next when it is a local absolute path, otherwise ""
func SafeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.Contains(next, `\`) {
		return ""
	}
	u, err := url.Parse(next)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return ""
	}
	return next
}

// SetSessionCookie stores the session token in an HttpOnly cookie
func SetSessionCookie(w http.ResponseWriter, token string, expires time.Time, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie tells the browser to drop the session cookie
func ClearSessionCookie(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}
