// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"fmt"
	"net/http"

	"github.com/danielhkuo/goodreads/auth"
	"github.com/danielhkuo/goodreads/cliparse"
	"github.com/danielhkuo/goodreads/handlers"
	"github.com/danielhkuo/goodreads/metrics"
	"github.com/danielhkuo/goodreads/middleware"
	"github.com/danielhkuo/goodreads/templates"
)

func NewRouter(db *sql.DB, cfg cliparse.Config) (http.Handler, error) {
	mux := http.NewServeMux()

	tmpl, err := templates.New()
	if err != nil {
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}
	sessions := auth.NewSessions(db, cfg.SecretKey, cfg.SessionTTL)

	// Initialize handlers
	bookHandler := handlers.NewBookHandler(db, cfg, tmpl)
	userHandler := handlers.NewUserHandler(db, cfg, tmpl, sessions)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	mux.Handle("GET /metrics", metrics.Handler())

	// Pages
	mux.HandleFunc("GET /{$}", middleware.WithLogging(bookHandler.Landing))
	mux.HandleFunc("GET /home/{$}", middleware.WithLogging(bookHandler.Home))

	// Accounts
	mux.HandleFunc("GET /users/register/{$}", middleware.WithLogging(userHandler.RegisterForm))
	mux.HandleFunc("POST /users/register/{$}", middleware.WithLogging(userHandler.Register))
	mux.HandleFunc("GET /users/login/{$}", middleware.WithLogging(userHandler.LoginForm))
	mux.HandleFunc("POST /users/login/{$}", middleware.WithLogging(userHandler.Login))
	mux.HandleFunc("GET /users/logout/{$}", middleware.WithLogging(userHandler.Logout))

	// Login required
	mux.HandleFunc("GET /users/profile/{$}", middleware.WithLogging(middleware.LoginRequired(userHandler.Profile)))
	mux.HandleFunc("GET /users/profile/edit/{$}", middleware.WithLogging(middleware.LoginRequired(userHandler.ProfileEditForm)))
	mux.HandleFunc("POST /users/profile/edit/{$}", middleware.WithLogging(middleware.LoginRequired(userHandler.ProfileEdit)))

	// InstrumentHandler must wrap the mux directly to see r.Pattern
	handler := middleware.WithSession(sessions, cfg.CookieSecure, metrics.InstrumentHandler(mux))

	// Cross-site form posts are rejected before any session work
	return http.NewCrossOriginProtection().Handler(handler), nil
}
