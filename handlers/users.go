// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/goodreads/auth"
	"github.com/danielhkuo/goodreads/cliparse"
	"github.com/danielhkuo/goodreads/forms"
	"github.com/danielhkuo/goodreads/metrics"
	"github.com/danielhkuo/goodreads/middleware"
	"github.com/danielhkuo/goodreads/models"
	"github.com/danielhkuo/goodreads/templates"
)

const (
	homePath    = "/home/"
	profilePath = "/users/profile/"
)

type UserHandler struct {
	db       *sql.DB
	cfg      cliparse.Config
	tmpl     *templates.Renderer
	sessions *auth.Sessions
}

func NewUserHandler(db *sql.DB, cfg cliparse.Config, tmpl *templates.Renderer, sessions *auth.Sessions) *UserHandler {
	return &UserHandler{db: db, cfg: cfg, tmpl: tmpl, sessions: sessions}
}

// RegisterForm handles GET /users/register/
func (h *UserHandler) RegisterForm(w http.ResponseWriter, r *http.Request) {
	h.tmpl.Render(w, http.StatusOK, templates.Register, templates.Data{
		User: middleware.CurrentUser(r),
		Form: forms.Registration{},
	})
}

// Register handles POST /users/register/
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	form := forms.NewRegistration(r)
	errs := forms.Validate(form)

	if !errs.Has("username") {
		taken, err := auth.UsernameTaken(r.Context(), h.db, form.Username, "")
		if err != nil {
			slog.Error("failed to check username", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to register")
			return
		}
		if taken {
			errs.Add("username", forms.MsgUsernameTaken)
		}
	}

	if errs.Any() {
		h.tmpl.Render(w, http.StatusOK, templates.Register, templates.Data{
			User:   middleware.CurrentUser(r),
			Form:   form,
			Errors: errs,
		})
		return
	}

	u := &models.User{
		Username:  form.Username,
		FirstName: form.FirstName,
		LastName:  form.LastName,
		Email:     form.Email,
		IsActive:  true,
	}
	err := auth.CreateUser(r.Context(), h.db, u, form.Password)
	if errors.Is(err, auth.ErrUsernameTaken) {
		errs.Add("username", forms.MsgUsernameTaken)
		h.tmpl.Render(w, http.StatusOK, templates.Register, templates.Data{
			User:   middleware.CurrentUser(r),
			Form:   form,
			Errors: errs,
		})
		return
	}
	if err != nil {
		slog.Error("failed to create user", "username", form.Username, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to register")
		return
	}

	metrics.RecordRegistration()
	slog.Info("user registered", "user_id", u.ID, "username", u.Username)

	http.Redirect(w, r, middleware.LoginPath, http.StatusFound)
}

// LoginForm handles GET /users/login/
func (h *UserHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	h.tmpl.Render(w, http.StatusOK, templates.Login, templates.Data{
		User: middleware.CurrentUser(r),
		Form: forms.Login{},
		Next: middleware.SafeNext(r.URL.Query().Get("next")),
	})
}

// Login handles POST /users/login/
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	form := forms.NewLogin(r)
	next := middleware.SafeNext(r.PostFormValue("next"))
	errs := forms.Validate(form)

	var u *models.User
	if !errs.Any() {
		var err error
		u, err = h.sessions.Authenticate(r.Context(), form.Username, form.Password)
		if errors.Is(err, auth.ErrInvalidCredentials) {
			errs.Add(forms.NonFieldErrors, forms.MsgInvalidLogin)
		} else if err != nil {
			slog.Error("failed to authenticate", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to log in")
			return
		}
	}

	if errs.Any() {
		metrics.RecordLogin(metrics.LoginFailed)
		slog.Info("login failed", "username", form.Username, "remote", middleware.GetClientIP(r))
		h.tmpl.Render(w, http.StatusOK, templates.Login, templates.Data{
			Form:   form,
			Errors: errs,
			Next:   next,
		})
		return
	}

	// a fresh login replaces whatever session the browser carried
	if c, err := r.Cookie(middleware.SessionCookieName); err == nil && c.Value != "" {
		if err := h.sessions.Logout(r.Context(), c.Value); err != nil {
			slog.Error("failed to drop previous session", "error", err)
		}
	}

	token, expires, err := h.sessions.Login(r.Context(), u.ID)
	if err != nil {
		slog.Error("failed to create session", "user_id", u.ID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to log in")
		return
	}
	middleware.SetSessionCookie(w, token, expires, h.cfg.CookieSecure)

	metrics.RecordLogin(metrics.LoginSucceeded)
	slog.Info("user logged in", "user_id", u.ID)

	if next == "" {
		next = homePath
	}
	http.Redirect(w, r, next, http.StatusFound)
}

// Logout handles GET /users/logout/
func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(middleware.SessionCookieName); err == nil && c.Value != "" {
		if err := h.sessions.Logout(r.Context(), c.Value); err != nil {
			slog.Error("failed to delete session", "error", err)
		}
	}
	if u := middleware.CurrentUser(r); u != nil {
		slog.Info("user logged out", "user_id", u.ID)
	}

	middleware.ClearSessionCookie(w, h.cfg.CookieSecure)
	http.Redirect(w, r, "/", http.StatusFound)
}

// Profile handles GET /users/profile/
func (h *UserHandler) Profile(w http.ResponseWriter, r *http.Request) {
	h.tmpl.Render(w, http.StatusOK, templates.Profile, templates.Data{
		User: middleware.CurrentUser(r),
	})
}

// ProfileEditForm handles GET /users/profile/edit/
func (h *UserHandler) ProfileEditForm(w http.ResponseWriter, r *http.Request) {
	u := middleware.CurrentUser(r)
	h.tmpl.Render(w, http.StatusOK, templates.ProfileEdit, templates.Data{
		User: u,
		Form: forms.Profile{
			Username:  u.Username,
			FirstName: u.FirstName,
			LastName:  u.LastName,
			Email:     u.Email,
		},
	})
}

// ProfileEdit handles POST /users/profile/edit/
func (h *UserHandler) ProfileEdit(w http.ResponseWriter, r *http.Request) {
	u := middleware.CurrentUser(r)
	form := forms.NewProfile(r)
	errs := forms.Validate(form)

	if !errs.Has("username") {
		taken, err := auth.UsernameTaken(r.Context(), h.db, form.Username, u.ID)
		if err != nil {
			slog.Error("failed to check username", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update profile")
			return
		}
		if taken {
			errs.Add("username", forms.MsgUsernameTaken)
		}
	}

	if errs.Any() {
		h.tmpl.Render(w, http.StatusOK, templates.ProfileEdit, templates.Data{
			User:   u,
			Form:   form,
			Errors: errs,
		})
		return
	}

	updated := *u
	updated.Username = form.Username
	updated.FirstName = form.FirstName
	updated.LastName = form.LastName
	updated.Email = form.Email

	err := auth.UpdateProfile(r.Context(), h.db, &updated)
	if errors.Is(err, auth.ErrUsernameTaken) {
		errs.Add("username", forms.MsgUsernameTaken)
		h.tmpl.Render(w, http.StatusOK, templates.ProfileEdit, templates.Data{
			User:   u,
			Form:   form,
			Errors: errs,
		})
		return
	}
	if err != nil {
		slog.Error("failed to update profile", "user_id", u.ID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update profile")
		return
	}

	slog.Info("profile updated", "user_id", u.ID)
	http.Redirect(w, r, profilePath, http.StatusFound)
}
