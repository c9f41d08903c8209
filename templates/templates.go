// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package templates renders the server-side HTML pages.
package templates

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/goodreads/forms"
	"github.com/danielhkuo/goodreads/models"
	"github.com/danielhkuo/goodreads/paginate"
)

//go:embed html/*.html
var files embed.FS

// Page names accepted by Render
const (
	Landing     = "landing.html"
	Home        = "home.html"
	Register    = "register.html"
	Login       = "login.html"
	Profile     = "profile.html"
	ProfileEdit = "profile_edit.html"
)

var pages = []string{Landing, Home, Register, Login, Profile, ProfileEdit}

// Data is the template context shared by every page
type Data struct {
	User    *models.User
	Form    any
	Errors  forms.Errors
	Next    string
	Page    paginate.Page
	Reviews []models.ReviewListing
}

var funcs = template.FuncMap{
	"naturaltime": func(t time.Time) string { return humanize.Time(t) },
	"intcomma":    func(n int) string { return humanize.Comma(int64(n)) },
	"stars": func(n int) string {
		if n < models.MinStars {
			n = models.MinStars
		}
		if n > models.MaxStars {
			n = models.MaxStars
		}
		return strings.Repeat("★", n) + strings.Repeat("☆", models.MaxStars-n)
	},
}

// Renderer holds one parsed template set per page
type Renderer struct {
	pages map[string]*template.Template
}

func New() (*Renderer, error) {
	r := &Renderer{pages: make(map[string]*template.Template, len(pages))}
	for _, name := range pages {
		t, err := template.New(name).Funcs(funcs).ParseFS(files, "html/base.html", "html/"+name)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", name, err)
		}
		r.pages[name] = t
	}
	return r, nil
}

// Render executes page into a buffer and writes it with status. Template
// failures are logged and answered with a 500 so no partial page is sent.
func (r *Renderer) Render(w http.ResponseWriter, status int, name string, data Data) {
	t, ok := r.pages[name]
	if !ok {
		slog.Error("unknown template", "template", name)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "base", data); err != nil {
		slog.Error("failed to render template", "template", name, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}
