// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/goodreads/cliparse"
	"github.com/danielhkuo/goodreads/middleware"
	"github.com/danielhkuo/goodreads/models"
	"github.com/danielhkuo/goodreads/paginate"
	"github.com/danielhkuo/goodreads/templates"
)

type BookHandler struct {
	db   *sql.DB
	cfg  cliparse.Config
	tmpl *templates.Renderer
}

func NewBookHandler(db *sql.DB, cfg cliparse.Config, tmpl *templates.Renderer) *BookHandler {
	return &BookHandler{db: db, cfg: cfg, tmpl: tmpl}
}

// Landing handles GET /
func (h *BookHandler) Landing(w http.ResponseWriter, r *http.Request) {
	h.tmpl.Render(w, http.StatusOK, templates.Landing, templates.Data{
		User: middleware.CurrentUser(r),
	})
}

// Home handles GET /home/?page=&page_size=
func (h *BookHandler) Home(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	perPage := paginate.PageSize(q.Get("page_size"), h.cfg.PageSize, cliparse.MaxPageSize)

	var count int
	if err := h.db.QueryRowContext(r.Context(), `SELECT COUNT(*) FROM book_reviews`).Scan(&count); err != nil {
		slog.Error("failed to count reviews", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to load reviews")
		return
	}

	page := paginate.New(count, perPage).GetPage(q.Get("page"))

	var reviews []models.ReviewListing
	if page.Limit > 0 {
		var err error
		reviews, err = listReviews(r.Context(), h.db, page.Limit, page.Offset)
		if err != nil {
			slog.Error("failed to list reviews", "page", page.Number, "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to load reviews")
			return
		}
	}

	h.tmpl.Render(w, http.StatusOK, templates.Home, templates.Data{
		User:    middleware.CurrentUser(r),
		Page:    page,
		Reviews: reviews,
	})
}

// listReviews returns one page of reviews, newest first
func listReviews(ctx context.Context, db *sql.DB, limit, offset int) ([]models.ReviewListing, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT r.id, r.user_id, r.book_id, r.comment, r.stars_given, r.created_at,
		       u.username, b.title
		FROM book_reviews r
		JOIN users u ON u.id = r.user_id
		JOIN books b ON b.id = r.book_id
		ORDER BY r.created_at DESC, r.id DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query reviews: %w", err)
	}
	defer rows.Close()

	reviews := make([]models.ReviewListing, 0, limit)
	for rows.Next() {
		var rv models.ReviewListing
		if err := rows.Scan(&rv.ID, &rv.UserID, &rv.BookID, &rv.Comment, &rv.StarsGiven, &rv.CreatedAt,
			&rv.Username, &rv.BookTitle); err != nil {
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}
		reviews = append(reviews, rv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate reviews: %w", err)
	}
	return reviews, nil
}
