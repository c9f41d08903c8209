// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import "time"

// Star rating bounds for a review
const (
	MinStars = 1
	MaxStars = 5
)

// Domain types

type User struct {
	ID         string     `json:"id"`
	Username   string     `json:"username"`
	FirstName  string     `json:"first_name"`
	LastName   string     `json:"last_name"`
	Email      string     `json:"email"`
	Password   string     `json:"-"` // bcrypt hash, never exposed
	IsActive   bool       `json:"is_active"`
	DateJoined time.Time  `json:"date_joined"`
	LastLogin  *time.Time `json:"last_login,omitempty"`
}

// FullName joins first and last name, falling back to the username
func (u *User) FullName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	case u.LastName != "":
		return u.LastName
	}
	return u.Username
}

type Session struct {
	Key       string    `json:"-"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

type Author struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Bio       string `json:"bio"`
}

type Book struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	ISBN        string `json:"isbn"`
}

type BookAuthor struct {
	ID       string `json:"id"`
	BookID   string `json:"book_id"`
	AuthorID string `json:"author_id"`
}

type BookReview struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	BookID     string    `json:"book_id"`
	Comment    string    `json:"comment"`
	StarsGiven int       `json:"stars_given"`
	CreatedAt  time.Time `json:"created_at"`
}

// ReviewListing is a review joined with the names the home page shows
type ReviewListing struct {
	BookReview
	Username  string `json:"username"`
	BookTitle string `json:"book_title"`
}
