// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("invalid session token")
	ErrNoSession          = errors.New("no active session")
	ErrUserNotFound       = errors.New("user not found")
	ErrUsernameTaken      = errors.New("username already taken")
)

// dummyHash is compared against when the username is unknown so that a
// failed lookup costs the same as a wrong password.
var dummyHash = mustHash("not-a-real-password")

// GenerateID returns a new random record ID
func GenerateID() string {
	return uuid.NewString()
}

// GenerateSessionKey creates a random secure key for a login session
func GenerateSessionKey() (string, error) {
	b := make([]byte, 24) // 24 bytes = 192 bits of entropy
	_, err := rand.Read(b)
	if err != nil {
		return "", fmt.Errorf("failed to generate session key: %w", err)
	}
	// URL-safe base64 without padding
	return strings.TrimRight(base64.URLEncoding.EncodeToString(b), "="), nil
}

// HashPassword returns the bcrypt hash of a raw password of any length
func HashPassword(raw string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword(prehash(raw), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether raw matches the stored bcrypt hash
func CheckPassword(hash, raw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), prehash(raw)) == nil
}

// prehash folds raw into 44 bytes, under bcrypt's 72-byte input limit
func prehash(raw string) []byte {
	sum := sha256.Sum256([]byte(raw))
	return []byte(base64.StdEncoding.EncodeToString(sum[:]))
}

func mustHash(raw string) string {
	hash, err := HashPassword(raw)
	if err != nil {
		panic(err)
	}
	return hash
}
