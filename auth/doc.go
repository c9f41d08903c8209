// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides password hashing, user lookups and login sessions.

# Passwords

Passwords are stored as bcrypt hashes of their base64 SHA-256 digest, so
passwords longer than bcrypt's 72-byte input limit hash in full:

	hash, err := auth.HashPassword("somepassword")
	ok := auth.CheckPassword(hash, "somepassword")

# Users

CreateUser, GetUserByUsername, GetUserByID, UsernameTaken and UpdateProfile
wrap the users table. Lookups return ErrUserNotFound for missing rows.
CreateUser and UpdateProfile return ErrUsernameTaken when the username
unique constraint rejects the write, which covers concurrent sign-ups that
both passed UsernameTaken.

# Sessions

Sessions are rows in the sessions table. The cookie carries an HS256
token whose jti is the session key and whose sub is the user ID:

	sessions := auth.NewSessions(db, cfg.SecretKey, cfg.SessionTTL)
	user, err := sessions.Authenticate(ctx, username, password)
	token, expires, err := sessions.Login(ctx, user.ID)
	user, err = sessions.Resolve(ctx, token)
	err = sessions.Logout(ctx, token)

A forged or expired token yields ErrInvalidToken. A well-formed token
whose row is gone (logged out, expired, user deleted or deactivated)
yields ErrNoSession.

# ID Generation

	id := auth.GenerateID()              // uuid v4 string
	key, err := auth.GenerateSessionKey() // 192-bit URL-safe key
*/
package auth
