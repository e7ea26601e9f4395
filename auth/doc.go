// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides credential and session primitives.

# Identifiers

NewID returns a UUID string used as the primary key of every row:

	id := auth.NewID()

# Verification Codes

GenerateOTP returns a random 6-digit code. Storage, expiry and consumption of
codes live in the handlers package; this package only produces them.

# Passwords

Passwords are hashed with bcrypt (cost 12):

	hash, err := auth.HashPassword("Secret123")
	err = auth.CheckPassword(&hash, "Secret123")

CheckPassword returns ErrNoPassword for accounts created without a password
and ErrInvalidPassword on mismatch.

# Sessions

Sessions are HS256 JWTs signed with the configured secret. The subject is the
user ID; username, role and reputation are cached as claims:

	token, expires, err := auth.IssueSession(user, secret, ttl, time.Now())
	user, err := auth.ParseSession(token, secret)

Browser clients receive the token in the SessionCookie cookie; API clients
send it as "Authorization: Bearer <token>".
*/
package auth
