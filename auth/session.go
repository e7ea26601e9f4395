// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/danielhkuo/community-forum/models"
)

// SessionCookie is the cookie carrying the session token for browser clients.
const SessionCookie = "forum_session"

const sessionIssuer = "community-forum"

var ErrInvalidSession = errors.New("invalid session token")

// SessionClaims mirrors the user fields cached in the token. Role and
// reputation are refreshed from the database on every request.
type SessionClaims struct {
	Username   string `json:"username,omitempty"`
	Role       string `json:"role"`
	Reputation int    `json:"reputation"`
	jwt.RegisteredClaims
}

// IssueSession signs a session token for user that expires after ttl.
func IssueSession(user models.SessionUser, secret string, ttl time.Duration, now time.Time) (string, time.Time, error) {
	expires := now.Add(ttl)
	claims := SessionClaims{
		Username:   user.Username,
		Role:       user.Role,
		Reputation: user.Reputation,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			Issuer:    sessionIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign session: %w", err)
	}
	return token, expires, nil
}

// ParseSession verifies a session token and returns the user it names.
func ParseSession(token, secret string) (models.SessionUser, error) {
	var claims SessionClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return []byte(secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(sessionIssuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return models.SessionUser{}, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}
	if claims.Subject == "" {
		return models.SessionUser{}, ErrInvalidSession
	}

	return models.SessionUser{
		ID:         claims.Subject,
		Username:   claims.Username,
		Role:       claims.Role,
		Reputation: claims.Reputation,
	}, nil
}
