// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/danielhkuo/community-forum/auth"
	"github.com/danielhkuo/community-forum/models"
)

type contextKey struct{}

var userKey contextKey

// WithUser returns a copy of ctx carrying user.
func WithUser(ctx context.Context, user models.SessionUser) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// CurrentUser returns the signed-in user attached by Authenticator.
func CurrentUser(r *http.Request) (models.SessionUser, bool) {
	user, ok := r.Context().Value(userKey).(models.SessionUser)
	return user, ok
}

// Authenticator resolves session tokens to users.
type Authenticator struct {
	db     *sql.DB
	secret string
}

func NewAuthenticator(db *sql.DB, secret string) *Authenticator {
	return &Authenticator{db: db, secret: secret}
}

// sessionToken reads the bearer token, falling back to the session cookie.
func sessionToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	if c, err := r.Cookie(auth.SessionCookie); err == nil {
		return c.Value
	}
	return ""
}

// resolve returns the request's user with role and reputation re-read from
// the database. Banned and deleted users resolve to no user.
func (a *Authenticator) resolve(r *http.Request) (models.SessionUser, bool) {
	token := sessionToken(r)
	if token == "" {
		return models.SessionUser{}, false
	}

	claims, err := auth.ParseSession(token, a.secret)
	if err != nil {
		slog.Debug("rejected session token", "error", err)
		return models.SessionUser{}, false
	}

	var (
		user     = models.SessionUser{ID: claims.ID}
		username sql.NullString
		banned   bool
	)
	err = a.db.QueryRowContext(r.Context(), `
		SELECT username, role, reputation, is_banned FROM users WHERE id = $1
	`, claims.ID).Scan(&username, &user.Role, &user.Reputation, &banned)
	if errors.Is(err, sql.ErrNoRows) {
		return models.SessionUser{}, false
	}
	if err != nil {
		slog.Error("failed to load session user", "error", err, "user_id", claims.ID)
		return models.SessionUser{}, false
	}
	if banned {
		return models.SessionUser{}, false
	}

	user.Username = username.String
	return user, true
}

// Optional attaches the user when a valid session is present.
func (a *Authenticator) Optional(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if user, ok := a.resolve(r); ok {
			r = r.WithContext(WithUser(r.Context(), user))
		}
		next(w, r)
	}
}

// Require rejects requests without a valid session.
func (a *Authenticator) Require(next http.HandlerFunc) http.HandlerFunc {
	return a.requireRole(nil, next)
}

// RequireModerator allows moderators and admins.
func (a *Authenticator) RequireModerator(next http.HandlerFunc) http.HandlerFunc {
	return a.requireRole(models.CanModerate, next)
}

// RequireAdmin allows admins only.
func (a *Authenticator) RequireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return a.requireRole(models.CanAdmin, next)
}

func (a *Authenticator) requireRole(allowed func(string) bool, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := a.resolve(r)
		if !ok {
			ErrorResponse(w, http.StatusUnauthorized, "You must be signed in")
			return
		}
		if allowed != nil && !allowed(user.Role) {
			ErrorResponse(w, http.StatusForbidden, "You do not have permission to do that")
			return
		}
		next(w, r.WithContext(WithUser(r.Context(), user)))
	}
}
