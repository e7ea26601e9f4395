// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/danielhkuo/community-forum/cliparse"
	"github.com/danielhkuo/community-forum/db"
	"github.com/danielhkuo/community-forum/middleware"
	"github.com/danielhkuo/community-forum/models"
)

const profileListSize = 10

type UserHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewUserHandler(db *sql.DB, cfg cliparse.Config) *UserHandler {
	return &UserHandler{db: db, cfg: cfg}
}

const userSelect = `
	SELECT id, name, email, username, email_verified, image, bio, website, github, twitter,
	       role, reputation, is_banned, created_at
	FROM users`

func scanUser(s scanner) (models.User, error) {
	var u models.User
	err := s.Scan(&u.ID, &u.Name, &u.Email, &u.Username, &u.EmailVerified, &u.Image, &u.Bio, &u.Website,
		&u.GitHub, &u.Twitter, &u.Role, &u.Reputation, &u.IsBanned, &u.CreatedAt)
	u.CreatedAt = u.CreatedAt.UTC()
	return u, err
}

// lookupUser finds a user by username, falling back to id.
func lookupUser(ctx context.Context, conn *sql.DB, key string) (models.User, error) {
	return scanUser(conn.QueryRowContext(ctx, userSelect+` WHERE username = $1 OR id = $1`, key))
}

// profileUser resolves the {username} path value, writing a 404 when unknown.
func (h *UserHandler) profileUser(w http.ResponseWriter, r *http.Request) (models.User, bool) {
	u, err := lookupUser(r.Context(), h.db, r.PathValue("username"))
	if errors.Is(err, sql.ErrNoRows) {
		middleware.ErrorResponse(w, http.StatusNotFound, "User not found")
		return models.User{}, false
	}
	if err != nil {
		serverError(w, "failed to load user", err)
		return models.User{}, false
	}
	return u, true
}

// GetProfile handles GET /api/users/{username}
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	u, ok := h.profileUser(w, r)
	if !ok {
		return
	}
	if viewer, _ := middleware.CurrentUser(r); viewer.ID != u.ID {
		u.Email = ""
	}

	rows, err := h.db.QueryContext(ctx, `
		SELECT b.id, b.name, b.slug, b.description, b.icon, b.color, ub.awarded_at
		FROM user_badge ub
		JOIN badge b ON ub.badge_id = b.id
		WHERE ub.user_id = $1
		ORDER BY ub.awarded_at DESC
	`, u.ID)
	if err != nil {
		serverError(w, "failed to query badges", err, "user_id", u.ID)
		return
	}
	badges := []models.Badge{}
	for rows.Next() {
		var b models.Badge
		if err := rows.Scan(&b.ID, &b.Name, &b.Slug, &b.Description, &b.Icon, &b.Color, &b.AwardedAt); err != nil {
			rows.Close()
			serverError(w, "failed to scan badge", err)
			return
		}
		b.AwardedAt = b.AwardedAt.UTC()
		badges = append(badges, b)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		serverError(w, "failed to iterate badges", err)
		return
	}

	profile := models.Profile{User: u, Badges: badges}
	if err := h.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM topic WHERE author_id = $1`, u.ID).Scan(&profile.TopicCount); err != nil {
		serverError(w, "failed to count topics", err, "user_id", u.ID)
		return
	}
	if err := h.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM reply WHERE author_id = $1 AND is_deleted = FALSE`, u.ID).Scan(&profile.ReplyCount); err != nil {
		serverError(w, "failed to count replies", err, "user_id", u.ID)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, profile)
}

// UserTopics handles GET /api/users/{username}/topics
func (h *UserHandler) UserTopics(w http.ResponseWriter, r *http.Request) {
	u, ok := h.profileUser(w, r)
	if !ok {
		return
	}

	topics, err := listTopics(r.Context(), h.db, fmt.Sprintf(`%s
		WHERE t.author_id = $1 AND p.status <> 'HIDDEN'
		ORDER BY t.created_at DESC
		LIMIT %d`, topicSelect, profileListSize), u.ID)
	if err != nil {
		serverError(w, "failed to list user topics", err, "user_id", u.ID)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, topics)
}

// UserReplies handles GET /api/users/{username}/replies
func (h *UserHandler) UserReplies(w http.ResponseWriter, r *http.Request) {
	u, ok := h.profileUser(w, r)
	if !ok {
		return
	}

	rows, err := h.db.QueryContext(r.Context(), `
		SELECT r.id, r.topic_id, r.parent_id, r.body, r.vote_score, r.is_deleted, r.created_at, r.updated_at,
		       u.id, u.name, u.username, u.image, u.role, u.reputation,
		       t.title, t.slug, p.slug
		FROM reply r
		JOIN users u ON r.author_id = u.id
		JOIN topic t ON r.topic_id = t.id
		JOIN product p ON t.product_id = p.id
		WHERE r.author_id = $1 AND r.is_deleted = FALSE
		ORDER BY r.created_at DESC
		LIMIT $2
	`, u.ID, profileListSize)
	if err != nil {
		serverError(w, "failed to query user replies", err, "user_id", u.ID)
		return
	}
	defer rows.Close()

	replies := []models.UserReply{}
	for rows.Next() {
		var ur models.UserReply
		rp := &ur.Reply
		if err := rows.Scan(&rp.ID, &rp.TopicID, &rp.ParentID, &rp.Body, &rp.VoteScore, &rp.IsDeleted, &rp.CreatedAt, &rp.UpdatedAt,
			&rp.Author.ID, &rp.Author.Name, &rp.Author.Username, &rp.Author.Image, &rp.Author.Role, &rp.Author.Reputation,
			&ur.TopicTitle, &ur.TopicSlug, &ur.ProductSlug); err != nil {
			serverError(w, "failed to scan user reply", err)
			return
		}
		rp.CreatedAt = rp.CreatedAt.UTC()
		rp.UpdatedAt = rp.UpdatedAt.UTC()
		replies = append(replies, ur)
	}
	if err := rows.Err(); err != nil {
		serverError(w, "failed to iterate user replies", err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, replies)
}

// UserBookmarks handles GET /api/users/{username}/bookmarks
func (h *UserHandler) UserBookmarks(w http.ResponseWriter, r *http.Request) {
	viewer, _ := middleware.CurrentUser(r)

	u, ok := h.profileUser(w, r)
	if !ok {
		return
	}
	if u.ID != viewer.ID {
		middleware.ErrorResponse(w, http.StatusForbidden, "Bookmarks are private")
		return
	}

	topics, err := listTopics(r.Context(), h.db, topicSelect+`
		JOIN bookmark b ON b.topic_id = t.id
		WHERE b.user_id = $1
		ORDER BY b.created_at DESC`, u.ID)
	if err != nil {
		serverError(w, "failed to list bookmarks", err, "user_id", u.ID)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, topics)
}

// GetMe handles GET /api/me
func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	viewer, _ := middleware.CurrentUser(r)

	u, err := scanUser(h.db.QueryRowContext(r.Context(), userSelect+` WHERE id = $1`, viewer.ID))
	if errors.Is(err, sql.ErrNoRows) {
		middleware.ErrorResponse(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		serverError(w, "failed to load user", err, "user_id", viewer.ID)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, u)
}

// UpdateMe handles PATCH /api/me
func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	viewer, _ := middleware.CurrentUser(r)
	ctx := r.Context()

	var req models.UpdateProfileRequest
	if !middleware.DecodeAndValidate(w, r, &req) {
		return
	}

	var (
		sets []string
		args []any
	)
	set := func(column string, v *string) {
		if v == nil {
			return
		}
		args = append(args, nullable(strings.TrimSpace(*v)))
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	set("name", req.Name)
	set("username", req.Username)
	set("bio", req.Bio)
	set("website", req.Website)
	set("github", req.GitHub)
	set("twitter", req.Twitter)

	if len(sets) > 0 {
		args = append(args, viewer.ID)
		query := fmt.Sprintf("UPDATE users SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args))
		_, err := h.db.ExecContext(ctx, query, args...)
		if db.IsUniqueViolation(err) {
			middleware.ErrorResponse(w, http.StatusConflict, "Username is already taken")
			return
		}
		if err != nil {
			serverError(w, "failed to update profile", err, "user_id", viewer.ID)
			return
		}
		slog.Info("profile updated", "user_id", viewer.ID)
	}

	u, err := scanUser(h.db.QueryRowContext(ctx, userSelect+` WHERE id = $1`, viewer.ID))
	if err != nil {
		serverError(w, "failed to reload user", err, "user_id", viewer.ID)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, u)
}
