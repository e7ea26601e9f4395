// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/community-forum/auth"
	"github.com/danielhkuo/community-forum/cliparse"
	"github.com/danielhkuo/community-forum/middleware"
	"github.com/danielhkuo/community-forum/models"
)

type ReplyHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewReplyHandler(db *sql.DB, cfg cliparse.Config) *ReplyHandler {
	return &ReplyHandler{db: db, cfg: cfg}
}

// ListReplies handles GET /api/topics/{id}/replies
func (h *ReplyHandler) ListReplies(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	topicID := r.PathValue("id")

	var exists int
	if err := h.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM topic WHERE id = $1`, topicID).Scan(&exists); err != nil {
		serverError(w, "failed to load topic", err, "topic_id", topicID)
		return
	}
	if exists == 0 {
		middleware.ErrorResponse(w, http.StatusNotFound, "Topic not found")
		return
	}

	top, err := listReplies(ctx, h.db, replySelect+`
		WHERE r.topic_id = $1 AND r.parent_id IS NULL AND r.is_deleted = FALSE
		ORDER BY r.vote_score DESC, r.created_at ASC`, topicID)
	if err != nil {
		serverError(w, "failed to list replies", err, "topic_id", topicID)
		return
	}

	nested, err := listReplies(ctx, h.db, replySelect+`
		WHERE r.topic_id = $1 AND r.parent_id IS NOT NULL AND r.is_deleted = FALSE
		ORDER BY r.created_at ASC`, topicID)
	if err != nil {
		serverError(w, "failed to list child replies", err, "topic_id", topicID)
		return
	}

	if viewer, ok := middleware.CurrentUser(r); ok {
		votes, err := replyVotes(ctx, h.db, topicID, viewer.ID)
		if err != nil {
			serverError(w, "failed to load reply votes", err, "topic_id", topicID)
			return
		}
		setUserVotes(top, votes)
		setUserVotes(nested, votes)
	}

	middleware.JSONResponse(w, http.StatusOK, buildReplyTree(top, nested))
}

// replyVotes maps reply ID to the vote userID cast on it within the topic.
func replyVotes(ctx context.Context, db *sql.DB, topicID, userID string) (map[string]string, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT v.reply_id, v.type FROM vote v
		JOIN reply r ON r.id = v.reply_id
		WHERE r.topic_id = $1 AND v.user_id = $2
	`, topicID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	votes := make(map[string]string)
	for rows.Next() {
		var replyID, voteType string
		if err := rows.Scan(&replyID, &voteType); err != nil {
			return nil, err
		}
		votes[replyID] = voteType
	}
	return votes, rows.Err()
}

func setUserVotes(replies []models.Reply, votes map[string]string) {
	for i := range replies {
		if v, ok := votes[replies[i].ID]; ok {
			replies[i].UserVote = &v
		}
	}
}

// buildReplyTree attaches nested replies under their parents. Children whose
// parent is missing (deleted) are dropped along with it.
func buildReplyTree(top, nested []models.Reply) []models.Reply {
	byParent := make(map[string][]models.Reply)
	for _, r := range nested {
		byParent[*r.ParentID] = append(byParent[*r.ParentID], r)
	}

	var attach func(r *models.Reply)
	attach = func(r *models.Reply) {
		children := byParent[r.ID]
		for i := range children {
			attach(&children[i])
		}
		r.Children = children
	}
	for i := range top {
		attach(&top[i])
	}
	return top
}

// CreateReply handles POST /api/topics/{id}/replies
func (h *ReplyHandler) CreateReply(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.CurrentUser(r)
	ctx := r.Context()
	topicID := r.PathValue("id")

	var req models.CreateReplyRequest
	if !middleware.DecodeAndValidate(w, r, &req) {
		return
	}

	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		serverError(w, "failed to begin transaction", err)
		return
	}
	defer tx.Rollback()

	var status string
	err = tx.QueryRowContext(ctx, `SELECT status FROM topic WHERE id = $1`, topicID).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Topic not found")
		return
	}
	if err != nil {
		serverError(w, "failed to load topic", err, "topic_id", topicID)
		return
	}
	if status == models.StatusLocked || status == models.StatusArchived {
		middleware.ErrorResponse(w, http.StatusConflict, "This topic is closed for replies")
		return
	}

	if req.ParentID != "" {
		var n int
		if err := tx.QueryRowContext(ctx, `
			SELECT COUNT(*) FROM reply WHERE id = $1 AND topic_id = $2 AND is_deleted = FALSE
		`, req.ParentID, topicID).Scan(&n); err != nil {
			serverError(w, "failed to load parent reply", err)
			return
		}
		if n == 0 {
			middleware.ErrorResponse(w, http.StatusBadRequest, "Parent reply not found")
			return
		}
	}

	id := auth.NewID()
	t := now()
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO reply (id, body, topic_id, author_id, parent_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
	`, id, req.Body, topicID, user.ID, nullable(req.ParentID), t); err != nil {
		serverError(w, "failed to insert reply", err, "topic_id", topicID)
		return
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE topic SET reply_count = reply_count + 1, last_activity = $1 WHERE id = $2
	`, t, topicID); err != nil {
		serverError(w, "failed to update topic counters", err, "topic_id", topicID)
		return
	}

	if err := addReputation(ctx, tx, user.ID, models.ReputationReply); err != nil {
		serverError(w, "failed to award reputation", err)
		return
	}

	if err := tx.Commit(); err != nil {
		serverError(w, "failed to commit reply", err)
		return
	}

	reply, err := scanReply(h.db.QueryRowContext(ctx, replySelect+` WHERE r.id = $1`, id))
	if err != nil {
		serverError(w, "failed to load reply", err, "reply_id", id)
		return
	}

	slog.Info("reply created", "reply_id", id, "topic_id", topicID, "author_id", user.ID)
	middleware.JSONResponse(w, http.StatusCreated, reply)
}

// replyOwner loads the author and topic of a live reply.
func (h *ReplyHandler) replyOwner(r *http.Request, replyID string) (authorID, topicID string, err error) {
	err = h.db.QueryRowContext(r.Context(), `
		SELECT author_id, topic_id FROM reply WHERE id = $1 AND is_deleted = FALSE
	`, replyID).Scan(&authorID, &topicID)
	return authorID, topicID, err
}

// UpdateReply handles PATCH /api/replies/{id}
func (h *ReplyHandler) UpdateReply(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.CurrentUser(r)
	ctx := r.Context()
	replyID := r.PathValue("id")

	var req models.UpdateReplyRequest
	if !middleware.DecodeAndValidate(w, r, &req) {
		return
	}

	authorID, _, err := h.replyOwner(r, replyID)
	if errors.Is(err, sql.ErrNoRows) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Reply not found")
		return
	}
	if err != nil {
		serverError(w, "failed to load reply", err, "reply_id", replyID)
		return
	}
	if authorID != user.ID && !models.CanModerate(user.Role) {
		middleware.ErrorResponse(w, http.StatusForbidden, "Only the author can edit this reply")
		return
	}

	if _, err := h.db.ExecContext(ctx, `UPDATE reply SET body = $1, updated_at = $2 WHERE id = $3`, req.Body, now(), replyID); err != nil {
		serverError(w, "failed to update reply", err, "reply_id", replyID)
		return
	}

	reply, err := scanReply(h.db.QueryRowContext(ctx, replySelect+` WHERE r.id = $1`, replyID))
	if err != nil {
		serverError(w, "failed to reload reply", err, "reply_id", replyID)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, reply)
}

// DeleteReply handles DELETE /api/replies/{id}
func (h *ReplyHandler) DeleteReply(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.CurrentUser(r)
	ctx := r.Context()
	replyID := r.PathValue("id")

	authorID, topicID, err := h.replyOwner(r, replyID)
	if errors.Is(err, sql.ErrNoRows) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Reply not found")
		return
	}
	if err != nil {
		serverError(w, "failed to load reply", err, "reply_id", replyID)
		return
	}
	if authorID != user.ID && !models.CanModerate(user.Role) {
		middleware.ErrorResponse(w, http.StatusForbidden, "Only the author can delete this reply")
		return
	}

	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		serverError(w, "failed to begin transaction", err)
		return
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE reply SET is_deleted = TRUE, updated_at = $1 WHERE id = $2 AND is_deleted = FALSE
	`, now(), replyID)
	if err != nil {
		serverError(w, "failed to delete reply", err, "reply_id", replyID)
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		middleware.ErrorResponse(w, http.StatusNotFound, "Reply not found")
		return
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE topic SET reply_count = CASE WHEN reply_count > 0 THEN reply_count - 1 ELSE 0 END WHERE id = $1
	`, topicID); err != nil {
		serverError(w, "failed to update topic counters", err, "topic_id", topicID)
		return
	}

	if authorID != user.ID {
		if err := logModAction(ctx, tx, modAction{
			Type:         models.ModDeleteReply,
			ModeratorID:  user.ID,
			TopicID:      topicID,
			ReplyID:      replyID,
			TargetUserID: authorID,
		}); err != nil {
			serverError(w, "failed to log reply deletion", err)
			return
		}
	}

	if err := tx.Commit(); err != nil {
		serverError(w, "failed to commit reply deletion", err)
		return
	}

	slog.Info("reply deleted", "reply_id", replyID, "by", user.ID)
	middleware.JSONResponse(w, http.StatusOK, models.SuccessResponse{Success: true})
}
