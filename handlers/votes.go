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

	"github.com/danielhkuo/community-forum/auth"
	"github.com/danielhkuo/community-forum/cliparse"
	"github.com/danielhkuo/community-forum/db"
	"github.com/danielhkuo/community-forum/middleware"
	"github.com/danielhkuo/community-forum/models"
)

type VoteHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewVoteHandler(db *sql.DB, cfg cliparse.Config) *VoteHandler {
	return &VoteHandler{db: db, cfg: cfg}
}

// Vote outcomes, used as the metric label.
const (
	voteCreated  = "created"
	voteRemoved  = "removed"
	voteSwitched = "switched"
)

// voteDelta returns the score change and outcome of casting voteType when the
// user's existing vote is prior ("" for none).
func voteDelta(prior, voteType string) (delta int, outcome string) {
	weight := 1
	if voteType == models.VoteDown {
		weight = -1
	}

	switch prior {
	case "":
		return weight, voteCreated
	case voteType:
		return -weight, voteRemoved
	default:
		return 2 * weight, voteSwitched
	}
}

var errVoteTargetMissing = errors.New("vote target not found")

// CastVote handles POST /api/votes
func (h *VoteHandler) CastVote(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.CurrentUser(r)

	var req models.VoteRequest
	if !middleware.DecodeAndValidate(w, r, &req) {
		return
	}

	target, table, column, id := "topic", "topic", "topic_id", req.TopicID
	if req.ReplyID != "" {
		target, table, column, id = "reply", "reply", "reply_id", req.ReplyID
	}

	resp, outcome, err := h.toggle(r.Context(), user.ID, req.Type, table, column, id)
	if errors.Is(err, errVoteTargetMissing) {
		msg := "Topic not found"
		if target == "reply" {
			msg = "Reply not found"
		}
		middleware.ErrorResponse(w, http.StatusNotFound, msg)
		return
	}
	if db.IsUniqueViolation(err) {
		middleware.ErrorResponse(w, http.StatusConflict, "Vote already recorded, please try again")
		return
	}
	if err != nil {
		serverError(w, "failed to record vote", err, "target", target, "target_id", id)
		return
	}

	middleware.VotesTotal.WithLabelValues(target, outcome).Inc()
	slog.Debug("vote recorded", "target", target, "target_id", id, "user_id", user.ID, "outcome", outcome)

	middleware.JSONResponse(w, http.StatusOK, resp)
}

// toggle applies the vote and the score change in one transaction. table and
// column come from a fixed set, never from the request.
func (h *VoteHandler) toggle(ctx context.Context, userID, voteType, table, column, targetID string) (models.VoteResponse, string, error) {
	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return models.VoteResponse{}, "", fmt.Errorf("begin vote tx: %w", err)
	}
	defer tx.Rollback()

	var exists int
	existsQuery := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE id = $1`, table)
	if table == "reply" {
		existsQuery += " AND is_deleted = FALSE"
	}
	if err := tx.QueryRowContext(ctx, existsQuery, targetID).Scan(&exists); err != nil {
		return models.VoteResponse{}, "", fmt.Errorf("check vote target: %w", err)
	}
	if exists == 0 {
		return models.VoteResponse{}, "", errVoteTargetMissing
	}

	var voteID, prior string
	err = tx.QueryRowContext(ctx, fmt.Sprintf(`SELECT id, type FROM vote WHERE user_id = $1 AND %s = $2`, column), userID, targetID).Scan(&voteID, &prior)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return models.VoteResponse{}, "", fmt.Errorf("load existing vote: %w", err)
	}

	delta, outcome := voteDelta(prior, voteType)
	var userVote *string

	switch outcome {
	case voteCreated:
		_, err = tx.ExecContext(ctx, fmt.Sprintf(`
			INSERT INTO vote (id, type, user_id, %s, created_at) VALUES ($1, $2, $3, $4, $5)
		`, column), auth.NewID(), voteType, userID, targetID, now())
		userVote = &voteType
	case voteRemoved:
		_, err = tx.ExecContext(ctx, `DELETE FROM vote WHERE id = $1`, voteID)
	case voteSwitched:
		_, err = tx.ExecContext(ctx, `UPDATE vote SET type = $1 WHERE id = $2`, voteType, voteID)
		userVote = &voteType
	}
	if err != nil {
		return models.VoteResponse{}, "", fmt.Errorf("write vote: %w", err)
	}

	if _, err := tx.ExecContext(ctx, fmt.Sprintf(`UPDATE %s SET vote_score = vote_score + $1 WHERE id = $2`, table), delta, targetID); err != nil {
		return models.VoteResponse{}, "", fmt.Errorf("update vote score: %w", err)
	}

	var score int
	if err := tx.QueryRowContext(ctx, fmt.Sprintf(`SELECT vote_score FROM %s WHERE id = $1`, table), targetID).Scan(&score); err != nil {
		return models.VoteResponse{}, "", fmt.Errorf("read vote score: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return models.VoteResponse{}, "", fmt.Errorf("commit vote: %w", err)
	}

	return models.VoteResponse{VoteScore: score, UserVote: userVote}, outcome, nil
}
