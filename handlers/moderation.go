// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/danielhkuo/community-forum/cliparse"
	"github.com/danielhkuo/community-forum/middleware"
	"github.com/danielhkuo/community-forum/models"
	"github.com/danielhkuo/community-forum/search"
)

const (
	reportPageSize = 50
	recentActions  = 10
)

type ModerationHandler struct {
	db     *sql.DB
	cfg    cliparse.Config
	search search.Provider
}

func NewModerationHandler(db *sql.DB, cfg cliparse.Config, provider search.Provider) *ModerationHandler {
	return &ModerationHandler{db: db, cfg: cfg, search: provider}
}

// decodeReason reads an optional {reason} body. An empty body means no reason.
func decodeReason(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req models.ModReasonRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil && !errors.Is(err, io.EOF) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return "", false
	}
	if !middleware.ValidateRequest(w, &req) {
		return "", false
	}
	return strings.TrimSpace(req.Reason), true
}

// ListReports handles GET /api/mod/reports?status=pending|reviewed|resolved|dismissed|all
func (h *ModerationHandler) ListReports(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	status := strings.ToUpper(r.URL.Query().Get("status"))
	if status == "" {
		status = models.ReportPending
	}

	query := `
		SELECT rp.id, rp.reason, rp.details, rp.status, rp.topic_id, rp.reply_id, rp.created_at,
		       u.id, u.name, u.username, u.image, u.role, u.reputation
		FROM report rp
		JOIN users u ON rp.reporter_id = u.id`
	var args []any
	switch status {
	case "ALL":
	case models.ReportPending, models.ReportReviewed, models.ReportResolved, models.ReportDismissed:
		query += " WHERE rp.status = $1"
		args = append(args, status)
	default:
		middleware.ErrorResponse(w, http.StatusBadRequest, "Unknown report status")
		return
	}
	query += fmt.Sprintf(" ORDER BY rp.created_at DESC LIMIT %d", reportPageSize)

	rows, err := h.db.QueryContext(ctx, query, args...)
	if err != nil {
		serverError(w, "failed to query reports", err)
		return
	}
	reports := []models.Report{}
	for rows.Next() {
		var rp models.Report
		if err := rows.Scan(&rp.ID, &rp.Reason, &rp.Details, &rp.Status, &rp.TopicID, &rp.ReplyID, &rp.CreatedAt,
			&rp.Reporter.ID, &rp.Reporter.Name, &rp.Reporter.Username, &rp.Reporter.Image,
			&rp.Reporter.Role, &rp.Reporter.Reputation); err != nil {
			rows.Close()
			serverError(w, "failed to scan report", err)
			return
		}
		rp.CreatedAt = rp.CreatedAt.UTC()
		reports = append(reports, rp)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		serverError(w, "failed to iterate reports", err)
		return
	}

	counts := map[string]int{"pending": 0, "resolved": 0, "dismissed": 0}
	countRows, err := h.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM report GROUP BY status`)
	if err != nil {
		serverError(w, "failed to count reports", err)
		return
	}
	defer countRows.Close()
	for countRows.Next() {
		var s string
		var n int
		if err := countRows.Scan(&s, &n); err != nil {
			serverError(w, "failed to scan report count", err)
			return
		}
		if _, ok := counts[strings.ToLower(s)]; ok {
			counts[strings.ToLower(s)] = n
		}
	}
	if err := countRows.Err(); err != nil {
		serverError(w, "failed to iterate report counts", err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.ReportList{Reports: reports, Counts: counts})
}

// ResolveReport handles POST /api/mod/reports/{id}/resolve
func (h *ModerationHandler) ResolveReport(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.CurrentUser(r)
	ctx := r.Context()
	reportID := r.PathValue("id")

	var req models.ResolveReportRequest
	if !middleware.DecodeAndValidate(w, r, &req) {
		return
	}

	status, action := models.ReportResolved, models.ModResolveReport
	if req.Action == "DISMISS" {
		status, action = models.ReportDismissed, models.ModDismissReport
	}

	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		serverError(w, "failed to begin transaction", err)
		return
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `UPDATE report SET status = $1 WHERE id = $2`, status, reportID)
	if err != nil {
		serverError(w, "failed to update report", err, "report_id", reportID)
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		middleware.ErrorResponse(w, http.StatusNotFound, "Report not found")
		return
	}

	if err := logModAction(ctx, tx, modAction{Type: action, ModeratorID: user.ID, ReportID: reportID}); err != nil {
		serverError(w, "failed to log report resolution", err)
		return
	}
	if err := tx.Commit(); err != nil {
		serverError(w, "failed to commit report resolution", err)
		return
	}

	slog.Info("report resolved", "report_id", reportID, "status", status, "moderator_id", user.ID)
	middleware.JSONResponse(w, http.StatusOK, models.SuccessResponse{Success: true})
}

// setTopicStatus moves a topic to status and records the action.
func (h *ModerationHandler) setTopicStatus(w http.ResponseWriter, r *http.Request, status, action string) {
	user, _ := middleware.CurrentUser(r)
	ctx := r.Context()
	topicID := r.PathValue("id")

	reason, ok := decodeReason(w, r)
	if !ok {
		return
	}

	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		serverError(w, "failed to begin transaction", err)
		return
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `UPDATE topic SET status = $1, updated_at = $2 WHERE id = $3`, status, now(), topicID)
	if err != nil {
		serverError(w, "failed to update topic status", err, "topic_id", topicID)
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		middleware.ErrorResponse(w, http.StatusNotFound, "Topic not found")
		return
	}

	if err := logModAction(ctx, tx, modAction{Type: action, Reason: reason, ModeratorID: user.ID, TopicID: topicID}); err != nil {
		serverError(w, "failed to log moderation action", err)
		return
	}
	if err := tx.Commit(); err != nil {
		serverError(w, "failed to commit moderation action", err)
		return
	}

	slog.Info("topic moderated", "topic_id", topicID, "action", action, "moderator_id", user.ID)
	middleware.JSONResponse(w, http.StatusOK, models.SuccessResponse{Success: true})
}

// LockTopic handles POST /api/mod/topics/{id}/lock
func (h *ModerationHandler) LockTopic(w http.ResponseWriter, r *http.Request) {
	h.setTopicStatus(w, r, models.StatusLocked, models.ModLockTopic)
}

// UnlockTopic handles POST /api/mod/topics/{id}/unlock
func (h *ModerationHandler) UnlockTopic(w http.ResponseWriter, r *http.Request) {
	h.setTopicStatus(w, r, models.StatusOpen, models.ModUnlockTopic)
}

// TogglePin handles POST /api/mod/topics/{id}/pin
func (h *ModerationHandler) TogglePin(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.CurrentUser(r)
	ctx := r.Context()
	topicID := r.PathValue("id")

	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		serverError(w, "failed to begin transaction", err)
		return
	}
	defer tx.Rollback()

	var pinned bool
	err = tx.QueryRowContext(ctx, `SELECT is_pinned FROM topic WHERE id = $1`, topicID).Scan(&pinned)
	if errors.Is(err, sql.ErrNoRows) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Topic not found")
		return
	}
	if err != nil {
		serverError(w, "failed to load topic", err, "topic_id", topicID)
		return
	}

	pinned = !pinned
	if _, err := tx.ExecContext(ctx, `UPDATE topic SET is_pinned = $1 WHERE id = $2`, pinned, topicID); err != nil {
		serverError(w, "failed to toggle pin", err, "topic_id", topicID)
		return
	}

	action := models.ModUnpinTopic
	if pinned {
		action = models.ModPinTopic
	}
	if err := logModAction(ctx, tx, modAction{Type: action, ModeratorID: user.ID, TopicID: topicID}); err != nil {
		serverError(w, "failed to log pin", err)
		return
	}
	if err := tx.Commit(); err != nil {
		serverError(w, "failed to commit pin", err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.PinResponse{Pinned: pinned})
}

// DeleteTopic handles DELETE /api/mod/topics/{id}
func (h *ModerationHandler) DeleteTopic(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.CurrentUser(r)
	ctx := r.Context()
	topicID := r.PathValue("id")

	reason, ok := decodeReason(w, r)
	if !ok {
		return
	}

	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		serverError(w, "failed to begin transaction", err)
		return
	}
	defer tx.Rollback()

	var authorID string
	err = tx.QueryRowContext(ctx, `SELECT author_id FROM topic WHERE id = $1`, topicID).Scan(&authorID)
	if errors.Is(err, sql.ErrNoRows) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Topic not found")
		return
	}
	if err != nil {
		serverError(w, "failed to load topic", err, "topic_id", topicID)
		return
	}

	tagIDs, err := topicTagIDs(ctx, tx, topicID)
	if err != nil {
		serverError(w, "failed to load topic tags", err, "topic_id", topicID)
		return
	}
	if err := adjustTagUsage(ctx, tx, tagIDs, -1); err != nil {
		serverError(w, "failed to adjust tag usage", err)
		return
	}

	// Replies, votes, bookmarks, reports and tag links go with the topic.
	if _, err := tx.ExecContext(ctx, `DELETE FROM topic WHERE id = $1`, topicID); err != nil {
		serverError(w, "failed to delete topic", err, "topic_id", topicID)
		return
	}

	if err := logModAction(ctx, tx, modAction{
		Type:         models.ModDeleteTopic,
		Reason:       reason,
		ModeratorID:  user.ID,
		TopicID:      topicID,
		TargetUserID: authorID,
	}); err != nil {
		serverError(w, "failed to log topic deletion", err)
		return
	}
	if err := tx.Commit(); err != nil {
		serverError(w, "failed to commit topic deletion", err)
		return
	}

	if err := h.search.DeleteTopic(ctx, topicID); err != nil {
		slog.Warn("failed to remove topic from search", "error", err, "topic_id", topicID)
	}

	slog.Info("topic deleted", "topic_id", topicID, "moderator_id", user.ID)
	middleware.JSONResponse(w, http.StatusOK, models.SuccessResponse{Success: true})
}

// setBanned bans or unbans the user in the path.
func (h *ModerationHandler) setBanned(w http.ResponseWriter, r *http.Request, banned bool) {
	user, _ := middleware.CurrentUser(r)
	ctx := r.Context()
	targetID := r.PathValue("id")

	reason, ok := decodeReason(w, r)
	if !ok {
		return
	}

	if targetID == user.ID {
		middleware.ErrorResponse(w, http.StatusBadRequest, "You cannot ban yourself")
		return
	}

	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		serverError(w, "failed to begin transaction", err)
		return
	}
	defer tx.Rollback()

	var role string
	err = tx.QueryRowContext(ctx, `SELECT role FROM users WHERE id = $1`, targetID).Scan(&role)
	if errors.Is(err, sql.ErrNoRows) {
		middleware.ErrorResponse(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		serverError(w, "failed to load user", err, "user_id", targetID)
		return
	}
	if role == models.RoleAdmin && !models.CanAdmin(user.Role) {
		middleware.ErrorResponse(w, http.StatusForbidden, "Moderators cannot ban administrators")
		return
	}

	if _, err := tx.ExecContext(ctx, `UPDATE users SET is_banned = $1 WHERE id = $2`, banned, targetID); err != nil {
		serverError(w, "failed to update ban", err, "user_id", targetID)
		return
	}

	action := models.ModUnbanUser
	if banned {
		action = models.ModBanUser
	}
	if err := logModAction(ctx, tx, modAction{Type: action, Reason: reason, ModeratorID: user.ID, TargetUserID: targetID}); err != nil {
		serverError(w, "failed to log ban", err)
		return
	}
	if err := tx.Commit(); err != nil {
		serverError(w, "failed to commit ban", err)
		return
	}

	slog.Info("user ban changed", "user_id", targetID, "banned", banned, "moderator_id", user.ID)
	middleware.JSONResponse(w, http.StatusOK, models.SuccessResponse{Success: true})
}

// BanUser handles POST /api/mod/users/{id}/ban
func (h *ModerationHandler) BanUser(w http.ResponseWriter, r *http.Request) {
	h.setBanned(w, r, true)
}

// UnbanUser handles POST /api/mod/users/{id}/unban
func (h *ModerationHandler) UnbanUser(w http.ResponseWriter, r *http.Request) {
	h.setBanned(w, r, false)
}

// ListActions handles GET /api/mod/actions
func (h *ModerationHandler) ListActions(w http.ResponseWriter, r *http.Request) {
	rows, err := h.db.QueryContext(r.Context(), `
		SELECT a.id, a.type, a.reason, a.topic_id, a.reply_id, a.report_id, a.target_user_id, a.created_at,
		       u.id, u.name, u.username, u.image, u.role, u.reputation
		FROM mod_action a
		JOIN users u ON a.moderator_id = u.id
		ORDER BY a.created_at DESC
		LIMIT $1
	`, recentActions)
	if err != nil {
		serverError(w, "failed to query mod actions", err)
		return
	}
	defer rows.Close()

	actions := []models.ModAction{}
	for rows.Next() {
		var a models.ModAction
		if err := rows.Scan(&a.ID, &a.Type, &a.Reason, &a.TopicID, &a.ReplyID, &a.ReportID, &a.TargetUserID, &a.CreatedAt,
			&a.Moderator.ID, &a.Moderator.Name, &a.Moderator.Username, &a.Moderator.Image,
			&a.Moderator.Role, &a.Moderator.Reputation); err != nil {
			serverError(w, "failed to scan mod action", err)
			return
		}
		a.CreatedAt = a.CreatedAt.UTC()
		actions = append(actions, a)
	}
	if err := rows.Err(); err != nil {
		serverError(w, "failed to iterate mod actions", err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, actions)
}
