// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/community-forum/auth"
	"github.com/danielhkuo/community-forum/cliparse"
	"github.com/danielhkuo/community-forum/middleware"
	"github.com/danielhkuo/community-forum/models"
)

type ReportHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewReportHandler(db *sql.DB, cfg cliparse.Config) *ReportHandler {
	return &ReportHandler{db: db, cfg: cfg}
}

// CreateReport handles POST /api/reports
func (h *ReportHandler) CreateReport(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.CurrentUser(r)
	ctx := r.Context()

	var req models.ReportRequest
	if !middleware.DecodeAndValidate(w, r, &req) {
		return
	}

	query, id, missing := `SELECT COUNT(*) FROM topic WHERE id = $1`, req.TopicID, "Topic not found"
	if req.ReplyID != "" {
		query, id, missing = `SELECT COUNT(*) FROM reply WHERE id = $1`, req.ReplyID, "Reply not found"
	}

	var n int
	if err := h.db.QueryRowContext(ctx, query, id).Scan(&n); err != nil {
		serverError(w, "failed to load report target", err)
		return
	}
	if n == 0 {
		middleware.ErrorResponse(w, http.StatusNotFound, missing)
		return
	}

	reportID := auth.NewID()
	if _, err := h.db.ExecContext(ctx, `
		INSERT INTO report (id, reason, details, status, reporter_id, topic_id, reply_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, reportID, req.Reason, nullable(req.Details), models.ReportPending, user.ID,
		nullable(req.TopicID), nullable(req.ReplyID), now()); err != nil {
		serverError(w, "failed to create report", err)
		return
	}

	slog.Info("content reported", "report_id", reportID, "reason", req.Reason, "reporter_id", user.ID)
	middleware.JSONResponse(w, http.StatusCreated, models.SuccessResponse{Success: true})
}
