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
	"slices"
	"strings"

	"github.com/danielhkuo/community-forum/auth"
	"github.com/danielhkuo/community-forum/cliparse"
	"github.com/danielhkuo/community-forum/db"
	"github.com/danielhkuo/community-forum/markdown"
	"github.com/danielhkuo/community-forum/middleware"
	"github.com/danielhkuo/community-forum/models"
	"github.com/danielhkuo/community-forum/search"
	"github.com/danielhkuo/community-forum/textutil"
)

const (
	topicsPerPage = 20
	feedSize      = 10
	relatedSize   = 5

	// slugAttempts bounds retries when a generated slug collides.
	slugAttempts = 3
)

var errBadReference = errors.New("bad reference")

type TopicHandler struct {
	db     *sql.DB
	cfg    cliparse.Config
	search search.Provider
}

func NewTopicHandler(db *sql.DB, cfg cliparse.Config, provider search.Provider) *TopicHandler {
	return &TopicHandler{db: db, cfg: cfg, search: provider}
}

// TopicPath is the client URL of a topic.
func TopicPath(productSlug, topicSlug string) string {
	return "/community/" + productSlug + "/topic/" + topicSlug
}

// ListProductTopics handles GET /api/products/{productSlug}/topics
func (h *TopicHandler) ListProductTopics(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	product, err := visibleProduct(ctx, h.db, r.PathValue("productSlug"))
	if errors.Is(err, sql.ErrNoRows) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Product not found")
		return
	}
	if err != nil {
		serverError(w, "failed to load product", err)
		return
	}

	conds := []string{"t.product_id = $1"}
	args := []any{product.ID}
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if typ := q.Get("type"); slices.Contains([]string{models.TopicQuestion, models.TopicDiscussion, models.TopicAnnouncement, models.TopicShowcase}, typ) {
		add("t.type = $%d", typ)
	}
	if status := q.Get("status"); slices.Contains([]string{models.StatusOpen, models.StatusAnswered, models.StatusResolved, models.StatusLocked, models.StatusArchived}, status) {
		add("t.status = $%d", status)
	}
	if catSlug := q.Get("category"); catSlug != "" {
		var catID string
		err := h.db.QueryRowContext(ctx, `SELECT id FROM category WHERE product_id = $1 AND slug = $2`, product.ID, catSlug).Scan(&catID)
		switch {
		case err == nil:
			add("t.category_id = $%d", catID)
		case !errors.Is(err, sql.ErrNoRows):
			serverError(w, "failed to look up category", err)
			return
		}
	}

	where := " WHERE " + strings.Join(conds, " AND ")

	var total int
	if err := h.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM topic t"+where, args...).Scan(&total); err != nil {
		serverError(w, "failed to count topics", err, "product_id", product.ID)
		return
	}

	order := "t.created_at DESC"
	switch q.Get("sort") {
	case "votes":
		order = "t.vote_score DESC, t.created_at DESC"
	case "views":
		order = "t.view_count DESC, t.created_at DESC"
	case "activity":
		order = "t.last_activity DESC"
	}

	// Pages past the end are empty; clamping keeps the offset in range.
	pages := (total + topicsPerPage - 1) / topicsPerPage
	page := min(queryInt(r, "page", 1), pages+1)
	query := fmt.Sprintf("%s%s ORDER BY t.is_pinned DESC, %s LIMIT %d OFFSET %d",
		topicSelect, where, order, topicsPerPage, (page-1)*topicsPerPage)

	topics, err := listTopics(ctx, h.db, query, args...)
	if err != nil {
		serverError(w, "failed to list topics", err, "product_id", product.ID)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.TopicPage{
		Items: topics,
		Total: total,
		Page:  page,
		Pages: pages,
	})
}

// ListTopics handles GET /api/topics?filter=latest|trending|unanswered|resolved
func (h *TopicHandler) ListTopics(w http.ResponseWriter, r *http.Request) {
	where := " WHERE p.status <> 'HIDDEN'"
	order := "t.last_activity DESC"

	switch r.URL.Query().Get("filter") {
	case "trending":
		order = "t.vote_score DESC, t.last_activity DESC"
	case "unanswered":
		where += " AND t.status = 'OPEN' AND t.type = 'QUESTION' AND t.reply_count = 0"
		order = "t.created_at DESC"
	case "resolved":
		where += " AND t.status IN ('ANSWERED', 'RESOLVED')"
	}

	topics, err := listTopics(r.Context(), h.db, fmt.Sprintf("%s%s ORDER BY %s LIMIT %d", topicSelect, where, order, feedSize))
	if err != nil {
		serverError(w, "failed to list topics", err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, topics)
}

// ListAnnouncements handles GET /api/announcements
func (h *TopicHandler) ListAnnouncements(w http.ResponseWriter, r *http.Request) {
	topics, err := listTopics(r.Context(), h.db, topicSelect+`
		WHERE t.type = $1 AND t.is_pinned = TRUE AND p.status <> 'HIDDEN'
		ORDER BY t.created_at DESC
		LIMIT 3`, models.TopicAnnouncement)
	if err != nil {
		serverError(w, "failed to list announcements", err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, topics)
}

// checkTopicRefs verifies the category belongs to the product (or is global)
// and that every tag exists.
func checkTopicRefs(ctx context.Context, q *sql.Tx, productID, categoryID string, tagIDs []string) error {
	if categoryID != "" {
		var n int
		if err := q.QueryRowContext(ctx, `
			SELECT COUNT(*) FROM category WHERE id = $1 AND (product_id = $2 OR product_id IS NULL)
		`, categoryID, productID).Scan(&n); err != nil {
			return fmt.Errorf("check category: %w", err)
		}
		if n == 0 {
			return fmt.Errorf("%w: category", errBadReference)
		}
	}

	if len(tagIDs) > 0 {
		args := make([]any, len(tagIDs))
		for i, id := range tagIDs {
			args[i] = id
		}
		var n int
		if err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM tag WHERE id IN (`+search.Placeholders(1, len(args))+`)`, args...).Scan(&n); err != nil {
			return fmt.Errorf("check tags: %w", err)
		}
		if n != len(tagIDs) {
			return fmt.Errorf("%w: tag", errBadReference)
		}
	}
	return nil
}

// CreateTopic handles POST /api/topics
func (h *TopicHandler) CreateTopic(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.CurrentUser(r)
	ctx := r.Context()

	var req models.CreateTopicRequest
	if !middleware.DecodeAndValidate(w, r, &req) {
		return
	}
	req.TagIDs = dedupe(req.TagIDs)

	var productSlug string
	err := h.db.QueryRowContext(ctx, `SELECT slug FROM product WHERE id = $1 AND status <> $2`, req.ProductID, models.ProductHidden).Scan(&productSlug)
	if errors.Is(err, sql.ErrNoRows) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Product not found")
		return
	}
	if err != nil {
		serverError(w, "failed to load product", err)
		return
	}

	var topicID string
	for attempt := 0; ; attempt++ {
		topicID, err = h.insertTopic(ctx, user.ID, req)
		if err == nil || !db.IsUniqueViolation(err) || attempt+1 >= slugAttempts {
			break
		}
	}
	if errors.Is(err, errBadReference) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Unknown category or tag")
		return
	}
	if err != nil {
		serverError(w, "failed to create topic", err)
		return
	}

	if err := h.search.IndexTopic(ctx, search.Document{
		ID: topicID, Title: req.Title, Body: req.Body, ProductID: req.ProductID,
		CategoryID: req.CategoryID, AuthorID: user.ID, Tags: req.TagIDs,
	}); err != nil {
		slog.Warn("failed to index topic", "error", err, "topic_id", topicID)
	}

	topic, err := getTopic(ctx, h.db, "t.id = $1", topicID)
	if err != nil {
		serverError(w, "failed to load created topic", err, "topic_id", topicID)
		return
	}
	topic.BodyHTML = markdown.RenderOrEmpty(topic.Body)

	slog.Info("topic created", "topic_id", topicID, "author_id", user.ID, "product", productSlug)

	middleware.JSONResponse(w, http.StatusCreated, models.CreateTopicResponse{
		Topic: topic,
		Path:  TopicPath(productSlug, topic.Slug),
	})
}

func (h *TopicHandler) insertTopic(ctx context.Context, authorID string, req models.CreateTopicRequest) (string, error) {
	slug, err := textutil.GenerateSlug(req.Title)
	if err != nil {
		return "", err
	}

	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin topic tx: %w", err)
	}
	defer tx.Rollback()

	if err := checkTopicRefs(ctx, tx, req.ProductID, req.CategoryID, req.TagIDs); err != nil {
		return "", err
	}

	id := auth.NewID()
	t := now()
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO topic (id, title, body, slug, type, status, product_id, category_id, author_id,
		                   last_activity, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10, $10)
	`, id, req.Title, req.Body, slug, req.Type, models.StatusOpen, req.ProductID, nullable(req.CategoryID), authorID, t); err != nil {
		return "", fmt.Errorf("insert topic: %w", err)
	}

	for _, tagID := range req.TagIDs {
		if _, err := tx.ExecContext(ctx, `INSERT INTO topic_tag (topic_id, tag_id) VALUES ($1, $2)`, id, tagID); err != nil {
			return "", fmt.Errorf("insert topic tag: %w", err)
		}
	}
	if err := adjustTagUsage(ctx, tx, req.TagIDs, 1); err != nil {
		return "", err
	}
	if err := addReputation(ctx, tx, authorID, models.ReputationTopic); err != nil {
		return "", err
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit topic: %w", err)
	}
	return id, nil
}

// GetTopic handles GET /api/products/{productSlug}/topics/{topicSlug}
func (h *TopicHandler) GetTopic(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	productSlug := r.PathValue("productSlug")
	topicSlug := r.PathValue("topicSlug")

	res, err := h.db.ExecContext(ctx, `
		UPDATE topic SET view_count = view_count + 1
		WHERE slug = $1 AND product_id = (SELECT id FROM product WHERE slug = $2 AND status <> $3)
	`, topicSlug, productSlug, models.ProductHidden)
	if err != nil {
		serverError(w, "failed to count view", err)
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		middleware.ErrorResponse(w, http.StatusNotFound, "Topic not found")
		return
	}

	topic, err := getTopic(ctx, h.db, "p.slug = $1 AND t.slug = $2", productSlug, topicSlug)
	if errors.Is(err, sql.ErrNoRows) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Topic not found")
		return
	}
	if err != nil {
		serverError(w, "failed to load topic", err)
		return
	}
	topic.BodyHTML = markdown.RenderOrEmpty(topic.Body)

	detail := models.TopicDetail{Topic: topic}

	if topic.AcceptedReplyID != nil {
		reply, err := scanReply(h.db.QueryRowContext(ctx, replySelect+` WHERE r.id = $1 AND r.is_deleted = FALSE`, *topic.AcceptedReplyID))
		switch {
		case err == nil:
			detail.AcceptedReply = &reply
		case !errors.Is(err, sql.ErrNoRows):
			serverError(w, "failed to load accepted reply", err, "topic_id", topic.ID)
			return
		}
	}

	if user, ok := middleware.CurrentUser(r); ok {
		var vote string
		err := h.db.QueryRowContext(ctx, `SELECT type FROM vote WHERE user_id = $1 AND topic_id = $2`, user.ID, topic.ID).Scan(&vote)
		switch {
		case err == nil:
			detail.UserVote = &vote
		case !errors.Is(err, sql.ErrNoRows):
			serverError(w, "failed to load vote", err, "topic_id", topic.ID)
			return
		}

		var n int
		if err := h.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM bookmark WHERE user_id = $1 AND topic_id = $2`, user.ID, topic.ID).Scan(&n); err != nil {
			serverError(w, "failed to load bookmark", err, "topic_id", topic.ID)
			return
		}
		detail.Bookmarked = n > 0
	}

	middleware.JSONResponse(w, http.StatusOK, detail)
}

// topicOwner returns the author and product of a topic.
func topicOwner(ctx context.Context, q interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}, topicID string) (authorID, productID string, err error) {
	err = q.QueryRowContext(ctx, `SELECT author_id, product_id FROM topic WHERE id = $1`, topicID).Scan(&authorID, &productID)
	return authorID, productID, err
}

// UpdateTopic handles PATCH /api/topics/{id}
func (h *TopicHandler) UpdateTopic(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.CurrentUser(r)
	ctx := r.Context()
	topicID := r.PathValue("id")

	var req models.UpdateTopicRequest
	if !middleware.DecodeAndValidate(w, r, &req) {
		return
	}

	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		serverError(w, "failed to begin transaction", err)
		return
	}
	defer tx.Rollback()

	authorID, productID, err := topicOwner(ctx, tx, topicID)
	if errors.Is(err, sql.ErrNoRows) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Topic not found")
		return
	}
	if err != nil {
		serverError(w, "failed to load topic", err, "topic_id", topicID)
		return
	}
	if authorID != user.ID && !models.CanModerate(user.Role) {
		middleware.ErrorResponse(w, http.StatusForbidden, "Only the author can edit this topic")
		return
	}

	var newTags []string
	if req.TagIDs != nil {
		newTags = dedupe(*req.TagIDs)
	}
	categoryID := ""
	if req.CategoryID != nil {
		categoryID = *req.CategoryID
	}
	if err := checkTopicRefs(ctx, tx, productID, categoryID, newTags); err != nil {
		if errors.Is(err, errBadReference) {
			middleware.ErrorResponse(w, http.StatusBadRequest, "Unknown category or tag")
			return
		}
		serverError(w, "failed to check topic references", err)
		return
	}

	t := now()
	if req.Title != nil {
		if _, err := tx.ExecContext(ctx, `UPDATE topic SET title = $1 WHERE id = $2`, *req.Title, topicID); err != nil {
			serverError(w, "failed to update title", err, "topic_id", topicID)
			return
		}
	}
	if req.Body != nil {
		if _, err := tx.ExecContext(ctx, `UPDATE topic SET body = $1 WHERE id = $2`, *req.Body, topicID); err != nil {
			serverError(w, "failed to update body", err, "topic_id", topicID)
			return
		}
	}
	if req.CategoryID != nil {
		if _, err := tx.ExecContext(ctx, `UPDATE topic SET category_id = $1 WHERE id = $2`, nullable(categoryID), topicID); err != nil {
			serverError(w, "failed to update category", err, "topic_id", topicID)
			return
		}
	}
	if req.TagIDs != nil {
		oldTags, err := topicTagIDs(ctx, tx, topicID)
		if err != nil {
			serverError(w, "failed to load tags", err, "topic_id", topicID)
			return
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM topic_tag WHERE topic_id = $1`, topicID); err != nil {
			serverError(w, "failed to clear tags", err, "topic_id", topicID)
			return
		}
		for _, tagID := range newTags {
			if _, err := tx.ExecContext(ctx, `INSERT INTO topic_tag (topic_id, tag_id) VALUES ($1, $2)`, topicID, tagID); err != nil {
				serverError(w, "failed to add tag", err, "topic_id", topicID)
				return
			}
		}

		var removed, added []string
		for _, id := range oldTags {
			if !slices.Contains(newTags, id) {
				removed = append(removed, id)
			}
		}
		for _, id := range newTags {
			if !slices.Contains(oldTags, id) {
				added = append(added, id)
			}
		}
		if err := adjustTagUsage(ctx, tx, removed, -1); err != nil {
			serverError(w, "failed to adjust tag usage", err)
			return
		}
		if err := adjustTagUsage(ctx, tx, added, 1); err != nil {
			serverError(w, "failed to adjust tag usage", err)
			return
		}
	}
	if _, err := tx.ExecContext(ctx, `UPDATE topic SET updated_at = $1 WHERE id = $2`, t, topicID); err != nil {
		serverError(w, "failed to touch topic", err, "topic_id", topicID)
		return
	}

	if err := tx.Commit(); err != nil {
		serverError(w, "failed to commit topic update", err, "topic_id", topicID)
		return
	}

	topic, err := getTopic(ctx, h.db, "t.id = $1", topicID)
	if err != nil {
		serverError(w, "failed to reload topic", err, "topic_id", topicID)
		return
	}
	topic.BodyHTML = markdown.RenderOrEmpty(topic.Body)

	doc := search.Document{ID: topic.ID, Title: topic.Title, Body: topic.Body, ProductID: productID, AuthorID: authorID}
	if topic.Category != nil {
		doc.CategoryID = topic.Category.ID
	}
	if doc.Tags, err = topicTagIDs(ctx, h.db, topicID); err != nil {
		slog.Warn("failed to load tags for reindex", "error", err, "topic_id", topicID)
	}
	if err := h.search.IndexTopic(ctx, doc); err != nil {
		slog.Warn("failed to reindex topic", "error", err, "topic_id", topicID)
	}

	slog.Info("topic updated", "topic_id", topicID, "editor_id", user.ID)
	middleware.JSONResponse(w, http.StatusOK, topic)
}

// SetStatus handles POST /api/topics/{id}/status
func (h *TopicHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.CurrentUser(r)
	ctx := r.Context()
	topicID := r.PathValue("id")

	var req models.TopicStatusRequest
	if !middleware.DecodeAndValidate(w, r, &req) {
		return
	}

	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		serverError(w, "failed to begin transaction", err)
		return
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `UPDATE topic SET status = $1, updated_at = $2 WHERE id = $3`, req.Status, now(), topicID)
	if err != nil {
		serverError(w, "failed to update status", err, "topic_id", topicID)
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		middleware.ErrorResponse(w, http.StatusNotFound, "Topic not found")
		return
	}

	if err := logModAction(ctx, tx, modAction{
		Type:        models.ModChangeStatus,
		Reason:      "status set to " + req.Status,
		ModeratorID: user.ID,
		TopicID:     topicID,
	}); err != nil {
		serverError(w, "failed to log status change", err)
		return
	}

	if err := tx.Commit(); err != nil {
		serverError(w, "failed to commit status change", err)
		return
	}

	slog.Info("topic status changed", "topic_id", topicID, "status", req.Status, "moderator_id", user.ID)
	middleware.JSONResponse(w, http.StatusOK, models.SuccessResponse{Success: true})
}

// RelatedTopics handles GET /api/topics/{id}/related
func (h *TopicHandler) RelatedTopics(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	topicID := r.PathValue("id")

	_, productID, err := topicOwner(ctx, h.db, topicID)
	if errors.Is(err, sql.ErrNoRows) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Topic not found")
		return
	}
	if err != nil {
		serverError(w, "failed to load topic", err, "topic_id", topicID)
		return
	}

	rows, err := h.db.QueryContext(ctx, `
		SELECT t.id, t.slug, t.title, t.status, t.vote_score, t.reply_count, p.slug,
		       CASE WHEN EXISTS (
		           SELECT 1 FROM topic_tag tt
		           WHERE tt.topic_id = t.id
		             AND tt.tag_id IN (SELECT tag_id FROM topic_tag WHERE topic_id = $1)
		       ) THEN 1 ELSE 0 END AS shares_tag
		FROM topic t
		JOIN product p ON t.product_id = p.id
		WHERE t.product_id = $2 AND t.id <> $1
		ORDER BY shares_tag DESC, t.vote_score DESC, t.created_at DESC
		LIMIT $3
	`, topicID, productID, relatedSize)
	if err != nil {
		serverError(w, "failed to query related topics", err, "topic_id", topicID)
		return
	}
	defer rows.Close()

	related := []models.RelatedTopic{}
	for rows.Next() {
		var rt models.RelatedTopic
		var sharesTag int
		if err := rows.Scan(&rt.ID, &rt.Slug, &rt.Title, &rt.Status, &rt.VoteScore, &rt.ReplyCount, &rt.ProductSlug, &sharesTag); err != nil {
			serverError(w, "failed to scan related topic", err)
			return
		}
		related = append(related, rt)
	}
	if err := rows.Err(); err != nil {
		serverError(w, "failed to iterate related topics", err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, related)
}

// AcceptAnswer handles POST /api/topics/{id}/accept
func (h *TopicHandler) AcceptAnswer(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.CurrentUser(r)
	ctx := r.Context()
	topicID := r.PathValue("id")

	var req models.AcceptAnswerRequest
	if !middleware.DecodeAndValidate(w, r, &req) {
		return
	}

	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		serverError(w, "failed to begin transaction", err)
		return
	}
	defer tx.Rollback()

	var (
		authorID string
		accepted sql.NullString
	)
	err = tx.QueryRowContext(ctx, `SELECT author_id, accepted_reply_id FROM topic WHERE id = $1`, topicID).Scan(&authorID, &accepted)
	if errors.Is(err, sql.ErrNoRows) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Topic not found")
		return
	}
	if err != nil {
		serverError(w, "failed to load topic", err, "topic_id", topicID)
		return
	}
	if authorID != user.ID && !models.CanModerate(user.Role) {
		middleware.ErrorResponse(w, http.StatusForbidden, "Only the topic author can accept answers")
		return
	}

	var replyAuthor string
	err = tx.QueryRowContext(ctx, `
		SELECT author_id FROM reply WHERE id = $1 AND topic_id = $2 AND is_deleted = FALSE
	`, req.ReplyID, topicID).Scan(&replyAuthor)
	if errors.Is(err, sql.ErrNoRows) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Reply not found")
		return
	}
	if err != nil {
		serverError(w, "failed to load reply", err, "reply_id", req.ReplyID)
		return
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE topic SET accepted_reply_id = $1, status = $2, updated_at = $3 WHERE id = $4
	`, req.ReplyID, models.StatusAnswered, now(), topicID); err != nil {
		serverError(w, "failed to accept answer", err, "topic_id", topicID)
		return
	}

	if !accepted.Valid || accepted.String != req.ReplyID {
		if err := addReputation(ctx, tx, replyAuthor, models.ReputationAccepted); err != nil {
			serverError(w, "failed to award reputation", err)
			return
		}
	}

	if err := tx.Commit(); err != nil {
		serverError(w, "failed to commit accepted answer", err)
		return
	}

	slog.Info("answer accepted", "topic_id", topicID, "reply_id", req.ReplyID)
	middleware.JSONResponse(w, http.StatusOK, models.SuccessResponse{Success: true})
}

// ToggleBookmark handles POST /api/topics/{id}/bookmark
func (h *TopicHandler) ToggleBookmark(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.CurrentUser(r)
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

	res, err := h.db.ExecContext(ctx, `DELETE FROM bookmark WHERE user_id = $1 AND topic_id = $2`, user.ID, topicID)
	if err != nil {
		serverError(w, "failed to remove bookmark", err)
		return
	}
	if n, _ := res.RowsAffected(); n > 0 {
		middleware.JSONResponse(w, http.StatusOK, models.BookmarkResponse{Bookmarked: false})
		return
	}

	_, err = h.db.ExecContext(ctx, `
		INSERT INTO bookmark (id, user_id, topic_id, created_at) VALUES ($1, $2, $3, $4)
	`, auth.NewID(), user.ID, topicID, now())
	if err != nil && !db.IsUniqueViolation(err) {
		serverError(w, "failed to add bookmark", err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.BookmarkResponse{Bookmarked: true})
}
