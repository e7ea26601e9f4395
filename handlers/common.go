// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/danielhkuo/community-forum/auth"
	"github.com/danielhkuo/community-forum/markdown"
	"github.com/danielhkuo/community-forum/middleware"
	"github.com/danielhkuo/community-forum/models"
	"github.com/danielhkuo/community-forum/search"
	"github.com/danielhkuo/community-forum/textutil"
)

// now is the clock used for every stored timestamp. Times are kept in UTC so
// SQLite's text comparison orders them correctly.
var now = func() time.Time { return time.Now().UTC() }

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// serverError logs err and writes a 500 with a generic message.
func serverError(w http.ResponseWriter, msg string, err error, attrs ...any) {
	slog.Error(msg, append([]any{"error", err}, attrs...)...)
	middleware.ErrorResponse(w, http.StatusInternalServerError, "Something went wrong, please try again")
}

// nullable returns nil for an empty string so optional columns store NULL.
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func queryInt(r *http.Request, name string, def int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil || v < 1 {
		return def
	}
	return v
}

// Topic queries

const topicColumns = `
	t.id, t.title, t.body, t.slug, t.type, t.status, t.is_pinned, t.vote_score, t.reply_count, t.view_count,
	t.accepted_reply_id, t.last_activity, t.created_at, t.updated_at,
	u.id, u.name, u.username, u.image, u.role, u.reputation,
	p.id, p.slug, p.name, p.color,
	c.id, c.slug, c.name`

const topicFrom = `
	FROM topic t
	JOIN users u ON t.author_id = u.id
	JOIN product p ON t.product_id = p.id
	LEFT JOIN category c ON t.category_id = c.id`

const topicSelect = "SELECT " + topicColumns + topicFrom

// topicExcerptLen is the preview length on topic cards.
const topicExcerptLen = 200

func scanTopic(s scanner) (models.Topic, error) {
	var t models.Topic
	var catID, catSlug, catName sql.NullString
	err := s.Scan(&t.ID, &t.Title, &t.Body, &t.Slug, &t.Type, &t.Status, &t.IsPinned,
		&t.VoteScore, &t.ReplyCount, &t.ViewCount,
		&t.AcceptedReplyID, &t.LastActivity, &t.CreatedAt, &t.UpdatedAt,
		&t.Author.ID, &t.Author.Name, &t.Author.Username, &t.Author.Image, &t.Author.Role, &t.Author.Reputation,
		&t.Product.ID, &t.Product.Slug, &t.Product.Name, &t.Product.Color,
		&catID, &catSlug, &catName)
	if err != nil {
		return models.Topic{}, err
	}

	if catID.Valid {
		t.Category = &models.CategoryRef{ID: catID.String, Slug: catSlug.String, Name: catName.String}
	}
	t.LastActivity = t.LastActivity.UTC()
	t.CreatedAt = t.CreatedAt.UTC()
	t.UpdatedAt = t.UpdatedAt.UTC()
	t.LastActivityAgo = textutil.RelativeTime(t.LastActivity, now())
	t.ViewCountLabel = textutil.FormatCount(t.ViewCount)
	t.Excerpt = textutil.Truncate(t.Body, topicExcerptLen)
	t.Tags = []models.TagRef{}
	return t, nil
}

// listTopics runs a topic query and attaches tags. query must select
// topicColumns.
func listTopics(ctx context.Context, db *sql.DB, query string, args ...any) ([]models.Topic, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query topics: %w", err)
	}

	topics := []models.Topic{}
	for rows.Next() {
		t, err := scanTopic(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan topic: %w", err)
		}
		topics = append(topics, t)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterate topics: %w", err)
	}
	rows.Close()

	if err := attachTags(ctx, db, topics); err != nil {
		return nil, err
	}
	return topics, nil
}

// getTopic loads one topic by a condition on t such as "t.id = $1".
func getTopic(ctx context.Context, db *sql.DB, cond string, args ...any) (models.Topic, error) {
	t, err := scanTopic(db.QueryRowContext(ctx, topicSelect+" WHERE "+cond, args...))
	if err != nil {
		return models.Topic{}, err
	}

	topics := []models.Topic{t}
	if err := attachTags(ctx, db, topics); err != nil {
		return models.Topic{}, err
	}
	return topics[0], nil
}

func attachTags(ctx context.Context, db *sql.DB, topics []models.Topic) error {
	if len(topics) == 0 {
		return nil
	}

	index := make(map[string]int, len(topics))
	args := make([]any, len(topics))
	for i, t := range topics {
		index[t.ID] = i
		args[i] = t.ID
	}

	rows, err := db.QueryContext(ctx, `
		SELECT tt.topic_id, tg.name, tg.slug
		FROM topic_tag tt
		JOIN tag tg ON tt.tag_id = tg.id
		WHERE tt.topic_id IN (`+search.Placeholders(1, len(args))+`)
		ORDER BY tg.name`, args...)
	if err != nil {
		return fmt.Errorf("load topic tags: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var topicID string
		var tag models.TagRef
		if err := rows.Scan(&topicID, &tag.Name, &tag.Slug); err != nil {
			return fmt.Errorf("scan topic tag: %w", err)
		}
		if i, ok := index[topicID]; ok {
			topics[i].Tags = append(topics[i].Tags, tag)
		}
	}
	return rows.Err()
}

// Reply queries

const replySelect = `
	SELECT r.id, r.topic_id, r.parent_id, r.body, r.vote_score, r.is_deleted, r.created_at, r.updated_at,
	       u.id, u.name, u.username, u.image, u.role, u.reputation
	FROM reply r
	JOIN users u ON r.author_id = u.id`

func scanReply(s scanner) (models.Reply, error) {
	var r models.Reply
	err := s.Scan(&r.ID, &r.TopicID, &r.ParentID, &r.Body, &r.VoteScore, &r.IsDeleted, &r.CreatedAt, &r.UpdatedAt,
		&r.Author.ID, &r.Author.Name, &r.Author.Username, &r.Author.Image, &r.Author.Role, &r.Author.Reputation)
	if err != nil {
		return models.Reply{}, err
	}
	r.CreatedAt = r.CreatedAt.UTC()
	r.UpdatedAt = r.UpdatedAt.UTC()
	r.BodyHTML = markdown.RenderOrEmpty(r.Body)
	return r, nil
}

func listReplies(ctx context.Context, db *sql.DB, query string, args ...any) ([]models.Reply, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query replies: %w", err)
	}
	defer rows.Close()

	replies := []models.Reply{}
	for rows.Next() {
		r, err := scanReply(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reply: %w", err)
		}
		replies = append(replies, r)
	}
	return replies, rows.Err()
}

// Moderation log

type modAction struct {
	Type         string
	Reason       string
	ModeratorID  string
	TopicID      string
	ReplyID      string
	ReportID     string
	TargetUserID string
}

func logModAction(ctx context.Context, ex execer, a modAction) error {
	_, err := ex.ExecContext(ctx, `
		INSERT INTO mod_action (id, type, reason, moderator_id, topic_id, reply_id, report_id, target_user_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, auth.NewID(), a.Type, nullable(a.Reason), a.ModeratorID, nullable(a.TopicID), nullable(a.ReplyID),
		nullable(a.ReportID), nullable(a.TargetUserID), now())
	if err != nil {
		return fmt.Errorf("log mod action %s: %w", a.Type, err)
	}
	return nil
}

// adjustTagUsage adds delta to the usage count of each tag.
func adjustTagUsage(ctx context.Context, ex execer, tagIDs []string, delta int) error {
	for _, id := range tagIDs {
		if _, err := ex.ExecContext(ctx, `
			UPDATE tag SET usage_count = CASE WHEN usage_count + $1 < 0 THEN 0 ELSE usage_count + $1 END
			WHERE id = $2
		`, delta, id); err != nil {
			return fmt.Errorf("adjust tag usage: %w", err)
		}
	}
	return nil
}

// addReputation credits points to a user.
func addReputation(ctx context.Context, ex execer, userID string, points int) error {
	if _, err := ex.ExecContext(ctx, `UPDATE users SET reputation = reputation + $1 WHERE id = $2`, points, userID); err != nil {
		return fmt.Errorf("add reputation: %w", err)
	}
	return nil
}

// topicTagIDs returns the tag IDs attached to a topic.
func topicTagIDs(ctx context.Context, q interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}, topicID string) ([]string, error) {
	rows, err := q.QueryContext(ctx, `SELECT tag_id FROM topic_tag WHERE topic_id = $1`, topicID)
	if err != nil {
		return nil, fmt.Errorf("query topic tags: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan topic tag: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// dedupe removes repeated IDs keeping the first occurrence.
func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
