// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package search

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/danielhkuo/community-forum/cliparse"
	"github.com/danielhkuo/community-forum/models"
	"github.com/danielhkuo/community-forum/textutil"
)

const (
	DefaultLimit = 20
	MaxLimit     = 50

	// bodyPreviewLen is the number of characters of body returned per hit.
	bodyPreviewLen = 300
)

// Document is the indexable form of a topic.
type Document struct {
	ID         string
	Title      string
	Body       string
	ProductID  string
	CategoryID string
	AuthorID   string
	Tags       []string
}

// Provider runs topic searches. The SQL providers index through the
// database itself, so IndexTopic and DeleteTopic exist for external engines.
type Provider interface {
	Search(ctx context.Context, params models.SearchRequest) (models.SearchResult, error)
	IndexTopic(ctx context.Context, doc Document) error
	DeleteTopic(ctx context.Context, id string) error
}

// NewProvider returns the provider matching the database type.
func NewProvider(db *sql.DB, dbType string) Provider {
	if dbType == cliparse.DatabasePostgres {
		return NewPostgresProvider(db)
	}
	return NewSQLiteProvider(db)
}

// dialect supplies the database-specific parts of a search query.
type dialect interface {
	// match adds the text match condition and returns the ORDER BY prefix
	// ranking matches by relevance.
	match(w *where, query string) (rank string)
	// tags adds the tag filter.
	tags(w *where, ids []string)
}

// where accumulates conditions with consecutive $N placeholders.
type where struct {
	conds []string
	args  []any
}

// add appends cond, replacing each %[1]d in it with the next placeholder
// number and binding arg to it.
func (w *where) add(cond string, arg any) {
	w.args = append(w.args, arg)
	w.conds = append(w.conds, fmt.Sprintf(cond, len(w.args)))
}

// next reserves a placeholder for arg and returns its number.
func (w *where) next(arg any) int {
	w.args = append(w.args, arg)
	return len(w.args)
}

func (w *where) clause() string {
	if len(w.conds) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(w.conds, " AND ")
}

// build assembles the WHERE clause shared by the count and page queries.
func build(d dialect, p models.SearchRequest) (w *where, rank string) {
	w = &where{}
	w.conds = append(w.conds, "p.status <> 'HIDDEN'")

	if p.Query != "" {
		rank = d.match(w, p.Query)
	}
	if p.ProductID != "" {
		w.add("t.product_id = $%[1]d", p.ProductID)
	}
	if p.CategoryID != "" {
		w.add("t.category_id = $%[1]d", p.CategoryID)
	}
	if p.Status != "" {
		w.add("t.status = $%[1]d", p.Status)
	}
	if p.Type != "" {
		w.add("t.type = $%[1]d", p.Type)
	}
	if len(p.TagIDs) > 0 {
		d.tags(w, p.TagIDs)
	}

	return w, rank
}

const fromClause = `
	FROM topic t
	JOIN product p ON t.product_id = p.id
	LEFT JOIN category c ON t.category_id = c.id
	JOIN users u ON t.author_id = u.id`

// run executes a search with the given dialect.
func run(ctx context.Context, db *sql.DB, d dialect, p models.SearchRequest) (models.SearchResult, error) {
	p = normalize(p)
	w, rank := build(d, p)

	var total int
	countSQL := "SELECT COUNT(*)" + fromClause + " " + w.clause()
	if err := db.QueryRowContext(ctx, countSQL, w.args...).Scan(&total); err != nil {
		return models.SearchResult{}, fmt.Errorf("count search results: %w", err)
	}

	// Pages past the end are empty; clamping keeps the offset in range.
	totalPages := (total + p.Limit - 1) / p.Limit
	p.Page = min(p.Page, totalPages+1)

	limitN := w.next(p.Limit)
	offsetN := w.next((p.Page - 1) * p.Limit)

	pageSQL := fmt.Sprintf(`
	SELECT t.id, t.title, t.body, t.slug, t.status, t.type, t.created_at, t.vote_score, t.reply_count,
	       p.slug, p.name, c.slug, c.name, u.name, u.username
	%s
	%s
	ORDER BY %s t.last_activity DESC
	LIMIT $%d OFFSET $%d`, fromClause, w.clause(), rank, limitN, offsetN)

	rows, err := db.QueryContext(ctx, pageSQL, w.args...)
	if err != nil {
		return models.SearchResult{}, fmt.Errorf("search topics: %w", err)
	}

	items := []models.SearchHit{}
	for rows.Next() {
		var (
			hit        models.SearchHit
			authorName sql.NullString
			createdAt  time.Time
		)
		if err := rows.Scan(&hit.ID, &hit.Title, &hit.Body, &hit.Slug, &hit.Status, &hit.Type,
			&createdAt, &hit.VoteScore, &hit.ReplyCount,
			&hit.ProductSlug, &hit.ProductName, &hit.CategorySlug, &hit.CategoryName,
			&authorName, &hit.AuthorUsername); err != nil {
			rows.Close()
			return models.SearchResult{}, fmt.Errorf("scan search hit: %w", err)
		}
		hit.CreatedAt = createdAt.UTC()
		hit.Body = textutil.Excerpt(hit.Body, bodyPreviewLen)
		hit.AuthorName = "Unknown"
		if authorName.Valid && authorName.String != "" {
			hit.AuthorName = authorName.String
		}
		hit.Tags = []models.TagRef{}
		items = append(items, hit)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return models.SearchResult{}, fmt.Errorf("iterate search hits: %w", err)
	}
	rows.Close()

	if err := attachTags(ctx, db, items); err != nil {
		return models.SearchResult{}, err
	}

	return models.SearchResult{
		Items:      items,
		Total:      total,
		Page:       p.Page,
		TotalPages: totalPages,
	}, nil
}

func normalize(p models.SearchRequest) models.SearchRequest {
	p.Query = strings.TrimSpace(p.Query)
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	return p
}

// attachTags loads the tags of every hit with one query.
func attachTags(ctx context.Context, db *sql.DB, items []models.SearchHit) error {
	if len(items) == 0 {
		return nil
	}

	index := make(map[string]int, len(items))
	args := make([]any, len(items))
	for i, hit := range items {
		index[hit.ID] = i
		args[i] = hit.ID
	}

	rows, err := db.QueryContext(ctx, `
		SELECT tt.topic_id, tg.name, tg.slug
		FROM topic_tag tt
		JOIN tag tg ON tt.tag_id = tg.id
		WHERE tt.topic_id IN (`+Placeholders(1, len(args))+`)
		ORDER BY tg.name`, args...)
	if err != nil {
		return fmt.Errorf("load search tags: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var topicID string
		var tag models.TagRef
		if err := rows.Scan(&topicID, &tag.Name, &tag.Slug); err != nil {
			return fmt.Errorf("scan search tag: %w", err)
		}
		if i, ok := index[topicID]; ok {
			items[i].Tags = append(items[i].Tags, tag)
		}
	}
	return rows.Err()
}

// Placeholders returns "$start, $start+1, ..." for n parameters.
func Placeholders(start, n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf("$%d", start+i)
	}
	return strings.Join(parts, ", ")
}
