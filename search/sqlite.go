// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package search

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/danielhkuo/community-forum/models"
)

// SQLiteProvider falls back to case-insensitive substring matching. Title
// matches rank above body-only matches.
type SQLiteProvider struct {
	db *sql.DB
}

func NewSQLiteProvider(db *sql.DB) *SQLiteProvider {
	return &SQLiteProvider{db: db}
}

func (p *SQLiteProvider) Search(ctx context.Context, params models.SearchRequest) (models.SearchResult, error) {
	return run(ctx, p.db, sqliteDialect{}, params)
}

func (p *SQLiteProvider) IndexTopic(context.Context, Document) error { return nil }

func (p *SQLiteProvider) DeleteTopic(context.Context, string) error { return nil }

type sqliteDialect struct{}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (sqliteDialect) match(w *where, query string) string {
	pattern := "%" + likeEscaper.Replace(strings.ToLower(query)) + "%"
	w.add(`(LOWER(t.title) LIKE $%[1]d ESCAPE '\' OR LOWER(t.body) LIKE $%[1]d ESCAPE '\')`, pattern)
	n := len(w.args)
	return fmt.Sprintf(`CASE WHEN LOWER(t.title) LIKE $%d ESCAPE '\' THEN 1 ELSE 0 END DESC,`, n)
}

func (sqliteDialect) tags(w *where, ids []string) {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	start := len(w.args) + 1
	w.args = append(w.args, args...)
	w.conds = append(w.conds, fmt.Sprintf(
		"EXISTS (SELECT 1 FROM topic_tag tt WHERE tt.topic_id = t.id AND tt.tag_id IN (%s))",
		Placeholders(start, len(ids))))
}
