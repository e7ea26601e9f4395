// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package search

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/danielhkuo/community-forum/models"
)

// PostgresProvider searches with PostgreSQL full-text search. The tsvector
// expression matches idx_topic_fts.
type PostgresProvider struct {
	db *sql.DB
}

func NewPostgresProvider(db *sql.DB) *PostgresProvider {
	return &PostgresProvider{db: db}
}

func (p *PostgresProvider) Search(ctx context.Context, params models.SearchRequest) (models.SearchResult, error) {
	return run(ctx, p.db, postgresDialect{}, params)
}

// IndexTopic is a no-op: the GIN index is maintained by PostgreSQL.
func (p *PostgresProvider) IndexTopic(context.Context, Document) error { return nil }

// DeleteTopic is a no-op: index entries go with the row.
func (p *PostgresProvider) DeleteTopic(context.Context, string) error { return nil }

type postgresDialect struct{}

func (postgresDialect) match(w *where, query string) string {
	w.add("to_tsvector('english', t.title || ' ' || t.body) @@ plainto_tsquery('english', $%[1]d)", query)
	n := len(w.args)
	return fmt.Sprintf("ts_rank(to_tsvector('english', t.title || ' ' || t.body), plainto_tsquery('english', $%d)) DESC,", n)
}

func (postgresDialect) tags(w *where, ids []string) {
	w.add("EXISTS (SELECT 1 FROM topic_tag tt WHERE tt.topic_id = t.id AND tt.tag_id = ANY($%[1]d))", pq.Array(ids))
}
