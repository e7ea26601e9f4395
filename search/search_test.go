// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package search

import (
	"context"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/community-forum/cliparse"
	"github.com/danielhkuo/community-forum/models"
	"github.com/danielhkuo/community-forum/testutil"
)

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, "$1", Placeholders(1, 1))
	assert.Equal(t, "$3, $4, $5", Placeholders(3, 3))
}

func TestBuild_PostgresPlaceholdersAreConsecutive(t *testing.T) {
	w, rank := build(postgresDialect{}, models.SearchRequest{
		Query:      "rate limiting",
		ProductID:  "p1",
		CategoryID: "c1",
		Status:     models.StatusOpen,
		Type:       models.TopicQuestion,
		TagIDs:     []string{"t1", "t2"},
	})

	clause := w.clause()
	for i := 1; i <= 6; i++ {
		assert.Contains(t, clause, "$"+string(rune('0'+i)))
	}
	assert.NotContains(t, clause, "$7")
	assert.Contains(t, clause, "plainto_tsquery('english', $1)")
	assert.Contains(t, clause, "t.product_id = $2")
	assert.Contains(t, clause, "= ANY($6)")
	assert.Contains(t, rank, "ts_rank(")
	assert.True(t, strings.HasSuffix(rank, "DESC,"))

	require.Len(t, w.args, 6)
	assert.Equal(t, "rate limiting", w.args[0])
	assert.IsType(t, pq.Array([]string{}), w.args[5])
}

func TestBuild_SQLiteExpandsTags(t *testing.T) {
	w, _ := build(sqliteDialect{}, models.SearchRequest{
		Query:  "50%_off",
		Type:   models.TopicDiscussion,
		TagIDs: []string{"a", "b", "c"},
	})

	assert.Contains(t, w.clause(), "tt.tag_id IN ($3, $4, $5)")
	require.Len(t, w.args, 5)
	assert.Equal(t, `%50\%\_off%`, w.args[0])
}

func TestNewProvider(t *testing.T) {
	assert.IsType(t, &PostgresProvider{}, NewProvider(nil, cliparse.DatabasePostgres))
	assert.IsType(t, &SQLiteProvider{}, NewProvider(nil, cliparse.DatabaseSQLite))
}

func TestSQLiteProvider_Search(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()

	author := testutil.CreateTestUser(t, db, "alice", models.RoleUser)
	productID := testutil.CreateTestProduct(t, db, "acme", models.ProductActive)
	otherProduct := testutil.CreateTestProduct(t, db, "other", models.ProductActive)
	hiddenProduct := testutil.CreateTestProduct(t, db, "secret", models.ProductHidden)
	tagID := testutil.CreateTestTag(t, db, "api")

	base := time.Now().UTC().Add(-time.Hour)
	titleHit, _ := testutil.CreateTestTopic(t, db, productID, author.ID, testutil.TopicOpts{
		Title:     "Webhook retries are failing",
		TagIDs:    []string{tagID},
		CreatedAt: base,
	})
	bodyHit, _ := testutil.CreateTestTopic(t, db, productID, author.ID, testutil.TopicOpts{
		Title:     "Delivery problems after upgrade",
		Body:      "Our WEBHOOK endpoint stopped receiving events. " + strings.Repeat("x", 400),
		Type:      models.TopicDiscussion,
		CreatedAt: base.Add(time.Minute),
	})
	testutil.CreateTestTopic(t, db, otherProduct, author.ID, testutil.TopicOpts{
		Title:     "Unrelated question about billing",
		CreatedAt: base.Add(2 * time.Minute),
	})
	testutil.CreateTestTopic(t, db, hiddenProduct, author.ID, testutil.TopicOpts{
		Title: "Webhook in a hidden product",
	})

	provider := NewSQLiteProvider(db)

	t.Run("title matches rank first", func(t *testing.T) {
		res, err := provider.Search(ctx, models.SearchRequest{Query: "webhook", Page: 1, Limit: 20})
		require.NoError(t, err)

		require.Equal(t, 2, res.Total)
		require.Len(t, res.Items, 2)
		assert.Equal(t, titleHit, res.Items[0].ID)
		assert.Equal(t, bodyHit, res.Items[1].ID)
		assert.Equal(t, 1, res.TotalPages)

		first := res.Items[0]
		assert.Equal(t, "acme", first.ProductSlug)
		assert.Equal(t, "alice", first.AuthorName)
		require.Len(t, first.Tags, 1)
		assert.Equal(t, "api", first.Tags[0].Slug)

		assert.LessOrEqual(t, len([]rune(res.Items[1].Body)), 300)
		assert.Empty(t, res.Items[1].Tags)
	})

	t.Run("filters", func(t *testing.T) {
		res, err := provider.Search(ctx, models.SearchRequest{Query: "webhook", Type: models.TopicDiscussion})
		require.NoError(t, err)
		require.Len(t, res.Items, 1)
		assert.Equal(t, bodyHit, res.Items[0].ID)

		res, err = provider.Search(ctx, models.SearchRequest{Query: "webhook", TagIDs: []string{tagID}})
		require.NoError(t, err)
		require.Len(t, res.Items, 1)
		assert.Equal(t, titleHit, res.Items[0].ID)

		res, err = provider.Search(ctx, models.SearchRequest{Query: "webhook", ProductID: otherProduct})
		require.NoError(t, err)
		assert.Equal(t, 0, res.Total)
		assert.NotNil(t, res.Items)
	})

	t.Run("pagination", func(t *testing.T) {
		res, err := provider.Search(ctx, models.SearchRequest{Query: "webhook", Page: 2, Limit: 1})
		require.NoError(t, err)
		assert.Equal(t, 2, res.Total)
		assert.Equal(t, 2, res.Page)
		assert.Equal(t, 2, res.TotalPages)
		require.Len(t, res.Items, 1)
		assert.Equal(t, bodyHit, res.Items[0].ID)
	})

	t.Run("limit is capped", func(t *testing.T) {
		res, err := provider.Search(ctx, models.SearchRequest{Query: "webhook", Limit: 500})
		require.NoError(t, err)
		assert.Equal(t, 1, res.Page)
		assert.Len(t, res.Items, 2)
	})

	assert.NoError(t, provider.IndexTopic(ctx, Document{ID: titleHit}))
	assert.NoError(t, provider.DeleteTopic(ctx, titleHit))

	t.Run("page far past the end", func(t *testing.T) {
		res, err := provider.Search(ctx, models.SearchRequest{Query: "webhook", Page: math.MaxInt, Limit: 50})
		require.NoError(t, err)
		assert.Empty(t, res.Items)
		assert.Equal(t, 2, res.Total)
		assert.Equal(t, 2, res.Page)
	})
}
