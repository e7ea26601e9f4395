// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/community-forum/auth"
	"github.com/danielhkuo/community-forum/cliparse"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	conn, err := Open(context.Background(), cliparse.DatabaseSQLite, filepath.Join(t.TempDir(), "forum.db"))
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, CreateSchema(context.Background(), conn, cliparse.DatabaseSQLite))
	return conn
}

func count(t *testing.T, conn *sql.DB, query string, args ...any) int {
	t.Helper()
	var n int
	require.NoError(t, conn.QueryRow(query, args...).Scan(&n))
	return n
}

func TestSQLiteDSN(t *testing.T) {
	dsn := SQLiteDSN("forum.db")
	assert.Contains(t, dsn, "file:forum.db?")
	assert.Contains(t, dsn, "_pragma=foreign_keys(1)")

	assert.Contains(t, SQLiteDSN("file:forum.db?mode=rwc"), "mode=rwc&_pragma=foreign_keys(1)")
}

func TestOpenUnsupportedType(t *testing.T) {
	_, err := Open(context.Background(), "mysql", "whatever")
	assert.Error(t, err)
}

func TestCreateSchemaIdempotent(t *testing.T) {
	conn := openTestDB(t)
	require.NoError(t, CreateSchema(context.Background(), conn, cliparse.DatabaseSQLite))
}

func TestIsUniqueViolation(t *testing.T) {
	conn := openTestDB(t)

	_, err := conn.Exec(`INSERT INTO tag (id, name, slug) VALUES ('t1', 'Go', 'go')`)
	require.NoError(t, err)
	_, err = conn.Exec(`INSERT INTO tag (id, name, slug) VALUES ('t2', 'Go', 'golang')`)
	require.Error(t, err)
	assert.True(t, IsUniqueViolation(err))

	_, err = conn.Exec(`INSERT INTO topic_tag (topic_id, tag_id) VALUES ('missing', 't1')`)
	require.Error(t, err)
	assert.False(t, IsUniqueViolation(err), "foreign key failures are not unique violations")
	assert.False(t, IsUniqueViolation(nil))
}

func TestCascadeDelete(t *testing.T) {
	conn := openTestDB(t)
	require.NoError(t, Seed(context.Background(), conn))

	var topicID string
	require.NoError(t, conn.QueryRow(`SELECT id FROM topic WHERE slug = 'how-to-set-up-oauth-with-google'`).Scan(&topicID))

	_, err := conn.Exec(`DELETE FROM topic WHERE id = $1`, topicID)
	require.NoError(t, err)
	assert.Equal(t, 0, count(t, conn, `SELECT COUNT(*) FROM reply WHERE topic_id = $1`, topicID))
	assert.Equal(t, 0, count(t, conn, `SELECT COUNT(*) FROM topic_tag WHERE topic_id = $1`, topicID))
}

func TestSeed(t *testing.T) {
	conn := openTestDB(t)
	ctx := context.Background()

	require.NoError(t, Seed(ctx, conn))

	assert.Equal(t, len(seedUsers), count(t, conn, `SELECT COUNT(*) FROM users`))
	assert.Equal(t, 1, count(t, conn, `SELECT COUNT(*) FROM product WHERE status = 'HIDDEN'`))
	assert.Equal(t, len(seedTopics), count(t, conn, `SELECT COUNT(*) FROM topic`))
	assert.Equal(t, 1, count(t, conn, `SELECT COUNT(*) FROM topic WHERE is_pinned = TRUE AND type = 'ANNOUNCEMENT'`))
	assert.Equal(t, 1, count(t, conn, `SELECT COUNT(*) FROM topic WHERE accepted_reply_id IS NOT NULL`))
	assert.Equal(t, 2, count(t, conn, `SELECT usage_count FROM tag WHERE slug = 'api'`))
	assert.Equal(t, 3, count(t, conn, `
		SELECT COUNT(*) FROM user_badge ub JOIN users u ON u.id = ub.user_id WHERE u.username = 'alice'
	`))

	var hash *string
	require.NoError(t, conn.QueryRow(`SELECT password_hash FROM users WHERE email = $1`, SeedAdminEmail).Scan(&hash))
	assert.NoError(t, auth.CheckPassword(hash, "Admin123!"))

	// Reply counts match the seeded replies.
	assert.Equal(t, 0, count(t, conn, `
		SELECT COUNT(*) FROM topic t
		WHERE t.reply_count <> (SELECT COUNT(*) FROM reply r WHERE r.topic_id = t.id)
	`))

	t.Run("second run is a no-op", func(t *testing.T) {
		require.NoError(t, Seed(ctx, conn))
		assert.Equal(t, len(seedUsers), count(t, conn, `SELECT COUNT(*) FROM users`))
	})
}
