// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/danielhkuo/community-forum/cliparse"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(ctx context.Context, db *sql.DB, dbType string) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	if dbType == cliparse.DatabasePostgres {
		if _, err := db.ExecContext(ctx, postgresSearchIndex); err != nil {
			return fmt.Errorf("failed to create search index: %w", err)
		}
	}

	return nil
}

// Full-text index backing search.PostgresProvider. The expression must match
// the one used in the search query for the planner to pick it up.
const postgresSearchIndex = `
CREATE INDEX IF NOT EXISTS idx_topic_fts ON topic
    USING GIN (to_tsvector('english', title || ' ' || body));
`

const schema = `
-- Users
CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    name TEXT,
    email TEXT NOT NULL UNIQUE,
    username TEXT UNIQUE,
    email_verified TIMESTAMP,
    image TEXT,
    bio TEXT,
    website TEXT,
    github TEXT,
    twitter TEXT,
    role TEXT NOT NULL DEFAULT 'USER' CHECK (role IN ('USER', 'TRUSTED', 'MODERATOR', 'ADMIN')),
    reputation INTEGER NOT NULL DEFAULT 0,
    is_banned BOOLEAN NOT NULL DEFAULT FALSE,
    password_hash TEXT,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

-- One-time codes
CREATE TABLE IF NOT EXISTS verification_code (
    id TEXT PRIMARY KEY,
    code TEXT NOT NULL,
    type TEXT NOT NULL CHECK (type IN ('EMAIL_VERIFICATION', 'SIGN_IN')),
    email TEXT NOT NULL,
    user_id TEXT REFERENCES users(id) ON DELETE CASCADE,
    expires_at TIMESTAMP NOT NULL,
    used BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_verification_code_email ON verification_code(email, type);

-- Products
CREATE TABLE IF NOT EXISTS product (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    slug TEXT NOT NULL UNIQUE,
    description TEXT,
    icon TEXT,
    color TEXT,
    status TEXT NOT NULL DEFAULT 'HIDDEN' CHECK (status IN ('ACTIVE', 'BETA', 'HIDDEN')),
    ordering INTEGER NOT NULL DEFAULT 0,
    docs_url TEXT,
    release_url TEXT,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

-- Categories
CREATE TABLE IF NOT EXISTS category (
    id TEXT PRIMARY KEY,
    product_id TEXT REFERENCES product(id) ON DELETE CASCADE,
    name TEXT NOT NULL,
    slug TEXT NOT NULL,
    description TEXT,
    icon TEXT,
    ordering INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    UNIQUE (product_id, slug)
);

CREATE INDEX IF NOT EXISTS idx_category_product_id ON category(product_id);

-- Tags
CREATE TABLE IF NOT EXISTS tag (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL UNIQUE,
    slug TEXT NOT NULL UNIQUE,
    description TEXT,
    color TEXT,
    usage_count INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

-- Topics
CREATE TABLE IF NOT EXISTS topic (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    body TEXT NOT NULL,
    slug TEXT NOT NULL,
    type TEXT NOT NULL CHECK (type IN ('QUESTION', 'DISCUSSION', 'ANNOUNCEMENT', 'SHOWCASE')),
    status TEXT NOT NULL DEFAULT 'OPEN' CHECK (status IN ('OPEN', 'ANSWERED', 'RESOLVED', 'LOCKED', 'ARCHIVED')),
    product_id TEXT NOT NULL REFERENCES product(id) ON DELETE CASCADE,
    category_id TEXT REFERENCES category(id) ON DELETE SET NULL,
    author_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    accepted_reply_id TEXT,
    is_pinned BOOLEAN NOT NULL DEFAULT FALSE,
    vote_score INTEGER NOT NULL DEFAULT 0,
    reply_count INTEGER NOT NULL DEFAULT 0,
    view_count INTEGER NOT NULL DEFAULT 0,
    last_activity TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    UNIQUE (product_id, slug)
);

CREATE INDEX IF NOT EXISTS idx_topic_product_id ON topic(product_id);
CREATE INDEX IF NOT EXISTS idx_topic_author_id ON topic(author_id);
CREATE INDEX IF NOT EXISTS idx_topic_last_activity ON topic(last_activity);

CREATE TABLE IF NOT EXISTS topic_tag (
    topic_id TEXT NOT NULL REFERENCES topic(id) ON DELETE CASCADE,
    tag_id TEXT NOT NULL REFERENCES tag(id) ON DELETE CASCADE,
    PRIMARY KEY (topic_id, tag_id)
);

CREATE INDEX IF NOT EXISTS idx_topic_tag_tag_id ON topic_tag(tag_id);

-- Replies
CREATE TABLE IF NOT EXISTS reply (
    id TEXT PRIMARY KEY,
    body TEXT NOT NULL,
    topic_id TEXT NOT NULL REFERENCES topic(id) ON DELETE CASCADE,
    author_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    parent_id TEXT REFERENCES reply(id) ON DELETE CASCADE,
    vote_score INTEGER NOT NULL DEFAULT 0,
    is_deleted BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_reply_topic_id ON reply(topic_id);
CREATE INDEX IF NOT EXISTS idx_reply_author_id ON reply(author_id);

-- Votes (exactly one of topic_id, reply_id is set)
CREATE TABLE IF NOT EXISTS vote (
    id TEXT PRIMARY KEY,
    type TEXT NOT NULL CHECK (type IN ('UP', 'DOWN')),
    user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    topic_id TEXT REFERENCES topic(id) ON DELETE CASCADE,
    reply_id TEXT REFERENCES reply(id) ON DELETE CASCADE,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    CHECK ((topic_id IS NULL) <> (reply_id IS NULL)),
    UNIQUE (user_id, topic_id),
    UNIQUE (user_id, reply_id)
);

-- Bookmarks
CREATE TABLE IF NOT EXISTS bookmark (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    topic_id TEXT NOT NULL REFERENCES topic(id) ON DELETE CASCADE,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    UNIQUE (user_id, topic_id)
);

-- Reports
CREATE TABLE IF NOT EXISTS report (
    id TEXT PRIMARY KEY,
    reason TEXT NOT NULL CHECK (reason IN ('SPAM', 'HARASSMENT', 'INAPPROPRIATE', 'OFF_TOPIC', 'DUPLICATE', 'OTHER')),
    details TEXT,
    status TEXT NOT NULL DEFAULT 'PENDING' CHECK (status IN ('PENDING', 'REVIEWED', 'RESOLVED', 'DISMISSED')),
    reporter_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    topic_id TEXT REFERENCES topic(id) ON DELETE CASCADE,
    reply_id TEXT REFERENCES reply(id) ON DELETE CASCADE,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_report_status ON report(status);

-- Moderation log. Target columns carry no foreign keys so entries outlive
-- the content they describe.
CREATE TABLE IF NOT EXISTS mod_action (
    id TEXT PRIMARY KEY,
    type TEXT NOT NULL,
    reason TEXT,
    moderator_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    topic_id TEXT,
    reply_id TEXT,
    report_id TEXT,
    target_user_id TEXT,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

-- Badges
CREATE TABLE IF NOT EXISTS badge (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    slug TEXT NOT NULL UNIQUE,
    description TEXT,
    icon TEXT,
    color TEXT
);

CREATE TABLE IF NOT EXISTS user_badge (
    user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    badge_id TEXT NOT NULL REFERENCES badge(id) ON DELETE CASCADE,
    awarded_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    PRIMARY KEY (user_id, badge_id)
);
`
