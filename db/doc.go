// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db opens database connections, creates the schema and loads demo
data.

# Connections

Open supports PostgreSQL (lib/pq) and SQLite (modernc.org/sqlite):

	conn, err := db.Open(ctx, cfg.DatabaseType, cfg.DatabaseURL)

SQLite connections enable foreign keys, a busy timeout, WAL and immediate
transactions. All queries in the application use $N placeholders, which
both drivers accept.

# Schema Creation

	if err := db.CreateSchema(ctx, conn, cfg.DatabaseType); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.
PostgreSQL also gets a GIN full-text index on topic title and body.

# Tables

  - users, verification_code: accounts and one-time codes
  - product, category, tag: forum structure
  - topic, topic_tag, reply: content
  - vote, bookmark: per-user interactions
  - report, mod_action: moderation
  - badge, user_badge: recognition

# Relationships

	product 1──* category
	product 1──* topic
	topic *──* tag (via topic_tag)
	topic 1──* reply
	reply 1──* reply (parent_id)
	users 1──* topic, reply, vote, bookmark, report

Content foreign keys use ON DELETE CASCADE. mod_action targets carry no
foreign keys so the log outlives deleted content.

# Errors

IsUniqueViolation recognizes unique constraint failures from either driver
so handlers can map them to 409 Conflict.

# Seed Data

Seed loads demo accounts, the Acme products, categories, tags, topics,
replies and badges in one transaction. It does nothing when the demo admin
already exists.
*/
package db
