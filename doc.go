// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the community forum API server.

The forum hosts product-scoped discussions: topics (questions, discussions,
announcements, showcases) with threaded replies, votes, accepted answers,
bookmarks, reports and a moderation log.

# Starting the Server

Configuration comes from the environment (a .env file is loaded when
present) or CLI flags:

	DATABASE_URL=postgres://... SESSION_SECRET=... go run .

Or with SQLite for local development, with demo data:

	go run . -t sqlite -d forum.db -session-secret dev -seed

# Configuration

Required settings:

  - DATABASE_URL (-d): PostgreSQL URL or SQLite file path
  - SESSION_SECRET (--session-secret): HMAC key for session tokens

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): postgres or sqlite (default: postgres)
  - SESSION_TTL (--session-ttl): session lifetime (default: 720h)
  - SMTP_HOST, SMTP_PORT, SMTP_USER, SMTP_PASSWORD, EMAIL_FROM: outgoing
    mail; codes are logged when SMTP is not configured
  - OTP_CLEANUP_INTERVAL (--otp-cleanup): expired code sweep interval
  - CORS_ORIGINS (--cors-origins): origins allowed to make credentialed
    requests (default: the origin of BASE_URL)
  - TRUSTED_PROXIES (--trusted-proxies): proxy addresses or CIDR ranges
    whose X-Forwarded-For header names the client
  - SEED (--seed): load demo data on startup

# Architecture

  - handlers: HTTP request handlers
  - router: route table and access control
  - middleware: sessions, rate limiting, logging, metrics, JSON helpers
  - models: domain, request and response types plus validation
  - auth: IDs, OTPs, password hashing and session tokens
  - search: full-text providers for PostgreSQL and SQLite
  - markdown: sanitized Markdown rendering
  - mail: verification emails
  - textutil: slugs, excerpts and human-readable formatting
  - db: connections, schema and seed data
  - cliparse: configuration parsing

See package documentation for each component.
*/
package main
