// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package search implements topic search behind the Provider interface.
//
// PostgresProvider ranks with to_tsvector/plainto_tsquery and ts_rank.
// SQLiteProvider uses LIKE matching for development databases. Both share
// one query builder so filters, pagination and totals behave identically.
package search
