// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the community forum API.

# Handler Types

Each handler is a struct with database and config dependencies:

  - AuthHandler: OTP codes, signup, sign-in and sign-out
  - ProductHandler: product listing and detail
  - TopicHandler: topic feeds, creation, editing, answers and bookmarks
  - ReplyHandler: threaded replies
  - VoteHandler: up/down votes on topics and replies
  - ReportHandler: user reports
  - ModerationHandler: report queue, locking, pinning, deletion and bans
  - AdminHandler: products, categories, tags and roles
  - UserHandler: profiles and the signed-in user's settings
  - SearchHandler: full-text topic search

Handlers are created via constructor functions:

	topicHandler := handlers.NewTopicHandler(db, cfg, provider)

Handlers that need the caller read it with middleware.CurrentUser; the
router guarantees it is present on routes wrapped in Require.

# Counters

Denormalized counters (vote_score, reply_count, tag usage_count,
reputation) are updated in the same transaction as the row that changes
them. Vote toggling follows:

	no prior vote       -> insert, score +1 (UP) or -1 (DOWN)
	same type again     -> delete, score reverted
	opposite type       -> switch, score +2 or -2

Reputation is awarded once: +5 for a topic, +2 for a reply and +15 when a
reply first becomes the accepted answer.

# Search

TopicHandler and ModerationHandler keep the search.Provider in sync after
their transactions commit. Index failures are logged, not returned.
*/
package handlers
