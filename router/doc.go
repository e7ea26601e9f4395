// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the community forum API.

# Route Registration

NewRouter builds a ServeMux with every endpoint and wraps it in CORS for the
configured origins:

	h := router.NewRouter(db, cfg, mail.NewSender(cfg))

Each route is wrapped in middleware.WithLogging, which also records
Prometheus request metrics. Access is gated per route by the
middleware.Authenticator:

  - Optional: public, but the signed-in user is attached when present
  - Require: any signed-in, non-banned user
  - RequireModerator: MODERATOR or ADMIN
  - RequireAdmin: ADMIN only

# Endpoints

Service:

	GET /health  - "OK"
	GET /metrics - Prometheus exposition
	GET /        - banner

Authentication (send-otp, verify-otp and signin are rate limited per client
IP; forwarding headers count only from TRUSTED_PROXIES):

	POST /api/auth/send-otp
	POST /api/auth/verify-otp
	POST /api/auth/signup
	POST /api/auth/signin
	POST /api/auth/signout

Browsing:

	GET /api/products
	GET /api/products/{productSlug}
	GET /api/products/{productSlug}/topics
	GET /api/products/{productSlug}/topics/{topicSlug}
	GET /api/topics?filter=latest|trending|unanswered|resolved
	GET /api/announcements
	GET /api/topics/{id}/replies
	GET /api/topics/{id}/related
	GET /api/search

Participation:

	POST   /api/topics
	PATCH  /api/topics/{id}
	POST   /api/topics/{id}/accept
	POST   /api/topics/{id}/bookmark
	POST   /api/topics/{id}/replies
	PATCH  /api/replies/{id}
	DELETE /api/replies/{id}
	POST   /api/votes
	POST   /api/reports

Users:

	GET   /api/users/{username}
	GET   /api/users/{username}/topics
	GET   /api/users/{username}/replies
	GET   /api/users/{username}/bookmarks
	GET   /api/me
	PATCH /api/me

Moderation:

	POST   /api/topics/{id}/status
	GET    /api/mod/reports
	POST   /api/mod/reports/{id}/resolve
	POST   /api/mod/topics/{id}/lock
	POST   /api/mod/topics/{id}/unlock
	POST   /api/mod/topics/{id}/pin
	DELETE /api/mod/topics/{id}
	POST   /api/mod/users/{id}/ban
	POST   /api/mod/users/{id}/unban
	GET    /api/mod/actions

Administration:

	POST  /api/admin/products
	POST  /api/admin/categories
	POST  /api/admin/tags
	GET   /api/admin/overview
	PATCH /api/admin/users/{id}/role
*/
package router
