// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

Wrap handlers with request logging:

	mux.HandleFunc("GET /health", middleware.WithLogging(handler))

Logs request start (method, path, remote) and completion (status,
duration_ms), and records forum_http_requests_total and
forum_http_request_duration_seconds labelled by route pattern.

# Sessions

Authenticator resolves the bearer token or session cookie to a user:

	authn := middleware.NewAuthenticator(db, cfg.SessionSecret)
	mux.HandleFunc("POST /api/topics", middleware.WithLogging(authn.Require(h.CreateTopic)))

The user row is re-read on every request so role changes and bans apply
immediately. Handlers read the user with CurrentUser.

# Rate Limiting

KeyedLimiter keeps a token bucket per key:

	signin := middleware.NewKeyedLimiter("signin", 6*time.Second, 10)
	mux.HandleFunc("POST /api/auth/signin", middleware.LimitByIP(signin, ips, h.SignIn))

# Client Addresses

ClientIPs reads X-Forwarded-For and X-Real-IP only when the direct peer is
one of the configured trusted proxies. Otherwise the peer address is the
client:

	ips, err := middleware.NewClientIPs(cfg.TrustedProxies)

# CORS Middleware

Credentialed cross-origin requests are allowed from the configured
origins only:

	server := http.Server{
		Handler: middleware.CORS(cfg.AllowedOrigins(), mux),
	}

# JSON Helpers

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusBadRequest, "message")

	var req models.CreateTopicRequest
	if !middleware.DecodeAndValidate(w, r, &req) {
		return
	}
*/
package middleware
