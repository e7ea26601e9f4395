// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/danielhkuo/community-forum/cliparse"
	"github.com/danielhkuo/community-forum/handlers"
	"github.com/danielhkuo/community-forum/mail"
	"github.com/danielhkuo/community-forum/middleware"
	"github.com/danielhkuo/community-forum/search"
)

const banner = "community-forum API v1"

func NewRouter(db *sql.DB, cfg cliparse.Config, mailer mail.Sender) http.Handler {
	mux := http.NewServeMux()

	provider := search.NewProvider(db, cfg.DatabaseType)
	authn := middleware.NewAuthenticator(db, cfg.SessionSecret)
	ipLimiter := middleware.NewKeyedLimiter("auth_ip", 6*time.Second, 10)
	ips, err := middleware.NewClientIPs(cfg.TrustedProxies)
	if err != nil {
		slog.Warn("ignoring trusted proxies", "error", err)
		ips = nil
	}

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(db, cfg, mailer)
	productHandler := handlers.NewProductHandler(db, cfg)
	topicHandler := handlers.NewTopicHandler(db, cfg, provider)
	replyHandler := handlers.NewReplyHandler(db, cfg)
	voteHandler := handlers.NewVoteHandler(db, cfg)
	reportHandler := handlers.NewReportHandler(db, cfg)
	modHandler := handlers.NewModerationHandler(db, cfg, provider)
	adminHandler := handlers.NewAdminHandler(db, cfg)
	userHandler := handlers.NewUserHandler(db, cfg)
	searchHandler := handlers.NewSearchHandler(cfg, provider)

	handle := func(pattern string, h http.HandlerFunc) {
		mux.HandleFunc(pattern, middleware.WithLogging(h))
	}

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	mux.Handle("GET /metrics", promhttp.Handler())

	// Authentication
	handle("POST /api/auth/send-otp", middleware.LimitByIP(ipLimiter, ips, authHandler.SendOTP))
	handle("POST /api/auth/verify-otp", middleware.LimitByIP(ipLimiter, ips, authHandler.VerifyOTP))
	handle("POST /api/auth/signup", authHandler.SignUp)
	handle("POST /api/auth/signin", middleware.LimitByIP(ipLimiter, ips, authHandler.SignIn))
	handle("POST /api/auth/signout", authHandler.SignOut)

	// Products and topics (public reads)
	handle("GET /api/products", productHandler.ListProducts)
	handle("GET /api/products/{productSlug}", productHandler.GetProduct)
	handle("GET /api/products/{productSlug}/topics", topicHandler.ListProductTopics)
	handle("GET /api/products/{productSlug}/topics/{topicSlug}", authn.Optional(topicHandler.GetTopic))
	handle("GET /api/topics", topicHandler.ListTopics)
	handle("GET /api/announcements", topicHandler.ListAnnouncements)
	handle("GET /api/topics/{id}/replies", authn.Optional(replyHandler.ListReplies))
	handle("GET /api/topics/{id}/related", topicHandler.RelatedTopics)
	handle("GET /api/search", searchHandler.Search)

	// Participation (signed in)
	handle("POST /api/topics", authn.Require(topicHandler.CreateTopic))
	handle("PATCH /api/topics/{id}", authn.Require(topicHandler.UpdateTopic))
	handle("POST /api/topics/{id}/accept", authn.Require(topicHandler.AcceptAnswer))
	handle("POST /api/topics/{id}/bookmark", authn.Require(topicHandler.ToggleBookmark))
	handle("POST /api/topics/{id}/replies", authn.Require(replyHandler.CreateReply))
	handle("PATCH /api/replies/{id}", authn.Require(replyHandler.UpdateReply))
	handle("DELETE /api/replies/{id}", authn.Require(replyHandler.DeleteReply))
	handle("POST /api/votes", authn.Require(voteHandler.CastVote))
	handle("POST /api/reports", authn.Require(reportHandler.CreateReport))

	// Users
	handle("GET /api/users/{username}", authn.Optional(userHandler.GetProfile))
	handle("GET /api/users/{username}/topics", userHandler.UserTopics)
	handle("GET /api/users/{username}/replies", userHandler.UserReplies)
	handle("GET /api/users/{username}/bookmarks", authn.Require(userHandler.UserBookmarks))
	handle("GET /api/me", authn.Require(userHandler.GetMe))
	handle("PATCH /api/me", authn.Require(userHandler.UpdateMe))

	// Moderation
	handle("POST /api/topics/{id}/status", authn.RequireModerator(topicHandler.SetStatus))
	handle("GET /api/mod/reports", authn.RequireModerator(modHandler.ListReports))
	handle("POST /api/mod/reports/{id}/resolve", authn.RequireModerator(modHandler.ResolveReport))
	handle("POST /api/mod/topics/{id}/lock", authn.RequireModerator(modHandler.LockTopic))
	handle("POST /api/mod/topics/{id}/unlock", authn.RequireModerator(modHandler.UnlockTopic))
	handle("POST /api/mod/topics/{id}/pin", authn.RequireModerator(modHandler.TogglePin))
	handle("DELETE /api/mod/topics/{id}", authn.RequireModerator(modHandler.DeleteTopic))
	handle("POST /api/mod/users/{id}/ban", authn.RequireModerator(modHandler.BanUser))
	handle("POST /api/mod/users/{id}/unban", authn.RequireModerator(modHandler.UnbanUser))
	handle("GET /api/mod/actions", authn.RequireModerator(modHandler.ListActions))

	// Administration
	handle("POST /api/admin/products", authn.RequireAdmin(adminHandler.CreateProduct))
	handle("POST /api/admin/categories", authn.RequireAdmin(adminHandler.CreateCategory))
	handle("POST /api/admin/tags", authn.RequireAdmin(adminHandler.CreateTag))
	handle("GET /api/admin/overview", authn.RequireAdmin(adminHandler.Overview))
	handle("PATCH /api/admin/users/{id}/role", authn.RequireAdmin(adminHandler.UpdateRole))

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			middleware.ErrorResponse(w, http.StatusNotFound, "Not found")
			return
		}
		w.Write([]byte(banner))
	})

	return middleware.CORS(cfg.AllowedOrigins(), mux)
}
