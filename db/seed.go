// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/danielhkuo/community-forum/auth"
	"github.com/danielhkuo/community-forum/models"
)

// SeedAdminEmail identifies the demo data. Seed is a no-op once it exists.
const SeedAdminEmail = "admin@community.dev"

type seedUser struct {
	key, name, email, username, role, password, bio string
	reputation                                      int
}

var seedUsers = []seedUser{
	{"admin", "Admin User", SeedAdminEmail, "admin", models.RoleAdmin, "Admin123!", "Community administrator", 1000},
	{"mod", "Moderator User", "mod@community.dev", "moderator", models.RoleModerator, "Mod12345!", "Keeping the community friendly", 500},
	{"alice", "Alice Developer", "alice@example.com", "alice", models.RoleTrusted, "User1234!", "Full-stack developer", 250},
	{"bob", "Bob Engineer", "bob@example.com", "bob", models.RoleUser, "User1234!", "Backend engineer", 75},
	{"charlie", "Charlie Designer", "charlie@example.com", "charlie", models.RoleUser, "User1234!", "Product designer who codes", 30},
}

type seedProduct struct {
	key, slug, name, description, icon, color, status string
	ordering                                          int
	docsURL, releaseURL                               *string
}

func strptr(s string) *string { return &s }

var seedProducts = []seedProduct{
	{"platform", "acme-platform", "Acme Platform", "The main Acme Platform for building applications", "🚀", "#6366f1",
		models.ProductActive, 1, strptr("https://docs.acme.dev"), strptr("https://acme.dev/changelog")},
	{"analytics", "acme-analytics", "Acme Analytics", "Analytics and insights platform (coming soon)", "📊", "#10b981",
		models.ProductHidden, 2, nil, nil},
	{"ai", "acme-ai", "Acme AI", "AI-powered automation tools (beta)", "🤖", "#f59e0b",
		models.ProductBeta, 3, nil, nil},
}

var seedCategories = []struct{ slug, name, description, icon string }{
	{"getting-started", "Getting Started", "New to Acme? Start here", "📚"},
	{"api", "API & Integration", "Questions about the API and integrations", "🔌"},
	{"authentication", "Authentication", "Sign-in, OAuth and sessions", "🔐"},
	{"troubleshooting", "Troubleshooting", "Something broken? Get help here", "🔧"},
	{"feature-requests", "Feature Requests", "Ideas for making Acme better", "💡"},
}

var seedTags = []struct{ slug, name, color string }{
	{"javascript", "JavaScript", "#f7df1e"},
	{"typescript", "TypeScript", "#3178c6"},
	{"react", "React", "#61dafb"},
	{"nextjs", "Next.js", "#000000"},
	{"nodejs", "Node.js", "#339933"},
	{"api", "API", "#6366f1"},
	{"authentication", "Authentication", "#ef4444"},
	{"database", "Database", "#8b5cf6"},
	{"performance", "Performance", "#22c55e"},
	{"deployment", "Deployment", "#f59e0b"},
	{"docker", "Docker", "#2496ed"},
	{"webhooks", "Webhooks", "#ec4899"},
}

type seedTopic struct {
	key, slug, title, body, topicType, status, category, author string
	pinned                                                      bool
	votes, views, replies                                       int
	tags                                                        []string
}

var seedTopics = []seedTopic{
	{
		key: "welcome", slug: "welcome-to-acme-community",
		title:     "Welcome to the Acme Platform Community!",
		body:      "# Welcome to our community!\n\nThis is your space to ask questions, share solutions and showcase what you have built.\n\n## Guidelines\n\n- Be respectful and helpful\n- Search before posting\n- Mark answers as accepted when your question is resolved",
		topicType: models.TopicAnnouncement, status: models.StatusOpen, author: "admin",
		pinned: true, votes: 25, views: 500,
	},
	{
		key: "oauth", slug: "how-to-set-up-oauth-with-google",
		title:     "How to set up OAuth with Google in Acme Platform?",
		body:      "I'm trying to integrate Google OAuth but I'm stuck on the callback configuration.\n\n```\nError: Invalid redirect_uri\n```\n\nRunning Acme Platform v2.5 locally on port 3000.",
		topicType: models.TopicQuestion, status: models.StatusAnswered, category: "authentication", author: "alice",
		votes: 12, views: 234, replies: 1, tags: []string{"authentication", "api"},
	},
	{
		key: "ratelimit", slug: "best-practices-for-api-rate-limiting",
		title:     "Best practices for API rate limiting?",
		body:      "I make heavy use of the Acme API. What are the current rate limits and how should I implement exponential backoff?",
		topicType: models.TopicQuestion, status: models.StatusOpen, category: "api", author: "bob",
		votes: 8, views: 156, replies: 1, tags: []string{"api", "typescript", "nodejs"},
	},
	{
		key: "sdk", slug: "getting-started-with-acme-sdk",
		title:     "Getting started with the Acme SDK - a complete guide",
		body:      "A getting started guide for newcomers.\n\n## Installation\n\n```bash\nnpm install @acme/sdk\n```\n\nWrap your API calls in try/catch and handle `RATE_LIMITED` errors.",
		topicType: models.TopicDiscussion, status: models.StatusOpen, category: "getting-started", author: "alice",
		votes: 35, views: 890, tags: []string{"typescript", "nodejs"},
	},
	{
		key: "showcase", slug: "my-saas-dashboard-built-with-acme",
		title:     "Showcase: My SaaS dashboard built with Acme Platform",
		body:      "I just launched my analytics dashboard built entirely on Acme Platform.\n\n- Real-time data visualization\n- Team collaboration\n- Webhook integrations",
		topicType: models.TopicShowcase, status: models.StatusOpen, author: "charlie",
		votes: 42, views: 567, replies: 1, tags: []string{"nextjs", "react", "deployment"},
	},
	{
		key: "webhooks", slug: "webhook-signature-verification-failing",
		title:     "Webhook signature verification failing in production",
		body:      "Webhooks work in development but signature verification always fails once deployed behind API Gateway. The secret is set and the payload is read as raw body.",
		topicType: models.TopicQuestion, status: models.StatusOpen, category: "troubleshooting", author: "bob",
		votes: 5, views: 89, tags: []string{"webhooks", "deployment"},
	},
}

var seedReplies = []struct {
	topic, author, body string
	votes               int
	accepted            bool
}{
	{"oauth", "alice", "Your callback URL must match the one registered in the Google Cloud Console exactly, including the `/google` suffix.", 8, true},
	{"ratelimit", "mod", "Free tier allows 100 requests/minute and Pro allows 1000. The official SDK retries with backoff automatically since v2.0.", 15, false},
	{"showcase", "bob", "This looks amazing! Did you use webhooks or polling for the real-time features?", 3, false},
}

var seedBadges = []struct{ slug, name, description, icon, color string }{
	{"first-post", "First Post", "Created your first topic", "✨", "#6366f1"},
	{"helpful", "Helpful", "Had an answer accepted", "🤝", "#22c55e"},
	{"popular", "Popular", "Received 10+ votes on a post", "🔥", "#f59e0b"},
	{"veteran", "Veteran", "Member for over 1 year", "🏆", "#a855f7"},
}

var seedAwards = []struct{ user, badge string }{
	{"alice", "first-post"},
	{"alice", "helpful"},
	{"alice", "popular"},
	{"admin", "veteran"},
}

// Seed loads demo users, products and content. All of it is written in one
// transaction and skipped when the demo admin already exists.
func Seed(ctx context.Context, conn *sql.DB) error {
	var existing int
	if err := conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE email = $1`, SeedAdminEmail).Scan(&existing); err != nil {
		return fmt.Errorf("check seed state: %w", err)
	}
	if existing > 0 {
		slog.Info("seed data already present, skipping")
		return nil
	}

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	users := map[string]string{}
	hashes := map[string]string{}
	for _, u := range seedUsers {
		hash, ok := hashes[u.password]
		if !ok {
			if hash, err = auth.HashPassword(u.password); err != nil {
				return fmt.Errorf("hash seed password: %w", err)
			}
			hashes[u.password] = hash
		}
		id := auth.NewID()
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO users (id, name, email, username, email_verified, role, reputation, bio, password_hash, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $5)
		`, id, u.name, u.email, u.username, now, u.role, u.reputation, u.bio, hash); err != nil {
			return fmt.Errorf("seed user %s: %w", u.username, err)
		}
		users[u.key] = id
	}

	products := map[string]string{}
	for _, p := range seedProducts {
		id := auth.NewID()
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO product (id, name, slug, description, icon, color, status, ordering, docs_url, release_url, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		`, id, p.name, p.slug, p.description, p.icon, p.color, p.status, p.ordering, p.docsURL, p.releaseURL, now); err != nil {
			return fmt.Errorf("seed product %s: %w", p.slug, err)
		}
		products[p.key] = id
	}

	categories := map[string]string{}
	for i, c := range seedCategories {
		id := auth.NewID()
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO category (id, product_id, name, slug, description, icon, ordering, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, id, products["platform"], c.name, c.slug, c.description, c.icon, i+1, now); err != nil {
			return fmt.Errorf("seed category %s: %w", c.slug, err)
		}
		categories[c.slug] = id
	}

	tags := map[string]string{}
	for _, t := range seedTags {
		id := auth.NewID()
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO tag (id, name, slug, color, created_at) VALUES ($1, $2, $3, $4, $5)
		`, id, t.name, t.slug, t.color, now); err != nil {
			return fmt.Errorf("seed tag %s: %w", t.slug, err)
		}
		tags[t.slug] = id
	}

	topics := map[string]string{}
	for i, t := range seedTopics {
		id := auth.NewID()
		// Older topics first so the feed order matches the list order.
		created := now.Add(-time.Duration(len(seedTopics)-i) * time.Hour)
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO topic (id, title, body, slug, type, status, product_id, category_id, author_id,
			                   is_pinned, vote_score, view_count, reply_count, last_activity, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $14, $14)
		`, id, t.title, t.body, t.slug, t.topicType, t.status, products["platform"], nullable(categories[t.category]),
			users[t.author], t.pinned, t.votes, t.views, t.replies, created); err != nil {
			return fmt.Errorf("seed topic %s: %w", t.slug, err)
		}
		for _, slug := range t.tags {
			if _, err := tx.ExecContext(ctx, `INSERT INTO topic_tag (topic_id, tag_id) VALUES ($1, $2)`, id, tags[slug]); err != nil {
				return fmt.Errorf("seed topic tag %s: %w", slug, err)
			}
		}
		topics[t.key] = id
	}

	for _, r := range seedReplies {
		id := auth.NewID()
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO reply (id, body, topic_id, author_id, vote_score, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $6)
		`, id, r.body, topics[r.topic], users[r.author], r.votes, now); err != nil {
			return fmt.Errorf("seed reply: %w", err)
		}
		if r.accepted {
			if _, err := tx.ExecContext(ctx, `UPDATE topic SET accepted_reply_id = $1 WHERE id = $2`, id, topics[r.topic]); err != nil {
				return fmt.Errorf("seed accepted answer: %w", err)
			}
		}
	}

	badges := map[string]string{}
	for _, b := range seedBadges {
		id := auth.NewID()
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO badge (id, name, slug, description, icon, color) VALUES ($1, $2, $3, $4, $5, $6)
		`, id, b.name, b.slug, b.description, b.icon, b.color); err != nil {
			return fmt.Errorf("seed badge %s: %w", b.slug, err)
		}
		badges[b.slug] = id
	}
	for _, a := range seedAwards {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO user_badge (user_id, badge_id, awarded_at) VALUES ($1, $2, $3)
		`, users[a.user], badges[a.badge], now); err != nil {
			return fmt.Errorf("seed badge award: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE tag SET usage_count = (SELECT COUNT(*) FROM topic_tag tt WHERE tt.tag_id = tag.id)
	`); err != nil {
		return fmt.Errorf("seed tag usage: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed: %w", err)
	}

	slog.Info("seed data loaded",
		"users", len(seedUsers), "products", len(seedProducts), "topics", len(seedTopics), "replies", len(seedReplies))
	return nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
