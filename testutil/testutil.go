// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/danielhkuo/community-forum/auth"
	"github.com/danielhkuo/community-forum/cliparse"
	"github.com/danielhkuo/community-forum/db"
	"github.com/danielhkuo/community-forum/models"
)

// TestPassword is the password of every fixture user.
const TestPassword = "Password1"

// TestSessionSecret signs fixture session tokens.
const TestSessionSecret = "test-session-secret"

var (
	hashOnce     sync.Once
	passwordHash string
)

// SetupTestDB creates a fresh SQLite database with the full schema. The file
// lives in the test's temp dir and is removed with it.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	conn, err := db.Open(context.Background(), cliparse.DatabaseSQLite, path)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(context.Background(), conn, cliparse.DatabaseSQLite); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:               3318,
		DatabaseURL:        "test.db",
		DatabaseType:       cliparse.DatabaseSQLite,
		BaseURL:            "http://localhost:3318",
		SessionSecret:      TestSessionSecret,
		SessionTTL:         time.Hour,
		EmailFrom:          "test@example.com",
		OTPCleanupInterval: time.Hour,
	}
}

// TestUser is a fixture user with a ready-to-use session token.
type TestUser struct {
	ID       string
	Email    string
	Username string
	Role     string
	Token    string
}

// AuthHeader returns the Authorization header for the user.
func (u TestUser) AuthHeader() map[string]string {
	return map[string]string{"Authorization": "Bearer " + u.Token}
}

// Session returns the user as request middleware would attach it.
func (u TestUser) Session() models.SessionUser {
	return models.SessionUser{ID: u.ID, Username: u.Username, Role: u.Role}
}

// CreateTestUser inserts a user with TestPassword and signs a session token
// for it. role should be one of the models.Role* constants.
func CreateTestUser(t *testing.T, conn *sql.DB, username, role string) TestUser {
	t.Helper()

	hashOnce.Do(func() {
		h, err := auth.HashPassword(TestPassword)
		if err != nil {
			t.Fatalf("Failed to hash password: %v", err)
		}
		passwordHash = h
	})

	u := TestUser{
		ID:       auth.NewID(),
		Email:    strings.ToLower(username) + "@example.com",
		Username: username,
		Role:     role,
	}

	now := time.Now().UTC()
	_, err := conn.Exec(`
		INSERT INTO users (id, name, email, username, email_verified, role, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, u.ID, username, u.Email, username, now, role, passwordHash, now)
	if err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	token, _, err := auth.IssueSession(u.Session(), TestSessionSecret, time.Hour, now)
	if err != nil {
		t.Fatalf("Failed to issue session: %v", err)
	}
	u.Token = token

	return u
}

// CreateTestProduct creates a product and returns its ID.
func CreateTestProduct(t *testing.T, conn *sql.DB, slug, status string) string {
	t.Helper()

	id := auth.NewID()
	_, err := conn.Exec(`
		INSERT INTO product (id, name, slug, description, status, ordering, created_at)
		VALUES ($1, $2, $3, 'A test product', $4, 0, $5)
	`, id, "Product "+slug, slug, status, time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to create test product: %v", err)
	}

	return id
}

// CreateTestCategory creates a category under productID and returns its ID.
func CreateTestCategory(t *testing.T, conn *sql.DB, productID, slug string) string {
	t.Helper()

	id := auth.NewID()
	_, err := conn.Exec(`
		INSERT INTO category (id, product_id, name, slug, ordering, created_at)
		VALUES ($1, $2, $3, $4, 0, $5)
	`, id, productID, "Category "+slug, slug, time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to create test category: %v", err)
	}

	return id
}

// CreateTestTag creates a tag and returns its ID.
func CreateTestTag(t *testing.T, conn *sql.DB, slug string) string {
	t.Helper()

	id := auth.NewID()
	_, err := conn.Exec(`
		INSERT INTO tag (id, name, slug, usage_count, created_at)
		VALUES ($1, $2, $3, 0, $4)
	`, id, slug, slug, time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to create test tag: %v", err)
	}

	return id
}

// TopicOpts overrides fixture topic defaults.
type TopicOpts struct {
	Title      string
	Body       string
	Type       string
	Status     string
	CategoryID string
	TagIDs     []string
	IsPinned   bool
	VoteScore  int
	ReplyCount int
	CreatedAt  time.Time
}

// CreateTestTopic creates a topic and returns its ID and slug.
func CreateTestTopic(t *testing.T, conn *sql.DB, productID, authorID string, opts TopicOpts) (id, slug string) {
	t.Helper()

	if opts.Title == "" {
		opts.Title = "A test topic title"
	}
	if opts.Body == "" {
		opts.Body = "This is the body of a test topic, long enough to pass validation."
	}
	if opts.Type == "" {
		opts.Type = models.TopicQuestion
	}
	if opts.Status == "" {
		opts.Status = models.StatusOpen
	}
	if opts.CreatedAt.IsZero() {
		opts.CreatedAt = time.Now().UTC()
	}

	var categoryID *string
	if opts.CategoryID != "" {
		categoryID = &opts.CategoryID
	}

	id = auth.NewID()
	slug = "topic-" + id[:8]
	_, err := conn.Exec(`
		INSERT INTO topic (id, title, body, slug, type, status, product_id, category_id, author_id,
		                   is_pinned, vote_score, reply_count, last_activity, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $13, $13)
	`, id, opts.Title, opts.Body, slug, opts.Type, opts.Status, productID, categoryID, authorID,
		opts.IsPinned, opts.VoteScore, opts.ReplyCount, opts.CreatedAt.UTC())
	if err != nil {
		t.Fatalf("Failed to create test topic: %v", err)
	}

	for _, tagID := range opts.TagIDs {
		if _, err := conn.Exec(`INSERT INTO topic_tag (topic_id, tag_id) VALUES ($1, $2)`, id, tagID); err != nil {
			t.Fatalf("Failed to tag test topic: %v", err)
		}
		if _, err := conn.Exec(`UPDATE tag SET usage_count = usage_count + 1 WHERE id = $1`, tagID); err != nil {
			t.Fatalf("Failed to bump tag usage: %v", err)
		}
	}

	return id, slug
}

// CreateTestReply creates a reply and bumps the topic's reply count. parentID
// may be empty.
func CreateTestReply(t *testing.T, conn *sql.DB, topicID, authorID, parentID string) string {
	t.Helper()

	var parent *string
	if parentID != "" {
		parent = &parentID
	}

	id := auth.NewID()
	now := time.Now().UTC()
	_, err := conn.Exec(`
		INSERT INTO reply (id, body, topic_id, author_id, parent_id, created_at, updated_at)
		VALUES ($1, 'A helpful test reply body', $2, $3, $4, $5, $5)
	`, id, topicID, authorID, parent, now)
	if err != nil {
		t.Fatalf("Failed to create test reply: %v", err)
	}

	if _, err := conn.Exec(`UPDATE topic SET reply_count = reply_count + 1 WHERE id = $1`, topicID); err != nil {
		t.Fatalf("Failed to bump reply count: %v", err)
	}

	return id
}

// CreateTestCode stores a verification code expiring at expires.
func CreateTestCode(t *testing.T, conn *sql.DB, email, codeType, code string, expires time.Time, used bool) string {
	t.Helper()

	id := auth.NewID()
	_, err := conn.Exec(`
		INSERT INTO verification_code (id, code, type, email, expires_at, used, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, id, code, codeType, email, expires.UTC(), used, time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to create test code: %v", err)
	}

	return id
}

// QueryInt runs a single-value integer query.
func QueryInt(t *testing.T, conn *sql.DB, query string, args ...any) int {
	t.Helper()

	var n int
	if err := conn.QueryRow(query, args...).Scan(&n); err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	return n
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
