// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/community-forum/cliparse"
	"github.com/danielhkuo/community-forum/models"
	"github.com/danielhkuo/community-forum/search"
	"github.com/danielhkuo/community-forum/testutil"
)

func TestCreateReport(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := NewReportHandler(db, testutil.GetTestConfig())
	alice := testutil.CreateTestUser(t, db, "alice", models.RoleUser)
	productID := testutil.CreateTestProduct(t, db, "acme", models.ProductActive)
	topicID, _ := testutil.CreateTestTopic(t, db, productID, alice.ID, testutil.TopicOpts{})
	replyID := testutil.CreateTestReply(t, db, topicID, alice.ID, "")

	tests := []struct {
		name           string
		body           models.ReportRequest
		expectedStatus int
	}{
		{"topic", models.ReportRequest{Reason: "SPAM", TopicID: topicID}, http.StatusCreated},
		{"reply with details", models.ReportRequest{Reason: "HARASSMENT", Details: "Rude", ReplyID: replyID}, http.StatusCreated},
		{"unknown reason", models.ReportRequest{Reason: "BORING", TopicID: topicID}, http.StatusBadRequest},
		{"no target", models.ReportRequest{Reason: "SPAM"}, http.StatusBadRequest},
		{"missing topic", models.ReportRequest{Reason: "SPAM", TopicID: "nope"}, http.StatusNotFound},
		{"missing reply", models.ReportRequest{Reason: "SPAM", ReplyID: "nope"}, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(h.CreateReport, asUser(testutil.MakeRequest("POST", "/api/reports", tt.body, nil), alice))
			testutil.AssertStatus(t, w, tt.expectedStatus)
		})
	}

	assert.Equal(t, 2, testutil.QueryInt(t, db, `SELECT COUNT(*) FROM report WHERE status = 'PENDING'`))
}

type modFixture struct {
	h        *ModerationHandler
	provider *recordingProvider
	mod      testutil.TestUser
	admin    testutil.TestUser
	alice    testutil.TestUser
	topicID  string
}

func newModFixture(t *testing.T) modFixture {
	t.Helper()
	db := testutil.SetupTestDB(t)
	provider := &recordingProvider{Provider: search.NewProvider(db, cliparse.DatabaseSQLite)}
	f := modFixture{
		h:        NewModerationHandler(db, testutil.GetTestConfig(), provider),
		provider: provider,
		mod:      testutil.CreateTestUser(t, db, "mod", models.RoleModerator),
		admin:    testutil.CreateTestUser(t, db, "admin", models.RoleAdmin),
		alice:    testutil.CreateTestUser(t, db, "alice", models.RoleUser),
	}
	productID := testutil.CreateTestProduct(t, db, "acme", models.ProductActive)
	f.topicID, _ = testutil.CreateTestTopic(t, db, productID, f.alice.ID, testutil.TopicOpts{})
	return f
}

func (f modFixture) call(handler http.HandlerFunc, method, path, id string, user testutil.TestUser, body any) int {
	req := asUser(testutil.MakeRequest(method, path, body, nil), user)
	req.SetPathValue("id", id)
	return serve(handler, req).Code
}

func TestReports_ListAndResolve(t *testing.T) {
	f := newModFixture(t)
	db := f.h.db

	insert := func(id, status string) {
		_, err := db.Exec(`
			INSERT INTO report (id, reason, status, reporter_id, topic_id) VALUES ($1, 'SPAM', $2, $3, $4)
		`, id, status, f.alice.ID, f.topicID)
		require.NoError(t, err)
	}
	insert("r1", models.ReportPending)
	insert("r2", models.ReportPending)
	insert("r3", models.ReportDismissed)

	list := func(status string) models.ReportList {
		w := serve(f.h.ListReports, asUser(testutil.MakeRequest("GET", "/api/mod/reports?status="+status, nil, nil), f.mod))
		testutil.AssertStatus(t, w, http.StatusOK)
		var resp models.ReportList
		testutil.AssertJSON(t, w, &resp)
		return resp
	}

	resp := list("")
	assert.Len(t, resp.Reports, 2)
	assert.Equal(t, map[string]int{"pending": 2, "resolved": 0, "dismissed": 1}, resp.Counts)
	assert.Equal(t, "alice", *resp.Reports[0].Reporter.Username)
	assert.Len(t, list("all").Reports, 3)

	assert.Equal(t, http.StatusOK, f.call(f.h.ResolveReport, "POST", "/api/mod/reports/r1/resolve", "r1", f.mod,
		models.ResolveReportRequest{Action: "RESOLVE"}))
	assert.Equal(t, http.StatusOK, f.call(f.h.ResolveReport, "POST", "/api/mod/reports/r2/resolve", "r2", f.mod,
		models.ResolveReportRequest{Action: "DISMISS"}))
	assert.Equal(t, http.StatusNotFound, f.call(f.h.ResolveReport, "POST", "/api/mod/reports/x/resolve", "x", f.mod,
		models.ResolveReportRequest{Action: "RESOLVE"}))
	assert.Equal(t, http.StatusBadRequest, f.call(f.h.ResolveReport, "POST", "/api/mod/reports/r1/resolve", "r1", f.mod,
		models.ResolveReportRequest{Action: "IGNORE"}))

	resp = list("resolved")
	require.Len(t, resp.Reports, 1)
	assert.Equal(t, "r1", resp.Reports[0].ID)
	assert.Equal(t, map[string]int{"pending": 0, "resolved": 1, "dismissed": 2}, resp.Counts)

	assert.Equal(t, 1, testutil.QueryInt(t, db, `SELECT COUNT(*) FROM mod_action WHERE type = 'RESOLVE_REPORT' AND report_id = 'r1'`))
	assert.Equal(t, 1, testutil.QueryInt(t, db, `SELECT COUNT(*) FROM mod_action WHERE type = 'DISMISS_REPORT' AND report_id = 'r2'`))

	w := serve(f.h.ListReports, asUser(testutil.MakeRequest("GET", "/api/mod/reports?status=bogus", nil, nil), f.mod))
	testutil.AssertStatus(t, w, http.StatusBadRequest)
}

func TestLockUnlockPin(t *testing.T) {
	f := newModFixture(t)
	db := f.h.db
	path := "/api/mod/topics/" + f.topicID

	assert.Equal(t, http.StatusOK, f.call(f.h.LockTopic, "POST", path+"/lock", f.topicID, f.mod, models.ModReasonRequest{Reason: "Heated"}))
	assert.Equal(t, 1, testutil.QueryInt(t, db, `SELECT COUNT(*) FROM topic WHERE id = $1 AND status = 'LOCKED'`, f.topicID))

	var reason string
	require.NoError(t, db.QueryRow(`SELECT reason FROM mod_action WHERE type = 'LOCK_TOPIC'`).Scan(&reason))
	assert.Equal(t, "Heated", reason)

	// An empty body is accepted.
	assert.Equal(t, http.StatusOK, f.call(f.h.UnlockTopic, "POST", path+"/unlock", f.topicID, f.mod, nil))
	assert.Equal(t, 1, testutil.QueryInt(t, db, `SELECT COUNT(*) FROM topic WHERE id = $1 AND status = 'OPEN'`, f.topicID))

	pin := func() bool {
		req := asUser(testutil.MakeRequest("POST", path+"/pin", nil, nil), f.mod)
		req.SetPathValue("id", f.topicID)
		w := serve(f.h.TogglePin, req)
		testutil.AssertStatus(t, w, http.StatusOK)
		var resp models.PinResponse
		testutil.AssertJSON(t, w, &resp)
		return resp.Pinned
	}
	assert.True(t, pin())
	assert.False(t, pin())

	assert.Equal(t, 1, testutil.QueryInt(t, db, `SELECT COUNT(*) FROM mod_action WHERE type = 'PIN_TOPIC'`))
	assert.Equal(t, 1, testutil.QueryInt(t, db, `SELECT COUNT(*) FROM mod_action WHERE type = 'UNPIN_TOPIC'`))
	assert.Equal(t, http.StatusNotFound, f.call(f.h.LockTopic, "POST", "/api/mod/topics/x/lock", "x", f.mod, nil))
}

func TestModDeleteTopic(t *testing.T) {
	f := newModFixture(t)
	db := f.h.db

	tag := testutil.CreateTestTag(t, db, "api")
	productID := testutil.CreateTestProduct(t, db, "other", models.ProductActive)
	topicID, _ := testutil.CreateTestTopic(t, db, productID, f.alice.ID, testutil.TopicOpts{TagIDs: []string{tag}})
	testutil.CreateTestReply(t, db, topicID, f.alice.ID, "")
	_, err := db.Exec(`INSERT INTO bookmark (id, user_id, topic_id) VALUES ('b1', $1, $2)`, f.alice.ID, topicID)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, f.call(f.h.DeleteTopic, "DELETE", "/api/mod/topics/"+topicID, topicID, f.mod, models.ModReasonRequest{Reason: "Spam"}))

	assert.Equal(t, 0, testutil.QueryInt(t, db, `SELECT COUNT(*) FROM topic WHERE id = $1`, topicID))
	assert.Equal(t, 0, testutil.QueryInt(t, db, `SELECT COUNT(*) FROM reply WHERE topic_id = $1`, topicID))
	assert.Equal(t, 0, testutil.QueryInt(t, db, `SELECT COUNT(*) FROM bookmark WHERE topic_id = $1`, topicID))
	assert.Equal(t, 0, testutil.QueryInt(t, db, `SELECT usage_count FROM tag WHERE id = $1`, tag))
	assert.Equal(t, 1, testutil.QueryInt(t, db, `SELECT COUNT(*) FROM mod_action WHERE type = 'DELETE_TOPIC' AND topic_id = $1`, topicID))
	assert.Equal(t, []string{topicID}, f.provider.deleted)

	assert.Equal(t, http.StatusNotFound, f.call(f.h.DeleteTopic, "DELETE", "/api/mod/topics/"+topicID, topicID, f.mod, nil))
}

func TestBanUnban(t *testing.T) {
	f := newModFixture(t)
	db := f.h.db

	ban := func(user testutil.TestUser, target string) int {
		return f.call(f.h.BanUser, "POST", "/api/mod/users/"+target+"/ban", target, user, models.ModReasonRequest{Reason: "Abuse"})
	}

	assert.Equal(t, http.StatusOK, ban(f.mod, f.alice.ID))
	assert.Equal(t, 1, testutil.QueryInt(t, db, `SELECT COUNT(*) FROM users WHERE id = $1 AND is_banned = TRUE`, f.alice.ID))

	assert.Equal(t, http.StatusForbidden, ban(f.mod, f.admin.ID))
	assert.Equal(t, http.StatusOK, ban(f.admin, f.mod.ID))
	assert.Equal(t, http.StatusBadRequest, ban(f.admin, f.admin.ID))
	assert.Equal(t, http.StatusNotFound, ban(f.admin, "nope"))

	assert.Equal(t, http.StatusOK, f.call(f.h.UnbanUser, "POST", "/api/mod/users/"+f.alice.ID+"/unban", f.alice.ID, f.admin, nil))
	assert.Equal(t, 0, testutil.QueryInt(t, db, `SELECT COUNT(*) FROM users WHERE id = $1 AND is_banned = TRUE`, f.alice.ID))

	assert.Equal(t, 2, testutil.QueryInt(t, db, `SELECT COUNT(*) FROM mod_action WHERE type = 'BAN_USER'`))
	assert.Equal(t, 1, testutil.QueryInt(t, db, `SELECT COUNT(*) FROM mod_action WHERE type = 'UNBAN_USER'`))
}

func TestListActions(t *testing.T) {
	f := newModFixture(t)

	for i := 0; i < 12; i++ {
		req := asUser(testutil.MakeRequest("POST", "/api/mod/topics/"+f.topicID+"/pin", nil, nil), f.mod)
		req.SetPathValue("id", f.topicID)
		testutil.AssertStatus(t, serve(f.h.TogglePin, req), http.StatusOK)
	}

	w := serve(f.h.ListActions, asUser(testutil.MakeRequest("GET", "/api/mod/actions", nil, nil), f.mod))
	testutil.AssertStatus(t, w, http.StatusOK)

	var actions []models.ModAction
	testutil.AssertJSON(t, w, &actions)
	require.Len(t, actions, 10)
	assert.Equal(t, f.mod.ID, actions[0].Moderator.ID)
	require.NotNil(t, actions[0].TopicID)
	assert.Equal(t, f.topicID, *actions[0].TopicID)
}
