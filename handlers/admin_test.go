// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/community-forum/models"
	"github.com/danielhkuo/community-forum/testutil"
)

func TestCreateProduct(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := NewAdminHandler(db, testutil.GetTestConfig())
	admin := testutil.CreateTestUser(t, db, "admin", models.RoleAdmin)

	tests := []struct {
		name           string
		body           models.CreateProductRequest
		expectedStatus int
		expectedError  string
	}{
		{
			name:           "valid product",
			body:           models.CreateProductRequest{Name: "Acme Platform", Slug: "acme-platform", Color: "#FF8800", DocsURL: "https://docs.acme.dev"},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "duplicate slug",
			body:           models.CreateProductRequest{Name: "Acme Again", Slug: "acme-platform"},
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "bad slug",
			body:           models.CreateProductRequest{Name: "Acme", Slug: "Acme Platform"},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Slug can only contain lowercase letters, numbers, and hyphens",
		},
		{
			name:           "bad color",
			body:           models.CreateProductRequest{Name: "Acme", Slug: "acme-color", Color: "orange"},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Invalid color format",
		},
		{
			name:           "bad docs url",
			body:           models.CreateProductRequest{Name: "Acme", Slug: "acme-docs", DocsURL: "ftp://docs"},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(h.CreateProduct, asUser(testutil.MakeRequest("POST", "/api/admin/products", tt.body, nil), admin))
			testutil.AssertStatus(t, w, tt.expectedStatus)

			switch {
			case tt.expectedError != "":
				var resp models.ErrorResponse
				testutil.AssertJSON(t, w, &resp)
				assert.Equal(t, tt.expectedError, resp.Message)
			case tt.expectedStatus == http.StatusCreated:
				var p models.Product
				testutil.AssertJSON(t, w, &p)
				assert.Equal(t, tt.body.Slug, p.Slug)
				assert.Equal(t, models.ProductActive, p.Status)
				require.NotNil(t, p.DocsURL)
				assert.Equal(t, tt.body.DocsURL, *p.DocsURL)
			}
		})
	}
}

func TestCreateCategoryAndTag(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := NewAdminHandler(db, testutil.GetTestConfig())
	admin := testutil.CreateTestUser(t, db, "admin", models.RoleAdmin)
	productID := testutil.CreateTestProduct(t, db, "acme", models.ProductActive)

	post := func(handler http.HandlerFunc, path string, body any) int {
		return serve(handler, asUser(testutil.MakeRequest("POST", path, body, nil), admin)).Code
	}

	assert.Equal(t, http.StatusCreated, post(h.CreateCategory, "/api/admin/categories",
		models.CreateCategoryRequest{Name: "Help", Slug: "help", ProductID: productID}))
	assert.Equal(t, http.StatusCreated, post(h.CreateCategory, "/api/admin/categories",
		models.CreateCategoryRequest{Name: "General", Slug: "general"}))
	assert.Equal(t, http.StatusConflict, post(h.CreateCategory, "/api/admin/categories",
		models.CreateCategoryRequest{Name: "Help again", Slug: "help", ProductID: productID}))
	assert.Equal(t, http.StatusBadRequest, post(h.CreateCategory, "/api/admin/categories",
		models.CreateCategoryRequest{Name: "Orphan", Slug: "orphan", ProductID: "nope"}))

	assert.Equal(t, http.StatusCreated, post(h.CreateTag, "/api/admin/tags",
		models.CreateTagRequest{Name: "api", Slug: "api", Color: "#112233"}))
	assert.Equal(t, http.StatusConflict, post(h.CreateTag, "/api/admin/tags",
		models.CreateTagRequest{Name: "api", Slug: "api-2"}))
	assert.Equal(t, http.StatusBadRequest, post(h.CreateTag, "/api/admin/tags",
		models.CreateTagRequest{Name: "x", Slug: "x"}))

	assert.Equal(t, 1, testutil.QueryInt(t, db, `SELECT COUNT(*) FROM category WHERE product_id IS NULL`))
	assert.Equal(t, 1, testutil.QueryInt(t, db, `SELECT COUNT(*) FROM tag`))
}

func TestOverview(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := NewAdminHandler(db, testutil.GetTestConfig())
	admin := testutil.CreateTestUser(t, db, "admin", models.RoleAdmin)
	testutil.CreateTestUser(t, db, "mod", models.RoleModerator)
	testutil.CreateTestUser(t, db, "trusty", models.RoleTrusted)
	testutil.CreateTestUser(t, db, "alice", models.RoleUser)

	testutil.CreateTestProduct(t, db, "acme", models.ProductActive)
	testutil.CreateTestProduct(t, db, "secret", models.ProductHidden)
	testutil.CreateTestTag(t, db, "api")

	w := serve(h.Overview, asUser(testutil.MakeRequest("GET", "/api/admin/overview", nil, nil), admin))
	testutil.AssertStatus(t, w, http.StatusOK)

	var resp models.AdminOverview
	testutil.AssertJSON(t, w, &resp)
	assert.Len(t, resp.Products, 2, "overview includes hidden products")
	assert.Len(t, resp.Tags, 1)
	assert.Equal(t, models.UserStats{Total: 4, Admins: 1, Moderators: 1, Trusted: 1}, resp.Users)
}

func TestUpdateRole(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := NewAdminHandler(db, testutil.GetTestConfig())
	admin := testutil.CreateTestUser(t, db, "admin", models.RoleAdmin)
	alice := testutil.CreateTestUser(t, db, "alice", models.RoleUser)

	patch := func(target string, role string) int {
		req := asUser(testutil.MakeRequest("PATCH", "/api/admin/users/"+target+"/role", models.UpdateRoleRequest{Role: role}, nil), admin)
		req.SetPathValue("id", target)
		return serve(h.UpdateRole, req).Code
	}

	assert.Equal(t, http.StatusOK, patch(alice.ID, models.RoleModerator))
	assert.Equal(t, 1, testutil.QueryInt(t, db, `SELECT COUNT(*) FROM users WHERE id = $1 AND role = 'MODERATOR'`, alice.ID))

	assert.Equal(t, http.StatusBadRequest, patch(alice.ID, "OWNER"))
	assert.Equal(t, http.StatusBadRequest, patch(admin.ID, models.RoleUser))
	assert.Equal(t, http.StatusNotFound, patch("nope", models.RoleUser))
}
