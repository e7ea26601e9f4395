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

func TestListProducts(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := NewProductHandler(db, testutil.GetTestConfig())
	alice := testutil.CreateTestUser(t, db, "alice", models.RoleUser)

	active := testutil.CreateTestProduct(t, db, "acme", models.ProductActive)
	testutil.CreateTestProduct(t, db, "beta", models.ProductBeta)
	testutil.CreateTestProduct(t, db, "secret", models.ProductHidden)
	testutil.CreateTestTopic(t, db, active, alice.ID, testutil.TopicOpts{})
	testutil.CreateTestTopic(t, db, active, alice.ID, testutil.TopicOpts{})

	w := serve(h.ListProducts, testutil.MakeRequest("GET", "/api/products", nil, nil))
	testutil.AssertStatus(t, w, http.StatusOK)

	var products []models.Product
	testutil.AssertJSON(t, w, &products)
	require.Len(t, products, 2)

	counts := map[string]int{}
	for _, p := range products {
		counts[p.Slug] = p.TopicCount
	}
	assert.Equal(t, map[string]int{"acme": 2, "beta": 0}, counts)
}

func TestGetProduct(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := NewProductHandler(db, testutil.GetTestConfig())
	alice := testutil.CreateTestUser(t, db, "alice", models.RoleUser)

	productID := testutil.CreateTestProduct(t, db, "acme", models.ProductActive)
	testutil.CreateTestProduct(t, db, "secret", models.ProductHidden)
	testutil.CreateTestCategory(t, db, productID, "help")
	testutil.CreateTestCategory(t, db, productID, "ideas")

	api := testutil.CreateTestTag(t, db, "api")
	sdk := testutil.CreateTestTag(t, db, "sdk")
	testutil.CreateTestTag(t, db, "unused")
	testutil.CreateTestTopic(t, db, productID, alice.ID, testutil.TopicOpts{TagIDs: []string{api, sdk}})
	testutil.CreateTestTopic(t, db, productID, alice.ID, testutil.TopicOpts{TagIDs: []string{api}})

	get := func(slug string) *models.ProductDetail {
		req := testutil.MakeRequest("GET", "/api/products/"+slug, nil, nil)
		req.SetPathValue("productSlug", slug)
		w := serve(h.GetProduct, req)
		if w.Code != http.StatusOK {
			return nil
		}
		var detail models.ProductDetail
		testutil.AssertJSON(t, w, &detail)
		return &detail
	}

	detail := get("acme")
	require.NotNil(t, detail)
	assert.Equal(t, "acme", detail.Product.Slug)
	assert.Len(t, detail.Categories, 2)
	require.Len(t, detail.PopularTags, 2)
	assert.Equal(t, "api", detail.PopularTags[0].Slug)
	assert.Equal(t, 2, detail.PopularTags[0].UsageCount)

	assert.Nil(t, get("secret"))
	assert.Nil(t, get("missing"))
}
