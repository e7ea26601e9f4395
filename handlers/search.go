// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/danielhkuo/community-forum/cliparse"
	"github.com/danielhkuo/community-forum/middleware"
	"github.com/danielhkuo/community-forum/models"
	"github.com/danielhkuo/community-forum/search"
)

type SearchHandler struct {
	cfg      cliparse.Config
	provider search.Provider
}

func NewSearchHandler(cfg cliparse.Config, provider search.Provider) *SearchHandler {
	return &SearchHandler{cfg: cfg, provider: provider}
}

// parseSearchRequest reads search parameters from the query string. Missing
// or malformed numbers fall back to the defaults and are then validated.
func parseSearchRequest(r *http.Request) models.SearchRequest {
	q := r.URL.Query()

	req := models.SearchRequest{
		Query:      strings.TrimSpace(q.Get("q")),
		ProductID:  q.Get("product"),
		CategoryID: q.Get("category"),
		Status:     q.Get("status"),
		Type:       q.Get("type"),
		Page:       1,
		Limit:      search.DefaultLimit,
	}
	for _, tag := range strings.Split(q.Get("tags"), ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			req.TagIDs = append(req.TagIDs, tag)
		}
	}
	if v := q.Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			req.Page = n
		} else {
			req.Page = 0
		}
	}
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			req.Limit = n
		} else {
			req.Limit = 0
		}
	}
	return req
}

// Search handles GET /api/search
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	req := parseSearchRequest(r)
	if !middleware.ValidateRequest(w, &req) {
		return
	}

	result, err := h.provider.Search(r.Context(), req)
	if err != nil {
		serverError(w, "search failed", err, "query", req.Query)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, result)
}
