// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/community-forum/auth"
	"github.com/danielhkuo/community-forum/cliparse"
	"github.com/danielhkuo/community-forum/db"
	"github.com/danielhkuo/community-forum/middleware"
	"github.com/danielhkuo/community-forum/models"
)

const overviewTagLimit = 50

type AdminHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewAdminHandler(db *sql.DB, cfg cliparse.Config) *AdminHandler {
	return &AdminHandler{db: db, cfg: cfg}
}

// CreateProduct handles POST /api/admin/products
func (h *AdminHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req models.CreateProductRequest
	if !middleware.DecodeAndValidate(w, r, &req) {
		return
	}
	if req.Status == "" {
		req.Status = models.ProductActive
	}

	id := auth.NewID()
	_, err := h.db.ExecContext(r.Context(), `
		INSERT INTO product (id, name, slug, description, icon, color, status, ordering, docs_url, release_url, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, id, req.Name, req.Slug, nullable(req.Description), nullable(req.Icon), nullable(req.Color),
		req.Status, req.Ordering, nullable(req.DocsURL), nullable(req.ReleaseURL), now())
	if db.IsUniqueViolation(err) {
		middleware.ErrorResponse(w, http.StatusConflict, "A product with this slug already exists")
		return
	}
	if err != nil {
		serverError(w, "failed to create product", err)
		return
	}

	product, err := scanProduct(h.db.QueryRowContext(r.Context(), productSelect+" WHERE p.id = $1", id))
	if err != nil {
		serverError(w, "failed to load product", err, "product_id", id)
		return
	}

	slog.Info("product created", "product_id", id, "slug", req.Slug)
	middleware.JSONResponse(w, http.StatusCreated, product)
}

// CreateCategory handles POST /api/admin/categories
func (h *AdminHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req models.CreateCategoryRequest
	if !middleware.DecodeAndValidate(w, r, &req) {
		return
	}

	if req.ProductID != "" {
		var n int
		if err := h.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM product WHERE id = $1`, req.ProductID).Scan(&n); err != nil {
			serverError(w, "failed to load product", err)
			return
		}
		if n == 0 {
			middleware.ErrorResponse(w, http.StatusBadRequest, "Product not found")
			return
		}
	}

	c := models.Category{
		ID:          auth.NewID(),
		ProductID:   nullable(req.ProductID),
		Name:        req.Name,
		Slug:        req.Slug,
		Description: nullable(req.Description),
		Icon:        nullable(req.Icon),
		Ordering:    req.Ordering,
	}
	_, err := h.db.ExecContext(ctx, `
		INSERT INTO category (id, product_id, name, slug, description, icon, ordering, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, c.ID, c.ProductID, c.Name, c.Slug, c.Description, c.Icon, c.Ordering, now())
	if db.IsUniqueViolation(err) {
		middleware.ErrorResponse(w, http.StatusConflict, "A category with this slug already exists")
		return
	}
	if err != nil {
		serverError(w, "failed to create category", err)
		return
	}

	slog.Info("category created", "category_id", c.ID, "slug", c.Slug)
	middleware.JSONResponse(w, http.StatusCreated, c)
}

// CreateTag handles POST /api/admin/tags
func (h *AdminHandler) CreateTag(w http.ResponseWriter, r *http.Request) {
	var req models.CreateTagRequest
	if !middleware.DecodeAndValidate(w, r, &req) {
		return
	}

	tag := models.Tag{
		ID:          auth.NewID(),
		Name:        req.Name,
		Slug:        req.Slug,
		Description: nullable(req.Description),
		Color:       nullable(req.Color),
	}
	_, err := h.db.ExecContext(r.Context(), `
		INSERT INTO tag (id, name, slug, description, color, created_at) VALUES ($1, $2, $3, $4, $5, $6)
	`, tag.ID, tag.Name, tag.Slug, tag.Description, tag.Color, now())
	if db.IsUniqueViolation(err) {
		middleware.ErrorResponse(w, http.StatusConflict, "A tag with this name or slug already exists")
		return
	}
	if err != nil {
		serverError(w, "failed to create tag", err)
		return
	}

	slog.Info("tag created", "tag_id", tag.ID, "slug", tag.Slug)
	middleware.JSONResponse(w, http.StatusCreated, tag)
}

// Overview handles GET /api/admin/overview
func (h *AdminHandler) Overview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	products, err := listProducts(ctx, h.db, "")
	if err != nil {
		serverError(w, "failed to list products", err)
		return
	}

	categories, err := listCategories(ctx, h.db, "")
	if err != nil {
		serverError(w, "failed to list categories", err)
		return
	}

	rows, err := h.db.QueryContext(ctx, `
		SELECT id, name, slug, description, color, usage_count FROM tag
		ORDER BY usage_count DESC, name
		LIMIT $1
	`, overviewTagLimit)
	if err != nil {
		serverError(w, "failed to query tags", err)
		return
	}
	tags, err := scanTags(rows)
	if err != nil {
		serverError(w, "failed to load tags", err)
		return
	}

	var stats models.UserStats
	if err := h.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(CASE WHEN role = 'ADMIN' THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN role = 'MODERATOR' THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN role = 'TRUSTED' THEN 1 ELSE 0 END), 0)
		FROM users
	`).Scan(&stats.Total, &stats.Admins, &stats.Moderators, &stats.Trusted); err != nil {
		serverError(w, "failed to count users", err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.AdminOverview{
		Products:   products,
		Categories: categories,
		Tags:       tags,
		Users:      stats,
	})
}

// UpdateRole handles PATCH /api/admin/users/{id}/role
func (h *AdminHandler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.CurrentUser(r)
	targetID := r.PathValue("id")

	var req models.UpdateRoleRequest
	if !middleware.DecodeAndValidate(w, r, &req) {
		return
	}

	if targetID == user.ID && req.Role != models.RoleAdmin {
		middleware.ErrorResponse(w, http.StatusBadRequest, "You cannot remove your own admin role")
		return
	}

	res, err := h.db.ExecContext(r.Context(), `UPDATE users SET role = $1 WHERE id = $2`, req.Role, targetID)
	if err != nil {
		serverError(w, "failed to update role", err, "user_id", targetID)
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		middleware.ErrorResponse(w, http.StatusNotFound, "User not found")
		return
	}

	slog.Info("user role changed", "user_id", targetID, "role", req.Role, "admin_id", user.ID)
	middleware.JSONResponse(w, http.StatusOK, models.SuccessResponse{Success: true})
}
