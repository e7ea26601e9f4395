// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"github.com/danielhkuo/community-forum/cliparse"
	"github.com/danielhkuo/community-forum/middleware"
	"github.com/danielhkuo/community-forum/models"
)

type ProductHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewProductHandler(db *sql.DB, cfg cliparse.Config) *ProductHandler {
	return &ProductHandler{db: db, cfg: cfg}
}

const productSelect = `
	SELECT p.id, p.name, p.slug, p.description, p.icon, p.color, p.status, p.ordering, p.docs_url, p.release_url,
	       p.created_at, (SELECT COUNT(*) FROM topic t WHERE t.product_id = p.id)
	FROM product p`

func scanProduct(s scanner) (models.Product, error) {
	var p models.Product
	err := s.Scan(&p.ID, &p.Name, &p.Slug, &p.Description, &p.Icon, &p.Color, &p.Status, &p.Ordering,
		&p.DocsURL, &p.ReleaseURL, &p.CreatedAt, &p.TopicCount)
	p.CreatedAt = p.CreatedAt.UTC()
	return p, err
}

func listProducts(ctx context.Context, db *sql.DB, where string, args ...any) ([]models.Product, error) {
	rows, err := db.QueryContext(ctx, productSelect+" "+where+" ORDER BY p.ordering, p.name", args...)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// visibleProduct loads an ACTIVE or BETA product by slug.
func visibleProduct(ctx context.Context, db *sql.DB, slug string) (models.Product, error) {
	return scanProduct(db.QueryRowContext(ctx, productSelect+" WHERE p.slug = $1 AND p.status <> $2", slug, models.ProductHidden))
}

func listCategories(ctx context.Context, db *sql.DB, where string, args ...any) ([]models.Category, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, product_id, name, slug, description, icon, ordering FROM category `+where+`
		ORDER BY ordering, name`, args...)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	categories := []models.Category{}
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.ProductID, &c.Name, &c.Slug, &c.Description, &c.Icon, &c.Ordering); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func scanTags(rows *sql.Rows) ([]models.Tag, error) {
	defer rows.Close()

	tags := []models.Tag{}
	for rows.Next() {
		var t models.Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.Slug, &t.Description, &t.Color, &t.UsageCount); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

// ListProducts handles GET /api/products
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := listProducts(r.Context(), h.db, "WHERE p.status <> $1", models.ProductHidden)
	if err != nil {
		serverError(w, "failed to list products", err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, products)
}

// GetProduct handles GET /api/products/{productSlug}
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	product, err := visibleProduct(ctx, h.db, r.PathValue("productSlug"))
	if errors.Is(err, sql.ErrNoRows) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Product not found")
		return
	}
	if err != nil {
		serverError(w, "failed to load product", err)
		return
	}

	categories, err := listCategories(ctx, h.db, "WHERE product_id = $1", product.ID)
	if err != nil {
		serverError(w, "failed to list categories", err, "product_id", product.ID)
		return
	}

	rows, err := h.db.QueryContext(ctx, `
		SELECT tg.id, tg.name, tg.slug, tg.description, tg.color, COUNT(*) AS uses
		FROM topic_tag tt
		JOIN tag tg ON tt.tag_id = tg.id
		JOIN topic t ON tt.topic_id = t.id
		WHERE t.product_id = $1
		GROUP BY tg.id, tg.name, tg.slug, tg.description, tg.color
		ORDER BY uses DESC, tg.name
		LIMIT 10
	`, product.ID)
	if err != nil {
		serverError(w, "failed to query popular tags", err, "product_id", product.ID)
		return
	}
	tags, err := scanTags(rows)
	if err != nil {
		serverError(w, "failed to load popular tags", err, "product_id", product.ID)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.ProductDetail{
		Product:     product,
		Categories:  categories,
		PopularTags: tags,
	})
}
