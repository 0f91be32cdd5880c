package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"storefront/internal/models"
)

func productWhere(filter models.ProductFilter) *whereBuilder {
	w := &whereBuilder{}
	if filter.Search != "" {
		w.add("title ILIKE $%d", likePattern(filter.Search))
	}
	if filter.CategoryID != nil {
		w.add("category_id = $%d", *filter.CategoryID)
	}
	return w
}

// ListProducts returns products newest first and the total matching count.
// Without a page window every matching row is returned.
func (s *Store) ListProducts(ctx context.Context, filter models.ProductFilter) ([]models.Product, int, error) {
	w := productWhere(filter)

	var total int
	if filter.Paged() {
		if err := s.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM products"+w.String(), w.args...); err != nil {
			return nil, 0, fmt.Errorf("failed to count products: %w", err)
		}
	}

	query := "SELECT * FROM products" + w.String() + " ORDER BY created_at DESC, id DESC"
	if filter.Paged() {
		query += w.limit(filter.Limit, filter.Offset())
	}

	products := []models.Product{}
	if err := s.db.SelectContext(ctx, &products, query, w.args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}

	if !filter.Paged() {
		total = len(products)
	}
	return products, total, nil
}

// GetProduct retrieves a product by ID. A missing product yields nil, nil.
func (s *Store) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	var product models.Product
	err := s.db.GetContext(ctx, &product, "SELECT * FROM products WHERE id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product %d: %w", id, err)
	}
	return &product, nil
}

// CreateProduct inserts a product
func (s *Store) CreateProduct(ctx context.Context, in models.ProductInput) (*models.Product, error) {
	query := `
		INSERT INTO products (title, description, price, image, category_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING *`

	var product models.Product
	err := s.db.GetContext(ctx, &product, query,
		in.Title, in.Description, *in.Price, nullable(in.Image), in.CategoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", classify(err))
	}
	return &product, nil
}

// UpdateProduct applies the non-nil fields of patch. A missing product
// yields nil, nil.
func (s *Store) UpdateProduct(ctx context.Context, id int64, patch models.ProductPatch) (*models.Product, error) {
	b := &setBuilder{}
	if patch.Title != nil {
		b.add("title", *patch.Title)
	}
	if patch.Description != nil {
		b.add("description", *patch.Description)
	}
	if patch.Price != nil {
		b.add("price", *patch.Price)
	}
	if patch.Image != nil {
		b.add("image", nullString(*patch.Image))
	}
	if patch.CategoryID != nil {
		b.add("category_id", *patch.CategoryID)
	}
	if b.empty() {
		return s.GetProduct(ctx, id)
	}

	query, args := b.updateQuery("products", id)
	var product models.Product
	err := s.db.GetContext(ctx, &product, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update product %d: %w", id, classify(err))
	}
	return &product, nil
}

// DeleteProduct removes a product. Historical order items keep their
// snapshot and lose only the product reference.
func (s *Store) DeleteProduct(ctx context.Context, id int64) (bool, error) {
	return s.deleteByID(ctx, "products", id)
}

func (s *Store) deleteByID(ctx context.Context, table string, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM "+table+" WHERE id = $1", id)
	if err != nil {
		return false, fmt.Errorf("failed to delete from %s: %w", table, classify(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n > 0, nil
}

// nullString stores an empty optional text field as NULL
func nullString(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

// nullable applies nullString to an optional input field
func nullable(v *string) *string {
	if v == nil {
		return nil
	}
	return nullString(*v)
}
