package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"storefront/internal/models"
)

// ListCategories returns every category by display order
func (s *Store) ListCategories(ctx context.Context) ([]models.Category, error) {
	categories := []models.Category{}
	err := s.db.SelectContext(ctx, &categories, "SELECT * FROM categories ORDER BY sort_order, id")
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

// GetCategory retrieves a category by ID. A missing category yields nil, nil.
func (s *Store) GetCategory(ctx context.Context, id int64) (*models.Category, error) {
	var category models.Category
	err := s.db.GetContext(ctx, &category, "SELECT * FROM categories WHERE id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get category %d: %w", id, err)
	}
	return &category, nil
}

// CreateCategory inserts a category. A duplicate slug returns ErrConflict.
func (s *Store) CreateCategory(ctx context.Context, in models.CategoryInput) (*models.Category, error) {
	query := `
		INSERT INTO categories (name, slug, description, sort_order)
		VALUES ($1, $2, $3, $4)
		RETURNING *`

	var category models.Category
	err := s.db.GetContext(ctx, &category, query, in.Name, in.Slug, nullable(in.Description), in.Order)
	if err != nil {
		return nil, fmt.Errorf("failed to create category: %w", classify(err))
	}
	return &category, nil
}

// UpdateCategory applies the non-nil fields of patch
func (s *Store) UpdateCategory(ctx context.Context, id int64, patch models.CategoryPatch) (*models.Category, error) {
	b := &setBuilder{}
	if patch.Name != nil {
		b.add("name", *patch.Name)
	}
	if patch.Slug != nil {
		b.add("slug", *patch.Slug)
	}
	if patch.Description != nil {
		b.add("description", nullString(*patch.Description))
	}
	if patch.Order != nil {
		b.add("sort_order", *patch.Order)
	}
	if b.empty() {
		return s.GetCategory(ctx, id)
	}

	query, args := b.updateQuery("categories", id)
	var category models.Category
	err := s.db.GetContext(ctx, &category, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update category %d: %w", id, classify(err))
	}
	return &category, nil
}

// DeleteCategory removes a category; its products become uncategorized
func (s *Store) DeleteCategory(ctx context.Context, id int64) (bool, error) {
	return s.deleteByID(ctx, "categories", id)
}
