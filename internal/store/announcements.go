package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"storefront/internal/models"
)

// ListAnnouncements returns announcements by display order with the total
// matching count
func (s *Store) ListAnnouncements(ctx context.Context, filter models.AnnouncementFilter) ([]models.Announcement, int, error) {
	w := &whereBuilder{}
	if filter.Search != "" {
		w.add("title ILIKE $%d", likePattern(filter.Search))
	}

	var total int
	if filter.Paged() {
		if err := s.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM announcements"+w.String(), w.args...); err != nil {
			return nil, 0, fmt.Errorf("failed to count announcements: %w", err)
		}
	}

	query := "SELECT * FROM announcements" + w.String() + " ORDER BY sort_order, id"
	if filter.Paged() {
		query += w.limit(filter.Limit, filter.Offset())
	}

	announcements := []models.Announcement{}
	if err := s.db.SelectContext(ctx, &announcements, query, w.args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list announcements: %w", err)
	}

	if !filter.Paged() {
		total = len(announcements)
	}
	return announcements, total, nil
}

// ListActiveAnnouncements returns the storefront carousel: active rows by
// display order, ties in insertion order
func (s *Store) ListActiveAnnouncements(ctx context.Context) ([]models.Announcement, error) {
	announcements := []models.Announcement{}
	err := s.db.SelectContext(ctx, &announcements,
		"SELECT * FROM announcements WHERE is_active = TRUE ORDER BY sort_order, id")
	if err != nil {
		return nil, fmt.Errorf("failed to list active announcements: %w", err)
	}
	return announcements, nil
}

// GetAnnouncement retrieves an announcement by ID. A missing row yields nil, nil.
func (s *Store) GetAnnouncement(ctx context.Context, id int64) (*models.Announcement, error) {
	var a models.Announcement
	err := s.db.GetContext(ctx, &a, "SELECT * FROM announcements WHERE id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get announcement %d: %w", id, err)
	}
	return &a, nil
}

// CreateAnnouncement inserts an announcement; IsActive defaults to true
func (s *Store) CreateAnnouncement(ctx context.Context, in models.AnnouncementInput) (*models.Announcement, error) {
	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}

	query := `
		INSERT INTO announcements (title, description, image_url, button_text, button_link, is_active, sort_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING *`

	var a models.Announcement
	err := s.db.GetContext(ctx, &a, query,
		in.Title, nullable(in.Description), in.ImageURL, nullable(in.ButtonText), nullable(in.ButtonLink), active, in.Order)
	if err != nil {
		return nil, fmt.Errorf("failed to create announcement: %w", classify(err))
	}
	return &a, nil
}

// UpdateAnnouncement applies the non-nil fields of patch
func (s *Store) UpdateAnnouncement(ctx context.Context, id int64, patch models.AnnouncementPatch) (*models.Announcement, error) {
	b := &setBuilder{}
	if patch.Title != nil {
		b.add("title", *patch.Title)
	}
	if patch.Description != nil {
		b.add("description", nullString(*patch.Description))
	}
	if patch.ImageURL != nil {
		b.add("image_url", *patch.ImageURL)
	}
	if patch.ButtonText != nil {
		b.add("button_text", nullString(*patch.ButtonText))
	}
	if patch.ButtonLink != nil {
		b.add("button_link", nullString(*patch.ButtonLink))
	}
	if patch.IsActive != nil {
		b.add("is_active", *patch.IsActive)
	}
	if patch.Order != nil {
		b.add("sort_order", *patch.Order)
	}
	if b.empty() {
		return s.GetAnnouncement(ctx, id)
	}

	query, args := b.updateQuery("announcements", id)
	var a models.Announcement
	err := s.db.GetContext(ctx, &a, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update announcement %d: %w", id, classify(err))
	}
	return &a, nil
}

// DeleteAnnouncement removes an announcement
func (s *Store) DeleteAnnouncement(ctx context.Context, id int64) (bool, error) {
	return s.deleteByID(ctx, "announcements", id)
}
