package store

import (
	"context"
	"fmt"
	"time"

	"storefront/internal/models"
)

// DashboardStats counts catalog rows and sums order revenue since the
// given instant
func (s *Store) DashboardStats(ctx context.Context, since time.Time) (*models.DashboardStats, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM products) AS total_products,
			(SELECT COUNT(*) FROM announcements WHERE is_active = TRUE) AS active_announcements,
			(SELECT COUNT(*) FROM orders) AS total_orders,
			(SELECT COALESCE(SUM(total), 0) FROM orders WHERE created_at >= $1) AS revenue_today`

	var stats models.DashboardStats
	if err := s.db.GetContext(ctx, &stats, query, since); err != nil {
		return nil, fmt.Errorf("failed to load dashboard stats: %w", err)
	}
	return &stats, nil
}
