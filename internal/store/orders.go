package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"storefront/internal/models"
)

// ListOrders returns orders newest first, optionally narrowed by status
func (s *Store) ListOrders(ctx context.Context, filter models.OrderFilter) ([]models.Order, int, error) {
	w := &whereBuilder{}
	if filter.Status != "" {
		w.add("status = $%d", filter.Status)
	}

	var total int
	if filter.Paged() {
		if err := s.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM orders"+w.String(), w.args...); err != nil {
			return nil, 0, fmt.Errorf("failed to count orders: %w", err)
		}
	}

	query := "SELECT * FROM orders" + w.String() + " ORDER BY created_at DESC, id DESC"
	if filter.Paged() {
		query += w.limit(filter.Limit, filter.Offset())
	}

	orders := []models.Order{}
	if err := s.db.SelectContext(ctx, &orders, query, w.args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}

	if !filter.Paged() {
		total = len(orders)
	}
	return orders, total, nil
}

// GetOrder retrieves an order and its items. A missing order yields nil, nil, nil.
func (s *Store) GetOrder(ctx context.Context, id int64) (*models.Order, []models.OrderItem, error) {
	var order models.Order
	err := s.db.GetContext(ctx, &order, "SELECT * FROM orders WHERE id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get order %d: %w", id, err)
	}

	items := []models.OrderItem{}
	err = s.db.SelectContext(ctx, &items,
		"SELECT * FROM order_items WHERE order_id = $1 ORDER BY id", id)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get items of order %d: %w", id, err)
	}
	return &order, items, nil
}

// CreateOrder inserts the order and its items in one transaction. The
// returned order carries the generated id, status and timestamp; items are
// stamped with that id.
func (s *Store) CreateOrder(ctx context.Context, order models.Order, items []models.OrderItem) (*models.Order, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	status := order.Status
	if status == "" {
		status = models.OrderStatusPending
	}

	query := `
		INSERT INTO orders (customer_name, customer_phone, customer_email, total, status, notes)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING *`

	var created models.Order
	err = tx.GetContext(ctx, &created, query,
		order.CustomerName, order.CustomerPhone, order.CustomerEmail, order.Total, status, order.Notes)
	if err != nil {
		return nil, fmt.Errorf("failed to insert order: %w", classify(err))
	}

	if len(items) > 0 {
		values := make([]string, 0, len(items))
		args := make([]interface{}, 0, len(items)*5)
		for _, item := range items {
			n := len(args)
			values = append(values, fmt.Sprintf("($%d, $%d, $%d, $%d, $%d)", n+1, n+2, n+3, n+4, n+5))
			args = append(args, created.ID, item.ProductID, item.ProductTitle, item.Price, item.Quantity)
		}

		_, err = tx.ExecContext(ctx,
			"INSERT INTO order_items (order_id, product_id, product_title, price, quantity) VALUES "+
				strings.Join(values, ", "), args...)
		if err != nil {
			return nil, fmt.Errorf("failed to insert order items: %w", classify(err))
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit order: %w", err)
	}
	return &created, nil
}

// UpdateOrderStatus changes the status of an order. Unknown statuses are
// rejected with ErrInvalidStatus before anything is written.
func (s *Store) UpdateOrderStatus(ctx context.Context, id int64, status string) (*models.Order, error) {
	if !models.ValidOrderStatus(status) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	var order models.Order
	err := s.db.GetContext(ctx, &order,
		"UPDATE orders SET status = $1 WHERE id = $2 RETURNING *", status, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update order %d status: %w", id, err)
	}
	return &order, nil
}

// DeleteOrder removes an order; its items go with it
func (s *Store) DeleteOrder(ctx context.Context, id int64) (bool, error) {
	return s.deleteByID(ctx, "orders", id)
}
