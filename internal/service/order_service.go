package service

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"time"

	"storefront/internal/apperr"
	"storefront/internal/models"
	"storefront/internal/util"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const (
	idempotencyTTL  = 24 * time.Hour
	idempotencyLock = 30 * time.Second
)

// EventPublisher publishes order events. *broker.EventPublisher and
// broker.NopPublisher implement it.
type EventPublisher interface {
	PublishOrderPlaced(ctx context.Context, event *models.OrderPlacedEvent) error
	PublishOrderStatusChanged(ctx context.Context, event *models.OrderStatusChangedEvent) error
}

// IdempotencyStore remembers which order an Idempotency-Key produced.
// *redisclient.Client implements it.
type IdempotencyStore interface {
	GetIdempotencyKey(ctx context.Context, key string) (string, bool, error)
	SetIdempotencyKey(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	AcquireLock(ctx context.Context, lockKey string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, lockKey string) error
}

// OrderService handles order business logic
type OrderService struct {
	orders         OrderRepository
	idempotency    IdempotencyStore
	eventPublisher EventPublisher
	now            func() time.Time
	logger         *zap.Logger
}

// NewOrderService creates a new order service. idempotency may be nil, in
// which case Idempotency-Key headers are ignored.
func NewOrderService(orders OrderRepository, idempotency IdempotencyStore, eventPublisher EventPublisher) *OrderService {
	return &OrderService{
		orders:         orders,
		idempotency:    idempotency,
		eventPublisher: eventPublisher,
		now:            time.Now,
		logger:         util.GetLogger(),
	}
}

// SetClock replaces the time source used for the dashboard day boundary
func (s *OrderService) SetClock(now func() time.Time) {
	s.now = now
}

// CreateOrder stores a storefront order with its item snapshots. The
// submitted total must equal the sum of price times quantity over items.
func (s *OrderService) CreateOrder(ctx context.Context, in models.OrderInput, idempotencyKey string) (_ *models.Order, err error) {
	ctx, span := util.StartSpan(ctx, "OrderService.CreateOrder")
	defer func() { util.EndSpan(span, err) }()

	start := time.Now()
	defer func() {
		util.OrderCreateLatency.Observe(time.Since(start).Seconds())
	}()

	if len(in.Items) == 0 {
		util.OrdersRejectedTotal.WithLabelValues("no_items").Inc()
		return nil, apperr.Invalid("items", "items must contain at least 1 item")
	}

	var total int64
	items := make([]models.OrderItem, 0, len(in.Items))
	for i, item := range in.Items {
		line, ok := lineTotal(item.Price, item.Quantity)
		if !ok || total > math.MaxInt64-line {
			util.OrdersRejectedTotal.WithLabelValues("total_overflow").Inc()
			field := fmt.Sprintf("items[%d]", i)
			return nil, apperr.Invalid(field, field+" price times quantity is too large")
		}
		total += line
		items = append(items, models.OrderItem{
			ProductID:    item.ProductID,
			ProductTitle: item.ProductTitle,
			Price:        item.Price,
			Quantity:     item.Quantity,
		})
	}
	if in.Total == nil || *in.Total != total {
		util.OrdersRejectedTotal.WithLabelValues("total_mismatch").Inc()
		return nil, apperr.Invalid("total", fmt.Sprintf("total must equal the sum of item prices (%d)", total))
	}

	if idempotencyKey != "" && s.idempotency != nil {
		existing, err := s.replay(ctx, idempotencyKey)
		if err != nil || existing != nil {
			return existing, err
		}

		locked, err := s.idempotency.AcquireLock(ctx, "order:"+idempotencyKey, idempotencyLock)
		if err != nil {
			return nil, apperr.Internal(fmt.Errorf("failed to lock idempotency key: %w", err))
		}
		if !locked {
			return nil, apperr.Conflict("an order with this idempotency key is already being processed", nil)
		}
		defer func() {
			if err := s.idempotency.ReleaseLock(context.Background(), "order:"+idempotencyKey); err != nil {
				s.logger.Warn("Failed to release idempotency lock", zap.Error(err))
			}
		}()
	}

	order, err := s.orders.CreateOrder(ctx, models.Order{
		CustomerName:  in.CustomerName,
		CustomerPhone: in.CustomerPhone,
		CustomerEmail: in.CustomerEmail,
		Total:         total,
		Status:        models.OrderStatusPending,
		Notes:         in.Notes,
	}, items)
	if err != nil {
		util.OrdersRejectedTotal.WithLabelValues("db_error").Inc()
		return nil, storeError(err, "order", "items")
	}

	util.OrdersPlacedTotal.Inc()
	util.OrderRevenueTotal.Add(float64(order.Total))
	span.SetAttributes(attribute.Int64("order.id", order.ID), attribute.Int("order.items", len(items)))
	s.logger.Info("Order placed",
		zap.Int64("order_id", order.ID),
		zap.Int64("total", order.Total),
		zap.Int("items", len(items)))

	if idempotencyKey != "" && s.idempotency != nil {
		if err := s.idempotency.SetIdempotencyKey(ctx, idempotencyKey, order.ID, idempotencyTTL); err != nil {
			s.logger.Error("Failed to store idempotency key", zap.String("key", idempotencyKey), zap.Error(err))
		}
	}

	s.publishPlaced(ctx, order, items)
	return order, nil
}

// lineTotal multiplies price by quantity, reporting false when the product
// does not fit in an int64
func lineTotal(price int64, quantity int) (int64, bool) {
	if price < 0 || quantity < 0 {
		return 0, false
	}
	if quantity > 0 && price > math.MaxInt64/int64(quantity) {
		return 0, false
	}
	return price * int64(quantity), true
}

// replay returns the order a previous request with the same key created
func (s *OrderService) replay(ctx context.Context, key string) (*models.Order, error) {
	value, found, err := s.idempotency.GetIdempotencyKey(ctx, key)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("failed to check idempotency: %w", err))
	}
	if !found {
		return nil, nil
	}

	orderID, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("corrupt idempotency record %q: %w", key, err))
	}
	order, _, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if order == nil {
		return nil, nil
	}

	s.logger.Info("Duplicate order request detected",
		zap.String("idempotency_key", key),
		zap.Int64("order_id", order.ID))
	return order, nil
}

func (s *OrderService) publishPlaced(ctx context.Context, order *models.Order, items []models.OrderItem) {
	data := make([]models.OrderItemData, 0, len(items))
	for _, item := range items {
		data = append(data, models.OrderItemData{
			ProductID:    item.ProductID,
			ProductTitle: item.ProductTitle,
			Quantity:     item.Quantity,
			Price:        item.Price,
		})
	}

	event := &models.OrderPlacedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeOrderPlaced,
			Timestamp: s.now(),
		},
		OrderID:       order.ID,
		CustomerName:  order.CustomerName,
		CustomerPhone: order.CustomerPhone,
		Total:         order.Total,
		Items:         data,
	}

	if err := s.eventPublisher.PublishOrderPlaced(ctx, event); err != nil {
		s.logger.Error("Failed to publish OrderPlaced event", zap.Int64("order_id", order.ID), zap.Error(err))
	}
}

// ListOrders returns one page of orders, newest first
func (s *OrderService) ListOrders(ctx context.Context, filter models.OrderFilter) (models.Page[models.Order], error) {
	if filter.Status != "" && !models.ValidOrderStatus(filter.Status) {
		return models.Page[models.Order]{}, apperr.Invalid("status", "status must be one of: pending, confirmed, delivered, cancelled")
	}

	rows, total, err := s.orders.ListOrders(ctx, filter)
	if err != nil {
		return models.Page[models.Order]{}, apperr.Internal(err)
	}
	return models.NewPage(rows, total, filter.ListOptions), nil
}

// GetOrder returns an order with its items
func (s *OrderService) GetOrder(ctx context.Context, id int64) (*models.OrderDetail, error) {
	order, items, err := s.orders.GetOrder(ctx, id)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if order == nil {
		return nil, apperr.NotFound("order")
	}
	if items == nil {
		items = []models.OrderItem{}
	}
	return &models.OrderDetail{Order: *order, Items: items}, nil
}

// UpdateOrderStatus moves an order to status. Statuses outside the enum
// are rejected before anything is written.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, id int64, status string) (_ *models.Order, err error) {
	ctx, span := util.StartSpan(ctx, "OrderService.UpdateOrderStatus")
	defer func() { util.EndSpan(span, err) }()
	span.SetAttributes(attribute.Int64("order.id", id), attribute.String("order.status", status))

	if !models.ValidOrderStatus(status) {
		return nil, apperr.Invalid("status", "status must be one of: pending, confirmed, delivered, cancelled")
	}

	current, _, err := s.orders.GetOrder(ctx, id)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if current == nil {
		return nil, apperr.NotFound("order")
	}

	order, err := s.orders.UpdateOrderStatus(ctx, id, status)
	if err != nil {
		return nil, storeError(err, "order", "status")
	}
	if order == nil {
		return nil, apperr.NotFound("order")
	}

	util.OrderStatusChangesTotal.WithLabelValues(status).Inc()
	s.logger.Info("Order status changed",
		zap.Int64("order_id", id),
		zap.String("from", current.Status),
		zap.String("to", status))

	if current.Status != status {
		event := &models.OrderStatusChangedEvent{
			BaseEvent: models.BaseEvent{
				EventID:   uuid.New().String(),
				EventType: models.EventTypeOrderStatusChanged,
				Timestamp: s.now(),
			},
			OrderID: id,
			From:    current.Status,
			To:      status,
		}
		if err := s.eventPublisher.PublishOrderStatusChanged(ctx, event); err != nil {
			s.logger.Error("Failed to publish OrderStatusChanged event", zap.Int64("order_id", id), zap.Error(err))
		}
	}
	return order, nil
}

// DeleteOrder removes an order and its items
func (s *OrderService) DeleteOrder(ctx context.Context, id int64) error {
	deleted, err := s.orders.DeleteOrder(ctx, id)
	if err != nil {
		return apperr.Internal(err)
	}
	if !deleted {
		return apperr.NotFound("order")
	}
	s.logger.Info("Order deleted", zap.Int64("order_id", id))
	return nil
}

// Dashboard returns back-office counters. Revenue covers orders placed
// since local midnight.
func (s *OrderService) Dashboard(ctx context.Context) (*models.DashboardStats, error) {
	now := s.now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	stats, err := s.orders.DashboardStats(ctx, midnight)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return stats, nil
}
