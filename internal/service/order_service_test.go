package service

import (
	"context"
	"fmt"
	"math"
	"sync"
	"testing"
	"time"

	"storefront/internal/apperr"
	"storefront/internal/models"
	"storefront/internal/store/memstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishOrderPlaced(ctx context.Context, event *models.OrderPlacedEvent) error {
	return m.Called(ctx, event).Error(0)
}

func (m *mockPublisher) PublishOrderStatusChanged(ctx context.Context, event *models.OrderStatusChangedEvent) error {
	return m.Called(ctx, event).Error(0)
}

type memIdempotency struct {
	mu     sync.Mutex
	values map[string]string
	locks  map[string]bool
}

func newMemIdempotency() *memIdempotency {
	return &memIdempotency{values: map[string]string{}, locks: map[string]bool{}}
}

func (m *memIdempotency) GetIdempotencyKey(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *memIdempotency) SetIdempotencyKey(_ context.Context, key string, value interface{}, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = fmt.Sprint(value)
	return nil
}

func (m *memIdempotency) AcquireLock(_ context.Context, key string, _ time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.locks[key] {
		return false, nil
	}
	m.locks[key] = true
	return true, nil
}

func (m *memIdempotency) ReleaseLock(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.locks, key)
	return nil
}

func int64Ptr(v int64) *int64 { return &v }

func orderInput(total int64, items ...models.OrderItemInput) models.OrderInput {
	return models.OrderInput{
		CustomerName:  "Ann",
		CustomerPhone: "5551234567",
		Total:         int64Ptr(total),
		Items:         items,
	}
}

func TestCreateOrderStampsItemsAndPublishes(t *testing.T) {
	repo := memstore.New()
	pub := &mockPublisher{}
	pub.On("PublishOrderPlaced", mock.Anything, mock.MatchedBy(func(e *models.OrderPlacedEvent) bool {
		return e.Total == 2500 && len(e.Items) == 2 && e.EventType == models.EventTypeOrderPlaced
	})).Return(nil).Once()

	svc := NewOrderService(repo, nil, pub)
	order, err := svc.CreateOrder(context.Background(), orderInput(2500,
		models.OrderItemInput{ProductTitle: "Mug", Price: 1000, Quantity: 2},
		models.OrderItemInput{ProductTitle: "Card", Price: 500, Quantity: 1},
	), "")
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPending, order.Status)

	detail, err := svc.GetOrder(context.Background(), order.ID)
	require.NoError(t, err)
	require.Len(t, detail.Items, 2)
	for _, item := range detail.Items {
		assert.Equal(t, order.ID, item.OrderID)
	}
	pub.AssertExpectations(t)
}

func TestCreateOrderRejectsTotalMismatch(t *testing.T) {
	repo := memstore.New()
	svc := NewOrderService(repo, nil, &mockPublisher{})

	_, err := svc.CreateOrder(context.Background(), orderInput(1,
		models.OrderItemInput{ProductTitle: "Mug", Price: 1000, Quantity: 2},
	), "")
	assert.True(t, apperr.IsValidation(err))

	page, err := svc.ListOrders(context.Background(), models.OrderFilter{})
	require.NoError(t, err)
	assert.Empty(t, page.Data)
}

func TestCreateOrderRejectsOverflowingTotal(t *testing.T) {
	repo := memstore.New()
	svc := NewOrderService(repo, nil, &mockPublisher{})

	// 4 x 2^62 wraps to 0 in int64
	_, err := svc.CreateOrder(context.Background(), orderInput(0,
		models.OrderItemInput{ProductTitle: "X", Price: 1 << 62, Quantity: 4},
	), "")
	require.Error(t, err)
	assert.True(t, apperr.IsValidation(err))
	assert.Equal(t, "items[0]", apperr.From(err).Fields[0].Field)

	// each line fits, the sum does not
	_, err = svc.CreateOrder(context.Background(), orderInput(math.MinInt64,
		models.OrderItemInput{ProductTitle: "A", Price: math.MaxInt64, Quantity: 1},
		models.OrderItemInput{ProductTitle: "B", Price: 1, Quantity: 1},
	), "")
	require.Error(t, err)
	assert.Equal(t, "items[1]", apperr.From(err).Fields[0].Field)

	page, err := svc.ListOrders(context.Background(), models.OrderFilter{})
	require.NoError(t, err)
	assert.Empty(t, page.Data)
}

func TestCreateOrderRequiresItems(t *testing.T) {
	svc := NewOrderService(memstore.New(), nil, &mockPublisher{})

	_, err := svc.CreateOrder(context.Background(), orderInput(0), "")
	assert.True(t, apperr.IsValidation(err))
}

func TestCreateOrderUnknownProductIsValidationError(t *testing.T) {
	svc := NewOrderService(memstore.New(), nil, &mockPublisher{})

	_, err := svc.CreateOrder(context.Background(), orderInput(100,
		models.OrderItemInput{ProductID: int64Ptr(404), ProductTitle: "Ghost", Price: 100, Quantity: 1},
	), "")
	require.Error(t, err)
	assert.True(t, apperr.IsValidation(err))
}

func TestCreateOrderIdempotencyKeyReplays(t *testing.T) {
	repo := memstore.New()
	pub := &mockPublisher{}
	pub.On("PublishOrderPlaced", mock.Anything, mock.Anything).Return(nil).Once()
	svc := NewOrderService(repo, newMemIdempotency(), pub)

	in := orderInput(300, models.OrderItemInput{ProductTitle: "Tea", Price: 100, Quantity: 3})
	first, err := svc.CreateOrder(context.Background(), in, "key-1")
	require.NoError(t, err)
	second, err := svc.CreateOrder(context.Background(), in, "key-1")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	page, err := svc.ListOrders(context.Background(), models.OrderFilter{})
	require.NoError(t, err)
	assert.Len(t, page.Data, 1)
	pub.AssertExpectations(t)
}

func TestUpdateOrderStatus(t *testing.T) {
	repo := memstore.New()
	pub := &mockPublisher{}
	pub.On("PublishOrderPlaced", mock.Anything, mock.Anything).Return(nil)
	pub.On("PublishOrderStatusChanged", mock.Anything, mock.MatchedBy(func(e *models.OrderStatusChangedEvent) bool {
		return e.From == models.OrderStatusPending && e.To == models.OrderStatusConfirmed
	})).Return(nil).Once()
	svc := NewOrderService(repo, nil, pub)
	ctx := context.Background()

	order, err := svc.CreateOrder(ctx, orderInput(100, models.OrderItemInput{ProductTitle: "Tea", Price: 100, Quantity: 1}), "")
	require.NoError(t, err)

	updated, err := svc.UpdateOrderStatus(ctx, order.ID, models.OrderStatusConfirmed)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusConfirmed, updated.Status)

	_, err = svc.UpdateOrderStatus(ctx, order.ID, "shipped")
	assert.True(t, apperr.IsValidation(err))
	detail, err := svc.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusConfirmed, detail.Order.Status)

	_, err = svc.UpdateOrderStatus(ctx, 9999, models.OrderStatusDelivered)
	assert.True(t, apperr.IsNotFound(err))
	pub.AssertExpectations(t)
}

func TestDeleteOrderCascades(t *testing.T) {
	repo := memstore.New()
	pub := &mockPublisher{}
	pub.On("PublishOrderPlaced", mock.Anything, mock.Anything).Return(nil)
	svc := NewOrderService(repo, nil, pub)
	ctx := context.Background()

	order, err := svc.CreateOrder(ctx, orderInput(200,
		models.OrderItemInput{ProductTitle: "A", Price: 100, Quantity: 1},
		models.OrderItemInput{ProductTitle: "B", Price: 100, Quantity: 1},
	), "")
	require.NoError(t, err)

	require.NoError(t, svc.DeleteOrder(ctx, order.ID))
	assert.Zero(t, repo.ItemCount())
	assert.True(t, apperr.IsNotFound(svc.DeleteOrder(ctx, order.ID)))
}

func TestDashboardUsesLocalMidnight(t *testing.T) {
	repo := memstore.New()
	pub := &mockPublisher{}
	pub.On("PublishOrderPlaced", mock.Anything, mock.Anything).Return(nil)
	svc := NewOrderService(repo, nil, pub)
	ctx := context.Background()

	today := time.Date(2024, 6, 10, 15, 0, 0, 0, time.Local)
	repo.SetClock(func() time.Time { return today.Add(-24 * time.Hour) })
	_, err := svc.CreateOrder(ctx, orderInput(100, models.OrderItemInput{ProductTitle: "old", Price: 100, Quantity: 1}), "")
	require.NoError(t, err)
	repo.SetClock(func() time.Time { return today.Add(-time.Hour) })
	_, err = svc.CreateOrder(ctx, orderInput(700, models.OrderItemInput{ProductTitle: "new", Price: 700, Quantity: 1}), "")
	require.NoError(t, err)

	svc.SetClock(func() time.Time { return today })
	stats, err := svc.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalOrders)
	assert.Equal(t, int64(700), stats.RevenueToday)
}

func TestListOrdersRejectsUnknownStatusFilter(t *testing.T) {
	svc := NewOrderService(memstore.New(), nil, &mockPublisher{})

	_, err := svc.ListOrders(context.Background(), models.OrderFilter{Status: "lost"})
	assert.True(t, apperr.IsValidation(err))
}
