package store

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"storefront/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(sqlx.NewDb(db, "postgres")), mock
}

func productRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "title", "description", "price", "image", "category_id", "created_at"})
}

func int64Ptr(v int64) *int64 { return &v }

func TestListProductsPaged(t *testing.T) {
	s, mock := newMockStore(t)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM products WHERE title ILIKE $1 AND category_id = $2")).
		WithArgs("%tea%", int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM products WHERE title ILIKE $1 AND category_id = $2 ORDER BY created_at DESC, id DESC LIMIT $3 OFFSET $4")).
		WithArgs("%tea%", int64(3), 5, 5).
		WillReturnRows(productRows().AddRow(9, "Green tea", "Loose leaf", 1250, nil, 3, now))

	filter := models.ProductFilter{
		ListOptions: models.ListOptions{Page: 2, Limit: 5},
		Search:      "tea",
		CategoryID:  int64Ptr(3),
	}
	products, total, err := s.ListProducts(context.Background(), filter)
	require.NoError(t, err)
	assert.Equal(t, 7, total)
	require.Len(t, products, 1)
	assert.Equal(t, int64(1250), products[0].Price)
	assert.Equal(t, int64(3), *products[0].CategoryID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListProductsUnpagedSkipsCount(t *testing.T) {
	s, mock := newMockStore(t)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM products ORDER BY created_at DESC, id DESC")).
		WillReturnRows(productRows().
			AddRow(2, "B", "b", 200, nil, nil, now).
			AddRow(1, "A", "a", 100, nil, nil, now))

	products, total, err := s.ListProducts(context.Background(), models.ProductFilter{})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, products, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetProductMissing(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM products WHERE id = $1")).
		WithArgs(int64(42)).
		WillReturnRows(productRows())

	product, err := s.GetProduct(context.Background(), 42)
	assert.NoError(t, err)
	assert.Nil(t, product)
}

func TestUpdateProductPartial(t *testing.T) {
	s, mock := newMockStore(t)
	title := "Renamed"
	price := int64(0)

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE products SET title = $1, price = $2 WHERE id = $3 RETURNING *")).
		WithArgs("Renamed", int64(0), int64(5)).
		WillReturnRows(productRows().AddRow(5, "Renamed", "d", 0, nil, nil, time.Now()))

	product, err := s.UpdateProduct(context.Background(), 5, models.ProductPatch{Title: &title, Price: &price})
	require.NoError(t, err)
	require.NotNil(t, product)
	assert.Equal(t, "Renamed", product.Title)
	assert.Equal(t, int64(0), product.Price)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateProductMissing(t *testing.T) {
	s, mock := newMockStore(t)
	title := "x"

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE products SET title = $1 WHERE id = $2 RETURNING *")).
		WithArgs("x", int64(99)).
		WillReturnRows(productRows())

	product, err := s.UpdateProduct(context.Background(), 99, models.ProductPatch{Title: &title})
	assert.NoError(t, err)
	assert.Nil(t, product)
}

func TestCreateCategoryDuplicateSlug(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO categories")).
		WithArgs("Tea", "tea", nil, 0).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "categories_slug_key"})

	_, err := s.CreateCategory(context.Background(), models.CategoryInput{Name: "Tea", Slug: "tea"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConflict))
}

func TestCreateProductUnknownCategory(t *testing.T) {
	s, mock := newMockStore(t)
	price := int64(100)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO products")).
		WillReturnError(&pq.Error{Code: "23503", Constraint: "products_category_id_fkey"})

	_, err := s.CreateProduct(context.Background(), models.ProductInput{
		Title: "t", Description: "d", Price: &price, CategoryID: int64Ptr(77),
	})
	assert.True(t, errors.Is(err, ErrInvalidReference))
}

func TestCreateStoresEmptyOptionalTextAsNull(t *testing.T) {
	s, mock := newMockStore(t)
	price := int64(100)
	empty := ""

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO products")).
		WithArgs("t", "d", int64(100), nil, nil).
		WillReturnRows(productRows().AddRow(1, "t", "d", 100, nil, nil, time.Now()))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO categories")).
		WithArgs("Kitchen", "kitchen", nil, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "slug"}).AddRow(2, "Kitchen", "kitchen"))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO announcements")).
		WithArgs("Sale", nil, "https://x/s.png", nil, nil, true, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "image_url", "is_active"}).
			AddRow(3, "Sale", "https://x/s.png", true))

	_, err := s.CreateProduct(context.Background(), models.ProductInput{
		Title: "t", Description: "d", Price: &price, Image: &empty,
	})
	require.NoError(t, err)
	_, err = s.CreateCategory(context.Background(), models.CategoryInput{
		Name: "Kitchen", Slug: "kitchen", Description: &empty,
	})
	require.NoError(t, err)
	_, err = s.CreateAnnouncement(context.Background(), models.AnnouncementInput{
		Title: "Sale", Description: &empty, ImageURL: "https://x/s.png", ButtonText: &empty, ButtonLink: &empty,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListActiveAnnouncements(t *testing.T) {
	s, mock := newMockStore(t)
	rows := sqlmock.NewRows([]string{"id", "title", "image_url", "is_active", "sort_order"}).
		AddRow(3, "First", "https://x/1.png", true, 0).
		AddRow(1, "Second", "https://x/2.png", true, 1)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM announcements WHERE is_active = TRUE ORDER BY sort_order, id")).
		WillReturnRows(rows)

	list, err := s.ListActiveAnnouncements(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "First", list[0].Title)
}

func TestCreateAnnouncementDefaultsActive(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO announcements")).
		WithArgs("Sale", nil, "https://x/s.png", nil, nil, true, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "image_url", "is_active"}).
			AddRow(1, "Sale", "https://x/s.png", true))

	a, err := s.CreateAnnouncement(context.Background(), models.AnnouncementInput{
		Title: "Sale", ImageURL: "https://x/s.png",
	})
	require.NoError(t, err)
	assert.True(t, a.IsActive)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateOrderInsertsItemsInTransaction(t *testing.T) {
	s, mock := newMockStore(t)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO orders")).
		WithArgs("Ann", "5551234567", nil, int64(700), "pending", nil).
		WillReturnRows(sqlmock.NewRows([]string{"id", "customer_name", "customer_phone", "total", "status", "created_at"}).
			AddRow(11, "Ann", "5551234567", 700, "pending", now))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO order_items (order_id, product_id, product_title, price, quantity) VALUES ($1, $2, $3, $4, $5), ($6, $7, $8, $9, $10)")).
		WithArgs(int64(11), int64Ptr(1), "Mug", int64(200), 2, int64(11), nil, "Card", int64(300), 1).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	order, err := s.CreateOrder(context.Background(),
		models.Order{CustomerName: "Ann", CustomerPhone: "5551234567", Total: 700},
		[]models.OrderItem{
			{ProductID: int64Ptr(1), ProductTitle: "Mug", Price: 200, Quantity: 2},
			{ProductTitle: "Card", Price: 300, Quantity: 1},
		})
	require.NoError(t, err)
	assert.Equal(t, int64(11), order.ID)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateOrderRollsBackOnItemFailure(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO orders")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(12))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO order_items")).
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	_, err := s.CreateOrder(context.Background(),
		models.Order{CustomerName: "Ann", CustomerPhone: "5551234567", Total: 100},
		[]models.OrderItem{{ProductTitle: "Mug", Price: 100, Quantity: 1}})
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateOrderStatusRejectsUnknownStatus(t *testing.T) {
	s, mock := newMockStore(t)

	order, err := s.UpdateOrderStatus(context.Background(), 1, "shipped")
	assert.Nil(t, order)
	assert.True(t, errors.Is(err, ErrInvalidStatus))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetOrderWithItems(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM orders WHERE id = $1")).
		WithArgs(int64(4)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "customer_name", "status"}).AddRow(4, "Bo", "pending"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM order_items WHERE order_id = $1 ORDER BY id")).
		WithArgs(int64(4)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "order_id", "product_title", "price", "quantity"}).
			AddRow(1, 4, "Mug", 200, 2))

	order, items, err := s.GetOrder(context.Background(), 4)
	require.NoError(t, err)
	assert.Equal(t, "Bo", order.CustomerName)
	require.Len(t, items, 1)
	assert.Equal(t, int64(4), items[0].OrderID)
}

func TestDeleteOrderMissing(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM orders WHERE id = $1")).
		WithArgs(int64(8)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	deleted, err := s.DeleteOrder(context.Background(), 8)
	assert.NoError(t, err)
	assert.False(t, deleted)
}

func TestDashboardStats(t *testing.T) {
	s, mock := newMockStore(t)
	since := time.Date(2024, 3, 1, 0, 0, 0, 0, time.Local)

	mock.ExpectQuery(regexp.QuoteMeta("COALESCE(SUM(total), 0) FROM orders WHERE created_at >= $1")).
		WithArgs(since).
		WillReturnRows(sqlmock.NewRows([]string{"total_products", "active_announcements", "total_orders", "revenue_today"}).
			AddRow(10, 2, 5, 4200))

	stats, err := s.DashboardStats(context.Background(), since)
	require.NoError(t, err)
	assert.Equal(t, 10, stats.TotalProducts)
	assert.Equal(t, int64(4200), stats.RevenueToday)
}

func TestLikePatternEscapes(t *testing.T) {
	assert.Equal(t, `%50\%\_off%`, likePattern("50%_off"))
	assert.Equal(t, `%a\\b%`, likePattern(`a\b`))
}
