package service

import (
	"context"
	"time"

	"storefront/internal/models"
)

// ProductRepository persists catalog products
type ProductRepository interface {
	ListProducts(ctx context.Context, filter models.ProductFilter) ([]models.Product, int, error)
	GetProduct(ctx context.Context, id int64) (*models.Product, error)
	CreateProduct(ctx context.Context, in models.ProductInput) (*models.Product, error)
	UpdateProduct(ctx context.Context, id int64, patch models.ProductPatch) (*models.Product, error)
	DeleteProduct(ctx context.Context, id int64) (bool, error)
}

// CategoryRepository persists product categories
type CategoryRepository interface {
	ListCategories(ctx context.Context) ([]models.Category, error)
	GetCategory(ctx context.Context, id int64) (*models.Category, error)
	CreateCategory(ctx context.Context, in models.CategoryInput) (*models.Category, error)
	UpdateCategory(ctx context.Context, id int64, patch models.CategoryPatch) (*models.Category, error)
	DeleteCategory(ctx context.Context, id int64) (bool, error)
}

// AnnouncementRepository persists carousel announcements
type AnnouncementRepository interface {
	ListAnnouncements(ctx context.Context, filter models.AnnouncementFilter) ([]models.Announcement, int, error)
	ListActiveAnnouncements(ctx context.Context) ([]models.Announcement, error)
	GetAnnouncement(ctx context.Context, id int64) (*models.Announcement, error)
	CreateAnnouncement(ctx context.Context, in models.AnnouncementInput) (*models.Announcement, error)
	UpdateAnnouncement(ctx context.Context, id int64, patch models.AnnouncementPatch) (*models.Announcement, error)
	DeleteAnnouncement(ctx context.Context, id int64) (bool, error)
}

// OrderRepository persists orders and their items
type OrderRepository interface {
	ListOrders(ctx context.Context, filter models.OrderFilter) ([]models.Order, int, error)
	GetOrder(ctx context.Context, id int64) (*models.Order, []models.OrderItem, error)
	CreateOrder(ctx context.Context, order models.Order, items []models.OrderItem) (*models.Order, error)
	UpdateOrderStatus(ctx context.Context, id int64, status string) (*models.Order, error)
	DeleteOrder(ctx context.Context, id int64) (bool, error)
	DashboardStats(ctx context.Context, since time.Time) (*models.DashboardStats, error)
}

// UserRepository persists admin accounts
type UserRepository interface {
	GetUserByUsername(ctx context.Context, username string) (*models.AdminUser, error)
	GetUserByID(ctx context.Context, id int64) (*models.AdminUser, error)
	CreateUser(ctx context.Context, username, passwordHash string) (*models.AdminUser, error)
}

// Repository is the full persistence contract. *store.Store and
// *memstore.Store both satisfy it.
type Repository interface {
	ProductRepository
	CategoryRepository
	AnnouncementRepository
	OrderRepository
	UserRepository
	Ping(ctx context.Context) error
}
