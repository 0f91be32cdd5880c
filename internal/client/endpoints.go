package client

import (
	"context"
	"net/http"

	"storefront/internal/models"
)

// API paths
const (
	PathProducts            = "/api/products"
	PathCategories          = "/api/categories"
	PathAnnouncements       = "/api/announcements"
	PathActiveAnnouncements = "/api/announcements/active"
	PathOrders              = "/api/orders"
	PathLogin               = "/api/auth/login"
	PathLogout              = "/api/auth/logout"
	PathMe                  = "/api/auth/me"
	PathDashboard           = "/api/admin/dashboard"
	PathAdminOrders         = "/api/admin/orders"
)

// Products

func (c *Client) ListProducts(ctx context.Context, q ListQuery) (*models.Page[models.Product], error) {
	var page models.Page[models.Product]
	if err := c.get(ctx, PathProducts, q.values(), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *Client) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	var product models.Product
	if err := c.get(ctx, idPath(PathProducts, id), nil, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

func (c *Client) CreateProduct(ctx context.Context, in models.ProductInput) (*models.Product, error) {
	var product models.Product
	err := c.mutate(ctx, http.MethodPost, PathProducts, in, &product, nil, PathProducts, PathDashboard)
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (c *Client) UpdateProduct(ctx context.Context, id int64, patch models.ProductPatch) (*models.Product, error) {
	var product models.Product
	err := c.mutate(ctx, http.MethodPatch, idPath(PathProducts, id), patch, &product, nil, PathProducts, PathDashboard)
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (c *Client) DeleteProduct(ctx context.Context, id int64) error {
	return c.mutate(ctx, http.MethodDelete, idPath(PathProducts, id), nil, nil, nil, PathProducts, PathDashboard)
}

// Categories. Deleting a category uncategorizes its products, so category
// mutations also drop cached product lists.

func (c *Client) ListCategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	if err := c.get(ctx, PathCategories, nil, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

func (c *Client) CreateCategory(ctx context.Context, in models.CategoryInput) (*models.Category, error) {
	var category models.Category
	err := c.mutate(ctx, http.MethodPost, PathCategories, in, &category, nil, PathCategories)
	if err != nil {
		return nil, err
	}
	return &category, nil
}

func (c *Client) UpdateCategory(ctx context.Context, id int64, patch models.CategoryPatch) (*models.Category, error) {
	var category models.Category
	err := c.mutate(ctx, http.MethodPatch, idPath(PathCategories, id), patch, &category, nil, PathCategories)
	if err != nil {
		return nil, err
	}
	return &category, nil
}

func (c *Client) DeleteCategory(ctx context.Context, id int64) error {
	return c.mutate(ctx, http.MethodDelete, idPath(PathCategories, id), nil, nil, nil, PathCategories, PathProducts)
}

// Announcements. The active list lives under PathAnnouncements, so one
// prefix covers both.

func (c *Client) ActiveAnnouncements(ctx context.Context) ([]models.Announcement, error) {
	var announcements []models.Announcement
	if err := c.get(ctx, PathActiveAnnouncements, nil, &announcements); err != nil {
		return nil, err
	}
	return announcements, nil
}

func (c *Client) ListAnnouncements(ctx context.Context, q ListQuery) (*models.Page[models.Announcement], error) {
	var page models.Page[models.Announcement]
	if err := c.get(ctx, PathAnnouncements, q.values(), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *Client) CreateAnnouncement(ctx context.Context, in models.AnnouncementInput) (*models.Announcement, error) {
	var a models.Announcement
	err := c.mutate(ctx, http.MethodPost, PathAnnouncements, in, &a, nil, PathAnnouncements, PathDashboard)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (c *Client) UpdateAnnouncement(ctx context.Context, id int64, patch models.AnnouncementPatch) (*models.Announcement, error) {
	var a models.Announcement
	err := c.mutate(ctx, http.MethodPatch, idPath(PathAnnouncements, id), patch, &a, nil, PathAnnouncements, PathDashboard)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (c *Client) DeleteAnnouncement(ctx context.Context, id int64) error {
	return c.mutate(ctx, http.MethodDelete, idPath(PathAnnouncements, id), nil, nil, nil, PathAnnouncements, PathDashboard)
}

// Orders

// PlaceOrder submits a storefront order. A non-empty idempotencyKey makes
// retries return the original order.
func (c *Client) PlaceOrder(ctx context.Context, in models.OrderInput, idempotencyKey string) (*models.Order, error) {
	var header http.Header
	if idempotencyKey != "" {
		header = http.Header{"Idempotency-Key": []string{idempotencyKey}}
	}
	var order models.Order
	err := c.mutate(ctx, http.MethodPost, PathOrders, in, &order, header, PathAdminOrders, PathDashboard)
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (c *Client) ListOrders(ctx context.Context, q ListQuery) (*models.Page[models.Order], error) {
	var page models.Page[models.Order]
	if err := c.get(ctx, PathAdminOrders, q.values(), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *Client) GetOrder(ctx context.Context, id int64) (*models.OrderDetail, error) {
	var detail models.OrderDetail
	if err := c.get(ctx, idPath(PathAdminOrders, id), nil, &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

func (c *Client) UpdateOrderStatus(ctx context.Context, id int64, status string) (*models.Order, error) {
	var order models.Order
	in := models.OrderStatusInput{Status: status}
	err := c.mutate(ctx, http.MethodPatch, idPath(PathAdminOrders, id)+"/status", in, &order, nil, PathAdminOrders, PathDashboard)
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (c *Client) DeleteOrder(ctx context.Context, id int64) error {
	return c.mutate(ctx, http.MethodDelete, idPath(PathAdminOrders, id), nil, nil, nil, PathAdminOrders, PathDashboard)
}

func (c *Client) Dashboard(ctx context.Context) (*models.DashboardStats, error) {
	var stats models.DashboardStats
	if err := c.get(ctx, PathDashboard, nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// Auth. Responses cached under one identity must not leak to another, so
// login and logout both start from an empty cache.

func (c *Client) Login(ctx context.Context, username, password string) (*models.Identity, error) {
	var identity models.Identity
	in := models.LoginInput{Username: username, Password: password}
	if err := c.mutate(ctx, http.MethodPost, PathLogin, in, &identity, nil); err != nil {
		return nil, err
	}
	c.ClearCache()
	return &identity, nil
}

func (c *Client) Logout(ctx context.Context) error {
	err := c.mutate(ctx, http.MethodPost, PathLogout, nil, nil, nil)
	c.ClearCache()
	return err
}

// Me returns the signed-in admin. It is never cached.
func (c *Client) Me(ctx context.Context) (*models.Identity, error) {
	body, err := c.do(ctx, http.MethodGet, PathMe, nil, nil)
	if err != nil {
		return nil, err
	}
	var identity models.Identity
	if err := decode(body, &identity); err != nil {
		return nil, err
	}
	return &identity, nil
}
