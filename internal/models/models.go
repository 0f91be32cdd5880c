package models

import "time"

// Product represents a catalog entry. Price is in minor currency units.
type Product struct {
	ID          int64     `db:"id" json:"id"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	Price       int64     `db:"price" json:"price"`
	Image       *string   `db:"image" json:"image"`
	CategoryID  *int64    `db:"category_id" json:"categoryId"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}

// Category groups products on the storefront
type Category struct {
	ID          int64     `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Slug        string    `db:"slug" json:"slug"`
	Description *string   `db:"description" json:"description"`
	Order       int       `db:"sort_order" json:"order"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}

// Announcement is a storefront carousel slide
type Announcement struct {
	ID          int64     `db:"id" json:"id"`
	Title       string    `db:"title" json:"title"`
	Description *string   `db:"description" json:"description"`
	ImageURL    string    `db:"image_url" json:"imageUrl"`
	ButtonText  *string   `db:"button_text" json:"buttonText"`
	ButtonLink  *string   `db:"button_link" json:"buttonLink"`
	IsActive    bool      `db:"is_active" json:"isActive"`
	Order       int       `db:"sort_order" json:"order"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}

// AdminUser is a back-office account
type AdminUser struct {
	ID           int64     `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
}

// Identity is the public view of an authenticated admin
type Identity struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// Order represents a customer order
type Order struct {
	ID            int64     `db:"id" json:"id"`
	CustomerName  string    `db:"customer_name" json:"customerName"`
	CustomerPhone string    `db:"customer_phone" json:"customerPhone"`
	CustomerEmail *string   `db:"customer_email" json:"customerEmail"`
	Total         int64     `db:"total" json:"total"`
	Status        string    `db:"status" json:"status"`
	Notes         *string   `db:"notes" json:"notes"`
	CreatedAt     time.Time `db:"created_at" json:"createdAt"`
}

// OrderItem is an immutable line of an order. ProductTitle and Price are
// copied from the product when the order is placed.
type OrderItem struct {
	ID           int64  `db:"id" json:"id"`
	OrderID      int64  `db:"order_id" json:"orderId"`
	ProductID    *int64 `db:"product_id" json:"productId"`
	ProductTitle string `db:"product_title" json:"productTitle"`
	Price        int64  `db:"price" json:"price"`
	Quantity     int    `db:"quantity" json:"quantity"`
}

// OrderDetail is an order together with its items
type OrderDetail struct {
	Order Order       `json:"order"`
	Items []OrderItem `json:"items"`
}

// DashboardStats summarizes the back-office landing page
type DashboardStats struct {
	TotalProducts       int   `db:"total_products" json:"totalProducts"`
	ActiveAnnouncements int   `db:"active_announcements" json:"activeAnnouncements"`
	TotalOrders         int   `db:"total_orders" json:"totalOrders"`
	RevenueToday        int64 `db:"revenue_today" json:"revenueToday"`
}

// Order statuses
const (
	OrderStatusPending   = "pending"
	OrderStatusConfirmed = "confirmed"
	OrderStatusDelivered = "delivered"
	OrderStatusCancelled = "cancelled"
)

// OrderStatuses lists every valid order status
var OrderStatuses = []string{
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

// ValidOrderStatus reports whether status is one of OrderStatuses
func ValidOrderStatus(status string) bool {
	for _, s := range OrderStatuses {
		if s == status {
			return true
		}
	}
	return false
}
