package models

// Request payloads. Validation rules live in the binding tags and are
// enforced by go-playground/validator through gin's binding engine; the
// custom "slug" and "httpurl" rules are registered by package validate.

// ProductInput creates a product
type ProductInput struct {
	Title       string  `json:"title" binding:"required"`
	Description string  `json:"description" binding:"required"`
	Price       *int64  `json:"price" binding:"required,gte=0"`
	Image       *string `json:"image" binding:"omitempty,httpurl"`
	CategoryID  *int64  `json:"categoryId" binding:"omitempty,gt=0"`
}

// ProductPatch partially updates a product. Nil fields are left unchanged.
type ProductPatch struct {
	Title       *string `json:"title" binding:"omitempty,min=1"`
	Description *string `json:"description" binding:"omitempty,min=1"`
	Price       *int64  `json:"price" binding:"omitempty,gte=0"`
	Image       *string `json:"image" binding:"omitempty,httpurl"`
	CategoryID  *int64  `json:"categoryId" binding:"omitempty,gt=0"`
}

// CategoryInput creates a category
type CategoryInput struct {
	Name        string  `json:"name" binding:"required"`
	Slug        string  `json:"slug" binding:"required,slug"`
	Description *string `json:"description"`
	Order       int     `json:"order"`
}

// CategoryPatch partially updates a category
type CategoryPatch struct {
	Name        *string `json:"name" binding:"omitempty,min=1"`
	Slug        *string `json:"slug" binding:"omitempty,slug"`
	Description *string `json:"description"`
	Order       *int    `json:"order"`
}

// AnnouncementInput creates an announcement. ButtonText and ButtonLink are
// an optional pair.
type AnnouncementInput struct {
	Title       string  `json:"title" binding:"required"`
	Description *string `json:"description"`
	ImageURL    string  `json:"imageUrl" binding:"required,httpurl"`
	ButtonText  *string `json:"buttonText" binding:"required_with=ButtonLink"`
	ButtonLink  *string `json:"buttonLink" binding:"required_with=ButtonText"`
	IsActive    *bool   `json:"isActive"`
	Order       int     `json:"order"`
}

// AnnouncementPatch partially updates an announcement
type AnnouncementPatch struct {
	Title       *string `json:"title" binding:"omitempty,min=1"`
	Description *string `json:"description"`
	ImageURL    *string `json:"imageUrl" binding:"omitempty,httpurl"`
	ButtonText  *string `json:"buttonText"`
	ButtonLink  *string `json:"buttonLink"`
	IsActive    *bool   `json:"isActive"`
	Order       *int    `json:"order"`
}

// OrderItemInput is one cart line submitted with an order
type OrderItemInput struct {
	ProductID    *int64 `json:"productId" binding:"omitempty,gt=0"`
	ProductTitle string `json:"productTitle" binding:"required"`
	Price        int64  `json:"price" binding:"gte=0"`
	Quantity     int    `json:"quantity" binding:"required,min=1"`
}

// OrderInput places an order from the storefront
type OrderInput struct {
	CustomerName  string           `json:"customerName" binding:"required"`
	CustomerPhone string           `json:"customerPhone" binding:"required,min=10"`
	CustomerEmail *string          `json:"customerEmail"`
	Total         *int64           `json:"total" binding:"required,gte=0"`
	Notes         *string          `json:"notes"`
	Items         []OrderItemInput `json:"items" binding:"required,min=1,dive"`
}

// OrderStatusInput changes the status of an order
type OrderStatusInput struct {
	Status string `json:"status" binding:"required,oneof=pending confirmed delivered cancelled"`
}

// LoginInput carries admin credentials
type LoginInput struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}
