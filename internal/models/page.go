package models

// ListOptions selects a page of a list. A zero Limit means no paging.
type ListOptions struct {
	Page  int
	Limit int
}

// Paged reports whether a page window was requested
func (o ListOptions) Paged() bool {
	return o.Limit > 0
}

// Offset returns the row offset of the requested page
func (o ListOptions) Offset() int {
	if !o.Paged() || o.Page <= 1 {
		return 0
	}
	return (o.Page - 1) * o.Limit
}

// ProductFilter narrows ListProducts
type ProductFilter struct {
	ListOptions
	Search     string
	CategoryID *int64
}

// AnnouncementFilter narrows ListAnnouncements
type AnnouncementFilter struct {
	ListOptions
	Search string
}

// OrderFilter narrows ListOrders
type OrderFilter struct {
	ListOptions
	Status string
}

// Pagination describes where a page sits in the full result set
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// Page is the single list envelope returned by every paginated endpoint
type Page[T any] struct {
	Data       []T        `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// NewPage wraps rows with pagination metadata. When opts is unpaged the
// page spans the whole result.
func NewPage[T any](rows []T, total int, opts ListOptions) Page[T] {
	if rows == nil {
		rows = []T{}
	}
	p := Pagination{Page: 1, Limit: total, Total: total, TotalPages: 1}
	if opts.Paged() {
		p.Page = opts.Page
		if p.Page < 1 {
			p.Page = 1
		}
		p.Limit = opts.Limit
		p.TotalPages = (total + opts.Limit - 1) / opts.Limit
	}
	if total == 0 {
		p.TotalPages = 0
	}
	return Page[T]{Data: rows, Pagination: p}
}
