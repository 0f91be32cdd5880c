// Package memstore is an in-process implementation of the storefront
// repository. It mirrors the PostgreSQL store's ordering, constraint and
// not-found behavior and is used by tests and single-node development runs.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"storefront/internal/models"
	"storefront/internal/store"
)

type Store struct {
	mu  sync.RWMutex
	seq int64
	now func() time.Time

	products      map[int64]models.Product
	categories    map[int64]models.Category
	announcements map[int64]models.Announcement
	orders        map[int64]models.Order
	items         map[int64]models.OrderItem
	users         map[int64]models.AdminUser
}

// New creates an empty store
func New() *Store {
	return &Store{
		now:           time.Now,
		products:      make(map[int64]models.Product),
		categories:    make(map[int64]models.Category),
		announcements: make(map[int64]models.Announcement),
		orders:        make(map[int64]models.Order),
		items:         make(map[int64]models.OrderItem),
		users:         make(map[int64]models.AdminUser),
	}
}

// SetClock replaces the creation timestamp source
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *Store) Ping(ctx context.Context) error { return ctx.Err() }

func (s *Store) nextID() int64 {
	s.seq++
	return s.seq
}

func matches(title, search string) bool {
	return search == "" || strings.Contains(strings.ToLower(title), strings.ToLower(search))
}

func window[T any](rows []T, opts models.ListOptions) []T {
	if !opts.Paged() {
		return rows
	}
	start := opts.Offset()
	if start >= len(rows) {
		return []T{}
	}
	end := start + opts.Limit
	if end > len(rows) {
		end = len(rows)
	}
	return rows[start:end]
}

func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

func optionalPtr(v *string) *string {
	if v == nil {
		return nil
	}
	return optional(*v)
}

func (s *Store) checkCategory(id *int64) error {
	if id == nil {
		return nil
	}
	if _, ok := s.categories[*id]; !ok {
		return fmt.Errorf("%w: category %d", store.ErrInvalidReference, *id)
	}
	return nil
}

// Products

func (s *Store) ListProducts(_ context.Context, filter models.ProductFilter) ([]models.Product, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows := []models.Product{}
	for _, p := range s.products {
		if !matches(p.Title, filter.Search) {
			continue
		}
		if filter.CategoryID != nil && (p.CategoryID == nil || *p.CategoryID != *filter.CategoryID) {
			continue
		}
		rows = append(rows, p)
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].CreatedAt.Equal(rows[j].CreatedAt) {
			return rows[i].CreatedAt.After(rows[j].CreatedAt)
		}
		return rows[i].ID > rows[j].ID
	})
	return window(rows, filter.ListOptions), len(rows), nil
}

func (s *Store) GetProduct(_ context.Context, id int64) (*models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.products[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (s *Store) CreateProduct(_ context.Context, in models.ProductInput) (*models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkCategory(in.CategoryID); err != nil {
		return nil, err
	}
	p := models.Product{
		ID:          s.nextID(),
		Title:       in.Title,
		Description: in.Description,
		Price:       *in.Price,
		CategoryID:  in.CategoryID,
		CreatedAt:   s.now(),
	}
	p.Image = optionalPtr(in.Image)
	s.products[p.ID] = p
	return &p, nil
}

func (s *Store) UpdateProduct(_ context.Context, id int64, patch models.ProductPatch) (*models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[id]
	if !ok {
		return nil, nil
	}
	if err := s.checkCategory(patch.CategoryID); err != nil {
		return nil, err
	}
	if patch.Title != nil {
		p.Title = *patch.Title
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	if patch.Image != nil {
		p.Image = optional(*patch.Image)
	}
	if patch.CategoryID != nil {
		p.CategoryID = patch.CategoryID
	}
	s.products[id] = p
	return &p, nil
}

func (s *Store) DeleteProduct(_ context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[id]; !ok {
		return false, nil
	}
	delete(s.products, id)
	for itemID, item := range s.items {
		if item.ProductID != nil && *item.ProductID == id {
			item.ProductID = nil
			s.items[itemID] = item
		}
	}
	return true, nil
}

// Categories

func (s *Store) ListCategories(_ context.Context) ([]models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows := []models.Category{}
	for _, c := range s.categories {
		rows = append(rows, c)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Order != rows[j].Order {
			return rows[i].Order < rows[j].Order
		}
		return rows[i].ID < rows[j].ID
	})
	return rows, nil
}

func (s *Store) GetCategory(_ context.Context, id int64) (*models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.categories[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (s *Store) slugTaken(slug string, except int64) bool {
	for _, c := range s.categories {
		if c.Slug == slug && c.ID != except {
			return true
		}
	}
	return false
}

func (s *Store) CreateCategory(_ context.Context, in models.CategoryInput) (*models.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.slugTaken(in.Slug, 0) {
		return nil, fmt.Errorf("%w: slug %q", store.ErrConflict, in.Slug)
	}
	c := models.Category{
		ID:          s.nextID(),
		Name:        in.Name,
		Slug:        in.Slug,
		Description: optionalPtr(in.Description),
		Order:       in.Order,
		CreatedAt:   s.now(),
	}
	s.categories[c.ID] = c
	return &c, nil
}

func (s *Store) UpdateCategory(_ context.Context, id int64, patch models.CategoryPatch) (*models.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.categories[id]
	if !ok {
		return nil, nil
	}
	if patch.Slug != nil && s.slugTaken(*patch.Slug, id) {
		return nil, fmt.Errorf("%w: slug %q", store.ErrConflict, *patch.Slug)
	}
	if patch.Name != nil {
		c.Name = *patch.Name
	}
	if patch.Slug != nil {
		c.Slug = *patch.Slug
	}
	if patch.Description != nil {
		c.Description = optional(*patch.Description)
	}
	if patch.Order != nil {
		c.Order = *patch.Order
	}
	s.categories[id] = c
	return &c, nil
}

func (s *Store) DeleteCategory(_ context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.categories[id]; !ok {
		return false, nil
	}
	delete(s.categories, id)
	for pid, p := range s.products {
		if p.CategoryID != nil && *p.CategoryID == id {
			p.CategoryID = nil
			s.products[pid] = p
		}
	}
	return true, nil
}

// Announcements

func sortAnnouncements(rows []models.Announcement) {
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Order != rows[j].Order {
			return rows[i].Order < rows[j].Order
		}
		return rows[i].ID < rows[j].ID
	})
}

func (s *Store) ListAnnouncements(_ context.Context, filter models.AnnouncementFilter) ([]models.Announcement, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows := []models.Announcement{}
	for _, a := range s.announcements {
		if matches(a.Title, filter.Search) {
			rows = append(rows, a)
		}
	}
	sortAnnouncements(rows)
	return window(rows, filter.ListOptions), len(rows), nil
}

func (s *Store) ListActiveAnnouncements(_ context.Context) ([]models.Announcement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows := []models.Announcement{}
	for _, a := range s.announcements {
		if a.IsActive {
			rows = append(rows, a)
		}
	}
	sortAnnouncements(rows)
	return rows, nil
}

func (s *Store) GetAnnouncement(_ context.Context, id int64) (*models.Announcement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.announcements[id]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (s *Store) CreateAnnouncement(_ context.Context, in models.AnnouncementInput) (*models.Announcement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a := models.Announcement{
		ID:          s.nextID(),
		Title:       in.Title,
		Description: optionalPtr(in.Description),
		ImageURL:    in.ImageURL,
		ButtonText:  optionalPtr(in.ButtonText),
		ButtonLink:  optionalPtr(in.ButtonLink),
		IsActive:    true,
		Order:       in.Order,
		CreatedAt:   s.now(),
	}
	if in.IsActive != nil {
		a.IsActive = *in.IsActive
	}
	s.announcements[a.ID] = a
	return &a, nil
}

func (s *Store) UpdateAnnouncement(_ context.Context, id int64, patch models.AnnouncementPatch) (*models.Announcement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.announcements[id]
	if !ok {
		return nil, nil
	}
	if patch.Title != nil {
		a.Title = *patch.Title
	}
	if patch.Description != nil {
		a.Description = optional(*patch.Description)
	}
	if patch.ImageURL != nil {
		a.ImageURL = *patch.ImageURL
	}
	if patch.ButtonText != nil {
		a.ButtonText = optional(*patch.ButtonText)
	}
	if patch.ButtonLink != nil {
		a.ButtonLink = optional(*patch.ButtonLink)
	}
	if patch.IsActive != nil {
		a.IsActive = *patch.IsActive
	}
	if patch.Order != nil {
		a.Order = *patch.Order
	}
	s.announcements[id] = a
	return &a, nil
}

func (s *Store) DeleteAnnouncement(_ context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.announcements[id]; !ok {
		return false, nil
	}
	delete(s.announcements, id)
	return true, nil
}

// Orders

func (s *Store) ListOrders(_ context.Context, filter models.OrderFilter) ([]models.Order, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows := []models.Order{}
	for _, o := range s.orders {
		if filter.Status == "" || o.Status == filter.Status {
			rows = append(rows, o)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].CreatedAt.Equal(rows[j].CreatedAt) {
			return rows[i].CreatedAt.After(rows[j].CreatedAt)
		}
		return rows[i].ID > rows[j].ID
	})
	return window(rows, filter.ListOptions), len(rows), nil
}

func (s *Store) GetOrder(_ context.Context, id int64) (*models.Order, []models.OrderItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.orders[id]
	if !ok {
		return nil, nil, nil
	}
	items := []models.OrderItem{}
	for _, item := range s.items {
		if item.OrderID == id {
			items = append(items, item)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return &o, items, nil
}

func (s *Store) CreateOrder(_ context.Context, order models.Order, items []models.OrderItem) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, item := range items {
		if item.ProductID == nil {
			continue
		}
		if _, ok := s.products[*item.ProductID]; !ok {
			return nil, fmt.Errorf("%w: product %d", store.ErrInvalidReference, *item.ProductID)
		}
	}

	order.ID = s.nextID()
	order.CreatedAt = s.now()
	if order.Status == "" {
		order.Status = models.OrderStatusPending
	}
	s.orders[order.ID] = order
	for _, item := range items {
		item.ID = s.nextID()
		item.OrderID = order.ID
		s.items[item.ID] = item
	}
	return &order, nil
}

func (s *Store) UpdateOrderStatus(_ context.Context, id int64, status string) (*models.Order, error) {
	if !models.ValidOrderStatus(status) {
		return nil, fmt.Errorf("%w: %q", store.ErrInvalidStatus, status)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[id]
	if !ok {
		return nil, nil
	}
	o.Status = status
	s.orders[id] = o
	return &o, nil
}

func (s *Store) DeleteOrder(_ context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.orders[id]; !ok {
		return false, nil
	}
	delete(s.orders, id)
	for itemID, item := range s.items {
		if item.OrderID == id {
			delete(s.items, itemID)
		}
	}
	return true, nil
}

// ItemCount returns the number of stored order items across all orders
func (s *Store) ItemCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

func (s *Store) DashboardStats(_ context.Context, since time.Time) (*models.DashboardStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := models.DashboardStats{
		TotalProducts: len(s.products),
		TotalOrders:   len(s.orders),
	}
	for _, a := range s.announcements {
		if a.IsActive {
			stats.ActiveAnnouncements++
		}
	}
	for _, o := range s.orders {
		if !o.CreatedAt.Before(since) {
			stats.RevenueToday += o.Total
		}
	}
	return &stats, nil
}

// Users

func (s *Store) GetUserByUsername(_ context.Context, username string) (*models.AdminUser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, nil
}

func (s *Store) GetUserByID(_ context.Context, id int64) (*models.AdminUser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (s *Store) CreateUser(_ context.Context, username, passwordHash string) (*models.AdminUser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Username == username {
			return nil, fmt.Errorf("%w: username %q", store.ErrConflict, username)
		}
	}
	u := models.AdminUser{
		ID:           s.nextID(),
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    s.now(),
	}
	s.users[u.ID] = u
	return &u, nil
}
