// Package cart is the storefront's client-side shopping cart. Lines are
// keyed by product id, kept in insertion order, and written to Storage
// after every change so the cart survives restarts.
package cart

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"strings"
	"sync"

	"storefront/internal/models"
	"storefront/internal/util"

	"go.uber.org/zap"
)

// Item is one cart line: a product snapshot and its quantity
type Item struct {
	Product  models.Product `json:"product"`
	Quantity int            `json:"quantity"`
}

// ErrTotalTooLarge is returned when a change would push the cart total
// past what an order can carry
var ErrTotalTooLarge = errors.New("cart total is too large")

// Subtotal is price times quantity. Lines held by a Cart always fit.
func (i Item) Subtotal() int64 {
	return i.Product.Price * int64(i.Quantity)
}

// sum returns the cart total, or false when a line or the running sum
// leaves the int64 range
func sum(items []Item) (int64, bool) {
	var total int64
	for _, item := range items {
		if item.Product.Price < 0 || item.Quantity < 0 {
			return 0, false
		}
		if item.Quantity > 0 && item.Product.Price > math.MaxInt64/int64(item.Quantity) {
			return 0, false
		}
		line := item.Product.Price * int64(item.Quantity)
		if total > math.MaxInt64-line {
			return 0, false
		}
		total += line
	}
	return total, true
}

type Cart struct {
	mu      sync.Mutex
	items   []Item
	storage Storage
}

// New restores the cart from storage. Unreadable storage starts an empty
// cart instead of failing.
func New(storage Storage) *Cart {
	c := &Cart{storage: storage}
	items, err := storage.Load()
	if err != nil {
		util.GetLogger().Warn("Discarding unreadable cart", zap.Error(err))
		items = nil
	}
	for _, item := range items {
		if item.Quantity >= 1 {
			c.items = append(c.items, item)
		}
	}
	if _, ok := sum(c.items); !ok {
		util.GetLogger().Warn("Discarding cart with an out-of-range total")
		c.items = nil
	}
	return c
}

func (c *Cart) index(productID int64) int {
	for i, item := range c.items {
		if item.Product.ID == productID {
			return i
		}
	}
	return -1
}

func (c *Cart) save() error {
	snapshot := make([]Item, len(c.items))
	copy(snapshot, c.items)
	if err := c.storage.Save(snapshot); err != nil {
		return fmt.Errorf("failed to persist cart: %w", err)
	}
	return nil
}

// Add puts product in the cart, or bumps its quantity by one if present
func (c *Cart) Add(product models.Product) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := make([]Item, len(c.items), len(c.items)+1)
	copy(next, c.items)
	if i := c.index(product.ID); i >= 0 {
		next[i].Quantity++
	} else {
		next = append(next, Item{Product: product, Quantity: 1})
	}
	if _, ok := sum(next); !ok {
		return ErrTotalTooLarge
	}
	c.items = next
	return c.save()
}

// Remove drops the line for productID
func (c *Cart) Remove(productID int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.index(productID)
	if i < 0 {
		return nil
	}
	c.items = append(c.items[:i], c.items[i+1:]...)
	return c.save()
}

// UpdateQuantity changes a line's quantity by delta, never below 1
func (c *Cart) UpdateQuantity(productID int64, delta int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.index(productID)
	if i < 0 {
		return nil
	}
	q := c.items[i].Quantity + delta
	if q < 1 {
		q = 1
	}
	prev := c.items[i].Quantity
	c.items[i].Quantity = q
	if _, ok := sum(c.items); !ok {
		c.items[i].Quantity = prev
		return ErrTotalTooLarge
	}
	return c.save()
}

// Clear empties the cart
func (c *Cart) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = nil
	return c.save()
}

// Items returns a copy of the cart lines
func (c *Cart) Items() []Item {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Item, len(c.items))
	copy(out, c.items)
	return out
}

// Total is the sum of price times quantity over all lines
func (c *Cart) Total() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	var total int64
	for _, item := range c.items {
		total += item.Subtotal()
	}
	return total
}

// Count is the number of units in the cart
func (c *Cart) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	var n int
	for _, item := range c.items {
		n += item.Quantity
	}
	return n
}

// Customer holds the contact details collected at checkout
type Customer struct {
	Name  string
	Phone string
	Email string
	Notes string
}

// OrderInput builds the order request for the current cart contents
func (c *Cart) OrderInput(customer Customer) models.OrderInput {
	items := c.Items()
	in := models.OrderInput{
		CustomerName:  customer.Name,
		CustomerPhone: customer.Phone,
		Items:         make([]models.OrderItemInput, 0, len(items)),
	}
	if customer.Email != "" {
		in.CustomerEmail = &customer.Email
	}
	if customer.Notes != "" {
		in.Notes = &customer.Notes
	}

	var total int64
	for _, item := range items {
		id := item.Product.ID
		in.Items = append(in.Items, models.OrderItemInput{
			ProductID:    &id,
			ProductTitle: item.Product.Title,
			Price:        item.Product.Price,
			Quantity:     item.Quantity,
		})
		total += item.Subtotal()
	}
	in.Total = &total
	return in
}

// Summary renders the cart as plain text for the checkout chat message
func (c *Cart) Summary() string {
	items := c.Items()
	var b strings.Builder
	var total int64
	for _, item := range items {
		fmt.Fprintf(&b, "%s x%d = %s\n", item.Product.Title, item.Quantity, formatPrice(item.Subtotal()))
		total += item.Subtotal()
	}
	fmt.Fprintf(&b, "Total: %s", formatPrice(total))
	return b.String()
}

// CheckoutURL returns the chat channel link with the cart summary attached
// as the "text" query parameter
func (c *Cart) CheckoutURL(channel string) (string, error) {
	u, err := url.Parse(channel)
	if err != nil {
		return "", fmt.Errorf("invalid checkout channel %q: %w", channel, err)
	}
	q := u.Query()
	q.Set("text", c.Summary())
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func formatPrice(minor int64) string {
	return fmt.Sprintf("%d.%02d", minor/100, minor%100)
}
