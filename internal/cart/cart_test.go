package cart

import (
	"math"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"storefront/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	mug = models.Product{ID: 1, Title: "Mug", Price: 1250}
	tea = models.Product{ID: 2, Title: "Tea", Price: 300}
)

func TestAddTwiceIncrementsQuantity(t *testing.T) {
	c := New(&MemoryStorage{})
	require.NoError(t, c.Add(mug))
	require.NoError(t, c.Add(mug))

	items := c.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity)
	assert.Equal(t, int64(2500), c.Total())
	assert.Equal(t, 2, c.Count())
}

func TestTotalTracksEveryOperation(t *testing.T) {
	c := New(&MemoryStorage{})
	check := func() {
		var want int64
		for _, item := range c.Items() {
			want += item.Product.Price * int64(item.Quantity)
		}
		assert.Equal(t, want, c.Total())
	}

	require.NoError(t, c.Add(mug))
	check()
	require.NoError(t, c.Add(tea))
	check()
	require.NoError(t, c.UpdateQuantity(tea.ID, 4))
	check()
	assert.Equal(t, int64(1250+5*300), c.Total())
	require.NoError(t, c.Remove(mug.ID))
	check()
	assert.Equal(t, 5, c.Count())
	require.NoError(t, c.Clear())
	assert.Zero(t, c.Total())
	assert.Zero(t, c.Count())
}

func TestTotalNeverWraps(t *testing.T) {
	c := New(&MemoryStorage{})
	huge := models.Product{ID: 9, Title: "Yacht", Price: 1 << 61}

	require.NoError(t, c.Add(huge))
	require.NoError(t, c.UpdateQuantity(huge.ID, 1))
	assert.ErrorIs(t, c.UpdateQuantity(huge.ID, 2), ErrTotalTooLarge)
	assert.Equal(t, 2, c.Items()[0].Quantity)

	assert.ErrorIs(t, c.Add(models.Product{ID: 10, Title: "Dinghy", Price: math.MaxInt64}), ErrTotalTooLarge)
	assert.Len(t, c.Items(), 1)
	assert.Equal(t, int64(1<<62), c.Total())
}

func TestRestoredCartWithWrappingTotalStartsEmpty(t *testing.T) {
	store := &MemoryStorage{}
	require.NoError(t, store.Save([]Item{{Product: models.Product{ID: 1, Price: 1 << 62}, Quantity: 4}}))

	c := New(store)
	assert.Empty(t, c.Items())
	assert.Zero(t, c.Total())
}

func TestQuantityClampsAtOne(t *testing.T) {
	c := New(&MemoryStorage{})
	require.NoError(t, c.Add(mug))
	require.NoError(t, c.UpdateQuantity(mug.ID, -5))
	assert.Equal(t, 1, c.Items()[0].Quantity)

	require.NoError(t, c.UpdateQuantity(999, 3))
	assert.Equal(t, 1, c.Count())
}

func TestEveryChangeIsPersisted(t *testing.T) {
	storage := &MemoryStorage{}
	c := New(storage)
	require.NoError(t, c.Add(mug))
	require.NoError(t, c.Add(tea))
	require.NoError(t, c.UpdateQuantity(mug.ID, 1))
	assert.Equal(t, 3, storage.Saves())

	restored := New(storage)
	assert.Equal(t, c.Items(), restored.Items())
}

func TestFileStorageRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cart", "cart.json")

	c := New(NewFileStorage(path))
	assert.Empty(t, c.Items())
	require.NoError(t, c.Add(mug))
	require.NoError(t, c.Add(mug))
	require.NoError(t, c.Add(tea))

	restored := New(NewFileStorage(path))
	require.Len(t, restored.Items(), 2)
	assert.Equal(t, "Mug", restored.Items()[0].Product.Title)
	assert.Equal(t, 2, restored.Items()[0].Quantity)
}

func TestCorruptFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cart.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	c := New(NewFileStorage(path))
	assert.Empty(t, c.Items())
}

func TestOrderInputMatchesCart(t *testing.T) {
	c := New(&MemoryStorage{})
	require.NoError(t, c.Add(mug))
	require.NoError(t, c.Add(tea))
	require.NoError(t, c.Add(tea))

	in := c.OrderInput(Customer{Name: "Ann", Phone: "5551234567"})
	require.Len(t, in.Items, 2)
	assert.Equal(t, c.Total(), *in.Total)
	assert.Equal(t, int64(2), *in.Items[1].ProductID)
	assert.Equal(t, 2, in.Items[1].Quantity)
	assert.Nil(t, in.CustomerEmail)
}

func TestCheckoutURLCarriesSummary(t *testing.T) {
	c := New(&MemoryStorage{})
	require.NoError(t, c.Add(mug))

	raw, err := c.CheckoutURL("https://t.me/permumland")
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "t.me", u.Host)
	assert.Equal(t, "Mug x1 = 12.50\nTotal: 12.50", u.Query().Get("text"))
}
