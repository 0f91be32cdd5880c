package session

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	data map[string][]byte
	ttls map[string]time.Duration
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (b *fakeBackend) SetJSON(_ context.Context, key string, v interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	b.data[key] = raw
	b.ttls[key] = ttl
	return nil
}

func (b *fakeBackend) GetJSON(_ context.Context, key string, v interface{}) (bool, error) {
	raw, ok := b.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, v)
}

func (b *fakeBackend) Delete(_ context.Context, key string) error {
	delete(b.data, key)
	return nil
}

func TestRedisStoreRoundTrip(t *testing.T) {
	backend := newFakeBackend()
	store := NewRedisStore(backend, time.Hour)
	ctx := context.Background()

	sess, err := store.Create(ctx, 7, "admin")
	require.NoError(t, err)
	assert.NotEmpty(t, sess.ID)
	assert.Equal(t, time.Hour, backend.ttls["session:"+sess.ID])

	got, err := store.Get(ctx, sess.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, int64(7), got.UserID)
	assert.Equal(t, "admin", got.Username)

	require.NoError(t, store.Delete(ctx, sess.ID))
	got, err = store.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	assert.NoError(t, store.Delete(ctx, sess.ID))
}

func TestRedisStoreUnknownID(t *testing.T) {
	store := NewRedisStore(newFakeBackend(), time.Hour)

	got, err := store.Get(context.Background(), "nope")
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestMemoryStoreExpiry(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	store.SetClock(func() time.Time { return now })
	ctx := context.Background()

	sess, err := store.Create(ctx, 1, "admin")
	require.NoError(t, err)

	got, err := store.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.NotNil(t, got)

	now = now.Add(2 * time.Minute)
	got, err = store.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Zero(t, store.Len())
}

func TestSessionIDsAreUnique(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		sess, err := store.Create(context.Background(), 1, "admin")
		require.NoError(t, err)
		assert.False(t, seen[sess.ID])
		seen[sess.ID] = true
	}
}
