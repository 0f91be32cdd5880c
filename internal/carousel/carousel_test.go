package carousel

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNextAndPrevWrap(t *testing.T) {
	c := New(3, time.Second, nil)

	assert.Equal(t, 1, c.Next())
	assert.Equal(t, 2, c.Next())
	assert.Equal(t, 0, c.Next())
	assert.Equal(t, 2, c.Prev())
}

func TestSingleSlideNeverMoves(t *testing.T) {
	var changes int32
	c := New(1, time.Second, func(int) { atomic.AddInt32(&changes, 1) })

	assert.Equal(t, 0, c.Next())
	assert.Equal(t, 0, c.Prev())
	assert.Zero(t, atomic.LoadInt32(&changes))

	empty := New(0, time.Second, nil)
	assert.Equal(t, 0, empty.Next())
}

func TestSetLenWrapsIndex(t *testing.T) {
	c := New(5, time.Second, nil)
	for i := 0; i < 4; i++ {
		c.Next()
	}
	assert.Equal(t, 4, c.Current())

	c.SetLen(3)
	assert.Equal(t, 1, c.Current())

	c.SetLen(0)
	assert.Equal(t, 0, c.Current())
}

func TestRunAdvancesUntilCancelled(t *testing.T) {
	var changes int32
	c := New(2, 5*time.Millisecond, func(int) { atomic.AddInt32(&changes, 1) })

	stop := c.Start(context.Background())
	assert.Eventually(t, func() bool { return atomic.LoadInt32(&changes) >= 3 }, time.Second, time.Millisecond)
	stop()

	after := atomic.LoadInt32(&changes)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, after, atomic.LoadInt32(&changes))
}

func TestDefaultInterval(t *testing.T) {
	c := New(2, 0, nil)
	assert.Equal(t, DefaultInterval, c.interval)
}
