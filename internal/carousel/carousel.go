// Package carousel drives the storefront announcement slider: an index
// that advances on a fixed interval until its context is cancelled.
package carousel

import (
	"context"
	"sync"
	"time"
)

// DefaultInterval is how long each slide stays up
const DefaultInterval = 5 * time.Second

type Carousel struct {
	mu       sync.Mutex
	index    int
	length   int
	interval time.Duration
	onChange func(index int)
}

// New creates a carousel over length slides. A non-positive interval uses
// DefaultInterval. onChange, if set, runs after every index change.
func New(length int, interval time.Duration, onChange func(index int)) *Carousel {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if length < 0 {
		length = 0
	}
	return &Carousel{length: length, interval: interval, onChange: onChange}
}

// Current returns the visible slide index
func (c *Carousel) Current() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.index
}

// Len returns the number of slides
func (c *Carousel) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.length
}

// SetLen replaces the slide count, for example after the active
// announcements are refetched. The index wraps into range.
func (c *Carousel) SetLen(length int) {
	c.mu.Lock()
	if length < 0 {
		length = 0
	}
	c.length = length
	changed := false
	if length == 0 {
		changed = c.index != 0
		c.index = 0
	} else if c.index >= length {
		c.index %= length
		changed = true
	}
	idx := c.index
	c.mu.Unlock()

	if changed {
		c.notify(idx)
	}
}

// Next moves forward one slide, wrapping at the end
func (c *Carousel) Next() int {
	return c.step(1)
}

// Prev moves back one slide, wrapping at the start
func (c *Carousel) Prev() int {
	return c.step(-1)
}

func (c *Carousel) step(delta int) int {
	c.mu.Lock()
	if c.length <= 1 {
		idx := c.index
		c.mu.Unlock()
		return idx
	}
	c.index = ((c.index+delta)%c.length + c.length) % c.length
	idx := c.index
	c.mu.Unlock()

	c.notify(idx)
	return idx
}

func (c *Carousel) notify(idx int) {
	if c.onChange != nil {
		c.onChange(idx)
	}
}

// Run advances the carousel every interval until ctx is done. With one
// slide or none the ticks are no-ops.
func (c *Carousel) Run(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.Next()
		}
	}
}

// Start runs the carousel in its own goroutine and returns a stop function
// that cancels it and waits for it to exit
func (c *Carousel) Start(ctx context.Context) (stop func()) {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		c.Run(ctx)
	}()
	return func() {
		cancel()
		<-done
	}
}
