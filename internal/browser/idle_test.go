package browser

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func TestIdleTracker_CountsInflight(t *testing.T) {
	tr := newIdleTracker()

	tr.handle(&network.EventRequestWillBeSent{RequestID: "1"})
	tr.handle(&network.EventRequestWillBeSent{RequestID: "2"})
	n, _ := tr.snapshot()
	assert.Equal(t, 2, n)

	tr.handle(&network.EventLoadingFinished{RequestID: "1"})
	tr.handle(&network.EventLoadingFailed{RequestID: "2"})
	n, _ = tr.snapshot()
	assert.Equal(t, 0, n)

	// Unrelated events do not touch the activity clock.
	_, before := tr.snapshot()
	tr.handle(&network.EventResponseReceived{RequestID: "3"})
	_, after := tr.snapshot()
	assert.Equal(t, before, after)
}

func TestIdleTracker_Wait(t *testing.T) {
	t.Run("returns once quiet", func(t *testing.T) {
		clock := &fakeClock{t: time.Unix(0, 0)}
		tr := newIdleTracker()
		tr.now = clock.Now
		tr.lastActivity = clock.Now()

		clock.Advance(time.Second)
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		require.NoError(t, tr.wait(ctx, 100*time.Millisecond))
	})

	t.Run("times out while requests are in flight", func(t *testing.T) {
		tr := newIdleTracker()
		tr.handle(&network.EventRequestWillBeSent{RequestID: "long-poll"})

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		err := tr.wait(ctx, 20*time.Millisecond)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("waits for quiet period after last request", func(t *testing.T) {
		tr := newIdleTracker()
		tr.handle(&network.EventRequestWillBeSent{RequestID: "a"})

		go func() {
			time.Sleep(30 * time.Millisecond)
			tr.handle(&network.EventLoadingFinished{RequestID: "a"})
		}()

		start := time.Now()
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		require.NoError(t, tr.wait(ctx, 40*time.Millisecond))
		assert.GreaterOrEqual(t, time.Since(start), 70*time.Millisecond)
	})
}
