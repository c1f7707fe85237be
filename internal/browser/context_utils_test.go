package browser

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
)

type ctxKey struct{}

func TestCombineContext(t *testing.T) {
	defer goleak.VerifyNone(t)

	t.Run("inherits values from primary", func(t *testing.T) {
		primary := context.WithValue(context.Background(), ctxKey{}, "cdp-target")
		combined, cancel := CombineContext(primary, context.Background())
		defer cancel()
		assert.Equal(t, "cdp-target", combined.Value(ctxKey{}))
	})

	t.Run("cancelled by secondary", func(t *testing.T) {
		secondary, cancelSecondary := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancelSecondary()

		combined, cancel := CombineContext(context.Background(), secondary)
		defer cancel()

		select {
		case <-combined.Done():
		case <-time.After(time.Second):
			t.Fatal("combined context was not cancelled by secondary")
		}
	})

	t.Run("cancelled by primary", func(t *testing.T) {
		primary, cancelPrimary := context.WithCancel(context.Background())
		combined, cancel := CombineContext(primary, context.Background())
		defer cancel()

		cancelPrimary()
		<-combined.Done()
		assert.ErrorIs(t, combined.Err(), context.Canceled)
	})

	t.Run("cancel func releases secondary hook", func(t *testing.T) {
		secondary, cancelSecondary := context.WithCancel(context.Background())
		defer cancelSecondary()

		combined, cancel := CombineContext(context.Background(), secondary)
		cancel()
		assert.Error(t, combined.Err())
	})
}
