package notify

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xkilldash9x/netlogin/api/schemas"
)

// Dispatcher renders a summary once and fans it out to every enabled channel.
type Dispatcher struct {
	renderer *Renderer
	channels []Channel
	logger   *zap.Logger
}

var _ schemas.Notifier = (*Dispatcher)(nil)

// NewDispatcher creates a Dispatcher over channels. Disabled channels are skipped at send time.
func NewDispatcher(renderer *Renderer, logger *zap.Logger, channels ...Channel) *Dispatcher {
	return &Dispatcher{renderer: renderer, channels: channels, logger: logger.Named("notify")}
}

// Dispatch delivers the rendered report and waits for every channel to settle.
// Delivery failures are logged and never returned.
func (d *Dispatcher) Dispatch(ctx context.Context, summary schemas.RunSummary) {
	d.Deliver(ctx, d.renderer.Render(summary))
}

// Deliver sends report concurrently and returns each enabled channel's outcome.
func (d *Dispatcher) Deliver(ctx context.Context, report string) map[string]error {
	var (
		mu      sync.Mutex
		results = make(map[string]error, len(d.channels))
		g       errgroup.Group
	)

	for _, ch := range d.channels {
		if !ch.Enabled() {
			d.logger.Info("Channel not configured, skipping.", zap.String("channel", ch.Name()))
			continue
		}
		ch := ch
		g.Go(func() error {
			err := ch.Send(ctx, report)
			mu.Lock()
			results[ch.Name()] = err
			mu.Unlock()

			if err != nil {
				d.logger.Error("Notification delivery failed.", append(deliveryFields(err), zap.String("channel", ch.Name()))...)
			} else {
				d.logger.Info("Notification delivered.", zap.String("channel", ch.Name()))
			}
			// Never fail the group: one channel must not cancel or hide another.
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// Configured lists the names of enabled channels, in order.
func (d *Dispatcher) Configured() []string {
	var names []string
	for _, ch := range d.channels {
		if ch.Enabled() {
			names = append(names, ch.Name())
		}
	}
	return names
}
