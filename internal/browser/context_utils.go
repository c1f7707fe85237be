// internal/browser/context_utils.go
package browser

import (
	"context"
)

// CombineContext returns a context that carries ctx1's values (the CDP target)
// and is cancelled when either ctx1 or ctx2 is done. ctx2 usually carries the
// per-operation deadline.
func CombineContext(ctx1, ctx2 context.Context) (context.Context, context.CancelFunc) {
	combined, cancel := context.WithCancel(ctx1)
	if ctx2.Done() == nil {
		return combined, cancel
	}
	stop := context.AfterFunc(ctx2, cancel)
	return combined, func() {
		stop()
		cancel()
	}
}
