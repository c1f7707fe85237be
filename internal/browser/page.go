// File: internal/browser/page.go
package browser

import (
	"context"
	"errors"
	"time"
)

// ErrSessionClosed is returned by Page operations after Close.
var ErrSessionClosed = errors.New("browser session is closed")

// Page is the narrow set of interactions the login flow needs from a browser tab.
// Selectors are evaluated with chromedp.BySearch, so CSS and XPath are both
// accepted. When several nodes match, Click and Fill act on the first visible
// one in document order and leave the others alone.
type Page interface {
	ID() string
	Navigate(ctx context.Context, url string) error
	Click(ctx context.Context, selector string) error
	Fill(ctx context.Context, selector, value string) error
	Content(ctx context.Context) (string, error)
	// WaitNetworkIdle returns once no request has been in flight for quiet.
	WaitNetworkIdle(ctx context.Context, quiet time.Duration) error
	// Close releases the tab and the browser process. Safe to call more than once.
	Close() error
}

// Factory launches a fresh, isolated browser for every page it hands out.
type Factory interface {
	NewPage(ctx context.Context) (Page, error)
}
