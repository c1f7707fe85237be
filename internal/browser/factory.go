// File: internal/browser/factory.go
package browser

import (
	"context"
	"fmt"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xkilldash9x/netlogin/internal/config"
)

// ChromeFactory launches one Chrome process per page so no cookies or storage
// leak between accounts.
type ChromeFactory struct {
	cfg    config.BrowserConfig
	logger *zap.Logger
}

var _ Factory = (*ChromeFactory)(nil)

// NewChromeFactory creates a factory for the given browser settings.
func NewChromeFactory(cfg config.BrowserConfig, logger *zap.Logger) *ChromeFactory {
	return &ChromeFactory{cfg: cfg, logger: logger.Named("browser")}
}

// NewPage starts a browser and returns its first tab. The browser lives until
// the page is closed or ctx is cancelled.
func (f *ChromeFactory) NewPage(ctx context.Context) (Page, error) {
	id := uuid.NewString()
	logger := f.logger.With(zap.String("session_id", id))

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, DefaultAllocatorOptions(f.cfg)...)
	tabCtx, tabCancel := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(logger.Sugar().Debugf),
		chromedp.WithErrorf(logger.Sugar().Debugf),
	)

	tracker := newIdleTracker()
	chromedp.ListenTarget(tabCtx, tracker.handle)

	// The first Run launches the browser; it must use the tab context itself so
	// the browser is not bound to a shorter deadline.
	if err := chromedp.Run(tabCtx, network.Enable()); err != nil {
		tabCancel()
		allocCancel()
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}
	logger.Debug("Browser launched.")

	release := func() error {
		err := chromedp.Cancel(tabCtx)
		tabCancel()
		allocCancel()
		return err
	}
	return newSession(id, tabCtx, tracker, release, f.logger), nil
}
