// File: internal/browser/session.go
package browser

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

const visibilityPollInterval = 100 * time.Millisecond

// Session is a Page backed by a dedicated chromedp browser.
type Session struct {
	id      string
	ctx     context.Context
	tracker *idleTracker
	logger  *zap.Logger

	// release tears down the tab, then the browser process.
	release   func() error
	closeOnce sync.Once
	closeErr  error
	closed    atomic.Bool
}

var _ Page = (*Session)(nil)

func newSession(id string, ctx context.Context, tracker *idleTracker, release func() error, logger *zap.Logger) *Session {
	return &Session{
		id:      id,
		ctx:     ctx,
		tracker: tracker,
		release: release,
		logger:  logger.With(zap.String("session_id", id)),
	}
}

// ID returns the session identifier used in logs.
func (s *Session) ID() string { return s.id }

// run executes actions on the session's target, bounded by ctx.
func (s *Session) run(ctx context.Context, actions ...chromedp.Action) error {
	if s.closed.Load() {
		return ErrSessionClosed
	}
	runCtx, cancel := CombineContext(s.ctx, ctx)
	defer cancel()

	err := chromedp.Run(runCtx, actions...)
	if err == nil {
		return nil
	}
	// Report the operational deadline rather than the derived cancellation.
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if s.ctx.Err() != nil {
		return fmt.Errorf("session terminated: %w", err)
	}
	return err
}

// Navigate loads url and waits for the load event.
func (s *Session) Navigate(ctx context.Context, url string) error {
	s.logger.Debug("Navigating.", zap.String("url", url))
	if err := s.run(ctx, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("navigate to %s: %w", url, err)
	}
	return nil
}

// Click clicks the first visible node matching selector.
func (s *Session) Click(ctx context.Context, selector string) error {
	s.logger.Debug("Clicking.", zap.String("selector", selector))
	id, err := s.firstVisible(ctx, selector)
	if err == nil {
		err = s.run(ctx, chromedp.Click([]cdp.NodeID{id}, chromedp.ByNodeID))
	}
	if err != nil {
		return fmt.Errorf("click %q: %w", selector, err)
	}
	return nil
}

// Fill clears the first visible input matching selector and types value into
// it. Other matches are left untouched.
func (s *Session) Fill(ctx context.Context, selector, value string) error {
	s.logger.Debug("Filling.", zap.String("selector", selector))
	id, err := s.firstVisible(ctx, selector)
	if err == nil {
		target := []cdp.NodeID{id}
		err = s.run(ctx,
			chromedp.Clear(target, chromedp.ByNodeID),
			chromedp.SendKeys(target, value, chromedp.ByNodeID),
		)
	}
	if err != nil {
		return fmt.Errorf("fill %q: %w", selector, err)
	}
	return nil
}

// firstVisible resolves selector and returns the first match, in document
// order, that has a layout box. Hidden duplicates are skipped. It polls until
// such a node exists or ctx is done.
func (s *Session) firstVisible(ctx context.Context, selector string) (cdp.NodeID, error) {
	ticker := time.NewTicker(visibilityPollInterval)
	defer ticker.Stop()

	for {
		var nodes []*cdp.Node
		if err := s.run(ctx, chromedp.Nodes(selector, &nodes, chromedp.BySearch, chromedp.AtLeast(1))); err != nil {
			return 0, err
		}
		for _, n := range nodes {
			if s.run(ctx, hasBox(n.NodeID)) == nil {
				return n.NodeID, nil
			}
		}
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-ticker.C:
		}
	}
}

// hasBox fails for nodes that are not rendered, e.g. display:none.
func hasBox(id cdp.NodeID) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		_, err := dom.GetBoxModel().WithNodeID(id).Do(ctx)
		return err
	})
}

// Content returns the serialized document.
func (s *Session) Content(ctx context.Context) (string, error) {
	var html string
	if err := s.run(ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("read page content: %w", err)
	}
	return html, nil
}

// WaitNetworkIdle blocks until the page has had no in-flight requests for quiet.
func (s *Session) WaitNetworkIdle(ctx context.Context, quiet time.Duration) error {
	if s.closed.Load() {
		return ErrSessionClosed
	}
	waitCtx, cancel := CombineContext(s.ctx, ctx)
	defer cancel()

	if err := s.tracker.wait(waitCtx, quiet); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("wait for network idle: %w", ctxErr)
		}
		return fmt.Errorf("wait for network idle: %w", err)
	}
	return nil
}

// Close releases the browser exactly once; later calls return the first result.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		if s.release != nil {
			s.closeErr = s.release()
		}
		if s.closeErr != nil && !errors.Is(s.closeErr, context.Canceled) {
			s.logger.Warn("Browser session closed with error.", zap.Error(s.closeErr))
		} else {
			s.closeErr = nil
			s.logger.Debug("Browser session closed.")
		}
	})
	return s.closeErr
}
