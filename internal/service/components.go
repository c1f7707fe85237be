// File: internal/service/components.go
package service

import (
	"context"
	"net/http"

	"github.com/xkilldash9x/netlogin/api/schemas"
	"github.com/xkilldash9x/netlogin/internal/browser"
	"github.com/xkilldash9x/netlogin/internal/notify"
	"github.com/xkilldash9x/netlogin/internal/observability"
)

// Components holds everything a run needs, created by a ComponentFactory.
type Components struct {
	HTTPClient   *http.Client
	Browser      browser.Factory
	Geo          schemas.GeoResolver
	Runner       schemas.AccountRunner
	Orchestrator schemas.Orchestrator
	Renderer     *notify.Renderer
	Notifier     schemas.Notifier
	// Channels names the notification channels that are configured.
	Channels []string
}

// Execute runs every credential and dispatches the summary. Notification
// happens even when ctx was cancelled mid-run, so partial results still go out.
func (c *Components) Execute(ctx context.Context, creds []schemas.Credential) schemas.RunSummary {
	summary := c.Orchestrator.RunAll(ctx, creds)
	c.Notifier.Dispatch(context.WithoutCancel(ctx), summary)
	return summary
}

// Shutdown releases pooled resources. Browser sessions are closed per attempt.
func (c *Components) Shutdown() {
	if c.HTTPClient != nil {
		c.HTTPClient.CloseIdleConnections()
	}
	observability.GetLogger().Debug("Components shut down.")
}
