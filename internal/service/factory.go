// File: internal/service/factory.go
package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/xkilldash9x/netlogin/internal/browser"
	"github.com/xkilldash9x/netlogin/internal/config"
	"github.com/xkilldash9x/netlogin/internal/geo"
	"github.com/xkilldash9x/netlogin/internal/login"
	"github.com/xkilldash9x/netlogin/internal/network"
	"github.com/xkilldash9x/netlogin/internal/notify"
	"github.com/xkilldash9x/netlogin/internal/orchestrator"
)

// ComponentFactory builds the set of components needed for a login run.
type ComponentFactory interface {
	Create(ctx context.Context, cfg config.Interface, logger *zap.Logger) (*Components, error)
}

// FactoryOption customizes the production factory.
type FactoryOption func(*concreteFactory)

// WithBrowserFactory replaces the Chrome page factory, e.g. with a fake in tests.
func WithBrowserFactory(f browser.Factory) FactoryOption {
	return func(c *concreteFactory) { c.browser = f }
}

// WithRunnerOptions passes options through to the login runner.
func WithRunnerOptions(opts ...login.Option) FactoryOption {
	return func(c *concreteFactory) { c.runnerOpts = append(c.runnerOpts, opts...) }
}

// concreteFactory is the production implementation of ComponentFactory.
type concreteFactory struct {
	browser    browser.Factory
	runnerOpts []login.Option
}

// NewComponentFactory creates a new production-ready component factory.
func NewComponentFactory(opts ...FactoryOption) ComponentFactory {
	f := &concreteFactory{}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Create wires the components together. Nothing here touches the network or
// starts a browser; that happens lazily during the run.
func (f *concreteFactory) Create(ctx context.Context, cfg config.Interface, logger *zap.Logger) (*Components, error) {
	if cfg == nil || logger == nil {
		return nil, fmt.Errorf("cannot create components with nil dependencies")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// 1. Shared HTTP client for geo lookups and notifications.
	clientCfg, err := network.ClientConfigFromNetwork(cfg.Network())
	if err != nil {
		return nil, fmt.Errorf("failed to configure http client: %w", err)
	}
	clientCfg.Logger = logger
	httpClient := network.NewClient(clientCfg)
	components := &Components{HTTPClient: httpClient}
	logger.Debug("HTTP client initialized.", zap.Bool("force_http2", clientCfg.ForceHTTP2))

	// 2. Geo resolver.
	resolver, err := geo.NewResolverFromConfig(logger, cfg.Geo(), httpClient)
	if err != nil {
		components.Shutdown()
		return nil, fmt.Errorf("failed to initialize geo resolver: %w", err)
	}
	components.Geo = resolver
	logger.Debug("Geo resolver initialized.", zap.Strings("providers", cfg.Geo().Providers))

	// 3. Browser page factory.
	pages := f.browser
	if pages == nil {
		pages = browser.NewChromeFactory(cfg.Browser(), logger)
	}
	components.Browser = pages

	// 4. Login runner and orchestrator.
	runner := login.NewRunner(pages, resolver, cfg.Target(), logger, f.runnerOpts...)
	components.Runner = runner

	orch, err := orchestrator.New(runner, cfg.Run().AccountDelay, logger)
	if err != nil {
		components.Shutdown()
		return nil, fmt.Errorf("failed to create orchestrator: %w", err)
	}
	components.Orchestrator = orch
	logger.Debug("Orchestrator initialized.", zap.Duration("account_delay", cfg.Run().AccountDelay))

	// 5. Notification channels.
	nc := cfg.Notify()
	components.Renderer = notify.NewRenderer(nc)
	dispatcher := notify.NewDispatcher(components.Renderer, logger,
		notify.NewTelegramChannel(nc.Telegram, httpClient, logger),
		notify.NewWeComChannel(nc.WeCom, httpClient, logger),
	)
	components.Notifier = dispatcher
	components.Channels = dispatcher.Configured()

	logConfigurationSummary(logger, cfg, components.Channels)
	return components, nil
}

// logConfigurationSummary reports what the run will do without exposing secrets.
func logConfigurationSummary(logger *zap.Logger, cfg config.Interface, channels []string) {
	if len(channels) == 0 {
		logger.Warn("No notification channel configured; results will only be logged.")
	}
	logger.Info("Configuration loaded.",
		zap.String("target", cfg.Target().URL),
		zap.Bool("headless", cfg.Browser().Headless),
		zap.Bool("telegram", cfg.Notify().Telegram.Enabled()),
		zap.Bool("wecom", cfg.Notify().WeCom.Enabled()),
		zap.Strings("channels", channels),
	)
}
