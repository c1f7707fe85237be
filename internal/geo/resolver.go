// Package geo resolves the network origin of the current host for report enrichment.
package geo

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/netlogin/api/schemas"
	"github.com/xkilldash9x/netlogin/internal/config"
)

// DefaultTimeout bounds each provider call.
const DefaultTimeout = 5 * time.Second

// Resolver queries providers in order and returns the first success.
type Resolver struct {
	providers []Provider
	timeout   time.Duration
	logger    *zap.Logger
}

var _ schemas.GeoResolver = (*Resolver)(nil)

// NewResolver creates a resolver over an ordered provider list.
func NewResolver(logger *zap.Logger, timeout time.Duration, providers ...Provider) *Resolver {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Resolver{
		providers: providers,
		timeout:   timeout,
		logger:    logger.Named("geo"),
	}
}

// NewResolverFromConfig builds the providers named in cfg.Providers, in order.
func NewResolverFromConfig(logger *zap.Logger, cfg config.GeoConfig, client HTTPDoer) (*Resolver, error) {
	endpoints := map[string]string{
		ProviderIPAPI:   cfg.IPAPIURL,
		ProviderIPAPICo: cfg.IPAPICoURL,
	}
	providers := make([]Provider, 0, len(cfg.Providers))
	for _, name := range cfg.Providers {
		p, err := NewProvider(name, endpoints[name], client)
		if err != nil {
			return nil, fmt.Errorf("geo providers: %w", err)
		}
		providers = append(providers, p)
	}
	return NewResolver(logger, cfg.Timeout, providers...), nil
}

// Resolve never fails. Provider errors are logged and the next provider is
// tried; when all fail the all-unknown sentinel is returned.
func (r *Resolver) Resolve(ctx context.Context) schemas.GeoInfo {
	for _, p := range r.providers {
		if ctx.Err() != nil {
			break
		}
		info, err := r.lookup(ctx, p)
		if err != nil {
			r.logger.Warn("Geolocation provider failed.", zap.String("provider", p.Name()), zap.Error(err))
			continue
		}
		r.logger.Debug("Geolocation resolved.",
			zap.String("provider", p.Name()),
			zap.String("ip", info.IP),
			zap.String("location", info.Location))
		return info
	}
	return schemas.UnknownGeo()
}

func (r *Resolver) lookup(ctx context.Context, p Provider) (schemas.GeoInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return p.Lookup(ctx)
}
