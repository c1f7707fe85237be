// File: internal/network/httpclient.go
package network

import (
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/http2"

	"github.com/xkilldash9x/netlogin/internal/config"
	"github.com/xkilldash9x/netlogin/internal/observability"
)

// Default transport settings. Outbound traffic is a handful of small JSON calls
// per run, so the pool is kept small.
const (
	DefaultDialTimeout           = 5 * time.Second
	DefaultKeepAliveInterval     = 15 * time.Second
	DefaultTLSHandshakeTimeout   = 5 * time.Second
	DefaultResponseHeaderTimeout = 10 * time.Second
	DefaultRequestTimeout        = 30 * time.Second
	DefaultMaxIdleConns          = 10
	DefaultMaxIdleConnsPerHost   = 2
	DefaultIdleConnTimeout       = 30 * time.Second
)

// ClientConfig holds the configuration for the outbound HTTP client.
type ClientConfig struct {
	IgnoreTLSErrors bool

	// RequestTimeout is an upper bound; callers apply tighter per-call deadlines via context.
	RequestTimeout        time.Duration
	DialTimeout           time.Duration
	TLSHandshakeTimeout   time.Duration
	ResponseHeaderTimeout time.Duration

	ForceHTTP2         bool
	DisableCompression bool

	ProxyURL  *url.URL
	UserAgent string
	Headers   map[string]string

	Logger *zap.Logger
}

// NewDefaultClientConfig returns a configuration with the package defaults.
func NewDefaultClientConfig() *ClientConfig {
	return &ClientConfig{
		RequestTimeout:        DefaultRequestTimeout,
		DialTimeout:           DefaultDialTimeout,
		TLSHandshakeTimeout:   DefaultTLSHandshakeTimeout,
		ResponseHeaderTimeout: DefaultResponseHeaderTimeout,
		ForceHTTP2:            true,
		Logger:                observability.GetLogger().Named("httpclient"),
	}
}

// ClientConfigFromNetwork maps the application network settings onto a ClientConfig.
func ClientConfigFromNetwork(nc config.NetworkConfig) (*ClientConfig, error) {
	cc := NewDefaultClientConfig()
	cc.ForceHTTP2 = nc.ForceHTTP2
	cc.IgnoreTLSErrors = nc.IgnoreTLSErrors
	cc.UserAgent = nc.UserAgent
	cc.Headers = nc.Headers
	if nc.ProxyURL != "" {
		u, err := url.Parse(nc.ProxyURL)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy url: %w", err)
		}
		cc.ProxyURL = u
	}
	return cc, nil
}

// NewHTTPTransport builds the base transport, upgraded for HTTP/2 when requested.
func NewHTTPTransport(cfg *ClientConfig) *http.Transport {
	if cfg == nil {
		cfg = NewDefaultClientConfig()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	dialer := &net.Dialer{Timeout: cfg.DialTimeout, KeepAlive: DefaultKeepAliveInterval}
	transport := &http.Transport{
		DialContext:           dialer.DialContext,
		TLSClientConfig:       &tls.Config{MinVersion: tls.VersionTLS12, InsecureSkipVerify: cfg.IgnoreTLSErrors},
		TLSHandshakeTimeout:   cfg.TLSHandshakeTimeout,
		ResponseHeaderTimeout: cfg.ResponseHeaderTimeout,
		MaxIdleConns:          DefaultMaxIdleConns,
		MaxIdleConnsPerHost:   DefaultMaxIdleConnsPerHost,
		IdleConnTimeout:       DefaultIdleConnTimeout,
		ForceAttemptHTTP2:     cfg.ForceHTTP2,
		// Decoding is done by decodingTransport so brotli is covered too.
		DisableCompression: true,
		Proxy:              http.ProxyFromEnvironment,
	}
	if cfg.ProxyURL != nil {
		transport.Proxy = http.ProxyURL(cfg.ProxyURL)
	}

	if cfg.ForceHTTP2 {
		if err := http2.ConfigureTransport(transport); err != nil {
			logger.Warn("Failed to configure HTTP/2 transport, falling back to HTTP/1.1", zap.Error(err))
		}
	} else {
		transport.TLSClientConfig.NextProtos = []string{"http/1.1"}
	}
	return transport
}

// NewClient creates the shared outbound client used by geolocation and notification.
// The caller must close every response body.
func NewClient(cfg *ClientConfig) *http.Client {
	if cfg == nil {
		cfg = NewDefaultClientConfig()
	}

	var rt http.RoundTripper = NewHTTPTransport(cfg)
	if !cfg.DisableCompression {
		rt = NewDecodingTransport(rt)
	}
	if cfg.UserAgent != "" || len(cfg.Headers) > 0 {
		rt = &headerTransport{next: rt, userAgent: cfg.UserAgent, headers: cfg.Headers}
	}

	return &http.Client{
		Transport: rt,
		Timeout:   cfg.RequestTimeout,
	}
}

// headerTransport sets default headers on requests that do not carry them already.
type headerTransport struct {
	next      http.RoundTripper
	userAgent string
	headers   map[string]string
}

func (h *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	if h.userAgent != "" && req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", h.userAgent)
	}
	for k, v := range h.headers {
		if req.Header.Get(k) == "" {
			req.Header.Set(k, v)
		}
	}
	return h.next.RoundTrip(req)
}
