package geo

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"github.com/xkilldash9x/netlogin/api/schemas"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Provider names accepted in configuration.
const (
	ProviderIPAPI   = "ip-api"
	ProviderIPAPICo = "ipapi.co"
)

// maxBody caps how much of a provider response is read.
const maxBody = 64 << 10

// HTTPDoer is the subset of *http.Client the providers need.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Provider looks up the caller's public IP metadata.
type Provider interface {
	Name() string
	Lookup(ctx context.Context) (schemas.GeoInfo, error)
}

// NewProvider builds a named provider against endpoint.
func NewProvider(name, endpoint string, client HTTPDoer) (Provider, error) {
	switch name {
	case ProviderIPAPI:
		return &ipAPI{endpoint: endpoint, client: client}, nil
	case ProviderIPAPICo:
		return &ipapiCo{endpoint: endpoint, client: client}, nil
	default:
		return nil, fmt.Errorf("unknown geo provider %q", name)
	}
}

// ipAPI talks to ip-api.com. Failures are reported in-band via "status".
type ipAPI struct {
	endpoint string
	client   HTTPDoer
}

type ipAPIResponse struct {
	Status     string `json:"status"`
	Message    string `json:"message"`
	Query      string `json:"query"`
	Country    string `json:"country"`
	RegionName string `json:"regionName"`
	City       string `json:"city"`
	ISP        string `json:"isp"`
}

func (p *ipAPI) Name() string { return ProviderIPAPI }

func (p *ipAPI) Lookup(ctx context.Context) (schemas.GeoInfo, error) {
	var body ipAPIResponse
	if err := getJSON(ctx, p.client, p.endpoint, &body); err != nil {
		return schemas.GeoInfo{}, err
	}
	if body.Status != "success" {
		return schemas.GeoInfo{}, fmt.Errorf("provider status %q: %s", body.Status, body.Message)
	}
	if body.Query == "" {
		return schemas.GeoInfo{}, fmt.Errorf("provider returned no ip")
	}
	return normalize(body.Query, body.Country, body.RegionName, body.City, body.ISP), nil
}

// ipapiCo talks to ipapi.co, which signals failure with "error": true.
type ipapiCo struct {
	endpoint string
	client   HTTPDoer
}

type ipapiCoResponse struct {
	IP          string `json:"ip"`
	Error       bool   `json:"error"`
	Reason      string `json:"reason"`
	CountryName string `json:"country_name"`
	Region      string `json:"region"`
	City        string `json:"city"`
	Org         string `json:"org"`
}

func (p *ipapiCo) Name() string { return ProviderIPAPICo }

func (p *ipapiCo) Lookup(ctx context.Context) (schemas.GeoInfo, error) {
	var body ipapiCoResponse
	if err := getJSON(ctx, p.client, p.endpoint, &body); err != nil {
		return schemas.GeoInfo{}, err
	}
	if body.Error {
		return schemas.GeoInfo{}, fmt.Errorf("provider error: %s", body.Reason)
	}
	if body.IP == "" {
		return schemas.GeoInfo{}, fmt.Errorf("provider returned no ip")
	}
	return normalize(body.IP, body.CountryName, body.Region, body.City, body.Org), nil
}

func getJSON(ctx context.Context, client HTTPDoer, endpoint string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBody))
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBody)).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// normalize maps provider fields onto GeoInfo. Missing fields become the unknown
// sentinel and are left out of the composed location.
func normalize(ip, country, region, city, isp string) schemas.GeoInfo {
	return schemas.GeoInfo{
		IP:       orUnknown(ip),
		Location: composeLocation(country, region, city),
		Country:  orUnknown(country),
		City:     orUnknown(city),
		ISP:      orUnknown(isp),
	}
}

func composeLocation(segments ...string) string {
	parts := make([]string, 0, len(segments))
	for _, s := range segments {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}
	if len(parts) == 0 {
		return schemas.UnknownLocation
	}
	return strings.Join(parts, " - ")
}

func orUnknown(s string) string {
	if s = strings.TrimSpace(s); s != "" {
		return s
	}
	return schemas.Unknown
}
