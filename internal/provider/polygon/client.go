// Package polygon implements provider.Vendor on the Polygon (massive.com) REST API.
// Aggregates are fetched with hand-built requests so pagination, retries and
// per-key rate limiting stay under our control; reference data goes through
// the official client.
package polygon

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	massive "github.com/massive-com/client-go/v2/rest"

	"barcache/internal/provider"
)

const (
	// Name is the vendor name used in config, logs and the fetch journal.
	Name = "polygon"

	// DefaultBaseURL is the public REST endpoint.
	DefaultBaseURL = "https://api.polygon.io"

	// Max 50k results per request
	maxLimit = 50000

	// Free plan: 5 requests per minute per key.
	DefaultRequestsPerMinute = 5

	defaultMaxRetries = 3
	defaultRetryDelay = 15 * time.Second
)

// Config configures a Client. APIKeys must hold at least one key.
type Config struct {
	APIKeys           []string
	BaseURL           string
	RequestsPerMinute int // <= 0 disables limiting
	MaxRetries        int
	RetryDelay        time.Duration
	HTTPClient        *http.Client
	Logger            *slog.Logger
}

// Client is a Polygon-backed provider.Vendor.
type Client struct {
	http       *http.Client
	baseURL    string
	keys       *keyPool
	ref        referenceAPI
	maxRetries int
	retryDelay time.Duration
	log        *slog.Logger
}

var _ provider.Vendor = (*Client)(nil)

// New validates cfg and builds a Client. A missing key is a
// *provider.ConfigurationError.
func New(cfg Config) (*Client, error) {
	var keys []string
	for _, k := range cfg.APIKeys {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return nil, &provider.ConfigurationError{Vendor: Name, Reason: "POLYGON_API_KEY is not set"}
	}
	pool, err := newKeyPool(keys, cfg.RequestsPerMinute)
	if err != nil {
		return nil, &provider.ConfigurationError{Vendor: Name, Reason: err.Error()}
	}

	c := &Client{
		http:       cfg.HTTPClient,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		keys:       pool,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
		log:        cfg.Logger,
	}
	if c.http == nil {
		c.http = newHTTPClient()
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.maxRetries <= 0 {
		c.maxRetries = defaultMaxRetries
	}
	if c.retryDelay <= 0 {
		c.retryDelay = defaultRetryDelay
	}
	if c.log == nil {
		c.log = slog.Default()
	}
	c.log = c.log.With("vendor", Name)
	c.ref = &sdkReference{client: massive.NewWithClient(pool.First(), c.http)}
	return c, nil
}

// Name returns the vendor name.
func (c *Client) Name() string { return Name }

// Close releases idle connections.
func (c *Client) Close() error {
	c.http.CloseIdleConnections()
	c.log.Debug("polygon key usage", "requests", c.keys.Stats())
	return nil
}

// aggregateSpan maps a canonical interval to Polygon's multiplier/timespan pair.
func aggregateSpan(interval string) (int, string, error) {
	switch provider.StandardizeInterval(interval) {
	case "1m":
		return 1, "minute", nil
	case "5m":
		return 5, "minute", nil
	case "15m":
		return 15, "minute", nil
	case "30m":
		return 30, "minute", nil
	case "1h":
		return 1, "hour", nil
	case "1d":
		return 1, "day", nil
	case "5d":
		return 5, "day", nil
	case "1wk":
		return 1, "week", nil
	case "1mo":
		return 1, "month", nil
	}
	return 0, "", fmt.Errorf("polygon: unsupported interval %q", interval)
}
