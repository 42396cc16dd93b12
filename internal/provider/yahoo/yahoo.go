// Package yahoo implements provider.Vendor on Yahoo Finance's public chart
// endpoint. Responses are navigated with gjson rather than mirrored in structs
// because the indicator arrays are column-oriented and full of nulls.
package yahoo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"barcache/internal/model"
	"barcache/internal/provider"
)

const (
	// Name is the vendor name used in config, logs and the fetch journal.
	Name = "yahoo"

	// DefaultBaseURL is the public query host.
	DefaultBaseURL = "https://query1.finance.yahoo.com"

	userAgent = "Mozilla/5.0 (compatible; barcache/1.0)"
)

var errNotFound = errors.New("ticker not found")

// Config configures a Client.
type Config struct {
	BaseURL    string
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Client is a Yahoo-backed provider.Vendor. It needs no credentials.
type Client struct {
	http    *http.Client
	baseURL string
	log     *slog.Logger
}

var _ provider.Vendor = (*Client)(nil)

// New returns a Client with defaults filled in.
func New(cfg Config) *Client {
	c := &Client{http: cfg.HTTPClient, baseURL: strings.TrimRight(cfg.BaseURL, "/"), log: cfg.Logger}
	if c.http == nil {
		c.http = &http.Client{Timeout: time.Minute}
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.log == nil {
		c.log = slog.Default()
	}
	c.log = c.log.With("vendor", Name)
	return c
}

// Name returns the vendor name.
func (c *Client) Name() string { return Name }

// Close releases idle connections.
func (c *Client) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

func chartInterval(interval string) (string, error) {
	switch iv := provider.StandardizeInterval(interval); iv {
	case "1m", "5m", "15m", "30m", "1d", "5d", "1wk", "1mo":
		return iv, nil
	case "1h":
		return "60m", nil
	}
	return "", fmt.Errorf("yahoo: unsupported interval %q", interval)
}

// GetHistoricalData fetches bars for [start, end). Rows with a null close
// (halts, holidays in intraday series) are skipped.
func (c *Client) GetHistoricalData(ctx context.Context, ticker, interval string, start, end time.Time, opts provider.Options) ([]model.Bar, error) {
	iv, err := chartInterval(interval)
	if err != nil {
		return nil, err
	}
	if !start.Before(end) {
		return []model.Bar{}, nil
	}
	q := url.Values{}
	q.Set("period1", strconv.FormatInt(start.UTC().Unix(), 10))
	q.Set("period2", strconv.FormatInt(end.UTC().Unix(), 10))
	q.Set("interval", iv)
	q.Set("includePrePost", "false")
	for k, v := range opts {
		q.Set(k, v)
	}
	res, err := c.chart(ctx, ticker, q)
	if errors.Is(err, errNotFound) {
		// Unknown or delisted for this window: nothing to cache.
		c.log.Info("chart not found", "ticker", ticker, "interval", iv)
		return []model.Bar{}, nil
	}
	if err != nil {
		return nil, err
	}
	return model.Window(parseBars(res), start, end), nil
}

// parseBars zips the timestamp column with indicators.quote[0].
func parseBars(res gjson.Result) []model.Bar {
	ts := res.Get("timestamp").Array()
	quote := res.Get("indicators.quote.0")
	open := quote.Get("open").Array()
	high := quote.Get("high").Array()
	low := quote.Get("low").Array()
	closes := quote.Get("close").Array()
	volume := quote.Get("volume").Array()

	at := func(col []gjson.Result, i int) gjson.Result {
		if i < len(col) {
			return col[i]
		}
		return gjson.Result{}
	}

	bars := make([]model.Bar, 0, len(ts))
	for i, t := range ts {
		cl := at(closes, i)
		if cl.Type != gjson.Number {
			continue
		}
		bars = append(bars, model.Bar{
			Timestamp: t.Int() * 1000,
			Open:      at(open, i).Float(),
			High:      at(high, i).Float(),
			Low:       at(low, i).Float(),
			Close:     cl.Float(),
			Volume:    at(volume, i).Int(),
		})
	}
	return bars
}

// chart calls /v8/finance/chart/{ticker} and returns chart.result.0.
func (c *Client) chart(ctx context.Context, ticker string, q url.Values) (gjson.Result, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	rawURL := fmt.Sprintf("%s/v8/finance/chart/%s?%s", c.baseURL, url.PathEscape(ticker), q.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("yahoo chart %s: %w", ticker, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("yahoo chart %s: read body: %w", ticker, err)
	}
	if !gjson.ValidBytes(body) {
		if resp.StatusCode != http.StatusOK {
			return gjson.Result{}, &provider.StatusError{Vendor: Name, StatusCode: resp.StatusCode, Body: string(body)}
		}
		return gjson.Result{}, fmt.Errorf("yahoo chart %s: invalid JSON", ticker)
	}

	doc := gjson.ParseBytes(body)
	if code := doc.Get("chart.error.code").String(); code != "" {
		if resp.StatusCode == http.StatusNotFound || code == "Not Found" {
			return gjson.Result{}, fmt.Errorf("%w: %s", errNotFound, doc.Get("chart.error.description").String())
		}
		return gjson.Result{}, &provider.StatusError{Vendor: Name, StatusCode: resp.StatusCode,
			Body: code + ": " + doc.Get("chart.error.description").String()}
	}
	if resp.StatusCode != http.StatusOK {
		return gjson.Result{}, &provider.StatusError{Vendor: Name, StatusCode: resp.StatusCode, Body: string(body)}
	}
	res := doc.Get("chart.result.0")
	if !res.Exists() {
		return gjson.Result{}, fmt.Errorf("yahoo chart %s: response has no chart result", ticker)
	}
	return res, nil
}

// meta fetches the one-day chart, whose meta block carries quote and
// listing details.
func (c *Client) meta(ctx context.Context, ticker string) (gjson.Result, error) {
	q := url.Values{}
	q.Set("range", "1d")
	q.Set("interval", "1d")
	res, err := c.chart(ctx, ticker, q)
	if err != nil {
		return gjson.Result{}, err
	}
	return res.Get("meta"), nil
}

// GetCurrentPrice returns meta.regularMarketPrice.
func (c *Client) GetCurrentPrice(ctx context.Context, ticker string) (float64, error) {
	m, err := c.meta(ctx, ticker)
	if err != nil {
		return 0, err
	}
	p := m.Get("regularMarketPrice")
	if !p.Exists() {
		return 0, fmt.Errorf("yahoo %s: no market price", ticker)
	}
	return p.Float(), nil
}

// GetCompanyInfo returns what the chart meta block exposes. Sector, industry
// and description need an authenticated endpoint and stay empty.
func (c *Client) GetCompanyInfo(ctx context.Context, ticker string) (provider.CompanyInfo, error) {
	m, err := c.meta(ctx, ticker)
	if err != nil {
		return provider.CompanyInfo{}, err
	}
	name := m.Get("longName").String()
	if name == "" {
		name = m.Get("shortName").String()
	}
	return provider.CompanyInfo{
		Ticker:   m.Get("symbol").String(),
		Name:     name,
		Currency: m.Get("currency").String(),
		Exchange: m.Get("exchangeName").String(),
	}, nil
}

// ValidateTicker reports TickerValid only when Yahoo quotes a market price.
func (c *Client) ValidateTicker(ctx context.Context, ticker string) (provider.TickerStatus, error) {
	m, err := c.meta(ctx, ticker)
	switch {
	case errors.Is(err, errNotFound):
		return provider.TickerNotFound, nil
	case err != nil:
		return provider.TickerVendorError, err
	case m.Get("regularMarketPrice").Float() == 0:
		return provider.TickerNotFound, nil
	}
	return provider.TickerValid, nil
}
