package polygon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"barcache/internal/model"
	"barcache/internal/provider"
)

// GetHistoricalData fetches aggregates for [start, end). Pages are followed
// through next_url; every request waits on the key's rate limiter.
func (c *Client) GetHistoricalData(ctx context.Context, ticker, interval string, start, end time.Time, opts provider.Options) ([]model.Bar, error) {
	mult, span, err := aggregateSpan(interval)
	if err != nil {
		return nil, err
	}
	if !start.Before(end) {
		return []model.Bar{}, nil
	}
	ticker = strings.ToUpper(ticker)
	// Polygon treats "to" as inclusive.
	fromMillis := start.UTC().UnixMilli()
	toMillis := end.UTC().UnixMilli() - 1

	next, err := c.aggregatesURL(ticker, mult, span, fromMillis, toMillis, opts)
	if err != nil {
		return nil, err
	}

	var bars []model.Bar
	for page := 1; next != ""; page++ {
		resp, err := c.doAggregatesRequest(ctx, next)
		if err != nil {
			return nil, err
		}
		for _, raw := range resp.Results {
			bars = append(bars, raw.ToBar())
		}
		c.log.Debug("aggregates page", "ticker", ticker, "interval", interval, "page", page,
			"results", len(resp.Results), "status", resp.Status)
		next = resp.NextURL
	}
	if bars == nil {
		bars = []model.Bar{}
	}
	return model.Window(bars, start, end), nil
}

// aggregatesURL builds /v2/aggs/ticker/{T}/range/{mult}/{span}/{from}/{to}
// (adjusted, limit, sort; overridable through opts).
func (c *Client) aggregatesURL(ticker string, mult int, span string, fromMillis, toMillis int64, opts provider.Options) (string, error) {
	rawURL := fmt.Sprintf("%s/v2/aggs/ticker/%s/range/%d/%s/%d/%d",
		c.baseURL, url.PathEscape(ticker), mult, span, fromMillis, toMillis)
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse URL: %w", err)
	}
	q := u.Query()
	q.Set("adjusted", "true")
	q.Set("limit", strconv.Itoa(maxLimit))
	q.Set("sort", "asc")
	for k, v := range opts {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// withKey attaches the apiKey query parameter; next_url pages come back without it.
func withKey(rawURL, key string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse URL: %w", err)
	}
	q := u.Query()
	q.Set("apiKey", key)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// doAggregatesRequest runs one GET with retries on network errors, 429 and
// 5xx. Other non-200 answers are returned as *provider.StatusError.
func (c *Client) doAggregatesRequest(ctx context.Context, rawURL string) (*AggregatesResponse, error) {
	var lastErr error
	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		if attempt > 1 {
			if err := sleepCtx(ctx, c.retryDelay); err != nil {
				return nil, err
			}
		}
		key, err := c.keys.Acquire(ctx)
		if err != nil {
			return nil, err
		}
		reqURL, err := withKey(rawURL, key.key)
		if err != nil {
			return nil, err
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = fmt.Errorf("API call failed: %w", err)
			c.log.Warn("aggregates request failed", "attempt", attempt, "key", key.prefix(), "error", err)
			continue
		}
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("read body: %w", err)
			continue
		}

		if resp.StatusCode != http.StatusOK {
			statusErr := &provider.StatusError{Vendor: Name, StatusCode: resp.StatusCode, Body: truncate(string(body), 512)}
			if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
				lastErr = statusErr
				c.log.Warn("aggregates request throttled", "attempt", attempt, "key", key.prefix(), "status", resp.StatusCode)
				continue
			}
			return nil, statusErr
		}

		var result AggregatesResponse
		if err := json.Unmarshal(body, &result); err != nil {
			lastErr = fmt.Errorf("parse JSON: %w", err)
			continue
		}
		switch result.Status {
		case "OK", "DELAYED":
			return &result, nil
		default:
			return nil, fmt.Errorf("API status not OK: %s %s", result.Status, result.Error)
		}
	}
	if lastErr == nil {
		lastErr = errors.New("no response")
	}
	return nil, fmt.Errorf("after %d attempts: %w", c.maxRetries, lastErr)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
