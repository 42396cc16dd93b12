// Package provider defines the market-data vendor capability used by the cache
// loader and the helpers shared by every implementation.
package provider

import (
	"context"
	"time"

	"barcache/internal/model"
)

// Options carries vendor-specific query parameters (e.g. "adjusted": "false").
type Options map[string]string

// HistoricalSource is the only capability the cache loader needs.
// An empty slice with a nil error means nothing is available for the window.
type HistoricalSource interface {
	GetHistoricalData(ctx context.Context, ticker, interval string, start, end time.Time, opts Options) ([]model.Bar, error)
}

// Vendor is the full capability set of a market-data provider.
type Vendor interface {
	HistoricalSource
	GetCurrentPrice(ctx context.Context, ticker string) (float64, error)
	GetCompanyInfo(ctx context.Context, ticker string) (CompanyInfo, error)
	ValidateTicker(ctx context.Context, ticker string) (TickerStatus, error)
	Name() string
	Close() error
}

// CompanyInfo is the basic reference data a vendor exposes for a ticker.
type CompanyInfo struct {
	Ticker      string  `json:"ticker"`
	Name        string  `json:"name"`
	Sector      string  `json:"sector,omitempty"`
	Industry    string  `json:"industry,omitempty"`
	MarketCap   float64 `json:"market_cap,omitempty"`
	Currency    string  `json:"currency,omitempty"`
	Exchange    string  `json:"exchange,omitempty"`
	Country     string  `json:"country,omitempty"`
	Website     string  `json:"website,omitempty"`
	Description string  `json:"description,omitempty"`
}

// TickerStatus is the outcome of ValidateTicker.
type TickerStatus int

const (
	TickerValid TickerStatus = iota
	TickerNotFound
	// TickerVendorError means the vendor could not answer; the accompanying
	// error says why.
	TickerVendorError
)

func (s TickerStatus) String() string {
	switch s {
	case TickerValid:
		return "valid"
	case TickerNotFound:
		return "not_found"
	case TickerVendorError:
		return "vendor_error"
	default:
		return "unknown"
	}
}
