package app

import (
	"fmt"
	"log/slog"
	"strings"

	"barcache/internal/provider"
	"barcache/internal/provider/polygon"
	"barcache/internal/provider/yahoo"
)

// CreateVendor builds the vendor named by cfg.Vendor.
func CreateVendor(cfg *Config, log *slog.Logger) (provider.Vendor, error) {
	switch strings.ToLower(cfg.Vendor) {
	case polygon.Name:
		c, err := polygon.New(polygon.Config{
			APIKeys:           cfg.PolygonAPIKeys,
			BaseURL:           cfg.PolygonBaseURL,
			RequestsPerMinute: cfg.PolygonRequestsPerMinute,
			Logger:            log,
		})
		if err != nil {
			return nil, err
		}
		return c, nil
	case yahoo.Name:
		return yahoo.New(yahoo.Config{BaseURL: cfg.YahooBaseURL, Logger: log}), nil
	default:
		return nil, fmt.Errorf("unsupported vendor: %s. Options: %s, %s", cfg.Vendor, polygon.Name, yahoo.Name)
	}
}
