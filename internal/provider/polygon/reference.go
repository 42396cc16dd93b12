package polygon

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	massive "github.com/massive-com/client-go/v2/rest"
	"github.com/massive-com/client-go/v2/rest/models"

	"barcache/internal/provider"
)

var errTickerNotFound = errors.New("ticker not found")

// referenceAPI is the slice of the official client the vendor uses.
type referenceAPI interface {
	TickerDetails(ctx context.Context, ticker string) (provider.CompanyInfo, error)
	LastTradePrice(ctx context.Context, ticker string) (float64, error)
}

type sdkReference struct {
	client *massive.Client
}

func (s *sdkReference) TickerDetails(ctx context.Context, ticker string) (provider.CompanyInfo, error) {
	res, err := s.client.GetTickerDetails(ctx, &models.GetTickerDetailsParams{Ticker: ticker})
	if err != nil {
		return provider.CompanyInfo{}, mapSDKError(err)
	}
	t := res.Results
	return provider.CompanyInfo{
		Ticker:      ticker,
		Name:        t.Name,
		Industry:    t.SICDescription,
		MarketCap:   t.MarketCap,
		Currency:    strings.ToUpper(t.CurrencyName),
		Exchange:    t.PrimaryExchange,
		Country:     strings.ToUpper(t.Locale),
		Website:     t.HomepageURL,
		Description: t.Description,
	}, nil
}

func (s *sdkReference) LastTradePrice(ctx context.Context, ticker string) (float64, error) {
	res, err := s.client.GetLastTrade(ctx, &models.GetLastTradeParams{Ticker: ticker})
	if err != nil {
		return 0, mapSDKError(err)
	}
	return res.Results.Price, nil
}

func mapSDKError(err error) error {
	var er *models.ErrorResponse
	if errors.As(err, &er) {
		if er.StatusCode == http.StatusNotFound {
			return fmt.Errorf("%w: %v", errTickerNotFound, err)
		}
		return &provider.StatusError{Vendor: Name, StatusCode: er.StatusCode, Body: err.Error()}
	}
	return err
}

// GetCompanyInfo returns reference data from the ticker details endpoint.
func (c *Client) GetCompanyInfo(ctx context.Context, ticker string) (provider.CompanyInfo, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	info, err := c.ref.TickerDetails(ctx, ticker)
	if err != nil {
		return provider.CompanyInfo{}, fmt.Errorf("polygon company info %s: %w", ticker, err)
	}
	return info, nil
}

// GetCurrentPrice returns the last trade price. Plans without trade access
// get the previous session's close instead.
func (c *Client) GetCurrentPrice(ctx context.Context, ticker string) (float64, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	price, err := c.ref.LastTradePrice(ctx, ticker)
	if err == nil {
		return price, nil
	}
	var se *provider.StatusError
	if !errors.As(err, &se) || (se.StatusCode != http.StatusForbidden && se.StatusCode != http.StatusUnauthorized) {
		return 0, fmt.Errorf("polygon last trade %s: %w", ticker, err)
	}
	c.log.Debug("last trade not authorized, using previous close", "ticker", ticker)
	return c.previousClose(ctx, ticker)
}

func (c *Client) previousClose(ctx context.Context, ticker string) (float64, error) {
	rawURL := fmt.Sprintf("%s/v2/aggs/ticker/%s/prev?adjusted=true", c.baseURL, url.PathEscape(ticker))
	resp, err := c.doAggregatesRequest(ctx, rawURL)
	if err != nil {
		return 0, fmt.Errorf("polygon previous close %s: %w", ticker, err)
	}
	if len(resp.Results) == 0 {
		return 0, fmt.Errorf("polygon previous close %s: %w", ticker, errTickerNotFound)
	}
	return resp.Results[len(resp.Results)-1].Close, nil
}

// ValidateTicker distinguishes an unknown ticker from a vendor failure.
func (c *Client) ValidateTicker(ctx context.Context, ticker string) (provider.TickerStatus, error) {
	_, err := c.ref.TickerDetails(ctx, strings.ToUpper(strings.TrimSpace(ticker)))
	switch {
	case err == nil:
		return provider.TickerValid, nil
	case errors.Is(err, errTickerNotFound):
		return provider.TickerNotFound, nil
	default:
		return provider.TickerVendorError, err
	}
}
