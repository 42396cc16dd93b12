package cache

import (
	"context"
	"errors"
	"time"

	"barcache/internal/model"
	"barcache/internal/provider"
)

func d(s string) time.Time {
	t, err := time.ParseInLocation("2006-01-02", s, time.UTC)
	if err != nil {
		panic(err)
	}
	return t
}

func r(start, end string) Range {
	return Range{Start: d(start), End: d(end)}
}

type call struct {
	ticker, interval string
	start, end       time.Time
}

// fakeVendor returns one daily bar per day in [start, end) unless told otherwise.
type fakeVendor struct {
	calls []call
	price float64
	empty map[time.Time]bool // sub-range starts that return nothing
	fail  error
}

func (f *fakeVendor) Name() string { return "fake" }

func (f *fakeVendor) GetHistoricalData(_ context.Context, ticker, interval string, start, end time.Time, _ provider.Options) ([]model.Bar, error) {
	f.calls = append(f.calls, call{ticker, interval, start, end})
	if f.fail != nil {
		return nil, f.fail
	}
	if f.empty[start] {
		return nil, nil
	}
	var bars []model.Bar
	for t := start; t.Before(end); t = t.AddDate(0, 0, 1) {
		bars = append(bars, model.Bar{Timestamp: t.UnixMilli(), Open: f.price, High: f.price, Low: f.price, Close: f.price, Volume: 1})
	}
	return bars, nil
}

var errVendorDown = errors.New("connection refused")

// sourceFunc returns bars at the timestamps fn picks for each call.
type sourceFunc func(start, end time.Time) []time.Time

func (f sourceFunc) GetHistoricalData(_ context.Context, _, _ string, start, end time.Time, _ provider.Options) ([]model.Bar, error) {
	var bars []model.Bar
	for _, ts := range f(start, end) {
		bars = append(bars, model.Bar{Timestamp: ts.UnixMilli(), Close: 1})
	}
	return bars, nil
}
