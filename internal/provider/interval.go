package provider

import (
	"fmt"
	"strings"
	"time"
)

var intervalAliases = map[string]string{
	"1m": "1m", "1min": "1m", "minute": "1m",
	"5m": "5m", "5min": "5m",
	"15m": "15m", "15min": "15m",
	"30m": "30m", "30min": "30m",
	"1h": "1h", "1hour": "1h", "hourly": "1h", "60m": "1h",
	"1d": "1d", "1day": "1d", "daily": "1d",
	"5d": "5d",
	"1wk": "1wk", "1w": "1wk", "1week": "1wk", "weekly": "1wk",
	"1mo": "1mo", "1month": "1mo", "monthly": "1mo",
}

// StandardizeInterval maps interval spellings onto canonical codes
// (1m 5m 15m 30m 1h 1d 5d 1wk 1mo). Unknown values are returned lower-cased.
func StandardizeInterval(interval string) string {
	s := strings.ToLower(strings.TrimSpace(interval))
	if v, ok := intervalAliases[s]; ok {
		return v
	}
	return s
}

// IsIntraday reports whether a canonical interval is shorter than a day.
func IsIntraday(interval string) bool {
	switch StandardizeInterval(interval) {
	case "1m", "5m", "15m", "30m", "1h":
		return true
	}
	return false
}

// ParseDate parses YYYY-MM-DD (or RFC 3339) into a UTC time.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.ParseInLocation("2006-01-02", s, time.UTC); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD)", s)
}
