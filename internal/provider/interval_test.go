package provider

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStandardizeInterval(t *testing.T) {
	cases := map[string]string{
		"1D":     "1d",
		"daily":  "1d",
		"1w":     "1wk",
		"weekly": "1wk",
		"hourly": "1h",
		"5min":   "5m",
		"1month": "1mo",
		"2h":     "2h",
	}
	for in, want := range cases {
		assert.Equal(t, want, StandardizeInterval(in), in)
	}
}

func TestIsIntraday(t *testing.T) {
	assert.True(t, IsIntraday("1h"))
	assert.True(t, IsIntraday("15min"))
	assert.False(t, IsIntraday("1d"))
	assert.False(t, IsIntraday("1mo"))
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2020-02-29")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2020, 2, 29, 0, 0, 0, 0, time.UTC), d)

	d, err = ParseDate("2020-02-29T23:00:00-02:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2020, 3, 1, 1, 0, 0, 0, time.UTC), d)

	_, err = ParseDate("29/02/2020")
	assert.Error(t, err)
}

func TestTickerStatusString(t *testing.T) {
	assert.Equal(t, "not_found", TickerNotFound.String())
	assert.Equal(t, "vendor_error", TickerVendorError.String())
}
