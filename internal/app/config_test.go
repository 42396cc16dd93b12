package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"barcache/internal/provider"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"CONFIG_FILE", "VENDOR", "TICKERS", "TICKERS_FILE", "INTERVAL", "START_DATE", "END_DATE",
		"DATA_DIR", "SAVE_FORMAT", "LOG_LEVEL", "LOG_FORMAT", "WORKERS", "NEGATIVE_CACHE", "VALIDATE_TICKERS",
		"POLYGON_API_KEY", "POLYGON_API_KEYS", "POLYGON_BASE_URL", "POLYGON_REQUESTS_PER_MINUTE", "YAHOO_BASE_URL"} {
		t.Setenv(k, "")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "yahoo", cfg.Vendor)
	assert.Equal(t, "1d", cfg.Interval)
	assert.Equal(t, "csv", cfg.SaveFormat)
	assert.Equal(t, 4, cfg.Workers)
	assert.False(t, cfg.NegativeCache)
	assert.Equal(t, filepath.Join("data", ".lastrun.json"), cfg.ReportPath())
}

func TestLoadConfigFileThenEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "barcache.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
vendor: polygon
tickers: [aapl, msft]
interval: hourly
start_date: "2020-01-01"
data_dir: ${BARCACHE_TEST_DIR}
save_format: parquet
workers: 2
polygon_api_keys: [k1]
`), 0644))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("BARCACHE_TEST_DIR", dir)
	t.Setenv("WORKERS", "8")
	t.Setenv("NEGATIVE_CACHE", "true")
	t.Setenv("POLYGON_API_KEYS", "a, b")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "polygon", cfg.Vendor)
	assert.Equal(t, []string{"aapl", "msft"}, cfg.Tickers)
	assert.Equal(t, "hourly", cfg.Interval)
	assert.Equal(t, dir, cfg.DataDir)
	assert.Equal(t, "parquet", cfg.SaveFormat)
	assert.Equal(t, 8, cfg.Workers)
	assert.True(t, cfg.NegativeCache)
	assert.Equal(t, []string{"a", "b"}, cfg.PolygonAPIKeys)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfigBadEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("WORKERS", "many")
	t.Setenv("NEGATIVE_CACHE", "perhaps")
	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "WORKERS")
	assert.Contains(t, err.Error(), "NEGATIVE_CACHE")
}

func TestValidate(t *testing.T) {
	cfg := defaultConfig()
	cfg.Vendor = "polygon"
	cfg.SaveFormat = "xml"
	cfg.Workers = 0
	err := cfg.Validate()
	require.Error(t, err)

	var cfgErr *provider.ConfigurationError
	assert.ErrorAs(t, err, &cfgErr)
	for _, want := range []string{"POLYGON_API_KEY", "SAVE_FORMAT", "START_DATE is required", "WORKERS"} {
		assert.Contains(t, err.Error(), want)
	}

	cfg = defaultConfig()
	cfg.StartDate = "2021-01-01"
	cfg.EndDate = "2020-01-01"
	assert.ErrorContains(t, cfg.Validate(), "must be before")

	cfg.Vendor = "bloomberg"
	cfg.EndDate = ""
	assert.ErrorContains(t, cfg.Validate(), "unsupported vendor")
}

func TestWindowDefaultsEndToTomorrow(t *testing.T) {
	cfg := defaultConfig()
	cfg.StartDate = "2024-01-01"
	now := time.Date(2024, 3, 5, 15, 30, 0, 0, time.UTC)
	start, end, err := cfg.Window(now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC), end)

	cfg.EndDate = "03/01/2024"
	_, _, err = cfg.Window(now)
	assert.ErrorContains(t, err, "END_DATE")
}
