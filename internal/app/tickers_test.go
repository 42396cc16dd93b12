package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"barcache/internal/slogx"
)

func TestLoadTickersFromFile(t *testing.T) {
	dir := t.TempDir()
	txt := filepath.Join(dir, "tickers.txt")
	require.NoError(t, os.WriteFile(txt, []byte("# index\naapl\n\n MSFT \nAAPL\n"), 0644))
	got, err := LoadTickersFromFile(txt)
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL", "MSFT"}, got)

	js := filepath.Join(dir, "tickers.json")
	require.NoError(t, os.WriteFile(js, []byte(`["spy","qqq","spy"]`), 0644))
	got, err = LoadTickersFromFile(js)
	require.NoError(t, err)
	assert.Equal(t, []string{"SPY", "QQQ"}, got)

	_, err = LoadTickersFromFile(filepath.Join(dir, "tickers.csv"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{`), 0644))
	_, err = LoadTickersFromFile(bad)
	assert.ErrorContains(t, err, "parse JSON")
}

func TestResolveTickers(t *testing.T) {
	dir := t.TempDir()
	txt := filepath.Join(dir, "tickers.txt")
	require.NoError(t, os.WriteFile(txt, []byte("msft\nnvda\n"), 0644))

	cfg := defaultConfig()
	cfg.Tickers = []string{"aapl", "MSFT"}
	cfg.TickersFile = txt
	got, err := ResolveTickers(cfg, slogx.Discard())
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL", "MSFT", "NVDA"}, got)

	_, err = ResolveTickers(defaultConfig(), slogx.Discard())
	assert.Error(t, err)
}
