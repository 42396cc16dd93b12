package cache

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("Date,Open,High,Low,Close,Volume\n"), 0644))
}

func TestScanMissingTickerDir(t *testing.T) {
	parts, err := Scan(t.TempDir(), "AAPL", "1d", "csv", nil)
	require.NoError(t, err)
	assert.Empty(t, parts)
}

func TestScanMatchesIntervalAndExtension(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "AAPL")
	touch(t, filepath.Join(dir, "1d-2020-01-01-2020-07-01.csv"))
	touch(t, filepath.Join(dir, "1d-2020-07-01-2021-01-01.csv"))
	touch(t, filepath.Join(dir, "1h-2020-01-01-2020-02-01.csv"))
	touch(t, filepath.Join(dir, "1d-2020-01-01-2020-07-01.parquet"))
	touch(t, filepath.Join(dir, "1d-2021-01-01-2022-01-01.csv.tmp"))
	touch(t, filepath.Join(dir, "notes.txt"))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "1d-2019-01-01-2020-01-01.csv"), 0755))

	parts, err := Scan(root, "AAPL", "1d", "csv", nil)
	require.NoError(t, err)
	got := Ranges(parts)
	sort.Slice(got, func(i, j int) bool { return got[i].Start.Before(got[j].Start) })
	assert.Equal(t, []Range{r("2020-01-01", "2020-07-01"), r("2020-07-01", "2021-01-01")}, got)
	for _, p := range parts {
		assert.Equal(t, dir, filepath.Dir(p.Path))
		assert.False(t, p.ModTime.IsZero())
	}
}

func TestScanSkipsUnparseableDates(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "X", "1d-2020-13-01-2021-01-01.csv"))
	touch(t, filepath.Join(root, "X", "1d-2021-01-01-2020-01-01.csv"))
	touch(t, filepath.Join(root, "X", "1d-2021-01-01-2022-01-01.csv"))

	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))
	parts, err := Scan(root, "X", "1d", "csv", log)
	require.NoError(t, err)
	require.Len(t, parts, 1)
	assert.Equal(t, r("2021-01-01", "2022-01-01"), parts[0].Range)
	assert.Contains(t, buf.String(), "unparseable partition name")
	assert.Contains(t, buf.String(), "empty partition range")
}

func TestScanIntervalIsLiteral(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "X", "1mo-2020-01-01-2030-01-01.csv"))
	parts, err := Scan(root, "X", "1m", "csv", nil)
	require.NoError(t, err)
	assert.Empty(t, parts, "1m must not match 1mo partitions")
}

func TestPartitionPath(t *testing.T) {
	p := PartitionPath("/data", "AAPL", "1d", r("2020-01-01", "2021-01-01"), "csv")
	assert.Equal(t, filepath.Join("/data", "AAPL", "1d-2020-01-01-2021-01-01.csv"), p)
}
