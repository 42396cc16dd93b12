package format

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"barcache/internal/model"
)

const dateLayout = "2006-01-02"

var csvHeader = []string{"Date", "Open", "High", "Low", "Close", "Volume", "VWAP", "Transactions"}

// CSVCodec stores a partition as CSV with a Date first column.
// Midnight UTC timestamps are written as ISO dates, anything else as RFC 3339.
type CSVCodec struct{}

func (CSVCodec) Extension() string { return "csv" }

func (CSVCodec) Save(bars []model.Bar, path string) error {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	werr := writeCSV(f, bars)
	if cerr := f.Close(); werr == nil {
		werr = cerr
	}
	return replaceFile(tmp, path, werr)
}

func writeCSV(out io.Writer, bars []model.Bar) error {
	w := csv.NewWriter(out)
	if err := w.Write(csvHeader); err != nil {
		return err
	}
	for _, b := range bars {
		if err := w.Write([]string{
			formatTimestamp(b.Timestamp),
			floatStr(b.Open),
			floatStr(b.High),
			floatStr(b.Low),
			floatStr(b.Close),
			strconv.FormatInt(b.Volume, 10),
			floatStr(b.VWAP),
			strconv.FormatInt(b.Transactions, 10),
		}); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func (CSVCodec) Load(path string) ([]model.Bar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols := columnIndex(header)
	if _, ok := cols["date"]; !ok {
		return nil, fmt.Errorf("%s: missing Date column", path)
	}

	var bars []model.Bar
	line := 1
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", path, line, err)
		}
		b, err := parseRecord(rec, cols)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", path, line, err)
		}
		bars = append(bars, b)
	}
	return bars, nil
}

// columnIndex maps lower-cased header names to positions so files written by
// other tools (extra columns, different order) still load.
func columnIndex(header []string) map[string]int {
	m := make(map[string]int, len(header))
	for i, h := range header {
		m[strings.ToLower(strings.TrimSpace(h))] = i
	}
	if _, ok := m["date"]; !ok && len(header) > 0 {
		m["date"] = 0
	}
	return m
}

func parseRecord(rec []string, cols map[string]int) (model.Bar, error) {
	var b model.Bar
	ts, err := ParseTimestamp(field(rec, cols, "date"))
	if err != nil {
		return b, err
	}
	b.Timestamp = ts.UnixMilli()
	if b.Open, err = parseFloat(field(rec, cols, "open")); err != nil {
		return b, fmt.Errorf("open: %w", err)
	}
	if b.High, err = parseFloat(field(rec, cols, "high")); err != nil {
		return b, fmt.Errorf("high: %w", err)
	}
	if b.Low, err = parseFloat(field(rec, cols, "low")); err != nil {
		return b, fmt.Errorf("low: %w", err)
	}
	if b.Close, err = parseFloat(field(rec, cols, "close")); err != nil {
		return b, fmt.Errorf("close: %w", err)
	}
	v, err := parseFloat(field(rec, cols, "volume"))
	if err != nil {
		return b, fmt.Errorf("volume: %w", err)
	}
	b.Volume = int64(v)
	if b.VWAP, err = parseFloat(field(rec, cols, "vwap")); err != nil {
		return b, fmt.Errorf("vwap: %w", err)
	}
	n, err := parseFloat(field(rec, cols, "transactions"))
	if err != nil {
		return b, fmt.Errorf("transactions: %w", err)
	}
	b.Transactions = int64(n)
	return b, nil
}

func field(rec []string, cols map[string]int, name string) string {
	i, ok := cols[name]
	if !ok || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

func parseFloat(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}

func formatTimestamp(ms int64) string {
	t := time.UnixMilli(ms).UTC()
	if t.Equal(t.Truncate(24 * time.Hour)) {
		return t.Format(dateLayout)
	}
	return t.Format(time.RFC3339Nano)
}

var timestampLayouts = []string{
	dateLayout,
	time.RFC3339Nano,
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
}

// ParseTimestamp parses an ISO date or date-time; values without a zone are UTC.
func ParseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse timestamp %q", s)
}

func floatStr(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }
