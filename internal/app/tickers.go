package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// LoadTickersFromFile reads a list of tickers from a file.
// Supported formats:
//   - .txt  : one ticker per line, '#' lines are treated as comments
//   - .json : JSON array of strings
func LoadTickersFromFile(path string) ([]string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tickers file %s: %w", path, err)
	}

	var tickers []string
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(content, &tickers); err != nil {
			return nil, fmt.Errorf("parse JSON: %w", err)
		}
	case ".txt", "":
		tickers = parseTickersFromText(string(content))
	default:
		return nil, fmt.Errorf("unsupported ticker file extension %q (use .txt or .json)", filepath.Ext(path))
	}
	return normalizeTickers(tickers), nil
}

// parseTickersFromText treats each non-empty, non-comment line as a ticker.
func parseTickersFromText(s string) []string {
	var tickers []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line != "" && !strings.HasPrefix(line, "#") {
			tickers = append(tickers, line)
		}
	}
	return tickers
}

// normalizeTickers upper-cases, drops empties and de-duplicates keeping order.
func normalizeTickers(in []string) []string {
	seen := make(map[string]bool, len(in))
	var out []string
	for _, t := range in {
		t = strings.TrimSpace(strings.ToUpper(t))
		if t != "" && !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	return out
}

// ResolveTickers merges cfg.Tickers with cfg.TickersFile.
func ResolveTickers(cfg *Config, log *slog.Logger) ([]string, error) {
	tickers := append([]string(nil), cfg.Tickers...)
	if cfg.TickersFile != "" {
		fromFile, err := LoadTickersFromFile(cfg.TickersFile)
		if err != nil {
			return nil, err
		}
		log.Info("loaded tickers from file", "count", len(fromFile), "path", cfg.TickersFile)
		tickers = append(tickers, fromFile...)
	}
	tickers = normalizeTickers(tickers)
	if len(tickers) == 0 {
		return nil, errors.New("no tickers configured (set TICKERS or TICKERS_FILE)")
	}
	return tickers, nil
}
