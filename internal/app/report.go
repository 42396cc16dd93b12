package app

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// TickerResult is one ticker's outcome in a run.
type TickerResult struct {
	Ticker  string `json:"ticker"`
	Bars    int    `json:"bars"`
	Fetched int    `json:"fetched"`
	Written int    `json:"written"`
	First   string `json:"first,omitempty"`
	Last    string `json:"last,omitempty"`
}

type failedEntry struct {
	Ticker string `json:"ticker"`
	Reason string `json:"reason"`
}

// Report summarises one run; it is written to {data_dir}/.lastrun.json.
type Report struct {
	RunID      string         `json:"run_id"`
	Vendor     string         `json:"vendor"`
	Interval   string         `json:"interval"`
	Start      string         `json:"start"`
	End        string         `json:"end"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
	Success    []TickerResult `json:"success"`
	Failed     []failedEntry  `json:"failed,omitempty"`
}

// TotalBars sums bars over successful tickers.
func (r *Report) TotalBars() int {
	var n int
	for _, s := range r.Success {
		n += s.Bars
	}
	return n
}

func writeRunReport(path string, r *Report) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// ReadReport loads a report written by a previous run.
func ReadReport(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parse run report %s: %w", path, err)
	}
	return &r, nil
}

func joinFailedReasons(failedList []failedEntry) string {
	if len(failedList) == 0 {
		return ""
	}
	var b strings.Builder
	for i, f := range failedList {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(f.Ticker)
		b.WriteString(": ")
		b.WriteString(f.Reason)
		if i >= 4 && len(failedList) > 6 {
			b.WriteString(fmt.Sprintf(" (+%d more)", len(failedList)-5))
			break
		}
	}
	return b.String()
}
