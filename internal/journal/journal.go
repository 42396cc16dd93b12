// Package journal records every vendor fetch the cache loader performs in a
// small sqlite database next to the partitions. The loader consults it only
// when negative caching is enabled.
package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// FileName is the journal database name under the storage root.
const FileName = ".fetch-journal.db"

// Status of one fetch attempt.
const (
	StatusOK    = "ok"
	StatusEmpty = "empty"
	StatusError = "error"
)

// Entry is one fetch attempt for an exact sub-range.
type Entry struct {
	Ticker    string
	Interval  string
	Start     time.Time
	End       time.Time
	Vendor    string
	Status    string
	Bars      int
	Error     string
	FetchedAt time.Time
}

// Store is a sqlite-backed fetch journal.
type Store struct {
	path string

	mu sync.Mutex
	db *sql.DB
}

// Open opens (creating if needed) the journal at path.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("journal path must not be empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if err := ensureSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("journal schema: %w", err)
	}
	return &Store{path: path, db: db}, nil
}

// OpenInRoot opens the journal stored at {root}/.fetch-journal.db.
func OpenInRoot(root string) (*Store, error) {
	return Open(filepath.Join(root, FileName))
}

func ensureSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS fetches (
			ticker     TEXT NOT NULL,
			bar_interval TEXT NOT NULL,
			start_ms   INTEGER NOT NULL,
			end_ms     INTEGER NOT NULL,
			vendor     TEXT NOT NULL DEFAULT '',
			status     TEXT NOT NULL,
			bars       INTEGER NOT NULL DEFAULT 0,
			err_msg    TEXT NOT NULL DEFAULT '',
			fetched_at INTEGER NOT NULL,
			PRIMARY KEY (ticker, bar_interval, start_ms, end_ms)
		);`)
	return err
}

// Path returns the database file path.
func (s *Store) Path() string { return s.path }

// Close closes the database.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *Store) conn() (*sql.DB, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil, errors.New("journal is closed")
	}
	return s.db, nil
}

// Record upserts the latest attempt for the entry's exact sub-range.
func (s *Store) Record(ctx context.Context, e Entry) error {
	db, err := s.conn()
	if err != nil {
		return err
	}
	if e.FetchedAt.IsZero() {
		e.FetchedAt = time.Now()
	}
	_, err = db.ExecContext(ctx, `
		INSERT INTO fetches (ticker, bar_interval, start_ms, end_ms, vendor, status, bars, err_msg, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(ticker, bar_interval, start_ms, end_ms) DO UPDATE SET
		    vendor=excluded.vendor,
		    status=excluded.status,
		    bars=excluded.bars,
		    err_msg=excluded.err_msg,
		    fetched_at=excluded.fetched_at`,
		strings.ToUpper(e.Ticker), e.Interval, e.Start.UnixMilli(), e.End.UnixMilli(),
		e.Vendor, e.Status, e.Bars, e.Error, e.FetchedAt.UnixMilli())
	return err
}

// KnownEmpty reports whether the latest attempt for exactly [start, end) returned no bars.
func (s *Store) KnownEmpty(ctx context.Context, ticker, interval string, start, end time.Time) (bool, error) {
	db, err := s.conn()
	if err != nil {
		return false, err
	}
	var status string
	err = db.QueryRowContext(ctx, `
		SELECT status FROM fetches
		WHERE ticker = ? AND bar_interval = ? AND start_ms = ? AND end_ms = ?`,
		strings.ToUpper(ticker), interval, start.UnixMilli(), end.UnixMilli()).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return status == StatusEmpty, nil
}

// List returns all attempts for ticker+interval ordered by start.
func (s *Store) List(ctx context.Context, ticker, interval string) ([]Entry, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx, `
		SELECT ticker, bar_interval, start_ms, end_ms, vendor, status, bars, err_msg, fetched_at
		FROM fetches WHERE ticker = ? AND bar_interval = ?
		ORDER BY start_ms ASC`, strings.ToUpper(ticker), interval)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Entry
	for rows.Next() {
		var e Entry
		var startMs, endMs, fetchedMs int64
		if err := rows.Scan(&e.Ticker, &e.Interval, &startMs, &endMs, &e.Vendor, &e.Status, &e.Bars, &e.Error, &fetchedMs); err != nil {
			return nil, err
		}
		e.Start = time.UnixMilli(startMs).UTC()
		e.End = time.UnixMilli(endMs).UTC()
		e.FetchedAt = time.UnixMilli(fetchedMs).UTC()
		out = append(out, e)
	}
	return out, rows.Err()
}
