package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"barcache/internal/format"
	"barcache/internal/journal"
	"barcache/internal/model"
	"barcache/internal/provider"
)

// Journal records fetch attempts; with negative caching on it also answers
// whether an exact sub-range is known to be empty.
type Journal interface {
	Record(ctx context.Context, e journal.Entry) error
	KnownEmpty(ctx context.Context, ticker, interval string, start, end time.Time) (bool, error)
}

// Config configures a Loader. Root is required; there is no default directory.
type Config struct {
	Root          string
	Codec         format.Codec // nil means CSV
	Journal       Journal      // optional
	NegativeCache bool         // skip sub-ranges the journal recorded as empty
	Logger        *slog.Logger
}

// Request is one load call.
type Request struct {
	Ticker   string
	Interval string
	Start    time.Time
	End      time.Time // exclusive
	Options  provider.Options
}

// Stats summarises what one Load did.
type Stats struct {
	Cached     int      // partitions found on disk before fetching
	Missing    int      // gaps
	Fetched    int      // vendor calls
	Written    int      // partitions persisted
	Empty      int      // vendor calls that returned nothing
	Skipped    int      // sub-ranges skipped (file exists or known empty)
	Bars       int      // bars returned
	Partitions []string // partitions read for the result
}

// Loader reconciles requests against the on-disk partition cache.
type Loader struct {
	root          string
	codec         format.Codec
	journal       Journal
	negativeCache bool
	log           *slog.Logger
}

// NewLoader validates cfg and returns a Loader.
func NewLoader(cfg Config) (*Loader, error) {
	if strings.TrimSpace(cfg.Root) == "" {
		return nil, &provider.ConfigurationError{Vendor: "cache", Reason: "storage root must be set"}
	}
	if cfg.NegativeCache && cfg.Journal == nil {
		return nil, &provider.ConfigurationError{Vendor: "cache", Reason: "negative cache requires a fetch journal"}
	}
	l := &Loader{
		root:          cfg.Root,
		codec:         cfg.Codec,
		journal:       cfg.Journal,
		negativeCache: cfg.NegativeCache,
		log:           cfg.Logger,
	}
	if l.codec == nil {
		l.codec = format.CSVCodec{}
	}
	if l.log == nil {
		l.log = slog.Default()
	}
	return l, nil
}

// Root returns the storage root.
func (l *Loader) Root() string { return l.root }

// Load returns bars for [req.Start, req.End) for one ticker+interval, fetching
// from src only the calendar-aligned sub-ranges not already on disk.
// Bounds are truncated to UTC days to match the date-only partition names.
func (l *Loader) Load(ctx context.Context, src provider.HistoricalSource, req Request) ([]model.Bar, error) {
	bars, _, err := l.LoadWithStats(ctx, src, req)
	return bars, err
}

// LoadWithStats is Load plus a summary of the work done.
func (l *Loader) LoadWithStats(ctx context.Context, src provider.HistoricalSource, req Request) ([]model.Bar, Stats, error) {
	var st Stats
	ticker := strings.ToUpper(strings.TrimSpace(req.Ticker))
	if ticker == "" {
		return nil, st, errors.New("ticker must not be empty")
	}
	interval := provider.StandardizeInterval(req.Interval)
	requested, err := DayRange(req.Start, req.End)
	if err != nil {
		return nil, st, err
	}
	log := l.log.With("ticker", ticker, "interval", interval)

	cached, err := Scan(l.root, ticker, interval, l.codec.Extension(), log)
	if err != nil {
		return nil, st, err
	}
	st.Cached = len(cached)
	orderByWriteTime(cached)

	missing := FindMissing(requested, Ranges(cached))
	st.Missing = len(missing)
	log.Debug("cache reconciled", "requested", requested.String(), "cached", len(cached), "missing", len(missing))

	written, err := l.fetchMissing(ctx, src, ticker, interval, missing, req.Options, &st)
	if err != nil {
		return nil, st, err
	}

	all := append(cached, written...)
	bars, err := Merge(requested, all, l.codec)
	if err != nil {
		return nil, st, err
	}
	for _, p := range all {
		if p.Overlaps(requested) {
			st.Partitions = append(st.Partitions, p.Path)
		}
	}
	st.Bars = len(bars)
	if len(bars) == 0 {
		log.Warn("no data for requested window", "start", requested.Start.Format(dateLayout), "end", requested.End.Format(dateLayout))
		return []model.Bar{}, st, nil
	}
	log.Info("loaded bars", "bars", len(bars), "start", requested.Start.Format(dateLayout), "end", requested.End.Format(dateLayout),
		"fetched", st.Fetched, "written", st.Written)
	return bars, st, nil
}

// fetchMissing splits each gap, fetches sub-ranges without a partition file
// and persists non-empty results. The first vendor failure aborts; partitions
// written before it stay on disk.
func (l *Loader) fetchMissing(ctx context.Context, src provider.HistoricalSource, ticker, interval string, missing []Range, opts provider.Options, st *Stats) ([]Partition, error) {
	var written []Partition
	vendorName := sourceName(src)
	for _, gap := range missing {
		for _, sub := range Split(gap, interval) {
			path := PartitionPath(l.root, ticker, interval, sub, l.codec.Extension())
			if _, err := os.Stat(path); err == nil {
				st.Skipped++
				continue
			}
			if l.negativeCache {
				empty, err := l.journal.KnownEmpty(ctx, ticker, interval, sub.Start, sub.End)
				if err != nil {
					return written, fmt.Errorf("fetch journal: %w", err)
				}
				if empty {
					l.log.Debug("skip known-empty range", "ticker", ticker, "interval", interval, "range", sub.String())
					st.Skipped++
					continue
				}
			}

			st.Fetched++
			bars, err := src.GetHistoricalData(ctx, ticker, interval, sub.Start, sub.End, opts)
			if err != nil {
				l.record(ctx, journal.Entry{Ticker: ticker, Interval: interval, Start: sub.Start, End: sub.End,
					Vendor: vendorName, Status: journal.StatusError, Error: err.Error()})
				return written, &FetchError{Vendor: vendorName, Ticker: ticker, Interval: interval, Range: sub, Err: err}
			}
			bars = model.Window(bars, sub.Start, sub.End)
			if len(bars) == 0 {
				st.Empty++
				l.log.Info("vendor returned no bars", "ticker", ticker, "interval", interval, "range", sub.String())
				l.record(ctx, journal.Entry{Ticker: ticker, Interval: interval, Start: sub.Start, End: sub.End,
					Vendor: vendorName, Status: journal.StatusEmpty})
				continue
			}

			if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
				return written, fmt.Errorf("create ticker dir: %w", err)
			}
			if err := l.codec.Save(bars, path); err != nil {
				return written, fmt.Errorf("write partition %s: %w", path, err)
			}
			st.Written++
			l.log.Info("saved partition", "path", path, "bars", len(bars))
			l.record(ctx, journal.Entry{Ticker: ticker, Interval: interval, Start: sub.Start, End: sub.End,
				Vendor: vendorName, Status: journal.StatusOK, Bars: len(bars)})
			written = append(written, Partition{Range: sub, Path: path, ModTime: time.Now()})
		}
	}
	return written, nil
}

func (l *Loader) record(ctx context.Context, e journal.Entry) {
	if l.journal == nil {
		return
	}
	if err := l.journal.Record(ctx, e); err != nil {
		l.log.Warn("fetch journal write failed", "error", err)
	}
}

// orderByWriteTime orders partitions oldest-written first (ties by start) so
// Merge lets the most recently written file win duplicate timestamps.
func orderByWriteTime(ps []Partition) {
	sort.SliceStable(ps, func(i, j int) bool {
		if !ps[i].ModTime.Equal(ps[j].ModTime) {
			return ps[i].ModTime.Before(ps[j].ModTime)
		}
		return ps[i].Start.Before(ps[j].Start)
	})
}

type named interface{ Name() string }

func sourceName(src provider.HistoricalSource) string {
	if n, ok := src.(named); ok {
		return n.Name()
	}
	return fmt.Sprintf("%T", src)
}
