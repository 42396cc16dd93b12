package cache

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"time"
)

// Partition is one persisted file of bars for a ticker+interval.
type Partition struct {
	Range
	Path    string
	ModTime time.Time
}

// PartitionName returns {interval}-{start}-{end}.{ext}; end is exclusive.
func PartitionName(interval string, r Range, ext string) string {
	return fmt.Sprintf("%s-%s-%s.%s", interval, r.Start.UTC().Format(dateLayout), r.End.UTC().Format(dateLayout), ext)
}

// PartitionPath returns {root}/{ticker}/{PartitionName}.
func PartitionPath(root, ticker, interval string, r Range, ext string) string {
	return filepath.Join(root, ticker, PartitionName(interval, r, ext))
}

func partitionPattern(interval, ext string) *regexp.Regexp {
	return regexp.MustCompile(`^` + regexp.QuoteMeta(interval) +
		`-([0-9]{4}-[0-9]{2}-[0-9]{2})-([0-9]{4}-[0-9]{2}-[0-9]{2})\.` + regexp.QuoteMeta(ext) + `$`)
}

// Scan lists existing partitions under root/ticker for interval, in directory
// order. A missing ticker directory is not an error. Entries whose names
// match but whose dates do not parse are logged and skipped.
func Scan(root, ticker, interval, ext string, log *slog.Logger) ([]Partition, error) {
	if log == nil {
		log = slog.Default()
	}
	dir := filepath.Join(root, ticker)
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		log.Debug("ticker dir does not exist", "dir", dir)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", dir, err)
	}

	pattern := partitionPattern(interval, ext)
	var found []Partition
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		m := pattern.FindStringSubmatch(e.Name())
		if m == nil {
			log.Debug("skip non-partition file", "file", e.Name())
			continue
		}
		path := filepath.Join(dir, e.Name())
		start, serr := time.ParseInLocation(dateLayout, m[1], time.UTC)
		end, eerr := time.ParseInLocation(dateLayout, m[2], time.UTC)
		if err := errors.Join(serr, eerr); err != nil {
			log.Warn("cache scan: unparseable partition name", "path", path, "error", err)
			continue
		}
		if !start.Before(end) {
			log.Warn("cache scan: empty partition range", "path", path)
			continue
		}
		p := Partition{Range: Range{Start: start, End: end}, Path: path}
		if info, err := e.Info(); err == nil {
			p.ModTime = info.ModTime()
		}
		found = append(found, p)
	}
	return found, nil
}

// Ranges returns the ranges of ps in the same order.
func Ranges(ps []Partition) []Range {
	out := make([]Range, len(ps))
	for i, p := range ps {
		out[i] = p.Range
	}
	return out
}
