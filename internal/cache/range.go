package cache

import (
	"fmt"
	"sort"
	"time"
)

const dateLayout = "2006-01-02"

// Range is a half-open interval [Start, End).
type Range struct {
	Start time.Time
	End   time.Time
}

// NewRange returns [start, end) or ErrInvalidRange when end is not after start.
func NewRange(start, end time.Time) (Range, error) {
	r := Range{Start: start.UTC(), End: end.UTC()}
	if r.Empty() {
		return Range{}, fmt.Errorf("%w: %s", ErrInvalidRange, r)
	}
	return r, nil
}

// DayRange truncates both bounds to UTC midnight.
func DayRange(start, end time.Time) (Range, error) {
	return NewRange(truncateDay(start), truncateDay(end))
}

// Empty reports whether the range holds no instant.
func (r Range) Empty() bool { return !r.Start.Before(r.End) }

// Contains reports whether t falls in [Start, End).
func (r Range) Contains(t time.Time) bool {
	return !t.Before(r.Start) && t.Before(r.End)
}

// Overlaps reports whether the two ranges share at least one instant.
func (r Range) Overlaps(o Range) bool {
	return !(!o.End.After(r.Start) || !o.Start.Before(r.End))
}

func (r Range) String() string {
	return fmt.Sprintf("[%s, %s)", r.Start.Format(dateLayout), r.End.Format(dateLayout))
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func sortRanges(rs []Range) {
	sort.SliceStable(rs, func(i, j int) bool {
		if rs[i].Start.Equal(rs[j].Start) {
			return rs[i].End.Before(rs[j].End)
		}
		return rs[i].Start.Before(rs[j].Start)
	})
}

func maxTime(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func minTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}
