package cache

import (
	"fmt"
	"time"
)

// Split cuts gap into contiguous sub-ranges whose inner boundaries fall on
// the calendar unit GranularityFor(interval) returns. The first and last
// pieces are clipped to gap.Start and gap.End.
func Split(gap Range, interval string) []Range {
	if gap.Empty() {
		return nil
	}
	g := GranularityFor(interval)
	var out []Range
	for cur := gap.Start; cur.Before(gap.End); {
		next := nextBoundary(cur, g)
		if !next.After(cur) {
			panic(fmt.Sprintf("cache: boundary %s does not advance past %s (%s)", next, cur, g))
		}
		end := minTime(next, gap.End)
		out = append(out, Range{Start: cur, End: end})
		cur = end
	}
	return out
}

// nextBoundary returns the first year/month/decade start strictly after t.
func nextBoundary(t time.Time, g Granularity) time.Time {
	t = t.UTC()
	switch g {
	case Month:
		return time.Date(t.Year(), t.Month()+1, 1, 0, 0, 0, 0, time.UTC)
	case Decade:
		return time.Date(floorDiv(t.Year(), 10)*10+10, time.January, 1, 0, 0, 0, 0, time.UTC)
	default:
		return time.Date(t.Year()+1, time.January, 1, 0, 0, 0, 0, time.UTC)
	}
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}
