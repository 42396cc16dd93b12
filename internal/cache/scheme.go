package cache

import "strings"

// Granularity is the calendar unit partitions are aligned to.
type Granularity int

const (
	Year Granularity = iota
	Month
	Decade
)

func (g Granularity) String() string {
	switch g {
	case Year:
		return "year"
	case Month:
		return "month"
	case Decade:
		return "decade"
	default:
		return "unknown"
	}
}

// Intraday intervals split monthly so files stay small; daily and weekly
// bars split yearly; monthly bars are sparse enough for a decade per file.
var intervalSplit = map[string]Granularity{
	"1d":  Year,
	"1h":  Month,
	"1wk": Year,
	"1mo": Decade,
	"5d":  Year,
	"30m": Month,
	"15m": Month,
	"5m":  Month,
	"1m":  Month,
}

// GranularityFor returns the partition granularity for an interval code.
// Unknown intervals fall back to Year.
func GranularityFor(interval string) Granularity {
	if g, ok := intervalSplit[strings.ToLower(strings.TrimSpace(interval))]; ok {
		return g
	}
	return Year
}
