package model

import (
	"sort"
	"time"
)

// Bar represents one OHLCV bar (minute/daily etc.).
// Shared by vendors, partition codecs and the cache loader.
type Bar struct {
	Timestamp    int64   `json:"t" parquet:"t"` // Unix timestamp in milliseconds (UTC)
	Open         float64 `json:"o" parquet:"o"`
	High         float64 `json:"h" parquet:"h"`
	Low          float64 `json:"l" parquet:"l"`
	Close        float64 `json:"c" parquet:"c"`
	Volume       int64   `json:"v" parquet:"v"`
	VWAP         float64 `json:"vw,omitempty" parquet:"vw,optional"` // Volume weighted average price
	Transactions int64   `json:"n,omitempty" parquet:"n,optional"`   // Number of transactions
}

// Time returns the bar timestamp as UTC time.
func (b Bar) Time() time.Time {
	return time.UnixMilli(b.Timestamp).UTC()
}

// SortByTime sorts bars ascending by timestamp in place.
func SortByTime(bars []Bar) {
	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Timestamp < bars[j].Timestamp })
}

// Dedup keeps one bar per timestamp; a later element wins over an earlier one.
// Output order is the order in which each timestamp was first seen.
func Dedup(bars []Bar) []Bar {
	if len(bars) == 0 {
		return bars
	}
	idx := make(map[int64]int, len(bars))
	out := make([]Bar, 0, len(bars))
	for _, b := range bars {
		if i, ok := idx[b.Timestamp]; ok {
			out[i] = b
			continue
		}
		idx[b.Timestamp] = len(out)
		out = append(out, b)
	}
	return out
}

// Window returns bars with start <= t < end. Input order is preserved.
func Window(bars []Bar, start, end time.Time) []Bar {
	lo, hi := start.UnixMilli(), end.UnixMilli()
	out := make([]Bar, 0, len(bars))
	for _, b := range bars {
		if b.Timestamp >= lo && b.Timestamp < hi {
			out = append(out, b)
		}
	}
	return out
}
