package model

import (
	"testing"
	"time"
)

const benchBars2Years = 504 * 960 // ~484k minute bars

func benchBars(n, overlap int) []Bar {
	start := time.Date(2022, 1, 3, 0, 0, 0, 0, time.UTC).UnixMilli()
	bars := make([]Bar, 0, n+overlap)
	for j := 0; j < n; j++ {
		bars = append(bars, Bar{
			Timestamp: start + int64(j)*60_000, Open: 100, High: 101, Low: 99, Close: 100.5,
			Volume: 1000, VWAP: 100.2, Transactions: 50,
		})
	}
	// a second partition re-covering the tail
	for j := n - overlap; j < n; j++ {
		bars = append(bars, Bar{Timestamp: start + int64(j)*60_000, Close: 101})
	}
	return bars
}

func BenchmarkDedupSort(b *testing.B) {
	src := benchBars(benchBars2Years, 960*20)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		bars := append([]Bar(nil), src...)
		bars = Dedup(bars)
		SortByTime(bars)
	}
}

func BenchmarkWindow(b *testing.B) {
	src := benchBars(benchBars2Years, 0)
	start := time.Date(2022, 6, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 3, 0)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = Window(src, start, end)
	}
}
