package cache

import (
	"fmt"

	"barcache/internal/format"
	"barcache/internal/model"
)

// Merge reads every partition overlapping requested, in slice order, and
// returns the union deduplicated by timestamp (the partition read last wins),
// sorted ascending and trimmed to [requested.Start, requested.End).
func Merge(requested Range, parts []Partition, codec format.Codec) ([]model.Bar, error) {
	var all []model.Bar
	for _, p := range parts {
		if !p.Overlaps(requested) {
			continue
		}
		bars, err := codec.Load(p.Path)
		if err != nil {
			return nil, fmt.Errorf("read partition %s: %w", p.Path, err)
		}
		all = append(all, bars...)
	}
	all = model.Dedup(all)
	model.SortByTime(all)
	return model.Window(all, requested.Start, requested.End), nil
}
