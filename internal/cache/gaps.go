package cache

// FindMissing returns the sub-ranges of requested not covered by cached,
// ascending and non-overlapping. Touching or overlapping cached ranges are
// coalesced first, so adjacent partitions never produce a zero-length gap.
func FindMissing(requested Range, cached []Range) []Range {
	if requested.Empty() {
		return nil
	}
	merged := mergeRanges(cached)

	var missing []Range
	cur := requested.Start
	for _, r := range merged {
		if !cur.Before(requested.End) {
			break
		}
		if cur.Before(r.Start) {
			missing = appendNonEmpty(missing, Range{Start: cur, End: minTime(r.Start, requested.End)})
		}
		cur = maxTime(cur, r.End)
	}
	if cur.Before(requested.End) {
		missing = append(missing, Range{Start: cur, End: requested.End})
	}
	return missing
}

// mergeRanges sorts a copy of rs and coalesces ranges where next.Start <= merged.End.
func mergeRanges(rs []Range) []Range {
	sorted := make([]Range, 0, len(rs))
	for _, r := range rs {
		if !r.Empty() {
			sorted = append(sorted, r)
		}
	}
	sortRanges(sorted)

	var merged []Range
	for _, r := range sorted {
		n := len(merged)
		if n == 0 || r.Start.After(merged[n-1].End) {
			merged = append(merged, r)
			continue
		}
		merged[n-1].End = maxTime(merged[n-1].End, r.End)
	}
	return merged
}

func appendNonEmpty(rs []Range, r Range) []Range {
	if r.Empty() {
		return rs
	}
	return append(rs, r)
}
