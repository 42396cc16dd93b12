package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var halfYears = []Range{r("2020-01-01", "2020-07-01"), r("2020-07-01", "2021-01-01")}

func TestFindMissingScenarios(t *testing.T) {
	cases := []struct {
		name      string
		requested Range
		cached    []Range
		want      []Range
	}{
		{"covered", r("2020-03-01", "2020-09-01"), halfYears, nil},
		{"leading gap", r("2019-12-01", "2020-02-01"), halfYears, []Range{r("2019-12-01", "2020-01-01")}},
		{"trailing gap", r("2021-01-01", "2021-02-01"), halfYears, []Range{r("2021-01-01", "2021-02-01")}},
		{"no cache", r("2020-01-01", "2020-02-01"), nil, []Range{r("2020-01-01", "2020-02-01")}},
		{"both ends", r("2019-06-01", "2021-06-01"), halfYears, []Range{r("2019-06-01", "2020-01-01"), r("2021-01-01", "2021-06-01")}},
		{
			"hole in the middle",
			r("2020-01-01", "2020-12-01"),
			[]Range{r("2020-09-01", "2021-01-01"), r("2020-01-01", "2020-03-01")},
			[]Range{r("2020-03-01", "2020-09-01")},
		},
		{
			"overlapping cached ranges coalesce",
			r("2020-01-01", "2020-12-01"),
			[]Range{r("2020-01-01", "2020-06-01"), r("2020-03-01", "2020-08-01"), r("2020-02-01", "2020-04-01")},
			[]Range{r("2020-08-01", "2020-12-01")},
		},
		{"cached beyond request", r("2020-01-01", "2020-02-01"), []Range{r("2020-03-01", "2020-04-01")}, []Range{r("2020-01-01", "2020-02-01")}},
		{"cached before request", r("2020-05-01", "2020-06-01"), []Range{r("2020-01-01", "2020-02-01")}, []Range{r("2020-05-01", "2020-06-01")}},
		{"empty request", r("2020-05-01", "2020-05-01"), nil, nil},
		{"empty cached range ignored", r("2020-05-01", "2020-06-01"), []Range{r("2020-05-10", "2020-05-10")}, []Range{r("2020-05-01", "2020-06-01")}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, FindMissing(tc.requested, tc.cached))
		})
	}
}

func TestFindMissingDoesNotReorderInput(t *testing.T) {
	cached := []Range{r("2020-07-01", "2021-01-01"), r("2020-01-01", "2020-07-01")}
	FindMissing(r("2019-01-01", "2022-01-01"), cached)
	assert.Equal(t, r("2020-07-01", "2021-01-01"), cached[0])
}

// Missing gaps plus the cached overlap must tile the requested range exactly.
func TestFindMissingReconstructsRequest(t *testing.T) {
	requested := r("2018-03-15", "2022-10-20")
	cached := []Range{
		r("2017-01-01", "2018-06-01"),
		r("2019-01-01", "2019-02-01"),
		r("2019-01-15", "2019-05-01"),
		r("2020-07-01", "2021-01-01"),
		r("2022-10-01", "2023-01-01"),
	}
	missing := FindMissing(requested, cached)

	var pieces []Range
	pieces = append(pieces, missing...)
	for _, c := range mergeRanges(cached) {
		if c.Overlaps(requested) {
			pieces = append(pieces, Range{Start: maxTime(c.Start, requested.Start), End: minTime(c.End, requested.End)})
		}
	}
	sortRanges(pieces)

	assert.Equal(t, requested.Start, pieces[0].Start)
	assert.Equal(t, requested.End, pieces[len(pieces)-1].End)
	for i := 1; i < len(pieces); i++ {
		assert.Equal(t, pieces[i-1].End, pieces[i].Start, "pieces must be contiguous without overlap")
	}
	for _, m := range missing {
		assert.False(t, m.Empty())
	}
}
