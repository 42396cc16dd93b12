package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitDailyByYear(t *testing.T) {
	got := Split(r("2020-01-01", "2022-06-01"), "1d")
	assert.Equal(t, []Range{
		r("2020-01-01", "2021-01-01"),
		r("2021-01-01", "2022-01-01"),
		r("2022-01-01", "2022-06-01"),
	}, got)
}

func TestSplitHourlyByMonth(t *testing.T) {
	got := Split(r("2020-01-01", "2020-04-01"), "1h")
	require.Len(t, got, 3)
	assert.Equal(t, time.January, got[0].Start.Month())
	assert.Equal(t, time.February, got[1].Start.Month())
	assert.Equal(t, time.March, got[2].Start.Month())
}

func TestSplitClipsEnds(t *testing.T) {
	got := Split(r("2020-11-15", "2021-02-10"), "1h")
	assert.Equal(t, []Range{
		r("2020-11-15", "2020-12-01"),
		r("2020-12-01", "2021-01-01"),
		r("2021-01-01", "2021-02-01"),
		r("2021-02-01", "2021-02-10"),
	}, got)
}

func TestSplitMonthlyByDecade(t *testing.T) {
	got := Split(r("1995-06-01", "2012-01-01"), "1mo")
	assert.Equal(t, []Range{
		r("1995-06-01", "2000-01-01"),
		r("2000-01-01", "2010-01-01"),
		r("2010-01-01", "2012-01-01"),
	}, got)
}

func TestSplitWithinOneUnit(t *testing.T) {
	assert.Equal(t, []Range{r("2020-03-01", "2020-03-05")}, Split(r("2020-03-01", "2020-03-05"), "1d"))
	assert.Nil(t, Split(r("2020-03-01", "2020-03-01"), "1d"))
}

func TestSplitTilesGap(t *testing.T) {
	gaps := []Range{r("2003-07-19", "2021-03-02"), r("2019-12-31", "2020-01-02")}
	for _, interval := range []string{"1m", "1h", "1d", "1wk", "1mo", "odd"} {
		for _, gap := range gaps {
			parts := Split(gap, interval)
			require.NotEmpty(t, parts)
			assert.Equal(t, gap.Start, parts[0].Start, interval)
			assert.Equal(t, gap.End, parts[len(parts)-1].End, interval)
			for i, p := range parts {
				assert.True(t, p.Start.Before(p.End), "%s part %d is empty", interval, i)
				if i > 0 {
					assert.Equal(t, parts[i-1].End, p.Start, "%s part %d not contiguous", interval, i)
				}
			}
		}
	}
}

func TestNextBoundaryAdvances(t *testing.T) {
	ts := time.Date(2020, 12, 31, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, d("2021-01-01"), nextBoundary(ts, Month))
	assert.Equal(t, d("2021-01-01"), nextBoundary(ts, Year))
	assert.Equal(t, d("2030-01-01"), nextBoundary(d("2020-01-01"), Decade))
	assert.Equal(t, d("2030-01-01"), nextBoundary(d("2029-12-31"), Decade))
}
