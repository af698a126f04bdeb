package features

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"viewstudy/domain/viewing"
)

func sampleEvents(t *testing.T) []viewing.ViewingEvent {
	t.Helper()
	d := NewDeriver(examCalendar(), Options{}, quietLogger())
	out := d.Derive(rows(
		// Saturday, non-exam: a three-episode binge plus a film
		"Dark: Season 1: Secrets", "3/23/24",
		"Dark: Season 1: Lies", "3/23/24",
		"Dark: Season 1: Past and Present", "3/23/24",
		"Glass Onion", "3/23/24",
		// Monday, exam
		"Arcane: Season 1: Welcome", "3/25/24",
		"Arcane: Season 1: Some Mysteries", "3/25/24",
		// Saturday, non-exam, next ISO week
		"Glass Onion", "3/30/24",
	))
	require.Empty(t, out.Skipped)
	return out.Events
}

func TestWeeklyCounts(t *testing.T) {
	weekly := WeeklyCounts(sampleEvents(t))
	assert.Equal(t, []viewing.WeeklyCount{
		{ISOYear: 2024, ISOWeek: 12, Views: 4},
		{ISOYear: 2024, ISOWeek: 13, Views: 3},
	}, weekly)

	x, y := WeeklySeries(weekly)
	assert.Equal(t, []float64{1, 2}, x)
	assert.Equal(t, []float64{4, 3}, y)
}

func TestPeakWeeks(t *testing.T) {
	weekly := []viewing.WeeklyCount{
		{ISOYear: 2024, ISOWeek: 50, Views: 6},
		{ISOYear: 2024, ISOWeek: 52, Views: 9},
		{ISOYear: 2025, ISOWeek: 1, Views: 2},
		{ISOYear: 2025, ISOWeek: 2, Views: 9},
	}
	busiest, quietest, ok := PeakWeeks(weekly)
	require.True(t, ok)
	assert.Equal(t, weekly[1], busiest)
	assert.Equal(t, weekly[2], quietest)

	_, _, ok = PeakWeeks(nil)
	assert.False(t, ok)
}

func TestPeriodSummary(t *testing.T) {
	assert.Equal(t, []viewing.PeriodStats{
		{IsExam: false, TotalViews: 5, UniqueShows: 2, UniqueDays: 2},
		{IsExam: true, TotalViews: 2, UniqueShows: 1, UniqueDays: 1},
	}, PeriodSummary(sampleEvents(t)))

	assert.Empty(t, PeriodSummary(nil))
}

func TestDayOfWeekCounts(t *testing.T) {
	dow := DayOfWeekCounts(sampleEvents(t))
	assert.Equal(t, []viewing.DayOfWeekStat{
		{IsExam: false, Weekday: 5, Views: 5},
		{IsExam: true, Weekday: 0, Views: 2},
	}, dow)

	table := DayOfWeekTable(dow)
	require.Len(t, table, 2)
	assert.Equal(t, []float64{0, 0, 0, 0, 0, 5, 0}, table[0])
	assert.Equal(t, []float64{2, 0, 0, 0, 0, 0, 0}, table[1])
}

func TestWeekendCounts(t *testing.T) {
	assert.Equal(t, []viewing.WeekendStat{
		{IsExam: false, IsWeekend: true, Views: 5},
		{IsExam: true, IsWeekend: false, Views: 2},
	}, WeekendCounts(sampleEvents(t)))
}

func TestBingeStats(t *testing.T) {
	events := sampleEvents(t)

	binge := BingeStats(events, 3)
	require.Len(t, binge, 2)
	assert.Equal(t, viewing.BingeStat{IsExam: false, BingeViews: 3, Views: 5, Ratio: 0.6}, binge[0])
	assert.Equal(t, viewing.BingeStat{IsExam: true, BingeViews: 0, Views: 2, Ratio: 0}, binge[1])

	lenient := BingeStats(events, 2)
	assert.Equal(t, 2, lenient[1].BingeViews)
}

func TestSplitByWeekend(t *testing.T) {
	daily := DailyCounts(sampleEvents(t))
	weekend, weekday := SplitByWeekend(daily)
	assert.Equal(t, []float64{4, 1}, weekend.Values)
	assert.Equal(t, []float64{2}, weekday.Values)
	assert.Equal(t, "weekend", weekend.Label)
}

func TestDailyBasedAggregatesMatchEventBased(t *testing.T) {
	events := sampleEvents(t)
	daily := DailyCounts(events)

	assert.Equal(t, WeeklyCounts(events), WeeklyFromDaily(daily))
	assert.Equal(t, DayOfWeekCounts(events), DayOfWeekFromDaily(daily))
}
