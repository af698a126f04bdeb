package excel

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"viewstudy/domain/core"
	"viewstudy/domain/viewing"
	"viewstudy/ports"
)

func sampleDerivation() *viewing.Derivation {
	return &viewing.Derivation{
		Daily: []viewing.DailyCount{
			{Date: core.NewDate(2024, time.March, 24), Count: 2, UniqueShows: 1},
			{Date: core.NewDate(2024, time.March, 25), Count: 0, IsExam: true, Synthesized: true},
		},
		Weekly:    []viewing.WeeklyCount{{ISOYear: 2024, ISOWeek: 12, Views: 2}},
		Periods:   []viewing.PeriodStats{{TotalViews: 2, UniqueShows: 1, UniqueDays: 1}},
		DayOfWeek: []viewing.DayOfWeekStat{{Weekday: 6, Views: 2}},
		Weekend:   []viewing.WeekendStat{{IsWeekend: true, Views: 2}},
		Binge:     []viewing.BingeStat{{BingeViews: 0, Views: 2, Ratio: 0}},
		Skipped:   []viewing.RowError{{Line: 3, Reason: "line 3: empty title"}},
	}
}

func TestDerivedTables(t *testing.T) {
	tables := DerivedTables(sampleDerivation())
	names := make([]string, len(tables))
	for i, tbl := range tables {
		names[i] = tbl.Name
	}
	assert.Equal(t, []string{"daily_counts", "weekly_counts", "period_stats", "day_of_week", "weekend", "binge", "skipped_rows"}, names)
	assert.Equal(t, "Sunday", tables[3].Rows[0][1])
}

func TestCSVWriter(t *testing.T) {
	dir := t.TempDir()
	files, err := NewCSVWriter(quietLogger()).Write(context.Background(), dir, &ports.StudyResults{Derivation: sampleDerivation()})
	require.NoError(t, err)
	assert.Len(t, files, 7)

	f, err := os.Open(filepath.Join(dir, "daily_counts.csv"))
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"Date", "daily_views", "unique_shows", "is_exam", "synthesized"},
		{"2024-03-24", "2", "1", "false", "false"},
		{"2024-03-25", "0", "0", "true", "true"},
	}, records)
}

func TestCSVWriter_DailyTableReadsBack(t *testing.T) {
	dir := t.TempDir()
	_, err := NewCSVWriter(quietLogger()).Write(context.Background(), dir, &ports.StudyResults{Derivation: sampleDerivation()})
	require.NoError(t, err)

	src, err := NewDataReader(filepath.Join(dir, "daily_counts.csv"), quietLogger()).ReadDailyCounts()
	require.NoError(t, err)
	require.Len(t, src.Rows, 2)
	assert.True(t, src.HasExamCol)
	assert.Equal(t, "true", src.Rows[1].IsExam)
}

func TestWorkbookWriter(t *testing.T) {
	dir := t.TempDir()
	files, err := NewWorkbookWriter(quietLogger()).Write(context.Background(), dir, &ports.StudyResults{Derivation: sampleDerivation()})
	require.NoError(t, err)
	require.Equal(t, []string{filepath.Join(dir, WorkbookName)}, files)

	wb, err := excelize.OpenFile(files[0])
	require.NoError(t, err)
	defer wb.Close()

	assert.Equal(t, []string{"daily_counts", "weekly_counts", "period_stats", "day_of_week", "weekend", "binge", "skipped_rows"}, wb.GetSheetList())
	rows, err := wb.GetRows("daily_counts")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "2024-03-24", rows[1][0])
	assert.Equal(t, "2", rows[1][1])
}

func TestWriters_SkipWithoutDerivation(t *testing.T) {
	for _, w := range []ports.ArtifactWriter{NewCSVWriter(nil), NewWorkbookWriter(nil)} {
		files, err := w.Write(context.Background(), t.TempDir(), &ports.StudyResults{})
		assert.NoError(t, err, w.Name())
		assert.Empty(t, files, w.Name())
	}
}
