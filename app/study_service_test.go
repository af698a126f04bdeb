package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"viewstudy/adapters/excel"
	"viewstudy/domain/core"
	"viewstudy/domain/stats"
	"viewstudy/domain/viewing"
	"viewstudy/internal"
	"viewstudy/internal/config"
	"viewstudy/internal/errors"
	"viewstudy/internal/features"
	"viewstudy/internal/report"
	"viewstudy/internal/testkit"
	"viewstudy/ports"
)

type stubHistory struct {
	rows []viewing.RawRow
	err  error
}

func (s stubHistory) ReadHistory() (*viewing.HistorySource, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &viewing.HistorySource{Path: "stub.csv", Rows: s.rows, Hash: core.NewInputHash([]byte("stub"))}, nil
}

type stubCounts struct {
	src *viewing.DailyCountSource
}

func (s stubCounts) ReadDailyCounts() (*viewing.DailyCountSource, error) {
	return s.src, nil
}

func quietLogger() *internal.Logger {
	return internal.NewLoggerTo(io.Discard, internal.LogLevelError)
}

func testConfig(outDir string) *config.Config {
	return &config.Config{
		LogLevel:       "ERROR",
		Alpha:          0.05,
		DateLayouts:    features.DefaultLayouts,
		BingeThreshold: features.DefaultBingeThreshold,
		ExactLimit:     8,
		OutputDir:      outDir,
		WriteHTML:      true,
		WriteWorkbook:  true,
	}
}

func stubService(cfg *config.Config, history stubHistory, counts stubCounts) *StudyService {
	logger := quietLogger()
	tables, reports := DefaultWriters(cfg, logger)
	return NewStudyService(cfg, logger,
		func(string) ports.HistoryReader { return history },
		func(string) ports.DailyCountReader { return counts },
		tables, reports,
	)
}

// threeWeeks returns rows for 2024-01-01 (a Monday) to 2024-01-21 with
// (i%4)+1 views on day i
func threeWeeks() []viewing.RawRow {
	var rows []viewing.RawRow
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 21; i++ {
		date := start.AddDate(0, 0, i).Format(testkit.ExportDateLayout)
		for v := 0; v < i%4+1; v++ {
			rows = append(rows, viewing.RawRow{Line: len(rows) + 1, Title: fmt.Sprintf("Dark: Season 1: Episode %d", v+1), Date: date})
		}
	}
	return rows
}

func TestRun_InvalidCalendarWritesNothing(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out")
	svc := stubService(testConfig(out), stubHistory{rows: threeWeeks()}, stubCounts{})

	cal := viewing.Calendar{Ranges: []viewing.ExamRange{
		{Start: core.NewDate(2024, 1, 10), End: core.NewDate(2024, 1, 5)},
	}}
	_, err := svc.Run(context.Background(), StudyRequest{InputPath: "history.csv", Calendar: cal})
	require.Error(t, err)
	assert.True(t, errors.IsConfigInvalid(err))
	assert.NoDirExists(t, out)
}

func TestRun_InvalidSettingsWritesNothing(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out")
	cfg := testConfig(out)
	cfg.Alpha = 1.5
	svc := stubService(cfg, stubHistory{rows: threeWeeks()}, stubCounts{})

	_, err := svc.Run(context.Background(), StudyRequest{InputPath: "history.csv"})
	assert.True(t, errors.IsConfigInvalid(err))
	assert.NoDirExists(t, out)
}

func TestRun_NoExamDaysFailsOnlyExamTests(t *testing.T) {
	svc := stubService(testConfig(t.TempDir()), stubHistory{rows: threeWeeks()}, stubCounts{})

	res, err := svc.Run(context.Background(), StudyRequest{InputPath: "history.csv"})
	require.NoError(t, err)

	outcomes := res.Results.Outcomes
	require.Len(t, outcomes, len(testPlan))
	for _, i := range []int{0, 1, 2, 4} {
		assert.True(t, outcomes[i].Failed(), outcomes[i].Name)
		assert.True(t, errors.IsValidationError(outcomes[i].Err), outcomes[i].Name)
		assert.Nil(t, outcomes[i].Result)
	}
	for _, i := range []int{3, 5} {
		require.False(t, outcomes[i].Failed(), outcomes[i].Name)
		assert.NotNil(t, outcomes[i].Result)
	}

	// weekly totals are 16, 17, 18
	trend := outcomes[5].Result
	assert.InDelta(t, 1.0, trend.Statistic, 1e-12)
	assert.Equal(t, 3.0, trend.Extra["max_week"])
	assert.Equal(t, 1.0, trend.Extra["min_week"])
	assert.Equal(t, 2024.0, trend.Extra["max_week_year"])
	assert.Equal(t, 21, len(res.Results.Derivation.Daily))
}

func TestRun_ReaderErrorIsWrapped(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out")
	svc := stubService(testConfig(out), stubHistory{err: errors.InvalidInput("missing Title column")}, stubCounts{})

	_, err := svc.Run(context.Background(), StudyRequest{InputPath: "history.csv"})
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
	assert.Contains(t, err.Error(), "failed to load viewing history")
	assert.NoDirExists(t, out)
}

func TestRun_CancelledContext(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out")
	svc := stubService(testConfig(out), stubHistory{rows: threeWeeks()}, stubCounts{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := svc.Run(ctx, StudyRequest{InputPath: "history.csv"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.NoDirExists(t, out)
}

func TestRun_WritesEveryOutput(t *testing.T) {
	dir := t.TempDir()
	cfg := testkit.DefaultHistoryConfig()
	cfg.MalformedRows = 4
	input := filepath.Join(dir, "history.csv")
	require.NoError(t, testkit.WriteHistoryCSV(input, testkit.NewHistoryGenerator(cfg).GenerateRows()))

	out := filepath.Join(dir, "out")
	svc := NewDefaultStudyService(testConfig(out), quietLogger())
	res, err := svc.Run(context.Background(), StudyRequest{InputPath: input, Calendar: cfg.Calendar})
	require.NoError(t, err)

	for _, name := range []string{
		report.TextFile, report.MarkdownFile, report.HTMLFile, report.YAMLFile,
		excel.WorkbookName, "daily_counts.csv", "weekly_counts.csv", "skipped_rows.csv",
	} {
		assert.FileExists(t, filepath.Join(out, name))
	}
	assert.Len(t, res.Files, len(excel.DerivedTables(res.Results.Derivation))+5)
	assert.Len(t, res.Results.Derivation.Skipped, 4)

	for _, o := range res.Results.Outcomes {
		assert.False(t, o.Failed(), o.Name)
	}

	manifest := res.Results.Manifest
	require.NotNil(t, manifest)
	assert.NoError(t, manifest.Validate())
	assert.Equal(t, input, manifest.InputPath)
	assert.Equal(t, CodeVersion, manifest.CodeVersion)
}

func TestRun_IsDeterministic(t *testing.T) {
	rows := threeWeeks()
	cal := viewing.Calendar{Ranges: []viewing.ExamRange{
		{Start: core.NewDate(2024, 1, 8), End: core.NewDate(2024, 1, 12)},
	}}

	run := func() *StudyResult {
		svc := stubService(testConfig(t.TempDir()), stubHistory{rows: rows}, stubCounts{})
		res, err := svc.Run(context.Background(), StudyRequest{InputPath: "history.csv", Calendar: cal})
		require.NoError(t, err)
		return res
	}
	first, second := run(), run()

	assert.Equal(t, first.Results.Derivation.Daily, second.Results.Derivation.Daily)
	assert.Equal(t, first.Results.Outcomes, second.Results.Outcomes)
	assert.Equal(t, first.Results.Manifest.Fingerprint, second.Results.Manifest.Fingerprint)
}

func TestDerive_WritesTablesOnly(t *testing.T) {
	out := t.TempDir()
	svc := stubService(testConfig(out), stubHistory{rows: threeWeeks()}, stubCounts{})

	res, err := svc.Derive(context.Background(), StudyRequest{InputPath: "history.csv"})
	require.NoError(t, err)
	assert.Empty(t, res.Results.Outcomes)
	assert.FileExists(t, filepath.Join(out, "daily_counts.csv"))
	assert.NoFileExists(t, filepath.Join(out, report.TextFile))
}

func countSource(hasExam bool, rows ...viewing.DailyCountRow) *viewing.DailyCountSource {
	return &viewing.DailyCountSource{Path: "daily_counts.csv", Rows: rows, HasExamCol: hasExam, Hash: core.NewInputHash([]byte("daily"))}
}

func TestTestDailyCounts_UsesExamColumn(t *testing.T) {
	var rows []viewing.DailyCountRow
	for i := 0; i < 14; i++ {
		rows = append(rows, viewing.DailyCountRow{
			Line:   i + 1,
			Date:   core.NewDate(2024, 1, 1+i).String(),
			Views:  fmt.Sprint(i%5 + 1),
			IsExam: fmt.Sprint(i >= 7),
		})
	}
	rows = append(rows,
		viewing.DailyCountRow{Line: 15, Date: "garbage", Views: "1", IsExam: "false"},
		viewing.DailyCountRow{Line: 16, Date: rows[0].Date, Views: "9", IsExam: "false"},
	)

	out := t.TempDir()
	svc := stubService(testConfig(out), stubHistory{}, stubCounts{src: countSource(true, rows...)})
	res, err := svc.TestDailyCounts(context.Background(), StudyRequest{InputPath: "daily_counts.csv"})
	require.NoError(t, err)

	mw := res.Results.Outcomes[0]
	require.False(t, mw.Failed(), "%v", mw.Err)
	assert.Equal(t, 7, mw.Result.Groups[stats.LabelExam].N)
	assert.Equal(t, 7, mw.Result.Groups[stats.LabelNonExam].N)
	assert.FileExists(t, filepath.Join(out, report.TextFile))
	assert.NoFileExists(t, filepath.Join(out, "daily_counts.csv"))
}

func TestTestDailyCounts_CalendarOverridesColumn(t *testing.T) {
	rows := []viewing.DailyCountRow{
		{Line: 1, Date: "2024-01-01", Views: "3", IsExam: "true"},
		{Line: 2, Date: "2024-01-02", Views: "4", IsExam: "true"},
		{Line: 3, Date: "2024-01-03", Views: "1", IsExam: "true"},
	}
	svc := stubService(testConfig(t.TempDir()), stubHistory{}, stubCounts{src: countSource(true, rows...)})
	cal := viewing.Calendar{Ranges: []viewing.ExamRange{
		{Start: core.NewDate(2024, 1, 3), End: core.NewDate(2024, 1, 3)},
	}}

	res, err := svc.TestDailyCounts(context.Background(), StudyRequest{InputPath: "daily_counts.csv", Calendar: cal})
	require.NoError(t, err)
	mw := res.Results.Outcomes[0]
	require.False(t, mw.Failed(), "%v", mw.Err)
	assert.Equal(t, 1, mw.Result.Groups[stats.LabelExam].N)
	assert.Equal(t, 2, mw.Result.Groups[stats.LabelNonExam].N)
}

func TestTestDailyCounts_NonNumericCountFailsEveryTest(t *testing.T) {
	rows := []viewing.DailyCountRow{
		{Line: 1, Date: "2024-01-01", Views: "3", IsExam: "true"},
		{Line: 2, Date: "2024-01-02", Views: "lots", IsExam: "false"},
		{Line: 3, Date: "2024-01-03", Views: "2", IsExam: "false"},
	}
	out := t.TempDir()
	svc := stubService(testConfig(out), stubHistory{}, stubCounts{src: countSource(true, rows...)})

	res, err := svc.TestDailyCounts(context.Background(), StudyRequest{InputPath: "daily_counts.csv"})
	require.NoError(t, err)
	require.Len(t, res.Results.Outcomes, len(testPlan))
	for _, o := range res.Results.Outcomes {
		assert.True(t, errors.IsValidationError(o.Err), o.Name)
	}

	text, err := os.ReadFile(filepath.Join(out, report.TextFile))
	require.NoError(t, err)
	assert.Contains(t, string(text), "VALIDATION_ERROR")
}
