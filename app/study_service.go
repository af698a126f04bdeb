package app

import (
	"context"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"viewstudy/domain/core"
	"viewstudy/domain/run"
	"viewstudy/domain/stats"
	"viewstudy/domain/viewing"
	"viewstudy/internal"
	"viewstudy/internal/config"
	"viewstudy/internal/errors"
	"viewstudy/internal/features"
	"viewstudy/internal/hypothesis"
	"viewstudy/ports"
)

// CodeVersion is stamped into every run manifest; overridden at build time
var CodeVersion = "0.1.0"

// StudyService runs the viewing study: load, derive, test, report
type StudyService struct {
	cfg           *config.Config
	logger        *internal.Logger
	openHistory   ports.ReaderFactory
	openCounts    ports.CountReaderFactory
	tester        *hypothesis.Tester
	tableWriters  []ports.ArtifactWriter
	reportWriters []ports.ArtifactWriter
}

// StudyRequest defines the inputs of one run
type StudyRequest struct {
	InputPath string
	Calendar  viewing.Calendar
	OutputDir string // defaults to the configured output dir
}

// StudyResult contains the complete output of a run
type StudyResult struct {
	Results   *ports.StudyResults
	Files     []string
	RuntimeMs int64
}

// NewStudyService creates a study service
func NewStudyService(
	cfg *config.Config,
	logger *internal.Logger,
	openHistory ports.ReaderFactory,
	openCounts ports.CountReaderFactory,
	tableWriters []ports.ArtifactWriter,
	reportWriters []ports.ArtifactWriter,
) *StudyService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &StudyService{
		cfg:           cfg,
		logger:        logger,
		openHistory:   openHistory,
		openCounts:    openCounts,
		tester:        hypothesis.NewTester(cfg.ExactLimit, logger),
		tableWriters:  tableWriters,
		reportWriters: reportWriters,
	}
}

// Run derives features from a history export, runs every test and writes
// all outputs. Configuration problems abort before any file is written.
func (s *StudyService) Run(ctx context.Context, req StudyRequest) (*StudyResult, error) {
	start := time.Now()
	results, err := s.derive(ctx, req)
	if err != nil {
		return nil, err
	}

	d := results.Derivation
	results.Outcomes = s.RunTests(d.Daily, d.Weekly, d.DayOfWeek, nil)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	writers := append(append([]ports.ArtifactWriter{}, s.tableWriters...), s.reportWriters...)
	files, err := s.write(ctx, s.outputDir(req), results, writers)
	if err != nil {
		return nil, err
	}
	return &StudyResult{Results: results, Files: files, RuntimeMs: time.Since(start).Milliseconds()}, nil
}

// Derive runs only the feature derivation and writes the derived tables
func (s *StudyService) Derive(ctx context.Context, req StudyRequest) (*StudyResult, error) {
	start := time.Now()
	results, err := s.derive(ctx, req)
	if err != nil {
		return nil, err
	}
	files, err := s.write(ctx, s.outputDir(req), results, s.tableWriters)
	if err != nil {
		return nil, err
	}
	return &StudyResult{Results: results, Files: files, RuntimeMs: time.Since(start).Milliseconds()}, nil
}

// TestDailyCounts runs the tests on a previously derived daily-count table.
// Exam flags come from the calendar when it has ranges, otherwise from the
// table's is_exam column.
func (s *StudyService) TestDailyCounts(ctx context.Context, req StudyRequest) (*StudyResult, error) {
	start := time.Now()
	if err := s.checkConfig(req.Calendar); err != nil {
		return nil, err
	}

	src, err := s.openCounts(req.InputPath).ReadDailyCounts()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load daily counts")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	daily, inputErr := s.parseDailyCounts(src, req.Calendar)
	results := &ports.StudyResults{
		Manifest: s.manifest(src.Path, src.Hash, req.Calendar),
		Calendar: req.Calendar,
		Alpha:    s.cfg.Alpha,
	}
	results.Outcomes = s.RunTests(daily, features.WeeklyFromDaily(daily), features.DayOfWeekFromDaily(daily), inputErr)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	files, err := s.write(ctx, s.outputDir(req), results, s.reportWriters)
	if err != nil {
		return nil, err
	}
	return &StudyResult{Results: results, Files: files, RuntimeMs: time.Since(start).Milliseconds()}, nil
}

func (s *StudyService) derive(ctx context.Context, req StudyRequest) (*ports.StudyResults, error) {
	if err := s.checkConfig(req.Calendar); err != nil {
		return nil, err
	}

	loadStart := time.Now()
	src, err := s.openHistory(req.InputPath).ReadHistory()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load viewing history")
	}
	s.logger.Info("Loaded %d rows from %s in %v", len(src.Rows), src.Path, time.Since(loadStart))
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	deriver := features.NewDeriver(req.Calendar, features.Options{
		Layouts:        s.cfg.DateLayouts,
		FillCalendar:   s.cfg.FillCalendar,
		BingeThreshold: s.cfg.BingeThreshold,
	}, s.logger)
	derivation := deriver.Derive(src.Rows)
	if len(derivation.Skipped) > 0 {
		s.logger.Warn("%d of %d rows were skipped as malformed", len(derivation.Skipped), len(src.Rows))
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return &ports.StudyResults{
		Manifest:   s.manifest(src.Path, src.Hash, req.Calendar),
		Calendar:   req.Calendar,
		Derivation: derivation,
		Alpha:      s.cfg.Alpha,
	}, nil
}

// checkConfig validates settings and calendar before anything is read or
// written
func (s *StudyService) checkConfig(cal viewing.Calendar) error {
	if err := s.cfg.Validate(); err != nil {
		return err
	}
	if err := config.ValidateCalendar(cal); err != nil {
		return err
	}
	if len(cal.Ranges) == 0 {
		s.logger.Warn("calendar has no exam ranges; every day is non-exam")
	}
	return nil
}

func (s *StudyService) manifest(path string, hash core.InputHash, cal viewing.Calendar) *run.RunManifest {
	return run.NewRunManifest(core.NewRunID(), path, hash, cal.Hash(), run.Settings{
		Alpha:          s.cfg.Alpha,
		DateLayouts:    s.cfg.DateLayouts,
		BingeThreshold: s.cfg.BingeThreshold,
		FillCalendar:   s.cfg.FillCalendar,
		ExactLimit:     s.cfg.ExactLimit,
	}, CodeVersion)
}

func (s *StudyService) outputDir(req StudyRequest) string {
	if req.OutputDir != "" {
		return req.OutputDir
	}
	return s.cfg.OutputDir
}

func (s *StudyService) write(ctx context.Context, dir string, results *ports.StudyResults, writers []ports.ArtifactWriter) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.IOError("failed to create output dir "+dir, err)
	}
	var files []string
	for _, w := range writers {
		if err := ctx.Err(); err != nil {
			return files, err
		}
		out, err := w.Write(ctx, dir, results)
		if err != nil {
			return files, errors.Wrapf(err, "%s writer failed", w.Name())
		}
		files = append(files, out...)
	}
	s.logger.Info("Wrote %d files to %s", len(files), dir)
	return files, nil
}

// parseDailyCounts converts table rows to daily counts. Malformed dates and
// flags skip the row; a non-numeric count is returned as a validation error
// that aborts every test.
func (s *StudyService) parseDailyCounts(src *viewing.DailyCountSource, cal viewing.Calendar) ([]viewing.DailyCount, error) {
	layouts := append([]string{core.DateLayout}, s.cfg.DateLayouts...)
	useCalendar := len(cal.Ranges) > 0 || !src.HasExamCol
	if !useCalendar {
		s.logger.Info("Using is_exam column of %s for exam flags", src.Path)
	}

	seen := make(map[core.Date]bool, len(src.Rows))
	var daily []viewing.DailyCount
	var inputErr error
	for _, row := range src.Rows {
		date, err := features.ParseTimestamp(row.Date, layouts)
		if err != nil {
			s.logger.Warn("skipping daily-count line %d: %v", row.Line, err)
			continue
		}
		if seen[date] {
			s.logger.Warn("skipping daily-count line %d: duplicate date %s", row.Line, date)
			continue
		}
		if !cal.Window.Contains(date) {
			continue
		}

		isExam := cal.IsExam(date)
		if !useCalendar {
			if isExam, err = strconv.ParseBool(strings.TrimSpace(row.IsExam)); err != nil {
				s.logger.Warn("skipping daily-count line %d: is_exam %q is not a boolean", row.Line, row.IsExam)
				continue
			}
		}

		count, err := strconv.ParseFloat(strings.TrimSpace(row.Views), 64)
		if err != nil || math.IsNaN(count) || math.IsInf(count, 0) || count != math.Trunc(count) {
			if inputErr == nil {
				inputErr = errors.ValidationErrorf("daily-count line %d: count %q is not a whole number", row.Line, row.Views)
			}
			continue
		}

		seen[date] = true
		daily = append(daily, viewing.DailyCount{Date: date, Count: int(count), IsExam: isExam})
	}
	sort.Slice(daily, func(i, j int) bool { return daily[i].Date.Before(daily[j].Date) })
	return daily, inputErr
}

// testPlan lists the tests of a study, in report order
var testPlan = []struct {
	name     string
	question string
}{
	{"Mann-Whitney U: exam vs non-exam days", "Is the distribution of daily views different on exam days?"},
	{"Chi-square rate: exam vs non-exam days", "Is the daily viewing rate different on exam days?"},
	{"Independent t-test: exam vs non-exam days", "Is the mean number of daily views different on exam days?"},
	{"Independent t-test: weekend vs weekday", "Is the mean number of daily views different at weekends?"},
	{"Chi-square: day of week x exam period", "Does the weekday pattern of viewing depend on exam periods?"},
	{"Pearson correlation: weekly trend", "Do weekly views trend up or down over the period?"},
}

// weeklyTrend correlates week position with weekly views and records the
// ISO weeks with the most and the fewest views
func (s *StudyService) weeklyTrend(weekly []viewing.WeeklyCount) (*stats.TestResult, error) {
	x, y := features.WeeklySeries(weekly)
	res, err := s.tester.PearsonTrend(x, y)
	if err != nil {
		return nil, err
	}
	if busiest, quietest, ok := features.PeakWeeks(weekly); ok {
		res.Extra["max_week"] = float64(busiest.ISOWeek)
		res.Extra["max_week_year"] = float64(busiest.ISOYear)
		res.Extra["min_week"] = float64(quietest.ISOWeek)
		res.Extra["min_week_year"] = float64(quietest.ISOYear)
	}
	return res, nil
}

// RunTests runs the test plan. A failing test is recorded and the rest
// still run. A non-nil inputErr marks every test as failed.
func (s *StudyService) RunTests(daily []viewing.DailyCount, weekly []viewing.WeeklyCount, dow []viewing.DayOfWeekStat, inputErr error) []stats.Outcome {
	exam, nonExam := features.SplitByExam(daily)
	weekend, weekday := features.SplitByWeekend(daily)

	runs := []func() (*stats.TestResult, error){
		func() (*stats.TestResult, error) { return s.tester.MannWhitneyU(exam, nonExam) },
		func() (*stats.TestResult, error) { return s.tester.ChiSquareRate(exam, nonExam) },
		func() (*stats.TestResult, error) { return s.tester.StudentT(exam, nonExam) },
		func() (*stats.TestResult, error) { return s.tester.StudentT(weekend, weekday) },
		func() (*stats.TestResult, error) { return s.tester.ChiSquareContingency(features.DayOfWeekTable(dow)) },
		func() (*stats.TestResult, error) { return s.weeklyTrend(weekly) },
	}

	outcomes := make([]stats.Outcome, 0, len(testPlan))
	for i, t := range testPlan {
		o := stats.Outcome{Name: t.name, Question: t.question}
		if inputErr != nil {
			o.Err = inputErr
		} else {
			o.Result, o.Err = runs[i]()
		}
		if o.Err != nil {
			o.Result = nil
			s.logger.Warn("%s aborted: %v", t.name, o.Err)
		} else {
			s.logger.Debug("%s: statistic=%.4f p=%.4f", t.name, o.Result.Statistic, o.Result.PValue)
		}
		outcomes = append(outcomes, o)
	}
	return outcomes
}
