package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"viewstudy/app"
	"viewstudy/domain/stats"
	"viewstudy/domain/viewing"
	"viewstudy/internal"
	"viewstudy/internal/config"
	"viewstudy/internal/errors"
)

// globalFlags are shared by every sub-command and override VIEWSTUDY_* settings
type globalFlags struct {
	logLevel     string
	envFile      string
	calendarFile string
	exams        []string
	outDir       string
	alpha        float64
	fillCalendar bool
	noWorkbook   bool
	noHTML       bool
}

func main() {
	flags := &globalFlags{}
	rootCmd := &cobra.Command{
		Use:           "viewstudy",
		Short:         "Exam-period viewing study: derive daily counts and test them",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.logLevel, "log-level", "", "Log level: ERROR|WARN|INFO|DEBUG|TRACE")
	pf.StringVar(&flags.envFile, "env-file", "", "Env file to load before reading VIEWSTUDY_* variables")
	pf.StringVar(&flags.calendarFile, "calendar", "", "Calendar file (yaml, json or toml) with exam_periods")
	pf.StringArrayVar(&flags.exams, "exam", nil, "Exam range START:END (repeatable, ISO dates)")
	pf.StringVar(&flags.outDir, "out", "", "Output directory")
	pf.Float64Var(&flags.alpha, "alpha", 0, "Significance level")
	pf.BoolVar(&flags.fillCalendar, "fill-calendar", false, "Synthesize zero-count days inside the analysed period")
	pf.BoolVar(&flags.noWorkbook, "no-workbook", false, "Skip the xlsx workbook export")
	pf.BoolVar(&flags.noHTML, "no-html", false, "Skip the HTML report")

	rootCmd.AddCommand(
		newRunCmd(flags),
		newDeriveCmd(flags),
		newTestCmd(flags),
		newCalendarCmd(flags),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if code := errors.GetCode(err); code != "" {
			fmt.Fprintf(os.Stderr, "error code: %s\n", code)
		}
		os.Exit(1)
	}
}

func newRunCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "run [history-file]",
		Short: "Derive features from a viewing history and run every test",
		Long: `Load a viewing-history export (CSV or XLSX with Title and Date columns),
flag exam days from the calendar, derive daily and weekly counts and run the
hypothesis tests. Writes derived tables, report.txt, report.md, report.html and
results.yaml.

Example: viewstudy run NetflixViewingHistory.csv --calendar exams.yaml --out ./out`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStudy(cmd.Context(), flags, args, (*app.StudyService).Run)
		},
	}
}

func newDeriveCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "derive [history-file]",
		Short: "Derive daily, weekly and period tables without testing",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStudy(cmd.Context(), flags, args, (*app.StudyService).Derive)
		},
	}
}

func newTestCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "test [daily-counts-file]",
		Short: "Run the tests on a daily-count table",
		Long: `Run the hypothesis tests on a table with Date and daily_views columns, such
as the daily_counts.csv written by derive. Exam flags come from the calendar
when one is given, otherwise from the table's is_exam column.

Example: viewstudy test out/daily_counts.csv --exam 2024-05-05:2024-05-17`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStudy(cmd.Context(), flags, args, (*app.StudyService).TestDailyCounts)
		},
	}
}

func newCalendarCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Inspect exam calendars",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "validate [calendar-file]",
		Short: "Validate a calendar file and print its exam ranges",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := flags.calendarFile
			if len(args) == 1 {
				path = args[0]
			}
			cal, err := loadCalendar(path, flags.exams)
			if err != nil {
				return err
			}
			printCalendar(cal)
			return nil
		},
	})
	return cmd
}

type stage func(*app.StudyService, context.Context, app.StudyRequest) (*app.StudyResult, error)

func runStudy(ctx context.Context, flags *globalFlags, args []string, run stage) error {
	cfg, logger, err := loadConfig(flags)
	if err != nil {
		return err
	}
	calendarFile := flags.calendarFile
	if calendarFile == "" {
		calendarFile = cfg.CalendarFile
	}
	cal, err := loadCalendar(calendarFile, flags.exams)
	if err != nil {
		return err
	}

	input := cfg.HistoryFile
	if len(args) > 0 {
		input = args[0]
	}
	if input == "" {
		return errors.ConfigInvalid("no input file: pass one or set VIEWSTUDY_HISTORY_FILE")
	}

	svc := app.NewDefaultStudyService(cfg, logger)
	res, err := run(svc, ctx, app.StudyRequest{InputPath: input, Calendar: *cal, OutputDir: cfg.OutputDir})
	if err != nil {
		return err
	}
	printResult(res)
	return nil
}

// loadConfig reads env settings and applies flag overrides
func loadConfig(flags *globalFlags) (*config.Config, *internal.Logger, error) {
	var envFiles []string
	if flags.envFile != "" {
		envFiles = append(envFiles, flags.envFile)
	}
	cfg, err := config.Load(envFiles...)
	if err != nil {
		return nil, nil, err
	}

	if flags.logLevel != "" {
		cfg.LogLevel = flags.logLevel
	}
	if flags.outDir != "" {
		cfg.OutputDir = flags.outDir
	}
	if flags.alpha != 0 {
		cfg.Alpha = flags.alpha
	}
	if flags.fillCalendar {
		cfg.FillCalendar = true
	}
	if flags.noWorkbook {
		cfg.WriteWorkbook = false
	}
	if flags.noHTML {
		cfg.WriteHTML = false
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	return cfg, internal.NewLogger(cfg.Level()), nil
}

// loadCalendar merges the calendar file, if any, with --exam ranges
func loadCalendar(path string, exams []string) (*viewing.Calendar, error) {
	cal := &viewing.Calendar{}
	if path != "" {
		loaded, err := config.LoadCalendar(path)
		if err != nil {
			return nil, err
		}
		cal = loaded
	}

	extra, err := config.BuildCalendar(exams, cal.Window)
	if err != nil {
		return nil, err
	}
	cal.Ranges = append(cal.Ranges, extra.Ranges...)
	if err := config.ValidateCalendar(*cal); err != nil {
		return nil, err
	}
	return cal, nil
}

func printCalendar(cal *viewing.Calendar) {
	fmt.Printf("Exam ranges: %d\n", len(cal.Ranges))
	for _, r := range cal.Ranges {
		label := r.Label
		if label == "" {
			label = "-"
		}
		fmt.Printf("  %-12s %s  %d days\n", label, r, r.Days())
	}
	if cal.Window.IsSet() {
		fmt.Printf("Window: %s to %s\n", cal.Window.From, cal.Window.To)
	}
}

func printResult(res *app.StudyResult) {
	r := res.Results
	if r.Derivation != nil {
		d := r.Derivation
		fmt.Printf("Days: %d observed, %d skipped rows, %d rows outside window\n",
			len(d.Daily), len(d.Skipped), d.OutOfRange)
	}
	for _, o := range r.Outcomes {
		fmt.Println(outcomeLine(o, r.Alpha))
	}
	fmt.Printf("Run %s: %d files written in %dms\n", r.Manifest.RunID, len(res.Files), res.RuntimeMs)
}

func outcomeLine(o stats.Outcome, alpha float64) string {
	if o.Failed() {
		return fmt.Sprintf("  %-45s FAILED (%s)", o.Name, errors.GetCode(o.Err))
	}
	mark := ""
	if o.Result.Significant(alpha) {
		mark = " *"
	}
	return fmt.Sprintf("  %-45s stat=%.4f p=%.4f%s", o.Name, o.Result.Statistic, o.Result.PValue, mark)
}
