package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"viewstudy/domain/core"
	"viewstudy/domain/viewing"
	"viewstudy/internal"
	"viewstudy/internal/errors"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 0.05, cfg.Alpha)
	assert.Equal(t, 3, cfg.BingeThreshold)
	assert.Equal(t, 8, cfg.ExactLimit)
	assert.False(t, cfg.FillCalendar)
	assert.Equal(t, []string{"1/2/06", "1/2/2006", "01/02/2006", "01-02-06", "2006-01-02", "2006-01-02T15:04:05Z07:00"}, cfg.DateLayouts)
	assert.Equal(t, internal.LogLevelInfo, cfg.Level())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("VIEWSTUDY_ALPHA", "0.01")
	t.Setenv("VIEWSTUDY_FILL_CALENDAR", "true")
	t.Setenv("VIEWSTUDY_DATE_LAYOUTS", "2006-01-02|02.01.2006")
	t.Setenv("VIEWSTUDY_LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 0.01, cfg.Alpha)
	assert.True(t, cfg.FillCalendar)
	assert.Equal(t, []string{"2006-01-02", "02.01.2006"}, cfg.DateLayouts)
	assert.Equal(t, internal.LogLevelDebug, cfg.Level())
}

func TestLoad_DotEnvFile(t *testing.T) {
	t.Chdir(t.TempDir())
	envFile := writeFile(t, "study.env", "VIEWSTUDY_BINGE_THRESHOLD=4\n")
	// godotenv sets variables process-wide; restore after the test
	t.Setenv("VIEWSTUDY_BINGE_THRESHOLD", "")
	require.NoError(t, os.Unsetenv("VIEWSTUDY_BINGE_THRESHOLD"))

	cfg, err := Load(envFile)
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.BingeThreshold)
}

func TestLoad_InvalidSettings(t *testing.T) {
	t.Chdir(t.TempDir())

	cases := map[string]string{
		"VIEWSTUDY_ALPHA":           "1.5",
		"VIEWSTUDY_BINGE_THRESHOLD": "1",
		"VIEWSTUDY_LOG_LEVEL":       "chatty",
		"VIEWSTUDY_EXACT_LIMIT":     "-1",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			_, err := Load()
			require.Error(t, err)
			assert.True(t, errors.IsConfigInvalid(err), "expected CONFIG_INVALID, got %v", err)
		})
	}
}

func TestLoadCalendar_YAML(t *testing.T) {
	path := writeFile(t, "calendar.yaml", `
exam_periods:
  - start: "2024-03-25"
    end: "2024-03-29"
    label: midterms
  - start: 2024-12-29
    end: 2025-01-09
window:
  from: "2024-01-01"
  to: "2024-12-31"
`)

	cal, err := LoadCalendar(path)
	require.NoError(t, err)
	require.Len(t, cal.Ranges, 2)

	assert.Equal(t, "midterms", cal.Ranges[0].Label)
	assert.Equal(t, core.NewDate(2024, time.March, 25), cal.Ranges[0].Start)
	assert.Equal(t, core.NewDate(2025, time.January, 9), cal.Ranges[1].End)
	assert.Equal(t, core.NewDate(2024, time.January, 1), cal.Window.From)
	assert.Equal(t, core.NewDate(2024, time.December, 31), cal.Window.To)
}

func TestLoadCalendar_JSONKeepsOrder(t *testing.T) {
	path := writeFile(t, "calendar.json", `{"exam_periods": [
		{"start": "2024-11-15", "end": "2024-11-30"},
		{"start": "2024-03-25", "end": "2024-03-29"}
	]}`)

	cal, err := LoadCalendar(path)
	require.NoError(t, err)
	require.Len(t, cal.Ranges, 2)
	assert.Equal(t, "2024-11-15..2024-11-30", cal.Ranges[0].String())
	assert.False(t, cal.Window.IsSet())
}

func TestLoadCalendar_Malformed(t *testing.T) {
	cases := map[string]string{
		"end before start": "exam_periods:\n  - {start: \"2024-03-29\", end: \"2024-03-25\"}\n",
		"bad date":         "exam_periods:\n  - {start: \"2024-13-01\", end: \"2024-12-25\"}\n",
		"missing end":      "exam_periods:\n  - {start: \"2024-03-25\"}\n",
		"not a list":       "exam_periods: \"2024-03-25\"\n",
		"scalar entry":     "exam_periods:\n  - \"2024-03-25\"\n",
		"no key":           "window:\n  from: \"2024-01-01\"\n",
		"inverted window":  "exam_periods: []\nwindow: {from: \"2024-12-31\", to: \"2024-01-01\"}\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			path := writeFile(t, "calendar.yaml", content)
			_, err := LoadCalendar(path)
			require.Error(t, err)
			assert.True(t, errors.IsConfigInvalid(err), "expected CONFIG_INVALID, got %v", err)
		})
	}
}

func TestLoadCalendar_MissingFile(t *testing.T) {
	_, err := LoadCalendar(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.True(t, errors.IsConfigInvalid(err))

	_, err = LoadCalendar("  ")
	assert.True(t, errors.IsConfigInvalid(err))
}

func TestParseRangeFlag(t *testing.T) {
	r, err := ParseRangeFlag("2024-08-20:2024-08-26")
	require.NoError(t, err)
	assert.Equal(t, 7, r.Days())

	for _, bad := range []string{"2024-08-20", "2024-08-20:2024-08-19", "a:b", "2024-08-20:2024-08-21:2024-08-22"} {
		_, err := ParseRangeFlag(bad)
		assert.True(t, errors.IsConfigInvalid(err), bad)
	}
}

func TestBuildCalendar(t *testing.T) {
	cal, err := BuildCalendar([]string{"2024-03-25:2024-03-29"}, viewing.Window{})
	require.NoError(t, err)
	assert.True(t, cal.IsExam(core.NewDate(2024, 3, 29)))

	_, err = BuildCalendar(nil, viewing.Window{From: core.NewDate(2024, 2, 1), To: core.NewDate(2024, 1, 1)})
	assert.True(t, errors.IsConfigInvalid(err))
}

func TestValidateCalendar(t *testing.T) {
	good := viewing.Calendar{Ranges: []viewing.ExamRange{
		{Start: core.NewDate(2024, 3, 25), End: core.NewDate(2024, 3, 25)},
	}}
	assert.NoError(t, ValidateCalendar(good))
	assert.NoError(t, ValidateCalendar(viewing.Calendar{}))

	reversed := viewing.Calendar{Ranges: []viewing.ExamRange{
		{Start: core.NewDate(2024, 3, 29), End: core.NewDate(2024, 3, 25)},
	}}
	assert.True(t, errors.IsConfigInvalid(ValidateCalendar(reversed)))

	open := viewing.Calendar{Ranges: []viewing.ExamRange{{Start: core.NewDate(2024, 3, 29)}}}
	assert.True(t, errors.IsConfigInvalid(ValidateCalendar(open)))
}
