package config

import (
	"os"
	"strings"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"

	"viewstudy/internal"
	"viewstudy/internal/errors"
)

// Config represents the runtime settings of a study run
type Config struct {
	LogLevel string `env:"LOG_LEVEL" envDefault:"INFO"`

	// Analysis settings
	Alpha          float64  `env:"ALPHA" envDefault:"0.05"`
	DateLayouts    []string `env:"DATE_LAYOUTS" envSeparator:"|" envDefault:"1/2/06|1/2/2006|01/02/2006|01-02-06|2006-01-02|2006-01-02T15:04:05Z07:00"`
	BingeThreshold int      `env:"BINGE_THRESHOLD" envDefault:"3"`
	FillCalendar   bool     `env:"FILL_CALENDAR" envDefault:"false"`
	// ExactLimit is the largest sample size for which the exact U distribution is used
	ExactLimit int `env:"EXACT_LIMIT" envDefault:"8"`

	// Paths
	OutputDir    string `env:"OUTPUT_DIR" envDefault:"./out"`
	CalendarFile string `env:"CALENDAR_FILE"`
	HistoryFile  string `env:"HISTORY_FILE"`

	// Output switches
	WriteHTML     bool `env:"WRITE_HTML" envDefault:"true"`
	WriteWorkbook bool `env:"WRITE_WORKBOOK" envDefault:"true"`
}

// EnvPrefix namespaces every setting
const EnvPrefix = "VIEWSTUDY_"

// Load reads an optional .env file, then VIEWSTUDY_* environment variables,
// and validates the result
func Load(envFiles ...string) (*Config, error) {
	if err := loadDotEnv(envFiles...); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, errors.WithCode(errors.CodeConfigInvalid, errors.Wrap(err, "failed to parse environment"))
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return cfg, nil
}

// loadDotEnv loads the given files (or ./.env) without overriding variables
// already present in the environment. A missing default .env is not an error.
func loadDotEnv(files ...string) error {
	if len(files) == 0 {
		if _, err := os.Stat(".env"); err != nil {
			return nil
		}
		files = []string{".env"}
	}
	if err := godotenv.Load(files...); err != nil {
		return errors.ConfigInvalidf("failed to load env file %s: %v", strings.Join(files, ","), err)
	}
	return nil
}

// Validate checks that all settings are usable
func (c *Config) Validate() error {
	if c.Alpha <= 0 || c.Alpha >= 1 {
		return errors.ConfigInvalidf("alpha must be in (0, 1), got %g", c.Alpha)
	}
	if len(c.DateLayouts) == 0 {
		return errors.ConfigInvalid("at least one date layout is required")
	}
	for _, layout := range c.DateLayouts {
		if strings.TrimSpace(layout) == "" {
			return errors.ConfigInvalid("date layouts must not be blank")
		}
	}
	if c.BingeThreshold < 2 {
		return errors.ConfigInvalidf("binge threshold must be at least 2, got %d", c.BingeThreshold)
	}
	if c.ExactLimit < 0 {
		return errors.ConfigInvalidf("exact limit must not be negative, got %d", c.ExactLimit)
	}
	if _, ok := internal.ParseLogLevel(c.LogLevel); !ok {
		return errors.ConfigInvalidf("log level must be one of ERROR, WARN, INFO, DEBUG, TRACE, got %q", c.LogLevel)
	}
	return nil
}

// Level returns the parsed log level
func (c *Config) Level() internal.LogLevel {
	level, _ := internal.ParseLogLevel(c.LogLevel)
	return level
}
