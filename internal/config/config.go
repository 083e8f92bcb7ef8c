// Package config holds the run configuration of award-shares and loads it from
// defaults, an optional YAML file, AWARD_SHARES_* environment variables and
// command-line flags, in increasing order of precedence.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/pfrederiksen/award-shares/internal/stats"
)

// Output formats.
const (
	FormatCSV   = "csv"
	FormatJSON  = "json"
	FormatTable = "table"
)

// Config is the configuration of one run.
type Config struct {
	// Award is the award code, e.g. "dpoy".
	Award string `koanf:"award"`

	// League is used for season rows that do not name one.
	League string `koanf:"league"`

	// StartYear and EndYear bound the voting years. Zero means the award's
	// inception year and the current year.
	StartYear int `koanf:"start_year"`
	EndYear   int `koanf:"end_year"`

	// Winners is the award-count spreadsheet (.xlsx or .csv). Empty disables it.
	Winners      string `koanf:"winners"`
	WinnersSheet string `koanf:"winners_sheet"`

	OutputDir string `koanf:"output_dir"`
	Output    string `koanf:"output"`

	// Format selects what is printed to stdout after the report is written.
	Format string `koanf:"format"`
	Top    int    `koanf:"top"`

	Workers  int  `koanf:"workers"`
	FailFast bool `koanf:"fail_fast"`

	// MetricsFile receives Prometheus text-format metrics at the end of the run.
	MetricsFile string `koanf:"metrics_file"`

	LogLevel string `koanf:"log_level"`

	BaseURL         string        `koanf:"base_url"`
	Timeout         time.Duration `koanf:"timeout"`
	Retries         int           `koanf:"retries"`
	RequestInterval time.Duration `koanf:"request_interval"`
}

// New returns a Config holding the defaults.
func New() *Config {
	return &Config{
		Award:           "dpoy",
		League:          "NBA",
		Winners:         "",
		OutputDir:       ".",
		Format:          FormatCSV,
		Workers:         4,
		LogLevel:        "info",
		BaseURL:         "https://www.basketball-reference.com",
		Timeout:         30 * time.Second,
		Retries:         3,
		RequestInterval: 3 * time.Second,
	}
}

// AwardInfo returns the configured award.
func (c *Config) AwardInfo() (stats.Award, error) {
	return stats.LookupAward(c.Award)
}

// Validate checks the configuration. Errors wrap ErrInvalidConfig.
func (c *Config) Validate() error {
	award, err := c.AwardInfo()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if strings.TrimSpace(c.League) == "" {
		return fmt.Errorf("%w: league must not be empty", ErrInvalidConfig)
	}
	if c.StartYear != 0 && c.StartYear < award.Inception {
		return fmt.Errorf("%w: start year %d is before %s was first awarded (%d)", ErrInvalidConfig, c.StartYear, award.Code, award.Inception)
	}
	if c.StartYear != 0 && c.EndYear != 0 && c.StartYear > c.EndYear {
		return fmt.Errorf("%w: start year %d is after end year %d", ErrInvalidConfig, c.StartYear, c.EndYear)
	}
	switch c.Format {
	case FormatCSV, FormatJSON, FormatTable:
	default:
		return fmt.Errorf("%w: format %q (must be csv, json or table)", ErrInvalidConfig, c.Format)
	}
	if c.Top < 0 {
		return fmt.Errorf("%w: top must not be negative", ErrInvalidConfig)
	}
	if c.Workers < 1 {
		return fmt.Errorf("%w: workers must be at least 1", ErrInvalidConfig)
	}
	if c.Retries < 0 {
		return fmt.Errorf("%w: retries must not be negative", ErrInvalidConfig)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("%w: timeout must be positive", ErrInvalidConfig)
	}
	if c.RequestInterval < 0 {
		return fmt.Errorf("%w: request interval must not be negative", ErrInvalidConfig)
	}
	if c.OutputDir == "" {
		return fmt.Errorf("%w: output dir must not be empty", ErrInvalidConfig)
	}
	return nil
}
