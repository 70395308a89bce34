// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(ctx) to build a Config with defaults.
// - Load layers defaults, an optional YAML file and FLAGMAP_* env vars.
// - Validate reports every problem wrapped in ErrInvalidConfig.
package config

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/okian/flagmap/internal/domain/assign"
	"github.com/okian/flagmap/internal/domain/clock"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// Serve keeps the process up with the HTTP API after the first run.
	Serve bool `koanf:"serve"`

	// DataDir is the base for relative input paths.
	DataDir string `koanf:"data_dir"`

	// OutputDir receives the enriched CSV files.
	OutputDir string `koanf:"output_dir"`

	// TeamsFile overrides the built-in team table when set.
	TeamsFile            string `koanf:"teams_file"`
	GamesFile            string `koanf:"games_file"`
	DrivesFile           string `koanf:"drives_file"`
	PenaltiesFile        string `koanf:"penalties_file"`
	TeamPerformancesFile string `koanf:"team_performances_file"`

	// PeriodLengthSeconds and RegulationPeriods define the game clock.
	PeriodLengthSeconds int `koanf:"period_length_seconds"`
	RegulationPeriods   int `koanf:"regulation_periods"`

	// MinCategorySupport is the number of flags a category needs to get its
	// own column.
	MinCategorySupport int `koanf:"min_category_support"`

	// TieBreak, Comparison and Unbounded select the assignment policy.
	TieBreak   string `koanf:"tie_break"`
	Comparison string `koanf:"comparison"`
	Unbounded  string `koanf:"unbounded"`

	// WorkerCount sets the number of per-game workers; 0 means one per CPU.
	WorkerCount int `koanf:"worker_count"`

	// QueueSize bounds the per-game job queue.
	QueueSize int `koanf:"queue_size"`

	// DedupeSize bounds the duplicate-row cache; 0 keeps every fingerprint.
	DedupeSize int `koanf:"dedupe_size"`

	// HistorySize is how many run reports the API keeps.
	HistorySize int `koanf:"history_size"`

	// PostgresDSN enables the Postgres export when set.
	PostgresDSN string `koanf:"postgres_dsn"`

	// RedisURL enables the run summary stream when set.
	RedisURL    string `koanf:"redis_url"`
	RedisStream string `koanf:"redis_stream"`
}

// New creates a Config with defaults. Context is accepted first to satisfy
// the project-wide convention.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:             "info",
		LogFormat:            "text",
		Addr:                 ":9080",
		DataDir:              "data",
		OutputDir:            "out",
		GamesFile:            "games.csv",
		DrivesFile:           "drives.csv",
		PenaltiesFile:        "penalties.csv",
		TeamPerformancesFile: "team_performances.csv",
		PeriodLengthSeconds:  clock.DefaultPeriodLength,
		RegulationPeriods:    clock.DefaultRegulationPeriods,
		MinCategorySupport:   50,
		TieBreak:             "later",
		Comparison:           "at_or_above",
		Unbounded:            "final",
		WorkerCount:          runtime.NumCPU(),
		QueueSize:            1024,
		HistorySize:          20,
		RedisStream:          "flagmap.runs",
	}
}

// Validate checks every field and joins the problems into one error.
func (c *Config) Validate() error {
	var problems []string
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		add("log_level %q", c.LogLevel)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		add("log_format %q", c.LogFormat)
	}
	if c.Serve && c.Addr == "" {
		add("addr must not be empty when serving")
	}
	for name, v := range map[string]string{
		"games_file":             c.GamesFile,
		"drives_file":            c.DrivesFile,
		"penalties_file":         c.PenaltiesFile,
		"team_performances_file": c.TeamPerformancesFile,
		"output_dir":             c.OutputDir,
	} {
		if strings.TrimSpace(v) == "" {
			add("%s must not be empty", name)
		}
	}
	if c.PeriodLengthSeconds <= 0 {
		add("period_length_seconds must be positive")
	}
	if c.RegulationPeriods <= 0 {
		add("regulation_periods must be positive")
	}
	if c.MinCategorySupport < 1 {
		add("min_category_support must be at least 1")
	}
	if _, err := assign.ParseTieBreak(c.TieBreak); err != nil {
		add("tie_break: %v", err)
	}
	if _, err := assign.ParseComparison(c.Comparison); err != nil {
		add("comparison: %v", err)
	}
	if _, err := assign.ParseUnbounded(c.Unbounded); err != nil {
		add("unbounded: %v", err)
	}
	if c.WorkerCount < 0 {
		add("worker_count must not be negative")
	}
	if c.QueueSize <= 0 {
		add("queue_size must be positive")
	}
	if c.DedupeSize < 0 {
		add("dedupe_size must not be negative")
	}
	if c.HistorySize <= 0 {
		add("history_size must be positive")
	}

	if len(problems) == 0 {
		return nil
	}
	sort.Strings(problems)
	return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
}

// Path resolves an input file against DataDir. Absolute paths and "" are
// returned unchanged.
func (c *Config) Path(name string) string {
	if name == "" || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.DataDir, name)
}

// Output resolves an output file name against OutputDir.
func (c *Config) Output(name string) string {
	return filepath.Join(c.OutputDir, name)
}

// ClockOptions returns the game clock layout.
func (c *Config) ClockOptions() []clock.Option {
	return []clock.Option{
		clock.WithPeriodLength(c.PeriodLengthSeconds),
		clock.WithRegulationPeriods(c.RegulationPeriods),
	}
}

// AssignOptions returns the assignment policy. Call Validate first; invalid
// values fall back to the defaults.
func (c *Config) AssignOptions() []assign.Option {
	var opts []assign.Option
	if tb, err := assign.ParseTieBreak(c.TieBreak); err == nil {
		opts = append(opts, assign.WithTieBreak(tb))
	}
	if cmp, err := assign.ParseComparison(c.Comparison); err == nil {
		opts = append(opts, assign.WithComparison(cmp))
	}
	if ub, err := assign.ParseUnbounded(c.Unbounded); err == nil {
		opts = append(opts, assign.WithUnbounded(ub))
	}
	return opts
}
