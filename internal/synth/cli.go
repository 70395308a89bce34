package synth

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/okian/flagmap/pkg/logger"
)

const logFilePermission = 0o600

// SetupLogging sends log output to both stdout and a file. If logFile is
// empty, a timestamped filename is generated.
func SetupLogging(logFile string, verbose bool) error {
	if logFile == "" {
		logFile = "synth_" + time.Now().Format("20060102_150405") + ".log"
	}
	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}
	level := "info"
	if verbose {
		level = "debug"
	}
	if err := logger.Init(logger.WithOutput(io.MultiWriter(os.Stdout, file)), logger.WithLevel(level)); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}

// ShowHelp prints usage information for the synth tool.
func ShowHelp() {
	os.Stdout.WriteString(`flagmap season generator
========================

Writes a deterministic season of games, drives, penalties and team
performances as CSV files, with the quirks real sources carry: retired
team codes, swapped game keys, missing quarters, duplicate flags. With
-url it also triggers a run on a flagmap service and checks every drive
tally against the generated season.

Usage:
  go run ./cmd/synth [options]

Options:
  -out string
        Output directory (default "data")
  -season int
        Season year (default 2015)
  -weeks int
        Weeks to schedule (default 4)
  -games int
        Games per week, at most 16 (default 6)
  -drives int
        Drives per game (default 12)
  -penalties int
        Penalties per game (default 8)
  -seed uint
        Random seed (default 7)
  -noise
        Add a penalty that matches no game (default true)
  -url string
        flagmap service URL; empty only writes files
  -timeout duration
        HTTP request timeout (default 30s)
  -log string
        Log file (default: synth_TIMESTAMP.log)
  -verbose
        Enable debug logging
  -help
        Show this help message

Examples:
  # Write a season into ./data
  go run ./cmd/synth

  # Write and verify against a running service
  go run ./cmd/synth -out data -url http://localhost:9080
`)
}
