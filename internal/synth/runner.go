package synth

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/okian/flagmap/pkg/logger"
)

// Run generates a season into cfg.OutDir and, when cfg.BaseURL is set,
// triggers a run on the service and verifies its results.
func Run(ctx context.Context, cfg Config) error {
	stats := &Stats{StartTime: time.Now()}
	log := logger.Get().Named("synth")

	log.Info(ctx, "generating season",
		logger.String("outDir", cfg.OutDir),
		logger.Int("season", cfg.Season),
		logger.Int("weeks", cfg.Weeks),
		logger.Int("gamesPerWeek", cfg.GamesPerWeek),
		logger.Any("seed", cfg.Seed))

	ds, err := Generate(cfg)
	if err != nil {
		return fmt.Errorf("generate: %w", err)
	}
	files, err := Write(cfg.OutDir, ds)
	if err != nil {
		return fmt.Errorf("write: %w", err)
	}
	stats.GamesGenerated = len(ds.Games)
	stats.DrivesGenerated = len(ds.Drives)
	stats.PenaltiesGenerated = len(ds.Penalties)
	log.Info(ctx, "season written",
		logger.String("games", files.Games),
		logger.String("drives", files.Drives),
		logger.String("penalties", files.Penalties),
		logger.String("teamPerformances", files.TeamPerformances))

	if cfg.BaseURL != "" {
		if err := verify(ctx, cfg, ds.Expected, stats, log); err != nil {
			return err
		}
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	log.Info(ctx, "final statistics",
		logger.Int("gamesGenerated", stats.GamesGenerated),
		logger.Int("drivesGenerated", stats.DrivesGenerated),
		logger.Int("penaltiesGenerated", stats.PenaltiesGenerated),
		logger.Int("gamesChecked", stats.GamesChecked),
		logger.Int("mismatches", stats.Mismatches),
		logger.String("duration", stats.Duration.String()))
	return nil
}

func verify(ctx context.Context, cfg Config, exp Expectation, stats *Stats, log logger.Logger) error {
	c := NewClient(cfg.BaseURL, cfg.Timeout)
	if err := c.Health(ctx); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}
	report, err := c.TriggerRun(ctx)
	if err != nil {
		return fmt.Errorf("trigger run: %w", err)
	}
	log.Info(ctx, "run finished", logger.String("runId", report.RunID))

	problems := CheckReport(report, exp)

	keys := make([]string, 0, len(exp.PerGame))
	for k := range exp.PerGame {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		drives, err := c.GameDrives(ctx, k)
		if err != nil {
			problems = append(problems, fmt.Sprintf("%s: %v", k, err))
			continue
		}
		stats.GamesChecked++
		problems = append(problems, CheckDrives(k, drives, exp.PerGame[k])...)
	}
	for _, id := range exp.Legacy {
		if _, err := c.GameDrives(ctx, id); err != nil {
			problems = append(problems, fmt.Sprintf("legacy id %s: %v", id, err))
		}
	}

	stats.Mismatches = len(problems)
	for _, p := range problems {
		log.Warn(ctx, "mismatch", logger.String("detail", p))
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %d problems", ErrMismatch, len(problems))
	}
	log.Info(ctx, "results verified", logger.Int("games", stats.GamesChecked))
	return nil
}
