package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/okian/flagmap/internal/synth"
)

const defaultToolTimeout = 10 * time.Minute

func main() {
	d := synth.DefaultConfig()
	var (
		outDir    = flag.String("out", d.OutDir, "Output directory")
		season    = flag.Int("season", d.Season, "Season year")
		weeks     = flag.Int("weeks", d.Weeks, "Weeks to schedule")
		games     = flag.Int("games", d.GamesPerWeek, "Games per week")
		drives    = flag.Int("drives", d.DrivesPerGame, "Drives per game")
		penalties = flag.Int("penalties", d.PenaltiesPerGame, "Penalties per game")
		seed      = flag.Uint64("seed", d.Seed, "Random seed")
		noise     = flag.Bool("noise", d.Noise, "Add a penalty that matches no game")
		baseURL   = flag.String("url", "", "flagmap service URL; empty only writes files")
		timeout   = flag.Duration("timeout", d.Timeout, "HTTP request timeout")
		logFile   = flag.String("log", "", "Log file (default: synth_TIMESTAMP.log)")
		verbose   = flag.Bool("verbose", false, "Enable debug logging")
		help      = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		synth.ShowHelp()
		return
	}

	if err := synth.SetupLogging(*logFile, *verbose); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultToolTimeout)
	defer cancel()

	cfg := synth.Config{
		OutDir:           *outDir,
		Season:           *season,
		Weeks:            *weeks,
		GamesPerWeek:     *games,
		DrivesPerGame:    *drives,
		PenaltiesPerGame: *penalties,
		Seed:             *seed,
		Noise:            *noise,
		BaseURL:          *baseURL,
		Timeout:          *timeout,
		LogFile:          *logFile,
		Verbose:          *verbose,
	}

	if err := synth.Run(ctx, cfg); err != nil {
		os.Stderr.WriteString("synth failed: " + err.Error() + "\n")
		cancel()
		os.Exit(1) //nolint:gocritic // cancel called above
	}
}
