package synth

import (
	"fmt"
	"time"

	"github.com/okian/flagmap/internal/domain/team"
)

// Defaults for a generated season.
const (
	DefaultSeason           = 2015
	DefaultWeeks            = 4
	DefaultGamesPerWeek     = 6
	DefaultDrivesPerGame    = 12
	DefaultPenaltiesPerGame = 8
	DefaultSeed             = 7

	minDrivesPerGame = 8
	maxDrivesPerGame = 40
	maxGamesPerWeek  = 16
)

// Config holds configuration for one generate-and-verify pass.
type Config struct {
	OutDir           string        // Directory receiving the generated CSV files
	Season           int           // Season year written into every game key
	Weeks            int           // Regular-season weeks to schedule
	GamesPerWeek     int           // Games per week, at most 16
	DrivesPerGame    int           // Drive rows per game
	PenaltiesPerGame int           // Penalty rows per game before duplicates and noise
	Seed             uint64        // Random seed; equal seeds give equal files
	Noise            bool          // Add one penalty row that matches no game
	BaseURL          string        // Service URL; empty skips verification
	Timeout          time.Duration // HTTP request timeout
	LogFile          string        // Log file for the tool output
	Verbose          bool          // Enable debug logging
}

// DefaultConfig returns a small but complete season.
func DefaultConfig() Config {
	return Config{
		OutDir:           "data",
		Season:           DefaultSeason,
		Weeks:            DefaultWeeks,
		GamesPerWeek:     DefaultGamesPerWeek,
		DrivesPerGame:    DefaultDrivesPerGame,
		PenaltiesPerGame: DefaultPenaltiesPerGame,
		Seed:             DefaultSeed,
		Noise:            true,
		Timeout:          30 * time.Second,
	}
}

// Validate reports the first unusable setting.
func (c Config) Validate() error {
	switch {
	case c.Season < 1920:
		return fmt.Errorf("%w: season %d", ErrInvalidConfig, c.Season)
	case c.Weeks <= 0:
		return fmt.Errorf("%w: weeks must be positive", ErrInvalidConfig)
	case c.GamesPerWeek <= 0 || c.GamesPerWeek > maxGamesPerWeek:
		return fmt.Errorf("%w: games per week must be in [1, %d]", ErrInvalidConfig, maxGamesPerWeek)
	case c.DrivesPerGame < minDrivesPerGame || c.DrivesPerGame > maxDrivesPerGame:
		return fmt.Errorf("%w: drives per game must be in [%d, %d]", ErrInvalidConfig, minDrivesPerGame, maxDrivesPerGame)
	case c.PenaltiesPerGame < 0:
		return fmt.Errorf("%w: penalties per game must not be negative", ErrInvalidConfig)
	}
	return nil
}

// Files names the generated inputs.
type Files struct {
	Teams            string
	Games            string
	Drives           string
	Penalties        string
	TeamPerformances string
}

// DriveCount is the expected Off and Def tally of one drive.
type DriveCount struct {
	Seq    int
	Team   team.ID
	OffPen int
	DefPen int
}

// Expectation is what a correct reconciliation of the generated season
// reports.
type Expectation struct {
	Games      int
	Drives     int
	Penalties  int
	Assigned   int
	TeamRows   int
	Duplicates int
	Unresolved int
	// PerGame holds the drive tallies keyed by canonical game key.
	PerGame map[string][]DriveCount
	// Reversed lists canonical keys whose drive rows were written with the
	// teams swapped.
	Reversed []string
	// Legacy lists catalog ids written with retired team codes.
	Legacy []string
}

// Stats holds run statistics.
type Stats struct {
	GamesGenerated     int
	DrivesGenerated    int
	PenaltiesGenerated int
	GamesChecked       int
	Mismatches         int
	StartTime          time.Time
	EndTime            time.Time
	Duration           time.Duration
}
