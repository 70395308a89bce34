package synth

import (
	"path/filepath"

	"github.com/okian/flagmap/internal/adapters/csvio"
)

// File names written under Config.OutDir.
const (
	TeamsFile            = "teams.csv"
	GamesFile            = "games.csv"
	DrivesFile           = "drives.csv"
	PenaltiesFile        = "penalties.csv"
	TeamPerformancesFile = "team_performances.csv"
)

// Write stores the dataset as CSV files under dir.
func Write(dir string, ds *Dataset) (Files, error) {
	files := Files{
		Teams:            filepath.Join(dir, TeamsFile),
		Games:            filepath.Join(dir, GamesFile),
		Drives:           filepath.Join(dir, DrivesFile),
		Penalties:        filepath.Join(dir, PenaltiesFile),
		TeamPerformances: filepath.Join(dir, TeamPerformancesFile),
	}
	if err := csvio.WriteTeams(files.Teams, ds.Teams); err != nil {
		return Files{}, err
	}
	tables := []struct {
		path   string
		header []string
		rows   [][]string
	}{
		{files.Games, GamesHeader, ds.Games},
		{files.Drives, DrivesHeader, ds.Drives},
		{files.Penalties, PenaltiesHeader, ds.Penalties},
		{files.TeamPerformances, PerformancesHeader, ds.Performances},
	}
	for _, t := range tables {
		if err := csvio.WriteTable(t.path, t.header, t.rows); err != nil {
			return Files{}, err
		}
	}
	return files, nil
}
