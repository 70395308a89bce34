// Package repository keeps completed reconciliation runs and exports them.
package repository

import (
	"context"

	"github.com/okian/flagmap/internal/domain/aggregate"
	"github.com/okian/flagmap/internal/domain/gamekey"
	"github.com/okian/flagmap/internal/domain/model"
	"github.com/okian/flagmap/internal/domain/team"
	"github.com/okian/flagmap/internal/domain/types"
)

// Run is one completed reconciliation run.
type Run struct {
	Report     types.RunReport
	Vocabulary aggregate.Vocabulary
	// Drives are ordered by game key then drive sequence.
	Drives    []aggregate.DriveTotals
	Teams     []aggregate.TeamTotals
	Penalties []model.Penalty
	Summary   []aggregate.CategorySummary
}

// ID returns the run id.
func (r *Run) ID() string {
	return r.Report.RunID
}

// Store holds completed runs for the read API.
type Store interface {
	// SaveRun makes run the latest run.
	SaveRun(ctx context.Context, run *Run) error

	// LatestRun returns the most recent run, or ErrNoRun.
	LatestRun(ctx context.Context) (*Run, error)

	// Reports returns the reports of retained runs, newest first.
	Reports(ctx context.Context) []types.RunReport

	// GameDrives returns the enriched drives of one game from the latest
	// run, or ErrNotFound.
	GameDrives(ctx context.Context, key gamekey.Key) ([]aggregate.DriveTotals, error)

	// TeamGames returns the enriched team rows of one team from the latest
	// run, or ErrNotFound.
	TeamGames(ctx context.Context, id team.ID) ([]aggregate.TeamTotals, error)

	// Count returns the number of retained runs.
	Count(ctx context.Context) int
}

// Exporter writes a completed run to an external system.
type Exporter interface {
	Name() string
	Export(ctx context.Context, run *Run) error
}
