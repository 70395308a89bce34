// Package types contains the JSON shapes shared by the HTTP API, the
// exporters and the run report.
package types

import (
	"time"

	"github.com/okian/flagmap/internal/domain/model"
)

// RunReport summarises one reconciliation run.
type RunReport struct {
	RunID       string                    `json:"run_id"`
	StartedAt   time.Time                 `json:"started_at"`
	FinishedAt  time.Time                 `json:"finished_at"`
	DurationMS  int64                     `json:"duration_ms"`
	Games       int                       `json:"games"`
	Drives      int                       `json:"drives"`
	Penalties   int                       `json:"penalties"`
	Assigned    int                       `json:"assigned"`
	Unassigned  int                       `json:"unassigned"`
	TeamRows    int                       `json:"team_rows"`
	Vocabulary  []string                  `json:"vocabulary"`
	Diagnostics model.DiagnosticsSnapshot `json:"diagnostics"`
}

// Totals is the penalty counter block of a drive or team-game.
type Totals struct {
	Counts           map[string]int `json:"counts"`
	Yards            map[string]int `json:"yards"`
	TotalOffPen      int            `json:"total_off_pen"`
	TotalDefPen      int            `json:"total_def_pen"`
	TotalOffPenYards int            `json:"total_off_pen_yards"`
	TotalDefPenYards int            `json:"total_def_pen_yards"`
}

// DriveView is one enriched drive.
type DriveView struct {
	GameID   string `json:"game_id"`
	Seq      int    `json:"seq"`
	TeamID   string `json:"team_id"`
	Quarter  int    `json:"quarter"`
	Clock    string `json:"time"`
	TimeLeft string `json:"time_left"`
	Result   string `json:"result"`
	LOS      int    `json:"los"`
	Totals
}

// TeamGameView is one enriched team performance row.
type TeamGameView struct {
	GameID    string `json:"game_id"`
	TeamID    string `json:"team_id"`
	OppTeamID string `json:"opp_team_id"`
	Totals
}

// TeamView is a team with its enriched games from the latest run.
type TeamView struct {
	TeamID  string         `json:"team_id"`
	Name    string         `json:"name"`
	Aliases []string       `json:"aliases"`
	Games   []TeamGameView `json:"games"`
}

// RunSummary is the payload published after a successful run.
type RunSummary struct {
	RunID       string    `json:"run_id"`
	FinishedAt  time.Time `json:"finished_at"`
	Games       int       `json:"games"`
	Drives      int       `json:"drives"`
	Assigned    int       `json:"assigned"`
	Unassigned  int       `json:"unassigned"`
	Errors      int       `json:"errors"`
	Warnings    int       `json:"warnings"`
	FailedGames int       `json:"failed_games"`
}

// Summary derives the published summary from a report.
func (r RunReport) Summary() RunSummary {
	return RunSummary{
		RunID:       r.RunID,
		FinishedAt:  r.FinishedAt,
		Games:       r.Games,
		Drives:      r.Drives,
		Assigned:    r.Assigned,
		Unassigned:  r.Unassigned,
		Errors:      r.Diagnostics.TotalErrors(),
		Warnings:    r.Diagnostics.TotalWarnings(),
		FailedGames: len(r.Diagnostics.FailedGames),
	}
}
