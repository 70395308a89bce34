package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/lib/pq" // postgres driver

	"github.com/okian/flagmap/internal/domain/aggregate"
)

const (
	defaultMaxOpenConns    = 20
	defaultMaxIdleConns    = 5
	defaultConnMaxLifetime = time.Hour
	defaultConnMaxIdleTime = 10 * time.Minute
	pingTimeout            = 5 * time.Second
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS flagmap_runs (
		run_id      TEXT PRIMARY KEY,
		started_at  TIMESTAMPTZ NOT NULL,
		finished_at TIMESTAMPTZ NOT NULL,
		report      JSONB NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS flagmap_drive_totals (
		run_id              TEXT NOT NULL REFERENCES flagmap_runs(run_id) ON DELETE CASCADE,
		game_id             TEXT NOT NULL,
		seq                 INTEGER NOT NULL,
		team_id             TEXT NOT NULL,
		quarter             INTEGER NOT NULL,
		time_left           INTEGER NOT NULL,
		counts              JSONB NOT NULL,
		total_off_pen       INTEGER NOT NULL,
		total_def_pen       INTEGER NOT NULL,
		total_off_pen_yards INTEGER NOT NULL,
		total_def_pen_yards INTEGER NOT NULL,
		PRIMARY KEY (run_id, game_id, seq)
	)`,
	`CREATE TABLE IF NOT EXISTS flagmap_team_totals (
		run_id              TEXT NOT NULL REFERENCES flagmap_runs(run_id) ON DELETE CASCADE,
		game_id             TEXT NOT NULL,
		team_id             TEXT NOT NULL,
		opp_team_id         TEXT NOT NULL,
		counts              JSONB NOT NULL,
		total_off_pen       INTEGER NOT NULL,
		total_def_pen       INTEGER NOT NULL,
		total_off_pen_yards INTEGER NOT NULL,
		total_def_pen_yards INTEGER NOT NULL
	)`,
}

const (
	insertRun = `INSERT INTO flagmap_runs (run_id, started_at, finished_at, report)
		VALUES ($1, $2, $3, $4)`
	insertDrive = `INSERT INTO flagmap_drive_totals (run_id, game_id, seq, team_id, quarter, time_left,
		counts, total_off_pen, total_def_pen, total_off_pen_yards, total_def_pen_yards)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	insertTeam = `INSERT INTO flagmap_team_totals (run_id, game_id, team_id, opp_team_id,
		counts, total_off_pen, total_def_pen, total_off_pen_yards, total_def_pen_yards)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
)

// PostgresSink writes completed runs to PostgreSQL.
type PostgresSink struct {
	db          *sql.DB
	maxOpen     int
	maxLifetime time.Duration
}

// NewPostgresSink opens a pool, checks connectivity and creates the tables.
func NewPostgresSink(ctx context.Context, dsn string, opts ...PostgresOption) (*PostgresSink, error) {
	if dsn == "" {
		return nil, ErrNoDSN
	}
	p := &PostgresSink{maxOpen: defaultMaxOpenConns, maxLifetime: defaultConnMaxLifetime}
	for _, opt := range opts {
		opt(p)
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(p.maxOpen)
	db.SetMaxIdleConns(min(defaultMaxIdleConns, p.maxOpen))
	db.SetConnMaxLifetime(p.maxLifetime)
	db.SetConnMaxIdleTime(defaultConnMaxIdleTime)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	p.db = db

	if err := p.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return p, nil
}

func (p *PostgresSink) migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := p.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create postgres schema: %w", err)
		}
	}
	return nil
}

// Name identifies the sink in logs and metrics.
func (p *PostgresSink) Name() string { return "postgres" }

// Export writes the run, its drives and its team rows in one transaction.
func (p *PostgresSink) Export(ctx context.Context, run *Run) error {
	if run == nil {
		return ErrNilRun
	}
	report, err := json.Marshal(run.Report)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, insertRun, run.ID(), run.Report.StartedAt, run.Report.FinishedAt, report); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	for _, args := range driveArgs(run) {
		if _, err := tx.ExecContext(ctx, insertDrive, args...); err != nil {
			return fmt.Errorf("insert drive: %w", err)
		}
	}
	for _, args := range teamArgs(run) {
		if _, err := tx.ExecContext(ctx, insertTeam, args...); err != nil {
			return fmt.Errorf("insert team row: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Close releases the pool.
func (p *PostgresSink) Close() error {
	if p.db == nil {
		return nil
	}
	return p.db.Close()
}

func driveArgs(run *Run) [][]any {
	out := make([][]any, 0, len(run.Drives))
	for i := range run.Drives {
		d := &run.Drives[i]
		out = append(out, []any{
			run.ID(), d.Drive.Game.String(), d.Drive.Seq, string(d.Drive.Team),
			d.Drive.Quarter, d.Drive.Start, countsJSON(d.Totals),
			d.Totals.OffPen, d.Totals.DefPen, d.Totals.OffYards, d.Totals.DefYards,
		})
	}
	return out
}

func teamArgs(run *Run) [][]any {
	out := make([][]any, 0, len(run.Teams))
	for i := range run.Teams {
		t := &run.Teams[i]
		out = append(out, []any{
			run.ID(), t.Performance.Game.String(), string(t.Performance.Team), string(t.Performance.Opponent),
			countsJSON(t.Totals),
			t.Totals.OffPen, t.Totals.DefPen, t.Totals.OffYards, t.Totals.DefYards,
		})
	}
	return out
}

// countsJSON never fails: map[string]int always encodes.
func countsJSON(t aggregate.Totals) []byte {
	raw, _ := json.Marshal(t.Counts)
	return raw
}
