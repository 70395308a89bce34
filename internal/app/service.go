// Package service runs reconciliation passes and serves their results to the
// HTTP API.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/flagmap/internal/adapters/csvio"
	eventqueue "github.com/okian/flagmap/internal/adapters/mq/queue"
	workerpool "github.com/okian/flagmap/internal/adapters/mq/worker"
	"github.com/okian/flagmap/internal/adapters/repository"
	"github.com/okian/flagmap/internal/domain/aggregate"
	"github.com/okian/flagmap/internal/domain/assign"
	"github.com/okian/flagmap/internal/domain/clock"
	"github.com/okian/flagmap/internal/domain/dedupe"
	"github.com/okian/flagmap/internal/domain/gamekey"
	"github.com/okian/flagmap/internal/domain/model"
	"github.com/okian/flagmap/internal/domain/team"
	"github.com/okian/flagmap/internal/domain/types"
	"github.com/okian/flagmap/pkg/logger"
	"github.com/okian/flagmap/pkg/metrics"
)

// Output file names under the output directory.
const (
	OutDrives           = "drives.csv"
	OutTeamPerformances = "team_performances.csv"
	OutPenalties        = "penalties.csv"
	OutSummary          = "penalty_summary.csv"
	OutReport           = "report.json"
)

// Inputs names the source files of a run. Teams is optional.
type Inputs struct {
	Teams            string
	Games            string
	Drives           string
	Penalties        string
	TeamPerformances string
}

// Service runs reconciliation passes and answers read queries from the
// latest completed run.
type Service struct {
	runMu sync.Mutex
	mu    sync.RWMutex

	inputs     Inputs
	outputDir  string
	clockOpts  []clock.Option
	assignOpts []assign.Option
	minSupport int

	workerCount int
	queueSize   int
	dedupeSize  int
	sampleSize  int

	store     repository.Store
	exporters []repository.Exporter
	registry  *team.Registry

	running  bool
	lastErr  error
	lastRun  time.Time
	runCount int

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithInputs sets the source files.
func WithInputs(in Inputs) Option {
	return func(s *Service) { s.inputs = in }
}

// WithOutputDir sets where enriched files are written. Empty disables file
// output.
func WithOutputDir(dir string) Option {
	return func(s *Service) { s.outputDir = dir }
}

// WithClockOptions sets the game clock layout.
func WithClockOptions(opts ...clock.Option) Option {
	return func(s *Service) { s.clockOpts = opts }
}

// WithAssignOptions sets the drive assignment policy.
func WithAssignOptions(opts ...assign.Option) Option {
	return func(s *Service) { s.assignOpts = opts }
}

// WithMinCategorySupport sets the vocabulary threshold.
func WithMinCategorySupport(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.minSupport = n
		}
	}
}

// WithWorkerCount sets the number of per-game workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the per-game job queue capacity.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize bounds the duplicate-row cache. Zero keeps every key.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size >= 0 {
			s.dedupeSize = size
		}
	}
}

// WithStore sets the result store read by the API.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithExporters adds sinks that receive every completed run.
func WithExporters(exporters ...repository.Exporter) Option {
	return func(s *Service) { s.exporters = append(s.exporters, exporters...) }
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Service.
func New(opts ...Option) *Service {
	s := &Service{
		minSupport:  aggregate.DefaultMinSupport,
		workerCount: runtime.NumCPU(),
		queueSize:   1024,
		sampleSize:  model.DefaultSampleSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.store == nil {
		s.store = repository.NewMemoryStore()
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	return s
}

// Run performs one full reconciliation pass over the configured inputs. It
// fails with ErrRunInProgress when another pass is running.
func (s *Service) Run(ctx context.Context) (types.RunReport, error) {
	if !s.runMu.TryLock() {
		return types.RunReport{}, ErrRunInProgress
	}
	defer s.runMu.Unlock()

	s.setRunning(true)
	started := time.Now()
	runID := uuid.NewString()
	log := s.logger.With(logger.String("run_id", runID))
	log.Info(ctx, "run started")

	run, err := s.run(ctx, runID, started, log)
	finished := time.Now()
	s.finish(finished, err)
	if err != nil {
		metrics.RecordRun("failed", finished.Sub(started).Seconds(), finished.Unix())
		log.Error(ctx, "run failed", logger.Error(err))
		return types.RunReport{}, err
	}
	metrics.RecordRun("success", finished.Sub(started).Seconds(), finished.Unix())

	r := run.Report
	log.Info(ctx, "run finished",
		logger.Int("games", r.Games),
		logger.Int("drives", r.Drives),
		logger.Int("penalties", r.Penalties),
		logger.Int("assigned", r.Assigned),
		logger.Int("unassigned", r.Unassigned),
		logger.Int("vocabulary", len(r.Vocabulary)),
		logger.Any("duration_ms", r.DurationMS),
	)
	if n := r.Diagnostics.TotalErrors() + r.Diagnostics.TotalWarnings(); n > 0 {
		log.Warn(ctx, "run diagnostics",
			logger.Any("errors", r.Diagnostics.Errors),
			logger.Any("warnings", r.Diagnostics.Warnings),
			logger.Int("failed_games", len(r.Diagnostics.FailedGames)),
		)
	}
	return r, nil
}

func (s *Service) run(ctx context.Context, runID string, started time.Time, log logger.Logger) (*repository.Run, error) {
	reg, err := s.loadRegistry()
	if err != nil {
		return nil, err
	}
	diag := model.NewDiagnostics(s.sampleSize)
	in := &ingest{
		reg:       reg,
		diag:      diag,
		deduper:   dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize)),
		clockOpts: s.clockOpts,
	}

	gamesTbl, err := csvio.ReadFile(s.inputs.Games)
	if err != nil {
		return nil, err
	}
	games, err := in.games(ctx, gamesTbl)
	if err != nil {
		return nil, err
	}
	if len(games) == 0 {
		return nil, ErrNoGames
	}
	known := make([]gamekey.Key, 0, len(games))
	for k := range games {
		known = append(known, k)
	}
	in.norm = gamekey.NewNormalizer(reg, known)

	drivesTbl, err := csvio.ReadFile(s.inputs.Drives)
	if err != nil {
		return nil, err
	}
	driveRows, err := in.drives(drivesTbl)
	if err != nil {
		return nil, err
	}
	penTbl, err := csvio.ReadFile(s.inputs.Penalties)
	if err != nil {
		return nil, err
	}
	penalties, err := in.penalties(ctx, penTbl)
	if err != nil {
		return nil, err
	}
	log.Debug(ctx, "inputs loaded",
		logger.Int("games", len(games)),
		logger.Int("drive_games", len(driveRows)),
		logger.Int("penalties", len(penalties)),
	)

	vocab := aggregate.BuildVocabulary(penalties, aggregate.WithMinSupport(s.minSupport))
	metrics.UpdateVocabularySize(vocab.Len())

	byGame := make(map[gamekey.Key][]model.Penalty)
	for i := range penalties {
		byGame[penalties[i].Game] = append(byGame[penalties[i].Game], penalties[i])
	}

	rec := newReconciler(reg, vocab, assign.New(s.assignOpts...), s.clockOpts, diag)
	processed, err := s.fanOut(ctx, runID, in.norm.Keys(), games, driveRows, byGame, rec)
	if err != nil {
		return nil, err
	}
	drives, assigned, unassigned := rec.results()

	var teams []aggregate.TeamTotals
	if s.inputs.TeamPerformances != "" {
		perfTbl, err := csvio.ReadFile(s.inputs.TeamPerformances)
		if err != nil {
			return nil, err
		}
		rows, err := in.performances(perfTbl, games, penalties)
		if err != nil {
			return nil, err
		}
		var missed int
		teams, missed = aggregate.FoldTeams(vocab, rows, penalties)
		if missed > 0 {
			log.Debug(ctx, "penalties without a team row", logger.Int("count", missed))
		}
	}

	finished := time.Now()
	run := &repository.Run{
		Report: types.RunReport{
			RunID:       runID,
			StartedAt:   started,
			FinishedAt:  finished,
			DurationMS:  finished.Sub(started).Milliseconds(),
			Games:       processed,
			Drives:      len(drives),
			Penalties:   len(penalties),
			Assigned:    assigned,
			Unassigned:  unassigned,
			TeamRows:    len(teams),
			Vocabulary:  vocab.Columns(),
			Diagnostics: diag.Snapshot(),
		},
		Vocabulary: vocab,
		Drives:     drives,
		Teams:      teams,
		Penalties:  penalties,
		Summary:    aggregate.Summarize(penalties),
	}

	if err := s.writeOutputs(run); err != nil {
		return nil, err
	}
	if err := s.store.SaveRun(ctx, run); err != nil {
		return nil, err
	}
	s.export(ctx, run, log)
	return run, nil
}

// fanOut queues one job per catalog game that has drives or penalties and
// waits for the worker pool to drain them. It returns the number of games
// queued.
func (s *Service) fanOut(
	ctx context.Context,
	runID string,
	keys []gamekey.Key,
	games map[gamekey.Key]model.Game,
	driveRows map[gamekey.Key][]model.DriveRow,
	penalties map[gamekey.Key][]model.Penalty,
	rec *reconciler,
) (int, error) {
	q := eventqueue.NewInMemoryQueue(eventqueue.WithCapacity(s.queueSize))
	pool := workerpool.NewPool(s.workerCount, q, rec)
	pool.Start(ctx)

	queued := 0
	var putErr error
	for _, k := range keys {
		if len(driveRows[k]) == 0 && len(penalties[k]) == 0 {
			continue
		}
		job := eventqueue.Job{RunID: runID, Game: games[k], Drives: driveRows[k], Penalties: penalties[k]}
		if putErr = q.Put(ctx, job); putErr != nil {
			break
		}
		queued++
	}
	_ = q.Close()

	if err := pool.Wait(ctx); err != nil {
		return 0, fmt.Errorf("wait for workers: %w", err)
	}
	if putErr != nil {
		return 0, fmt.Errorf("queue games: %w", putErr)
	}
	return queued, nil
}

func (s *Service) loadRegistry() (*team.Registry, error) {
	s.mu.RLock()
	reg := s.registry
	s.mu.RUnlock()
	if reg != nil {
		return reg, nil
	}

	if s.inputs.Teams == "" {
		reg = team.Default()
	} else {
		rows, err := csvio.ReadTeams(s.inputs.Teams)
		if err != nil {
			return nil, err
		}
		if reg, err = team.FromRows(rows); err != nil {
			return nil, err
		}
	}
	s.mu.Lock()
	s.registry = reg
	s.mu.Unlock()
	return reg, nil
}

func (s *Service) writeOutputs(run *repository.Run) error {
	if s.outputDir == "" {
		return nil
	}
	out := func(name string) string { return filepath.Join(s.outputDir, name) }
	if err := csvio.WriteDrives(out(OutDrives), run.Vocabulary, run.Drives); err != nil {
		return err
	}
	if err := csvio.WriteTeamPerformances(out(OutTeamPerformances), run.Vocabulary, run.Teams); err != nil {
		return err
	}
	if err := csvio.WritePenalties(out(OutPenalties), run.Penalties); err != nil {
		return err
	}
	if err := csvio.WriteSummary(out(OutSummary), run.Summary); err != nil {
		return err
	}
	raw, err := json.MarshalIndent(run.Report, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	if err := os.WriteFile(out(OutReport), raw, 0o644); err != nil { //nolint:gosec // report is not secret
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// export hands the run to every sink. Sink failures are logged; the run
// stays complete.
func (s *Service) export(ctx context.Context, run *repository.Run, log logger.Logger) {
	for _, e := range s.exporters {
		if err := e.Export(ctx, run); err != nil {
			metrics.RecordExport(e.Name(), "failed")
			log.Warn(ctx, "export failed", logger.String("sink", e.Name()), logger.Error(err))
			continue
		}
		metrics.RecordExport(e.Name(), "success")
	}
}

func (s *Service) setRunning(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = v
}

func (s *Service) finish(at time.Time, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = false
	s.lastErr = err
	s.lastRun = at
	s.runCount++
}

// LatestReport returns the report of the latest completed run.
func (s *Service) LatestReport(ctx context.Context) (types.RunReport, error) {
	run, err := s.store.LatestRun(ctx)
	if err != nil {
		return types.RunReport{}, err
	}
	return run.Report, nil
}

// GameDrives returns the enriched drives of one game. The key may use legacy
// team codes, a leading-zero week or the reversed orientation.
func (s *Service) GameDrives(ctx context.Context, rawKey string) ([]types.DriveView, error) {
	reg, err := s.loadRegistry()
	if err != nil {
		return nil, err
	}
	key, err := gamekey.Canonicalize(reg, rawKey)
	if err != nil {
		return nil, err
	}
	drives, err := s.store.GameDrives(ctx, key)
	if errors.Is(err, repository.ErrNotFound) {
		drives, err = s.store.GameDrives(ctx, key.Reversed())
	}
	if err != nil {
		return nil, err
	}
	out := make([]types.DriveView, len(drives))
	for i := range drives {
		out[i] = driveView(&drives[i])
	}
	return out, nil
}

// Team resolves an alias and returns the team with its enriched games.
func (s *Service) Team(ctx context.Context, alias string) (types.TeamView, error) {
	reg, err := s.loadRegistry()
	if err != nil {
		return types.TeamView{}, err
	}
	id, err := reg.Resolve(alias)
	if err != nil {
		return types.TeamView{}, err
	}
	t, _ := reg.Lookup(id)
	view := types.TeamView{
		TeamID:  string(id),
		Name:    t.DisplayName(),
		Aliases: append([]string{}, t.Aliases...),
		Games:   []types.TeamGameView{},
	}
	rows, err := s.store.TeamGames(ctx, id)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return types.TeamView{}, err
	}
	for i := range rows {
		view.Games = append(view.Games, teamGameView(&rows[i]))
	}
	return view, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"running":     s.running,
		"runs":        s.runCount,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"dedupeSize":  s.dedupeSize,
		"exporters":   len(s.exporters),
	}
	if !s.lastRun.IsZero() {
		stats["lastRunAt"] = s.lastRun.UTC().Format(time.RFC3339)
	}
	if s.lastErr != nil {
		stats["lastError"] = s.lastErr.Error()
	}
	if run, err := s.store.LatestRun(context.Background()); err == nil {
		stats["latestRunId"] = run.ID()
		stats["games"] = run.Report.Games
		stats["drives"] = run.Report.Drives
		stats["assigned"] = run.Report.Assigned
		stats["unassigned"] = run.Report.Unassigned
	}
	return stats
}

func driveView(d *aggregate.DriveTotals) types.DriveView {
	return types.DriveView{
		GameID:   d.Drive.Game.String(),
		Seq:      d.Drive.Seq,
		TeamID:   string(d.Drive.Team),
		Quarter:  d.Drive.Quarter,
		Clock:    d.Drive.Clock,
		TimeLeft: clock.Format(d.Drive.Start),
		Result:   d.Drive.Source.Get(colResult),
		LOS:      d.Drive.LOS,
		Totals:   totalsView(d.Totals),
	}
}

func teamGameView(t *aggregate.TeamTotals) types.TeamGameView {
	return types.TeamGameView{
		GameID:    t.Performance.Game.String(),
		TeamID:    string(t.Performance.Team),
		OppTeamID: string(t.Performance.Opponent),
		Totals:    totalsView(t.Totals),
	}
}

func totalsView(t aggregate.Totals) types.Totals {
	return types.Totals{
		Counts:           t.Counts,
		Yards:            t.Yards,
		TotalOffPen:      t.OffPen,
		TotalDefPen:      t.DefPen,
		TotalOffPenYards: t.OffYards,
		TotalDefPenYards: t.DefYards,
	}
}
