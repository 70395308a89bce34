package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/okian/flagmap/internal/adapters/mq/queue"
	"github.com/okian/flagmap/internal/domain/aggregate"
	"github.com/okian/flagmap/internal/domain/assign"
	"github.com/okian/flagmap/internal/domain/clock"
	"github.com/okian/flagmap/internal/domain/gamekey"
	"github.com/okian/flagmap/internal/domain/model"
	"github.com/okian/flagmap/internal/domain/team"
	"github.com/okian/flagmap/pkg/metrics"
)

// fieldLength is the distance between the goal lines.
const fieldLength = 100

// reconciler processes one game per job. It only reads shared run state;
// results are merged under mu.
type reconciler struct {
	reg       *team.Registry
	vocab     aggregate.Vocabulary
	assigner  *assign.Assigner
	clockOpts []clock.Option
	diag      *model.Diagnostics

	mu         sync.Mutex
	drives     map[gamekey.Key][]aggregate.DriveTotals
	assigned   int
	unassigned int
}

func newReconciler(reg *team.Registry, vocab aggregate.Vocabulary, a *assign.Assigner, clockOpts []clock.Option, diag *model.Diagnostics) *reconciler {
	return &reconciler{
		reg:       reg,
		vocab:     vocab,
		assigner:  a,
		clockOpts: clockOpts,
		diag:      diag,
		drives:    make(map[gamekey.Key][]aggregate.DriveTotals),
	}
}

// Process reconciles one game. Structural failures abort the game and are
// returned; record-level problems only reach diagnostics.
func (r *reconciler) Process(ctx context.Context, job queue.Job) error { //nolint:gocritic // hugeParam: Job must be passed by value for channel semantics
	key := job.Game.Key
	drives := r.walk(job.Drives)
	if len(drives) == 0 {
		return r.fail(key, model.KindNoDrives, assign.ErrNoDrives, len(job.Penalties))
	}

	// Stable so rows sharing a start keep source order.
	sort.SliceStable(drives, func(i, j int) bool { return drives[i].Start > drives[j].Start })
	bounds := make([]assign.Drive, len(drives))
	for i := range drives {
		drives[i].Seq = i + 1
		bounds[i] = assign.Drive{Index: i, Start: drives[i].Start}
	}

	events := make([]assign.Event, len(job.Penalties))
	byID := make(map[string]*model.Penalty, len(job.Penalties))
	for i := range job.Penalties {
		p := &job.Penalties[i]
		events[i] = assign.Event{ID: p.ID, T: p.Remaining}
		byID[p.ID] = p
	}

	a, err := r.assigner.Assign(bounds, events)
	if err != nil {
		kind := model.KindNoDrives
		if errors.Is(err, assign.ErrUnordered) {
			kind = model.KindUnordered
		}
		return r.fail(key, kind, err, len(job.Penalties))
	}

	placed := make([]aggregate.Placed, 0, len(a.Placements()))
	for _, pl := range a.Placements() {
		p := byID[pl.EventID]
		if pl.Unbounded {
			r.diag.Warn(model.KindUnboundedEvent,
				fmt.Errorf("game %s: %s at %s precedes every drive start", key, p.ID, clock.Format(p.Remaining)))
		}
		placed = append(placed, aggregate.Placed{Drive: drives[pl.Drive].Seq, Penalty: *p})
	}
	for _, id := range a.Dropped() {
		r.diag.Error(model.KindDroppedEvent, fmt.Errorf("game %s: %s dropped, no drive covers it", key, id))
		metrics.RecordEventDropped("unbounded")
	}

	totals, err := aggregate.Fold(r.vocab, drives, placed)
	if err != nil {
		return r.fail(key, model.KindUnordered, err, len(job.Penalties))
	}

	metrics.RecordDrivesProcessed(len(drives))
	metrics.RecordEventsAssigned(len(placed))

	r.mu.Lock()
	defer r.mu.Unlock()
	r.drives[key] = totals
	r.assigned += len(placed)
	r.unassigned += len(a.Dropped())
	return nil
}

// walk resolves quarter and time remaining for each drive row in source
// order. Rows without a usable clock are skipped.
func (r *reconciler) walk(rows []model.DriveRow) []model.Drive {
	w := clock.NewWalker(r.clockOpts...)
	out := make([]model.Drive, 0, len(rows))
	for i := range rows {
		row := &rows[i]
		reading, err := w.Step(row.Quarter, clock.ParseMarker(row.Result), row.Clock)
		if err != nil {
			kind := kindOf(err)
			r.diag.Error(kind, fmt.Errorf("drives line %d: %w", row.Line, err))
			metrics.RecordRowRejected(datasetDrives, kind)
			continue
		}
		if reading.Warning != nil {
			r.warn(row.Line, reading.Warning)
		}
		los, err := yardsToGoal(r.reg, row.Team, row.LOS)
		if err != nil {
			r.diag.Warn(model.KindMalformedRow, fmt.Errorf("drives line %d: %w", row.Line, err))
		}
		out = append(out, model.Drive{
			Game:    row.Game,
			Team:    row.Team,
			Quarter: reading.Quarter,
			Clock:   row.Clock,
			Start:   reading.Remaining,
			Marker:  reading.Marker,
			LOS:     los,
			Source:  row.Source,
		})
	}
	return out
}

func (r *reconciler) warn(line int, warning error) {
	for kind, target := range map[string]error{
		model.KindInconsistentBoundary: clock.ErrInconsistentBoundary,
		model.KindClockRegressed:       clock.ErrClockRegressed,
	} {
		if errors.Is(warning, target) {
			r.diag.Warn(kind, fmt.Errorf("drives line %d: %w", line, warning))
			metrics.RecordBoundaryWarning(kind)
		}
	}
}

func (r *reconciler) fail(key gamekey.Key, kind string, err error, lost int) error {
	gerr := &gameError{game: key.String(), kind: kind, err: err}
	r.diag.FailGame(key.String(), err)
	r.mu.Lock()
	r.unassigned += lost
	r.mu.Unlock()
	return gerr
}

// results returns every enriched drive ordered by game key then sequence,
// plus the assigned and unassigned event counts.
func (r *reconciler) results() ([]aggregate.DriveTotals, int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	keys := make([]gamekey.Key, 0, len(r.drives))
	n := 0
	for k, d := range r.drives {
		keys = append(keys, k)
		n += len(d)
	}
	sort.Slice(keys, func(i, j int) bool { return gamekey.Less(keys[i], keys[j]) })
	out := make([]aggregate.DriveTotals, 0, n)
	for _, k := range keys {
		out = append(out, r.drives[k]...)
	}
	return out, r.assigned, r.unassigned
}

// yardsToGoal converts a line of scrimmage such as "PIT 25" into yards to
// the goal line for the team with the ball. A bare number is taken as
// already measured to the goal; a blank value means the drive began at its
// own goal line.
func yardsToGoal(reg *team.Registry, offense team.ID, los string) (int, error) {
	los = strings.TrimSpace(los)
	if los == "" {
		return fieldLength, nil
	}
	side, yard, found := strings.Cut(los, " ")
	if !found {
		n, err := strconv.Atoi(los)
		if err != nil {
			return fieldLength, fmt.Errorf("line of scrimmage %q", los)
		}
		return n, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(yard))
	if err != nil {
		return fieldLength, fmt.Errorf("line of scrimmage %q", los)
	}
	id, err := reg.Resolve(side)
	if err != nil {
		return fieldLength, fmt.Errorf("line of scrimmage %q: %w", los, err)
	}
	if id == offense {
		return fieldLength - n, nil
	}
	return n, nil
}
