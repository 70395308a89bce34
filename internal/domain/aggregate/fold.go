package aggregate

import (
	"errors"
	"fmt"

	"github.com/okian/flagmap/internal/domain/gamekey"
	"github.com/okian/flagmap/internal/domain/model"
	"github.com/okian/flagmap/internal/domain/team"
)

// ErrUnknownDrive reports a placement pointing at a drive that was not
// passed to Fold.
var ErrUnknownDrive = errors.New("unknown drive")

// Totals are the counters for one drive or one team-game.
type Totals struct {
	// Counts and Yards hold one entry per vocabulary column.
	Counts   map[string]int
	Yards    map[string]int
	OffPen   int
	DefPen   int
	OffYards int
	DefYards int
}

func newTotals(v Vocabulary) Totals {
	t := Totals{
		Counts: make(map[string]int, v.Len()),
		Yards:  make(map[string]int, v.Len()),
	}
	for _, c := range v.columns {
		t.Counts[c] = 0
		t.Yards[c] = 0
	}
	return t
}

// add folds one penalty. Column counters only move for vocabulary
// categories; offense and defense totals move for every Off/Def penalty.
func (t *Totals) add(v Vocabulary, p *model.Penalty) {
	if v.Has(p.Category) {
		t.Counts[p.Category]++
		t.Yards[p.Category] += p.Yards
	}
	switch p.Phase {
	case model.Offense:
		t.OffPen++
		t.OffYards += p.Yards
	case model.Defense:
		t.DefPen++
		t.DefYards += p.Yards
	}
}

// Placed is a penalty together with the Seq of the drive it was assigned to
// within its game.
type Placed struct {
	Drive   int
	Penalty model.Penalty
}

// DriveTotals is one enriched drive.
type DriveTotals struct {
	Drive  model.Drive
	Totals Totals
}

type driveRef struct {
	game gamekey.Key
	seq  int
}

// Fold zero-initialises every vocabulary column on every drive and folds the
// placed penalties in. The output follows the order of drives.
func Fold(v Vocabulary, drives []model.Drive, placed []Placed) ([]DriveTotals, error) {
	out := make([]DriveTotals, len(drives))
	at := make(map[driveRef]int, len(drives))
	for i := range drives {
		out[i] = DriveTotals{Drive: drives[i], Totals: newTotals(v)}
		at[driveRef{game: drives[i].Game, seq: drives[i].Seq}] = i
	}
	for i := range placed {
		p := &placed[i]
		idx, ok := at[driveRef{game: p.Penalty.Game, seq: p.Drive}]
		if !ok {
			return nil, fmt.Errorf("%w: %s drive %d", ErrUnknownDrive, p.Penalty.Game, p.Drive)
		}
		out[idx].Totals.add(v, &p.Penalty)
	}
	return out, nil
}

// TeamTotals is one enriched team performance row.
type TeamTotals struct {
	Performance model.TeamPerformance
	Totals      Totals
}

type teamRef struct {
	game gamekey.Key
	team team.ID
}

// FoldTeams folds penalties into the performance row of the penalised team
// in the same game. It returns the rows in input order and the number of
// penalties that matched no row.
func FoldTeams(v Vocabulary, rows []model.TeamPerformance, events []model.Penalty) ([]TeamTotals, int) {
	out := make([]TeamTotals, len(rows))
	at := make(map[teamRef]int, len(rows))
	for i := range rows {
		out[i] = TeamTotals{Performance: rows[i], Totals: newTotals(v)}
		ref := teamRef{game: rows[i].Game, team: rows[i].Team}
		if _, dup := at[ref]; !dup {
			at[ref] = i
		}
	}
	missed := 0
	for i := range events {
		idx, ok := at[teamRef{game: events[i].Game, team: events[i].Team}]
		if !ok {
			missed++
			continue
		}
		out[idx].Totals.add(v, &events[i])
	}
	return out, missed
}
