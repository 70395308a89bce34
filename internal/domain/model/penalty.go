package model

import (
	"strings"
	"time"

	"github.com/okian/flagmap/internal/domain/gamekey"
	"github.com/okian/flagmap/internal/domain/team"
)

// Phase is the unit a penalty was called on.
type Phase string

// Phases.
const (
	Offense      Phase = "Off"
	Defense      Phase = "Def"
	SpecialTeams Phase = "ST"
)

// ParsePhase accepts the three phase codes, case-insensitively.
func ParsePhase(s string) (Phase, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "off":
		return Offense, true
	case "def":
		return Defense, true
	case "st":
		return SpecialTeams, true
	}
	return "", false
}

var categoryTrim = strings.NewReplacer( //nolint:gochecknoglobals // immutable replacer
	"Offensive_", "",
	"Defensive_", "",
	"_(15_Yards)", "",
	"_(5_Yards)", "",
)

// Category builds "<Phase>_<Name>" with spaces turned into underscores and
// the redundant side prefixes and yardage suffixes removed, e.g.
// ("Def", "Defensive Holding") -> "Def_Holding".
func Category(phase Phase, rawName string) string {
	name := strings.ReplaceAll(strings.TrimSpace(rawName), " ", "_")
	return string(phase) + "_" + categoryTrim.Replace(name)
}

// PhaseOf returns the phase prefix of a category.
func PhaseOf(category string) Phase {
	p, _, _ := strings.Cut(category, "_")
	return Phase(p)
}

// Penalty is one flag thrown in one game.
type Penalty struct {
	// ID is unique within a run and stable across runs of the same input.
	ID       string
	Game     gamekey.Key
	Team     team.ID
	Opponent team.ID
	// Home reports whether Team was the home side after orientation is
	// reconciled against the catalog.
	Home       bool
	Postseason bool
	Phase      Phase
	Name       string
	Category   string
	Quarter    int
	Clock      string
	Remaining  int
	Yards      int
	Declined   bool
	Offsetting bool
	Date       time.Time
	Source     Record
}

// Counts reports whether the penalty contributes to offense or defense
// totals.
func (p Penalty) Counts() bool {
	return p.Phase == Offense || p.Phase == Defense
}
