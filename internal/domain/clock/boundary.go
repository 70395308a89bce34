package clock

import (
	"errors"
	"fmt"
	"strings"
)

// Marker is the end condition recorded on a drive row.
type Marker int

// Markers.
const (
	Normal Marker = iota
	EndOfHalf
	EndOfGame
)

func (m Marker) String() string {
	switch m {
	case EndOfHalf:
		return "End of Half"
	case EndOfGame:
		return "End of Game"
	default:
		return "normal"
	}
}

// ParseMarker maps a drive result column onto a Marker. Any result other than
// the two period-ending ones is Normal.
func ParseMarker(result string) Marker {
	switch strings.ToLower(strings.Join(strings.Fields(result), " ")) {
	case "end of half":
		return EndOfHalf
	case "end of game":
		return EndOfGame
	default:
		return Normal
	}
}

// ResolveBoundary reconciles a possibly missing quarter with the row's end
// marker. A present quarter always wins. Without one, EndOfHalf implies the
// second quarter and EndOfGame the fourth. A fourth-quarter EndOfHalf becomes
// EndOfGame and a second-quarter EndOfGame becomes EndOfHalf. Other
// contradictions keep the quarter and return an *InconsistentBoundaryError as
// a warning; ErrNoQuarter is returned when there is nothing to go on.
func ResolveBoundary(quarter *int, marker Marker) (int, Marker, error) {
	if quarter == nil {
		switch marker {
		case EndOfHalf:
			return 2, marker, nil
		case EndOfGame:
			return DefaultRegulationPeriods, marker, nil
		default:
			return 0, marker, ErrNoQuarter
		}
	}
	q := *quarter
	switch {
	case marker == EndOfHalf && q == 4:
		return q, EndOfGame, nil
	case marker == EndOfGame && q == 2:
		return q, EndOfHalf, nil
	case marker == EndOfHalf && q != 2:
		return q, marker, &InconsistentBoundaryError{Quarter: q, Marker: marker}
	case marker == EndOfGame && q < DefaultRegulationPeriods:
		return q, marker, &InconsistentBoundaryError{Quarter: q, Marker: marker}
	}
	return q, marker, nil
}

// Reading is one resolved drive row.
type Reading struct {
	Quarter   int
	Marker    Marker
	Remaining int
	// Carried is set when the quarter came from the previous row.
	Carried bool
	// Inferred is set when the quarter came from the end marker.
	Inferred bool
	// Warning holds non-fatal findings; the reading is still usable.
	Warning error
}

// Walker resolves the drive rows of one game in source order. It carries the
// last known quarter forward and flags clocks that run backwards. Use one
// Walker per game.
type Walker struct {
	opts     []Option
	last     int
	prev     int
	havePrev bool
}

// NewWalker starts a fresh per-game walk.
func NewWalker(opts ...Option) *Walker {
	return &Walker{opts: opts}
}

// Step resolves one row. Malformed clocks and rows without any quarter
// information are errors; boundary contradictions and clock regressions are
// reported in Reading.Warning.
func (w *Walker) Step(quarter *int, marker Marker, clk string) (Reading, error) {
	var r Reading
	var warns []error

	if quarter == nil && marker == Normal {
		if w.last == 0 {
			return Reading{}, ErrNoQuarter
		}
		r.Quarter, r.Marker, r.Carried = w.last, marker, true
	} else {
		q, m, err := ResolveBoundary(quarter, marker)
		if err != nil && !errors.Is(err, ErrInconsistentBoundary) {
			return Reading{}, err
		}
		if err != nil {
			warns = append(warns, err)
		}
		r.Quarter, r.Marker, r.Inferred = q, m, quarter == nil
	}

	rem, err := TimeRemaining(r.Quarter, clk, w.opts...)
	if err != nil {
		return Reading{}, err
	}
	r.Remaining = rem

	if w.havePrev && rem > w.prev {
		warns = append(warns, fmt.Errorf("%w: %s after %s", ErrClockRegressed, Format(rem), Format(w.prev)))
	}
	w.prev, w.havePrev = rem, true
	w.last = r.Quarter
	r.Warning = errors.Join(warns...)
	return r, nil
}
