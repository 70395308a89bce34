// Package assign places point events into the ordered drive sequence of one
// game by comparing time remaining.
package assign

import (
	"fmt"
	"sort"
)

// Drive is one interval boundary: the caller's drive index and the seconds
// remaining when it started.
type Drive struct {
	Index int
	Start int
}

// Event is one point in time to place.
type Event struct {
	ID string
	T  int
}

// Placement records where one event went.
type Placement struct {
	EventID string
	Drive   int
	// Unbounded is set when no drive passed the comparison and the
	// unbounded policy chose the drive.
	Unbounded bool
}

// Assignment is the outcome of one Assign call.
type Assignment struct {
	placements []Placement
	byEvent    map[string]int
	dropped    []string
}

// DriveOf returns the drive index an event was assigned to.
func (a Assignment) DriveOf(eventID string) (int, bool) {
	i, ok := a.byEvent[eventID]
	if !ok {
		return 0, false
	}
	return a.placements[i].Drive, true
}

// Placements returns every placed event in input order.
func (a Assignment) Placements() []Placement {
	return a.placements
}

// Dropped returns the ids of events the Drop policy discarded, in input order.
func (a Assignment) Dropped() []string {
	return a.dropped
}

// Assigner holds the tie and overflow policy. The zero value is not usable;
// build one with New.
type Assigner struct {
	tie       TieBreak
	cmp       Comparison
	unbounded Unbounded
}

// New returns an Assigner. Defaults: later drive wins ties, drives starting
// at or above the event qualify, uncovered events go to the final drive.
func New(opts ...Option) *Assigner {
	a := &Assigner{tie: Later, cmp: AtOrAbove, unbounded: AssignFinal}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Assign places each event on the latest drive whose start passes the
// comparison. drives must be ordered by non-increasing Start.
func (a *Assigner) Assign(drives []Drive, events []Event) (Assignment, error) {
	if len(drives) == 0 {
		return Assignment{}, ErrNoDrives
	}
	for i := 1; i < len(drives); i++ {
		if drives[i].Start > drives[i-1].Start {
			return Assignment{}, fmt.Errorf("%w: drive %d starts at %d after %d",
				ErrUnordered, drives[i].Index, drives[i].Start, drives[i-1].Start)
		}
	}

	out := Assignment{
		placements: make([]Placement, 0, len(events)),
		byEvent:    make(map[string]int, len(events)),
	}
	for _, ev := range events {
		pos, ok := a.locate(drives, ev.T)
		if !ok {
			switch a.unbounded {
			case Drop:
				out.dropped = append(out.dropped, ev.ID)
				continue
			case AssignFirst:
				pos = 0
			default:
				pos = len(drives) - 1
			}
		}
		out.byEvent[ev.ID] = len(out.placements)
		out.placements = append(out.placements, Placement{
			EventID:   ev.ID,
			Drive:     drives[pos].Index,
			Unbounded: !ok,
		})
	}
	return out, nil
}

// locate returns the slice position of the qualifying drive for t.
func (a *Assigner) locate(drives []Drive, t int) (int, bool) {
	pass := func(start int) bool {
		if a.cmp == Above {
			return start > t
		}
		return start >= t
	}
	// Starts are non-increasing, so passing drives form a prefix.
	n := sort.Search(len(drives), func(i int) bool { return !pass(drives[i].Start) })
	if n == 0 {
		return 0, false
	}
	pos := n - 1
	if a.tie == Earlier {
		for pos > 0 && drives[pos-1].Start == drives[pos].Start {
			pos--
		}
	}
	return pos, true
}

// Assign runs a default Assigner configured with opts.
func Assign(drives []Drive, events []Event, opts ...Option) (Assignment, error) {
	return New(opts...).Assign(drives, events)
}
