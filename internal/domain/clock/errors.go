package clock

import (
	"errors"
	"fmt"
)

// Sentinel kinds for clock errors.
var (
	ErrMalformedClock       = errors.New("malformed clock")
	ErrInconsistentBoundary = errors.New("inconsistent boundary")
	ErrNoQuarter            = errors.New("no quarter")
	ErrClockRegressed       = errors.New("clock regressed")
)

// MalformedClockError reports a clock string that is not "mm:ss".
type MalformedClockError struct {
	Clock string
}

func (e *MalformedClockError) Error() string {
	return fmt.Sprintf("malformed clock %q", e.Clock)
}

// Is lets errors.Is match ErrMalformedClock.
func (e *MalformedClockError) Is(target error) bool {
	return target == ErrMalformedClock
}

// InconsistentBoundaryError reports a quarter that contradicts the row's end
// marker in a way that cannot be corrected.
type InconsistentBoundaryError struct {
	Quarter int
	Marker  Marker
}

func (e *InconsistentBoundaryError) Error() string {
	return fmt.Sprintf("quarter %d contradicts marker %s", e.Quarter, e.Marker)
}

// Is lets errors.Is match ErrInconsistentBoundary.
func (e *InconsistentBoundaryError) Is(target error) bool {
	return target == ErrInconsistentBoundary
}
