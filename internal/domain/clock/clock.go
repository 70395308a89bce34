// Package clock converts (quarter, game clock) pairs into seconds remaining in
// regulation and recovers missing quarters from drive end markers.
package clock

import (
	"fmt"
	"strconv"
	"strings"
)

// Defaults for a regulation NFL game.
const (
	DefaultPeriodLength      = 900
	DefaultRegulationPeriods = 4
)

// Option tunes the period layout.
type Option func(*layout)

type layout struct {
	periodLength int
	regulation   int
}

// WithPeriodLength sets the length of one period in seconds.
func WithPeriodLength(seconds int) Option {
	return func(l *layout) {
		if seconds > 0 {
			l.periodLength = seconds
		}
	}
}

// WithRegulationPeriods sets the number of regulation periods.
func WithRegulationPeriods(n int) Option {
	return func(l *layout) {
		if n > 0 {
			l.regulation = n
		}
	}
}

func newLayout(opts []Option) layout {
	l := layout{periodLength: DefaultPeriodLength, regulation: DefaultRegulationPeriods}
	for _, opt := range opts {
		opt(&l)
	}
	return l
}

// Parse splits "mm:ss" into minutes and seconds.
func Parse(clock string) (min, sec int, err error) {
	s := strings.TrimSpace(clock)
	mm, ss, ok := strings.Cut(s, ":")
	if !ok {
		return 0, 0, &MalformedClockError{Clock: clock}
	}
	min, err = strconv.Atoi(mm)
	if err != nil || min < 0 {
		return 0, 0, &MalformedClockError{Clock: clock}
	}
	sec, err = strconv.Atoi(ss)
	if err != nil || sec < 0 || sec >= 60 || len(ss) != 2 {
		return 0, 0, &MalformedClockError{Clock: clock}
	}
	return min, sec, nil
}

// ParseQuarter reads a quarter column. "OT" is the first period after the
// layout's regulation periods. An empty value reports ok=false.
func ParseQuarter(s string, opts ...Option) (q int, ok bool, err error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false, nil
	}
	if strings.EqualFold(s, "OT") {
		return newLayout(opts).regulation + 1, true, nil
	}
	// pandas writes filled quarters back as floats.
	s = strings.TrimSuffix(s, ".0")
	q, err = strconv.Atoi(s)
	if err != nil || q <= 0 {
		return 0, false, fmt.Errorf("%w: quarter %q", ErrMalformedClock, s)
	}
	return q, true, nil
}

// TimeRemaining returns seconds left in regulation at the given quarter and
// clock. Overtime periods yield negative values.
func TimeRemaining(quarter int, clock string, opts ...Option) (int, error) {
	l := newLayout(opts)
	min, sec, err := Parse(clock)
	if err != nil {
		return 0, err
	}
	if quarter <= 0 {
		return 0, fmt.Errorf("%w: quarter %d", ErrMalformedClock, quarter)
	}
	return (l.regulation-quarter)*l.periodLength + min*60 + sec, nil
}

// Format renders seconds as "HH:MM:SS"; negative values carry a leading "-".
func Format(seconds int) string {
	sign := ""
	if seconds < 0 {
		sign = "-"
		seconds = -seconds
	}
	h, rem := seconds/3600, seconds%3600
	return fmt.Sprintf("%s%02d:%02d:%02d", sign, h, rem/60, rem%60)
}

// ParseFormatted reads the "HH:MM:SS" form written by Format.
func ParseFormatted(s string) (int, error) {
	s = strings.TrimSpace(s)
	neg := strings.HasPrefix(s, "-")
	parts := strings.Split(strings.TrimPrefix(s, "-"), ":")
	if len(parts) != 3 {
		return 0, &MalformedClockError{Clock: s}
	}
	total := 0
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return 0, &MalformedClockError{Clock: s}
		}
		total = total*60 + n
	}
	if neg {
		total = -total
	}
	return total, nil
}
