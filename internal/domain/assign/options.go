package assign

import (
	"fmt"
	"strings"
)

// TieBreak picks among drives that share the same start.
type TieBreak int

// Tie-break policies.
const (
	Later TieBreak = iota
	Earlier
)

// Comparison is the test a drive start must pass against the event time.
type Comparison int

// Comparisons.
const (
	// AtOrAbove accepts drives whose start is >= the event time.
	AtOrAbove Comparison = iota
	// Above accepts drives whose start is strictly greater.
	Above
)

// Unbounded decides what happens when no drive passes the comparison.
type Unbounded int

// Unbounded policies.
const (
	AssignFinal Unbounded = iota
	AssignFirst
	Drop
)

// Option configures an Assigner.
type Option func(*Assigner)

// WithTieBreak sets the tie-break policy.
func WithTieBreak(t TieBreak) Option {
	return func(a *Assigner) { a.tie = t }
}

// WithComparison sets the start-vs-event comparison.
func WithComparison(c Comparison) Option {
	return func(a *Assigner) { a.cmp = c }
}

// WithUnbounded sets the policy for events no drive covers.
func WithUnbounded(u Unbounded) Option {
	return func(a *Assigner) { a.unbounded = u }
}

// ParseTieBreak reads "later" or "earlier".
func ParseTieBreak(s string) (TieBreak, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "later":
		return Later, nil
	case "earlier":
		return Earlier, nil
	}
	return Later, fmt.Errorf("unknown tie break %q", s)
}

// ParseComparison reads "at_or_above" (">=") or "above" (">").
func ParseComparison(s string) (Comparison, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "at_or_above", ">=":
		return AtOrAbove, nil
	case "above", ">":
		return Above, nil
	}
	return AtOrAbove, fmt.Errorf("unknown comparison %q", s)
}

// ParseUnbounded reads "final", "first" or "drop".
func ParseUnbounded(s string) (Unbounded, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "final":
		return AssignFinal, nil
	case "first":
		return AssignFirst, nil
	case "drop":
		return Drop, nil
	}
	return AssignFinal, fmt.Errorf("unknown unbounded policy %q", s)
}
