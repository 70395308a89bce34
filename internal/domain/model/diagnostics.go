package model

import (
	"sort"
	"sync"
)

// DefaultSampleSize bounds the messages kept per diagnostic kind.
const DefaultSampleSize = 20

// Diagnostic kinds.
const (
	KindUnknownTeam          = "unknown_team"
	KindUnresolvedGame       = "unresolved_game"
	KindMalformedKey         = "malformed_key"
	KindMalformedClock       = "malformed_clock"
	KindMalformedRow         = "malformed_row"
	KindNoQuarter            = "no_quarter"
	KindInconsistentBoundary = "inconsistent_boundary"
	KindClockRegressed       = "clock_regressed"
	KindDuplicateRow         = "duplicate_row"
	KindUnboundedEvent       = "unbounded_event"
	KindDroppedEvent         = "dropped_event"
	KindNoDrives             = "no_drives"
	KindUnordered            = "unordered_drives"
	KindOrphanPerformance    = "orphan_performance"
)

// Diagnostics accumulates per-record problems for one run. It is safe for
// concurrent use by per-game workers.
type Diagnostics struct {
	mu          sync.Mutex
	sampleSize  int
	errors      map[string]int
	warnings    map[string]int
	samples     map[string][]string
	matches     map[string]int
	failedGames map[string]string
}

// NewDiagnostics returns an empty accumulator keeping up to sampleSize
// messages per kind. Non-positive sizes use DefaultSampleSize.
func NewDiagnostics(sampleSize int) *Diagnostics {
	if sampleSize <= 0 {
		sampleSize = DefaultSampleSize
	}
	return &Diagnostics{
		sampleSize:  sampleSize,
		errors:      map[string]int{},
		warnings:    map[string]int{},
		samples:     map[string][]string{},
		matches:     map[string]int{},
		failedGames: map[string]string{},
	}
}

// Error counts a record that was skipped.
func (d *Diagnostics) Error(kind string, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.errors[kind]++
	d.sample(kind, err)
}

// Warn counts a record that was kept despite a problem.
func (d *Diagnostics) Warn(kind string, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.warnings[kind]++
	d.sample(kind, err)
}

// Match counts one game-key resolution by match kind.
func (d *Diagnostics) Match(kind string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.matches[kind]++
}

// FailGame records a game aborted by a structural error.
func (d *Diagnostics) FailGame(game string, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	d.failedGames[game] = msg
}

// ErrorCount returns the skipped-record count for kind.
func (d *Diagnostics) ErrorCount(kind string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.errors[kind]
}

// WarningCount returns the warning count for kind.
func (d *Diagnostics) WarningCount(kind string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.warnings[kind]
}

func (d *Diagnostics) sample(kind string, err error) {
	if err == nil || len(d.samples[kind]) >= d.sampleSize {
		return
	}
	d.samples[kind] = append(d.samples[kind], err.Error())
}

// DiagnosticsSnapshot is the serialisable view of Diagnostics.
type DiagnosticsSnapshot struct {
	Errors      map[string]int      `json:"errors"`
	Warnings    map[string]int      `json:"warnings"`
	Samples     map[string][]string `json:"samples"`
	Matches     map[string]int      `json:"matches"`
	FailedGames []FailedGame        `json:"failed_games"`
}

// FailedGame is one aborted game.
type FailedGame struct {
	Game   string `json:"game"`
	Reason string `json:"reason"`
}

// TotalErrors sums every error count.
func (s DiagnosticsSnapshot) TotalErrors() int {
	n := 0
	for _, c := range s.Errors {
		n += c
	}
	return n
}

// TotalWarnings sums every warning count.
func (s DiagnosticsSnapshot) TotalWarnings() int {
	n := 0
	for _, c := range s.Warnings {
		n += c
	}
	return n
}

// Snapshot copies the current state.
func (d *Diagnostics) Snapshot() DiagnosticsSnapshot {
	d.mu.Lock()
	defer d.mu.Unlock()
	s := DiagnosticsSnapshot{
		Errors:      copyCounts(d.errors),
		Warnings:    copyCounts(d.warnings),
		Samples:     make(map[string][]string, len(d.samples)),
		Matches:     copyCounts(d.matches),
		FailedGames: make([]FailedGame, 0, len(d.failedGames)),
	}
	for k, v := range d.samples {
		s.Samples[k] = append([]string(nil), v...)
	}
	for g, reason := range d.failedGames {
		s.FailedGames = append(s.FailedGames, FailedGame{Game: g, Reason: reason})
	}
	sort.Slice(s.FailedGames, func(i, j int) bool { return s.FailedGames[i].Game < s.FailedGames[j].Game })
	return s
}

func copyCounts(m map[string]int) map[string]int {
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
