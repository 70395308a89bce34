// Package aggregate folds drive-assigned penalties into per-drive and
// per-team counters over a fixed category vocabulary.
package aggregate

import (
	"sort"

	"github.com/okian/flagmap/internal/domain/model"
)

// DefaultMinSupport is the occurrence count a category needs to get its own
// column.
const DefaultMinSupport = 50

// VocabOption tunes BuildVocabulary.
type VocabOption func(*vocabConfig)

type vocabConfig struct {
	minSupport int
	excluded   map[model.Phase]struct{}
}

// WithMinSupport sets the minimum number of occurrences.
func WithMinSupport(n int) VocabOption {
	return func(c *vocabConfig) { c.minSupport = n }
}

// WithExcludedPhases replaces the set of phases kept out of the vocabulary.
func WithExcludedPhases(phases ...model.Phase) VocabOption {
	return func(c *vocabConfig) {
		c.excluded = make(map[model.Phase]struct{}, len(phases))
		for _, p := range phases {
			c.excluded[p] = struct{}{}
		}
	}
}

// Vocabulary is the ordered set of category columns.
type Vocabulary struct {
	columns []string
	index   map[string]int
}

// NewVocabulary builds a vocabulary from explicit columns, sorted and
// de-duplicated.
func NewVocabulary(columns ...string) Vocabulary {
	cols := append([]string(nil), columns...)
	sort.Strings(cols)
	v := Vocabulary{index: make(map[string]int, len(cols))}
	for _, c := range cols {
		if _, ok := v.index[c]; ok {
			continue
		}
		v.index[c] = len(v.columns)
		v.columns = append(v.columns, c)
	}
	return v
}

// BuildVocabulary counts categories over every event and keeps those with at
// least the minimum support whose phase is not excluded. Special teams is
// excluded by default.
func BuildVocabulary(events []model.Penalty, opts ...VocabOption) Vocabulary {
	cfg := vocabConfig{
		minSupport: DefaultMinSupport,
		excluded:   map[model.Phase]struct{}{model.SpecialTeams: {}},
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	counts := make(map[string]int)
	for i := range events {
		counts[events[i].Category]++
	}
	keep := make([]string, 0, len(counts))
	for cat, n := range counts {
		if n < cfg.minSupport {
			continue
		}
		if _, skip := cfg.excluded[model.PhaseOf(cat)]; skip {
			continue
		}
		keep = append(keep, cat)
	}
	return NewVocabulary(keep...)
}

// Columns returns the categories in column order.
func (v Vocabulary) Columns() []string {
	return v.columns
}

// Has reports whether category has a column.
func (v Vocabulary) Has(category string) bool {
	_, ok := v.index[category]
	return ok
}

// Len returns the number of columns.
func (v Vocabulary) Len() int {
	return len(v.columns)
}
