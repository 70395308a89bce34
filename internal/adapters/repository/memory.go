package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/okian/flagmap/internal/domain/aggregate"
	"github.com/okian/flagmap/internal/domain/gamekey"
	"github.com/okian/flagmap/internal/domain/team"
	"github.com/okian/flagmap/internal/domain/types"
)

const defaultHistory = 20

// MemoryStore keeps the latest run indexed by game and team, plus a bounded
// history of run reports.
type MemoryStore struct {
	mu      sync.RWMutex
	latest  *Run
	byGame  map[gamekey.Key][]int
	byTeam  map[team.ID][]int
	reports []types.RunReport
	history int
}

// NewMemoryStore creates an empty store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{history: defaultHistory}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SaveRun indexes run and makes it the latest.
func (s *MemoryStore) SaveRun(_ context.Context, run *Run) error {
	if run == nil {
		return ErrNilRun
	}
	byGame := make(map[gamekey.Key][]int)
	for i := range run.Drives {
		k := run.Drives[i].Drive.Game
		byGame[k] = append(byGame[k], i)
	}
	byTeam := make(map[team.ID][]int)
	for i := range run.Teams {
		id := run.Teams[i].Performance.Team
		byTeam[id] = append(byTeam[id], i)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest, s.byGame, s.byTeam = run, byGame, byTeam
	s.reports = append([]types.RunReport{run.Report}, s.reports...)
	if len(s.reports) > s.history {
		s.reports = s.reports[:s.history]
	}
	return nil
}

// LatestRun returns the most recent run.
func (s *MemoryStore) LatestRun(_ context.Context) (*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.latest == nil {
		return nil, ErrNoRun
	}
	return s.latest, nil
}

// Reports returns retained reports, newest first.
func (s *MemoryStore) Reports(_ context.Context) []types.RunReport {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]types.RunReport(nil), s.reports...)
}

// GameDrives returns one game's drives from the latest run.
func (s *MemoryStore) GameDrives(_ context.Context, key gamekey.Key) ([]aggregate.DriveTotals, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.latest == nil {
		return nil, ErrNoRun
	}
	idx, ok := s.byGame[key]
	if !ok {
		return nil, fmt.Errorf("game %s: %w", key, ErrNotFound)
	}
	out := make([]aggregate.DriveTotals, len(idx))
	for i, j := range idx {
		out[i] = s.latest.Drives[j]
	}
	return out, nil
}

// TeamGames returns one team's rows from the latest run.
func (s *MemoryStore) TeamGames(_ context.Context, id team.ID) ([]aggregate.TeamTotals, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.latest == nil {
		return nil, ErrNoRun
	}
	idx, ok := s.byTeam[id]
	if !ok {
		return nil, fmt.Errorf("team %s: %w", id, ErrNotFound)
	}
	out := make([]aggregate.TeamTotals, len(idx))
	for i, j := range idx {
		out[i] = s.latest.Teams[j]
	}
	return out, nil
}

// Count returns the number of retained runs.
func (s *MemoryStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.reports)
}

// LastFinished returns when the latest run finished, or the zero time.
func (s *MemoryStore) LastFinished() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.latest == nil {
		return time.Time{}
	}
	return s.latest.Report.FinishedAt
}
