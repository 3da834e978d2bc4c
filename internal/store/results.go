package store

import (
	"sync"
	"time"

	"buspulse/internal/domain"
)

// ResultStore holds the latest completed cycle's outputs for the serving
// path. Cycles are produced by the poll loop; handlers only ever read.
type ResultStore struct {
	mu     sync.RWMutex
	latest *domain.CycleResult
}

func NewResultStore() *ResultStore {
	return &ResultStore{}
}

func (s *ResultStore) Set(result *domain.CycleResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest = result
}

// Leaderboard returns the latest ranked route speeds. The slice is a copy.
func (s *ResultStore) Leaderboard() ([]domain.RouteSpeed, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.latest == nil {
		return nil, false
	}
	rows := make([]domain.RouteSpeed, len(s.latest.Leaderboard))
	copy(rows, s.latest.Leaderboard)
	return rows, true
}

// Snapshot returns the latest live view. The vehicle slice is a copy.
func (s *ResultStore) Snapshot() (domain.Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.latest == nil {
		return domain.Snapshot{}, false
	}
	snap := s.latest.Snapshot
	vehicles := make([]domain.VehiclePosition, len(snap.Vehicles))
	copy(vehicles, snap.Vehicles)
	snap.Vehicles = vehicles
	return snap, true
}

// CompletedAt reports when the latest cycle finished, for staleness checks.
func (s *ResultStore) CompletedAt() (time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.latest == nil {
		return time.Time{}, false
	}
	return s.latest.CompletedAt, true
}
