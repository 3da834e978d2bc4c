// Package history keeps a short per-vehicle ring of recent positions so a
// later cycle can estimate speed from position deltas even when a single
// report is unusable on its own.
package history

import (
	"sync"
	"time"
)

const (
	// MaxSnapshots bounds each vehicle's ring.
	MaxSnapshots = 6
	// TTL evicts a vehicle whose newest snapshot is older than this.
	TTL = 300 * time.Second
)

// Snapshot is one recorded position. Immutable once stored.
type Snapshot struct {
	Lat       float64
	Lon       float64
	Timestamp int64
}

// Store holds bounded position rings keyed by routeID:vehicleID. Safe for
// concurrent use; the pipeline is the only writer during a cycle but HTTP
// handlers may read stats concurrently.
type Store struct {
	mu       sync.Mutex
	vehicles map[string][]Snapshot
	maxLen   int
	ttl      time.Duration
}

func New() *Store {
	return &Store{
		vehicles: make(map[string][]Snapshot),
		maxLen:   MaxSnapshots,
		ttl:      TTL,
	}
}

// Get returns the vehicle's snapshots, oldest first. The returned slice is a
// copy and safe to hold across appends.
func (s *Store) Get(key string) []Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snaps, ok := s.vehicles[key]
	if !ok {
		return nil
	}
	result := make([]Snapshot, len(snaps))
	copy(result, snaps)
	return result
}

// Append records a new snapshot, dropping the oldest entries once the ring
// is full. A snapshot older than the newest stored one is discarded so the
// ring stays non-decreasing in timestamp; equal timestamps are kept (the
// resolver skips zero-elapsed segments).
func (s *Store) Append(key string, snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snaps := s.vehicles[key]
	if n := len(snaps); n > 0 && snap.Timestamp < snaps[n-1].Timestamp {
		return
	}

	snaps = append(snaps, snap)
	if len(snaps) > s.maxLen {
		snaps = snaps[len(snaps)-s.maxLen:]
	}
	s.vehicles[key] = snaps
}

// EvictStale removes every vehicle whose newest snapshot is more than TTL
// older than now. Called once at the start of each cycle, before any new
// report is processed.
func (s *Store) EvictStale(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := now.Unix() - int64(s.ttl.Seconds())
	evicted := 0
	for key, snaps := range s.vehicles {
		if snaps[len(snaps)-1].Timestamp < cutoff {
			delete(s.vehicles, key)
			evicted++
		}
	}
	return evicted
}

// Len returns the number of tracked vehicles.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.vehicles)
}
