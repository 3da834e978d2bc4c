package aggregate

import (
	"time"

	"buspulse/internal/domain"
)

// A vehicle at or above this speed counts as moving.
const movingThresholdKmh = 2.0

// SnapshotBuilder assembles the cycle's live vehicle list and fleet stats.
// Only vehicles with a usable resolved speed are ever added.
type SnapshotBuilder struct {
	vehicles []domain.VehiclePosition
}

func NewSnapshotBuilder() *SnapshotBuilder {
	return &SnapshotBuilder{}
}

func (b *SnapshotBuilder) Add(v domain.VehiclePosition) {
	v.Status = domain.StatusStopped
	if v.SpeedKmh >= movingThresholdKmh {
		v.Status = domain.StatusMoving
	}
	b.vehicles = append(b.vehicles, v)
}

// Build finalizes the snapshot. updatedAt is the feed header time when the
// feed provided one. The fleet average is a plain mean, unlike the per-route
// trimmed mean.
func (b *SnapshotBuilder) Build(updatedAt *time.Time) domain.Snapshot {
	snap := domain.Snapshot{
		Vehicles: b.vehicles,
	}
	if snap.Vehicles == nil {
		snap.Vehicles = []domain.VehiclePosition{}
	}

	if updatedAt != nil {
		iso := updatedAt.UTC().Format(time.RFC3339)
		snap.UpdatedAt = &iso
	}

	var sum float64
	for _, v := range snap.Vehicles {
		if v.Status == domain.StatusMoving {
			snap.Stats.Moving++
		} else {
			snap.Stats.Stopped++
		}
		sum += v.SpeedKmh
	}

	snap.Stats.Total = len(snap.Vehicles)
	if snap.Stats.Total > 0 {
		snap.Stats.AverageSpeed = round1(sum / float64(snap.Stats.Total))
	}

	return snap
}
