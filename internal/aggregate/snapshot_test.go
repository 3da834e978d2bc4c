package aggregate

import (
	"testing"
	"time"

	"buspulse/internal/domain"
)

func TestSnapshotStatusThreshold(t *testing.T) {
	tests := []struct {
		name     string
		speedKmh float64
		want     domain.VehicleStatus
	}{
		{name: "exactly at threshold moves", speedKmh: 2.0, want: domain.StatusMoving},
		{name: "just below threshold stopped", speedKmh: 1.999, want: domain.StatusStopped},
		{name: "fast vehicle moves", speedKmh: 40, want: domain.StatusMoving},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewSnapshotBuilder()
			b.Add(domain.VehiclePosition{ID: "v1", SpeedKmh: tt.speedKmh})

			snap := b.Build(nil)
			if got := snap.Vehicles[0].Status; got != tt.want {
				t.Errorf("Status = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSnapshotStats(t *testing.T) {
	b := NewSnapshotBuilder()
	b.Add(domain.VehiclePosition{ID: "a", SpeedKmh: 1.5})
	b.Add(domain.VehiclePosition{ID: "b", SpeedKmh: 10})
	b.Add(domain.VehiclePosition{ID: "c", SpeedKmh: 20})

	snap := b.Build(nil)

	if snap.Stats.Total != 3 {
		t.Errorf("Total = %d, want 3", snap.Stats.Total)
	}
	if snap.Stats.Moving != 2 {
		t.Errorf("Moving = %d, want 2", snap.Stats.Moving)
	}
	if snap.Stats.Stopped != 1 {
		t.Errorf("Stopped = %d, want 1", snap.Stats.Stopped)
	}
	// Plain mean of all three, one decimal: (1.5+10+20)/3 = 10.5.
	if snap.Stats.AverageSpeed != 10.5 {
		t.Errorf("AverageSpeed = %v, want 10.5", snap.Stats.AverageSpeed)
	}
	if snap.UpdatedAt != nil {
		t.Error("UpdatedAt should be absent without a feed header time")
	}
}

func TestSnapshotUpdatedAt(t *testing.T) {
	headerTime := time.Date(2025, 6, 1, 14, 30, 0, 0, time.UTC)

	b := NewSnapshotBuilder()
	snap := b.Build(&headerTime)

	if snap.UpdatedAt == nil {
		t.Fatal("UpdatedAt missing")
	}
	if *snap.UpdatedAt != "2025-06-01T14:30:00Z" {
		t.Errorf("UpdatedAt = %q", *snap.UpdatedAt)
	}
	if snap.Vehicles == nil {
		t.Error("Vehicles should be an empty list, not null")
	}
}
