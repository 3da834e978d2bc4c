// Package aggregate builds the per-cycle outputs: the ranked route
// leaderboard and the live fleet snapshot. Both are recomputed from scratch
// every cycle; no rolling averages survive between cycles.
package aggregate

import (
	"math"
	"sort"

	"buspulse/internal/domain"
	"buspulse/internal/variant"
)

const (
	trimSampleThreshold = 6
	trimFraction        = 0.15
)

type bucket struct {
	display   string
	routeName string
	samples   []float64
}

// Leaderboard collects per-vehicle speed samples grouped by route variant
// for a single cycle.
type Leaderboard struct {
	buckets map[string]*bucket
}

func NewLeaderboard() *Leaderboard {
	return &Leaderboard{buckets: make(map[string]*bucket)}
}

func (l *Leaderboard) Add(v variant.Variant, routeName string, speedKmh float64) {
	b, ok := l.buckets[v.Key]
	if !ok {
		b = &bucket{display: v.Display, routeName: routeName}
		l.buckets[v.Key] = b
	}
	b.samples = append(b.samples, speedKmh)
}

// Rows computes each variant's trimmed-mean speed and returns the rows
// sorted fastest first. Buckets with at least trimSampleThreshold samples
// drop 15% from each end to blunt GPS outliers; smaller buckets use a plain
// mean. VehicleCount is always the untrimmed sample count.
func (l *Leaderboard) Rows() []domain.RouteSpeed {
	rows := make([]domain.RouteSpeed, 0, len(l.buckets))

	for _, b := range l.buckets {
		rows = append(rows, domain.RouteSpeed{
			RouteNumber:  b.display,
			RouteName:    b.routeName,
			Speed:        trimmedMean(b.samples),
			VehicleCount: len(b.samples),
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Speed > rows[j].Speed
	})

	return rows
}

func trimmedMean(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}

	sorted := make([]float64, len(samples))
	copy(sorted, samples)
	sort.Float64s(sorted)

	if len(sorted) >= trimSampleThreshold {
		trim := int(math.Floor(float64(len(sorted)) * trimFraction))
		if trim < 1 {
			trim = 1
		}
		sorted = sorted[trim : len(sorted)-trim]
	}

	var sum float64
	for _, s := range sorted {
		sum += s
	}
	return round1(sum / float64(len(sorted)))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
