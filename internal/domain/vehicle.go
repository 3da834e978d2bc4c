package domain

import "time"

// VehicleStatus says whether a vehicle is considered moving this cycle.
type VehicleStatus string

const (
	StatusMoving  VehicleStatus = "moving"
	StatusStopped VehicleStatus = "stopped"
)

// VehiclePosition is one vehicle in the live snapshot, with its resolved
// speed and best-effort bearing.
type VehiclePosition struct {
	ID          string        `json:"id"`
	Label       string        `json:"label,omitempty"`
	RouteID     string        `json:"routeId"`
	RouteNumber string        `json:"routeNumber"`
	RouteName   string        `json:"routeName"`
	Lat         float64       `json:"latitude"`
	Lon         float64       `json:"longitude"`
	BearingDeg  *float64      `json:"bearing,omitempty"`
	SpeedKmh    float64       `json:"speedKmh"`
	Timestamp   *int64        `json:"timestamp,omitempty"`
	Status      VehicleStatus `json:"status"`

	// VariantKey is the aggregation bucket this vehicle was counted under,
	// kept for subscription filtering and not part of the JSON surface.
	VariantKey string `json:"-"`
}

// FleetStats aggregates the vehicles included in a snapshot.
type FleetStats struct {
	Total        int     `json:"total"`
	Moving       int     `json:"moving"`
	Stopped      int     `json:"stopped"`
	AverageSpeed float64 `json:"averageSpeed"`
}

// Snapshot is the full live view produced by one cycle.
type Snapshot struct {
	UpdatedAt *string           `json:"updatedAt,omitempty"`
	Stats     FleetStats        `json:"stats"`
	Vehicles  []VehiclePosition `json:"vehicles"`
}

// RouteSpeed is one leaderboard row: a route variant's trimmed-mean speed for
// the cycle, with the untrimmed vehicle count.
type RouteSpeed struct {
	RouteNumber  string  `json:"routeNumber"`
	RouteName    string  `json:"routeName"`
	Speed        float64 `json:"speed"`
	VehicleCount int     `json:"vehicleCount"`
}

// CycleResult bundles everything one poll cycle produces.
type CycleResult struct {
	Leaderboard []RouteSpeed
	Snapshot    Snapshot
	CompletedAt time.Time
}
