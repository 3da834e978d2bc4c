package domain

// RawReport is a single vehicle position report decoded from one feed poll.
// Optional fields stay nil when the feed omits them; a nil speed is not the
// same as a zero speed.
type RawReport struct {
	RouteID     string
	VehicleID   string
	Label       string
	DirectionID *uint32
	Lat         float64
	Lon         float64
	SpeedMps    *float64
	BearingDeg  *float64
	Timestamp   *int64
}

// HistoryKey identifies a vehicle within its own route's reporting. Vehicle
// identifiers are only unique per route in some feeds, so the route is part
// of the key.
func (r *RawReport) HistoryKey() string {
	return r.RouteID + ":" + r.VehicleID
}
