// Package geo provides the spherical-geometry primitives used when
// estimating vehicle motion from position deltas.
package geo

import "math"

const earthRadiusMeters = 6371000

// DistanceMeters returns the great-circle distance between two WGS84 points
// using the haversine formula.
func DistanceMeters(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	dPhi := (lat2 - lat1) * math.Pi / 180
	dLambda := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMeters * c
}

// BearingDegrees returns the initial compass bearing from point 1 to point 2,
// normalized to [0, 360).
func BearingDegrees(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	dLambda := (lon2 - lon1) * math.Pi / 180

	y := math.Sin(dLambda) * math.Cos(phi2)
	x := math.Cos(phi1)*math.Sin(phi2) - math.Sin(phi1)*math.Cos(phi2)*math.Cos(dLambda)

	deg := math.Atan2(y, x) * 180 / math.Pi
	return math.Mod(deg+360, 360)
}

// WeightedBearing is one bearing sample with its weight.
type WeightedBearing struct {
	Degrees float64
	Weight  float64
}

// WeightedCircularMean averages compass bearings as weighted unit vectors,
// which stays correct across the 0/360 discontinuity where an arithmetic
// mean does not. It returns false when the sample list is empty or the
// resultant vector is degenerate (opposing bearings cancelling out).
func WeightedCircularMean(samples []WeightedBearing) (float64, bool) {
	if len(samples) == 0 {
		return 0, false
	}

	var x, y float64
	for _, s := range samples {
		rad := s.Degrees * math.Pi / 180
		x += math.Cos(rad) * s.Weight
		y += math.Sin(rad) * s.Weight
	}

	const epsilon = 1e-9
	if math.Abs(x) < epsilon && math.Abs(y) < epsilon {
		return 0, false
	}

	deg := math.Atan2(y, x) * 180 / math.Pi
	return math.Mod(deg+360, 360), true
}
