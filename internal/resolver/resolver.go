// Package resolver turns one raw position report plus the vehicle's recent
// history into a validated speed and best-effort bearing. Reports that fail
// every plausibility filter yield no speed for the cycle but still extend
// history so the next cycle can recover.
package resolver

import (
	"buspulse/internal/domain"
	"buspulse/internal/geo"
	"buspulse/internal/history"
)

const (
	minSpeedKmh         = 1.0
	maxSpeedKmh         = 75.0
	minTimeDeltaSeconds = 8.0
	maxTimeDeltaSeconds = 120.0
	maxTotalTimeSeconds = 120.0
	maxJumpMeters       = 600.0

	mpsToKmh = 3.6
)

// Resolution is the per-cycle outcome for one vehicle. SpeedKmh is only
// meaningful when Resolve reports the speed as usable.
type Resolution struct {
	SpeedKmh   float64
	BearingDeg *float64
	Reliable   bool
}

type point struct {
	lat, lon float64
	ts       int64
}

// Resolver estimates speed and bearing against a shared history store.
type Resolver struct {
	history *history.Store
}

func New(hist *history.Store) *Resolver {
	return &Resolver{history: hist}
}

// Resolve estimates the vehicle's speed and bearing from the report and its
// stored history, then records the report's position into history when it
// carries a timestamp. The returned bool is false when no plausible speed
// could be established; the caller must exclude the vehicle from aggregation
// in that case.
func (r *Resolver) Resolve(rep *domain.RawReport) (Resolution, bool) {
	key := rep.HistoryKey()
	prior := r.history.Get(key)

	res := r.estimate(rep, prior)

	if rep.Timestamp != nil {
		r.history.Append(key, history.Snapshot{
			Lat:       rep.Lat,
			Lon:       rep.Lon,
			Timestamp: *rep.Timestamp,
		})
	}

	speedKmh, usable := pickSpeedKmh(rep.SpeedMps, res)
	res.SpeedKmh = speedKmh
	return res, usable
}

// estimate walks consecutive point pairs, accumulating distance and elapsed
// time over segments that pass the glitch filters, and derives a
// distance-weighted mean bearing from the surviving segments.
func (r *Resolver) estimate(rep *domain.RawReport, prior []history.Snapshot) Resolution {
	var res Resolution

	if rep.Timestamp == nil {
		// Without a report time there is no new point to chain onto
		// history; only the reported values can be used.
		res.BearingDeg = rep.BearingDeg
		return res
	}

	points := make([]point, 0, len(prior)+1)
	for _, s := range prior {
		points = append(points, point{lat: s.Lat, lon: s.Lon, ts: s.Timestamp})
	}
	points = append(points, point{lat: rep.Lat, lon: rep.Lon, ts: *rep.Timestamp})

	var totalDistance, totalTime float64
	var bearings []geo.WeightedBearing

	for i := 1; i < len(points); i++ {
		a, b := points[i-1], points[i]

		dt := float64(b.ts - a.ts)
		if dt <= 0 || dt > maxTimeDeltaSeconds {
			continue
		}

		dist := geo.DistanceMeters(a.lat, a.lon, b.lat, b.lon)
		if dist > maxJumpMeters {
			continue
		}

		totalDistance += dist
		totalTime += dt
		if dist > 0 {
			bearings = append(bearings, geo.WeightedBearing{
				Degrees: geo.BearingDegrees(a.lat, a.lon, b.lat, b.lon),
				Weight:  dist,
			})
		}
	}

	res.Reliable = totalTime >= minTimeDeltaSeconds && totalTime <= maxTotalTimeSeconds
	if totalTime > 0 {
		res.SpeedKmh = totalDistance / totalTime * mpsToKmh
	}
	res.BearingDeg = resolveBearing(bearings, rep, prior)

	return res
}

// resolveBearing prefers the weighted mean over valid segments. When every
// segment failed the filters it falls back to the raw heading from the last
// history point to the new one, and finally to the feed's own bearing. A
// fallback bearing is a display hint only and never feeds route direction.
func resolveBearing(bearings []geo.WeightedBearing, rep *domain.RawReport, prior []history.Snapshot) *float64 {
	if deg, ok := geo.WeightedCircularMean(bearings); ok {
		return &deg
	}

	if len(prior) > 0 {
		last := prior[len(prior)-1]
		if last.Lat != rep.Lat || last.Lon != rep.Lon {
			deg := geo.BearingDegrees(last.Lat, last.Lon, rep.Lat, rep.Lon)
			return &deg
		}
	}

	return rep.BearingDeg
}

// pickSpeedKmh prefers the device's own reported speed when it converts to a
// plausible km/h figure, then the computed estimate when its aggregate time
// window was reliable. Neither passing means no usable speed this cycle.
func pickSpeedKmh(reportedMps *float64, res Resolution) (float64, bool) {
	if reportedMps != nil {
		kmh := *reportedMps * mpsToKmh
		if kmh >= minSpeedKmh && kmh <= maxSpeedKmh {
			return kmh, true
		}
	}

	if res.Reliable && res.SpeedKmh >= minSpeedKmh && res.SpeedKmh <= maxSpeedKmh {
		return res.SpeedKmh, true
	}

	return 0, false
}
