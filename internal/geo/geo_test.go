package geo

import (
	"math"
	"testing"
)

func TestDistanceMeters(t *testing.T) {
	tests := []struct {
		name                   string
		lat1, lon1, lat2, lon2 float64
		want                   float64
		tolerance              float64
	}{
		{
			name: "zero distance at origin",
			want: 0,
		},
		{
			name: "zero distance same point",
			lat1: 43.6, lon1: -79.6, lat2: 43.6, lon2: -79.6,
			want: 0,
		},
		{
			name: "one degree of longitude at equator",
			lat1: 0, lon1: 0, lat2: 0, lon2: 1,
			want:      111194.93,
			tolerance: 0.5,
		},
		{
			name: "one degree of latitude",
			lat1: 0, lon1: 0, lat2: 1, lon2: 0,
			want:      111194.93,
			tolerance: 0.5,
		},
		{
			name: "short hop",
			lat1: 43.6000, lon1: -79.6000, lat2: 43.6010, lon2: -79.6000,
			want:      111.19,
			tolerance: 0.1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DistanceMeters(tt.lat1, tt.lon1, tt.lat2, tt.lon2)
			if math.Abs(got-tt.want) > tt.tolerance {
				t.Errorf("DistanceMeters() = %f, want %f ± %f", got, tt.want, tt.tolerance)
			}
		})
	}
}

func TestBearingDegrees(t *testing.T) {
	tests := []struct {
		name                   string
		lat1, lon1, lat2, lon2 float64
		want                   float64
	}{
		{name: "due north", lat1: 0, lon1: 0, lat2: 1, lon2: 0, want: 0},
		{name: "due east", lat1: 0, lon1: 0, lat2: 0, lon2: 1, want: 90},
		{name: "due south", lat1: 1, lon1: 0, lat2: 0, lon2: 0, want: 180},
		{name: "due west", lat1: 0, lon1: 1, lat2: 0, lon2: 0, want: 270},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BearingDegrees(tt.lat1, tt.lon1, tt.lat2, tt.lon2)
			if math.Abs(got-tt.want) > 0.01 {
				t.Errorf("BearingDegrees() = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestWeightedCircularMean(t *testing.T) {
	tests := []struct {
		name    string
		samples []WeightedBearing
		want    float64
		wantOK  bool
	}{
		{
			name:   "empty input",
			wantOK: false,
		},
		{
			name:    "wraparound across north",
			samples: []WeightedBearing{{Degrees: 359, Weight: 1}, {Degrees: 1, Weight: 1}},
			want:    0,
			wantOK:  true,
		},
		{
			name:    "single sample",
			samples: []WeightedBearing{{Degrees: 45, Weight: 10}},
			want:    45,
			wantOK:  true,
		},
		{
			name: "heavier sample dominates",
			samples: []WeightedBearing{
				{Degrees: 0, Weight: 3},
				{Degrees: 90, Weight: 1},
			},
			want:   18.43,
			wantOK: true,
		},
		{
			name:    "opposing bearings cancel",
			samples: []WeightedBearing{{Degrees: 0, Weight: 1}, {Degrees: 180, Weight: 1}},
			wantOK:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := WeightedCircularMean(tt.samples)
			if ok != tt.wantOK {
				t.Fatalf("WeightedCircularMean() ok = %v, want %v", ok, tt.wantOK)
			}
			if !tt.wantOK {
				return
			}

			diff := math.Abs(got - tt.want)
			if diff > 180 {
				diff = 360 - diff
			}
			if diff > 0.01 {
				t.Errorf("WeightedCircularMean() = %f, want %f", got, tt.want)
			}
		})
	}
}
