package variant

import "testing"

func TestClassify(t *testing.T) {
	north := uint32(0)
	south := uint32(1)
	other := uint32(7)

	tests := []struct {
		name        string
		routeID     string
		shortName   string
		directionID *uint32
		wantKey     string
		wantDisplay string
	}{
		{
			name:    "direction 0 is northbound",
			routeID: "520", shortName: "7", directionID: &north,
			wantKey: "520:N", wantDisplay: "7N",
		},
		{
			name:    "direction 1 is southbound",
			routeID: "520", shortName: "7", directionID: &south,
			wantKey: "520:S", wantDisplay: "7S",
		},
		{
			name:    "absent direction is unspecified",
			routeID: "520", shortName: "7",
			wantKey: "520:U", wantDisplay: "7",
		},
		{
			name:    "unknown signal value is unspecified",
			routeID: "520", shortName: "7", directionID: &other,
			wantKey: "520:U", wantDisplay: "7",
		},
		{
			name:    "missing short name falls back to route id",
			routeID: "520", directionID: &north,
			wantKey: "520:N", wantDisplay: "520N",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Classify(tt.routeID, tt.shortName, tt.directionID)
			if v.Key != tt.wantKey {
				t.Errorf("Key = %q, want %q", v.Key, tt.wantKey)
			}
			if v.Display != tt.wantDisplay {
				t.Errorf("Display = %q, want %q", v.Display, tt.wantDisplay)
			}
		})
	}
}

func TestClassifySeparatesDirections(t *testing.T) {
	north := uint32(0)
	south := uint32(1)

	a := Classify("520", "7", &north)
	b := Classify("520", "7", &south)

	if a.Key == b.Key {
		t.Errorf("opposite directions share bucket %q", a.Key)
	}
}
