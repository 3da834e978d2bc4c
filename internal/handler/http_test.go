package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"buspulse/internal/domain"
	"buspulse/internal/store"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestGetLeaderboardBeforeFirstCycle(t *testing.T) {
	h := NewHTTPHandler(store.NewResultStore(), nil, 0, testLogger())

	rec := httptest.NewRecorder()
	h.GetLeaderboard(rec, httptest.NewRequest(http.MethodGet, "/v1/leaderboard", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}

	var resp errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal error body: %v", err)
	}
	if resp.Error == "" {
		t.Error("expected non-empty error message")
	}
}

func TestGetLeaderboard(t *testing.T) {
	results := store.NewResultStore()
	results.Set(&domain.CycleResult{
		Leaderboard: []domain.RouteSpeed{
			{RouteNumber: "180N", RouteName: "Wilanow - CH Marki", Speed: 31.5, VehicleCount: 8},
			{RouteNumber: "180S", RouteName: "Wilanow - CH Marki", Speed: 24.0, VehicleCount: 6},
		},
		CompletedAt: time.Now(),
	})

	h := NewHTTPHandler(results, nil, 0, testLogger())

	rec := httptest.NewRecorder()
	h.GetLeaderboard(rec, httptest.NewRequest(http.MethodGet, "/v1/leaderboard", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}

	var resp LeaderboardResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal body: %v", err)
	}
	if resp.Count != 2 || len(resp.Routes) != 2 {
		t.Fatalf("count = %d, routes = %d, want 2 each", resp.Count, len(resp.Routes))
	}
	if resp.Routes[0].RouteNumber != "180N" || resp.Routes[0].Speed != 31.5 {
		t.Errorf("first row = %+v, want 180N at 31.5", resp.Routes[0])
	}
	if resp.UpdatedAt.IsZero() {
		t.Error("expected updatedAt from the completed cycle")
	}
}

type fakeJSONCache struct {
	payload []byte
	gets    int
}

func (f *fakeJSONCache) GetJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	f.gets++
	if f.payload == nil {
		return false, nil
	}
	return true, json.Unmarshal(f.payload, dest)
}

func (f *fakeJSONCache) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	f.payload = data
	return nil
}

func TestGetLeaderboardCacheIgnoredBeforeFirstCycle(t *testing.T) {
	// A restart can leave a still-valid payload in Redis from the previous
	// process; it must not be served while no cycle has completed.
	stale, _ := json.Marshal(LeaderboardResponse{
		Routes: []domain.RouteSpeed{{RouteNumber: "180N", Speed: 31.5}},
		Count:  1,
	})
	cached := &fakeJSONCache{payload: stale}

	h := NewHTTPHandler(store.NewResultStore(), nil, 0, testLogger())
	h.cache = cached

	rec := httptest.NewRecorder()
	h.GetLeaderboard(rec, httptest.NewRequest(http.MethodGet, "/v1/leaderboard", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}
	if cached.gets != 0 {
		t.Errorf("cache consulted %d times before the first cycle, want 0", cached.gets)
	}
}

func TestGetLeaderboardCacheHit(t *testing.T) {
	results := store.NewResultStore()
	results.Set(&domain.CycleResult{
		Leaderboard: []domain.RouteSpeed{{RouteNumber: "41", Speed: 22.0}},
		CompletedAt: time.Now(),
	})

	h := NewHTTPHandler(results, nil, 0, testLogger())
	h.cache = &fakeJSONCache{}

	// First request misses and fills the cache, second serves from it.
	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		h.GetLeaderboard(rec, httptest.NewRequest(http.MethodGet, "/v1/leaderboard", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d status = %d, want %d", i+1, rec.Code, http.StatusOK)
		}

		var resp LeaderboardResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("unmarshal body: %v", err)
		}
		if resp.Count != 1 || resp.Routes[0].RouteNumber != "41" {
			t.Errorf("request %d body = %+v, want the 41 row", i+1, resp)
		}
	}
}

func TestGetSnapshot(t *testing.T) {
	results := store.NewResultStore()

	h := NewHTTPHandler(results, nil, 0, testLogger())

	rec := httptest.NewRecorder()
	h.GetSnapshot(rec, httptest.NewRequest(http.MethodGet, "/v1/vehicles", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status before first cycle = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}

	updatedAt := "2026-08-31T12:00:00Z"
	results.Set(&domain.CycleResult{
		Snapshot: domain.Snapshot{
			UpdatedAt: &updatedAt,
			Stats:     domain.FleetStats{Total: 1, Moving: 1, AverageSpeed: 28.4},
			Vehicles: []domain.VehiclePosition{
				{ID: "v-1", RouteID: "r180", RouteNumber: "180N", SpeedKmh: 28.4, Status: domain.StatusMoving},
			},
		},
		CompletedAt: time.Now(),
	})

	rec = httptest.NewRecorder()
	h.GetSnapshot(rec, httptest.NewRequest(http.MethodGet, "/v1/vehicles", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var snap domain.Snapshot
	if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
		t.Fatalf("unmarshal body: %v", err)
	}
	if snap.UpdatedAt == nil || *snap.UpdatedAt != updatedAt {
		t.Errorf("updatedAt = %v, want %s", snap.UpdatedAt, updatedAt)
	}
	if len(snap.Vehicles) != 1 || snap.Vehicles[0].Status != domain.StatusMoving {
		t.Errorf("vehicles = %+v, want one moving vehicle", snap.Vehicles)
	}
}

func TestGetRouteShapeByRef(t *testing.T) {
	routeStore := store.NewRouteStore()
	routeStore.UpdateAll(
		map[string]*domain.Route{
			"r180": {ID: "r180", ShortName: "180", LongName: "Wilanow - CH Marki"},
		},
		map[string]*domain.Shape{
			"shp-1": {ID: "shp-1", Points: []domain.ShapePoint{
				{Lat: 52.23, Lon: 21.01, Sequence: 1},
				{Lat: 52.24, Lon: 21.02, Sequence: 2},
			}},
		},
		map[string][]string{"r180": {"shp-1"}},
	)

	h := NewRouteHandler(routeStore, nil, testLogger())
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/routes/{route}/shape", h.GetRouteShape)

	tests := []struct {
		name     string
		ref      string
		wantCode int
	}{
		{"by id", "r180", http.StatusOK},
		{"by short name", "180", http.StatusOK},
		{"directional spelling", "180N", http.StatusOK},
		{"southbound spelling", "180S", http.StatusOK},
		{"unknown route", "999", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/routes/"+tt.ref+"/shape", nil))

			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantCode)
			}
			if tt.wantCode != http.StatusOK {
				return
			}

			var resp ShapesResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("unmarshal body: %v", err)
			}
			if resp.RouteID != "r180" {
				t.Errorf("routeId = %q, want r180", resp.RouteID)
			}
			if resp.Count != 1 || len(resp.Shapes) != 1 {
				t.Fatalf("count = %d, shapes = %d, want 1 each", resp.Count, len(resp.Shapes))
			}
			if got := len(resp.Shapes[0].Points); got != 2 {
				t.Errorf("points = %d, want 2", got)
			}
		})
	}
}
