package handler

import (
	"encoding/json"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"buspulse/internal/history"
	"buspulse/internal/store"
)

// Stats tracks server-wide counters
type Stats struct {
	startTime        time.Time
	requestCount     atomic.Int64
	wsConnections    atomic.Int64
	wsMessagesOut    atomic.Int64
	rateLimitBlocked atomic.Int64
}

// Global stats instance
var ServerStats = &Stats{
	startTime: time.Now(),
}

func (s *Stats) IncRequests()         { s.requestCount.Add(1) }
func (s *Stats) IncWSConnections()    { s.wsConnections.Add(1) }
func (s *Stats) DecWSConnections()    { s.wsConnections.Add(-1) }
func (s *Stats) IncWSMessagesOut()    { s.wsMessagesOut.Add(1) }
func (s *Stats) IncRateLimitBlocked() { s.rateLimitBlocked.Add(1) }

type StatsHandler struct {
	results    *store.ResultStore
	routeStore *store.RouteStore
	history    *history.Store
}

func NewStatsHandler(results *store.ResultStore, routeStore *store.RouteStore, hist *history.Store) *StatsHandler {
	return &StatsHandler{
		results:    results,
		routeStore: routeStore,
		history:    hist,
	}
}

type StatsResponse struct {
	Server    ServerStatsResponse    `json:"server"`
	Engine    EngineStatsResponse    `json:"engine"`
	GTFS      GTFSStatsResponse      `json:"gtfs"`
	WebSocket WebSocketStatsResponse `json:"websocket"`
	Go        GoStatsResponse        `json:"go"`
}

type ServerStatsResponse struct {
	Uptime        string    `json:"uptime"`
	UptimeSeconds float64   `json:"uptime_seconds"`
	StartTime     time.Time `json:"start_time"`
	RequestCount  int64     `json:"request_count"`
	RateLimited   int64     `json:"rate_limited"`
	Version       string    `json:"version"`
}

type EngineStatsResponse struct {
	TrackedVehicles int        `json:"tracked_vehicles"`
	FleetTotal      int        `json:"fleet_total"`
	FleetMoving     int        `json:"fleet_moving"`
	RankedRoutes    int        `json:"ranked_routes"`
	LastCycleAt     *time.Time `json:"last_cycle_at,omitempty"`
}

type GTFSStatsResponse struct {
	Routes     int       `json:"routes"`
	Shapes     int       `json:"shapes"`
	IsLoaded   bool      `json:"is_loaded"`
	LastUpdate time.Time `json:"last_update"`
}

type WebSocketStatsResponse struct {
	Connections int64 `json:"connections"`
	MessagesOut int64 `json:"messages_out"`
}

type GoStatsResponse struct {
	Goroutines  int     `json:"goroutines"`
	HeapAlloc   uint64  `json:"heap_alloc_bytes"`
	HeapAllocMB float64 `json:"heap_alloc_mb"`
	NumGC       uint32  `json:"num_gc"`
	GoVersion   string  `json:"go_version"`
}

func (h *StatsHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	ServerStats.IncRequests()

	uptime := time.Since(ServerStats.startTime)

	engine := EngineStatsResponse{
		TrackedVehicles: h.history.Len(),
	}
	if snap, ok := h.results.Snapshot(); ok {
		engine.FleetTotal = snap.Stats.Total
		engine.FleetMoving = snap.Stats.Moving
	}
	if rows, ok := h.results.Leaderboard(); ok {
		engine.RankedRoutes = len(rows)
	}
	if completedAt, ok := h.results.CompletedAt(); ok {
		engine.LastCycleAt = &completedAt
	}

	routeStats := h.routeStore.GetStats()

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	response := StatsResponse{
		Server: ServerStatsResponse{
			Uptime:        uptime.Round(time.Second).String(),
			UptimeSeconds: uptime.Seconds(),
			StartTime:     ServerStats.startTime,
			RequestCount:  ServerStats.requestCount.Load(),
			RateLimited:   ServerStats.rateLimitBlocked.Load(),
			Version:       "1.0.0",
		},
		Engine: engine,
		GTFS: GTFSStatsResponse{
			Routes:     routeStats.RoutesCount,
			Shapes:     routeStats.ShapesCount,
			IsLoaded:   routeStats.IsLoaded,
			LastUpdate: routeStats.LastUpdate,
		},
		WebSocket: WebSocketStatsResponse{
			Connections: ServerStats.wsConnections.Load(),
			MessagesOut: ServerStats.wsMessagesOut.Load(),
		},
		Go: GoStatsResponse{
			Goroutines:  runtime.NumGoroutine(),
			HeapAlloc:   mem.HeapAlloc,
			HeapAllocMB: float64(mem.HeapAlloc) / 1024 / 1024,
			NumGC:       mem.NumGC,
			GoVersion:   runtime.Version(),
		},
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")
	json.NewEncoder(w).Encode(response)
}
