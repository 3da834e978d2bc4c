package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"buspulse/internal/store"
)

// ReadyChecker reports whether the poll loop has completed a cycle.
type ReadyChecker interface {
	IsReady() bool
}

type HealthHandler struct {
	runner  ReadyChecker
	results *store.ResultStore
}

func NewHealthHandler(runner ReadyChecker, results *store.ResultStore) *HealthHandler {
	return &HealthHandler{
		runner:  runner,
		results: results,
	}
}

func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

type ReadyResponse struct {
	Ready       bool       `json:"ready"`
	LastCycleAt *time.Time `json:"lastCycleAt,omitempty"`
	ServerTime  time.Time  `json:"serverTime"`
}

func (h *HealthHandler) Readyz(w http.ResponseWriter, r *http.Request) {
	ready := h.runner.IsReady()
	status := http.StatusOK
	if !ready {
		status = http.StatusServiceUnavailable
	}

	resp := ReadyResponse{
		Ready:      ready,
		ServerTime: time.Now(),
	}
	if completedAt, ok := h.results.CompletedAt(); ok {
		resp.LastCycleAt = &completedAt
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}
