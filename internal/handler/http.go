package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"buspulse/internal/cache"
	"buspulse/internal/domain"
	"buspulse/internal/store"
)

// jsonCache is the slice of the Redis cache the leaderboard path uses.
type jsonCache interface {
	GetJSON(ctx context.Context, key string, dest interface{}) (bool, error)
	SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// HTTPHandler serves the engine's two main read paths: the route speed
// leaderboard and the live vehicle snapshot. Both come from the latest
// completed cycle; a request never triggers a cycle itself.
type HTTPHandler struct {
	results  *store.ResultStore
	cache    jsonCache
	cacheTTL time.Duration
	logger   *slog.Logger
}

func NewHTTPHandler(results *store.ResultStore, redisCache *cache.RedisCache, cacheTTL time.Duration, logger *slog.Logger) *HTTPHandler {
	h := &HTTPHandler{
		results:  results,
		cacheTTL: cacheTTL,
		logger:   logger.With("handler", "http"),
	}
	if redisCache != nil {
		h.cache = redisCache
	}
	return h
}

type LeaderboardResponse struct {
	Routes     []domain.RouteSpeed `json:"routes"`
	Count      int                 `json:"count"`
	UpdatedAt  time.Time           `json:"updatedAt"`
	ServerTime time.Time           `json:"serverTime"`
}

func (h *HTTPHandler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	rows, ok := h.results.Leaderboard()
	if !ok {
		// Before the first cycle the cache is ignored too: a restart must
		// not serve a previous process's payload while /readyz says 503.
		respondError(w, http.StatusServiceUnavailable, "no cycle completed yet")
		return
	}

	if h.cache != nil {
		var cached LeaderboardResponse
		if hit, err := h.cache.GetJSON(r.Context(), cache.KeyLeaderboard, &cached); err == nil && hit {
			respondJSON(w, http.StatusOK, cached)
			return
		}
	}
	if rows == nil {
		rows = []domain.RouteSpeed{}
	}
	completedAt, _ := h.results.CompletedAt()

	resp := LeaderboardResponse{
		Routes:     rows,
		Count:      len(rows),
		UpdatedAt:  completedAt,
		ServerTime: time.Now(),
	}

	if h.cache != nil {
		if err := h.cache.SetJSON(r.Context(), cache.KeyLeaderboard, resp, h.cacheTTL); err != nil {
			h.logger.Debug("leaderboard cache write failed", "error", err)
		}
	}

	respondJSON(w, http.StatusOK, resp)
}

func (h *HTTPHandler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.results.Snapshot()
	if !ok {
		respondError(w, http.StatusServiceUnavailable, "no cycle completed yet")
		return
	}

	respondJSON(w, http.StatusOK, snap)
}

type errorResponse struct {
	Error string `json:"error"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, errorResponse{Error: message})
}
