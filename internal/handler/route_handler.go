package handler

import (
	"log/slog"
	"net/http"
	"time"

	"buspulse/internal/cache"
	"buspulse/internal/domain"
	"buspulse/internal/store"
)

type RouteHandler struct {
	store  *store.RouteStore
	cache  *cache.RedisCache
	logger *slog.Logger
}

func NewRouteHandler(routeStore *store.RouteStore, redisCache *cache.RedisCache, logger *slog.Logger) *RouteHandler {
	return &RouteHandler{
		store:  routeStore,
		cache:  redisCache,
		logger: logger.With("handler", "routes"),
	}
}

type RoutesResponse struct {
	Routes     []*domain.Route `json:"routes"`
	Count      int             `json:"count"`
	ServerTime time.Time       `json:"serverTime"`
}

func (h *RouteHandler) ListRoutes(w http.ResponseWriter, r *http.Request) {
	routes := h.store.GetAllRoutes()

	respondJSON(w, http.StatusOK, RoutesResponse{
		Routes:     routes,
		Count:      len(routes),
		ServerTime: time.Now(),
	})
}

type ShapesResponse struct {
	RouteID    string          `json:"routeId"`
	Shapes     []*domain.Shape `json:"shapes"`
	Count      int             `json:"count"`
	ServerTime time.Time       `json:"serverTime"`
}

// GetRouteShape returns a route's path geometry. The path value accepts the
// internal route ID or the display short name, including the leaderboard's
// trailing direction-letter spelling.
func (h *RouteHandler) GetRouteShape(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ref := r.PathValue("route")

	if ref == "" {
		respondError(w, http.StatusBadRequest, "missing route parameter")
		return
	}

	route, ok := h.store.ResolveRef(ref)
	if !ok {
		h.logger.Debug("route not found", "ref", ref)
		respondError(w, http.StatusNotFound, "route not found")
		return
	}

	if h.cache != nil {
		var cached ShapesResponse
		if hit, err := h.cache.GetJSONCompressed(r.Context(), cache.KeyRouteShape(route.ID), &cached); err == nil && hit {
			respondJSON(w, http.StatusOK, cached)
			return
		}
	}

	shapes := h.store.GetRouteShapes(route.ID)
	if shapes == nil {
		shapes = []*domain.Shape{}
	}

	resp := ShapesResponse{
		RouteID:    route.ID,
		Shapes:     shapes,
		Count:      len(shapes),
		ServerTime: time.Now(),
	}

	if h.cache != nil {
		if err := h.cache.SetJSONCompressed(r.Context(), cache.KeyRouteShape(route.ID), resp, 12*time.Hour); err != nil {
			h.logger.Debug("shape cache write failed", "route_id", route.ID, "error", err)
		}
	}

	h.logger.Debug("shape response",
		"ref", ref,
		"route_id", route.ID,
		"shapes_count", len(shapes),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	respondJSON(w, http.StatusOK, resp)
}
