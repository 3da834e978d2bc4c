package store

import (
	"strings"
	"sync"
	"time"

	"buspulse/internal/domain"
)

// RouteStore caches static route metadata and shapes from the GTFS
// refresher. A failed refresh leaves the previous contents untouched, so
// stale data keeps serving until a refresh succeeds.
type RouteStore struct {
	mu                sync.RWMutex
	routes            map[string]*domain.Route
	routesByShortName map[string]*domain.Route
	shapes            map[string]*domain.Shape
	routeShapes       map[string][]string

	lastUpdate time.Time
}

func NewRouteStore() *RouteStore {
	return &RouteStore{
		routes:            make(map[string]*domain.Route),
		routesByShortName: make(map[string]*domain.Route),
		shapes:            make(map[string]*domain.Shape),
		routeShapes:       make(map[string][]string),
	}
}

func (s *RouteStore) UpdateAll(routes map[string]*domain.Route, shapes map[string]*domain.Shape, routeShapes map[string][]string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.routes = routes
	s.shapes = shapes
	s.routeShapes = routeShapes
	s.lastUpdate = time.Now()

	s.routesByShortName = make(map[string]*domain.Route, len(routes))
	for _, route := range routes {
		if route.ShortName != "" {
			s.routesByShortName[route.ShortName] = route
		}
	}
}

// Names returns the display names for a route ID. ok is false when the
// mapping is unknown; callers fall back to the raw identifier.
func (s *RouteStore) Names(routeID string) (shortName, longName string, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	route, found := s.routes[routeID]
	if !found {
		return "", "", false
	}
	return route.ShortName, route.LongName, true
}

func (s *RouteStore) GetAllRoutes() []*domain.Route {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.Route, 0, len(s.routes))
	for _, route := range s.routes {
		copy := *route
		result = append(result, &copy)
	}
	return result
}

// ResolveRef matches a client-supplied route reference against the cache.
// It accepts the internal route ID, the display short name, and either of
// those with a trailing direction letter (the variant spelling shown on the
// leaderboard).
func (s *RouteStore) ResolveRef(ref string) (*domain.Route, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if route, ok := s.lookupRef(ref); ok {
		return route, true
	}

	if trimmed, ok := strings.CutSuffix(ref, "N"); ok {
		if route, found := s.lookupRef(trimmed); found {
			return route, true
		}
	}
	if trimmed, ok := strings.CutSuffix(ref, "S"); ok {
		if route, found := s.lookupRef(trimmed); found {
			return route, true
		}
	}

	return nil, false
}

func (s *RouteStore) lookupRef(ref string) (*domain.Route, bool) {
	if route, ok := s.routes[ref]; ok {
		copy := *route
		return &copy, true
	}
	if route, ok := s.routesByShortName[ref]; ok {
		copy := *route
		return &copy, true
	}
	return nil, false
}

func (s *RouteStore) GetRouteShapes(routeID string) []*domain.Shape {
	s.mu.RLock()
	defer s.mu.RUnlock()

	shapeIDs, ok := s.routeShapes[routeID]
	if !ok {
		return nil
	}

	result := make([]*domain.Shape, 0, len(shapeIDs))
	for _, shapeID := range shapeIDs {
		if shape, ok := s.shapes[shapeID]; ok {
			shapeCopy := &domain.Shape{
				ID:     shape.ID,
				Points: make([]domain.ShapePoint, len(shape.Points)),
			}
			copy(shapeCopy.Points, shape.Points)
			result = append(result, shapeCopy)
		}
	}
	return result
}

type RouteStats struct {
	RoutesCount int       `json:"routes_count"`
	ShapesCount int       `json:"shapes_count"`
	LastUpdate  time.Time `json:"last_update"`
	IsLoaded    bool      `json:"is_loaded"`
}

func (s *RouteStore) GetStats() RouteStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return RouteStats{
		RoutesCount: len(s.routes),
		ShapesCount: len(s.shapes),
		LastUpdate:  s.lastUpdate,
		IsLoaded:    !s.lastUpdate.IsZero(),
	}
}
