// Package pipeline runs the per-cycle ingest: evict stale history, decode
// the feed, resolve each vehicle, and aggregate the leaderboard and live
// snapshot.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"buspulse/internal/aggregate"
	"buspulse/internal/domain"
	"buspulse/internal/history"
	"buspulse/internal/metrics"
	"buspulse/internal/resolver"
	"buspulse/internal/store"
	"buspulse/internal/variant"
	"buspulse/pkg/gtfsrt"
)

// FeedClient is the upstream vehicle-position feed.
type FeedClient interface {
	Fetch(ctx context.Context) (*gtfsrt.Feed, error)
}

type Pipeline struct {
	feed     FeedClient
	history  *history.Store
	resolver *resolver.Resolver
	routes   *store.RouteStore
	metrics  *metrics.Collector
	logger   *slog.Logger
}

func New(feed FeedClient, hist *history.Store, routes *store.RouteStore, collector *metrics.Collector, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		feed:     feed,
		history:  hist,
		resolver: resolver.New(hist),
		routes:   routes,
		metrics:  collector,
		logger:   logger.With("component", "pipeline"),
	}
}

// RunCycle executes one full poll-and-process pass. A feed fetch failure
// fails the whole cycle and leaves the previous results in place; per-vehicle
// problems are skipped without failing the cycle.
func (p *Pipeline) RunCycle(ctx context.Context) (*domain.CycleResult, error) {
	start := time.Now()

	evicted := p.history.EvictStale(start)
	if evicted > 0 {
		p.logger.Debug("evicted stale vehicle histories", "count", evicted)
	}

	feed, err := p.feed.Fetch(ctx)
	if err != nil {
		if p.metrics != nil {
			p.metrics.CycleErrors.Inc()
		}
		return nil, fmt.Errorf("fetch feed: %w", err)
	}

	leaderboard := aggregate.NewLeaderboard()
	snapshot := aggregate.NewSnapshotBuilder()

	resolved := 0
	discarded := 0

	for _, rep := range feed.Reports {
		shortName, longName, known := p.routes.Names(rep.RouteID)
		if !known || longName == "" {
			longName = "Route " + rep.RouteID
		}

		v := variant.Classify(rep.RouteID, shortName, rep.DirectionID)

		res, usable := p.resolver.Resolve(rep)
		if !usable {
			discarded++
			continue
		}
		resolved++

		leaderboard.Add(v, longName, res.SpeedKmh)
		snapshot.Add(domain.VehiclePosition{
			ID:          rep.VehicleID,
			Label:       rep.Label,
			RouteID:     rep.RouteID,
			RouteNumber: v.Display,
			RouteName:   longName,
			Lat:         rep.Lat,
			Lon:         rep.Lon,
			BearingDeg:  res.BearingDeg,
			SpeedKmh:    res.SpeedKmh,
			Timestamp:   rep.Timestamp,
			VariantKey:  v.Key,
		})
	}

	result := &domain.CycleResult{
		Leaderboard: leaderboard.Rows(),
		Snapshot:    snapshot.Build(feed.HeaderTime),
		CompletedAt: time.Now(),
	}

	if p.metrics != nil {
		p.metrics.ObserveCycle(time.Since(start))
		p.metrics.VehiclesSeen.Set(float64(len(feed.Reports)))
		p.metrics.VehiclesResolved.Set(float64(resolved))
		p.metrics.VehiclesDiscarded.Add(float64(discarded))
		p.metrics.EntitiesDropped.Add(float64(feed.Dropped))
		p.metrics.HistoryVehicles.Set(float64(p.history.Len()))
		p.metrics.RoutesRanked.Set(float64(len(result.Leaderboard)))
	}

	p.logger.Debug("cycle completed",
		"reports", len(feed.Reports),
		"resolved", resolved,
		"discarded", discarded,
		"dropped", feed.Dropped,
		"routes", len(result.Leaderboard),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return result, nil
}
