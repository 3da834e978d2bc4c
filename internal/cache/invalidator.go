package cache

import (
	"context"
	"log/slog"
	"time"
)

// Invalidator drops cached payloads whose source data just changed. Shape
// payloads are cached for hours, so a static GTFS refresh must flush them
// or clients would see the previous dataset's geometry until expiry.
type Invalidator struct {
	cache  *RedisCache
	logger *slog.Logger
}

func NewInvalidator(redisCache *RedisCache, logger *slog.Logger) *Invalidator {
	return &Invalidator{
		cache:  redisCache,
		logger: logger.With("component", "cache_invalidator"),
	}
}

// OnGTFSUpdate is hooked into the GTFS refresher's update callback.
func (i *Invalidator) OnGTFSUpdate(ctx context.Context) {
	start := time.Now()

	if err := i.cache.DeletePattern(ctx, KeyRouteShapePattern); err != nil {
		i.logger.Error("failed to invalidate shape cache", "error", err)
		return
	}

	i.logger.Info("invalidated shape cache after GTFS update",
		"duration_ms", time.Since(start).Milliseconds(),
	)
}
