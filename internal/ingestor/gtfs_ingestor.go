// Package ingestor refreshes the static GTFS reference data on a long TTL,
// independent of the per-cycle vehicle processing.
package ingestor

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"buspulse/internal/metrics"
	"buspulse/internal/store"
	"buspulse/pkg/gtfs"
)

type GTFSIngestor struct {
	downloader     *gtfs.Downloader
	parser         *gtfs.Parser
	store          *store.RouteStore
	metrics        *metrics.Collector
	updateInterval time.Duration
	logger         *slog.Logger
	onUpdate       func(context.Context)

	ready   bool
	readyMu sync.RWMutex
}

func NewGTFSIngestor(url string, routeStore *store.RouteStore, updateInterval time.Duration, collector *metrics.Collector, logger *slog.Logger) *GTFSIngestor {
	return &GTFSIngestor{
		downloader:     gtfs.NewDownloader(url, logger),
		parser:         gtfs.NewParser(logger),
		store:          routeStore,
		metrics:        collector,
		updateInterval: updateInterval,
		logger:         logger.With("component", "gtfs_ingestor"),
	}
}

func (i *GTFSIngestor) Start(ctx context.Context) {
	i.update(ctx)

	ticker := time.NewTicker(i.updateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			i.update(ctx)
		}
	}
}

// update downloads and parses the schedule ZIP, reusing an on-disk parsed
// cache keyed by content hash. Any failure logs a warning and keeps the
// previous store contents; stale reference data is better than none.
func (i *GTFSIngestor) update(ctx context.Context) {
	i.logger.Info("starting GTFS update")
	start := time.Now()

	reader, data, err := i.downloader.Download(ctx)
	if err != nil {
		i.logger.Warn("failed to download GTFS, keeping cached data", "error", err)
		if i.metrics != nil {
			i.metrics.GTFSRefreshErrors.Inc()
		}
		return
	}

	cacheDir := gtfs.ParsedCacheDir()
	fingerprint := gtfs.DataFingerprint(data)

	parseStart := time.Now()
	result, cachePath, cacheErr := gtfs.LoadParsedResult(cacheDir, fingerprint)
	if cacheErr == nil {
		i.logger.Info("loaded parsed GTFS cache", "path", cachePath)
	} else {
		i.logger.Info("parsed GTFS cache miss, parsing ZIP", "path", cachePath)
		result, err = i.parser.Parse(reader)
		if err != nil {
			i.logger.Warn("failed to parse GTFS, keeping cached data", "error", err)
			if i.metrics != nil {
				i.metrics.GTFSRefreshErrors.Inc()
			}
			return
		}
		if savedPath, saveErr := gtfs.SaveParsedResult(cacheDir, fingerprint, result); saveErr != nil {
			i.logger.Warn("failed to persist parsed GTFS cache", "error", saveErr)
		} else {
			i.logger.Info("persisted parsed GTFS cache", "path", savedPath)
		}
	}

	i.store.UpdateAll(result.Routes, result.Shapes, result.RouteShapes)

	if i.metrics != nil {
		i.metrics.GTFSRefreshes.Inc()
	}

	if !i.IsReady() {
		i.setReady(true)
	}

	if i.onUpdate != nil {
		i.onUpdate(ctx)
	}

	i.logger.Info("GTFS update completed",
		"parse_duration_ms", time.Since(parseStart).Milliseconds(),
		"total_duration_ms", time.Since(start).Milliseconds(),
		"routes", len(result.Routes),
		"shapes", len(result.Shapes),
	)
}

func (i *GTFSIngestor) IsReady() bool {
	i.readyMu.RLock()
	defer i.readyMu.RUnlock()
	return i.ready
}

func (i *GTFSIngestor) setReady(ready bool) {
	i.readyMu.Lock()
	defer i.readyMu.Unlock()
	i.ready = ready
}

// SetOnUpdate registers a callback invoked after each successful refresh,
// used to invalidate derived caches.
func (i *GTFSIngestor) SetOnUpdate(fn func(context.Context)) {
	i.onUpdate = fn
}
