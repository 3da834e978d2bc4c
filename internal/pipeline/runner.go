package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"buspulse/internal/domain"
	"buspulse/internal/store"
)

// Broadcaster receives each completed cycle for live push.
type Broadcaster interface {
	Broadcast(result *domain.CycleResult)
}

// Runner drives the pipeline on a fixed interval and publishes results into
// the result store. Cycles never overlap: the next tick waits for the
// previous cycle to finish.
type Runner struct {
	pipeline    *Pipeline
	results     *store.ResultStore
	broadcaster Broadcaster
	interval    time.Duration
	logger      *slog.Logger

	ready   bool
	readyMu sync.RWMutex
}

func NewRunner(p *Pipeline, results *store.ResultStore, broadcaster Broadcaster, interval time.Duration, logger *slog.Logger) *Runner {
	return &Runner{
		pipeline:    p,
		results:     results,
		broadcaster: broadcaster,
		interval:    interval,
		logger:      logger.With("component", "runner"),
	}
}

func (r *Runner) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.cycle(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.cycle(ctx)
		}
	}
}

func (r *Runner) cycle(ctx context.Context) {
	result, err := r.pipeline.RunCycle(ctx)
	if err != nil {
		r.logger.Error("cycle failed", "error", err)
		return
	}

	r.results.Set(result)

	if r.broadcaster != nil {
		r.broadcaster.Broadcast(result)
	}

	if !r.IsReady() {
		r.setReady(true)
		r.logger.Info("first cycle completed",
			"vehicles", result.Snapshot.Stats.Total,
			"routes", len(result.Leaderboard),
		)
	}
}

func (r *Runner) IsReady() bool {
	r.readyMu.RLock()
	defer r.readyMu.RUnlock()
	return r.ready
}

func (r *Runner) setReady(ready bool) {
	r.readyMu.Lock()
	defer r.readyMu.Unlock()
	r.ready = ready
}
