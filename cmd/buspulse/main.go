package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"buspulse/internal/cache"
	"buspulse/internal/config"
	"buspulse/internal/handler"
	"buspulse/internal/history"
	"buspulse/internal/hub"
	"buspulse/internal/ingestor"
	"buspulse/internal/metrics"
	"buspulse/internal/middleware"
	"buspulse/internal/pipeline"
	"buspulse/internal/store"
	"buspulse/pkg/gtfsrt"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("starting buspulse server",
		"log_level", cfg.LogLevel.String(),
		"http_addr", cfg.HTTPAddr,
		"poll_interval", cfg.PollInterval.String(),
		"gtfs_enabled", cfg.GTFSEnabled,
		"redis_enabled", cfg.RedisEnabled,
	)

	hist := history.New()
	results := store.NewResultStore()
	routeStore := store.NewRouteStore()
	collector := metrics.NewCollector()
	wsHub := hub.NewHub(logger)

	feedClient := gtfsrt.New(cfg.FeedURL)
	pipe := pipeline.New(feedClient, hist, routeStore, collector, logger)
	runner := pipeline.NewRunner(pipe, results, wsHub, cfg.PollInterval, logger)

	var redisCache *cache.RedisCache
	if cfg.RedisEnabled {
		redisCache, err = cache.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, logger)
		if err != nil {
			logger.Warn("Redis unavailable, continuing without cache", "error", err)
			redisCache = nil
		}
	}

	var gtfsIng *ingestor.GTFSIngestor
	if cfg.GTFSEnabled && cfg.GTFSURL != "" {
		gtfsIng = ingestor.NewGTFSIngestor(cfg.GTFSURL, routeStore, cfg.GTFSUpdateInterval, collector, logger)
		if redisCache != nil {
			invalidator := cache.NewInvalidator(redisCache, logger)
			gtfsIng.SetOnUpdate(invalidator.OnGTFSUpdate)
		}
	}

	httpHandler := handler.NewHTTPHandler(results, redisCache, cfg.CacheTTL, logger)
	routeHandler := handler.NewRouteHandler(routeStore, redisCache, logger)
	statsHandler := handler.NewStatsHandler(results, routeStore, hist)
	wsHandler := handler.NewWSHandler(wsHub, results, logger)
	healthHandler := handler.NewHealthHandler(runner, results)

	mux := http.NewServeMux()

	mux.HandleFunc("GET /v1/leaderboard", httpHandler.GetLeaderboard)
	mux.HandleFunc("GET /v1/vehicles", httpHandler.GetSnapshot)
	mux.HandleFunc("/v1/ws", wsHandler.ServeWS)

	mux.HandleFunc("GET /v1/routes", routeHandler.ListRoutes)
	mux.HandleFunc("GET /v1/routes/{route}/shape", routeHandler.GetRouteShape)
	mux.HandleFunc("GET /v1/stats", statsHandler.GetStats)

	mux.HandleFunc("GET /healthz", healthHandler.Healthz)
	mux.HandleFunc("GET /readyz", healthHandler.Readyz)
	mux.Handle("GET /metrics", collector.Handler())

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitPerWindow, cfg.RateLimitWindow, cfg.RateLimitWhitelist, logger)
	rateLimiter.SetOnBlocked(handler.ServerStats.IncRateLimitBlocked)

	var root http.Handler = mux
	root = handler.GzipMiddleware(root)
	root = handler.CORSMiddleware(root)
	root = handler.RequestCountMiddleware(root)
	root = rateLimiter.Middleware(root)

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      root,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go wsHub.Run(ctx)

	go runner.Run(ctx)

	if gtfsIng != nil {
		go gtfsIng.Start(ctx)
	}

	go func() {
		logger.Info("starting HTTP server", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server error", "error", err)
			cancel()
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutdown signal received")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}

	if redisCache != nil {
		if err := redisCache.Close(); err != nil {
			logger.Error("Redis close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
