package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"

	httpadapter "github.com/couchcryptid/flight-wx-triggers/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/flight-wx-triggers/internal/adapter/kafka"
	"github.com/couchcryptid/flight-wx-triggers/internal/adapter/segcache"
	"github.com/couchcryptid/flight-wx-triggers/internal/config"
	"github.com/couchcryptid/flight-wx-triggers/internal/domain"
	"github.com/couchcryptid/flight-wx-triggers/internal/observability"
	"github.com/couchcryptid/flight-wx-triggers/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	segmenter := segcache.New(domain.SegmenterFunc(domain.BuildTafSegments), cfg.SegmentCacheSize, cfg.SegmentCacheTTL, metrics)
	engine := domain.NewEngine(
		domain.WithClock(clockwork.NewRealClock()),
		domain.WithSegmenter(segmenter),
		domain.WithThresholds(domain.Thresholds{
			CeilingMinFt:    cfg.CeilingMinFt,
			VisibilityMinSM: cfg.VisibilityMinSM,
			ShortHopMinutes: cfg.ShortHopMinutes,
			HighWind:        cfg.HighWindEnabled,
			HighWindKt:      cfg.HighWindKt,
		}),
	)
	logger.Info("engine configured",
		"ceiling_min_ft", cfg.CeilingMinFt,
		"visibility_min_sm", cfg.VisibilityMinSM,
		"short_hop_minutes", cfg.ShortHopMinutes,
		"high_wind", cfg.HighWindEnabled,
		"segment_cache_size", cfg.SegmentCacheSize,
	)

	reader := kafkaadapter.NewReader(cfg, logger)
	writer := kafkaadapter.NewWriter(cfg, logger)
	transformer := pipeline.NewTransformer(engine, logger, metrics)

	p := pipeline.New(reader, transformer, writer, logger, metrics, cfg.BatchSize, cfg.EvalWorkers)

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, engine, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start evaluation pipeline.
	go func() {
		if err := p.Run(ctx); err != nil {
			logger.Error("pipeline error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if err := reader.Close(); err != nil {
		logger.Error("kafka reader close error", "error", err)
	}
	if err := writer.Close(); err != nil {
		logger.Error("kafka writer close error", "error", err)
	}

	logger.Info("shutdown complete")
}
