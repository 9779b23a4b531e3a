package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/justemzy101/weather-data-pipeline/internal/config"
	"github.com/justemzy101/weather-data-pipeline/internal/logging"
	"github.com/justemzy101/weather-data-pipeline/internal/pipeline"
	"github.com/justemzy101/weather-data-pipeline/internal/quality"
	"github.com/justemzy101/weather-data-pipeline/internal/retry"
	"github.com/justemzy101/weather-data-pipeline/internal/scheduler"
	"github.com/justemzy101/weather-data-pipeline/internal/storage"
	"github.com/justemzy101/weather-data-pipeline/internal/transform"
	"github.com/justemzy101/weather-data-pipeline/internal/weather"
)

func main() {
	once := flag.Bool("once", false, "run a single pipeline cycle and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.DevMode)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()

	// Shared HTTP client for outbound fetches; its timeout bounds each
	// request. The client carries the circuit breaker, so it lives
	// across cycles.
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	client := weather.NewClient(httpClient, cfg.WeatherAPIURL, cfg.WeatherAPIKey, cfg.City, logger)

	orch := pipeline.NewOrchestrator(logger,
		pipeline.Stage{Name: "ingest", Run: ingest(cfg, client, logger)},
		pipeline.Stage{Name: "quality_scan", Run: qualityScan(cfg, logger)},
		pipeline.Stage{Name: "transform", Run: transformModels(cfg, logger)},
	)

	if *once {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		if err := orch.RunCycle(ctx); err != nil {
			logger.Errorw("pipeline cycle failed", "error", err)
			logger.Sync()
			os.Exit(1)
		}
		return
	}

	sched := scheduler.New(cfg.FetchInterval, orch.RunCycle, logger)
	if err := sched.Start(); err != nil {
		logger.Fatalw("failed to start scheduler", "error", err)
	}
	defer sched.Stop()

	logger.Infow("pipeline scheduler started", "interval", cfg.FetchInterval)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	logger.Infow("shutting down")
}

// ingest builds a fresh pool per cycle; the driver owns its disposal.
func ingest(cfg *config.AppConfig, client *weather.Client, logger *zap.SugaredLogger) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		pool, err := storage.NewPool(storage.PoolConfig{
			DSN:    cfg.DSN(),
			Schema: cfg.DBSchema,
			Retry:  retry.Default,
		}, logger)
		if err != nil {
			return err
		}
		return pipeline.New(client, pool, logger).Run(ctx)
	}
}

func qualityScan(cfg *config.AppConfig, logger *zap.SugaredLogger) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		pool, err := storage.NewPool(storage.PoolConfig{
			DSN:    cfg.DSN(),
			Schema: cfg.DBSchema,
			Retry:  retry.Default,
		}, logger)
		if err != nil {
			return err
		}
		defer pool.Dispose()

		report, err := quality.NewRunner(pool.DB(), cfg.DBSchema, logger).Scan(ctx)
		if err != nil {
			return err
		}
		return report.Err()
	}
}

func transformModels(cfg *config.AppConfig, logger *zap.SugaredLogger) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		pool, err := storage.NewPool(storage.PoolConfig{
			DSN:    cfg.DSN(),
			Schema: cfg.DBSchema,
			Retry:  retry.Default,
		}, logger)
		if err != nil {
			return err
		}
		defer pool.Dispose()

		return transform.NewRunner(pool.DB(), cfg.DBSchema, logger).Run(ctx)
	}
}
