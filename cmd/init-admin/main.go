package main

import (
	"context"
	"log"

	"github.com/justemzy101/weather-data-pipeline/internal/bootstrap"
	"github.com/justemzy101/weather-data-pipeline/internal/config"
	"github.com/justemzy101/weather-data-pipeline/internal/logging"
	"github.com/justemzy101/weather-data-pipeline/internal/retry"
	"github.com/justemzy101/weather-data-pipeline/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	admin := config.LoadAdmin()

	logger, err := logging.New(cfg.LogLevel, cfg.DevMode)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()

	pool, err := storage.NewPool(storage.PoolConfig{
		DSN:    cfg.DSN(),
		Schema: cfg.DBSchema,
		Retry:  retry.Default,
	}, logger)
	if err != nil {
		logger.Fatalw("failed to open database", "error", err)
	}
	defer pool.Dispose()

	user := bootstrap.User{
		Username:  admin.Username,
		Email:     admin.Email,
		FirstName: admin.FirstName,
		LastName:  admin.LastName,
		Password:  admin.Password,
	}

	// A failed bootstrap must not block the rest of the stack from
	// starting, so give-up is logged but still exits zero.
	if err := bootstrap.EnsureAdmin(context.Background(), pool.DB(), user, bootstrap.Options{}, logger); err != nil {
		logger.Warnw("admin user setup gave up", "error", err)
	}
}
