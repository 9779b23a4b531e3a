package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/justemzy101/weather-data-pipeline/internal/config"
	"github.com/justemzy101/weather-data-pipeline/internal/logging"
	"github.com/justemzy101/weather-data-pipeline/internal/mockapi"
)

func main() {
	cfg, err := config.LoadMockAPI()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.DevMode)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()

	cities, err := mockapi.LoadCities(cfg.CitiesPath)
	if err != nil {
		logger.Fatalw("failed to load cities", "error", err)
	}

	keys := mockapi.LoadKeys(cfg.KeysPath, logger)
	app := mockapi.NewServer(keys, mockapi.NewGenerator(cities), logger)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			logger.Errorw("server stopped", "error", err)
		}
	}()
	logger.Infow("mock weather API listening", "port", cfg.Port, "cities", len(cities))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Errorw("error during shutdown", "error", err)
	}
}
