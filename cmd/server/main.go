package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/palemoky/contentiq/internal/config"
	"github.com/palemoky/contentiq/internal/logger"
	"github.com/palemoky/contentiq/internal/server"
)

func main() {
	// Initialize logger
	debug := os.Getenv("GIN_MODE") != "release"
	logger.Init(debug)
	defer logger.Sync()

	// Load configuration
	cfg, err := config.Load("config.yaml")
	if err != nil {
		logger.Warn("Failed to load config file, using defaults", zap.Error(err))
		cfg, err = config.Load("")
		if err != nil {
			logger.Fatal("Invalid configuration", zap.Error(err))
		}
	}

	logger.Info("Configuration loaded",
		zap.Int("port", cfg.Server.Port),
		zap.Duration("analysis_delay", cfg.Analysis.Delay))

	// Stop on interrupt
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Run(ctx, cfg, logger.Default()); err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}
}
