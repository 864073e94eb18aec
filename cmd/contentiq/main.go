package main

import (
	"os"

	"go.uber.org/zap"

	"github.com/palemoky/contentiq/internal/logger"
)

func main() {
	logger.Init(os.Getenv("GIN_MODE") != "release")

	if err := newRootCmd().Execute(); err != nil {
		logger.Error("Command execution failed", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
	logger.Sync()
}
