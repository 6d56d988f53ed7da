package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/dane-04-code/Fusefun/internal/app"
	"github.com/dane-04-code/Fusefun/internal/config"
	"github.com/dane-04-code/Fusefun/internal/utils/logger"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to the config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		zap.NewExample().Fatal("Failed to load config", zap.Error(err))
	}

	log, err := logger.New(&logger.Config{
		LogFile:     cfg.LogFile,
		MaxSize:     100,
		MaxAge:      7,
		MaxBackups:  3,
		Compress:    true,
		Development: cfg.DebugLogging,
	})
	if err != nil {
		zap.NewExample().Fatal("Failed to build logger", zap.Error(err))
	}
	defer func() { _ = log.Sync() }()

	runLog := log.WithOperation("launchpad_run")
	runLog.Info("Starting launchpad engine")

	runner, err := app.NewRunner(cfg, runLog)
	if err != nil {
		log.LogError("Failed to initialize", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := runner.Run(ctx); err != nil {
		log.LogError("Launchpad stopped with error", err)
		os.Exit(1)
	}
	runLog.Info("Launchpad shut down cleanly")
}
