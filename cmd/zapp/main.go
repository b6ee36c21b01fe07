package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"zapp/internal/app"
	"zapp/internal/config"
	"zapp/internal/logging"
	"zapp/internal/server"
)

const shutdownTimeout = 10 * time.Second

func main() {
	configPath := flag.String("config", "config.yaml", "path to configuration file")
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logging.Error(ctx, err, "failed to load configuration")
		os.Exit(1)
	}

	logging.Setup(logging.Options{
		Level:      cfg.Logs.Level,
		Format:     cfg.Logs.Format,
		File:       cfg.Logs.File,
		MaxSizeMB:  cfg.Logs.MaxSizeMB,
		MaxBackups: cfg.Logs.MaxBackups,
	})

	manager := app.New(cfg)
	if err := manager.Start(ctx); err != nil {
		logging.Error(ctx, err, "failed to start")
		os.Exit(1)
	}

	srv := server.New(cfg.Server, manager)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logging.Info(ctx, "shutting down", "signal", sig.String())
	case err := <-errCh:
		if err != nil {
			logging.Error(ctx, err, "server failed")
			os.Exit(1)
		}
		return
	}

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := srv.Stop(shutdownCtx); err != nil {
		logging.Error(ctx, err, "shutdown failed")
		os.Exit(1)
	}
}
