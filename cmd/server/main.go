package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/aagoldberg/far-mca-sub002/internal/app"
	"github.com/aagoldberg/far-mca-sub002/internal/config"
	"github.com/aagoldberg/far-mca-sub002/internal/logging"
	"github.com/aagoldberg/far-mca-sub002/internal/server"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Logging)

	application, err := app.Build(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to wire scoring engine", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := application.Close(context.Background()); err != nil {
			logger.Warn("closing resources failed", "error", err)
		}
	}()

	if purged, err := application.PurgeExpired(ctx); err != nil {
		logger.Warn("cache purge failed", "error", err)
	} else if purged > 0 {
		logger.Info("purged expired cache entries", "count", purged)
	}

	if application.Repository != nil {
		if err := application.Repository.EnsureSchema(ctx); err != nil {
			logger.Warn("ensuring graph schema failed", "error", err)
		}
	}

	health := server.Checks{}
	for name, probe := range application.Probes() {
		health[name] = server.ProbeFunc(probe)
	}

	router := server.NewRouter(logger, server.RouterDependencies{
		Health:           health,
		API:              server.NewAPIHandlers(logger, application.Engine),
		AllowedOrigins:   cfg.HTTP.AllowedOrigins(),
		AllowCredentials: true,
	})

	srv := server.New(logger, cfg.HTTP, router)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("received shutdown signal", "signal", sig.String())
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("server stopped unexpectedly", "error", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}
