// Package main is the entry point for the launcherprefs-server application.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/CreativeUnicorns/launcherprefs/api"
	"github.com/CreativeUnicorns/launcherprefs/backupfile"
	"github.com/CreativeUnicorns/launcherprefs/internal/config"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := cfg.Logger()
	logger.Info("Launcher settings server starting up...", "storage", cfg.StorageDriver, "cache", cfg.CacheDriver)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	launcher, err := cfg.Open(ctx, logger)
	if err != nil {
		return fmt.Errorf("open settings: %w", err)
	}
	defer func() {
		if err := launcher.Close(); err != nil {
			logger.Error("Failed to close settings backends", "error", err)
		}
	}()

	apiServer, err := api.NewServer(api.Config{
		ListenAddress: cfg.ListenAddr,
		Launcher:      launcher,
		Logger:        logger,
	})
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- apiServer.Start()
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return err
		}
	}
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := apiServer.Stop(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed", "error", err)
	}

	// Settings changed through the API are backed up once on the way out.
	if _, err := backupfile.NewAutoBackup(launcher.Registry, launcher.Backups).Run(shutdownCtx); err != nil {
		logger.Error("Auto-backup on shutdown failed", "error", err)
	}

	logger.Info("Server exited gracefully")
	return nil
}
