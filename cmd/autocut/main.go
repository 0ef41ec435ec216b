package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/podops/autocut/internal/config"
	"github.com/podops/autocut/internal/logger"
	"github.com/podops/autocut/internal/session"
	"github.com/podops/autocut/internal/watcher"
)

func main() {
	ctx := context.Background()

	configPath := flag.String("config", "config.yaml", "path to configuration file")
	bundlePath := flag.String("bundle", "", "process a single session bundle and exit")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	log.Info(ctx, "========================================")
	log.Info(ctx, "Multi-Camera Auto-Edit Engine")
	log.Info(ctx, "========================================")
	log.Info(ctx, "Cameras: %d, default wide: %s", len(cfg.Cameras), cfg.Engine.DefaultWideCamera)
	log.Info(ctx, "Guard time: %.1fs, hysteresis: %.1fs, min shot: %.1fs",
		cfg.Engine.GuardTime, cfg.Engine.HysteresisWindow, cfg.Engine.MinShotLength)
	log.Info(ctx, "Configuration loaded successfully")

	// Initialize the session processor
	proc := session.New(cfg, log)

	// One-shot mode: process a single bundle and exit
	if *bundlePath != "" {
		if err := proc.Process(ctx, *bundlePath); err != nil {
			log.Error(ctx, "Session failed: %v", err)
			os.Exit(1)
		}
		return
	}

	// Watch mode: verify required directories exist
	if err := ensureDirectories(cfg); err != nil {
		log.Error(ctx, "Failed to create directories: %v", err)
		os.Exit(1)
	}

	// Create watcher with the session processor as handler
	w, err := watcher.New(cfg.Paths.Inbox, proc.Process, log, cfg.Performance.MaxConcurrent)
	if err != nil {
		log.Error(ctx, "Failed to create watcher: %v", err)
		os.Exit(1)
	}
	defer w.Stop()

	// Create context with cancellation
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Setup graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Start watcher in goroutine
	errChan := make(chan error, 1)
	go func() {
		if err := w.Start(ctx); err != nil && err != context.Canceled {
			errChan <- err
		}
	}()

	log.Info(ctx, "========================================")
	log.Info(ctx, "Auto-edit engine is ready!")
	log.Info(ctx, "Monitoring: %s", cfg.Paths.Inbox)
	log.Info(ctx, "Output: %s", cfg.Paths.Output)
	log.Info(ctx, "Concurrent sessions: %d", cfg.Performance.MaxConcurrent)
	log.Info(ctx, "Press Ctrl+C to stop")
	log.Info(ctx, "========================================")

	// Wait for shutdown signal or error
	select {
	case <-sigChan:
		log.Info(ctx, "Shutdown signal received")
	case err := <-errChan:
		log.Error(ctx, "Watcher error: %v", err)
	}

	// Graceful shutdown
	log.Info(ctx, "Shutting down gracefully...")
	cancel()

	log.Info(ctx, "Auto-edit engine stopped")
}

// ensureDirectories creates required directories if they don't exist
func ensureDirectories(cfg *config.Config) error {
	dirs := []string{
		cfg.Paths.Inbox,
		cfg.Paths.Output,
		cfg.Paths.Archived,
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}

	return nil
}
