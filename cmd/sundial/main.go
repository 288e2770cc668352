package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/saaga0h/sundial/internal/engine"
	"github.com/saaga0h/sundial/pkg/config"
	"github.com/saaga0h/sundial/pkg/display"
)

func main() {
	// Load configuration with hierarchy: defaults → file → env → flags
	cfg := config.NewConfig()
	if path := configPath(); path != "" {
		if err := cfg.LoadFromFile(path); err != nil {
			fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
			os.Exit(1)
		}
	}
	cfg.LoadFromEnv()
	cfg.LoadFromFlags()

	// Validate configuration before touching the display
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}

	// Set up structured logging
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}))
	slog.SetDefault(logger)

	logger.Info("Starting sundial",
		"high_temp", cfg.HighTemp,
		"low_temp", cfg.LowTemp,
		"duration_min", cfg.DurationMin,
		"gamma", cfg.Gamma,
		"latitude", cfg.Latitude,
		"longitude", cfg.Longitude)

	// Set up context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Connect to the compositor; failure here is fatal
	client, err := display.Connect(logger)
	if err != nil {
		logger.Error("Failed to connect to display", "error", err)
		os.Exit(1)
	}

	registry := engine.NewRegistry(client, logger)
	scheduler := engine.NewScheduler(cfg, client, registry, logger)

	// Run the scheduler loop in a goroutine
	schedErr := make(chan error, 1)
	go func() {
		schedErr <- scheduler.Run(ctx)
	}()

	// Wait for shutdown signal or scheduler error
	var runErr error
	select {
	case <-sigChan:
		logger.Info("Shutdown signal received (SIGTERM/SIGINT)")
		cancel()
		client.Close() // unblocks the scheduler's wait
		<-schedErr
	case runErr = <-schedErr:
		if runErr != nil {
			logger.Error("Scheduler failed", "error", runErr)
		}
	}

	registry.Close()
	client.Close()

	logger.Info("Sundial shutdown complete")
	if runErr != nil {
		os.Exit(1)
	}
}

// configPath resolves the config file path from --config or SUNDIAL_CONFIG
// ahead of full flag parsing, so file values stay below env and flag
// overrides. All other flags are left for LoadFromFlags.
func configPath() string {
	fs := pflag.NewFlagSet("sundial", pflag.ContinueOnError)
	fs.ParseErrorsWhitelist.UnknownFlags = true
	fs.SetOutput(io.Discard)
	fs.Usage = func() {}

	path := fs.String("config", "", "Path to a YAML config file")
	_ = fs.Parse(os.Args[1:])

	if *path != "" {
		return *path
	}
	return os.Getenv("SUNDIAL_CONFIG")
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
