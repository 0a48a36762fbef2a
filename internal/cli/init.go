// Package cli provides common initialization shared by cmd/kharcha and
// cmd/kharcha-cli.
package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"kharcha/internal/amqp"
	"kharcha/internal/config"
	"kharcha/internal/core"
	applog "kharcha/internal/log"
	"kharcha/internal/ports"
	"kharcha/internal/services"
	"kharcha/internal/storage"
	"kharcha/internal/storage/memory"
)

// SetupLogger initializes structured logging at the named level and sets
// it as the default logger. Unknown levels fall back to info.
func SetupLogger(level string) *slog.Logger {
	lvl, err := applog.ParseLevel(level)
	logger := applog.NewText(os.Stdout, lvl, applog.ComponentApp)
	applog.SetDefault(logger)
	if err != nil {
		logger.Warn("Falling back to info log level", "error", err)
	}
	return logger.Logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it.
// Returns the config or exits the process on validation failure.
func LoadAndValidateConfig(logger *slog.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	return cfg
}

// OpenBackend returns the storage backend named by cfg.DataBackend.
func OpenBackend(cfg *config.Config) (ports.Backend, error) {
	if cfg.DataBackend == "memory" {
		return memory.New(), nil
	}
	return storage.NewSQLiteRepository(cfg.SQLiteDBPath)
}

// InitBackend opens the configured backend or exits the process on failure.
func InitBackend(logger *slog.Logger, cfg *config.Config) ports.Backend {
	backend, err := OpenBackend(cfg)
	if err != nil {
		logger.Error("Failed to initialize storage backend", "error", err, "backend", cfg.DataBackend, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	logger.Info("Storage backend ready", "backend", cfg.DataBackend)
	return backend
}

// InitPublisher connects the change-event publisher when AMQP is
// configured. A broker that cannot be reached disables events instead of
// stopping the process.
func InitPublisher(ctx context.Context, logger *slog.Logger, cfg *config.Config) services.EventPublisher {
	if !cfg.EventsEnabled() {
		logger.Info("AMQP_URL not set, change events disabled")
		return nil
	}
	client, err := amqp.NewClient(ctx, cfg.AMQPURL, cfg.AMQPExchange)
	if err != nil {
		logger.Warn("AMQP unavailable, change events disabled", "error", err)
		return nil
	}
	logger.Info("Publishing change events", "exchange", cfg.AMQPExchange)
	return client
}

// InitClock loads the configured zone or exits the process.
func InitClock(logger *slog.Logger, zone string) *core.ZoneClock {
	clock, err := core.NewZoneClock(zone)
	if err != nil {
		logger.Error("Failed to load timezone", "error", err, "timezone", zone)
		os.Exit(1)
	}
	return clock
}

// GracefulShutdown sets up signal handling for graceful shutdown.
// Returns a context that will be cancelled on shutdown signals,
// and a channel that signals when shutdown is complete.
func GracefulShutdown(logger *slog.Logger, timeout time.Duration, cleanup func(ctx context.Context)) (context.Context, <-chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
		defer shutdownCancel()

		cancel()

		if cleanup != nil {
			cleanup(shutdownCtx)
		}

		if shutdownCtx.Err() != nil {
			logger.Warn("Shutdown timeout reached")
		} else {
			logger.Info("Shutdown complete")
		}
		close(done)
	}()

	return ctx, done
}

// WaitForShutdown blocks until the context is cancelled.
func WaitForShutdown(ctx context.Context, done <-chan struct{}) {
	<-ctx.Done()
	<-done
}
