package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"

	"kharcha/internal/cli"
	apphttp "kharcha/internal/http"
	applog "kharcha/internal/log"
	"kharcha/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	cfg := cli.LoadAndValidateConfig(logger)

	backend := cli.InitBackend(logger, cfg)
	clock := cli.InitClock(logger, cfg.Timezone)

	startCtx, cancelStart := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	publisher := cli.InitPublisher(startCtx, logger, cfg)
	cancelStart()

	svc := services.NewExpenseService(backend, publisher, clock)

	httpLogger := applog.New(applog.Config{
		Component: applog.ComponentHTTP,
		Handler:   logger.Handler(),
	})
	srv := apphttp.NewServer(net.JoinHostPort("", cfg.Port), svc, clock, apphttp.Options{
		RateLimitRPM:   cfg.RateLimitRPM,
		Logger:         httpLogger,
		TrustedProxies: cfg.TrustedProxies,
	})
	srv.IdleTimeout = cfg.ShutdownTimeout * 2
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, done := cli.GracefulShutdown(logger, cfg.ShutdownTimeout, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		if err := svc.Close(); err != nil {
			logger.Error("Failed to close expense service", "error", err)
		}
	})

	logger.Info("Starting kharcha server",
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		"timezone", cfg.Timezone,
		"events", cfg.EventsEnabled())
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
