package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/example/trip-refiner/internal/api"
	"github.com/example/trip-refiner/internal/app"
	"github.com/example/trip-refiner/internal/config"
	"github.com/example/trip-refiner/internal/logger"
	"github.com/example/trip-refiner/internal/metrics"
)

func main() {
	cfg, err := config.GetConfig()
	if err != nil {
		logger.Fatal("Failed to load config", "error", err)
	}
	if err := logger.Init(logger.Config{Level: cfg.Log.Level, Dir: cfg.Log.Dir, Stderr: cfg.Log.Stderr}); err != nil {
		logger.Fatal("Failed to initialize logger", "error", err)
	}

	ctx := context.Background()
	a, err := app.New(ctx, cfg, metrics.Default())
	if err != nil {
		logger.Fatal("Failed to start planning session", "error", err)
	}
	defer a.Close()

	srv := api.NewServer(a.Session, a.Hub, a.Metrics, prometheus.DefaultGatherer)
	httpServer := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: srv.Router(cfg.Server.Mode),
	}
	// open event streams would otherwise hold Shutdown until its deadline
	httpServer.RegisterOnShutdown(a.Hub.Close)

	go func() {
		logger.Info("Server listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", "error", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", "error", err)
	}
}
