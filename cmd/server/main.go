package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vytor/wordflow/internal/api"
	"github.com/vytor/wordflow/internal/app"
	"github.com/vytor/wordflow/internal/config"
	"github.com/vytor/wordflow/internal/logger"
)

func main() {
	cfg := config.Load()

	log := logger.New(
		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
		logger.WithColors(true),
	)
	logger.SetDefault(log)

	log.Info("WordFlow server starting")
	if err := cfg.Validate(); err != nil {
		log.Error("%v", err)
		os.Exit(1)
	}
	log.Debug("addr=%s", cfg.Addr)
	log.Debug("db_path=%s", cfg.DBPath)
	log.Debug("timezone=%s", cfg.Timezone)
	log.Debug("session_max_solo_repeats=%d", cfg.SessionMaxSoloRepeats)
	log.Debug("session_ttl=%s", cfg.SessionTTL)
	log.Debug("stats_worker_count=%d", cfg.StatsWorkerCount)
	log.Debug("stats_queue_size=%d", cfg.StatsQueueSize)

	a, err := app.New(cfg)
	if err != nil {
		log.Error("failed to initialize: %v", err)
		os.Exit(1)
	}

	srv, err := api.NewServer(a.Reviews, a.Sessions, a.Stats, a.DB)
	if err != nil {
		log.Error("failed to build HTTP server: %v", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	a.Start(ctx)

	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      srv.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("HTTP server listening on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error: %v", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	sig := <-stop

	log.Info("received signal %v, initiating graceful shutdown", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	log.Debug("shutting down HTTP server")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error: %v", err)
	}

	// Pending streak updates are drained before the database closes.
	log.Debug("stopping stats pool")
	if err := a.Close(); err != nil {
		log.Error("failed to close database: %v", err)
	}
	cancel()

	log.Info("WordFlow server stopped")
}
