package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"demand-planning/internal/config"
	"demand-planning/internal/service/analytics"
	generate_excel "demand-planning/internal/service/generate-excel"
	"demand-planning/internal/service/ingest"
	"demand-planning/internal/service/tracker"
	"demand-planning/internal/storage/sqlstore"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg := config.MustConfig()

	log, closeLog := setupLogger(cfg.Env, cfg.ErrorLogPath)
	defer closeLog()

	log.Info("starting demand planning api", slog.String("env", cfg.Env), slog.String("driver", cfg.Storage.Driver))

	storage, err := sqlstore.New(cfg.Storage)
	if err != nil {
		log.Error("failed to open db", slog.Any("err", err))
		os.Exit(1)
	}
	defer storage.Close()

	pipeline := ingest.NewPipeline(log, tracker.Parser{}, storage, cfg.Upload.ParseWorkers)
	engine := analytics.NewEngine(storage)
	reports := generate_excel.NewService(engine)

	srv := &http.Server{
		Addr:         cfg.Address,
		Handler:      routes(*cfg, log, storage, pipeline, engine, reports),
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info("server started", slog.String("address", cfg.Address))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("failed to start server", slog.Any("err", err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", slog.Any("err", err))
	}

	log.Info("server stopped")
}
