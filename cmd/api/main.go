// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command api is the entry point for the comic reader HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables (and an optional .env).
//  3. Open the progress & settings store (migrations run for postgres).
//  4. Open the library source (local folder or Google Drive).
//  5. Wire domain services and HTTP handlers.
//  6. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
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

	"github.com/joho/godotenv"

	"github.com/taibuivan/comicreader/internal/api"
	"github.com/taibuivan/comicreader/internal/core/archive"
	"github.com/taibuivan/comicreader/internal/core/library"
	"github.com/taibuivan/comicreader/internal/core/progress"
	"github.com/taibuivan/comicreader/internal/core/reader"
	"github.com/taibuivan/comicreader/internal/platform/blob"
	"github.com/taibuivan/comicreader/internal/platform/config"
	"github.com/taibuivan/comicreader/internal/platform/constants"
	"github.com/taibuivan/comicreader/internal/platform/drive"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	log := newLogger(slog.LevelInfo)
	slog.SetDefault(log)

	log.Info("service_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	// A missing .env is normal outside local development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn("dotenv_load_failed", slog.Any("error", err))
	}

	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		log = newLogger(slog.LevelDebug)
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.String("store", cfg.StoreDriver),
		slog.String("library", cfg.LibrarySource),
	)

	// Root context for startup. Use a 30s deadline so misconfiguration is
	// caught quickly rather than hanging indefinitely.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// ── 3. Progress Store ─────────────────────────────────────────────────
	store, err := progress.Open(startupCtx, progress.Options{
		Driver:        cfg.StoreDriver,
		SQLitePath:    cfg.SQLitePath,
		DatabaseURL:   cfg.DatabaseURL,
		MigrationPath: cfg.MigrationPath,
		RedisURL:      cfg.RedisURL,
	}, log)
	must(log, err, "open progress store")
	defer func() {
		log.Info("closing progress store")
		if cerr := store.Close(); cerr != nil {
			log.Error("store close error", slog.Any("error", cerr))
		}
	}()

	// ── 4. Library Source ─────────────────────────────────────────────────
	source, err := library.OpenSource(startupCtx, library.SourceOptions{
		Kind:        cfg.LibrarySource,
		Dir:         cfg.LibraryDir,
		DriveRootID: cfg.DriveRootFolderID,
		DriveCredentials: drive.Credentials{
			APIKey:          cfg.DriveAPIKey,
			AccessToken:     cfg.DriveAccessToken,
			CredentialsFile: cfg.DriveCredentialFile,
		},
	}, log)
	must(log, err, "open library source")

	// ── 5. Domain Wiring ──────────────────────────────────────────────────
	registry := blob.NewRegistry()
	catalog := library.NewCatalog(source, store, log)
	readerService := reader.NewService(
		catalog,
		archive.NewExtractor(registry, log, cfg.MaxEntryBytes),
		store,
		registry,
		reader.Options{PrefetchWindow: cfg.PrefetchWindow},
		log,
	)

	liveness, readiness := api.NewHealthHandlers([]api.Check{
		{Name: cfg.StoreDriver, Probe: store.Ping},
	}, log)

	serverCtx, serverCancel := context.WithCancel(context.Background())
	defer serverCancel()

	server := api.NewServer(serverCtx, cfg, log, api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Library:   library.NewHandler(catalog),
		Progress:  progress.NewHandler(progress.NewService(store, log)),
		Reader:    reader.NewHandler(readerService),
	})

	// ── 6. Graceful Shutdown ──────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case sig := <-quit:
		log.Info("shutdown_signal_received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server_startup_error", slog.Any("error", err))
	}

	// Give in-flight requests enough time to complete.
	shutdownTimeout := constants.ShutdownTimeout
	log.Info("shutting_down_server", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown_error", slog.Any("error", err))
	}

	// Open sessions still hold page handles and may have progress in flight.
	closeCtx, closeCancel := context.WithTimeout(context.Background(), constants.ProgressWriteTimeout)
	defer closeCancel()
	if err := readerService.CloseAll(closeCtx); err != nil {
		log.Error("session_flush_error", slog.Any("error", err))
	}

	log.Info("server_stopped_cleanly")
}

// newLogger builds the JSON logger every entry of which carries the app name.
func newLogger(level slog.Level) *slog.Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	return slog.New(handler).With(slog.String(constants.FieldApp, constants.AppName))
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is limited to startup wiring. After startup, all errors are returned and
// handled explicitly.
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup_failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
