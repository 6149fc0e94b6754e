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

	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	prom "github.com/prometheus/client_golang/prometheus"

	githubadapter "github.com/ericfisherdev/stalekeeper/internal/adapter/driven/github"
	sqliteadapter "github.com/ericfisherdev/stalekeeper/internal/adapter/driven/sqlite"
	httphandler "github.com/ericfisherdev/stalekeeper/internal/adapter/driving/http"
	"github.com/ericfisherdev/stalekeeper/internal/application"
	"github.com/ericfisherdev/stalekeeper/internal/config"
	"github.com/ericfisherdev/stalekeeper/internal/metrics"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration (fail fast on missing required env vars).
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	policy, err := config.LoadPolicy(cfg.PolicyPath)
	if err != nil {
		return err
	}
	slog.Info("config loaded",
		"repo", cfg.RepoFullName,
		"policy_path", cfg.PolicyPath,
		"listen_addr", cfg.ListenAddr,
		"db_path", cfg.DBPath,
		"schedule", policy.Stale.Schedule,
		"release_close_enabled", policy.ReleaseClose.Enabled(),
	)

	// 2. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Open database (dual reader/writer with WAL mode).
	db, err := sqliteadapter.NewDB(cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()
	slog.Info("database opened", "path", cfg.DBPath)

	// 4. Run migrations on writer connection.
	if err := sqliteadapter.RunMigrations(db.Writer); err != nil {
		return err
	}
	slog.Info("migrations complete")

	// 5. Wire adapters.
	runStore := sqliteadapter.NewRunRepo(db)
	actionStore := sqliteadapter.NewActionRepo(db)
	releaseStore := sqliteadapter.NewReleaseRepo(db)

	ghClient := githubadapter.NewClient(cfg.GitHubToken)

	// 6. Metrics registry and recorder.
	registry := prom.NewRegistry()
	recorder := metrics.NewPrometheusRecorder(registry)

	// 7. Create services.
	staleSvc := application.NewStaleService(
		ghClient,
		runStore,
		actionStore,
		cfg.RepoFullName,
		policy.Stale,
	).WithRecorder(recorder)

	releaseSvc := application.NewReleaseService(
		ghClient,
		runStore,
		actionStore,
		releaseStore,
		cfg.RepoFullName,
		policy.ReleaseClose,
		cfg.ReleasePollInterval,
	).WithRecorder(recorder)

	go releaseSvc.Watch(ctx)

	// 8. Schedule the stale pass.
	scheduler, err := application.NewScheduler()
	if err != nil {
		return err
	}
	jobID, err := scheduler.ScheduleStalePass(policy.Stale.Schedule, staleSvc)
	if err != nil {
		return err
	}
	scheduler.Start()
	slog.Info("stale pass scheduled", "cron", policy.Stale.Schedule, "job_id", jobID)

	// 9. Create HTTP handler and start the API server.
	apiHandler := httphandler.NewHandler(runStore, actionStore, staleSvc, releaseSvc, slog.Default())
	handler := httphandler.NewServeMux(apiHandler, metrics.HTTPHandler(registry), slog.Default())

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.Info("http server starting", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server error", "error", err)
		}
	}()

	slog.Info("stalekeeper started",
		"repo", cfg.RepoFullName,
		"listen_addr", cfg.ListenAddr,
	)

	// 10. Wait for shutdown signal.
	<-ctx.Done()
	slog.Info("shutting down")

	if err := scheduler.Stop(); err != nil {
		slog.Error("scheduler shutdown error", "error", err)
	}

	// 11. Graceful shutdown with 10s timeout for HTTP server drain.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
	return nil
}
