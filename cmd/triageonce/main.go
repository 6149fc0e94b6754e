// Command triageonce runs a single manually dispatched triage pass and exits.
// It shares configuration with the stalekeeper daemon, making it suitable for
// cron jobs or one-off runs from an operator's shell.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	githubadapter "github.com/ericfisherdev/stalekeeper/internal/adapter/driven/github"
	sqliteadapter "github.com/ericfisherdev/stalekeeper/internal/adapter/driven/sqlite"
	"github.com/ericfisherdev/stalekeeper/internal/application"
	"github.com/ericfisherdev/stalekeeper/internal/config"
	"github.com/ericfisherdev/stalekeeper/internal/domain/model"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	policy, err := config.LoadPolicy(cfg.PolicyPath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := sqliteadapter.NewDB(cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()

	if err := sqliteadapter.RunMigrations(db.Writer); err != nil {
		return err
	}

	runStore := sqliteadapter.NewRunRepo(db)
	actionStore := sqliteadapter.NewActionRepo(db)
	releaseStore := sqliteadapter.NewReleaseRepo(db)

	ghClient := githubadapter.NewClient(cfg.GitHubToken)

	staleSvc := application.NewStaleService(
		ghClient,
		runStore,
		actionStore,
		cfg.RepoFullName,
		policy.Stale,
	)

	triageRun, err := staleSvc.Run(ctx, model.TriggerManual)
	if err != nil {
		return err
	}

	// A dispatched run also checks for unprocessed releases, mirroring the
	// daemon's release watcher.
	if policy.ReleaseClose.Enabled() {
		releaseSvc := application.NewReleaseService(
			ghClient,
			runStore,
			actionStore,
			releaseStore,
			cfg.RepoFullName,
			policy.ReleaseClose,
			cfg.ReleasePollInterval,
		)
		if err := releaseSvc.Check(ctx); err != nil {
			return err
		}
	}

	slog.Info("triage complete",
		"run_id", triageRun.ID,
		"marked", triageRun.Marked,
		"unmarked", triageRun.Unmarked,
		"closed", triageRun.Closed,
	)
	return nil
}
