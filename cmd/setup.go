package cmd

import (
	"context"
	"fmt"

	"bulk-manager/core/config"
	"bulk-manager/core/database"
	"bulk-manager/core/logger"
	"bulk-manager/core/reconcile"
	"bulk-manager/core/remote"
	"bulk-manager/core/storage"
	"bulk-manager/feature/migration"

	"go.uber.org/zap"
)

// env is the wiring shared by the server and the CLI commands.
type env struct {
	cfg *config.Config
	log *zap.Logger
	// remote is nil when setup was asked not to connect it.
	remote *remote.Client
	runner *reconcile.Runner
	// migrations is nil when the datastore is unreachable.
	migrations *migration.Repository
}

// setup loads configuration and connects every dependency. The datastore and the report
// archive are optional; failing to reach them is logged, not fatal.
func setup(ctx context.Context, withRemote bool) (*env, error) {
	cfg, err := config.LoadConfig(configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	var client *remote.Client
	if withRemote {
		if cfg.Remote.FetchConcurrency <= 0 {
			cfg.Remote.FetchConcurrency = cfg.Run.FetchConcurrency
		}
		client, err = remote.New(cfg.Remote, l)
		if err != nil {
			return nil, fmt.Errorf("failed to create remote client: %w", err)
		}
	}

	var archive *reconcile.Archive
	if cfg.Storage.Enabled {
		store, err := storage.NewClient(cfg.Storage)
		if err != nil {
			return nil, fmt.Errorf("failed to create storage client: %w", err)
		}
		if err := storage.EnsureBucket(ctx, store, cfg.Storage.Bucket, cfg.Storage.Region); err != nil {
			l.Warn("Report archive unavailable", zap.Error(err))
		} else {
			archive = &reconcile.Archive{Client: store, Bucket: cfg.Storage.Bucket}
		}
	}

	var repo *migration.Repository
	if db, err := database.Connect(cfg.Database); err != nil {
		l.Warn("Migration log datastore unavailable", zap.Error(err))
	} else {
		repo = migration.NewRepository(db)
		if err := repo.Migrate(); err != nil {
			l.Warn("Migration log schema check failed", zap.Error(err))
			repo = nil
		}
	}

	runner := reconcile.NewRunner(cfg.Run, nil, archive, l)
	return &env{cfg: cfg, log: l, remote: client, runner: runner, migrations: repo}, nil
}
