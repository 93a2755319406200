package commands

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jakechorley/club-duties/internal/config"
	"github.com/jakechorley/club-duties/pkg/db"
	"github.com/jakechorley/club-duties/pkg/db/filestore"
	"github.com/jakechorley/club-duties/pkg/db/sqlitestore"
	"github.com/jakechorley/club-duties/pkg/postgres"
)

// OpenRepository connects the configured storage backend
func OpenRepository(ctx context.Context, cfg config.StorageConfig, logger *zap.Logger) (*db.Repository, error) {
	backend, err := openBackend(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	return db.NewRepository(backend, logger, db.WithKey(cfg.Key)), nil
}

func openBackend(ctx context.Context, cfg config.StorageConfig, logger *zap.Logger) (db.Backend, error) {
	switch cfg.Backend {
	case config.BackendFile:
		logger.Debug("Using file storage", zap.String("dir", cfg.DataDir))
		return filestore.New(filestore.Config{Dir: cfg.DataDir}, logger)

	case config.BackendSQLite:
		logger.Debug("Using sqlite storage", zap.String("path", cfg.SQLitePath))
		return sqlitestore.New(cfg.SQLitePath, cfg.PollInterval, logger)

	case config.BackendPostgres:
		logger.Debug("Using postgres storage")
		pg, err := postgres.NewDB(ctx, cfg.PostgresDSN, logger)
		if err != nil {
			return nil, err
		}
		if err := pg.RunMigrations(ctx); err != nil {
			pg.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		return pg, nil
	}
	return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
}
