package client

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/yama/internal/client/config"
	"github.com/dmitrijs2005/yama/internal/client/migrations"
	"github.com/dmitrijs2005/yama/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/yama/internal/filex"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}

	return goose.UpContext(ctx, db, ".")
}

func OpenSQLite(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// InitStorage opens the metadata repository for the configured backend.
func InitStorage(ctx context.Context, cfg *config.Config) (metadata.Repository, error) {
	path := cfg.StoragePath()
	if err := filex.EnsureParentDir(path); err != nil {
		return nil, err
	}

	switch cfg.StorageBackend {
	case config.StorageSQLite:
		db, err := OpenSQLite(ctx, path)
		if err != nil {
			return nil, err
		}
		return metadata.NewSQLiteRepository(db), nil
	case config.StorageBolt:
		repo, err := metadata.NewBoltRepository(path)
		if err != nil {
			return nil, err
		}
		return repo, nil
	case config.StorageFile:
		return metadata.NewFileRepository(path), nil
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrUnknownStorageKind, cfg.StorageBackend)
	}
}
