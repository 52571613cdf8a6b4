package core

import (
	"context"
	"fmt"

	"orgdirectory/internal/infra/persistence/memory"
	"orgdirectory/internal/infra/persistence/postgres"
	"orgdirectory/internal/infra/persistence/sqlite"
	"orgdirectory/internal/infra/persistence/sqlstore"
	"orgdirectory/pkg/domain"
)

// StorageDriver identifies a concrete read store implementation.
type StorageDriver string

const (
	StorageMemory   StorageDriver = "memory"   // immutable in-process dataset (tests / demos)
	StorageSQLite   StorageDriver = "sqlite"   // embedded sqlite file
	StoragePostgres StorageDriver = "postgres" // PostgreSQL server
)

// StorageConfig selects and parameterises a backend.
type StorageConfig struct {
	Driver      StorageDriver
	SQLitePath  string
	PostgresDSN string
	Pool        sqlstore.PoolOptions
	// ApplySchema creates missing tables on SQL backends.
	ApplySchema bool
	// Dataset populates the memory backend. Nil yields an empty directory.
	Dataset *domain.Dataset
}

// Importer replaces the contents of a SQL backend.
type Importer interface {
	Import(ctx context.Context, ds domain.Dataset) error
}

// OpenReadStore opens the configured backend. An empty driver selects sqlite.
func OpenReadStore(ctx context.Context, cfg StorageConfig) (domain.ReadStore, error) {
	driver := cfg.Driver
	if driver == "" {
		driver = StorageSQLite
	}
	switch driver {
	case StorageMemory:
		ds := domain.Dataset{}
		if cfg.Dataset != nil {
			ds = *cfg.Dataset
		}
		store, err := memory.NewStore(ds)
		if err != nil {
			return nil, err
		}
		return store, nil
	case StorageSQLite:
		// sqlite always ensures its schema; the statements are idempotent
		store, err := sqlite.NewStore(ctx, cfg.SQLitePath, cfg.Pool)
		if err != nil {
			return nil, err
		}
		return store, nil
	case StoragePostgres:
		store, err := postgres.NewStore(ctx, cfg.PostgresDSN, postgres.Options{Pool: cfg.Pool, ApplySchema: cfg.ApplySchema})
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %s", driver)
	}
}
