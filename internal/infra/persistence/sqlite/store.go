// Package sqlite opens the directory store on an embedded SQLite file using
// the pure Go modernc driver.
package sqlite

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"orgdirectory/internal/infra/persistence/sqlstore"

	msqlite "modernc.org/sqlite"
)

const (
	driverName  = "sqlite"
	defaultPath = "orgdirectory.db"
	memoryPath  = ":memory:"
)

func init() {
	msqlite.MustRegisterDeterministicScalarFunction(sqlstore.LowerFunc, 1, lower)
}

// lower folds case with Unicode rules; SQLite's own lower() is ASCII only.
func lower(_ *msqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case nil:
		return nil, nil
	case string:
		return strings.ToLower(v), nil
	case []byte:
		return strings.ToLower(string(v)), nil
	default:
		return nil, fmt.Errorf("%s: unsupported argument %T", sqlstore.LowerFunc, v)
	}
}

// Store is a SQLite-backed directory read store.
type Store struct {
	*sqlstore.Store
	path string
}

// NewStore opens (creating when needed) the database at path and applies the
// schema. An empty path uses orgdirectory.db in the working directory.
func NewStore(ctx context.Context, path string, pool sqlstore.PoolOptions) (*Store, error) {
	if path == "" {
		path = defaultPath
	}
	if path != memoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create dirs: %w", err)
		}
	}
	db, err := sql.Open(driverName, dsn(path))
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	pool.Configure(db)
	if path == memoryPath {
		// every connection would otherwise see its own empty database
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if err := sqlstore.ApplySchema(ctx, db, sqlstore.SQLite); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{Store: sqlstore.New(db, sqlstore.SQLite), path: path}, nil
}

// Path returns the database file location.
func (s *Store) Path() string { return s.path }

func dsn(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}
