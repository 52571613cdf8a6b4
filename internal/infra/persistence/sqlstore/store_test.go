package sqlstore_test

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"orgdirectory/internal/infra/persistence/sqlite"
	"orgdirectory/internal/infra/persistence/sqlstore"
	"orgdirectory/internal/testfixture"
	"orgdirectory/pkg/domain"
)

func TestStoreRollsBackOnCallbackError(t *testing.T) {
	ctx := context.Background()
	store, err := sqlite.NewStore(ctx, filepath.Join(t.TempDir(), "rb.db"), sqlstore.PoolOptions{MaxOpenConns: 1})
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	defer func() { _ = store.Close() }()
	if err := store.Import(ctx, testfixture.Directory()); err != nil {
		t.Fatalf("import: %v", err)
	}
	sentinel := errors.New("stop")
	for i := 0; i < 3; i++ {
		// a leaked transaction would hold the only connection and block the next view
		if err := store.View(ctx, func(domain.Session) error { return sentinel }); !errors.Is(err, sentinel) {
			t.Fatalf("expected sentinel, got %v", err)
		}
	}
	if err := store.View(ctx, func(domain.Session) error { return nil }); err != nil {
		t.Fatalf("view after rollbacks: %v", err)
	}
}

func TestNewWrapsExistingDatabase(t *testing.T) {
	ctx := context.Background()
	inner, err := sqlite.NewStore(ctx, filepath.Join(t.TempDir(), "w.db"), sqlstore.PoolOptions{})
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	defer func() { _ = inner.Close() }()
	var db *sql.DB = inner.DB()
	wrapped := sqlstore.New(db, sqlstore.SQLite)
	if wrapped.Dialect().Name != "sqlite" {
		t.Fatalf("unexpected dialect %s", wrapped.Dialect().Name)
	}
	if err := wrapped.Import(ctx, testfixture.Directory()); err != nil {
		t.Fatalf("import: %v", err)
	}
	testfixture.RunSessionConformance(t, wrapped)
}
