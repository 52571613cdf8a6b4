package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"orgdirectory/internal/blob"
	"orgdirectory/internal/infra/persistence/sqlite"
	"orgdirectory/internal/infra/persistence/sqlstore"
	"orgdirectory/pkg/domain"
)

// isolate points every storage setting at a temp dir and returns the path of
// an empty env file.
func isolate(t *testing.T) (dir, envFile string) {
	t.Helper()
	dir = t.TempDir()
	envFile = filepath.Join(dir, "test.env")
	if err := os.WriteFile(envFile, nil, 0o600); err != nil {
		t.Fatalf("write env: %v", err)
	}
	t.Setenv("ORGDIR_STORAGE_DRIVER", "sqlite")
	t.Setenv("ORGDIR_SQLITE_PATH", filepath.Join(dir, "directory.db"))
	t.Setenv("ORGDIR_BLOB_DRIVER", "fs")
	t.Setenv("ORGDIR_BLOB_FS_ROOT", filepath.Join(dir, "blobs"))
	t.Setenv("ORGDIR_METRICS", "none")
	t.Setenv("ORGDIR_LOG_LEVEL", "info")
	t.Setenv("ORGDIR_LOG_FORMAT", "text")
	return dir, envFile
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := newApp(&stdout, &stderr).Run(append([]string{"orgdirectory"}, args...))
	return stderr.String(), err
}

func TestSeedGenerateAndLoad(t *testing.T) {
	dir, env := isolate(t)
	logs, err := run(t, "--env-file", env, "seed", "generate", "--organisations", "20", "--seed", "5")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !strings.Contains(logs, "dataset stored") {
		t.Fatalf("expected store log, got %q", logs)
	}
	if _, err := os.Stat(filepath.Join(dir, "blobs", "datasets", "directory.json.gz")); err != nil {
		t.Fatalf("dataset blob missing: %v", err)
	}
	if _, err := run(t, "--env-file", env, "seed", "generate"); !errors.Is(err, blob.ErrExists) {
		t.Fatalf("expected ErrExists without --overwrite, got %v", err)
	}
	if _, err := run(t, "--env-file", env, "seed", "generate", "--overwrite", "--organisations", "20", "--seed", "5"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	if _, err := run(t, "--env-file", env, "seed", "load"); err != nil {
		t.Fatalf("load: %v", err)
	}

	ctx := context.Background()
	store, err := sqlite.NewStore(ctx, filepath.Join(dir, "directory.db"), sqlstore.PoolOptions{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer func() { _ = store.Close() }()
	err = store.View(ctx, func(sess domain.Session) error {
		rows, err := sess.SearchOrganisations(ctx, domain.Query{})
		if err != nil {
			return err
		}
		if len(rows) != 20 {
			t.Fatalf("expected 20 organisations, got %d", len(rows))
		}
		return nil
	})
	if err != nil {
		t.Fatalf("view: %v", err)
	}
}

func TestSeedLoadMissingKey(t *testing.T) {
	_, env := isolate(t)
	if _, err := run(t, "--env-file", env, "seed", "load", "--key", "absent.json"); !errors.Is(err, blob.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMigrate(t *testing.T) {
	dir, env := isolate(t)
	if _, err := run(t, "--env-file", env, "migrate"); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "directory.db")); err != nil {
		t.Fatalf("database file missing: %v", err)
	}
	if _, err := run(t, "--env-file", env, "--storage", "memory", "migrate"); err == nil {
		t.Fatalf("expected migrate to reject the memory driver")
	}
}

func TestInvalidSettings(t *testing.T) {
	_, env := isolate(t)
	if _, err := run(t, "--env-file", env, "--log-level", "loud", "migrate"); err == nil {
		t.Fatalf("expected invalid log level error")
	}
	if _, err := run(t, "--env-file", env, "--storage", "oracle", "migrate"); err == nil {
		t.Fatalf("expected invalid storage error")
	}
	if _, err := run(t, "--env-file", filepath.Join(t.TempDir(), "missing.env"), "migrate"); err == nil {
		t.Fatalf("expected missing env file error")
	}
}

func TestFlagsOverrideInvalidEnvironment(t *testing.T) {
	_, env := isolate(t)
	t.Setenv("ORGDIR_LOG_LEVEL", "loud")
	t.Setenv("ORGDIR_STORAGE_DRIVER", "oracle")
	if _, err := run(t, "--env-file", env, "migrate"); err == nil {
		t.Fatalf("expected invalid environment to fail without flags")
	}
	if _, err := run(t, "--env-file", env, "--log-level", "debug", "--storage", "sqlite", "migrate"); err != nil {
		t.Fatalf("flags must replace invalid environment values: %v", err)
	}
}

func TestServeShutsDownOnCancel(t *testing.T) {
	_, env := isolate(t)
	ctx, cancel := context.WithCancel(context.Background())
	var stderr bytes.Buffer
	done := make(chan error, 1)
	go func() {
		done <- newApp(&bytes.Buffer{}, &stderr).RunContext(ctx, []string{"orgdirectory", "--env-file", env, "--storage", "memory", "serve", "--addr", "127.0.0.1:0"})
	}()
	time.Sleep(200 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("serve: %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatalf("serve did not stop")
	}
}
