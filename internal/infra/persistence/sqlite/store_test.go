package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"orgdirectory/internal/infra/persistence/sqlstore"
	"orgdirectory/internal/testfixture"
	"orgdirectory/pkg/domain"
)

func newLoadedStore(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "dir", "directory.db")
	store, err := NewStore(ctx, path, sqlstore.PoolOptions{MaxOpenConns: 4})
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	if err := store.Import(ctx, testfixture.Directory()); err != nil {
		t.Fatalf("import: %v", err)
	}
	return store
}

func TestSQLiteStoreConformance(t *testing.T) {
	testfixture.RunSessionConformance(t, newLoadedStore(t))
}

func TestSQLiteStorePath(t *testing.T) {
	store := newLoadedStore(t)
	if filepath.Base(store.Path()) != "directory.db" {
		t.Fatalf("unexpected path %s", store.Path())
	}
}

func TestSQLiteImportReplacesContents(t *testing.T) {
	ctx := context.Background()
	store := newLoadedStore(t)
	if err := store.Import(ctx, testfixture.Directory()); err != nil {
		t.Fatalf("second import: %v", err)
	}
	err := store.View(ctx, func(sess domain.Session) error {
		rows, err := sess.SearchOrganisations(ctx, domain.Query{})
		if err != nil {
			return err
		}
		if len(rows) != 5 {
			t.Fatalf("expected 5 organisations after reimport, got %d", len(rows))
		}
		return nil
	})
	if err != nil {
		t.Fatalf("view: %v", err)
	}
}

func TestSQLiteImportRejectsInvalidDataset(t *testing.T) {
	ctx := context.Background()
	store := newLoadedStore(t)
	ds := testfixture.Directory()
	ds.Phones = append(ds.Phones, domain.Phone{ID: 99, Phone: "1", OrganisationID: testfixture.MissingID})
	err := store.Import(ctx, ds)
	var nf domain.ErrNotFound
	if !errors.As(err, &nf) || nf.Entity != domain.EntityOrganisation {
		t.Fatalf("expected organisation not found, got %v", err)
	}
	// the previous contents survive a rejected import
	err = store.View(ctx, func(sess domain.Session) error {
		phones, err := sess.ListPhones(ctx, testfixture.OrgHornsAndHooves)
		if err != nil {
			return err
		}
		if len(phones) != 2 {
			t.Fatalf("expected original phones, got %v", phones)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("view: %v", err)
	}
}

func TestSQLiteViewPropagatesCallbackError(t *testing.T) {
	store := newLoadedStore(t)
	sentinel := errors.New("boom")
	err := store.View(context.Background(), func(domain.Session) error { return sentinel })
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected callback error, got %v", err)
	}
}

func TestSQLiteInMemoryDatabase(t *testing.T) {
	ctx := context.Background()
	store, err := NewStore(ctx, ":memory:", sqlstore.PoolOptions{})
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	defer func() { _ = store.Close() }()
	if err := store.Import(ctx, testfixture.Directory()); err != nil {
		t.Fatalf("import: %v", err)
	}
	err = store.View(ctx, func(sess domain.Session) error {
		rec, ok, err := sess.FindOrganisation(ctx, testfixture.OrgAutoParts)
		if err != nil || !ok {
			t.Fatalf("find: ok=%v err=%v", ok, err)
		}
		if rec.City.Name != "Shelbyville" {
			t.Fatalf("unexpected city %q", rec.City.Name)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("view: %v", err)
	}
}

func TestDSNAppendsPragmas(t *testing.T) {
	if got := dsn("a.db"); got != "a.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)" {
		t.Fatalf("unexpected dsn %s", got)
	}
	if got := dsn("a.db?mode=ro"); got != "a.db?mode=ro&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)" {
		t.Fatalf("unexpected dsn %s", got)
	}
}

func TestLowerFunctionFoldsUnicode(t *testing.T) {
	store := newLoadedStore(t)
	cases := []struct {
		in   any
		want any
	}{
		{"ЁЖ Рога", "ёж рога"},
		{"Straße MÜNCHEN", "straße münchen"},
		{"plain", "plain"},
		{nil, nil},
	}
	for _, tc := range cases {
		var got any
		row := store.DB().QueryRowContext(context.Background(), "SELECT "+sqlstore.LowerFunc+"(?)", tc.in)
		if err := row.Scan(&got); err != nil {
			t.Fatalf("lower %v: %v", tc.in, err)
		}
		if b, ok := got.([]byte); ok {
			got = string(b)
		}
		if got != tc.want {
			t.Fatalf("lower %v = %v, want %v", tc.in, got, tc.want)
		}
	}
}
