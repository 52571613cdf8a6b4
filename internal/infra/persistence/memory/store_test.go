package memory

import (
	"context"
	"errors"
	"testing"

	"orgdirectory/internal/testfixture"
	"orgdirectory/pkg/domain"
)

func TestStoreConformance(t *testing.T) {
	store, err := NewStore(testfixture.Directory())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	defer func() { _ = store.Close() }()
	testfixture.RunSessionConformance(t, store)
}

func TestNewStoreRejectsInvalidDataset(t *testing.T) {
	ds := testfixture.Directory()
	ds.Organisations[0].AddressID = testfixture.MissingID
	_, err := NewStore(ds)
	var nf domain.ErrNotFound
	if !errors.As(err, &nf) || nf.Entity != domain.EntityOrganisationAddress {
		t.Fatalf("expected dangling address error, got %v", err)
	}
}

func TestEmptyStore(t *testing.T) {
	store, err := NewStore(domain.Dataset{})
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	err = store.View(context.Background(), func(sess domain.Session) error {
		rows, err := sess.SearchOrganisations(context.Background(), domain.Query{})
		if err != nil {
			return err
		}
		if len(rows) != 0 {
			t.Fatalf("expected no rows, got %v", rows)
		}
		_, ok, err := sess.FindOrganisation(context.Background(), 1)
		if err != nil || ok {
			t.Fatalf("expected missing organisation")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("view: %v", err)
	}
}

func TestUnknownPredicateMatchesNothing(t *testing.T) {
	store, err := NewStore(testfixture.Directory())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	err = store.View(context.Background(), func(sess domain.Session) error {
		rows, err := sess.SearchOrganisations(context.Background(), domain.Query{Predicates: []domain.Predicate{{Kind: "bogus"}}})
		if err != nil {
			return err
		}
		if len(rows) != 0 {
			t.Fatalf("expected unknown predicate to match nothing, got %v", rows)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("view: %v", err)
	}
}
