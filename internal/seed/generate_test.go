package seed

import (
	"reflect"
	"testing"

	"orgdirectory/pkg/domain"
)

func small() Options {
	return Options{Seed: 7, Roots: 2, ChildrenPerNode: 2, Cities: 2, StreetsPerCity: 3, BuildingsPerStreet: 4, Organisations: 25, MaxPhones: 3, MaxLinks: 5}
}

func TestGenerateDefaultShape(t *testing.T) {
	ds := Generate(Options{})
	if got := len(ds.Activities); got != 10*(1+3+9) {
		t.Fatalf("expected 130 activities, got %d", got)
	}
	if len(ds.Cities) != 10 || len(ds.Streets) != 1000 || len(ds.Buildings) != 20000 {
		t.Fatalf("unexpected geography %d/%d/%d", len(ds.Cities), len(ds.Streets), len(ds.Buildings))
	}
	if len(ds.Organisations) != 100 || len(ds.Addresses) != 100 {
		t.Fatalf("unexpected organisations %d addresses %d", len(ds.Organisations), len(ds.Addresses))
	}
	if err := ds.Validate(); err != nil {
		t.Fatalf("generated dataset invalid: %v", err)
	}
}

func TestGenerateIsDeterministic(t *testing.T) {
	a := Generate(small())
	b := Generate(small())
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("same options produced different datasets")
	}
	other := small()
	other.Seed = 8
	if reflect.DeepEqual(a, Generate(other)) {
		t.Fatalf("different seeds produced identical datasets")
	}
}

func TestGenerateActivityTreeDepth(t *testing.T) {
	ds := Generate(small())
	tree := domain.NewActivityTree(ds.Activities)
	roots := 0
	for _, a := range ds.Activities {
		if a.ParentID == nil {
			roots++
			if got := len(tree.Closure(a.ID)); got != 1+2+4 {
				t.Fatalf("root %d closure size %d", a.ID, got)
			}
			continue
		}
		if *a.ParentID >= a.ID {
			t.Fatalf("activity %d precedes its parent %d", a.ID, *a.ParentID)
		}
	}
	if roots != 2 {
		t.Fatalf("expected 2 roots, got %d", roots)
	}
}

func TestGenerateFieldBounds(t *testing.T) {
	ds := Generate(small())
	perOrgPhones := map[int64]int{}
	for _, p := range ds.Phones {
		if len(p.Phone) != domain.MaxPhoneLength {
			t.Fatalf("phone %q must have %d characters", p.Phone, domain.MaxPhoneLength)
		}
		perOrgPhones[p.OrganisationID]++
	}
	for org, n := range perOrgPhones {
		if n > 3 {
			t.Fatalf("organisation %d has %d phones", org, n)
		}
	}
	for _, b := range ds.Buildings {
		if b.Latitude < -90 || b.Latitude > 90 || b.Longitude < -180 || b.Longitude > 180 {
			t.Fatalf("building %d out of range: %v,%v", b.ID, b.Latitude, b.Longitude)
		}
	}
	for _, o := range ds.Organisations {
		if !o.Type.Valid() || o.Name == "" {
			t.Fatalf("unexpected organisation %+v", o)
		}
	}
}

func TestGenerateWithoutPhonesOrLinks(t *testing.T) {
	opts := small()
	opts.MaxPhones = 0
	opts.MaxLinks = 0
	ds := Generate(opts)
	if len(ds.Phones) != 0 || len(ds.OrganisationActivities) != 0 {
		t.Fatalf("expected no phones or links, got %d/%d", len(ds.Phones), len(ds.OrganisationActivities))
	}
}
