package core

import (
	"errors"
	"testing"

	"orgdirectory/pkg/domain"
)

func ptr[T any](v T) *T { return &v }

func TestCompileFilterGeoAllOrNothing(t *testing.T) {
	full := domain.OrganisationFilter{
		LatitudeFrom: ptr(1.0), LatitudeTo: ptr(2.0), LongitudeFrom: ptr(3.0), LongitudeTo: ptr(4.0),
	}
	partial := []domain.OrganisationFilter{
		{LatitudeFrom: ptr(1.0)},
		{LatitudeFrom: ptr(1.0), LatitudeTo: ptr(2.0)},
		{LatitudeFrom: ptr(1.0), LatitudeTo: ptr(2.0), LongitudeFrom: ptr(3.0)},
		{LongitudeTo: ptr(0.0), Name: ptr("x")},
	}
	for i, f := range partial {
		_, err := CompileFilter(f)
		var ve domain.ValidationError
		if !errors.As(err, &ve) {
			t.Fatalf("case %d: expected validation error, got %v", i, err)
		}
		if ve.Message != GeoBoundsMessage {
			t.Fatalf("case %d: unexpected message %q", i, ve.Message)
		}
	}

	plan, err := CompileFilter(full)
	if err != nil {
		t.Fatalf("full box: %v", err)
	}
	preds := plan.Predicates()
	if len(preds) != 1 || preds[0].Kind != domain.PredicateWithinBox {
		t.Fatalf("expected one box predicate, got %+v", preds)
	}
	want := domain.GeoBox{LatitudeFrom: 1, LatitudeTo: 2, LongitudeFrom: 3, LongitudeTo: 4}
	if preds[0].Box != want {
		t.Fatalf("unexpected box %+v", preds[0].Box)
	}

	plan, err = CompileFilter(domain.OrganisationFilter{})
	if err != nil || len(plan.Predicates()) != 0 {
		t.Fatalf("empty filter: preds=%v err=%v", plan.Predicates(), err)
	}
}

func TestCompileFilterZeroValuesArePresent(t *testing.T) {
	plan, err := CompileFilter(domain.OrganisationFilter{
		BuildingID:   ptr(int64(0)),
		LatitudeFrom: ptr(0.0), LatitudeTo: ptr(0.0), LongitudeFrom: ptr(0.0), LongitudeTo: ptr(0.0),
	})
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if len(plan.Predicates()) != 2 {
		t.Fatalf("expected building and box predicates, got %+v", plan.Predicates())
	}
}

func TestCompileFilterInvertedRangeIsAccepted(t *testing.T) {
	_, err := CompileFilter(domain.OrganisationFilter{
		LatitudeFrom: ptr(60.0), LatitudeTo: ptr(50.0), LongitudeFrom: ptr(3.0), LongitudeTo: ptr(4.0),
	})
	if err != nil {
		t.Fatalf("inverted range must not be rejected: %v", err)
	}
}

func TestCompileFilterNameAndActivity(t *testing.T) {
	plan, err := CompileFilter(domain.OrganisationFilter{Name: ptr("Hooves"), ActivityID: ptr(int64(7)), BuildingID: ptr(int64(3))})
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	root, ok := plan.ActivityRoot()
	if !ok || root != 7 {
		t.Fatalf("unexpected root %d ok=%v", root, ok)
	}
	q := plan.Query([]int64{7, 8, 9}, domain.Page{Limit: 5})
	kinds := map[domain.PredicateKind]domain.Predicate{}
	for _, p := range q.Predicates {
		kinds[p.Kind] = p
	}
	if len(q.Predicates) != 3 {
		t.Fatalf("expected three predicates, got %+v", q.Predicates)
	}
	if kinds[domain.PredicateNameContains].Text != "Hooves" || kinds[domain.PredicateBuildingEquals].ID != 3 {
		t.Fatalf("unexpected predicates %+v", q.Predicates)
	}
	if got := kinds[domain.PredicateActivityIn].IDs; len(got) != 3 || got[0] != 7 {
		t.Fatalf("unexpected activity ids %v", got)
	}
	if q.Page.Limit != 5 {
		t.Fatalf("page not carried: %+v", q.Page)
	}
}

func TestCompileFilterEmptyNameIsIgnored(t *testing.T) {
	plan, err := CompileFilter(domain.OrganisationFilter{Name: ptr("")})
	if err != nil || len(plan.Predicates()) != 0 {
		t.Fatalf("empty name must add no predicate: %+v err=%v", plan.Predicates(), err)
	}
}

func TestFilterPlanWithoutRootIgnoresClosure(t *testing.T) {
	plan, _ := CompileFilter(domain.OrganisationFilter{})
	if _, ok := plan.ActivityRoot(); ok {
		t.Fatalf("unexpected root")
	}
	if q := plan.Query([]int64{1}, domain.Page{}); q.Requires(domain.PredicateActivityIn) {
		t.Fatalf("closure must be ignored without a root")
	}
}

func TestFilterPlanPredicatesIsACopy(t *testing.T) {
	plan, _ := CompileFilter(domain.OrganisationFilter{Name: ptr("a")})
	preds := plan.Predicates()
	preds[0].Text = "mutated"
	if plan.Predicates()[0].Text != "a" {
		t.Fatalf("plan mutated through returned slice")
	}
}
