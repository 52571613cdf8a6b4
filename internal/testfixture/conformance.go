package testfixture

import (
	"context"
	"sort"
	"testing"

	"orgdirectory/pkg/domain"
)

// SummaryIDs returns the sorted ids of a search result.
func SummaryIDs(rows []domain.OrganisationSummary) []int64 {
	ids := make([]int64, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// SortedIDs returns a sorted copy of ids.
func SortedIDs(ids []int64) []int64 {
	out := append([]int64(nil), ids...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// SameIDs reports whether two id lists are element-wise equal.
func SameIDs(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// SearchCase is one predicate combination and the organisations it must return.
type SearchCase struct {
	Name  string
	Query domain.Query
	Want  []int64
}

func box(latFrom, latTo, lonFrom, lonTo float64) domain.Predicate {
	return domain.Predicate{Kind: domain.PredicateWithinBox, Box: domain.GeoBox{
		LatitudeFrom: latFrom, LatitudeTo: latTo, LongitudeFrom: lonFrom, LongitudeTo: lonTo,
	}}
}

func name(text string) domain.Predicate {
	return domain.Predicate{Kind: domain.PredicateNameContains, Text: text}
}

func activities(ids ...int64) domain.Predicate {
	return domain.Predicate{Kind: domain.PredicateActivityIn, IDs: ids}
}

func building(id int64) domain.Predicate {
	return domain.Predicate{Kind: domain.PredicateBuildingEquals, ID: id}
}

// SearchCases enumerates the predicate combinations every backend must agree on.
func SearchCases() []SearchCase {
	all := []int64{OrgHornsAndHooves, OrgMilkWay, OrgMeatMarket, OrgAutoParts, OrgQuietCorner}
	q := func(preds ...domain.Predicate) domain.Query { return domain.Query{Predicates: preds} }
	return []SearchCase{
		{"no predicates", q(), all},
		{"name case insensitive", q(name("HOOVES")), []int64{OrgHornsAndHooves}},
		{"name substring", q(name("meat")), []int64{OrgMeatMarket}},
		{"name percent is literal", q(name("%")), []int64{OrgMilkWay}},
		{"name underscore is literal", q(name("k_w")), []int64{OrgMilkWay}},
		{"name backslash is literal", q(name(`\`)), nil},
		{"name no match", q(name("zzz")), nil},
		{"name case insensitive unicode upper", q(name("АВТОЗАПЧАСТИ")), []int64{OrgAutoParts}},
		{"name case insensitive unicode lower", q(name("ёжик")), []int64{OrgAutoParts}},
		{"name case insensitive unicode mixed", q(name("жИк аВтО")), []int64{OrgAutoParts}},
		{"activity closure of food", q(activities(1, 2, 3, 4, 5, 6)), []int64{OrgHornsAndHooves, OrgMilkWay, OrgMeatMarket}},
		{"activity duplicated links appear once", q(activities(ActivityBeef)), []int64{OrgHornsAndHooves}},
		{"activity unknown", q(activities(MissingID)), nil},
		{"activity empty set", q(activities()), nil},
		{"building", q(building(BuildingMainSt12)), []int64{OrgHornsAndHooves, OrgMilkWay, OrgQuietCorner}},
		{"building unknown", q(building(MissingID)), nil},
		{"geo single building", q(box(55.7, 55.78, 37.5, 37.65)), []int64{OrgHornsAndHooves, OrgMilkWay, OrgQuietCorner}},
		{"geo inclusive bounds", q(box(55.8, 55.8, 37.7, 37.7)), []int64{OrgMeatMarket}},
		{"geo two buildings", q(box(55, 56, 37, 38)), []int64{OrgHornsAndHooves, OrgMilkWay, OrgMeatMarket, OrgQuietCorner}},
		{"geo inverted latitude", q(box(56, 55, 37, 38)), nil},
		{"geo inverted longitude", q(box(55, 56, 38, 37)), nil},
		{"building and activity", q(building(BuildingMainSt12), activities(1, 2, 3, 4, 5, 6)), []int64{OrgHornsAndHooves, OrgMilkWay}},
		{"name and geo", q(name("o"), box(55.7, 55.78, 37.5, 37.65)), []int64{OrgHornsAndHooves, OrgQuietCorner}},
		{"building and geo share joins", q(building(BuildingElmSt7a), box(55, 56, 37, 38)), []int64{OrgMeatMarket}},
		{"all predicates", q(name("market"), building(BuildingElmSt7a), box(55, 56, 37, 38), activities(ActivityMeat, ActivityBeef, ActivityPork)), []int64{OrgMeatMarket}},
		{"contradicting predicates", q(building(BuildingOcean1), activities(1, 2, 3, 4, 5, 6)), nil},
	}
}

// RunSessionConformance checks a store loaded with Directory against the
// Session contract.
func RunSessionConformance(t *testing.T, store domain.ReadStore) {
	t.Helper()
	ctx := context.Background()

	view := func(t *testing.T, fn func(domain.Session) error) {
		t.Helper()
		if err := store.View(ctx, fn); err != nil {
			t.Fatalf("view: %v", err)
		}
	}

	t.Run("child activity ids", func(t *testing.T) {
		cases := []struct {
			parents []int64
			want    []int64
		}{
			{[]int64{ActivityFood}, []int64{ActivityMeat, ActivityDairy}},
			{[]int64{ActivityMeat, ActivityDairy}, []int64{ActivityBeef, ActivityPork, ActivityCheese}},
			{[]int64{ActivityBeef}, nil},
			{[]int64{MissingID}, nil},
			{nil, nil},
		}
		view(t, func(sess domain.Session) error {
			for _, tc := range cases {
				got, err := sess.ChildActivityIDs(ctx, tc.parents)
				if err != nil {
					t.Fatalf("children of %v: %v", tc.parents, err)
				}
				if !SameIDs(SortedIDs(got), tc.want) {
					t.Fatalf("children of %v = %v, want %v", tc.parents, got, tc.want)
				}
			}
			return nil
		})
	})

	t.Run("find activity", func(t *testing.T) {
		view(t, func(sess domain.Session) error {
			a, ok, err := sess.FindActivity(ctx, ActivityCheese)
			if err != nil || !ok {
				t.Fatalf("find cheese: ok=%v err=%v", ok, err)
			}
			if a.Name != "Cheese" || a.ParentID == nil || *a.ParentID != ActivityDairy {
				t.Fatalf("unexpected activity %+v", a)
			}
			root, ok, err := sess.FindActivity(ctx, ActivityFood)
			if err != nil || !ok || root.ParentID != nil {
				t.Fatalf("expected root without parent, got %+v ok=%v err=%v", root, ok, err)
			}
			if _, ok, err := sess.FindActivity(ctx, MissingID); err != nil || ok {
				t.Fatalf("expected missing activity, ok=%v err=%v", ok, err)
			}
			return nil
		})
	})

	t.Run("search organisations", func(t *testing.T) {
		for _, tc := range SearchCases() {
			t.Run(tc.Name, func(t *testing.T) {
				view(t, func(sess domain.Session) error {
					rows, err := sess.SearchOrganisations(ctx, tc.Query)
					if err != nil {
						t.Fatalf("search: %v", err)
					}
					got := SummaryIDs(rows)
					if len(got) != len(rows) {
						t.Fatalf("unexpected row count")
					}
					if !SameIDs(got, SortedIDs(tc.Want)) {
						t.Fatalf("got %v, want %v", got, tc.Want)
					}
					return nil
				})
			})
		}
	})

	t.Run("search summaries carry type and name", func(t *testing.T) {
		view(t, func(sess domain.Session) error {
			rows, err := sess.SearchOrganisations(ctx, domain.Query{Predicates: []domain.Predicate{name("milk")}})
			if err != nil {
				t.Fatalf("search: %v", err)
			}
			if len(rows) != 1 || rows[0].Type != domain.OrganisationTypeIP || rows[0].Name != "Milk_Way 100%" {
				t.Fatalf("unexpected rows %+v", rows)
			}
			return nil
		})
	})

	t.Run("search page", func(t *testing.T) {
		view(t, func(sess domain.Session) error {
			rows, err := sess.SearchOrganisations(ctx, domain.Query{Page: domain.Page{Limit: 2, Offset: 1}})
			if err != nil {
				t.Fatalf("search: %v", err)
			}
			got := []int64{}
			for _, r := range rows {
				got = append(got, r.ID)
			}
			if !SameIDs(got, []int64{OrgMilkWay, OrgMeatMarket}) {
				t.Fatalf("expected id ordered window, got %v", got)
			}
			rows, err = sess.SearchOrganisations(ctx, domain.Query{Page: domain.Page{Offset: 10}})
			if err != nil || len(rows) != 0 {
				t.Fatalf("expected empty page past end, got %v err=%v", rows, err)
			}
			return nil
		})
	})

	t.Run("find organisation joins address chain", func(t *testing.T) {
		view(t, func(sess domain.Session) error {
			rec, ok, err := sess.FindOrganisation(ctx, OrgHornsAndHooves)
			if err != nil || !ok {
				t.Fatalf("find: ok=%v err=%v", ok, err)
			}
			if rec.Organisation.Name != "Horns & Hooves" || rec.Organisation.Type != domain.OrganisationTypeLLC {
				t.Fatalf("unexpected organisation %+v", rec.Organisation)
			}
			if rec.Address.Office != "Suite 4" || rec.Building.Name != "12" || rec.Street.Name != "Main St" || rec.City.Name != "Springfield" {
				t.Fatalf("unexpected address chain %+v", rec)
			}
			if rec.Building.Latitude != 55.75 || rec.Building.Longitude != 37.61 {
				t.Fatalf("unexpected coordinates %+v", rec.Building)
			}
			if _, ok, err := sess.FindOrganisation(ctx, MissingID); err != nil || ok {
				t.Fatalf("expected missing organisation, ok=%v err=%v", ok, err)
			}
			return nil
		})
	})

	t.Run("phones and links in row order", func(t *testing.T) {
		view(t, func(sess domain.Session) error {
			phones, err := sess.ListPhones(ctx, OrgHornsAndHooves)
			if err != nil {
				t.Fatalf("phones: %v", err)
			}
			if len(phones) != 2 || phones[0].Phone != "2-222-222" || phones[1].Phone != "3-333-333" {
				t.Fatalf("unexpected phones %+v", phones)
			}
			links, err := sess.ListActivityLinks(ctx, OrgHornsAndHooves)
			if err != nil {
				t.Fatalf("links: %v", err)
			}
			got := []int64{}
			for _, l := range links {
				got = append(got, l.ActivityID)
			}
			if !SameIDs(got, []int64{ActivityBeef, ActivityBeef, ActivityCheese}) {
				t.Fatalf("unexpected links %v", got)
			}
			none, err := sess.ListPhones(ctx, OrgQuietCorner)
			if err != nil || len(none) != 0 {
				t.Fatalf("expected no phones, got %v err=%v", none, err)
			}
			noLinks, err := sess.ListActivityLinks(ctx, OrgQuietCorner)
			if err != nil || len(noLinks) != 0 {
				t.Fatalf("expected no links, got %v err=%v", noLinks, err)
			}
			return nil
		})
	})

	t.Run("cancelled context", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		err := store.View(cctx, func(sess domain.Session) error {
			_, err := sess.SearchOrganisations(cctx, domain.Query{})
			return err
		})
		if err == nil {
			t.Fatalf("expected cancellation error")
		}
	})
}
