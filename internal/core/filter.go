package core

import "orgdirectory/pkg/domain"

// GeoBoundsMessage is reported when only some of the geo bounds are sent.
const GeoBoundsMessage = "latitude_from, latitude_to, longitude_from, longitude_to must be sent."

// FilterPlan is a validated filter: independent predicate descriptors plus the
// activity root whose closure still has to be expanded against storage.
type FilterPlan struct {
	predicates   []domain.Predicate
	activityRoot *int64
}

// CompileFilter validates f and accumulates one predicate per present field.
// Validation happens here so that no storage work starts for a rejected filter.
// Bound ordering is not checked: an inverted range simply matches nothing.
func CompileFilter(f domain.OrganisationFilter) (FilterPlan, error) {
	geo := f.GeoBoundsSent()
	if geo > 0 && geo < 4 {
		return FilterPlan{}, domain.ValidationError{Message: GeoBoundsMessage}
	}

	var plan FilterPlan
	if f.Name != nil && *f.Name != "" {
		plan.add(domain.Predicate{Kind: domain.PredicateNameContains, Text: *f.Name})
	}
	if f.BuildingID != nil {
		plan.add(domain.Predicate{Kind: domain.PredicateBuildingEquals, ID: *f.BuildingID})
	}
	if geo == 4 {
		plan.add(domain.Predicate{Kind: domain.PredicateWithinBox, Box: domain.GeoBox{
			LatitudeFrom:  *f.LatitudeFrom,
			LatitudeTo:    *f.LatitudeTo,
			LongitudeFrom: *f.LongitudeFrom,
			LongitudeTo:   *f.LongitudeTo,
		}})
	}
	if f.ActivityID != nil {
		root := *f.ActivityID
		plan.activityRoot = &root
	}
	return plan, nil
}

func (p *FilterPlan) add(pred domain.Predicate) {
	p.predicates = append(p.predicates, pred)
}

// ActivityRoot returns the activity id whose closure constrains the search.
func (p FilterPlan) ActivityRoot() (int64, bool) {
	if p.activityRoot == nil {
		return 0, false
	}
	return *p.activityRoot, true
}

// Predicates returns a copy of the accumulated descriptors.
func (p FilterPlan) Predicates() []domain.Predicate {
	return append([]domain.Predicate(nil), p.predicates...)
}

// Query finalises the plan. closure must be the expanded activity set when the
// plan has an activity root and is ignored otherwise.
func (p FilterPlan) Query(closure []int64, page domain.Page) domain.Query {
	preds := p.Predicates()
	if p.activityRoot != nil {
		preds = append(preds, domain.Predicate{Kind: domain.PredicateActivityIn, IDs: append([]int64(nil), closure...)})
	}
	return domain.Query{Predicates: preds, Page: page}
}
