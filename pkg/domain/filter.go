package domain

// OrganisationFilter is the caller-supplied search specification. Every field
// is optional; the four geo bounds must be sent together.
type OrganisationFilter struct {
	Name          *string  `json:"name,omitempty"`
	ActivityID    *int64   `json:"activity_id,omitempty"`
	BuildingID    *int64   `json:"building_id,omitempty"`
	LatitudeFrom  *float64 `json:"latitude_from,omitempty"`
	LatitudeTo    *float64 `json:"latitude_to,omitempty"`
	LongitudeFrom *float64 `json:"longitude_from,omitempty"`
	LongitudeTo   *float64 `json:"longitude_to,omitempty"`
}

// GeoBoundsSent returns how many of the four geo bounds are present.
func (f OrganisationFilter) GeoBoundsSent() int {
	n := 0
	for _, v := range []*float64{f.LatitudeFrom, f.LatitudeTo, f.LongitudeFrom, f.LongitudeTo} {
		if v != nil {
			n++
		}
	}
	return n
}

// GeoBox is an inclusive latitude/longitude rectangle. A box whose lower bound
// exceeds its upper bound on either axis contains nothing.
type GeoBox struct {
	LatitudeFrom  float64 `json:"latitude_from"`
	LatitudeTo    float64 `json:"latitude_to"`
	LongitudeFrom float64 `json:"longitude_from"`
	LongitudeTo   float64 `json:"longitude_to"`
}

// Contains reports whether the point lies inside the box, bounds included.
func (b GeoBox) Contains(latitude, longitude float64) bool {
	return latitude >= b.LatitudeFrom && latitude <= b.LatitudeTo &&
		longitude >= b.LongitudeFrom && longitude <= b.LongitudeTo
}

// PredicateKind identifies one independent search constraint.
type PredicateKind string

// Predicate kinds produced by the filter compiler.
const (
	PredicateNameContains   PredicateKind = "name_contains"
	PredicateActivityIn     PredicateKind = "activity_in"
	PredicateBuildingEquals PredicateKind = "building_equals"
	PredicateWithinBox      PredicateKind = "within_box"
)

// Predicate is a storage-agnostic constraint descriptor. Only the fields that
// belong to Kind are meaningful.
type Predicate struct {
	Kind PredicateKind
	// Text is the literal substring for PredicateNameContains.
	Text string
	// IDs is the activity closure for PredicateActivityIn.
	IDs []int64
	// ID is the building id for PredicateBuildingEquals.
	ID int64
	// Box is the rectangle for PredicateWithinBox.
	Box GeoBox
}

// Page bounds a result list. A zero Limit means unbounded.
type Page struct {
	Limit  int
	Offset int
}

// Query is a conjunction of predicates handed to a Session.
type Query struct {
	Predicates []Predicate
	Page       Page
}

// Requires reports whether any predicate of the given kind is present.
func (q Query) Requires(kind PredicateKind) bool {
	for _, p := range q.Predicates {
		if p.Kind == kind {
			return true
		}
	}
	return false
}

// NeedsAddress reports whether the query constrains the organisation address.
func (q Query) NeedsAddress() bool {
	return q.Requires(PredicateBuildingEquals) || q.Requires(PredicateWithinBox)
}
