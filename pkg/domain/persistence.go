package domain

import "context"

// Session is a request-scoped, read-only view over the directory tables. Every
// method is a single storage round trip.
type Session interface {
	// ChildActivityIDs returns the ids of activities whose parent is in parentIDs.
	ChildActivityIDs(ctx context.Context, parentIDs []int64) ([]int64, error)
	FindActivity(ctx context.Context, id int64) (Activity, bool, error)
	// SearchOrganisations evaluates the conjunction of q's predicates. Each
	// organisation appears at most once.
	SearchOrganisations(ctx context.Context, q Query) ([]OrganisationSummary, error)
	// FindOrganisation loads an organisation joined with its address chain.
	FindOrganisation(ctx context.Context, id int64) (AddressedOrganisation, bool, error)
	ListPhones(ctx context.Context, organisationID int64) ([]Phone, error)
	ListActivityLinks(ctx context.Context, organisationID int64) ([]OrganisationActivity, error)
}

// ReadStore hands out sessions. View acquires a session, runs fn and releases
// the session before returning; the session must not escape fn.
type ReadStore interface {
	View(ctx context.Context, fn func(Session) error) error
	Close() error
}
