// Package memory provides an in-memory read store over a domain.Dataset, used
// for tests and ephemeral environments.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"orgdirectory/pkg/domain"
)

// Compile-time contract assertions.
var (
	_ domain.ReadStore = (*Store)(nil)
	_ domain.Session   = session{}
)

// Store indexes a validated dataset. It is immutable after construction, so
// concurrent sessions need no locking.
type Store struct {
	tree          *domain.ActivityTree
	organisations []domain.Organisation
	orgByID       map[int64]domain.Organisation
	addresses     map[int64]domain.OrganisationAddress
	buildings     map[int64]domain.Building
	streets       map[int64]domain.Street
	cities        map[int64]domain.City
	phones        map[int64][]domain.Phone
	links         map[int64][]domain.OrganisationActivity
}

// NewStore validates ds and builds the in-memory indexes.
func NewStore(ds domain.Dataset) (*Store, error) {
	if err := ds.Validate(); err != nil {
		return nil, fmt.Errorf("validate dataset: %w", err)
	}
	s := &Store{
		tree:      domain.NewActivityTree(ds.Activities),
		orgByID:   make(map[int64]domain.Organisation, len(ds.Organisations)),
		addresses: make(map[int64]domain.OrganisationAddress, len(ds.Addresses)),
		buildings: make(map[int64]domain.Building, len(ds.Buildings)),
		streets:   make(map[int64]domain.Street, len(ds.Streets)),
		cities:    make(map[int64]domain.City, len(ds.Cities)),
		phones:    make(map[int64][]domain.Phone),
		links:     make(map[int64][]domain.OrganisationActivity),
	}
	s.organisations = append(s.organisations, ds.Organisations...)
	sort.Slice(s.organisations, func(i, j int) bool { return s.organisations[i].ID < s.organisations[j].ID })
	for _, o := range s.organisations {
		s.orgByID[o.ID] = o
	}
	for _, a := range ds.Addresses {
		s.addresses[a.ID] = a
	}
	for _, b := range ds.Buildings {
		s.buildings[b.ID] = b
	}
	for _, st := range ds.Streets {
		s.streets[st.ID] = st
	}
	for _, c := range ds.Cities {
		s.cities[c.ID] = c
	}
	for _, p := range ds.Phones {
		s.phones[p.OrganisationID] = append(s.phones[p.OrganisationID], p)
	}
	for _, l := range ds.OrganisationActivities {
		s.links[l.OrganisationID] = append(s.links[l.OrganisationID], l)
	}
	for id := range s.phones {
		rows := s.phones[id]
		sort.Slice(rows, func(i, j int) bool { return rows[i].ID < rows[j].ID })
	}
	for id := range s.links {
		rows := s.links[id]
		sort.Slice(rows, func(i, j int) bool { return rows[i].ID < rows[j].ID })
	}
	return s, nil
}

// View runs fn with a session over the store.
func (s *Store) View(ctx context.Context, fn func(domain.Session) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(session{store: s})
}

// Close implements domain.ReadStore.
func (s *Store) Close() error { return nil }

type session struct {
	store *Store
}

func (s session) ChildActivityIDs(ctx context.Context, parentIDs []int64) ([]int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.tree.Children(parentIDs), nil
}

func (s session) FindActivity(ctx context.Context, id int64) (domain.Activity, bool, error) {
	if err := ctx.Err(); err != nil {
		return domain.Activity{}, false, err
	}
	a, ok := s.store.tree.Get(id)
	return a, ok, nil
}

func (s session) SearchOrganisations(ctx context.Context, q domain.Query) ([]domain.OrganisationSummary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []domain.OrganisationSummary
	skipped := 0
	for _, org := range s.store.organisations {
		if !s.matches(org, q.Predicates) {
			continue
		}
		if skipped < q.Page.Offset {
			skipped++
			continue
		}
		out = append(out, domain.OrganisationSummary{ID: org.ID, Type: org.Type, Name: org.Name})
		if q.Page.Limit > 0 && len(out) == q.Page.Limit {
			break
		}
	}
	return out, nil
}

func (s session) matches(org domain.Organisation, preds []domain.Predicate) bool {
	for _, p := range preds {
		switch p.Kind {
		case domain.PredicateNameContains:
			if !strings.Contains(strings.ToLower(org.Name), strings.ToLower(p.Text)) {
				return false
			}
		case domain.PredicateBuildingEquals:
			if s.store.addresses[org.AddressID].BuildingID != p.ID {
				return false
			}
		case domain.PredicateWithinBox:
			b := s.store.buildings[s.store.addresses[org.AddressID].BuildingID]
			if !p.Box.Contains(b.Latitude, b.Longitude) {
				return false
			}
		case domain.PredicateActivityIn:
			if !s.linkedToAny(org.ID, p.IDs) {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func (s session) linkedToAny(orgID int64, activityIDs []int64) bool {
	for _, l := range s.store.links[orgID] {
		for _, id := range activityIDs {
			if l.ActivityID == id {
				return true
			}
		}
	}
	return false
}

func (s session) FindOrganisation(ctx context.Context, id int64) (domain.AddressedOrganisation, bool, error) {
	if err := ctx.Err(); err != nil {
		return domain.AddressedOrganisation{}, false, err
	}
	org, ok := s.store.orgByID[id]
	if !ok {
		return domain.AddressedOrganisation{}, false, nil
	}
	addr := s.store.addresses[org.AddressID]
	building := s.store.buildings[addr.BuildingID]
	street := s.store.streets[building.StreetID]
	return domain.AddressedOrganisation{
		Organisation: org,
		Address:      addr,
		Building:     building,
		Street:       street,
		City:         s.store.cities[street.CityID],
	}, true, nil
}

func (s session) ListPhones(ctx context.Context, organisationID int64) ([]domain.Phone, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return append([]domain.Phone(nil), s.store.phones[organisationID]...), nil
}

func (s session) ListActivityLinks(ctx context.Context, organisationID int64) ([]domain.OrganisationActivity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return append([]domain.OrganisationActivity(nil), s.store.links[organisationID]...), nil
}
