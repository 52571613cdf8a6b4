package domain

import "fmt"

// Dataset is a complete set of directory rows, used for seeding stores and for
// the in-memory backend.
type Dataset struct {
	Cities                 []City                 `json:"cities"`
	Streets                []Street               `json:"streets"`
	Buildings              []Building             `json:"buildings"`
	Activities             []Activity             `json:"activities"`
	Addresses              []OrganisationAddress  `json:"addresses"`
	Organisations          []Organisation         `json:"organisations"`
	Phones                 []Phone                `json:"phones"`
	OrganisationActivities []OrganisationActivity `json:"organisation_activities"`
}

// Validate checks referential integrity and field bounds across the dataset.
func (d Dataset) Validate() error {
	cities := idSet(len(d.Cities))
	for _, c := range d.Cities {
		cities[c.ID] = struct{}{}
	}
	streets := idSet(len(d.Streets))
	for _, s := range d.Streets {
		if _, ok := cities[s.CityID]; !ok {
			return fmt.Errorf("street %d: %w", s.ID, ErrNotFound{Entity: EntityCity, ID: s.CityID})
		}
		streets[s.ID] = struct{}{}
	}
	buildings := idSet(len(d.Buildings))
	for _, b := range d.Buildings {
		if _, ok := streets[b.StreetID]; !ok {
			return fmt.Errorf("building %d: %w", b.ID, ErrNotFound{Entity: EntityStreet, ID: b.StreetID})
		}
		if b.Latitude < -90 || b.Latitude > 90 {
			return fmt.Errorf("building %d: latitude %v out of range", b.ID, b.Latitude)
		}
		if b.Longitude < -180 || b.Longitude > 180 {
			return fmt.Errorf("building %d: longitude %v out of range", b.ID, b.Longitude)
		}
		buildings[b.ID] = struct{}{}
	}
	activities := idSet(len(d.Activities))
	for _, a := range d.Activities {
		activities[a.ID] = struct{}{}
	}
	for _, a := range d.Activities {
		if a.ParentID == nil {
			continue
		}
		if _, ok := activities[*a.ParentID]; !ok {
			return fmt.Errorf("activity %d: %w", a.ID, ErrNotFound{Entity: EntityActivity, ID: *a.ParentID})
		}
	}
	if err := checkAcyclic(d.Activities); err != nil {
		return err
	}
	addresses := idSet(len(d.Addresses))
	for _, a := range d.Addresses {
		if _, ok := buildings[a.BuildingID]; !ok {
			return fmt.Errorf("address %d: %w", a.ID, ErrNotFound{Entity: EntityBuilding, ID: a.BuildingID})
		}
		addresses[a.ID] = struct{}{}
	}
	organisations := idSet(len(d.Organisations))
	for _, o := range d.Organisations {
		if !o.Type.Valid() {
			return fmt.Errorf("organisation %d: unknown type %q", o.ID, o.Type)
		}
		if _, ok := addresses[o.AddressID]; !ok {
			return fmt.Errorf("organisation %d: %w", o.ID, ErrNotFound{Entity: EntityOrganisationAddress, ID: o.AddressID})
		}
		organisations[o.ID] = struct{}{}
	}
	for _, p := range d.Phones {
		if len(p.Phone) > MaxPhoneLength {
			return fmt.Errorf("phone %d: longer than %d characters", p.ID, MaxPhoneLength)
		}
		if _, ok := organisations[p.OrganisationID]; !ok {
			return fmt.Errorf("phone %d: %w", p.ID, ErrNotFound{Entity: EntityOrganisation, ID: p.OrganisationID})
		}
	}
	for _, l := range d.OrganisationActivities {
		if _, ok := organisations[l.OrganisationID]; !ok {
			return fmt.Errorf("organisation activity %d: %w", l.ID, ErrNotFound{Entity: EntityOrganisation, ID: l.OrganisationID})
		}
		if _, ok := activities[l.ActivityID]; !ok {
			return fmt.Errorf("organisation activity %d: %w", l.ID, ErrNotFound{Entity: EntityActivity, ID: l.ActivityID})
		}
	}
	return nil
}

func idSet(n int) map[int64]struct{} {
	return make(map[int64]struct{}, n)
}

// checkAcyclic follows every parent chain; a chain longer than the number of
// activities must revisit a node.
func checkAcyclic(activities []Activity) error {
	parents := make(map[int64]*int64, len(activities))
	for _, a := range activities {
		parents[a.ID] = a.ParentID
	}
	for _, a := range activities {
		hops := 0
		for p := a.ParentID; p != nil; p = parents[*p] {
			hops++
			if hops > len(activities) {
				return fmt.Errorf("activity %d: parent chain contains a cycle", a.ID)
			}
		}
	}
	return nil
}
