// Package domain defines the directory entities, response aggregates, filter
// specification and persistence ports shared by the search engine and its
// storage backends.
package domain

import (
	"encoding/json"
	"fmt"
)

// EntityType identifies the kind of record a lookup targeted.
type EntityType string

// Entity names surfaced in not-found errors and HTTP responses.
const (
	EntityActivity             EntityType = "Activity"
	EntityOrganisation         EntityType = "Organisation"
	EntityOrganisationAddress  EntityType = "OrganisationAddress"
	EntityBuilding             EntityType = "Building"
	EntityStreet               EntityType = "Street"
	EntityCity                 EntityType = "City"
	EntityPhone                EntityType = "Phone"
	EntityOrganisationActivity EntityType = "OrganisationActivity"
)

// OrganisationType enumerates the legal forms an organisation can take.
type OrganisationType string

// Supported organisation types.
const (
	OrganisationTypeLLC OrganisationType = "LLC"
	OrganisationTypeIP  OrganisationType = "IP"
)

// Valid reports whether t is one of the known organisation types.
func (t OrganisationType) Valid() bool {
	switch t {
	case OrganisationTypeLLC, OrganisationTypeIP:
		return true
	default:
		return false
	}
}

// UnmarshalJSON rejects unknown organisation types.
func (t *OrganisationType) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	candidate := OrganisationType(raw)
	if !candidate.Valid() {
		return fmt.Errorf("unknown organisation type %q", raw)
	}
	*t = candidate
	return nil
}

// Activity is a node of the activity forest. ParentID is a plain id reference,
// nil for roots.
type Activity struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	ParentID *int64 `json:"parent_id,omitempty"`
}

// City is the top of the address chain.
type City struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Street belongs to exactly one City.
type Street struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	CityID int64  `json:"city_id"`
}

// Building belongs to exactly one Street and carries its coordinates.
type Building struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	StreetID  int64   `json:"street_id"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// OrganisationAddress places an organisation inside a building.
type OrganisationAddress struct {
	ID         int64  `json:"id"`
	BuildingID int64  `json:"building_id"`
	Office     string `json:"office"`
}

// Organisation is a directory entry.
type Organisation struct {
	ID        int64            `json:"id"`
	Type      OrganisationType `json:"type"`
	Name      string           `json:"name"`
	AddressID int64            `json:"address_id"`
}

// Phone is owned by exactly one organisation.
type Phone struct {
	ID             int64  `json:"id"`
	Phone          string `json:"phone"`
	OrganisationID int64  `json:"organisation_id"`
}

// MaxPhoneLength bounds the stored phone number text.
const MaxPhoneLength = 14

// OrganisationActivity links an organisation to an activity. The same pair may
// appear in more than one link row.
type OrganisationActivity struct {
	ID             int64 `json:"id"`
	OrganisationID int64 `json:"organisation_id"`
	ActivityID     int64 `json:"activity_id"`
}

// AddressedOrganisation is an organisation joined with its full address chain
// (office, building, street, city).
type AddressedOrganisation struct {
	Organisation Organisation
	Address      OrganisationAddress
	Building     Building
	Street       Street
	City         City
}
