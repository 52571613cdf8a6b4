// Package seed builds fake directory datasets and moves them between blob
// storage and the SQL backends.
package seed

import (
	"fmt"
	"math"
	"math/rand/v2"

	"orgdirectory/pkg/domain"
)

// Options sizes a generated dataset. Zero fields take the DefaultOptions value.
type Options struct {
	Seed               uint64
	Roots              int
	ChildrenPerNode    int
	Cities             int
	StreetsPerCity     int
	BuildingsPerStreet int
	Organisations      int
	// MaxPhones and MaxLinks bound the per-organisation random counts.
	MaxPhones int
	MaxLinks  int
}

// DefaultOptions mirrors the demo data the service ships with: 10 activity
// roots with two further levels of 3 children, 10 cities of 100 streets of 20
// buildings, 100 organisations.
func DefaultOptions() Options {
	return Options{
		Seed:               1,
		Roots:              10,
		ChildrenPerNode:    3,
		Cities:             10,
		StreetsPerCity:     100,
		BuildingsPerStreet: 20,
		Organisations:      100,
		MaxPhones:          3,
		MaxLinks:           5,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Seed == 0 {
		o.Seed = d.Seed
	}
	fill := func(v *int, def int) {
		if *v <= 0 {
			*v = def
		}
	}
	fill(&o.Roots, d.Roots)
	fill(&o.ChildrenPerNode, d.ChildrenPerNode)
	fill(&o.Cities, d.Cities)
	fill(&o.StreetsPerCity, d.StreetsPerCity)
	fill(&o.BuildingsPerStreet, d.BuildingsPerStreet)
	fill(&o.Organisations, d.Organisations)
	if o.MaxPhones < 0 {
		o.MaxPhones = 0
	}
	if o.MaxLinks < 0 {
		o.MaxLinks = 0
	}
	return o
}

var (
	adjectives = []string{"Fresh", "Local", "Premium", "Rapid", "Green", "Urban", "Classic", "Smart", "Golden", "Northern"}
	nouns      = []string{"Food", "Logistics", "Repair", "Textiles", "Printing", "Furniture", "Software", "Catering", "Pharmacy", "Hardware", "Cleaning", "Tourism"}
	firstNames = []string{"Anna", "Boris", "Clara", "Dmitry", "Elena", "Felix", "Galina", "Hugo", "Irina", "Jonas", "Kira", "Leon"}
	lastNames  = []string{"Smith", "Ivanova", "Keller", "Novak", "Petrov", "Garcia", "Larsen", "Moreau", "Sokolova", "Weber", "Young", "Zhukov"}
	cityRoots  = []string{"Spring", "River", "Stone", "Maple", "Lake", "Oak", "Silver", "Fair", "Green", "Ash"}
	citySuffix = []string{"field", "ville", "ton", "burg", "port", "wood"}
	streetKind = []string{"St", "Ave", "Rd", "Lane", "Blvd", "Way"}
)

type generator struct {
	rng *rand.Rand
}

func (g generator) pick(words []string) string {
	return words[g.rng.IntN(len(words))]
}

// coordinate returns a value in [-limit, limit] with the six decimal places
// the SQL schema stores.
func (g generator) coordinate(limit float64) float64 {
	v := g.rng.Float64()*2*limit - limit
	return math.Round(v*1e6) / 1e6
}

// phone yields numbers of exactly domain.MaxPhoneLength characters.
func (g generator) phone() string {
	return fmt.Sprintf("8-9%02d-%03d-%04d", g.rng.IntN(100), g.rng.IntN(1000), g.rng.IntN(10000))
}

// Generate builds a referentially consistent dataset. The same options always
// produce the same rows.
func Generate(opts Options) domain.Dataset {
	opts = opts.withDefaults()
	g := generator{rng: rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15))}
	var ds domain.Dataset

	var nextActivity int64
	addActivity := func(parent *int64) int64 {
		nextActivity++
		ds.Activities = append(ds.Activities, domain.Activity{
			ID:       nextActivity,
			Name:     g.pick(adjectives) + " " + g.pick(nouns),
			ParentID: parent,
		})
		return nextActivity
	}
	for range opts.Roots {
		root := addActivity(nil)
		for range opts.ChildrenPerNode {
			child := addActivity(&root)
			for range opts.ChildrenPerNode {
				addActivity(&child)
			}
		}
	}

	for c := range opts.Cities {
		cityID := int64(c + 1)
		ds.Cities = append(ds.Cities, domain.City{ID: cityID, Name: g.pick(cityRoots) + g.pick(citySuffix)})
		for range opts.StreetsPerCity {
			streetID := int64(len(ds.Streets) + 1)
			ds.Streets = append(ds.Streets, domain.Street{
				ID:     streetID,
				Name:   g.pick(lastNames) + " " + g.pick(streetKind),
				CityID: cityID,
			})
			for range opts.BuildingsPerStreet {
				ds.Buildings = append(ds.Buildings, domain.Building{
					ID:        int64(len(ds.Buildings) + 1),
					Name:      fmt.Sprintf("%d", 1+g.rng.IntN(200)),
					StreetID:  streetID,
					Latitude:  g.coordinate(90),
					Longitude: g.coordinate(180),
				})
			}
		}
	}

	types := []domain.OrganisationType{domain.OrganisationTypeLLC, domain.OrganisationTypeIP}
	for o := range opts.Organisations {
		orgID := int64(o + 1)
		addressID := int64(len(ds.Addresses) + 1)
		ds.Addresses = append(ds.Addresses, domain.OrganisationAddress{
			ID:         addressID,
			BuildingID: ds.Buildings[g.rng.IntN(len(ds.Buildings))].ID,
			Office:     fmt.Sprintf("Office %d", 1+g.rng.IntN(500)),
		})
		ds.Organisations = append(ds.Organisations, domain.Organisation{
			ID:        orgID,
			Type:      types[g.rng.IntN(len(types))],
			Name:      g.pick(firstNames) + " " + g.pick(lastNames),
			AddressID: addressID,
		})
		for range g.rng.IntN(opts.MaxPhones + 1) {
			ds.Phones = append(ds.Phones, domain.Phone{
				ID:             int64(len(ds.Phones) + 1),
				Phone:          g.phone(),
				OrganisationID: orgID,
			})
		}
		for range g.rng.IntN(opts.MaxLinks + 1) {
			ds.OrganisationActivities = append(ds.OrganisationActivities, domain.OrganisationActivity{
				ID:             int64(len(ds.OrganisationActivities) + 1),
				OrganisationID: orgID,
				ActivityID:     ds.Activities[g.rng.IntN(len(ds.Activities))].ID,
			})
		}
	}
	return ds
}
