// Package testfixture hosts the canonical directory dataset shared by storage,
// engine and HTTP tests so that every backend is checked against the same rows.
package testfixture

import "orgdirectory/pkg/domain"

// Activity ids of the fixture forest:
//
//	Food(1) ─┬─ Meat(2) ─┬─ Beef(4)
//	         │           └─ Pork(5)
//	         └─ Dairy(3) ── Cheese(6)
//	Cars(7) ─┬─ Trucks(8)
//	         └─ Parts(9) ── Tyres(10)
const (
	ActivityFood   int64 = 1
	ActivityMeat   int64 = 2
	ActivityDairy  int64 = 3
	ActivityBeef   int64 = 4
	ActivityPork   int64 = 5
	ActivityCheese int64 = 6
	ActivityCars   int64 = 7
	ActivityTrucks int64 = 8
	ActivityParts  int64 = 9
	ActivityTyres  int64 = 10
)

// Organisation ids of the fixture.
const (
	OrgHornsAndHooves int64 = 1 // Main St 12; phones 2; links Beef, Beef, Cheese
	OrgMilkWay        int64 = 2 // Main St 12; links Dairy
	OrgMeatMarket     int64 = 3 // Elm St 7a; links Meat, Pork
	OrgAutoParts      int64 = 4 // Ocean Ave 1; links Tyres, Trucks; Cyrillic name
	OrgQuietCorner    int64 = 5 // Main St 12; no phones, no links
)

// Building ids of the fixture.
const (
	BuildingMainSt12 int64 = 1
	BuildingElmSt7a  int64 = 2
	BuildingOcean1   int64 = 3
)

// MissingID is an id that no fixture row uses.
const MissingID int64 = 999999

func parent(id int64) *int64 { return &id }

// Directory returns a fresh copy of the fixture dataset.
func Directory() domain.Dataset {
	return domain.Dataset{
		Cities: []domain.City{
			{ID: 1, Name: "Springfield"},
			{ID: 2, Name: "Shelbyville"},
		},
		Streets: []domain.Street{
			{ID: 1, Name: "Main St", CityID: 1},
			{ID: 2, Name: "Elm St", CityID: 1},
			{ID: 3, Name: "Ocean Ave", CityID: 2},
		},
		Buildings: []domain.Building{
			{ID: BuildingMainSt12, Name: "12", StreetID: 1, Latitude: 55.75, Longitude: 37.61},
			{ID: BuildingElmSt7a, Name: "7a", StreetID: 2, Latitude: 55.8, Longitude: 37.7},
			{ID: BuildingOcean1, Name: "1", StreetID: 3, Latitude: 59.93, Longitude: 30.33},
		},
		Activities: []domain.Activity{
			{ID: ActivityFood, Name: "Food"},
			{ID: ActivityMeat, Name: "Meat", ParentID: parent(ActivityFood)},
			{ID: ActivityDairy, Name: "Dairy", ParentID: parent(ActivityFood)},
			{ID: ActivityBeef, Name: "Beef", ParentID: parent(ActivityMeat)},
			{ID: ActivityPork, Name: "Pork", ParentID: parent(ActivityMeat)},
			{ID: ActivityCheese, Name: "Cheese", ParentID: parent(ActivityDairy)},
			{ID: ActivityCars, Name: "Cars"},
			{ID: ActivityTrucks, Name: "Trucks", ParentID: parent(ActivityCars)},
			{ID: ActivityParts, Name: "Parts", ParentID: parent(ActivityCars)},
			{ID: ActivityTyres, Name: "Tyres", ParentID: parent(ActivityParts)},
		},
		Addresses: []domain.OrganisationAddress{
			{ID: 1, BuildingID: BuildingMainSt12, Office: "Suite 4"},
			{ID: 2, BuildingID: BuildingMainSt12, Office: "Office 10"},
			{ID: 3, BuildingID: BuildingElmSt7a, Office: "Floor 2"},
			{ID: 4, BuildingID: BuildingOcean1, Office: "Room 1"},
		},
		Organisations: []domain.Organisation{
			{ID: OrgHornsAndHooves, Type: domain.OrganisationTypeLLC, Name: "Horns & Hooves", AddressID: 1},
			{ID: OrgMilkWay, Type: domain.OrganisationTypeIP, Name: "Milk_Way 100%", AddressID: 2},
			{ID: OrgMeatMarket, Type: domain.OrganisationTypeLLC, Name: "Meat Market", AddressID: 3},
			{ID: OrgAutoParts, Type: domain.OrganisationTypeLLC, Name: "Ёжик Автозапчасти", AddressID: 4},
			{ID: OrgQuietCorner, Type: domain.OrganisationTypeIP, Name: "Quiet Corner", AddressID: 2},
		},
		Phones: []domain.Phone{
			{ID: 1, Phone: "2-222-222", OrganisationID: OrgHornsAndHooves},
			{ID: 2, Phone: "3-333-333", OrganisationID: OrgHornsAndHooves},
			{ID: 3, Phone: "8-923-666-1313", OrganisationID: OrgMilkWay},
			{ID: 4, Phone: "+7-900-000", OrganisationID: OrgAutoParts},
		},
		OrganisationActivities: []domain.OrganisationActivity{
			{ID: 1, OrganisationID: OrgHornsAndHooves, ActivityID: ActivityBeef},
			{ID: 2, OrganisationID: OrgHornsAndHooves, ActivityID: ActivityBeef},
			{ID: 3, OrganisationID: OrgHornsAndHooves, ActivityID: ActivityCheese},
			{ID: 4, OrganisationID: OrgMilkWay, ActivityID: ActivityDairy},
			{ID: 5, OrganisationID: OrgMeatMarket, ActivityID: ActivityMeat},
			{ID: 6, OrganisationID: OrgMeatMarket, ActivityID: ActivityPork},
			{ID: 7, OrganisationID: OrgAutoParts, ActivityID: ActivityTyres},
			{ID: 8, OrganisationID: OrgAutoParts, ActivityID: ActivityTrucks},
		},
	}
}
