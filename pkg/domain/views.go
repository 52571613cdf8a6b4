package domain

// OrganisationSummary is one entry of a search result.
type OrganisationSummary struct {
	ID   int64            `json:"id"`
	Type OrganisationType `json:"type"`
	Name string           `json:"name"`
}

// PhoneView is a phone reduced to its number.
type PhoneView struct {
	Phone string `json:"phone"`
}

// ActivityRef is an activity link reduced to the linked activity id.
type ActivityRef struct {
	ID int64 `json:"id"`
}

// OrganisationDetail is the aggregate returned for a single organisation.
type OrganisationDetail struct {
	ID         int64            `json:"id"`
	Type       OrganisationType `json:"type"`
	Name       string           `json:"name"`
	Address    string           `json:"address"`
	Phones     []PhoneView      `json:"phones"`
	Activities []ActivityRef    `json:"activities"`
}
