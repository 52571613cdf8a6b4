package core

import (
	"strings"

	"orgdirectory/pkg/domain"
)

// FormatAddress renders the address chain as "city, street, building, office".
// Consumers parse this string, so order and separators are fixed.
func FormatAddress(city, street, building, office string) string {
	return strings.Join([]string{city, street, building, office}, ", ")
}

// AssembleDetail folds an organisation, its address chain, phones and activity
// links into the detail aggregate. Every link row yields one activity entry,
// including repeated links to the same activity.
func AssembleDetail(rec domain.AddressedOrganisation, phones []domain.Phone, links []domain.OrganisationActivity) domain.OrganisationDetail {
	detail := domain.OrganisationDetail{
		ID:         rec.Organisation.ID,
		Type:       rec.Organisation.Type,
		Name:       rec.Organisation.Name,
		Address:    FormatAddress(rec.City.Name, rec.Street.Name, rec.Building.Name, rec.Address.Office),
		Phones:     make([]domain.PhoneView, 0, len(phones)),
		Activities: make([]domain.ActivityRef, 0, len(links)),
	}
	for _, p := range phones {
		detail.Phones = append(detail.Phones, domain.PhoneView{Phone: p.Phone})
	}
	for _, l := range links {
		detail.Activities = append(detail.Activities, domain.ActivityRef{ID: l.ActivityID})
	}
	return detail
}
