package httpapi

import (
	"math"
	"net/url"
	"strconv"

	"orgdirectory/pkg/domain"
)

// MaxPageSize bounds the size parameter of the list endpoint.
const MaxPageSize = 500

func intParsing(field string) FieldError {
	return FieldError{Field: field, Message: "Input should be a valid integer, unable to parse string as an integer", Type: "int_parsing"}
}

func parseID(raw string) (int64, FieldError, bool) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, intParsing("organisation_id"), false
	}
	return id, FieldError{}, true
}

// parseListQuery collects every parameter error instead of stopping at the
// first one. Pagination applies only when size is sent.
func parseListQuery(q url.Values) (domain.OrganisationFilter, domain.Page, []FieldError) {
	var (
		f       domain.OrganisationFilter
		details []FieldError
	)
	if q.Has("name") {
		name := q.Get("name")
		f.Name = &name
	}
	intParam := func(field string) *int64 {
		if !q.Has(field) {
			return nil
		}
		v, err := strconv.ParseInt(q.Get(field), 10, 64)
		if err != nil {
			details = append(details, intParsing(field))
			return nil
		}
		return &v
	}
	floatParam := func(field string) *float64 {
		if !q.Has(field) {
			return nil
		}
		v, err := strconv.ParseFloat(q.Get(field), 64)
		if err != nil {
			details = append(details, FieldError{Field: field, Message: "Input should be a valid decimal", Type: "decimal_parsing"})
			return nil
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			details = append(details, FieldError{Field: field, Message: "Input should be a finite number", Type: "finite_number"})
			return nil
		}
		return &v
	}
	f.ActivityID = intParam("activity_id")
	f.BuildingID = intParam("building_id")
	f.LatitudeFrom = floatParam("latitude_from")
	f.LatitudeTo = floatParam("latitude_to")
	f.LongitudeFrom = floatParam("longitude_from")
	f.LongitudeTo = floatParam("longitude_to")

	pageNo := intParam("page")
	size := intParam("size")
	if pageNo != nil && *pageNo < 1 {
		details = append(details, FieldError{Field: "page", Message: "Input should be greater than or equal to 1", Type: "greater_than_equal"})
	}
	if size != nil && *size < 1 {
		details = append(details, FieldError{Field: "size", Message: "Input should be greater than or equal to 1", Type: "greater_than_equal"})
	}
	if size != nil && *size > MaxPageSize {
		details = append(details, FieldError{Field: "size", Message: "Input should be less than or equal to 500", Type: "less_than_equal"})
	}
	var page domain.Page
	if len(details) == 0 && size != nil {
		n := int64(1)
		if pageNo != nil {
			n = *pageNo
		}
		offset := int64(math.MaxInt32)
		if n-1 < math.MaxInt32 / *size {
			offset = (n - 1) * *size
		}
		page = domain.Page{Limit: int(*size), Offset: int(offset)}
	}
	return f, page, details
}
