package sqlstore

import (
	"fmt"
	"strings"

	"orgdirectory/pkg/domain"
)

const (
	joinAddress  = "JOIN organisation_address a ON a.id = o.address_id"
	joinBuilding = "JOIN building b ON b.id = a.building_id"
)

// escapeLike makes every %, _ and \ in s match literally under ESCAPE '\'.
func escapeLike(s string) string {
	if !strings.ContainsAny(s, `%_\`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 4)
	for _, r := range s {
		if r == '%' || r == '_' || r == '\\' {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

type searchBuilder struct {
	dialect Dialect
	joins   []string
	joined  map[string]bool
	where   []string
	args    []any
}

func (b *searchBuilder) arg(v any) string {
	b.args = append(b.args, v)
	return b.dialect.placeholder(len(b.args))
}

func (b *searchBuilder) join(clause string) {
	if b.joined[clause] {
		return
	}
	b.joined[clause] = true
	b.joins = append(b.joins, clause)
}

func (b *searchBuilder) in(ids []int64) string {
	marks := make([]string, len(ids))
	for i, id := range ids {
		marks[i] = b.arg(id)
	}
	return strings.Join(marks, ", ")
}

// buildSearchQuery translates the predicate list into one SELECT. Each
// organisation appears at most once because activity matching is a semi-join
// and the address joins are one-to-one.
func buildSearchQuery(d Dialect, q domain.Query) (string, []any, error) {
	b := &searchBuilder{dialect: d, joined: map[string]bool{}}
	for _, p := range q.Predicates {
		switch p.Kind {
		case domain.PredicateNameContains:
			pattern := "%" + escapeLike(strings.ToLower(p.Text)) + "%"
			b.where = append(b.where, b.dialect.lowerFunc()+"(o.name) LIKE "+b.arg(pattern)+` ESCAPE '\'`)
		case domain.PredicateActivityIn:
			if len(p.IDs) == 0 {
				b.where = append(b.where, "1 = 0")
				continue
			}
			b.where = append(b.where, "o.id IN (SELECT oa.organisation_id FROM organisation_activity oa WHERE oa.activity_id IN ("+b.in(p.IDs)+"))")
		case domain.PredicateBuildingEquals:
			b.join(joinAddress)
			b.where = append(b.where, "a.building_id = "+b.arg(p.ID))
		case domain.PredicateWithinBox:
			b.join(joinAddress)
			b.join(joinBuilding)
			b.where = append(b.where,
				"b.latitude BETWEEN "+b.arg(p.Box.LatitudeFrom)+" AND "+b.arg(p.Box.LatitudeTo),
				"b.longitude BETWEEN "+b.arg(p.Box.LongitudeFrom)+" AND "+b.arg(p.Box.LongitudeTo),
			)
		default:
			return "", nil, fmt.Errorf("unsupported predicate %q", p.Kind)
		}
	}

	var sb strings.Builder
	sb.WriteString("SELECT o.id, o.type, o.name FROM organisation o")
	for _, j := range b.joins {
		sb.WriteString(" ")
		sb.WriteString(j)
	}
	if len(b.where) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(b.where, " AND "))
	}
	sb.WriteString(" ORDER BY o.id")
	switch {
	case q.Page.Limit > 0:
		sb.WriteString(" LIMIT " + b.arg(q.Page.Limit))
	case q.Page.Offset > 0:
		sb.WriteString(" LIMIT " + d.limitAll)
	}
	if q.Page.Offset > 0 {
		sb.WriteString(" OFFSET " + b.arg(q.Page.Offset))
	}
	return sb.String(), b.args, nil
}
