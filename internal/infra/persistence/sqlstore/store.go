package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"orgdirectory/pkg/domain"
)

var _ domain.ReadStore = (*Store)(nil)

// Store serves directory reads from a SQL database. Each View runs in its own
// transaction so a request observes a single snapshot.
type Store struct {
	db      *sql.DB
	dialect Dialect
}

// New wraps an open database. The caller keeps ownership of schema creation.
func New(db *sql.DB, d Dialect) *Store {
	return &Store{db: db, dialect: d}
}

// DB exposes the underlying sql.DB for integration testing hooks.
func (s *Store) DB() *sql.DB { return s.db }

// Dialect reports the SQL dialect in use.
func (s *Store) Dialect() Dialect { return s.dialect }

// Close releases the connection pool.
func (s *Store) Close() error { return s.db.Close() }

// View runs fn inside a read transaction.
func (s *Store) View(ctx context.Context, fn func(domain.Session) error) error {
	tx, err := s.db.BeginTx(ctx, s.dialect.txOptions())
	if err != nil {
		return fmt.Errorf("begin session: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := fn(&session{tx: tx, dialect: s.dialect}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit session: %w", err)
	}
	committed = true
	return nil
}

type session struct {
	tx      *sql.Tx
	dialect Dialect
}

func (s *session) ChildActivityIDs(ctx context.Context, parentIDs []int64) ([]int64, error) {
	if len(parentIDs) == 0 {
		return nil, nil
	}
	marks := make([]string, len(parentIDs))
	args := make([]any, len(parentIDs))
	for i, id := range parentIDs {
		marks[i] = s.dialect.placeholder(i + 1)
		args[i] = id
	}
	query := "SELECT id FROM activity WHERE parent_id IN (" + strings.Join(marks, ", ") + ") ORDER BY id"
	rows, err := s.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select child activities: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate activities: %w", err)
	}
	return ids, nil
}

func (s *session) FindActivity(ctx context.Context, id int64) (domain.Activity, bool, error) {
	query := "SELECT id, name, parent_id FROM activity WHERE id = " + s.dialect.placeholder(1)
	var (
		a      domain.Activity
		parent sql.NullInt64
	)
	err := s.tx.QueryRowContext(ctx, query, id).Scan(&a.ID, &a.Name, &parent)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Activity{}, false, nil
	}
	if err != nil {
		return domain.Activity{}, false, fmt.Errorf("select activity: %w", err)
	}
	if parent.Valid {
		p := parent.Int64
		a.ParentID = &p
	}
	return a, true, nil
}

func (s *session) SearchOrganisations(ctx context.Context, q domain.Query) ([]domain.OrganisationSummary, error) {
	query, args, err := buildSearchQuery(s.dialect, q)
	if err != nil {
		return nil, err
	}
	rows, err := s.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search organisations: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var out []domain.OrganisationSummary
	for rows.Next() {
		var (
			row domain.OrganisationSummary
			typ string
		)
		if err := rows.Scan(&row.ID, &typ, &row.Name); err != nil {
			return nil, fmt.Errorf("scan organisation: %w", err)
		}
		row.Type = domain.OrganisationType(typ)
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate organisations: %w", err)
	}
	return out, nil
}

const findOrganisationSQL = `SELECT o.id, o.type, o.name, o.address_id,
	a.building_id, a.office,
	b.name, b.street_id, b.latitude, b.longitude,
	s.name, s.city_id,
	c.name
FROM organisation o
JOIN organisation_address a ON a.id = o.address_id
JOIN building b ON b.id = a.building_id
JOIN street s ON s.id = b.street_id
JOIN city c ON c.id = s.city_id
WHERE o.id = `

func (s *session) FindOrganisation(ctx context.Context, id int64) (domain.AddressedOrganisation, bool, error) {
	var (
		rec domain.AddressedOrganisation
		typ string
	)
	err := s.tx.QueryRowContext(ctx, findOrganisationSQL+s.dialect.placeholder(1), id).Scan(
		&rec.Organisation.ID, &typ, &rec.Organisation.Name, &rec.Organisation.AddressID,
		&rec.Address.BuildingID, &rec.Address.Office,
		&rec.Building.Name, &rec.Building.StreetID, &rec.Building.Latitude, &rec.Building.Longitude,
		&rec.Street.Name, &rec.Street.CityID,
		&rec.City.Name,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.AddressedOrganisation{}, false, nil
	}
	if err != nil {
		return domain.AddressedOrganisation{}, false, fmt.Errorf("select organisation: %w", err)
	}
	rec.Organisation.Type = domain.OrganisationType(typ)
	rec.Address.ID = rec.Organisation.AddressID
	rec.Building.ID = rec.Address.BuildingID
	rec.Street.ID = rec.Building.StreetID
	rec.City.ID = rec.Street.CityID
	return rec, true, nil
}

func (s *session) ListPhones(ctx context.Context, organisationID int64) ([]domain.Phone, error) {
	query := "SELECT id, phone, organisation_id FROM phone WHERE organisation_id = " + s.dialect.placeholder(1) + " ORDER BY id"
	rows, err := s.tx.QueryContext(ctx, query, organisationID)
	if err != nil {
		return nil, fmt.Errorf("select phones: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var out []domain.Phone
	for rows.Next() {
		var p domain.Phone
		if err := rows.Scan(&p.ID, &p.Phone, &p.OrganisationID); err != nil {
			return nil, fmt.Errorf("scan phone: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate phones: %w", err)
	}
	return out, nil
}

func (s *session) ListActivityLinks(ctx context.Context, organisationID int64) ([]domain.OrganisationActivity, error) {
	query := "SELECT id, organisation_id, activity_id FROM organisation_activity WHERE organisation_id = " + s.dialect.placeholder(1) + " ORDER BY id"
	rows, err := s.tx.QueryContext(ctx, query, organisationID)
	if err != nil {
		return nil, fmt.Errorf("select activity links: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var out []domain.OrganisationActivity
	for rows.Next() {
		var l domain.OrganisationActivity
		if err := rows.Scan(&l.ID, &l.OrganisationID, &l.ActivityID); err != nil {
			return nil, fmt.Errorf("scan activity link: %w", err)
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate activity links: %w", err)
	}
	return out, nil
}
