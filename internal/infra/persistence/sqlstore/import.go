package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"orgdirectory/pkg/domain"
)

// deleteOrder empties tables children first.
var deleteOrder = []string{
	"organisation_activity",
	"phone",
	"organisation",
	"organisation_address",
	"building",
	"street",
	"city",
	"activity",
}

// Import replaces the directory contents with ds in one transaction. The
// dataset is validated first so a bad file never leaves a partial load.
func (s *Store) Import(ctx context.Context, ds domain.Dataset) error {
	if err := ds.Validate(); err != nil {
		return fmt.Errorf("validate dataset: %w", err)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin import: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	for _, table := range deleteOrder {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	ins := inserter{tx: tx, dialect: s.dialect}
	for _, c := range ds.Cities {
		if err := ins.exec(ctx, "city", []string{"id", "name"}, c.ID, c.Name); err != nil {
			return err
		}
	}
	for _, st := range ds.Streets {
		if err := ins.exec(ctx, "street", []string{"id", "name", "city_id"}, st.ID, st.Name, st.CityID); err != nil {
			return err
		}
	}
	for _, b := range ds.Buildings {
		if err := ins.exec(ctx, "building", []string{"id", "name", "street_id", "latitude", "longitude"}, b.ID, b.Name, b.StreetID, b.Latitude, b.Longitude); err != nil {
			return err
		}
	}
	for _, a := range parentsFirst(ds.Activities) {
		var parent any
		if a.ParentID != nil {
			parent = *a.ParentID
		}
		if err := ins.exec(ctx, "activity", []string{"id", "name", "parent_id"}, a.ID, a.Name, parent); err != nil {
			return err
		}
	}
	for _, a := range ds.Addresses {
		if err := ins.exec(ctx, "organisation_address", []string{"id", "building_id", "office"}, a.ID, a.BuildingID, a.Office); err != nil {
			return err
		}
	}
	for _, o := range ds.Organisations {
		if err := ins.exec(ctx, "organisation", []string{"id", "type", "name", "address_id"}, o.ID, string(o.Type), o.Name, o.AddressID); err != nil {
			return err
		}
	}
	for _, p := range ds.Phones {
		if err := ins.exec(ctx, "phone", []string{"id", "phone", "organisation_id"}, p.ID, p.Phone, p.OrganisationID); err != nil {
			return err
		}
	}
	for _, l := range ds.OrganisationActivities {
		if err := ins.exec(ctx, "organisation_activity", []string{"id", "organisation_id", "activity_id"}, l.ID, l.OrganisationID, l.ActivityID); err != nil {
			return err
		}
	}

	for _, stmt := range s.dialect.resetSequences {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("reset sequence: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit import: %w", err)
	}
	committed = true
	return nil
}

type inserter struct {
	tx      *sql.Tx
	dialect Dialect
}

func (i inserter) exec(ctx context.Context, table string, cols []string, args ...any) error {
	marks := make([]string, len(cols))
	for n := range cols {
		marks[n] = i.dialect.placeholder(n + 1)
	}
	stmt := "INSERT INTO " + table + " (" + strings.Join(cols, ", ") + ") VALUES (" + strings.Join(marks, ", ") + ")"
	if _, err := i.tx.ExecContext(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert %s: %w", table, err)
	}
	return nil
}

// parentsFirst orders activities so every parent row precedes its children.
func parentsFirst(activities []domain.Activity) []domain.Activity {
	tree := domain.NewActivityTree(activities)
	out := make([]domain.Activity, 0, len(activities))
	for _, a := range activities {
		if a.ParentID != nil {
			continue
		}
		for _, id := range tree.Closure(a.ID) {
			if node, ok := tree.Get(id); ok {
				out = append(out, node)
			}
		}
	}
	return out
}
