package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jwalitptl/clinic-records/internal/model"
	apperrors "github.com/jwalitptl/clinic-records/pkg/errors"
)

// catalogTable describes where a catalog kind lives and what references it.
type catalogTable struct {
	name     string
	resource string
	usedBy   dependent
}

var catalogTables = map[model.CatalogKind]catalogTable{
	model.CatalogTestType: {
		name:     "test_types",
		resource: "test type",
		usedBy:   dependent{table: "test_results", column: "test_type_id"},
	},
	model.CatalogMedicine: {
		name:     "medicine_types",
		resource: "medicine",
		usedBy:   dependent{table: "prescriptions", column: "medicine_id"},
	},
}

func tableFor(kind model.CatalogKind) (catalogTable, error) {
	t, ok := catalogTables[kind]
	if !ok {
		return catalogTable{}, apperrors.ValidationFailed("kind", fmt.Sprintf("unknown catalog kind %q", kind))
	}
	return t, nil
}

type catalogRepository struct {
	BaseRepository
}

func (r *catalogRepository) Create(ctx context.Context, entry *model.CatalogEntry) (err error) {
	defer r.track("catalog.create")(&err)

	t, err := tableFor(entry.Kind)
	if err != nil {
		return err
	}
	query := r.db.Rebind(fmt.Sprintf(`INSERT INTO %s (name, description) VALUES (?, ?) RETURNING id`, t.name))
	if err = r.db.QueryRowxContext(ctx, query, entry.Name, entry.Description).Scan(&entry.ID); err != nil {
		return fmt.Errorf("failed to create %s: %w", t.resource, err)
	}
	return nil
}

func (r *catalogRepository) Get(ctx context.Context, kind model.CatalogKind, id int64) (_ *model.CatalogEntry, err error) {
	defer r.track("catalog.get")(&err)

	t, err := tableFor(kind)
	if err != nil {
		return nil, err
	}
	query := r.db.Rebind(fmt.Sprintf(`SELECT id, name, description FROM %s WHERE id = ?`, t.name))
	var entry model.CatalogEntry
	if err = r.db.GetContext(ctx, &entry, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound(t.resource, err)
		}
		return nil, fmt.Errorf("failed to get %s: %w", t.resource, err)
	}
	entry.Kind = kind
	return &entry, nil
}

func (r *catalogRepository) Update(ctx context.Context, entry *model.CatalogEntry) (err error) {
	defer r.track("catalog.update")(&err)

	t, err := tableFor(entry.Kind)
	if err != nil {
		return err
	}
	query := r.db.Rebind(fmt.Sprintf(`UPDATE %s SET name = ?, description = ? WHERE id = ?`, t.name))
	result, err := r.db.ExecContext(ctx, query, entry.Name, entry.Description, entry.ID)
	if err != nil {
		return fmt.Errorf("failed to update %s: %w", t.resource, err)
	}
	return expectOneRow(result, t.resource)
}

func (r *catalogRepository) Delete(ctx context.Context, kind model.CatalogKind, id int64) (err error) {
	defer r.track("catalog.delete")(&err)

	t, err := tableFor(kind)
	if err != nil {
		return err
	}
	return r.deleteGuarded(ctx, t.resource, t.name, id, t.usedBy)
}

func (r *catalogRepository) List(ctx context.Context, kind model.CatalogKind) (_ []*model.CatalogEntry, err error) {
	defer r.track("catalog.list")(&err)

	t, err := tableFor(kind)
	if err != nil {
		return nil, err
	}
	entries := []*model.CatalogEntry{}
	query := fmt.Sprintf(`SELECT id, name, description FROM %s ORDER BY name, id`, t.name)
	if err = r.db.SelectContext(ctx, &entries, query); err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", t.name, err)
	}
	for _, e := range entries {
		e.Kind = kind
	}
	return entries, nil
}
