package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/doug-martin/goqu/v9"

	"github.com/jwalitptl/clinic-records/internal/model"
	apperrors "github.com/jwalitptl/clinic-records/pkg/errors"
)

var patientColumns = []interface{}{"id", "name", "birth_date", "gender", "phone", "address", "created_date"}

type patientRepository struct {
	BaseRepository
}

func (r *patientRepository) Create(ctx context.Context, patient *model.Patient) (err error) {
	defer r.track("patient.create")(&err)

	query := r.db.Rebind(`
		INSERT INTO patients (name, birth_date, gender, phone, address, created_date)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id
	`)
	patient.CreatedDate = r.timestamp()

	err = r.db.QueryRowxContext(ctx, query,
		patient.Name,
		patient.BirthDate,
		patient.Gender,
		patient.Phone,
		patient.Address,
		patient.CreatedDate,
	).Scan(&patient.ID)
	if err != nil {
		return fmt.Errorf("failed to create patient: %w", err)
	}
	return nil
}

func (r *patientRepository) Get(ctx context.Context, id int64) (_ *model.Patient, err error) {
	defer r.track("patient.get")(&err)

	query := r.db.Rebind(`
		SELECT id, name, birth_date, gender, phone, address, created_date
		FROM patients WHERE id = ?
	`)
	var patient model.Patient
	if err = r.db.GetContext(ctx, &patient, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("patient", err)
		}
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}
	return &patient, nil
}

func (r *patientRepository) Update(ctx context.Context, patient *model.Patient) (err error) {
	defer r.track("patient.update")(&err)

	query := r.db.Rebind(`
		UPDATE patients
		SET name = ?, birth_date = ?, gender = ?, phone = ?, address = ?
		WHERE id = ?
	`)
	result, err := r.db.ExecContext(ctx, query,
		patient.Name,
		patient.BirthDate,
		patient.Gender,
		patient.Phone,
		patient.Address,
		patient.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update patient: %w", err)
	}
	return expectOneRow(result, "patient")
}

func (r *patientRepository) Delete(ctx context.Context, id int64) (err error) {
	defer r.track("patient.delete")(&err)

	return r.deleteGuarded(ctx, "patient", "patients", id,
		dependent{table: "medical_records", column: "patient_id"},
	)
}

// List returns every patient newest first, or the patients whose name,
// phone or address contains the search term (case-insensitive) by name.
func (r *patientRepository) List(ctx context.Context, filters *model.PatientFilters) (_ []*model.Patient, err error) {
	defer r.track("patient.list")(&err)

	ds := r.dialect.From("patients").Select(patientColumns...)

	term := ""
	if filters != nil {
		term = strings.TrimSpace(filters.SearchTerm)
	}
	if term != "" {
		pattern := "%" + term + "%"
		ds = ds.Where(goqu.Or(
			goqu.C("name").ILike(pattern),
			goqu.C("phone").ILike(pattern),
			goqu.C("address").ILike(pattern),
		)).Order(goqu.C("name").Asc(), goqu.C("id").Asc())
	} else {
		ds = ds.Order(goqu.C("created_date").Desc(), goqu.C("id").Desc())
	}

	query, args, err := ds.Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("failed to build patient query: %w", err)
	}

	patients := []*model.Patient{}
	if err = r.db.SelectContext(ctx, &patients, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}
	return patients, nil
}
