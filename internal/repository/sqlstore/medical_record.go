package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/clinic-records/internal/model"
	apperrors "github.com/jwalitptl/clinic-records/pkg/errors"
)

const medicalRecordColumns = `id, patient_id, visit_date, diagnosis, symptoms, treatment, notes, doctor_name, created_date`

type medicalRecordRepository struct {
	BaseRepository
}

func (r *medicalRecordRepository) GetDetail(ctx context.Context, id int64) (_ *model.VisitDetail, err error) {
	defer r.track("medical_record.get_detail")(&err)

	record, err := getMedicalRecord(ctx, r.db, id)
	if err != nil {
		return nil, err
	}
	detail := &model.VisitDetail{
		Record:        *record,
		LabResults:    []model.TestResult{},
		Prescriptions: []model.Prescription{},
	}

	query := r.db.Rebind(`SELECT name FROM patients WHERE id = ?`)
	if err = r.db.GetContext(ctx, &detail.PatientName, query, record.PatientID); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to get patient name: %w", err)
	}

	query = r.db.Rebind(`
		SELECT tr.id, tr.record_id, tr.test_type_id, tt.name AS test_type_name,
		       tr.result, tr.test_date, tr.notes
		FROM test_results tr
		JOIN test_types tt ON tt.id = tr.test_type_id
		WHERE tr.record_id = ?
		ORDER BY tr.id
	`)
	if err = r.db.SelectContext(ctx, &detail.LabResults, query, id); err != nil {
		return nil, fmt.Errorf("failed to list test results: %w", err)
	}

	query = r.db.Rebind(`
		SELECT p.id, p.record_id, p.medicine_id, mt.name AS medicine_name,
		       p.dosage, p.quantity, p.instructions
		FROM prescriptions p
		JOIN medicine_types mt ON mt.id = p.medicine_id
		WHERE p.record_id = ?
		ORDER BY p.id
	`)
	if err = r.db.SelectContext(ctx, &detail.Prescriptions, query, id); err != nil {
		return nil, fmt.Errorf("failed to list prescriptions: %w", err)
	}

	return detail, nil
}

// List returns the visits of a patient, most recent visit date first.
func (r *medicalRecordRepository) List(ctx context.Context, patientID int64) (_ []*model.MedicalRecord, err error) {
	defer r.track("medical_record.list")(&err)

	// visit_date is dd/mm/yyyy, so order by its year, month and day parts.
	query := r.db.Rebind(`
		SELECT ` + medicalRecordColumns + `
		FROM medical_records
		WHERE patient_id = ?
		ORDER BY substr(visit_date, 7, 4) DESC, substr(visit_date, 4, 2) DESC,
		         substr(visit_date, 1, 2) DESC, id DESC
	`)
	records := []*model.MedicalRecord{}
	if err = r.db.SelectContext(ctx, &records, query, patientID); err != nil {
		return nil, fmt.Errorf("failed to list medical records: %w", err)
	}
	return records, nil
}

func (r *medicalRecordRepository) Update(ctx context.Context, record *model.MedicalRecord) (err error) {
	defer r.track("medical_record.update")(&err)

	query := r.db.Rebind(`
		UPDATE medical_records
		SET visit_date = ?, diagnosis = ?, symptoms = ?, treatment = ?, notes = ?, doctor_name = ?
		WHERE id = ?
	`)
	result, err := r.db.ExecContext(ctx, query,
		record.VisitDate,
		record.Diagnosis,
		record.Symptoms,
		record.Treatment,
		record.Notes,
		record.DoctorName,
		record.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update medical record: %w", err)
	}
	return expectOneRow(result, "visit")
}

func (r *medicalRecordRepository) Delete(ctx context.Context, id int64) (err error) {
	defer r.track("medical_record.delete")(&err)

	return r.deleteGuarded(ctx, "visit", "medical_records", id,
		dependent{table: "test_results", column: "record_id"},
		dependent{table: "prescriptions", column: "record_id"},
	)
}

func (r *medicalRecordRepository) DeleteTestResult(ctx context.Context, id int64) (_ int64, err error) {
	defer r.track("test_result.delete")(&err)
	return r.deleteLineItem(ctx, "test_results", id)
}

func (r *medicalRecordRepository) DeletePrescription(ctx context.Context, id int64) (_ int64, err error) {
	defer r.track("prescription.delete")(&err)
	return r.deleteLineItem(ctx, "prescriptions", id)
}

func (r *medicalRecordRepository) deleteLineItem(ctx context.Context, table string, id int64) (int64, error) {
	query := r.db.Rebind(fmt.Sprintf("DELETE FROM %s WHERE id = ?", table))
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return 0, fmt.Errorf("failed to delete from %s: %w", table, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}
	return rows, nil
}

func getMedicalRecord(ctx context.Context, q sqlx.ExtContext, id int64) (*model.MedicalRecord, error) {
	query := q.Rebind(`SELECT ` + medicalRecordColumns + ` FROM medical_records WHERE id = ?`)
	var record model.MedicalRecord
	if err := sqlx.GetContext(ctx, q, &record, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("visit", err)
		}
		return nil, fmt.Errorf("failed to get medical record: %w", err)
	}
	return &record, nil
}
