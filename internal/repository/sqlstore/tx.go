package sqlstore

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/clinic-records/internal/model"
	"github.com/jwalitptl/clinic-records/internal/repository"
)

// WithinTx implements repository.UnitOfWork.
func (s *Store) WithinTx(ctx context.Context, fn func(tx repository.Tx) error) (err error) {
	defer s.track("tx")(&err)

	return s.WithTx(ctx, func(tx *sqlx.Tx) error {
		return fn(&txStore{tx: tx, timestamp: s.timestamp})
	})
}

type txStore struct {
	tx        *sqlx.Tx
	timestamp func() string
}

func (t *txStore) PatientExists(ctx context.Context, id int64) (bool, error) {
	return exists(ctx, t.tx, "patients", id)
}

func (t *txStore) CatalogEntryExists(ctx context.Context, kind model.CatalogKind, id int64) (bool, error) {
	table, err := tableFor(kind)
	if err != nil {
		return false, err
	}
	return exists(ctx, t.tx, table.name, id)
}

func (t *txStore) GetMedicalRecord(ctx context.Context, id int64) (*model.MedicalRecord, error) {
	return getMedicalRecord(ctx, t.tx, id)
}

func (t *txStore) CreateMedicalRecord(ctx context.Context, record *model.MedicalRecord) error {
	query := t.tx.Rebind(`
		INSERT INTO medical_records (
			patient_id, visit_date, diagnosis, symptoms, treatment, notes, doctor_name, created_date
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`)
	record.CreatedDate = t.timestamp()

	err := t.tx.QueryRowxContext(ctx, query,
		record.PatientID,
		record.VisitDate,
		record.Diagnosis,
		record.Symptoms,
		record.Treatment,
		record.Notes,
		record.DoctorName,
		record.CreatedDate,
	).Scan(&record.ID)
	if err != nil {
		return fmt.Errorf("failed to create medical record: %w", err)
	}
	return nil
}

func (t *txStore) CreateTestResult(ctx context.Context, result *model.TestResult) error {
	query := t.tx.Rebind(`
		INSERT INTO test_results (record_id, test_type_id, result, test_date, notes)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id
	`)
	err := t.tx.QueryRowxContext(ctx, query,
		result.RecordID,
		result.TestTypeID,
		result.Result,
		result.TestDate,
		result.Notes,
	).Scan(&result.ID)
	if err != nil {
		return fmt.Errorf("failed to create test result: %w", err)
	}
	return nil
}

func (t *txStore) CreatePrescription(ctx context.Context, prescription *model.Prescription) error {
	query := t.tx.Rebind(`
		INSERT INTO prescriptions (record_id, medicine_id, dosage, quantity, instructions)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id
	`)
	err := t.tx.QueryRowxContext(ctx, query,
		prescription.RecordID,
		prescription.MedicineID,
		prescription.Dosage,
		prescription.Quantity,
		prescription.Instructions,
	).Scan(&prescription.ID)
	if err != nil {
		return fmt.Errorf("failed to create prescription: %w", err)
	}
	return nil
}
