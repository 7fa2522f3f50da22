package repository

import (
	"context"

	"github.com/jwalitptl/clinic-records/internal/model"
)

// All repository interfaces in one file
type (
	// PatientRepository handles the patient registry
	PatientRepository interface {
		Create(ctx context.Context, patient *model.Patient) error
		Get(ctx context.Context, id int64) (*model.Patient, error)
		Update(ctx context.Context, patient *model.Patient) error
		// Delete refuses with DependencyExists while any visit references
		// the patient.
		Delete(ctx context.Context, id int64) error
		List(ctx context.Context, filters *model.PatientFilters) ([]*model.Patient, error)
	}

	MedicalRecordRepository interface {
		GetDetail(ctx context.Context, id int64) (*model.VisitDetail, error)
		List(ctx context.Context, patientID int64) ([]*model.MedicalRecord, error)
		Update(ctx context.Context, record *model.MedicalRecord) error
		// Delete refuses with DependencyExists while any lab result or
		// prescription references the visit.
		Delete(ctx context.Context, id int64) error
		// DeleteTestResult and DeletePrescription return the number of rows
		// removed; zero is not an error.
		DeleteTestResult(ctx context.Context, id int64) (int64, error)
		DeletePrescription(ctx context.Context, id int64) (int64, error)
	}

	CatalogRepository interface {
		Create(ctx context.Context, entry *model.CatalogEntry) error
		Get(ctx context.Context, kind model.CatalogKind, id int64) (*model.CatalogEntry, error)
		Update(ctx context.Context, entry *model.CatalogEntry) error
		// Delete refuses with DependencyExists while any line item
		// references the entry.
		Delete(ctx context.Context, kind model.CatalogKind, id int64) error
		List(ctx context.Context, kind model.CatalogKind) ([]*model.CatalogEntry, error)
	}

	DoctorRepository interface {
		Create(ctx context.Context, doctor *model.Doctor) error
		GetByUsername(ctx context.Context, username string) (*model.Doctor, error)
		List(ctx context.Context) ([]*model.Doctor, error)
	}

	StatsRepository interface {
		// Compute counts visits for the given day (dd/mm/yyyy) and month
		// (mm/yyyy) along with the totals and the per-registration-month
		// breakdown.
		Compute(ctx context.Context, today, month string) (*model.Stats, error)
	}

	// Tx is the set of reads and writes available inside one store
	// transaction.
	Tx interface {
		PatientExists(ctx context.Context, id int64) (bool, error)
		CatalogEntryExists(ctx context.Context, kind model.CatalogKind, id int64) (bool, error)
		GetMedicalRecord(ctx context.Context, id int64) (*model.MedicalRecord, error)
		CreateMedicalRecord(ctx context.Context, record *model.MedicalRecord) error
		CreateTestResult(ctx context.Context, result *model.TestResult) error
		CreatePrescription(ctx context.Context, prescription *model.Prescription) error
	}

	// UnitOfWork runs fn inside a transaction, committing when fn returns
	// nil and rolling back otherwise.
	UnitOfWork interface {
		WithinTx(ctx context.Context, fn func(tx Tx) error) error
	}
)
