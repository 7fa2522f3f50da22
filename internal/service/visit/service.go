package visit

import (
	"context"
	"fmt"

	"github.com/jwalitptl/clinic-records/internal/model"
	"github.com/jwalitptl/clinic-records/internal/repository"
	"github.com/jwalitptl/clinic-records/internal/service/audit"
	apperrors "github.com/jwalitptl/clinic-records/pkg/errors"
	"github.com/jwalitptl/clinic-records/pkg/validator"
)

type VisitService interface {
	SaveVisit(ctx context.Context, patientID int64, fields model.VisitFields, labResults []model.PendingLabResult, prescriptions []model.PendingPrescription) (*model.SaveResult, error)
	UpdateVisit(ctx context.Context, visitID int64, fields model.VisitFields) error
	DeleteVisit(ctx context.Context, visitID int64) error
	GetVisit(ctx context.Context, visitID int64) (*model.VisitDetail, error)
	ListVisits(ctx context.Context, patientID int64) ([]*model.MedicalRecord, error)
	AddLabResult(ctx context.Context, visitID int64, pending model.PendingLabResult) (*model.TestResult, error)
	DeleteLabResult(ctx context.Context, id int64) error
	AddPrescription(ctx context.Context, visitID int64, pending model.PendingPrescription) (*model.Prescription, error)
	DeletePrescription(ctx context.Context, id int64) error
}

type Service struct {
	repo      repository.MedicalRecordRepository
	uow       repository.UnitOfWork
	validator validator.Validator
	auditor   *audit.Service
}

func NewService(repo repository.MedicalRecordRepository, uow repository.UnitOfWork, v validator.Validator, auditor *audit.Service) *Service {
	return &Service{
		repo:      repo,
		uow:       uow,
		validator: v,
		auditor:   auditor,
	}
}

// SaveVisit persists a new visit together with its pending lab results and
// prescriptions in one transaction. Any invalid line item, unknown catalog
// entry or store error rolls back the whole visit. The pending slices are
// never modified.
func (s *Service) SaveVisit(ctx context.Context, patientID int64, fields model.VisitFields, labResults []model.PendingLabResult, prescriptions []model.PendingPrescription) (*model.SaveResult, error) {
	result, err := s.saveVisit(ctx, patientID, fields, labResults, prescriptions)

	var visitID int64
	if result != nil {
		visitID = result.VisitID
	}
	if err := s.auditor.Log("save", "visit", visitID, err,
		"patient_id", patientID,
		"lab_results", len(labResults),
		"prescriptions", len(prescriptions),
	); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Service) saveVisit(ctx context.Context, patientID int64, fields model.VisitFields, labResults []model.PendingLabResult, prescriptions []model.PendingPrescription) (*model.SaveResult, error) {
	if patientID <= 0 {
		return nil, apperrors.ValidationFailed("patient_id", "a patient must be selected before saving a visit")
	}
	if err := s.validator.Validate(&fields); err != nil {
		return nil, err
	}

	result := &model.SaveResult{}
	err := s.uow.WithinTx(ctx, func(tx repository.Tx) error {
		found, err := tx.PatientExists(ctx, patientID)
		if err != nil {
			return err
		}
		if !found {
			return apperrors.NotFound("patient", nil)
		}

		record := &model.MedicalRecord{PatientID: patientID, VisitFields: fields}
		if err := tx.CreateMedicalRecord(ctx, record); err != nil {
			return err
		}

		for i, pending := range labResults {
			if _, err := s.insertLabResult(ctx, tx, record, pending); err != nil {
				return fmt.Errorf("lab result %d: %w", i+1, err)
			}
		}
		for i, pending := range prescriptions {
			if _, err := s.insertPrescription(ctx, tx, record, pending); err != nil {
				return fmt.Errorf("prescription %d: %w", i+1, err)
			}
		}

		result.VisitID = record.ID
		result.LabResults = len(labResults)
		result.Prescriptions = len(prescriptions)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Service) insertLabResult(ctx context.Context, tx repository.Tx, record *model.MedicalRecord, pending model.PendingLabResult) (*model.TestResult, error) {
	if err := s.validator.Validate(&pending); err != nil {
		return nil, err
	}
	found, err := tx.CatalogEntryExists(ctx, model.CatalogTestType, pending.TestTypeID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, apperrors.NotFound("test type", nil)
	}

	result := &model.TestResult{
		RecordID:   record.ID,
		TestTypeID: pending.TestTypeID,
		Result:     pending.Result,
		TestDate:   record.VisitDate,
		Notes:      pending.Notes,
	}
	if err := tx.CreateTestResult(ctx, result); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Service) insertPrescription(ctx context.Context, tx repository.Tx, record *model.MedicalRecord, pending model.PendingPrescription) (*model.Prescription, error) {
	if err := s.validator.Validate(&pending); err != nil {
		return nil, err
	}
	quantity, err := validator.ParseQuantity(pending.Quantity)
	if err != nil {
		return nil, apperrors.ValidationFailed("quantity", err.Error())
	}
	found, err := tx.CatalogEntryExists(ctx, model.CatalogMedicine, pending.MedicineID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, apperrors.NotFound("medicine", nil)
	}

	prescription := &model.Prescription{
		RecordID:     record.ID,
		MedicineID:   pending.MedicineID,
		Dosage:       pending.Dosage,
		Quantity:     quantity,
		Instructions: pending.Instructions,
	}
	if err := tx.CreatePrescription(ctx, prescription); err != nil {
		return nil, err
	}
	return prescription, nil
}

// UpdateVisit rewrites the scalar fields of an existing visit. Line items
// are left untouched.
func (s *Service) UpdateVisit(ctx context.Context, visitID int64, fields model.VisitFields) error {
	err := s.validator.Validate(&fields)
	if err == nil {
		err = s.repo.Update(ctx, &model.MedicalRecord{Base: model.Base{ID: visitID}, VisitFields: fields})
	}
	return s.auditor.Log("update", "visit", visitID, err)
}

func (s *Service) DeleteVisit(ctx context.Context, visitID int64) error {
	return s.auditor.Log("delete", "visit", visitID, s.repo.Delete(ctx, visitID))
}

func (s *Service) GetVisit(ctx context.Context, visitID int64) (*model.VisitDetail, error) {
	detail, err := s.repo.GetDetail(ctx, visitID)
	if err != nil {
		return nil, s.auditor.Log("get", "visit", visitID, fmt.Errorf("failed to get visit: %w", err))
	}
	return detail, nil
}

func (s *Service) ListVisits(ctx context.Context, patientID int64) ([]*model.MedicalRecord, error) {
	records, err := s.repo.List(ctx, patientID)
	if err != nil {
		return nil, s.auditor.Log("list", "visit", patientID, fmt.Errorf("failed to list visits: %w", err))
	}
	return records, nil
}

// AddLabResult attaches one lab result to an existing visit.
func (s *Service) AddLabResult(ctx context.Context, visitID int64, pending model.PendingLabResult) (*model.TestResult, error) {
	var result *model.TestResult
	err := s.uow.WithinTx(ctx, func(tx repository.Tx) error {
		record, err := tx.GetMedicalRecord(ctx, visitID)
		if err != nil {
			return err
		}
		result, err = s.insertLabResult(ctx, tx, record, pending)
		return err
	})

	var id int64
	if result != nil {
		id = result.ID
	}
	if err := s.auditor.Log("add", "lab_result", id, err, "visit_id", visitID); err != nil {
		return nil, err
	}
	return result, nil
}

// DeleteLabResult removes a lab result. Deleting one that no longer exists
// is not an error.
func (s *Service) DeleteLabResult(ctx context.Context, id int64) error {
	n, err := s.repo.DeleteTestResult(ctx, id)
	return s.auditor.Log("delete", "lab_result", id, err, "deleted", n)
}

// AddPrescription attaches one prescription to an existing visit.
func (s *Service) AddPrescription(ctx context.Context, visitID int64, pending model.PendingPrescription) (*model.Prescription, error) {
	var prescription *model.Prescription
	err := s.uow.WithinTx(ctx, func(tx repository.Tx) error {
		record, err := tx.GetMedicalRecord(ctx, visitID)
		if err != nil {
			return err
		}
		prescription, err = s.insertPrescription(ctx, tx, record, pending)
		return err
	})

	var id int64
	if prescription != nil {
		id = prescription.ID
	}
	if err := s.auditor.Log("add", "prescription", id, err, "visit_id", visitID); err != nil {
		return nil, err
	}
	return prescription, nil
}

// DeletePrescription removes a prescription. Deleting one that no longer
// exists is not an error.
func (s *Service) DeletePrescription(ctx context.Context, id int64) error {
	n, err := s.repo.DeletePrescription(ctx, id)
	return s.auditor.Log("delete", "prescription", id, err, "deleted", n)
}
