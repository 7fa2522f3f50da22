package patient

import (
	"context"
	"fmt"
	"strings"

	"github.com/jwalitptl/clinic-records/internal/model"
	"github.com/jwalitptl/clinic-records/internal/repository"
	"github.com/jwalitptl/clinic-records/internal/service/audit"
	"github.com/jwalitptl/clinic-records/pkg/validator"
)

type PatientService interface {
	CreatePatient(ctx context.Context, patient *model.Patient) error
	GetPatient(ctx context.Context, id int64) (*model.Patient, error)
	UpdatePatient(ctx context.Context, patient *model.Patient) error
	DeletePatient(ctx context.Context, id int64) error
	ListPatients(ctx context.Context, filters *model.PatientFilters) ([]*model.Patient, error)
	SearchPatients(ctx context.Context, term string) ([]*model.Patient, error)
}

type Service struct {
	repo      repository.PatientRepository
	validator validator.Validator
	auditor   *audit.Service
}

func NewService(repo repository.PatientRepository, v validator.Validator, auditor *audit.Service) *Service {
	return &Service{
		repo:      repo,
		validator: v,
		auditor:   auditor,
	}
}

func (s *Service) CreatePatient(ctx context.Context, patient *model.Patient) error {
	normalize(patient)
	err := s.validator.Validate(patient)
	if err == nil {
		err = s.repo.Create(ctx, patient)
	}
	return s.auditor.Log("create", "patient", patient.ID, err)
}

func (s *Service) GetPatient(ctx context.Context, id int64) (*model.Patient, error) {
	patient, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, s.auditor.Log("get", "patient", id, fmt.Errorf("failed to get patient: %w", err))
	}
	return patient, nil
}

// UpdatePatient rewrites every editable field; created_date is kept.
func (s *Service) UpdatePatient(ctx context.Context, patient *model.Patient) error {
	normalize(patient)
	err := s.validator.Validate(patient)
	if err == nil {
		err = s.repo.Update(ctx, patient)
	}
	return s.auditor.Log("update", "patient", patient.ID, err)
}

// DeletePatient removes a patient that has no visits.
func (s *Service) DeletePatient(ctx context.Context, id int64) error {
	return s.auditor.Log("delete", "patient", id, s.repo.Delete(ctx, id))
}

func (s *Service) ListPatients(ctx context.Context, filters *model.PatientFilters) ([]*model.Patient, error) {
	patients, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, s.auditor.Log("list", "patient", 0, fmt.Errorf("failed to list patients: %w", err))
	}
	return patients, nil
}

// SearchPatients matches term against name, phone and address, ignoring
// case. An empty term lists everyone.
func (s *Service) SearchPatients(ctx context.Context, term string) ([]*model.Patient, error) {
	return s.ListPatients(ctx, &model.PatientFilters{SearchTerm: term})
}

func normalize(p *model.Patient) {
	p.Name = strings.TrimSpace(p.Name)
	p.BirthDate = strings.TrimSpace(p.BirthDate)
	p.Gender = strings.TrimSpace(p.Gender)
	p.Phone = strings.TrimSpace(p.Phone)
	p.Address = strings.TrimSpace(p.Address)
}
