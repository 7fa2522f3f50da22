package doctor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jwalitptl/clinic-records/internal/model"
	"github.com/jwalitptl/clinic-records/internal/repository"
	"github.com/jwalitptl/clinic-records/internal/service/audit"
	apperrors "github.com/jwalitptl/clinic-records/pkg/errors"
	"github.com/jwalitptl/clinic-records/pkg/security"
	"github.com/jwalitptl/clinic-records/pkg/validator"
)

type DoctorService interface {
	Register(ctx context.Context, req model.RegisterDoctorRequest) (*model.Doctor, error)
	VerifyCredentials(ctx context.Context, username, password string) (*model.Doctor, error)
	ListDoctors(ctx context.Context) ([]*model.Doctor, error)
}

type Service struct {
	repo      repository.DoctorRepository
	hasher    security.PasswordHasher
	validator validator.Validator
	auditor   *audit.Service
}

func NewService(repo repository.DoctorRepository, hasher security.PasswordHasher, v validator.Validator, auditor *audit.Service) *Service {
	return &Service{
		repo:      repo,
		hasher:    hasher,
		validator: v,
		auditor:   auditor,
	}
}

// Register stores a doctor with a bcrypt-hashed password. Usernames are
// unique.
func (s *Service) Register(ctx context.Context, req model.RegisterDoctorRequest) (*model.Doctor, error) {
	req.FullName = strings.TrimSpace(req.FullName)
	req.Username = strings.TrimSpace(req.Username)

	doctor, err := s.register(ctx, req)
	var id int64
	if doctor != nil {
		id = doctor.ID
	}
	if err := s.auditor.Log("register", "doctor", id, err, "username", req.Username); err != nil {
		return nil, err
	}
	return doctor, nil
}

func (s *Service) register(ctx context.Context, req model.RegisterDoctorRequest) (*model.Doctor, error) {
	if err := s.validator.Validate(&req); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		if errors.Is(err, security.ErrPasswordTooShort) {
			return nil, apperrors.ValidationFailed("password", err.Error())
		}
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	doctor := &model.Doctor{
		FullName:     req.FullName,
		Username:     req.Username,
		PasswordHash: hash,
	}
	if err := s.repo.Create(ctx, doctor); err != nil {
		return nil, err
	}
	return doctor, nil
}

// VerifyCredentials checks a username and password pair. Nothing else in
// the application requires a verified doctor.
func (s *Service) VerifyCredentials(ctx context.Context, username, password string) (*model.Doctor, error) {
	doctor, err := s.repo.GetByUsername(ctx, strings.TrimSpace(username))
	if err == nil {
		if cmpErr := s.hasher.Compare(doctor.PasswordHash, password); cmpErr != nil {
			err = cmpErr
			if errors.Is(cmpErr, security.ErrPasswordMismatch) {
				err = apperrors.ValidationFailed("password", "invalid username or password")
			}
		}
	}

	var id int64
	if doctor != nil {
		id = doctor.ID
	}
	if err := s.auditor.Log("verify", "doctor", id, err, "username", username); err != nil {
		return nil, err
	}
	return doctor, nil
}

func (s *Service) ListDoctors(ctx context.Context) ([]*model.Doctor, error) {
	doctors, err := s.repo.List(ctx)
	if err != nil {
		return nil, s.auditor.Log("list", "doctor", 0, fmt.Errorf("failed to list doctors: %w", err))
	}
	return doctors, nil
}
