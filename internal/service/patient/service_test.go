package patient

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-records/internal/model"
	"github.com/jwalitptl/clinic-records/internal/repository"
	"github.com/jwalitptl/clinic-records/internal/repository/sqlstore"
	"github.com/jwalitptl/clinic-records/internal/service/audit"
	"github.com/jwalitptl/clinic-records/internal/testutil"
	apperrors "github.com/jwalitptl/clinic-records/pkg/errors"
	"github.com/jwalitptl/clinic-records/pkg/logger"
	"github.com/jwalitptl/clinic-records/pkg/validator"
)

func newTestService(t *testing.T) (*Service, *sqlstore.Store) {
	t.Helper()
	store := testutil.NewStore(t)
	return NewService(store.Patients(), validator.New(), audit.NewService(logger.Nop(), nil)), store
}

func TestCreatePatient(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	patient := &model.Patient{Name: "  Kavya Menon ", BirthDate: "23/07/1991", Gender: "F", Phone: "9123456780", Address: "7 Temple Road"}
	require.NoError(t, svc.CreatePatient(ctx, patient))
	assert.NotZero(t, patient.ID)
	assert.NotEmpty(t, patient.CreatedDate)

	got, err := svc.GetPatient(ctx, patient.ID)
	require.NoError(t, err)
	assert.Equal(t, "Kavya Menon", got.Name)
	assert.Equal(t, "23/07/1991", got.BirthDate)
}

func TestCreatePatientValidation(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		patient model.Patient
		field   string
	}{
		{"missing name", model.Patient{Name: " "}, "name"},
		{"short phone", model.Patient{Name: "A", Phone: "12345"}, "phone"},
		{"letters in phone", model.Patient{Name: "A", Phone: "12345abcde"}, "phone"},
		{"impossible birth date", model.Patient{Name: "A", BirthDate: "31/04/1990"}, "birth_date"},
		{"iso birth date", model.Patient{Name: "A", BirthDate: "1990-04-01"}, "birth_date"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store := newTestService(t)
			err := svc.CreatePatient(ctx, &tt.patient)
			appErr, ok := apperrors.As(err)
			require.True(t, ok)
			assert.Equal(t, apperrors.ErrValidationFailed, appErr.Code)
			assert.Equal(t, tt.field, appErr.Field)
			assert.Zero(t, testutil.Count(t, store, "patients"))
		})
	}
}

func TestOptionalFieldsMayBeEmpty(t *testing.T) {
	svc, _ := newTestService(t)
	assert.NoError(t, svc.CreatePatient(context.Background(), &model.Patient{Name: "Only Name"}))
}

func TestUpdatePatient(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t)

	id := testutil.CreateTestPatient(t, store, "Before")
	patient, err := svc.GetPatient(ctx, id)
	require.NoError(t, err)

	patient.Name = "After"
	require.NoError(t, svc.UpdatePatient(ctx, patient))
	got, err := svc.GetPatient(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "After", got.Name)
	assert.Equal(t, patient.CreatedDate, got.CreatedDate)

	patient.ID = 999
	assert.True(t, apperrors.Is(svc.UpdatePatient(ctx, patient), apperrors.ErrNotFound))
}

func TestDeletePatientIsGuarded(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t)

	id := testutil.CreateTestPatient(t, store, "Has Visit")
	require.NoError(t, store.WithinTx(ctx, func(tx repository.Tx) error {
		return tx.CreateMedicalRecord(ctx, &model.MedicalRecord{
			PatientID:   id,
			VisitFields: model.VisitFields{VisitDate: "01/02/2024", Diagnosis: "Cough"},
		})
	}))

	err := svc.DeletePatient(ctx, id)
	assert.True(t, apperrors.Is(err, apperrors.ErrDependencyExists))
	assert.Equal(t, int64(1), testutil.Count(t, store, "patients"))

	other := testutil.CreateTestPatient(t, store, "No Visit")
	require.NoError(t, svc.DeletePatient(ctx, other))
	assert.Equal(t, int64(1), testutil.Count(t, store, "patients"))

	assert.True(t, apperrors.Is(svc.DeletePatient(ctx, other), apperrors.ErrNotFound))
}

func TestSearchPatients(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t)

	testutil.CreateTestPatient(t, store, "Rohan Das")
	testutil.CreateTestPatient(t, store, "Priya Das")
	testutil.CreateTestPatient(t, store, "Neha Singh")

	found, err := svc.SearchPatients(ctx, "das")
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "Priya Das", found[0].Name)
	assert.Equal(t, "Rohan Das", found[1].Name)

	all, err := svc.SearchPatients(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}
