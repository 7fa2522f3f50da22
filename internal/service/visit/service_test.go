package visit

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-records/internal/model"
	"github.com/jwalitptl/clinic-records/internal/repository/sqlstore"
	"github.com/jwalitptl/clinic-records/internal/service/audit"
	"github.com/jwalitptl/clinic-records/internal/testutil"
	apperrors "github.com/jwalitptl/clinic-records/pkg/errors"
	"github.com/jwalitptl/clinic-records/pkg/logger"
	"github.com/jwalitptl/clinic-records/pkg/validator"
)

type fixture struct {
	store     *sqlstore.Store
	svc       *Service
	patientID int64
	cbc       int64
	xray      int64
	para      int64
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := testutil.NewStore(t)
	return &fixture{
		store:     store,
		svc:       NewService(store.MedicalRecords(), store, validator.New(), audit.NewService(logger.Nop(), nil)),
		patientID: testutil.CreateTestPatient(t, store, "Visit Test"),
		cbc:       testutil.CreateTestCatalogEntry(t, store, model.CatalogTestType, "CBC"),
		xray:      testutil.CreateTestCatalogEntry(t, store, model.CatalogTestType, "X-Ray"),
		para:      testutil.CreateTestCatalogEntry(t, store, model.CatalogMedicine, "Paracetamol"),
	}
}

func validFields() model.VisitFields {
	return model.VisitFields{
		VisitDate:  "01/02/2024",
		Diagnosis:  "Viral fever",
		Symptoms:   "Fever, body ache",
		Treatment:  "Rest and fluids",
		Notes:      "Review in a week",
		DoctorName: "Dr. Iyer",
	}
}

func TestSaveVisitRoundTrip(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	fields := validFields()
	labs := []model.PendingLabResult{
		{TestTypeID: f.cbc, Result: "Hb 13.2", Notes: "fasting"},
		{TestTypeID: f.xray, Result: "Clear"},
	}
	rxs := []model.PendingPrescription{
		{MedicineID: f.para, Dosage: "500mg", Quantity: "12", Instructions: "After food"},
	}

	result, err := f.svc.SaveVisit(ctx, f.patientID, fields, labs, rxs)
	require.NoError(t, err)
	assert.NotZero(t, result.VisitID)
	assert.Equal(t, 2, result.LabResults)
	assert.Equal(t, 1, result.Prescriptions)

	detail, err := f.svc.GetVisit(ctx, result.VisitID)
	require.NoError(t, err)
	assert.Equal(t, fields, detail.Record.VisitFields)
	assert.Equal(t, f.patientID, detail.Record.PatientID)
	assert.Equal(t, "Visit Test", detail.PatientName)

	require.Len(t, detail.LabResults, 2)
	for i, lab := range detail.LabResults {
		assert.Equal(t, labs[i].TestTypeID, lab.TestTypeID)
		assert.Equal(t, labs[i].Result, lab.Result)
		assert.Equal(t, labs[i].Notes, lab.Notes)
		assert.Equal(t, fields.VisitDate, lab.TestDate)
	}

	require.Len(t, detail.Prescriptions, 1)
	rx := detail.Prescriptions[0]
	assert.Equal(t, f.para, rx.MedicineID)
	assert.Equal(t, "500mg", rx.Dosage)
	assert.Equal(t, 12, rx.Quantity)
	assert.Equal(t, "After food", rx.Instructions)
}

func TestSaveVisitWithoutLineItems(t *testing.T) {
	f := newFixture(t)

	result, err := f.svc.SaveVisit(context.Background(), f.patientID, validFields(), nil, nil)
	require.NoError(t, err)
	assert.Zero(t, result.LabResults)
	assert.Zero(t, result.Prescriptions)
	assert.Equal(t, [3]int64{1, 0, 0}, testutil.Counts(t, f.store))
}

func TestSaveVisitIsAtomic(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name  string
		labs  func(f *fixture) []model.PendingLabResult
		rxs   func(f *fixture) []model.PendingPrescription
		code  apperrors.ErrorCode
		field string
	}{
		{
			name: "blank lab result",
			labs: func(f *fixture) []model.PendingLabResult {
				return []model.PendingLabResult{{TestTypeID: f.cbc, Result: "ok"}, {TestTypeID: f.xray, Result: "   "}}
			},
			code:  apperrors.ErrValidationFailed,
			field: "result",
		},
		{
			name: "unknown test type",
			labs: func(f *fixture) []model.PendingLabResult {
				return []model.PendingLabResult{{TestTypeID: 999, Result: "ok"}}
			},
			code: apperrors.ErrNotFound,
		},
		{
			name: "non-integer quantity",
			labs: func(f *fixture) []model.PendingLabResult {
				return []model.PendingLabResult{{TestTypeID: f.cbc, Result: "ok"}}
			},
			rxs: func(f *fixture) []model.PendingPrescription {
				return []model.PendingPrescription{{MedicineID: f.para, Dosage: "500mg", Quantity: "twelve"}}
			},
			code:  apperrors.ErrValidationFailed,
			field: "quantity",
		},
		{
			name: "zero quantity",
			rxs: func(f *fixture) []model.PendingPrescription {
				return []model.PendingPrescription{{MedicineID: f.para, Dosage: "500mg", Quantity: "0"}}
			},
			code:  apperrors.ErrValidationFailed,
			field: "quantity",
		},
		{
			name: "quantity beyond the integer column",
			rxs: func(f *fixture) []model.PendingPrescription {
				return []model.PendingPrescription{{MedicineID: f.para, Dosage: "500mg", Quantity: "3000000000"}}
			},
			code:  apperrors.ErrValidationFailed,
			field: "quantity",
		},
		{
			name: "blank dosage after a valid prescription",
			rxs: func(f *fixture) []model.PendingPrescription {
				return []model.PendingPrescription{
					{MedicineID: f.para, Dosage: "500mg", Quantity: "10"},
					{MedicineID: f.para, Dosage: "", Quantity: "10"},
				}
			},
			code:  apperrors.ErrValidationFailed,
			field: "dosage",
		},
		{
			name: "unknown medicine",
			rxs: func(f *fixture) []model.PendingPrescription {
				return []model.PendingPrescription{{MedicineID: 999, Dosage: "500mg", Quantity: "10"}}
			},
			code: apperrors.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			_, err := f.svc.SaveVisit(ctx, f.patientID, validFields(), nil, nil)
			require.NoError(t, err)
			before := testutil.Counts(t, f.store)

			var labs []model.PendingLabResult
			var rxs []model.PendingPrescription
			if tt.labs != nil {
				labs = tt.labs(f)
			}
			if tt.rxs != nil {
				rxs = tt.rxs(f)
			}

			result, err := f.svc.SaveVisit(ctx, f.patientID, validFields(), labs, rxs)
			assert.Nil(t, result)
			appErr, ok := apperrors.As(err)
			require.True(t, ok, "expected an application error, got %v", err)
			assert.Equal(t, tt.code, appErr.Code)
			if tt.field != "" {
				assert.Equal(t, tt.field, appErr.Field)
			}
			assert.Equal(t, before, testutil.Counts(t, f.store))
		})
	}
}

func TestSaveVisitDoesNotModifyPendingItems(t *testing.T) {
	f := newFixture(t)

	labs := []model.PendingLabResult{{TestTypeID: f.cbc, Result: "Normal"}}
	rxs := []model.PendingPrescription{{MedicineID: f.para, Dosage: "500mg", Quantity: " 7 "}}
	labsCopy := append([]model.PendingLabResult(nil), labs...)
	rxsCopy := append([]model.PendingPrescription(nil), rxs...)

	_, err := f.svc.SaveVisit(context.Background(), f.patientID, validFields(), labs, rxs)
	require.NoError(t, err)
	assert.Equal(t, labsCopy, labs)
	assert.Equal(t, rxsCopy, rxs)
}

func TestSaveVisitValidatesDate(t *testing.T) {
	f := newFixture(t)

	for _, tt := range []struct {
		date string
		ok   bool
	}{
		{"01/02/2024", true},
		{"29/02/2024", true},
		{"31/02/2024", false},
		{"2024-02-01", false},
		{"1/2/2024", false},
		{"", false},
	} {
		fields := validFields()
		fields.VisitDate = tt.date
		_, err := f.svc.SaveVisit(context.Background(), f.patientID, fields, nil, nil)
		if tt.ok {
			assert.NoError(t, err, tt.date)
			continue
		}
		assert.True(t, apperrors.Is(err, apperrors.ErrValidationFailed), tt.date)
	}
}

func TestSaveVisitRequiresDiagnosisAndPatient(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	fields := validFields()
	fields.Diagnosis = "  "
	_, err := f.svc.SaveVisit(ctx, f.patientID, fields, nil, nil)
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, "diagnosis", appErr.Field)

	_, err = f.svc.SaveVisit(ctx, 0, validFields(), nil, nil)
	assert.True(t, apperrors.Is(err, apperrors.ErrValidationFailed))

	_, err = f.svc.SaveVisit(ctx, f.patientID+100, validFields(), nil, nil)
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
	assert.Equal(t, [3]int64{0, 0, 0}, testutil.Counts(t, f.store))
}

func TestUpdateVisit(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	result, err := f.svc.SaveVisit(ctx, f.patientID, validFields(), []model.PendingLabResult{{TestTypeID: f.cbc, Result: "Normal"}}, nil)
	require.NoError(t, err)

	fields := validFields()
	fields.Diagnosis = "Dengue"
	fields.VisitDate = "03/02/2024"
	require.NoError(t, f.svc.UpdateVisit(ctx, result.VisitID, fields))

	detail, err := f.svc.GetVisit(ctx, result.VisitID)
	require.NoError(t, err)
	assert.Equal(t, "Dengue", detail.Record.Diagnosis)
	assert.Len(t, detail.LabResults, 1)

	fields.VisitDate = "31/02/2024"
	assert.True(t, apperrors.Is(f.svc.UpdateVisit(ctx, result.VisitID, fields), apperrors.ErrValidationFailed))

	fields.VisitDate = "04/02/2024"
	assert.True(t, apperrors.Is(f.svc.UpdateVisit(ctx, 999, fields), apperrors.ErrNotFound))
}

func TestDeleteVisitIsGuarded(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	result, err := f.svc.SaveVisit(ctx, f.patientID, validFields(), nil,
		[]model.PendingPrescription{{MedicineID: f.para, Dosage: "500mg", Quantity: "3"}})
	require.NoError(t, err)

	err = f.svc.DeleteVisit(ctx, result.VisitID)
	assert.True(t, apperrors.Is(err, apperrors.ErrDependencyExists))
	assert.Equal(t, [3]int64{1, 0, 1}, testutil.Counts(t, f.store))

	detail, err := f.svc.GetVisit(ctx, result.VisitID)
	require.NoError(t, err)
	require.NoError(t, f.svc.DeletePrescription(ctx, detail.Prescriptions[0].ID))

	require.NoError(t, f.svc.DeleteVisit(ctx, result.VisitID))
	assert.Equal(t, [3]int64{0, 0, 0}, testutil.Counts(t, f.store))

	assert.True(t, apperrors.Is(f.svc.DeleteVisit(ctx, result.VisitID), apperrors.ErrNotFound))
}

func TestLineItemsOnExistingVisit(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	saved, err := f.svc.SaveVisit(ctx, f.patientID, validFields(), nil, nil)
	require.NoError(t, err)

	lab, err := f.svc.AddLabResult(ctx, saved.VisitID, model.PendingLabResult{TestTypeID: f.cbc, Result: "High WBC"})
	require.NoError(t, err)
	assert.Equal(t, "01/02/2024", lab.TestDate)

	rx, err := f.svc.AddPrescription(ctx, saved.VisitID, model.PendingPrescription{MedicineID: f.para, Dosage: "650mg", Quantity: "15"})
	require.NoError(t, err)
	assert.Equal(t, 15, rx.Quantity)

	_, err = f.svc.AddLabResult(ctx, 999, model.PendingLabResult{TestTypeID: f.cbc, Result: "x"})
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))

	_, err = f.svc.AddPrescription(ctx, saved.VisitID, model.PendingPrescription{MedicineID: f.para, Dosage: "650mg", Quantity: "-1"})
	assert.True(t, apperrors.Is(err, apperrors.ErrValidationFailed))
	assert.Equal(t, [3]int64{1, 1, 1}, testutil.Counts(t, f.store))

	require.NoError(t, f.svc.DeleteLabResult(ctx, lab.ID))
	require.NoError(t, f.svc.DeleteLabResult(ctx, lab.ID), "deleting an absent lab result is a no-op")
	require.NoError(t, f.svc.DeletePrescription(ctx, rx.ID))
	require.NoError(t, f.svc.DeletePrescription(ctx, rx.ID))
	assert.Equal(t, [3]int64{1, 0, 0}, testutil.Counts(t, f.store))
}

func TestListVisits(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	for _, date := range []string{"10/01/2024", "05/03/2024", "20/02/2024"} {
		fields := validFields()
		fields.VisitDate = date
		_, err := f.svc.SaveVisit(ctx, f.patientID, fields, nil, nil)
		require.NoError(t, err)
	}

	records, err := f.svc.ListVisits(ctx, f.patientID)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "05/03/2024", records[0].VisitDate)
	assert.Equal(t, "10/01/2024", records[2].VisitDate)

	_, err = f.svc.GetVisit(ctx, 999)
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}
