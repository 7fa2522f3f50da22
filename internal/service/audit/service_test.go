package audit

import (
	"bytes"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	apperrors "github.com/jwalitptl/clinic-records/pkg/errors"
	"github.com/jwalitptl/clinic-records/pkg/logger"
	"github.com/jwalitptl/clinic-records/pkg/metrics"
)

func newTestService() (*Service, *bytes.Buffer, *metrics.Metrics) {
	var buf bytes.Buffer
	m := metrics.New("clinic_test")
	log := logger.NewLogger(&logger.Config{Level: logger.DebugLevel, Output: &buf, NoColor: true})
	return NewService(log, m), &buf, m
}

func TestLogSuccess(t *testing.T) {
	s, buf, m := newTestService()

	err := s.Log("save", "visit", 7, nil, "lab_results", 2)
	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "INF")
	assert.Contains(t, buf.String(), "visit.save")
	assert.Contains(t, buf.String(), "entity_id=7")
	assert.Contains(t, buf.String(), "lab_results=2")
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Operations.WithLabelValues("visit.save", "ok")))
}

func TestLogRefusal(t *testing.T) {
	s, buf, m := newTestService()

	err := s.Log("delete", "patient", 3, apperrors.DependencyExists("patient", 2))
	assert.True(t, apperrors.Is(err, apperrors.ErrDependencyExists))
	assert.Contains(t, buf.String(), "WRN")
	assert.Contains(t, buf.String(), "code=DependencyExists")
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Operations.WithLabelValues("patient.delete", "DependencyExists")))
}

func TestLogClassifiesStoreFailure(t *testing.T) {
	s, buf, _ := newTestService()

	err := s.Log("save", "visit", 0, errors.New("database is locked"))
	assert.True(t, apperrors.Is(err, apperrors.ErrStoreFailure))
	assert.Contains(t, buf.String(), "ERR")
	assert.Contains(t, buf.String(), "database is locked")
}

func TestNilServiceOnlyClassifies(t *testing.T) {
	var s *Service
	err := s.Log("save", "visit", 0, errors.New("boom"))
	assert.True(t, apperrors.Is(err, apperrors.ErrStoreFailure))
	assert.NoError(t, s.Log("save", "visit", 1, nil))
}
