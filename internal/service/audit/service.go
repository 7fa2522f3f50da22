package audit

import (
	apperrors "github.com/jwalitptl/clinic-records/pkg/errors"
	"github.com/jwalitptl/clinic-records/pkg/logger"
	"github.com/jwalitptl/clinic-records/pkg/metrics"
)

// Service records the outcome of every user action. A nil *Service only
// classifies errors.
type Service struct {
	logger  *logger.Logger
	metrics *metrics.Metrics
}

func NewService(log *logger.Logger, m *metrics.Metrics) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{logger: log, metrics: m}
}

// Log records action on entityType and returns err classified: application
// errors pass through, anything else becomes a StoreFailure. Successes log
// at info, refusals at warn and store failures at error.
func (s *Service) Log(action, entityType string, entityID int64, err error, fields ...interface{}) error {
	err = apperrors.Classify(err)
	if s == nil {
		return err
	}

	operation := entityType + "." + action
	s.metrics.ObserveOperation(operation, err)

	fields = append([]interface{}{"action", action, "entity_type", entityType, "entity_id", entityID}, fields...)
	switch {
	case err == nil:
		s.logger.Info(operation, fields...)
	case apperrors.Is(err, apperrors.ErrStoreFailure):
		s.logger.Error(err, operation, fields...)
	default:
		fields = append(fields, "code", apperrors.CodeOf(err).String(), "reason", err.Error())
		s.logger.Warn(operation, fields...)
	}
	return err
}
