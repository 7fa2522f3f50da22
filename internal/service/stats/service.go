package stats

import (
	"context"
	"fmt"
	"time"

	"github.com/jwalitptl/clinic-records/internal/model"
	"github.com/jwalitptl/clinic-records/internal/repository"
	"github.com/jwalitptl/clinic-records/internal/service/audit"
)

const monthLayout = "01/2006"

type StatsService interface {
	ComputeStats(ctx context.Context) (*model.Stats, error)
}

type Option func(*Service)

// WithClock sets the clock that decides "today" and "this month".
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

type Service struct {
	repo    repository.StatsRepository
	auditor *audit.Service
	now     func() time.Time
}

func NewService(repo repository.StatsRepository, auditor *audit.Service, opts ...Option) *Service {
	s := &Service{
		repo:    repo,
		auditor: auditor,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ComputeStats reads the usage summary. It never writes.
func (s *Service) ComputeStats(ctx context.Context) (*model.Stats, error) {
	now := s.now()
	stats, err := s.repo.Compute(ctx, now.Format("02/01/2006"), now.Format(monthLayout))
	if err != nil {
		return nil, s.auditor.Log("compute", "stats", 0, fmt.Errorf("failed to compute statistics: %w", err))
	}
	stats.GeneratedAt = now
	return stats, nil
}
