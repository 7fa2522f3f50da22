package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/jwalitptl/clinic-records/internal/model"
	"github.com/jwalitptl/clinic-records/internal/repository"
	"github.com/jwalitptl/clinic-records/internal/service/audit"
	"github.com/jwalitptl/clinic-records/pkg/metrics"
	"github.com/jwalitptl/clinic-records/pkg/validator"
)

type CatalogService interface {
	AddEntry(ctx context.Context, entry *model.CatalogEntry) error
	UpdateEntry(ctx context.Context, entry *model.CatalogEntry) error
	GetEntry(ctx context.Context, kind model.CatalogKind, id int64) (*model.CatalogEntry, error)
	ListEntries(ctx context.Context, kind model.CatalogKind) ([]*model.CatalogEntry, error)
	DeleteEntry(ctx context.Context, kind model.CatalogKind, id int64) error
}

type Service struct {
	repo      repository.CatalogRepository
	validator validator.Validator
	auditor   *audit.Service
	metrics   *metrics.Metrics
	cache     *cache.Cache
}

// NewService caches each catalog listing for ttl; a ttl of zero disables
// the cache. Expired listings are dropped on the next lookup.
func NewService(repo repository.CatalogRepository, v validator.Validator, auditor *audit.Service, m *metrics.Metrics, ttl time.Duration) *Service {
	s := &Service{
		repo:      repo,
		validator: v,
		auditor:   auditor,
		metrics:   m,
	}
	if ttl > 0 {
		s.cache = cache.New(ttl, 0)
	}
	return s
}

func (s *Service) AddEntry(ctx context.Context, entry *model.CatalogEntry) error {
	entry.Name = strings.TrimSpace(entry.Name)
	err := s.validator.Validate(entry)
	if err == nil {
		err = s.repo.Create(ctx, entry)
	}
	if err == nil {
		s.invalidate(entry.Kind)
	}
	return s.auditor.Log("add", string(entry.Kind), entry.ID, err)
}

func (s *Service) UpdateEntry(ctx context.Context, entry *model.CatalogEntry) error {
	entry.Name = strings.TrimSpace(entry.Name)
	err := s.validator.Validate(entry)
	if err == nil {
		err = s.repo.Update(ctx, entry)
	}
	if err == nil {
		s.invalidate(entry.Kind)
	}
	return s.auditor.Log("update", string(entry.Kind), entry.ID, err)
}

func (s *Service) GetEntry(ctx context.Context, kind model.CatalogKind, id int64) (*model.CatalogEntry, error) {
	entry, err := s.repo.Get(ctx, kind, id)
	if err != nil {
		return nil, s.auditor.Log("get", string(kind), id, fmt.Errorf("failed to get catalog entry: %w", err))
	}
	return entry, nil
}

// ListEntries returns the entries of one catalog ordered by name.
func (s *Service) ListEntries(ctx context.Context, kind model.CatalogKind) ([]*model.CatalogEntry, error) {
	if s.cache != nil {
		if cached, found := s.cache.Get(string(kind)); found {
			s.metrics.CacheLookup(string(kind), true)
			return cloneEntries(cached.([]*model.CatalogEntry)), nil
		}
		s.metrics.CacheLookup(string(kind), false)
	}

	entries, err := s.repo.List(ctx, kind)
	if err != nil {
		return nil, s.auditor.Log("list", string(kind), 0, fmt.Errorf("failed to list catalog: %w", err))
	}

	if s.cache != nil {
		s.cache.Set(string(kind), cloneEntries(entries), cache.DefaultExpiration)
	}
	return entries, nil
}

// DeleteEntry removes an entry that no lab result or prescription uses.
func (s *Service) DeleteEntry(ctx context.Context, kind model.CatalogKind, id int64) error {
	err := s.repo.Delete(ctx, kind, id)
	if err == nil {
		s.invalidate(kind)
	}
	return s.auditor.Log("delete", string(kind), id, err)
}

func (s *Service) invalidate(kind model.CatalogKind) {
	if s.cache != nil {
		s.cache.Delete(string(kind))
	}
}

// cloneEntries copies entries so callers never share rows with the cache.
func cloneEntries(entries []*model.CatalogEntry) []*model.CatalogEntry {
	out := make([]*model.CatalogEntry, len(entries))
	for i, e := range entries {
		entry := *e
		out[i] = &entry
	}
	return out
}
