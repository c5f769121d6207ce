// Package memory provides in-memory implementations of the repository
// interfaces. They back the test suite and local demo runs; business logic
// only ever sees the interfaces.
package memory

import (
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/synlig/seo-portal-api/infrastructure/repository"
	"github.com/synlig/seo-portal-api/internal/domain"
)

type ReportStore struct {
	mu      sync.RWMutex
	reports map[domain.ReportKey]*domain.SeoPeriodReport
}

func NewReportStore() *ReportStore {
	return &ReportStore{
		reports: make(map[domain.ReportKey]*domain.SeoPeriodReport),
	}
}

var _ repository.ReportRepository = (*ReportStore)(nil)

func cloneReport(report *domain.SeoPeriodReport) *domain.SeoPeriodReport {
	if report == nil {
		return nil
	}
	raw, _ := json.Marshal(report)
	clone := &domain.SeoPeriodReport{}
	_ = json.Unmarshal(raw, clone)
	return clone
}

func (s *ReportStore) GetReport(key domain.ReportKey) (*domain.SeoPeriodReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneReport(s.reports[key]), nil
}

func (s *ReportStore) GetPublishedReport(key domain.ReportKey) (*domain.SeoPeriodReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	report := s.reports[key]
	if report == nil || report.Status != domain.StatusPublished {
		return nil, nil
	}
	return cloneReport(report), nil
}

func (s *ReportStore) UpsertReport(report *domain.SeoPeriodReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := report.Key()
	existing := s.reports[key]

	switch {
	case existing == nil && report.Version != 0:
		return repository.ErrVersionConflict
	case existing != nil && existing.Version != report.Version:
		return repository.ErrVersionConflict
	}

	report.Version++
	report.UpdatedAt = time.Now().UTC()
	s.reports[key] = cloneReport(report)
	return nil
}

func (s *ReportStore) PublishReport(key domain.ReportKey) (*domain.SeoPeriodReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	report := s.reports[key]
	if report == nil {
		return nil, nil
	}
	if report.Status == domain.StatusPublished {
		return cloneReport(report), nil
	}

	now := time.Now().UTC()
	report.Status = domain.StatusPublished
	report.PublishedAt = &now
	report.Version++
	report.UpdatedAt = now
	return cloneReport(report), nil
}

func (s *ReportStore) ListPeriods(customerID string, periodType domain.PeriodType) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	periods := make([]string, 0)
	for key := range s.reports {
		if key.CustomerID == customerID && key.PeriodType == periodType {
			periods = append(periods, key.PeriodKey)
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(periods)))
	return periods, nil
}

func (s *ReportStore) ListAllReports(periodType domain.PeriodType, periodKey string) ([]*domain.SeoPeriodReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	reports := make([]*domain.SeoPeriodReport, 0)
	for key, report := range s.reports {
		if key.PeriodType == periodType && key.PeriodKey == periodKey {
			reports = append(reports, cloneReport(report))
		}
	}
	sort.Slice(reports, func(i, j int) bool {
		return reports[i].CustomerID < reports[j].CustomerID
	})
	return reports, nil
}

func (s *ReportStore) ListRecentPublishedReports(limit int) ([]*domain.SeoPeriodReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	reports := make([]*domain.SeoPeriodReport, 0)
	for _, report := range s.reports {
		if report.Status == domain.StatusPublished {
			reports = append(reports, cloneReport(report))
		}
	}

	sort.Slice(reports, func(i, j int) bool {
		a, b := reports[i], reports[j]
		switch {
		case a.PublishedAt != nil && b.PublishedAt != nil && !a.PublishedAt.Equal(*b.PublishedAt):
			return a.PublishedAt.After(*b.PublishedAt)
		case a.PublishedAt != nil && b.PublishedAt == nil:
			return true
		case a.PublishedAt == nil && b.PublishedAt != nil:
			return false
		default:
			return a.PeriodKey > b.PeriodKey
		}
	})

	if limit > 0 && len(reports) > limit {
		reports = reports[:limit]
	}
	return reports, nil
}
