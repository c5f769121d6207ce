package reporting

import (
	"time"

	"github.com/synlig/seo-portal-api/infrastructure/repository"
	"github.com/synlig/seo-portal-api/internal/domain"
	"github.com/synlig/seo-portal-api/internal/ingest"
	"github.com/synlig/seo-portal-api/pkg/log"
	"github.com/synlig/seo-portal-api/pkg/utils"
)

// Notifier receives reporting lifecycle events. The notifying usecase
// implements it; a nil notifier disables events without touching the flow.
type Notifier interface {
	ReportPublished(report *domain.SeoPeriodReport)
	UploadProcessed(report *domain.SeoPeriodReport, summary UploadSummary)
}

// UploadSummary describes what one processed upload contributed.
type UploadSummary struct {
	Filename      string `json:"filename"`
	TablesFound   int    `json:"tables_found"`
	KeywordRows   int    `json:"keyword_rows"`
	TimelineRows  int    `json:"timeline_rows"`
	ChannelRows   int    `json:"channel_rows"`
	KPIsExtracted int    `json:"kpis_extracted"`
}

// DraftGenerationResult summarizes one draft seeding run.
type DraftGenerationResult struct {
	PeriodType domain.PeriodType `json:"period_type"`
	PeriodKey  string            `json:"period_key"`
	Created    int               `json:"created"`
	Existing   int               `json:"existing"`
	Total      int               `json:"total"`
}

// NarrativeUpdate carries the editable text fields of a draft. Nil fields are
// left untouched.
type NarrativeUpdate struct {
	AdminNotes       *string `json:"admin_notes"`
	ExecutiveSummary *string `json:"executive_summary"`
}

type ReportingService interface {
	GetReport(key domain.ReportKey) (*domain.SeoPeriodReport, error)
	GetPublishedReport(key domain.ReportKey) (*domain.SeoPeriodReport, error)
	ListPeriods(customerID string, periodType domain.PeriodType) ([]string, error)
	ListAllReports(periodType domain.PeriodType, periodKey string) ([]*domain.SeoPeriodReport, error)
	ListRecentPublished(limit int) ([]*domain.SeoPeriodReport, error)
	ProcessUpload(key domain.ReportKey, filename string, data []byte) (*domain.SeoPeriodReport, *UploadSummary, error)
	MergeUpload(key domain.ReportKey, payload ingest.Payload) (*domain.SeoPeriodReport, error)
	UpdateNarrative(key domain.ReportKey, update NarrativeUpdate) (*domain.SeoPeriodReport, error)
	Publish(key domain.ReportKey) (*domain.SeoPeriodReport, error)
	GenerateDrafts(periodType domain.PeriodType, periodKey string) (*DraftGenerationResult, error)
}

type Service struct {
	reportRepo   repository.ReportRepository
	customerRepo repository.CustomerRepository
	notifier     Notifier
	now          func() time.Time
}

func NewService(reportRepo repository.ReportRepository, customerRepo repository.CustomerRepository, notifier Notifier) ReportingService {
	return &Service{
		reportRepo:   reportRepo,
		customerRepo: customerRepo,
		notifier:     notifier,
		now:          time.Now,
	}
}

func (s *Service) GetReport(key domain.ReportKey) (*domain.SeoPeriodReport, error) {
	report, err := s.reportRepo.GetReport(key)
	if err != nil {
		return nil, err
	}
	if report == nil {
		return nil, ErrReportNotFound
	}
	return report, nil
}

func (s *Service) GetPublishedReport(key domain.ReportKey) (*domain.SeoPeriodReport, error) {
	report, err := s.reportRepo.GetPublishedReport(key)
	if err != nil {
		return nil, err
	}
	if report == nil {
		return nil, ErrReportNotFound
	}
	return report, nil
}

func (s *Service) ListPeriods(customerID string, periodType domain.PeriodType) ([]string, error) {
	return s.reportRepo.ListPeriods(customerID, periodType)
}

func (s *Service) ListAllReports(periodType domain.PeriodType, periodKey string) ([]*domain.SeoPeriodReport, error) {
	return s.reportRepo.ListAllReports(periodType, periodKey)
}

func (s *Service) ListRecentPublished(limit int) ([]*domain.SeoPeriodReport, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.reportRepo.ListRecentPublishedReports(limit)
}

// ProcessUpload decodes an uploaded file, classifies its tables and merges
// the extracted payload into the period's draft.
func (s *Service) ProcessUpload(key domain.ReportKey, filename string, data []byte) (*domain.SeoPeriodReport, *UploadSummary, error) {
	customer, err := s.customerRepo.GetByID(key.CustomerID)
	if err != nil {
		return nil, nil, err
	}
	if customer == nil {
		return nil, nil, ErrCustomerNotFound
	}
	if !customer.Active {
		return nil, nil, ErrCustomerInactive
	}

	tables, err := ingest.Extract(filename, data)
	if err != nil {
		return nil, nil, err
	}

	payload := ingest.ClassifyAll(tables)
	if payload.IsEmpty() {
		return nil, nil, ErrEmptyUpload
	}

	report, err := s.MergeUpload(key, payload)
	if err != nil {
		return nil, nil, err
	}

	summary := &UploadSummary{
		Filename:      filename,
		TablesFound:   len(tables),
		KeywordRows:   len(payload.Keywords),
		TimelineRows:  len(payload.TrafficTimeline),
		ChannelRows:   len(payload.Channels),
		KPIsExtracted: len(payload.KPIs),
	}

	log.L.WithFields(log.Fields{
		"report":         key.String(),
		"filename":       filename,
		"tables_found":   summary.TablesFound,
		"keyword_rows":   summary.KeywordRows,
		"timeline_rows":  summary.TimelineRows,
		"channel_rows":   summary.ChannelRows,
		"kpis_extracted": summary.KPIsExtracted,
	}).Info("upload processed")

	if s.notifier != nil {
		s.notifier.UploadProcessed(report, *summary)
	}

	return report, summary, nil
}

// MergeUpload folds an extracted payload into the existing draft. Sections
// present in the payload replace their counterpart wholesale; KPIs merge
// per key. Absent sections survive untouched, so partial uploads are safe.
func (s *Service) MergeUpload(key domain.ReportKey, payload ingest.Payload) (*domain.SeoPeriodReport, error) {
	report, err := s.reportRepo.GetReport(key)
	if err != nil {
		return nil, err
	}
	if report == nil {
		return nil, ErrDraftNotFound
	}

	if len(payload.Keywords) > 0 {
		report.Keywords = payload.Keywords
	}
	if len(payload.TrafficTimeline) > 0 {
		report.TrafficTimeline = payload.TrafficTimeline
	}
	if len(payload.Channels) > 0 {
		report.Channels = payload.Channels
	}
	if len(payload.KPIs) > 0 {
		if report.KPIs == nil {
			report.KPIs = domain.KPISet{}
		}
		for kpiKey, value := range payload.KPIs {
			report.KPIs[kpiKey] = value
		}
		s.fillKPIDeltas(report, payload.KPIs)
	}

	uploadedAt := s.now().UTC()
	report.UploadedAt = &uploadedAt

	if err := s.reportRepo.UpsertReport(report); err != nil {
		return nil, err
	}

	return report, nil
}

// fillKPIDeltas backfills period-over-period deltas for uploaded KPIs that
// came without one, using the previous period's report as the baseline. No
// previous report means the deltas stay as uploaded.
func (s *Service) fillKPIDeltas(report *domain.SeoPeriodReport, uploaded domain.KPISet) {
	previousKey, err := domain.PreviousPeriodKey(report.PeriodType, report.PeriodKey)
	if err != nil {
		return
	}

	previous, err := s.reportRepo.GetReport(domain.ReportKey{
		CustomerID: report.CustomerID,
		PeriodType: report.PeriodType,
		PeriodKey:  previousKey,
	})
	if err != nil || previous == nil {
		return
	}

	for kpiKey, value := range uploaded {
		if value.DeltaPercent != 0 {
			continue
		}
		baseline, ok := previous.KPIs[kpiKey]
		if !ok || baseline.Value == 0 {
			continue
		}
		value.DeltaPercent = utils.PercentDelta(value.Value, baseline.Value)
		report.KPIs[kpiKey] = value
	}
}

func (s *Service) UpdateNarrative(key domain.ReportKey, update NarrativeUpdate) (*domain.SeoPeriodReport, error) {
	report, err := s.reportRepo.GetReport(key)
	if err != nil {
		return nil, err
	}
	if report == nil {
		return nil, ErrDraftNotFound
	}

	if update.AdminNotes != nil {
		report.AdminNotes = *update.AdminNotes
	}
	if update.ExecutiveSummary != nil {
		report.ExecutiveSummary = *update.ExecutiveSummary
	}

	if err := s.reportRepo.UpsertReport(report); err != nil {
		return nil, err
	}

	return report, nil
}

// Publish makes a report customer-visible. Publishing an already published
// report is a no-op that returns the stored report unchanged.
func (s *Service) Publish(key domain.ReportKey) (*domain.SeoPeriodReport, error) {
	existing, err := s.reportRepo.GetReport(key)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrReportNotFound
	}

	alreadyPublished := existing.Status == domain.StatusPublished

	report, err := s.reportRepo.PublishReport(key)
	if err != nil {
		return nil, err
	}

	if !alreadyPublished {
		log.L.WithFields(log.Fields{
			"report": key.String(),
		}).Info("report published")

		if s.notifier != nil {
			s.notifier.ReportPublished(report)
		}
	}

	return report, nil
}

// GenerateDrafts seeds a draft for every active customer for the given
// period. Existing reports are never touched, so the run is idempotent.
func (s *Service) GenerateDrafts(periodType domain.PeriodType, periodKey string) (*DraftGenerationResult, error) {
	if err := domain.ValidatePeriodKey(periodType, periodKey); err != nil {
		return nil, err
	}

	customers, err := s.customerRepo.ListActiveCustomers()
	if err != nil {
		return nil, err
	}

	result := &DraftGenerationResult{
		PeriodType: periodType,
		PeriodKey:  periodKey,
		Total:      len(customers),
	}

	for _, customer := range customers {
		key := domain.ReportKey{
			CustomerID: customer.ID,
			PeriodType: periodType,
			PeriodKey:  periodKey,
		}

		existing, err := s.reportRepo.GetReport(key)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			result.Existing++
			continue
		}

		draft := domain.NewDraftReport(customer.ID, periodType, periodKey)
		if err := s.reportRepo.UpsertReport(draft); err != nil {
			return nil, err
		}
		result.Created++
	}

	log.L.WithFields(log.Fields{
		"period_type": periodType,
		"period_key":  periodKey,
		"created":     result.Created,
		"existing":    result.Existing,
	}).Info("draft generation finished")

	return result, nil
}
