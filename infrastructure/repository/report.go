package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/synlig/seo-portal-api/infrastructure/database/postgres"
	"github.com/synlig/seo-portal-api/internal/domain"
)

const seoReportsTable = "seo_reports sr"

// ErrVersionConflict is returned when an upsert carries a stale version
// stamp. The caller must re-read the report and retry.
var ErrVersionConflict = errors.New("report was modified by someone else")

type ReportRepository interface {
	GetReport(key domain.ReportKey) (*domain.SeoPeriodReport, error)
	GetPublishedReport(key domain.ReportKey) (*domain.SeoPeriodReport, error)
	UpsertReport(report *domain.SeoPeriodReport) error
	PublishReport(key domain.ReportKey) (*domain.SeoPeriodReport, error)
	ListPeriods(customerID string, periodType domain.PeriodType) ([]string, error)
	ListAllReports(periodType domain.PeriodType, periodKey string) ([]*domain.SeoPeriodReport, error)
	ListRecentPublishedReports(limit int) ([]*domain.SeoPeriodReport, error)
}

// reportPayload is the JSONB document stored per report, mirroring the
// metric fields of the domain type.
type reportPayload struct {
	KPIs              domain.KPISet         `json:"kpis"`
	TrafficTimeline   []domain.TrafficPoint `json:"traffic_timeline"`
	Keywords          []domain.KeywordRank  `json:"keywords"`
	Channels          []domain.ChannelStat  `json:"channels"`
	DeviceSplit       map[string]float64    `json:"device_split"`
	ConversionsByType map[string]float64    `json:"conversions_by_type"`
	AdminNotes        string                `json:"admin_notes"`
	ExecutiveSummary  string                `json:"executive_summary"`
}

type reportRepository struct {
	conn *postgres.Connection
}

func NewReportRepository(conn *postgres.Connection) ReportRepository {
	return &reportRepository{
		conn: conn,
	}
}

const reportColumns = "sr.customer_id, sr.period_type, sr.period_key, sr.status, sr.version, sr.payload, sr.uploaded_at, sr.published_at, sr.created_at, sr.updated_at"

func (r *reportRepository) GetReport(key domain.ReportKey) (*domain.SeoPeriodReport, error) {
	query, args, err := squirrel.
		Select(reportColumns).
		From(seoReportsTable).
		Where(squirrel.Eq{
			"sr.customer_id": key.CustomerID,
			"sr.period_type": key.PeriodType,
			"sr.period_key":  key.PeriodKey,
		}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building query: %w", err)
	}

	row := r.conn.QueryRow(query, args...)
	report, err := r.scanReport(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scanning report: %w", err)
	}

	return report, nil
}

func (r *reportRepository) GetPublishedReport(key domain.ReportKey) (*domain.SeoPeriodReport, error) {
	report, err := r.GetReport(key)
	if err != nil {
		return nil, err
	}
	if report == nil || report.Status != domain.StatusPublished {
		return nil, nil
	}
	return report, nil
}

// UpsertReport overwrites the full report, creating it when absent. The
// caller's Version must match the stored one; a mismatch returns
// ErrVersionConflict. On success the stored version is the caller's plus one.
func (r *reportRepository) UpsertReport(report *domain.SeoPeriodReport) error {
	payloadJSON, err := json.Marshal(reportPayload{
		KPIs:              report.KPIs,
		TrafficTimeline:   report.TrafficTimeline,
		Keywords:          report.Keywords,
		Channels:          report.Channels,
		DeviceSplit:       report.DeviceSplit,
		ConversionsByType: report.ConversionsByType,
		AdminNotes:        report.AdminNotes,
		ExecutiveSummary:  report.ExecutiveSummary,
	})
	if err != nil {
		return fmt.Errorf("serializing report payload: %w", err)
	}

	if report.Version > 0 {
		return r.updateWithVersion(report, payloadJSON)
	}

	query := squirrel.StatementBuilder.
		Insert("seo_reports").
		Columns("customer_id", "period_type", "period_key", "status", "version", "payload", "uploaded_at", "published_at").
		Values(
			report.CustomerID,
			report.PeriodType,
			report.PeriodKey,
			report.Status,
			1,
			payloadJSON,
			report.UploadedAt,
			report.PublishedAt,
		).
		Suffix("ON CONFLICT (customer_id, period_type, period_key) DO NOTHING").
		PlaceholderFormat(squirrel.Dollar)

	sqlQuery, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("building query: %w", err)
	}

	result, err := r.conn.Exec(sqlQuery, args...)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			return fmt.Errorf("database error: %w (code: %s)", pqErr, pqErr.Code)
		}
		return fmt.Errorf("executing query: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading affected rows: %w", err)
	}
	if affected == 0 {
		// Row already exists but the caller thought it was creating one.
		return ErrVersionConflict
	}

	report.Version = 1
	return nil
}

func (r *reportRepository) updateWithVersion(report *domain.SeoPeriodReport, payloadJSON []byte) error {
	query := squirrel.StatementBuilder.
		Update("seo_reports").
		Set("status", report.Status).
		Set("version", report.Version+1).
		Set("payload", payloadJSON).
		Set("uploaded_at", report.UploadedAt).
		Set("published_at", report.PublishedAt).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{
			"customer_id": report.CustomerID,
			"period_type": report.PeriodType,
			"period_key":  report.PeriodKey,
			"version":     report.Version,
		}).
		PlaceholderFormat(squirrel.Dollar)

	sqlQuery, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("building query: %w", err)
	}

	result, err := r.conn.Exec(sqlQuery, args...)
	if err != nil {
		return fmt.Errorf("executing query: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading affected rows: %w", err)
	}
	if affected == 0 {
		return ErrVersionConflict
	}

	report.Version++
	return nil
}

// PublishReport flips the status to published and stamps published_at. It is
// idempotent: publishing an already published report changes nothing.
func (r *reportRepository) PublishReport(key domain.ReportKey) (*domain.SeoPeriodReport, error) {
	report, err := r.GetReport(key)
	if err != nil {
		return nil, err
	}
	if report == nil {
		return nil, nil
	}
	if report.Status == domain.StatusPublished {
		return report, nil
	}

	now := time.Now().UTC()

	query := squirrel.StatementBuilder.
		Update("seo_reports").
		Set("status", domain.StatusPublished).
		Set("published_at", now).
		Set("version", report.Version+1).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{
			"customer_id": key.CustomerID,
			"period_type": key.PeriodType,
			"period_key":  key.PeriodKey,
			"version":     report.Version,
		}).
		PlaceholderFormat(squirrel.Dollar)

	sqlQuery, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("building query: %w", err)
	}

	result, err := r.conn.Exec(sqlQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("executing query: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("reading affected rows: %w", err)
	}
	if affected == 0 {
		return nil, ErrVersionConflict
	}

	report.Status = domain.StatusPublished
	report.PublishedAt = &now
	report.Version++
	return report, nil
}

func (r *reportRepository) ListPeriods(customerID string, periodType domain.PeriodType) ([]string, error) {
	query, args, err := squirrel.
		Select("sr.period_key").
		From(seoReportsTable).
		Where(squirrel.Eq{
			"sr.customer_id": customerID,
			"sr.period_type": periodType,
		}).
		OrderBy("sr.period_key DESC").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building query: %w", err)
	}

	rows, err := r.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("executing query: %w", err)
	}
	defer rows.Close()

	periods := make([]string, 0)
	for rows.Next() {
		var period string
		if err := rows.Scan(&period); err != nil {
			return nil, fmt.Errorf("scanning period: %w", err)
		}
		periods = append(periods, period)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rows: %w", err)
	}

	return periods, nil
}

// ListAllReports fans out over every customer with a report for the given
// period.
func (r *reportRepository) ListAllReports(periodType domain.PeriodType, periodKey string) ([]*domain.SeoPeriodReport, error) {
	query, args, err := squirrel.
		Select(reportColumns).
		From(seoReportsTable).
		Where(squirrel.Eq{
			"sr.period_type": periodType,
			"sr.period_key":  periodKey,
		}).
		OrderBy("sr.customer_id ASC").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building query: %w", err)
	}

	return r.queryReports(query, args...)
}

func (r *reportRepository) ListRecentPublishedReports(limit int) ([]*domain.SeoPeriodReport, error) {
	query, args, err := squirrel.
		Select(reportColumns).
		From(seoReportsTable).
		Where(squirrel.Eq{"sr.status": domain.StatusPublished}).
		OrderBy("sr.published_at DESC NULLS LAST", "sr.period_key DESC").
		Limit(uint64(limit)).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building query: %w", err)
	}

	return r.queryReports(query, args...)
}

func (r *reportRepository) queryReports(query string, args ...interface{}) ([]*domain.SeoPeriodReport, error) {
	rows, err := r.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("executing query: %w", err)
	}
	defer rows.Close()

	reports := make([]*domain.SeoPeriodReport, 0)
	for rows.Next() {
		report, err := r.scanReportRows(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning report: %w", err)
		}
		reports = append(reports, report)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rows: %w", err)
	}

	return reports, nil
}

func (r *reportRepository) scanReport(row *sql.Row) (*domain.SeoPeriodReport, error) {
	report := &domain.SeoPeriodReport{}
	var payloadJSON []byte

	err := row.Scan(
		&report.CustomerID,
		&report.PeriodType,
		&report.PeriodKey,
		&report.Status,
		&report.Version,
		&payloadJSON,
		&report.UploadedAt,
		&report.PublishedAt,
		&report.CreatedAt,
		&report.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := applyPayload(report, payloadJSON); err != nil {
		return nil, err
	}
	return report, nil
}

func (r *reportRepository) scanReportRows(rows *sql.Rows) (*domain.SeoPeriodReport, error) {
	report := &domain.SeoPeriodReport{}
	var payloadJSON []byte

	err := rows.Scan(
		&report.CustomerID,
		&report.PeriodType,
		&report.PeriodKey,
		&report.Status,
		&report.Version,
		&payloadJSON,
		&report.UploadedAt,
		&report.PublishedAt,
		&report.CreatedAt,
		&report.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := applyPayload(report, payloadJSON); err != nil {
		return nil, err
	}
	return report, nil
}

func applyPayload(report *domain.SeoPeriodReport, payloadJSON []byte) error {
	if payloadJSON == nil {
		return nil
	}

	payload := reportPayload{}
	if err := json.Unmarshal(payloadJSON, &payload); err != nil {
		return fmt.Errorf("deserializing report payload: %w", err)
	}

	report.KPIs = payload.KPIs
	report.TrafficTimeline = payload.TrafficTimeline
	report.Keywords = payload.Keywords
	report.Channels = payload.Channels
	report.DeviceSplit = payload.DeviceSplit
	report.ConversionsByType = payload.ConversionsByType
	report.AdminNotes = payload.AdminNotes
	report.ExecutiveSummary = payload.ExecutiveSummary
	return nil
}
