package domain

import (
	"fmt"
	"regexp"
	"time"
)

// PeriodType identifies the reporting interval of a report.
type PeriodType string

const (
	PeriodMonthly PeriodType = "monthly"
	PeriodWeekly  PeriodType = "weekly"
)

// ReportStatus is the lifecycle state of a report. Drafts are internal,
// published reports are customer-visible.
type ReportStatus string

const (
	StatusDraft     ReportStatus = "draft"
	StatusPublished ReportStatus = "published"
)

// CanTransitionTo validates the status transition table. Publishing is the
// only transition; there is no way back to draft.
func (s ReportStatus) CanTransitionTo(target ReportStatus) bool {
	switch {
	case s == StatusDraft && target == StatusPublished:
		return true
	case s == target:
		return true
	default:
		return false
	}
}

// Canonical KPI keys. Every report carries this fixed set.
const (
	KPIImpressions    = "impressions"
	KPIClicks         = "clicks"
	KPICTR            = "ctr"
	KPIAvgPosition    = "avgPosition"
	KPISessions       = "sessions"
	KPIUniqueVisitors = "uniqueVisitors"
	KPIConversions    = "conversions"
	KPIConversionRate = "conversionRate"
)

// KPIKeys lists the canonical KPI keys in presentation order.
var KPIKeys = []string{
	KPIImpressions,
	KPIClicks,
	KPICTR,
	KPIAvgPosition,
	KPISessions,
	KPIUniqueVisitors,
	KPIConversions,
	KPIConversionRate,
}

// KPIValue is a named metric with its period-over-period percent delta.
type KPIValue struct {
	Value        float64 `json:"value"`
	DeltaPercent float64 `json:"delta_percent"`
}

// KPISet maps canonical KPI keys to values. Uploads may fill only a subset;
// merging is per-key.
type KPISet map[string]KPIValue

// TrafficPoint is one entry of the traffic timeline, ordered by date.
type TrafficPoint struct {
	Date        string   `json:"date"` // YYYY-MM-DD
	Impressions float64  `json:"impressions"`
	Sessions    *float64 `json:"sessions,omitempty"`
	Clicks      *float64 `json:"clicks,omitempty"`
}

// KeywordRank is one tracked keyword. Keyword is the natural key within a
// report.
type KeywordRank struct {
	Keyword      string   `json:"keyword"`
	Group        string   `json:"group,omitempty"`
	Baseline     *float64 `json:"baseline,omitempty"`
	Position     float64  `json:"position"`
	SearchVolume *float64 `json:"search_volume,omitempty"`
}

// ChannelStat is one acquisition channel row. Medium is stored lower-cased.
type ChannelStat struct {
	Medium      string  `json:"medium"`
	Sessions    float64 `json:"sessions"`
	Conversions float64 `json:"conversions"`
}

// ReportKey uniquely identifies a report.
type ReportKey struct {
	CustomerID string     `json:"customer_id"`
	PeriodType PeriodType `json:"period_type"`
	PeriodKey  string     `json:"period_key"`
}

func (k ReportKey) String() string {
	return fmt.Sprintf("%s:%s:%s", k.CustomerID, k.PeriodType, k.PeriodKey)
}

// SeoPeriodReport is the persisted reporting unit for one customer and
// period. Version carries the optimistic concurrency stamp checked on upsert.
type SeoPeriodReport struct {
	CustomerID        string             `json:"customer_id"`
	PeriodType        PeriodType         `json:"period_type"`
	PeriodKey         string             `json:"period_key"`
	Status            ReportStatus       `json:"status"`
	Version           int                `json:"version"`
	KPIs              KPISet             `json:"kpis"`
	TrafficTimeline   []TrafficPoint     `json:"traffic_timeline"`
	Keywords          []KeywordRank      `json:"keywords"`
	Channels          []ChannelStat      `json:"channels"`
	DeviceSplit       map[string]float64 `json:"device_split"`
	ConversionsByType map[string]float64 `json:"conversions_by_type"`
	AdminNotes        string             `json:"admin_notes"`
	ExecutiveSummary  string             `json:"executive_summary"`
	UploadedAt        *time.Time         `json:"uploaded_at,omitempty"`
	PublishedAt       *time.Time         `json:"published_at,omitempty"`
	CreatedAt         time.Time          `json:"created_at"`
	UpdatedAt         time.Time          `json:"updated_at"`
}

func (r *SeoPeriodReport) Key() ReportKey {
	return ReportKey{
		CustomerID: r.CustomerID,
		PeriodType: r.PeriodType,
		PeriodKey:  r.PeriodKey,
	}
}

// NewDraftReport builds the template report seeded by draft generation. All
// KPI keys are present from the start so merges stay per-key.
func NewDraftReport(customerID string, periodType PeriodType, periodKey string) *SeoPeriodReport {
	now := time.Now().UTC()

	kpis := make(KPISet, len(KPIKeys))
	for _, key := range KPIKeys {
		kpis[key] = KPIValue{}
	}

	return &SeoPeriodReport{
		CustomerID:        customerID,
		PeriodType:        periodType,
		PeriodKey:         periodKey,
		Status:            StatusDraft,
		KPIs:              kpis,
		TrafficTimeline:   []TrafficPoint{},
		Keywords:          []KeywordRank{},
		Channels:          []ChannelStat{},
		DeviceSplit:       map[string]float64{},
		ConversionsByType: map[string]float64{},
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

var (
	monthlyKeyPattern = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)
	weeklyKeyPattern  = regexp.MustCompile(`^\d{4}-W(0[1-9]|[1-4]\d|5[0-3])$`)
)

// ParsePeriodType validates a period type string.
func ParsePeriodType(s string) (PeriodType, error) {
	switch PeriodType(s) {
	case PeriodMonthly:
		return PeriodMonthly, nil
	case PeriodWeekly:
		return PeriodWeekly, nil
	default:
		return "", fmt.Errorf("unknown period type %q", s)
	}
}

// ValidatePeriodKey checks the key format for the given period type, e.g.
// "2026-01" for monthly and "2026-W02" for weekly.
func ValidatePeriodKey(periodType PeriodType, key string) error {
	switch periodType {
	case PeriodMonthly:
		if !monthlyKeyPattern.MatchString(key) {
			return fmt.Errorf("invalid monthly period key %q, expected YYYY-MM", key)
		}
	case PeriodWeekly:
		if !weeklyKeyPattern.MatchString(key) {
			return fmt.Errorf("invalid weekly period key %q, expected YYYY-Www", key)
		}
	default:
		return fmt.Errorf("unknown period type %q", periodType)
	}
	return nil
}

// CurrentPeriodKey returns the period key covering the given instant.
func CurrentPeriodKey(periodType PeriodType, at time.Time) string {
	if periodType == PeriodWeekly {
		year, week := at.ISOWeek()
		return fmt.Sprintf("%04d-W%02d", year, week)
	}
	return at.Format("2006-01")
}

// PreviousPeriodKey returns the key of the period directly before the given
// one. Week one steps back into the last ISO week of the previous year.
func PreviousPeriodKey(periodType PeriodType, key string) (string, error) {
	if err := ValidatePeriodKey(periodType, key); err != nil {
		return "", err
	}

	if periodType == PeriodWeekly {
		var year, week int
		if _, err := fmt.Sscanf(key, "%d-W%d", &year, &week); err != nil {
			return "", err
		}
		if week > 1 {
			return fmt.Sprintf("%04d-W%02d", year, week-1), nil
		}
		// December 28 always falls in the last ISO week of its year.
		lastYear, lastWeek := time.Date(year-1, time.December, 28, 0, 0, 0, 0, time.UTC).ISOWeek()
		return fmt.Sprintf("%04d-W%02d", lastYear, lastWeek), nil
	}

	month, err := time.Parse("2006-01", key)
	if err != nil {
		return "", err
	}
	return month.AddDate(0, -1, 0).Format("2006-01"), nil
}
