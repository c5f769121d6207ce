package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCanTransitionTo(t *testing.T) {
	tests := []struct {
		name    string
		from    ReportStatus
		to      ReportStatus
		allowed bool
	}{
		{name: "draft can be published", from: StatusDraft, to: StatusPublished, allowed: true},
		{name: "published cannot go back to draft", from: StatusPublished, to: StatusDraft, allowed: false},
		{name: "republishing is allowed", from: StatusPublished, to: StatusPublished, allowed: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestValidatePeriodKey(t *testing.T) {
	tests := []struct {
		name       string
		periodType PeriodType
		key        string
		valid      bool
	}{
		{name: "monthly key", periodType: PeriodMonthly, key: "2026-01", valid: true},
		{name: "monthly december", periodType: PeriodMonthly, key: "2026-12", valid: true},
		{name: "month zero", periodType: PeriodMonthly, key: "2026-00", valid: false},
		{name: "month thirteen", periodType: PeriodMonthly, key: "2026-13", valid: false},
		{name: "monthly key missing zero padding", periodType: PeriodMonthly, key: "2026-1", valid: false},
		{name: "weekly key", periodType: PeriodWeekly, key: "2026-W07", valid: true},
		{name: "week 53 exists", periodType: PeriodWeekly, key: "2026-W53", valid: true},
		{name: "week zero", periodType: PeriodWeekly, key: "2026-W00", valid: false},
		{name: "week 54", periodType: PeriodWeekly, key: "2026-W54", valid: false},
		{name: "weekly key for monthly type", periodType: PeriodMonthly, key: "2026-W07", valid: false},
		{name: "unknown period type", periodType: "quarterly", key: "2026-Q1", valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePeriodKey(tt.periodType, tt.key)

			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestCurrentPeriodKey(t *testing.T) {
	tests := []struct {
		name       string
		periodType PeriodType
		at         time.Time
		expected   string
	}{
		{
			name:       "monthly key",
			periodType: PeriodMonthly,
			at:         time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC),
			expected:   "2026-02",
		},
		{
			name:       "weekly key uses the ISO week",
			periodType: PeriodWeekly,
			at:         time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC),
			expected:   "2026-W07",
		},
		{
			name:       "early January can belong to the previous ISO year",
			periodType: PeriodWeekly,
			at:         time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC),
			expected:   "2026-W53",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CurrentPeriodKey(tt.periodType, tt.at))
		})
	}
}

func TestPreviousPeriodKey(t *testing.T) {
	tests := []struct {
		name       string
		periodType PeriodType
		key        string
		expected   string
		wantErr    bool
	}{
		{name: "previous month", periodType: PeriodMonthly, key: "2026-02", expected: "2026-01"},
		{name: "January steps into the previous year", periodType: PeriodMonthly, key: "2026-01", expected: "2025-12"},
		{name: "previous week", periodType: PeriodWeekly, key: "2026-W07", expected: "2026-W06"},
		{name: "week one steps into the previous ISO year", periodType: PeriodWeekly, key: "2027-W01", expected: "2026-W53"},
		{name: "invalid key", periodType: PeriodMonthly, key: "2026-W07", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			previous, err := PreviousPeriodKey(tt.periodType, tt.key)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, previous)
		})
	}
}

func TestNewDraftReport(t *testing.T) {
	draft := NewDraftReport("cust-1", PeriodMonthly, "2026-01")

	assert.Equal(t, StatusDraft, draft.Status)
	assert.Equal(t, 0, draft.Version)
	assert.Len(t, draft.KPIs, len(KPIKeys))
	for _, key := range KPIKeys {
		assert.Contains(t, draft.KPIs, key)
	}
	assert.NotNil(t, draft.Keywords)
	assert.NotNil(t, draft.TrafficTimeline)
	assert.NotNil(t, draft.Channels)
	assert.Nil(t, draft.PublishedAt)
}
