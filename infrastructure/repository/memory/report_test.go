package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/synlig/seo-portal-api/infrastructure/repository"
	"github.com/synlig/seo-portal-api/internal/domain"
)

func TestReportStoreVersioning(t *testing.T) {
	store := NewReportStore()
	key := domain.ReportKey{CustomerID: "cust-1", PeriodType: domain.PeriodMonthly, PeriodKey: "2026-01"}

	draft := domain.NewDraftReport(key.CustomerID, key.PeriodType, key.PeriodKey)
	require.NoError(t, store.UpsertReport(draft))
	assert.Equal(t, 1, draft.Version)

	current, err := store.GetReport(key)
	require.NoError(t, err)

	// A writer holding the current version may update.
	current.AdminNotes = "first writer"
	require.NoError(t, store.UpsertReport(current))

	// A writer holding the old version must not overwrite the first one.
	stale, err := store.GetReport(key)
	require.NoError(t, err)
	stale.Version = 1
	stale.AdminNotes = "stale writer"
	assert.ErrorIs(t, store.UpsertReport(stale), repository.ErrVersionConflict)

	stored, err := store.GetReport(key)
	require.NoError(t, err)
	assert.Equal(t, "first writer", stored.AdminNotes)
}

func TestReportStoreRejectsStampedInsert(t *testing.T) {
	store := NewReportStore()

	report := domain.NewDraftReport("cust-1", domain.PeriodMonthly, "2026-01")
	report.Version = 3

	assert.ErrorIs(t, store.UpsertReport(report), repository.ErrVersionConflict)
}

func TestReportStorePublish(t *testing.T) {
	store := NewReportStore()
	key := domain.ReportKey{CustomerID: "cust-1", PeriodType: domain.PeriodMonthly, PeriodKey: "2026-01"}

	missing, err := store.PublishReport(key)
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.NoError(t, store.UpsertReport(domain.NewDraftReport(key.CustomerID, key.PeriodType, key.PeriodKey)))

	published, err := store.PublishReport(key)
	require.NoError(t, err)
	require.NotNil(t, published)
	assert.Equal(t, domain.StatusPublished, published.Status)
	require.NotNil(t, published.PublishedAt)

	// Drafts are invisible through the published lookup; published reports
	// are not.
	report, err := store.GetPublishedReport(key)
	require.NoError(t, err)
	require.NotNil(t, report)

	again, err := store.PublishReport(key)
	require.NoError(t, err)
	assert.True(t, published.PublishedAt.Equal(*again.PublishedAt))
}

func TestReportStoreListPeriods(t *testing.T) {
	store := NewReportStore()

	for _, periodKey := range []string{"2025-11", "2026-01", "2025-12"} {
		require.NoError(t, store.UpsertReport(domain.NewDraftReport("cust-1", domain.PeriodMonthly, periodKey)))
	}
	require.NoError(t, store.UpsertReport(domain.NewDraftReport("cust-1", domain.PeriodWeekly, "2026-W02")))
	require.NoError(t, store.UpsertReport(domain.NewDraftReport("cust-2", domain.PeriodMonthly, "2026-01")))

	periods, err := store.ListPeriods("cust-1", domain.PeriodMonthly)
	require.NoError(t, err)

	assert.Equal(t, []string{"2026-01", "2025-12", "2025-11"}, periods)
}

func TestReportStoreListRecentPublished(t *testing.T) {
	store := NewReportStore()

	for _, customerID := range []string{"cust-1", "cust-2", "cust-3"} {
		key := domain.ReportKey{CustomerID: customerID, PeriodType: domain.PeriodMonthly, PeriodKey: "2026-01"}
		require.NoError(t, store.UpsertReport(domain.NewDraftReport(key.CustomerID, key.PeriodType, key.PeriodKey)))
		if customerID != "cust-3" {
			_, err := store.PublishReport(key)
			require.NoError(t, err)
		}
	}

	reports, err := store.ListRecentPublishedReports(1)
	require.NoError(t, err)
	assert.Len(t, reports, 1)

	reports, err = store.ListRecentPublishedReports(10)
	require.NoError(t, err)
	// The draft for cust-3 never shows up.
	assert.Len(t, reports, 2)
}
