package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/synlig/seo-portal-api/infrastructure/repository/memory"
	"github.com/synlig/seo-portal-api/infrastructure/repository/mocks"
	"github.com/synlig/seo-portal-api/internal/domain"
	"github.com/synlig/seo-portal-api/internal/usecases/reporting"
	"go.uber.org/mock/gomock"
)

func newTestSeeder(t *testing.T) (*DraftSeederService, *memory.ReportStore, *memory.CustomerStore, *mocks.MockSettingsRepository) {
	t.Helper()

	ctrl := gomock.NewController(t)
	mockSettingsRepo := mocks.NewMockSettingsRepository(ctrl)

	reportStore := memory.NewReportStore()
	customerStore := memory.NewCustomerStore()
	reportingService := reporting.NewService(reportStore, customerStore, nil)

	service := &DraftSeederService{
		config: DraftSeederConfig{
			CronSchedule: "0 5 1 * *",
			SeedEnabled:  true,
		},
		reportingService: reportingService,
		settingsRepo:     mockSettingsRepo,
	}
	return service, reportStore, customerStore, mockSettingsRepo
}

func TestDefaultPeriodType(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(mockSettingsRepo *mocks.MockSettingsRepository)
		expected domain.PeriodType
	}{
		{
			name: "weekly agencies seed weekly drafts",
			setup: func(mockSettingsRepo *mocks.MockSettingsRepository) {
				mockSettingsRepo.EXPECT().GetSettings().Return(&domain.AgencySettings{
					DefaultPeriodType: domain.PeriodWeekly,
				}, nil)
			},
			expected: domain.PeriodWeekly,
		},
		{
			name: "missing settings fall back to monthly",
			setup: func(mockSettingsRepo *mocks.MockSettingsRepository) {
				mockSettingsRepo.EXPECT().GetSettings().Return(nil, nil)
			},
			expected: domain.PeriodMonthly,
		},
		{
			name: "settings load failure falls back to monthly",
			setup: func(mockSettingsRepo *mocks.MockSettingsRepository) {
				mockSettingsRepo.EXPECT().GetSettings().Return(nil, assert.AnError)
			},
			expected: domain.PeriodMonthly,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, _, _, mockSettingsRepo := newTestSeeder(t)
			tt.setup(mockSettingsRepo)

			assert.Equal(t, tt.expected, service.defaultPeriodType())
		})
	}
}

func TestSeedDrafts(t *testing.T) {
	service, reportStore, customerStore, mockSettingsRepo := newTestSeeder(t)

	require.NoError(t, customerStore.CreateCustomer(&domain.Customer{ID: "cust-1", Name: "Tandkliniken", Active: true}))
	require.NoError(t, customerStore.CreateCustomer(&domain.Customer{ID: "cust-2", Name: "Bilverkstan", Active: true}))

	mockSettingsRepo.EXPECT().GetSettings().Return(&domain.AgencySettings{
		DefaultPeriodType: domain.PeriodMonthly,
	}, nil)

	service.seedDrafts()

	periodKey := domain.CurrentPeriodKey(domain.PeriodMonthly, time.Now())
	report, err := reportStore.GetReport(domain.ReportKey{
		CustomerID: "cust-1",
		PeriodType: domain.PeriodMonthly,
		PeriodKey:  periodKey,
	})
	require.NoError(t, err)
	require.NotNil(t, report)
	assert.Equal(t, domain.StatusDraft, report.Status)

	status := service.GetStatus()
	assert.Equal(t, false, status["seed_running"])
	assert.Equal(t, 2, status["last_run_created"])
	assert.Equal(t, 0, status["last_run_existing"])
}

func TestSeedDraftsIsIdempotentAcrossRuns(t *testing.T) {
	service, _, customerStore, mockSettingsRepo := newTestSeeder(t)

	require.NoError(t, customerStore.CreateCustomer(&domain.Customer{ID: "cust-1", Name: "Tandkliniken", Active: true}))

	mockSettingsRepo.EXPECT().GetSettings().Return(nil, nil).Times(2)

	service.seedDrafts()
	service.seedDrafts()

	status := service.GetStatus()
	assert.Equal(t, 0, status["last_run_created"])
	assert.Equal(t, 1, status["last_run_existing"])
}

func TestGetStatusBeforeFirstRun(t *testing.T) {
	service, _, _, _ := newTestSeeder(t)

	status := service.GetStatus()

	assert.Equal(t, false, status["seed_running"])
	assert.Equal(t, "0 5 1 * *", status["seed_cron"])
	assert.Equal(t, true, status["seed_enabled"])
	assert.NotContains(t, status, "last_run_created")
}
