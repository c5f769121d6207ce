package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/sirupsen/logrus"
	"github.com/synlig/seo-portal-api/infrastructure/repository"
	"github.com/synlig/seo-portal-api/internal/config"
	"github.com/synlig/seo-portal-api/internal/domain"
	"github.com/synlig/seo-portal-api/internal/usecases/reporting"
)

// DraftSeederConfig configures the draft seeding scheduler.
type DraftSeederConfig struct {
	CronSchedule string
	SeedEnabled  bool
}

// DraftSeederService seeds draft reports for every active customer at the
// start of each period so uploads always have a target.
type DraftSeederService struct {
	scheduler         *gocron.Scheduler
	config            DraftSeederConfig
	reportingService  reporting.ReportingService
	settingsRepo      repository.SettingsRepository
	seedRunning       bool
	seedMutex         sync.Mutex
	lastRunStartedAt  time.Time
	lastRunFinishedAt time.Time
	lastRunResult     *reporting.DraftGenerationResult
}

func NewDraftSeederService(
	reportingService reporting.ReportingService,
	settingsRepo repository.SettingsRepository,
	appConfig *config.Config,
) *DraftSeederService {
	seederConfig := DraftSeederConfig{
		CronSchedule: appConfig.DraftSeeder.CronSchedule,
		SeedEnabled:  appConfig.DraftSeeder.Enabled,
	}

	scheduler := gocron.NewScheduler(time.Local)

	logrus.WithFields(logrus.Fields{
		"cron_schedule": seederConfig.CronSchedule,
		"seed_enabled":  seederConfig.SeedEnabled,
	}).Info("Draft seeder configuration loaded")

	return &DraftSeederService{
		scheduler:        scheduler,
		config:           seederConfig,
		reportingService: reportingService,
		settingsRepo:     settingsRepo,
		seedRunning:      false,
	}
}

// Start schedules the seeder and wires shutdown to the context.
func (s *DraftSeederService) Start(ctx context.Context) error {
	if !s.config.SeedEnabled {
		logrus.Info("Draft seeding disabled by configuration")
		return nil
	}

	logrus.WithField("cron", s.config.CronSchedule).Info("Starting draft seeder scheduler")

	_, err := s.scheduler.Cron(s.config.CronSchedule).Do(func() {
		s.seedDrafts()
	})
	if err != nil {
		return fmt.Errorf("scheduling draft seeding: %w", err)
	}

	s.scheduler.StartAsync()

	go func() {
		<-ctx.Done()
		logrus.Info("Stopping draft seeder scheduler")
		s.scheduler.Stop()
	}()

	return nil
}

// seedDrafts runs one seeding pass for the current period. The period type
// comes from the agency settings so weekly agencies get weekly drafts.
func (s *DraftSeederService) seedDrafts() {
	s.seedMutex.Lock()
	if s.seedRunning {
		s.seedMutex.Unlock()
		logrus.Info("Draft seeding already in progress, skipping")
		return
	}
	s.seedRunning = true
	s.seedMutex.Unlock()

	startTime := time.Now()
	s.lastRunStartedAt = startTime

	defer func() {
		s.seedMutex.Lock()
		s.seedRunning = false
		s.seedMutex.Unlock()
	}()

	periodType := s.defaultPeriodType()
	periodKey := domain.CurrentPeriodKey(periodType, startTime)

	logrus.WithFields(logrus.Fields{
		"period_type": periodType,
		"period_key":  periodKey,
	}).Info("Starting draft seeding run")

	result, err := s.reportingService.GenerateDrafts(periodType, periodKey)
	if err != nil {
		logrus.WithError(err).Error("Draft seeding run failed")
		return
	}

	s.lastRunResult = result
	s.lastRunFinishedAt = time.Now()

	logrus.WithFields(logrus.Fields{
		"duration": time.Since(startTime).String(),
		"created":  result.Created,
		"existing": result.Existing,
		"total":    result.Total,
	}).Info("Draft seeding run finished")
}

func (s *DraftSeederService) defaultPeriodType() domain.PeriodType {
	settings, err := s.settingsRepo.GetSettings()
	if err != nil || settings == nil {
		logrus.WithError(err).Warn("Could not load settings, seeding monthly drafts")
		return domain.PeriodMonthly
	}
	if settings.DefaultPeriodType == domain.PeriodWeekly {
		return domain.PeriodWeekly
	}
	return domain.PeriodMonthly
}

// TriggerManualSeed starts a seeding run outside the schedule.
func (s *DraftSeederService) TriggerManualSeed() {
	s.seedMutex.Lock()
	if s.seedRunning {
		s.seedMutex.Unlock()
		logrus.Info("Draft seeding already in progress, ignoring manual trigger")
		return
	}
	s.seedMutex.Unlock()

	logrus.Info("Starting manual draft seeding run")
	go s.seedDrafts()
}

// GetStatus reports the scheduler state for the admin endpoint.
func (s *DraftSeederService) GetStatus() map[string]any {
	s.seedMutex.Lock()
	defer s.seedMutex.Unlock()

	status := map[string]any{
		"seed_running":         s.seedRunning,
		"seed_cron":            s.config.CronSchedule,
		"seed_enabled":         s.config.SeedEnabled,
		"last_run_started_at":  s.lastRunStartedAt,
		"last_run_finished_at": s.lastRunFinishedAt,
	}
	if s.lastRunResult != nil {
		status["last_run_created"] = s.lastRunResult.Created
		status["last_run_existing"] = s.lastRunResult.Existing
	}
	return status
}
