package notifying

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/synlig/seo-portal-api/infrastructure/repository/mocks"
	"github.com/synlig/seo-portal-api/internal/domain"
	"github.com/synlig/seo-portal-api/internal/usecases/reporting"
	"go.uber.org/mock/gomock"
)

func newTestService(t *testing.T) (*Service, *mocks.MockNotificationRepository, *mocks.MockUserRepository, *mocks.MockSettingsRepository) {
	t.Helper()

	ctrl := gomock.NewController(t)
	mockNotificationRepo := mocks.NewMockNotificationRepository(ctrl)
	mockUserRepo := mocks.NewMockUserRepository(ctrl)
	mockSettingsRepo := mocks.NewMockSettingsRepository(ctrl)

	service := &Service{
		notificationRepo: mockNotificationRepo,
		userRepo:         mockUserRepo,
		settingsRepo:     mockSettingsRepo,
		now: func() time.Time {
			return time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC)
		},
	}
	return service, mockNotificationRepo, mockUserRepo, mockSettingsRepo
}

func publishedReport() *domain.SeoPeriodReport {
	return &domain.SeoPeriodReport{
		CustomerID: "cust-1",
		PeriodType: domain.PeriodMonthly,
		PeriodKey:  "2026-01",
		Status:     domain.StatusPublished,
	}
}

func TestReportPublishedNotifiesActiveCustomerUsers(t *testing.T) {
	service, mockNotificationRepo, mockUserRepo, mockSettingsRepo := newTestService(t)

	mockSettingsRepo.EXPECT().GetSettings().Return(&domain.AgencySettings{NotifyOnPublish: true}, nil)
	mockUserRepo.EXPECT().ListUsersByCustomer("cust-1").Return([]*domain.User{
		{ID: 1, Active: true, RoleID: domain.RoleClient},
		{ID: 2, Active: false, RoleID: domain.RoleClient},
		{ID: 3, Active: true, RoleID: domain.RoleClient},
	}, nil)

	var delivered []*domain.Notification
	mockNotificationRepo.EXPECT().
		Create(gomock.Any()).
		DoAndReturn(func(notification *domain.Notification) error {
			delivered = append(delivered, notification)
			return nil
		}).Times(2)

	service.ReportPublished(publishedReport())

	assert.Len(t, delivered, 2)
	assert.Equal(t, domain.NotifyReportPublished, delivered[0].Kind)
	assert.Equal(t, "cust-1:monthly:2026-01", delivered[0].RefID)
	assert.NotEmpty(t, delivered[0].ID)
}

func TestReportPublishedHonorsSettings(t *testing.T) {
	service, _, _, mockSettingsRepo := newTestService(t)

	mockSettingsRepo.EXPECT().GetSettings().Return(&domain.AgencySettings{NotifyOnPublish: false}, nil)

	// No user lookup and no deliveries when publish notifications are off.
	service.ReportPublished(publishedReport())
}

func TestUploadProcessedSkipsClientUsers(t *testing.T) {
	service, mockNotificationRepo, mockUserRepo, _ := newTestService(t)

	mockUserRepo.EXPECT().ListUsers().Return([]*domain.User{
		{ID: 1, Active: true, RoleID: domain.RoleAdmin},
		{ID: 2, Active: true, RoleID: domain.RoleClient},
		{ID: 3, Active: true, RoleID: domain.RoleManager},
	}, nil)

	var recipients []int
	mockNotificationRepo.EXPECT().
		Create(gomock.Any()).
		DoAndReturn(func(notification *domain.Notification) error {
			recipients = append(recipients, notification.UserID)
			return nil
		}).Times(2)

	service.UploadProcessed(publishedReport(), reporting.UploadSummary{
		Filename:    "ranking.xlsx",
		TablesFound: 2,
		KeywordRows: 40,
	})

	assert.Equal(t, []int{1, 3}, recipients)
}

func TestMessageReceivedNotifiesOppositeSide(t *testing.T) {
	thread := &domain.MessageThread{ID: "thread-1", CustomerID: "cust-1", Subject: "Fråga"}

	t.Run("customer message reaches agency staff", func(t *testing.T) {
		service, mockNotificationRepo, mockUserRepo, mockSettingsRepo := newTestService(t)

		mockSettingsRepo.EXPECT().GetSettings().Return(&domain.AgencySettings{NotifyOnMessage: true}, nil)
		mockUserRepo.EXPECT().ListUsers().Return([]*domain.User{
			{ID: 1, Active: true, RoleID: domain.RoleAdmin},
			{ID: 5, Active: true, RoleID: domain.RoleClient},
		}, nil)

		mockNotificationRepo.EXPECT().
			Create(gomock.Any()).
			DoAndReturn(func(notification *domain.Notification) error {
				assert.Equal(t, 1, notification.UserID)
				assert.Equal(t, "thread-1", notification.RefID)
				return nil
			})

		service.MessageReceived(thread, &domain.Message{
			Sender:       domain.SideCustomer,
			AuthorUserID: 5,
		})
	})

	t.Run("agency message reaches the customer's users, not the author", func(t *testing.T) {
		service, mockNotificationRepo, mockUserRepo, mockSettingsRepo := newTestService(t)

		mockSettingsRepo.EXPECT().GetSettings().Return(&domain.AgencySettings{NotifyOnMessage: true}, nil)
		mockUserRepo.EXPECT().ListUsersByCustomer("cust-1").Return([]*domain.User{
			{ID: 5, Active: true, RoleID: domain.RoleClient},
			{ID: 6, Active: true, RoleID: domain.RoleClient},
		}, nil)

		var recipients []int
		mockNotificationRepo.EXPECT().
			Create(gomock.Any()).
			DoAndReturn(func(notification *domain.Notification) error {
				recipients = append(recipients, notification.UserID)
				return nil
			}).Times(2)

		service.MessageReceived(thread, &domain.Message{
			Sender:       domain.SideAgency,
			AuthorUserID: 1,
		})

		assert.Equal(t, []int{5, 6}, recipients)
	})
}

func TestListNotificationsDefaultsLimit(t *testing.T) {
	service, mockNotificationRepo, _, _ := newTestService(t)

	mockNotificationRepo.EXPECT().ListByUser(7, 20).Return([]*domain.Notification{}, nil)

	_, err := service.ListNotifications(7, 0)

	assert.NoError(t, err)
}
