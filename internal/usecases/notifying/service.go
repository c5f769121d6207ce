package notifying

import (
	"fmt"
	"time"

	"github.com/synlig/seo-portal-api/infrastructure/repository"
	"github.com/synlig/seo-portal-api/internal/domain"
	"github.com/synlig/seo-portal-api/internal/usecases/reporting"
	"github.com/synlig/seo-portal-api/pkg/log"
	"github.com/synlig/seo-portal-api/pkg/utils"
)

// NotifyingService fans reporting and messaging events out to user
// notifications and serves the badge endpoints. Delivery failures are logged
// and swallowed; notifications never break the triggering operation.
type NotifyingService interface {
	reporting.Notifier

	MessageReceived(thread *domain.MessageThread, message *domain.Message)
	ListNotifications(userID int, limit int) ([]*domain.Notification, error)
	CountUnread(userID int) (int, error)
	MarkRead(id string, userID int) error
	MarkAllRead(userID int) error
}

type Service struct {
	notificationRepo repository.NotificationRepository
	userRepo         repository.UserRepository
	settingsRepo     repository.SettingsRepository
	now              func() time.Time
}

func NewService(notificationRepo repository.NotificationRepository, userRepo repository.UserRepository, settingsRepo repository.SettingsRepository) NotifyingService {
	return &Service{
		notificationRepo: notificationRepo,
		userRepo:         userRepo,
		settingsRepo:     settingsRepo,
		now:              time.Now,
	}
}

// ReportPublished notifies every active user of the report's customer.
func (s *Service) ReportPublished(report *domain.SeoPeriodReport) {
	settings := s.settings()
	if !settings.NotifyOnPublish {
		return
	}

	users, err := s.userRepo.ListUsersByCustomer(report.CustomerID)
	if err != nil {
		log.L.WithError(err).WithField("customer_id", report.CustomerID).
			Error("failed to resolve users for publish notification")
		return
	}

	title := fmt.Sprintf("Report for %s is ready", report.PeriodKey)
	for _, user := range users {
		if !user.Active {
			continue
		}
		s.deliver(user.ID, domain.NotifyReportPublished, title, "", report.Key().String())
	}
}

// UploadProcessed notifies agency staff that an upload landed in a draft.
func (s *Service) UploadProcessed(report *domain.SeoPeriodReport, summary reporting.UploadSummary) {
	users, err := s.userRepo.ListUsers()
	if err != nil {
		log.L.WithError(err).Error("failed to resolve users for upload notification")
		return
	}

	title := fmt.Sprintf("Upload %s processed", summary.Filename)
	body := fmt.Sprintf("%d tables, %d keyword rows, %d KPIs", summary.TablesFound, summary.KeywordRows, summary.KPIsExtracted)

	for _, user := range users {
		if !user.Active || user.RoleID == domain.RoleClient {
			continue
		}
		s.deliver(user.ID, domain.NotifyUploadProcessed, title, body, report.Key().String())
	}
}

// MessageReceived notifies the side that did not send the message.
func (s *Service) MessageReceived(thread *domain.MessageThread, message *domain.Message) {
	settings := s.settings()
	if !settings.NotifyOnMessage {
		return
	}

	var recipients []*domain.User
	var err error
	if message.Sender == domain.SideCustomer {
		recipients, err = s.agencyUsers()
	} else {
		recipients, err = s.userRepo.ListUsersByCustomer(thread.CustomerID)
	}
	if err != nil {
		log.L.WithError(err).WithField("thread_id", thread.ID).
			Error("failed to resolve users for message notification")
		return
	}

	title := fmt.Sprintf("New message in %q", thread.Subject)
	for _, user := range recipients {
		if !user.Active || user.ID == message.AuthorUserID {
			continue
		}
		s.deliver(user.ID, domain.NotifyMessageReceived, title, "", thread.ID)
	}
}

func (s *Service) ListNotifications(userID int, limit int) ([]*domain.Notification, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.notificationRepo.ListByUser(userID, limit)
}

func (s *Service) CountUnread(userID int) (int, error) {
	return s.notificationRepo.CountUnread(userID)
}

func (s *Service) MarkRead(id string, userID int) error {
	return s.notificationRepo.MarkRead(id, userID)
}

func (s *Service) MarkAllRead(userID int) error {
	return s.notificationRepo.MarkAllRead(userID)
}

func (s *Service) deliver(userID int, kind domain.NotificationKind, title, body, refID string) {
	id, err := utils.GenerateID()
	if err != nil {
		log.L.WithError(err).Error("failed to generate notification id")
		return
	}

	notification := &domain.Notification{
		ID:        id,
		UserID:    userID,
		Kind:      kind,
		Title:     title,
		Body:      body,
		RefID:     refID,
		CreatedAt: s.now().UTC(),
	}

	if err := s.notificationRepo.Create(notification); err != nil {
		log.L.WithError(err).WithFields(log.Fields{
			"user_id": userID,
			"kind":    kind,
		}).Error("failed to create notification")
	}
}

func (s *Service) settings() *domain.AgencySettings {
	settings, err := s.settingsRepo.GetSettings()
	if err != nil || settings == nil {
		return domain.DefaultAgencySettings()
	}
	return settings
}

func (s *Service) agencyUsers() ([]*domain.User, error) {
	users, err := s.userRepo.ListUsers()
	if err != nil {
		return nil, err
	}

	agency := make([]*domain.User, 0, len(users))
	for _, user := range users {
		if user.RoleID == domain.RoleClient {
			continue
		}
		agency = append(agency, user)
	}
	return agency, nil
}
