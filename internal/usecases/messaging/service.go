package messaging

import (
	"time"

	"github.com/pkg/errors"
	"github.com/synlig/seo-portal-api/infrastructure/repository"
	"github.com/synlig/seo-portal-api/internal/domain"
	"github.com/synlig/seo-portal-api/pkg/utils"
)

var (
	ErrThreadNotFound = errors.New("thread not found")
	ErrEmptyBody      = errors.New("message body is empty")
	ErrEmptySubject   = errors.New("thread subject is empty")
	ErrWrongCustomer  = errors.New("thread belongs to another customer")
)

// MessageNotifier is invoked when a new message lands so the other side can
// get a notification badge.
type MessageNotifier interface {
	MessageReceived(thread *domain.MessageThread, message *domain.Message)
}

type MessagingService interface {
	StartThread(customerID string, subject string, sender domain.MessageSide, authorUserID int, body string) (*domain.MessageThread, error)
	ListThreads(viewer domain.MessageSide, customerID string) ([]*domain.MessageThread, error)
	GetThread(threadID string, viewer domain.MessageSide, customerID string) (*domain.MessageThread, []*domain.Message, error)
	PostMessage(threadID string, sender domain.MessageSide, authorUserID int, body string) (*domain.Message, error)
	MarkRead(threadID string, viewer domain.MessageSide) error
}

type Service struct {
	threadRepo repository.ThreadRepository
	notifier   MessageNotifier
	now        func() time.Time
}

func NewService(threadRepo repository.ThreadRepository, notifier MessageNotifier) MessagingService {
	return &Service{
		threadRepo: threadRepo,
		notifier:   notifier,
		now:        time.Now,
	}
}

// StartThread opens a conversation and posts its first message.
func (s *Service) StartThread(customerID string, subject string, sender domain.MessageSide, authorUserID int, body string) (*domain.MessageThread, error) {
	if subject == "" {
		return nil, ErrEmptySubject
	}
	if body == "" {
		return nil, ErrEmptyBody
	}

	threadID, err := utils.GenerateID()
	if err != nil {
		return nil, err
	}

	thread := &domain.MessageThread{
		ID:         threadID,
		CustomerID: customerID,
		Subject:    subject,
		CreatedAt:  s.now().UTC(),
	}

	if err := s.threadRepo.CreateThread(thread); err != nil {
		return nil, err
	}

	if _, err := s.PostMessage(thread.ID, sender, authorUserID, body); err != nil {
		return nil, err
	}

	return thread, nil
}

// ListThreads returns the viewer's threads with unread counts. Client users
// pass their customer ID and only see that customer's threads; agency users
// pass an empty customer ID and see everything.
func (s *Service) ListThreads(viewer domain.MessageSide, customerID string) ([]*domain.MessageThread, error) {
	if customerID != "" {
		return s.threadRepo.ListThreadsByCustomer(customerID, viewer)
	}
	return s.threadRepo.ListThreads(viewer)
}

func (s *Service) GetThread(threadID string, viewer domain.MessageSide, customerID string) (*domain.MessageThread, []*domain.Message, error) {
	thread, err := s.threadRepo.GetThread(threadID)
	if err != nil {
		return nil, nil, err
	}
	if thread == nil {
		return nil, nil, ErrThreadNotFound
	}
	if customerID != "" && thread.CustomerID != customerID {
		return nil, nil, ErrWrongCustomer
	}

	messages, err := s.threadRepo.ListMessages(threadID)
	if err != nil {
		return nil, nil, err
	}

	if err := s.threadRepo.MarkThreadRead(threadID, viewer); err != nil {
		return nil, nil, err
	}

	return thread, messages, nil
}

func (s *Service) PostMessage(threadID string, sender domain.MessageSide, authorUserID int, body string) (*domain.Message, error) {
	if body == "" {
		return nil, ErrEmptyBody
	}

	thread, err := s.threadRepo.GetThread(threadID)
	if err != nil {
		return nil, err
	}
	if thread == nil {
		return nil, ErrThreadNotFound
	}

	messageID, err := utils.GenerateID()
	if err != nil {
		return nil, err
	}

	message := &domain.Message{
		ID:           messageID,
		ThreadID:     threadID,
		Sender:       sender,
		AuthorUserID: authorUserID,
		Body:         body,
		SentAt:       s.now().UTC(),
		// The sender has read their own message.
		ReadByAgency:   sender == domain.SideAgency,
		ReadByCustomer: sender == domain.SideCustomer,
	}

	if err := s.threadRepo.AppendMessage(message); err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.MessageReceived(thread, message)
	}

	return message, nil
}

func (s *Service) MarkRead(threadID string, viewer domain.MessageSide) error {
	thread, err := s.threadRepo.GetThread(threadID)
	if err != nil {
		return err
	}
	if thread == nil {
		return ErrThreadNotFound
	}
	return s.threadRepo.MarkThreadRead(threadID, viewer)
}
