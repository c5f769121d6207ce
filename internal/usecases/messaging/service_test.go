package messaging

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/synlig/seo-portal-api/infrastructure/repository/mocks"
	"github.com/synlig/seo-portal-api/internal/domain"
	"go.uber.org/mock/gomock"
)

type stubMessageNotifier struct {
	received []*domain.Message
}

func (n *stubMessageNotifier) MessageReceived(thread *domain.MessageThread, message *domain.Message) {
	n.received = append(n.received, message)
}

func newTestService(t *testing.T) (*Service, *mocks.MockThreadRepository, *stubMessageNotifier) {
	t.Helper()

	ctrl := gomock.NewController(t)
	mockThreadRepo := mocks.NewMockThreadRepository(ctrl)
	notifier := &stubMessageNotifier{}

	service := &Service{
		threadRepo: mockThreadRepo,
		notifier:   notifier,
		now: func() time.Time {
			return time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC)
		},
	}
	return service, mockThreadRepo, notifier
}

func TestStartThread(t *testing.T) {
	service, mockThreadRepo, notifier := newTestService(t)

	var created *domain.MessageThread
	mockThreadRepo.EXPECT().
		CreateThread(gomock.Any()).
		DoAndReturn(func(thread *domain.MessageThread) error {
			created = thread
			return nil
		})
	mockThreadRepo.EXPECT().
		GetThread(gomock.Any()).
		DoAndReturn(func(id string) (*domain.MessageThread, error) {
			assert.Equal(t, created.ID, id)
			return created, nil
		})
	mockThreadRepo.EXPECT().AppendMessage(gomock.Any()).Return(nil)

	thread, err := service.StartThread("cust-1", "Frågor om januarirapporten", domain.SideCustomer, 42, "Varför sjönk trafiken vecka 2?")
	require.NoError(t, err)

	assert.Equal(t, "cust-1", thread.CustomerID)
	assert.Equal(t, "Frågor om januarirapporten", thread.Subject)
	assert.NotEmpty(t, thread.ID)
	assert.Len(t, notifier.received, 1)
}

func TestStartThreadValidation(t *testing.T) {
	tests := []struct {
		name     string
		subject  string
		body     string
		expected error
	}{
		{name: "empty subject", subject: "", body: "hello", expected: ErrEmptySubject},
		{name: "empty body", subject: "Fråga", body: "", expected: ErrEmptyBody},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, _, _ := newTestService(t)

			_, err := service.StartThread("cust-1", tt.subject, domain.SideCustomer, 42, tt.body)

			assert.ErrorIs(t, err, tt.expected)
		})
	}
}

func TestPostMessageSetsSenderReadFlags(t *testing.T) {
	tests := []struct {
		name           string
		sender         domain.MessageSide
		readByAgency   bool
		readByCustomer bool
	}{
		{name: "agency message is read by the agency", sender: domain.SideAgency, readByAgency: true, readByCustomer: false},
		{name: "customer message is read by the customer", sender: domain.SideCustomer, readByAgency: false, readByCustomer: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, mockThreadRepo, _ := newTestService(t)

			thread := &domain.MessageThread{ID: "thread-1", CustomerID: "cust-1", Subject: "Fråga"}
			mockThreadRepo.EXPECT().GetThread("thread-1").Return(thread, nil)

			var appended *domain.Message
			mockThreadRepo.EXPECT().
				AppendMessage(gomock.Any()).
				DoAndReturn(func(message *domain.Message) error {
					appended = message
					return nil
				})

			message, err := service.PostMessage("thread-1", tt.sender, 7, "Svar på frågan")
			require.NoError(t, err)

			assert.Equal(t, tt.readByAgency, message.ReadByAgency)
			assert.Equal(t, tt.readByCustomer, message.ReadByCustomer)
			assert.Equal(t, appended, message)
			assert.Equal(t, 7, message.AuthorUserID)
		})
	}
}

func TestPostMessageMissingThread(t *testing.T) {
	service, mockThreadRepo, notifier := newTestService(t)

	mockThreadRepo.EXPECT().GetThread("gone").Return(nil, nil)

	_, err := service.PostMessage("gone", domain.SideAgency, 7, "Hallå?")

	assert.ErrorIs(t, err, ErrThreadNotFound)
	assert.Empty(t, notifier.received)
}

func TestGetThreadOwnership(t *testing.T) {
	service, mockThreadRepo, _ := newTestService(t)

	thread := &domain.MessageThread{ID: "thread-1", CustomerID: "cust-1", Subject: "Fråga"}
	mockThreadRepo.EXPECT().GetThread("thread-1").Return(thread, nil)

	_, _, err := service.GetThread("thread-1", domain.SideCustomer, "cust-2")

	assert.ErrorIs(t, err, ErrWrongCustomer)
}

func TestGetThreadMarksRead(t *testing.T) {
	service, mockThreadRepo, _ := newTestService(t)

	thread := &domain.MessageThread{ID: "thread-1", CustomerID: "cust-1", Subject: "Fråga"}
	messages := []*domain.Message{
		{ID: "msg-1", ThreadID: "thread-1", Sender: domain.SideAgency, Body: "Rapporten är klar"},
	}

	mockThreadRepo.EXPECT().GetThread("thread-1").Return(thread, nil)
	mockThreadRepo.EXPECT().ListMessages("thread-1").Return(messages, nil)
	mockThreadRepo.EXPECT().MarkThreadRead("thread-1", domain.SideCustomer).Return(nil)

	gotThread, gotMessages, err := service.GetThread("thread-1", domain.SideCustomer, "cust-1")
	require.NoError(t, err)

	assert.Equal(t, thread, gotThread)
	assert.Len(t, gotMessages, 1)
}

func TestListThreadsScoping(t *testing.T) {
	t.Run("client users are scoped to their customer", func(t *testing.T) {
		service, mockThreadRepo, _ := newTestService(t)

		mockThreadRepo.EXPECT().
			ListThreadsByCustomer("cust-1", domain.SideCustomer).
			Return([]*domain.MessageThread{{ID: "thread-1"}}, nil)

		threads, err := service.ListThreads(domain.SideCustomer, "cust-1")
		require.NoError(t, err)
		assert.Len(t, threads, 1)
	})

	t.Run("agency users see every thread", func(t *testing.T) {
		service, mockThreadRepo, _ := newTestService(t)

		mockThreadRepo.EXPECT().
			ListThreads(domain.SideAgency).
			Return([]*domain.MessageThread{{ID: "thread-1"}, {ID: "thread-2"}}, nil)

		threads, err := service.ListThreads(domain.SideAgency, "")
		require.NoError(t, err)
		assert.Len(t, threads, 2)
	})
}

func TestMarkReadMissingThread(t *testing.T) {
	service, mockThreadRepo, _ := newTestService(t)

	mockThreadRepo.EXPECT().GetThread("gone").Return(nil, nil)

	err := service.MarkRead("gone", domain.SideAgency)

	assert.ErrorIs(t, err, ErrThreadNotFound)
}
