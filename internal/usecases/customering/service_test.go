package customering

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/synlig/seo-portal-api/infrastructure/repository/memory"
	"github.com/synlig/seo-portal-api/infrastructure/repository/mocks"
	"github.com/synlig/seo-portal-api/internal/domain"
	"go.uber.org/mock/gomock"
)

func newTestService(t *testing.T) (*Service, *memory.CustomerStore, *mocks.MockConnectionRepository) {
	t.Helper()

	ctrl := gomock.NewController(t)
	mockConnectionRepo := mocks.NewMockConnectionRepository(ctrl)
	customerStore := memory.NewCustomerStore()

	service := &Service{
		customerRepo:   customerStore,
		connectionRepo: mockConnectionRepo,
		now: func() time.Time {
			return time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC)
		},
	}
	return service, customerStore, mockConnectionRepo
}

func TestCreateCustomer(t *testing.T) {
	service, _, _ := newTestService(t)

	created, err := service.CreateCustomer(&domain.Customer{Name: "Tandkliniken AB"})
	require.NoError(t, err)

	assert.NotEmpty(t, created.ID)
	assert.True(t, created.Active)
	assert.NotNil(t, created.Services)

	fetched, err := service.GetCustomer(created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Tandkliniken AB", fetched.Name)
}

func TestCreateCustomerRequiresName(t *testing.T) {
	service, _, _ := newTestService(t)

	_, err := service.CreateCustomer(&domain.Customer{})

	assert.ErrorIs(t, err, ErrNameRequired)
}

func TestUpdateCustomerPartial(t *testing.T) {
	service, _, _ := newTestService(t)

	created, err := service.CreateCustomer(&domain.Customer{Name: "Tandkliniken AB", Website: "https://tandkliniken.se"})
	require.NoError(t, err)

	contact := "Anna Andersson"
	updated, err := service.UpdateCustomer(&domain.UpdateCustomerRequest{
		ID:          created.ID,
		ContactName: &contact,
	})
	require.NoError(t, err)

	assert.Equal(t, "Anna Andersson", updated.ContactName)
	// Fields absent from the request keep their values.
	assert.Equal(t, "Tandkliniken AB", updated.Name)
	assert.Equal(t, "https://tandkliniken.se", updated.Website)
}

func TestDeleteCustomerHidesIt(t *testing.T) {
	service, _, _ := newTestService(t)

	created, err := service.CreateCustomer(&domain.Customer{Name: "Tandkliniken AB"})
	require.NoError(t, err)

	require.NoError(t, service.DeleteCustomer(created.ID))

	_, err = service.GetCustomer(created.ID)
	assert.ErrorIs(t, err, ErrCustomerNotFound)

	err = service.DeleteCustomer(created.ID)
	assert.ErrorIs(t, err, ErrCustomerNotFound)
}

func TestSaveConnection(t *testing.T) {
	service, _, mockConnectionRepo := newTestService(t)

	created, err := service.CreateCustomer(&domain.Customer{Name: "Tandkliniken AB"})
	require.NoError(t, err)

	mockConnectionRepo.EXPECT().SaveOrUpdate(gomock.Any()).Return(nil)

	connection, err := service.SaveConnection(&domain.Connection{
		CustomerID: created.ID,
		Provider:   domain.ProviderSearchConsole,
	})
	require.NoError(t, err)

	assert.NotEmpty(t, connection.ID)
	assert.Equal(t, domain.ConnectionPending, connection.Status)
}

func TestSaveConnectionUnknownProvider(t *testing.T) {
	service, _, _ := newTestService(t)

	_, err := service.SaveConnection(&domain.Connection{
		CustomerID: "cust-1",
		Provider:   "bing_webmaster",
	})

	assert.ErrorIs(t, err, ErrUnknownProvider)
}

func TestDeleteConnectionChecksOwnership(t *testing.T) {
	service, _, mockConnectionRepo := newTestService(t)

	mockConnectionRepo.EXPECT().GetByID("conn-1").Return(&domain.Connection{
		ID:         "conn-1",
		CustomerID: "cust-1",
	}, nil)

	err := service.DeleteConnection("cust-2", "conn-1")

	assert.ErrorIs(t, err, ErrConnectionNotFound)
}
