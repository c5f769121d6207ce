package customering

import (
	"time"

	"github.com/pkg/errors"
	"github.com/synlig/seo-portal-api/infrastructure/repository"
	"github.com/synlig/seo-portal-api/internal/domain"
	"github.com/synlig/seo-portal-api/pkg/log"
	"github.com/synlig/seo-portal-api/pkg/utils"
)

var (
	ErrCustomerNotFound   = errors.New("customer not found")
	ErrNameRequired       = errors.New("customer name is required")
	ErrUnknownProvider    = errors.New("unknown provider")
	ErrConnectionNotFound = errors.New("connection not found")
)

type CustomerService interface {
	GetCustomer(id string) (*domain.Customer, error)
	ListCustomers(includeInactive bool) ([]*domain.Customer, error)
	CreateCustomer(customer *domain.Customer) (*domain.Customer, error)
	UpdateCustomer(req *domain.UpdateCustomerRequest) (*domain.Customer, error)
	DeleteCustomer(id string) error

	ListConnections(customerID string) ([]*domain.Connection, error)
	SaveConnection(connection *domain.Connection) (*domain.Connection, error)
	DeleteConnection(customerID, connectionID string) error
}

type Service struct {
	customerRepo   repository.CustomerRepository
	connectionRepo repository.ConnectionRepository
	now            func() time.Time
}

func NewService(customerRepo repository.CustomerRepository, connectionRepo repository.ConnectionRepository) CustomerService {
	return &Service{
		customerRepo:   customerRepo,
		connectionRepo: connectionRepo,
		now:            time.Now,
	}
}

func (s *Service) GetCustomer(id string) (*domain.Customer, error) {
	customer, err := s.customerRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, ErrCustomerNotFound
	}
	return customer, nil
}

func (s *Service) ListCustomers(includeInactive bool) ([]*domain.Customer, error) {
	return s.customerRepo.ListCustomers(includeInactive)
}

func (s *Service) CreateCustomer(customer *domain.Customer) (*domain.Customer, error) {
	if customer.Name == "" {
		return nil, ErrNameRequired
	}

	if customer.ID == "" {
		id, err := utils.GenerateID()
		if err != nil {
			return nil, err
		}
		customer.ID = id
	}
	if customer.Services == nil {
		customer.Services = []string{}
	}

	now := s.now().UTC()
	customer.Active = true
	customer.CreatedAt = now
	customer.UpdatedAt = now

	if err := s.customerRepo.CreateCustomer(customer); err != nil {
		return nil, err
	}

	log.L.WithField("customer_id", customer.ID).Info("customer created")
	return customer, nil
}

func (s *Service) UpdateCustomer(req *domain.UpdateCustomerRequest) (*domain.Customer, error) {
	customer, err := s.customerRepo.GetByID(req.ID)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, ErrCustomerNotFound
	}

	if req.Name != nil {
		if *req.Name == "" {
			return nil, ErrNameRequired
		}
		customer.Name = *req.Name
	}
	if req.OrgNumber != nil {
		customer.OrgNumber = *req.OrgNumber
	}
	if req.ContactName != nil {
		customer.ContactName = *req.ContactName
	}
	if req.ContactEmail != nil {
		customer.ContactEmail = *req.ContactEmail
	}
	if req.Website != nil {
		customer.Website = *req.Website
	}
	if req.Active != nil {
		customer.Active = *req.Active
	}
	if req.Services != nil {
		customer.Services = *req.Services
	}
	if req.Notes != nil {
		customer.Notes = *req.Notes
	}
	customer.UpdatedAt = s.now().UTC()

	if err := s.customerRepo.UpdateCustomer(customer); err != nil {
		return nil, err
	}
	return customer, nil
}

func (s *Service) DeleteCustomer(id string) error {
	customer, err := s.customerRepo.GetByID(id)
	if err != nil {
		return err
	}
	if customer == nil {
		return ErrCustomerNotFound
	}
	return s.customerRepo.SoftDeleteCustomer(id)
}

func (s *Service) ListConnections(customerID string) ([]*domain.Connection, error) {
	if _, err := s.GetCustomer(customerID); err != nil {
		return nil, err
	}
	return s.connectionRepo.ListByCustomer(customerID)
}

// SaveConnection creates or updates a customer's provider connection. A
// customer holds at most one connection per provider.
func (s *Service) SaveConnection(connection *domain.Connection) (*domain.Connection, error) {
	if !domain.ValidProvider(connection.Provider) {
		return nil, ErrUnknownProvider
	}
	if _, err := s.GetCustomer(connection.CustomerID); err != nil {
		return nil, err
	}

	if connection.ID == "" {
		id, err := utils.GenerateID()
		if err != nil {
			return nil, err
		}
		connection.ID = id
	}
	if connection.Status == "" {
		connection.Status = domain.ConnectionPending
	}

	now := s.now().UTC()
	if connection.CreatedAt.IsZero() {
		connection.CreatedAt = now
	}
	connection.UpdatedAt = now

	if err := s.connectionRepo.SaveOrUpdate(connection); err != nil {
		return nil, err
	}
	return connection, nil
}

func (s *Service) DeleteConnection(customerID, connectionID string) error {
	connection, err := s.connectionRepo.GetByID(connectionID)
	if err != nil {
		return err
	}
	if connection == nil || connection.CustomerID != customerID {
		return ErrConnectionNotFound
	}
	return s.connectionRepo.Delete(connectionID)
}
