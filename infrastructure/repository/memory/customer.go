package memory

import (
	"sort"
	"sync"
	"time"

	"github.com/synlig/seo-portal-api/infrastructure/repository"
	"github.com/synlig/seo-portal-api/internal/domain"
)

type CustomerStore struct {
	mu        sync.RWMutex
	customers map[string]*domain.Customer
}

func NewCustomerStore() *CustomerStore {
	return &CustomerStore{
		customers: make(map[string]*domain.Customer),
	}
}

var _ repository.CustomerRepository = (*CustomerStore)(nil)

func cloneCustomer(customer *domain.Customer) *domain.Customer {
	if customer == nil {
		return nil
	}
	clone := *customer
	clone.Services = append([]string(nil), customer.Services...)
	return &clone
}

func (s *CustomerStore) GetByID(id string) (*domain.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	customer := s.customers[id]
	if customer == nil || customer.DeletedAt != nil {
		return nil, nil
	}
	return cloneCustomer(customer), nil
}

func (s *CustomerStore) ListCustomers(includeInactive bool) ([]*domain.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	customers := make([]*domain.Customer, 0)
	for _, customer := range s.customers {
		if customer.DeletedAt != nil {
			continue
		}
		if !includeInactive && !customer.Active {
			continue
		}
		customers = append(customers, cloneCustomer(customer))
	}
	sort.Slice(customers, func(i, j int) bool {
		return customers[i].Name < customers[j].Name
	})
	return customers, nil
}

func (s *CustomerStore) ListActiveCustomers() ([]*domain.Customer, error) {
	return s.ListCustomers(false)
}

func (s *CustomerStore) CreateCustomer(customer *domain.Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	customer.CreatedAt = now
	customer.UpdatedAt = now
	s.customers[customer.ID] = cloneCustomer(customer)
	return nil
}

func (s *CustomerStore) UpdateCustomer(customer *domain.Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	customer.UpdatedAt = time.Now().UTC()
	s.customers[customer.ID] = cloneCustomer(customer)
	return nil
}

func (s *CustomerStore) SoftDeleteCustomer(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if customer, ok := s.customers[id]; ok {
		now := time.Now().UTC()
		customer.DeletedAt = &now
		customer.Active = false
	}
	return nil
}
