package handler

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/synlig/seo-portal-api/internal/domain"
	"github.com/synlig/seo-portal-api/internal/usecases/customering"
	"github.com/synlig/seo-portal-api/pkg/apiErrors"
)

func ListCustomers(service customering.CustomerService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		includeInactive := r.URL.Query().Get("include_inactive") == "true"

		customers, err := service.ListCustomers(includeInactive)
		if err != nil {
			logrus.Error(err)
			apiErrors.WriteError(w, apiErrors.ErrDatabaseOperation, "failed to list customers", nil)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(customers)
	}
}

func GetCustomer(service customering.CustomerService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := httprouter.ParamsFromContext(r.Context()).ByName("id")

		customer, err := service.GetCustomer(id)
		if err != nil {
			handleCustomerError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(customer)
	}
}

func CreateCustomer(service customering.CustomerService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var customer domain.Customer
		if err := json.NewDecoder(r.Body).Decode(&customer); err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "invalid request body", nil)
			return
		}

		created, err := service.CreateCustomer(&customer)
		if err != nil {
			handleCustomerError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(created)
	}
}

func UpdateCustomer(service customering.CustomerService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := httprouter.ParamsFromContext(r.Context()).ByName("id")

		var req domain.UpdateCustomerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "invalid request body", nil)
			return
		}
		req.ID = id

		customer, err := service.UpdateCustomer(&req)
		if err != nil {
			handleCustomerError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(customer)
	}
}

func DeleteCustomer(service customering.CustomerService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := httprouter.ParamsFromContext(r.Context()).ByName("id")

		if err := service.DeleteCustomer(id); err != nil {
			handleCustomerError(w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func ListConnections(service customering.CustomerService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		customerID := httprouter.ParamsFromContext(r.Context()).ByName("id")

		connections, err := service.ListConnections(customerID)
		if err != nil {
			handleCustomerError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(connections)
	}
}

func SaveConnection(service customering.CustomerService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		customerID := httprouter.ParamsFromContext(r.Context()).ByName("id")

		var connection domain.Connection
		if err := json.NewDecoder(r.Body).Decode(&connection); err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "invalid request body", nil)
			return
		}
		connection.CustomerID = customerID

		saved, err := service.SaveConnection(&connection)
		if err != nil {
			handleCustomerError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(saved)
	}
}

func DeleteConnection(service customering.CustomerService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params := httprouter.ParamsFromContext(r.Context())
		customerID := params.ByName("id")
		connectionID := params.ByName("connection_id")

		if err := service.DeleteConnection(customerID, connectionID); err != nil {
			handleCustomerError(w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// handleCustomerError maps customer errors to API responses.
func handleCustomerError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, customering.ErrCustomerNotFound):
		apiErrors.WriteError(w, apiErrors.ErrCustomerMissing, "customer not found", nil)

	case errors.Is(err, customering.ErrConnectionNotFound):
		apiErrors.WriteError(w, apiErrors.ErrCustomerMissing, "connection not found", nil)

	case errors.Is(err, customering.ErrNameRequired):
		apiErrors.WriteError(w, apiErrors.ErrMissingRequiredData, "customer name is required", nil)

	case errors.Is(err, customering.ErrUnknownProvider):
		apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "unknown provider", nil)

	default:
		logrus.Error(err)
		apiErrors.WriteError(w, apiErrors.ErrInternalServer, "internal error", nil)
	}
}
