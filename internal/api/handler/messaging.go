package handler

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/synlig/seo-portal-api/internal/domain"
	"github.com/synlig/seo-portal-api/internal/usecases/messaging"
	"github.com/synlig/seo-portal-api/pkg/apiErrors"
	"github.com/synlig/seo-portal-api/pkg/middleware"
)

type StartThreadRequest struct {
	CustomerID string `json:"customer_id"`
	Subject    string `json:"subject"`
	Body       string `json:"body"`
}

type PostMessageRequest struct {
	Body string `json:"body"`
}

type ThreadResponse struct {
	Thread   *domain.MessageThread `json:"thread"`
	Messages []*domain.Message     `json:"messages"`
}

// viewerFromClaims resolves which side of the conversation the caller is on.
// Client users are pinned to their own customer.
func viewerFromClaims(claims *domain.Claims) (domain.MessageSide, string) {
	if claims.UserRoleID == domain.RoleClient {
		customerID := ""
		if claims.UserCustomerID != nil {
			customerID = *claims.UserCustomerID
		}
		return domain.SideCustomer, customerID
	}
	return domain.SideAgency, ""
}

func StartThread(service messaging.MessagingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userClaims, ok := r.Context().Value(middleware.ContextKeyUser).(*domain.Claims)
		if !ok {
			apiErrors.WriteError(w, apiErrors.ErrInvalidToken, "not authenticated", nil)
			return
		}

		var req StartThreadRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "invalid request body", nil)
			return
		}

		side, customerID := viewerFromClaims(userClaims)
		if side == domain.SideCustomer {
			// Client users always open threads for their own customer.
			req.CustomerID = customerID
		}
		if req.CustomerID == "" {
			apiErrors.WriteError(w, apiErrors.ErrMissingRequiredData, "customer_id is required", nil)
			return
		}

		thread, err := service.StartThread(req.CustomerID, req.Subject, side, userClaims.UserID, req.Body)
		if err != nil {
			handleMessagingError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(thread)
	}
}

func ListThreads(service messaging.MessagingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userClaims, ok := r.Context().Value(middleware.ContextKeyUser).(*domain.Claims)
		if !ok {
			apiErrors.WriteError(w, apiErrors.ErrInvalidToken, "not authenticated", nil)
			return
		}

		side, customerID := viewerFromClaims(userClaims)
		if side == domain.SideAgency {
			customerID = r.URL.Query().Get("customer_id")
		}

		threads, err := service.ListThreads(side, customerID)
		if err != nil {
			logrus.Error(err)
			apiErrors.WriteError(w, apiErrors.ErrDatabaseOperation, "failed to list threads", nil)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(threads)
	}
}

// GetThread returns a thread with its messages and marks it read for the
// viewer.
func GetThread(service messaging.MessagingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userClaims, ok := r.Context().Value(middleware.ContextKeyUser).(*domain.Claims)
		if !ok {
			apiErrors.WriteError(w, apiErrors.ErrInvalidToken, "not authenticated", nil)
			return
		}

		threadID := httprouter.ParamsFromContext(r.Context()).ByName("id")
		side, customerID := viewerFromClaims(userClaims)

		thread, messages, err := service.GetThread(threadID, side, customerID)
		if err != nil {
			handleMessagingError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(ThreadResponse{
			Thread:   thread,
			Messages: messages,
		})
	}
}

func PostMessage(service messaging.MessagingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userClaims, ok := r.Context().Value(middleware.ContextKeyUser).(*domain.Claims)
		if !ok {
			apiErrors.WriteError(w, apiErrors.ErrInvalidToken, "not authenticated", nil)
			return
		}

		threadID := httprouter.ParamsFromContext(r.Context()).ByName("id")

		var req PostMessageRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "invalid request body", nil)
			return
		}

		side, _ := viewerFromClaims(userClaims)
		message, err := service.PostMessage(threadID, side, userClaims.UserID, req.Body)
		if err != nil {
			handleMessagingError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(message)
	}
}

func MarkThreadRead(service messaging.MessagingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userClaims, ok := r.Context().Value(middleware.ContextKeyUser).(*domain.Claims)
		if !ok {
			apiErrors.WriteError(w, apiErrors.ErrInvalidToken, "not authenticated", nil)
			return
		}

		threadID := httprouter.ParamsFromContext(r.Context()).ByName("id")
		side, _ := viewerFromClaims(userClaims)

		if err := service.MarkRead(threadID, side); err != nil {
			handleMessagingError(w, err)
			return
		}

		w.WriteHeader(http.StatusOK)
	}
}

// handleMessagingError maps messaging errors to API responses.
func handleMessagingError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, messaging.ErrThreadNotFound):
		apiErrors.WriteError(w, apiErrors.ErrThreadNotFound, "thread not found", nil)

	case errors.Is(err, messaging.ErrWrongCustomer):
		apiErrors.WriteError(w, apiErrors.ErrInsufficientPrivilege, "thread belongs to another customer", nil)

	case errors.Is(err, messaging.ErrEmptyBody), errors.Is(err, messaging.ErrEmptySubject):
		apiErrors.WriteError(w, apiErrors.ErrMissingRequiredData, err.Error(), nil)

	default:
		logrus.Error(err)
		apiErrors.WriteError(w, apiErrors.ErrInternalServer, "internal error", nil)
	}
}
