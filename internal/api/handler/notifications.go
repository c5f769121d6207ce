package handler

import (
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"
	"github.com/sirupsen/logrus"
	"github.com/synlig/seo-portal-api/internal/domain"
	"github.com/synlig/seo-portal-api/internal/usecases/notifying"
	"github.com/synlig/seo-portal-api/pkg/apiErrors"
	"github.com/synlig/seo-portal-api/pkg/middleware"
)

func ListNotifications(service notifying.NotifyingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userClaims, ok := r.Context().Value(middleware.ContextKeyUser).(*domain.Claims)
		if !ok {
			apiErrors.WriteError(w, apiErrors.ErrInvalidToken, "not authenticated", nil)
			return
		}

		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

		notifications, err := service.ListNotifications(userClaims.UserID, limit)
		if err != nil {
			logrus.Error(err)
			apiErrors.WriteError(w, apiErrors.ErrDatabaseOperation, "failed to list notifications", nil)
			return
		}

		unread, err := service.CountUnread(userClaims.UserID)
		if err != nil {
			logrus.Error(err)
			apiErrors.WriteError(w, apiErrors.ErrDatabaseOperation, "failed to count notifications", nil)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"notifications": notifications,
			"unread":        unread,
		})
	}
}

func MarkNotificationRead(service notifying.NotifyingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userClaims, ok := r.Context().Value(middleware.ContextKeyUser).(*domain.Claims)
		if !ok {
			apiErrors.WriteError(w, apiErrors.ErrInvalidToken, "not authenticated", nil)
			return
		}

		id := httprouter.ParamsFromContext(r.Context()).ByName("id")
		if err := service.MarkRead(id, userClaims.UserID); err != nil {
			logrus.Error(err)
			apiErrors.WriteError(w, apiErrors.ErrDatabaseOperation, "failed to mark notification read", nil)
			return
		}

		w.WriteHeader(http.StatusOK)
	}
}

func MarkAllNotificationsRead(service notifying.NotifyingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userClaims, ok := r.Context().Value(middleware.ContextKeyUser).(*domain.Claims)
		if !ok {
			apiErrors.WriteError(w, apiErrors.ErrInvalidToken, "not authenticated", nil)
			return
		}

		if err := service.MarkAllRead(userClaims.UserID); err != nil {
			logrus.Error(err)
			apiErrors.WriteError(w, apiErrors.ErrDatabaseOperation, "failed to mark notifications read", nil)
			return
		}

		w.WriteHeader(http.StatusOK)
	}
}
