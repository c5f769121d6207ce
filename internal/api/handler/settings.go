package handler

import (
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/synlig/seo-portal-api/infrastructure/repository"
	"github.com/synlig/seo-portal-api/internal/domain"
	"github.com/synlig/seo-portal-api/pkg/apiErrors"
)

func GetSettings(settingsRepo repository.SettingsRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		settings, err := settingsRepo.GetSettings()
		if err != nil {
			logrus.Error(err)
			apiErrors.WriteError(w, apiErrors.ErrDatabaseOperation, "failed to load settings", nil)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(settings)
	}
}

func SaveSettings(settingsRepo repository.SettingsRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var settings domain.AgencySettings
		if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "invalid request body", nil)
			return
		}

		if settings.DefaultPeriodType == "" {
			settings.DefaultPeriodType = domain.PeriodMonthly
		}
		if _, err := domain.ParsePeriodType(string(settings.DefaultPeriodType)); err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, err.Error(), nil)
			return
		}
		settings.UpdatedAt = time.Now().UTC()

		if err := settingsRepo.SaveSettings(&settings); err != nil {
			logrus.Error(err)
			apiErrors.WriteError(w, apiErrors.ErrDatabaseOperation, "failed to save settings", nil)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(settings)
	}
}
