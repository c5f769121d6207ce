package handler

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/synlig/seo-portal-api/internal/scheduler"
	"github.com/synlig/seo-portal-api/pkg/apiErrors"
)

// CronJobServices groups the schedulers exposed through the cron endpoints.
type CronJobServices struct {
	DraftSeederService *scheduler.DraftSeederService
}

// RunCronJob triggers a scheduled job manually.
func RunCronJob(services CronJobServices) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		jobType := httprouter.ParamsFromContext(r.Context()).ByName("type")

		switch jobType {
		case "draft-seeder":
			services.DraftSeederService.TriggerManualSeed()
		default:
			apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "unknown cron job type", nil)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		json.NewEncoder(w).Encode(map[string]string{
			"status": "started",
			"job":    jobType,
		})
	}
}

// GetCronStatus reports the state of every scheduler.
func GetCronStatus(services CronJobServices) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"draft_seeder": services.DraftSeederService.GetStatus(),
		})
	}
}
