package handler

import (
	"io"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/synlig/seo-portal-api/infrastructure/repository"
	"github.com/synlig/seo-portal-api/internal/config"
	"github.com/synlig/seo-portal-api/internal/domain"
	"github.com/synlig/seo-portal-api/internal/ingest"
	"github.com/synlig/seo-portal-api/internal/usecases/reporting"
	"github.com/synlig/seo-portal-api/pkg/apiErrors"
	"github.com/synlig/seo-portal-api/pkg/middleware"
)

const defaultMaxUploadMB = 20

type GenerateDraftsRequest struct {
	PeriodType string `json:"period_type"`
	PeriodKey  string `json:"period_key"`
}

type UploadResponse struct {
	Report  *domain.SeoPeriodReport  `json:"report"`
	Summary *reporting.UploadSummary `json:"summary"`
}

// reportKeyFromPath builds the report key from the route parameters and
// validates the period.
func reportKeyFromPath(r *http.Request) (domain.ReportKey, error) {
	params := httprouter.ParamsFromContext(r.Context())

	periodType, err := domain.ParsePeriodType(params.ByName("period_type"))
	if err != nil {
		return domain.ReportKey{}, err
	}

	periodKey := params.ByName("period_key")
	if err := domain.ValidatePeriodKey(periodType, periodKey); err != nil {
		return domain.ReportKey{}, err
	}

	return domain.ReportKey{
		CustomerID: params.ByName("id"),
		PeriodType: periodType,
		PeriodKey:  periodKey,
	}, nil
}

// GetDraftReport returns a report in any status for the admin editor.
func GetDraftReport(service reporting.ReportingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key, err := reportKeyFromPath(r)
		if err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, err.Error(), nil)
			return
		}

		report, err := service.GetReport(key)
		if err != nil {
			handleReportError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(report)
	}
}

// GetPublishedReport returns a published report. Client users are pinned to
// their own customer; agency users pass the customer ID in the path.
func GetPublishedReport(service reporting.ReportingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key, err := reportKeyFromPath(r)
		if err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, err.Error(), nil)
			return
		}

		userClaims, ok := r.Context().Value(middleware.ContextKeyUser).(*domain.Claims)
		if !ok {
			apiErrors.WriteError(w, apiErrors.ErrInvalidToken, "not authenticated", nil)
			return
		}

		if userClaims.UserRoleID == domain.RoleClient {
			if userClaims.UserCustomerID == nil || *userClaims.UserCustomerID != key.CustomerID {
				apiErrors.WriteError(w, apiErrors.ErrInsufficientPrivilege, "report belongs to another customer", nil)
				return
			}
		}

		report, err := service.GetPublishedReport(key)
		if err != nil {
			handleReportError(w, err)
			return
		}

		// Internal notes never leave the agency.
		report.AdminNotes = ""

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(report)
	}
}

// ListReportPeriods lists the period keys a customer has published reports
// for, newest first.
func ListReportPeriods(service reporting.ReportingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params := httprouter.ParamsFromContext(r.Context())
		customerID := params.ByName("id")

		periodType, err := domain.ParsePeriodType(r.URL.Query().Get("period_type"))
		if err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, err.Error(), nil)
			return
		}

		userClaims, ok := r.Context().Value(middleware.ContextKeyUser).(*domain.Claims)
		if !ok {
			apiErrors.WriteError(w, apiErrors.ErrInvalidToken, "not authenticated", nil)
			return
		}

		if userClaims.UserRoleID == domain.RoleClient {
			if userClaims.UserCustomerID == nil || *userClaims.UserCustomerID != customerID {
				apiErrors.WriteError(w, apiErrors.ErrInsufficientPrivilege, "reports belong to another customer", nil)
				return
			}
		}

		periods, err := service.ListPeriods(customerID, periodType)
		if err != nil {
			logrus.Error(err)
			apiErrors.WriteError(w, apiErrors.ErrDatabaseOperation, "failed to list periods", nil)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"period_type": periodType,
			"periods":     periods,
		})
	}
}

// ListReports returns every report for one period for the admin overview.
func ListReports(service reporting.ReportingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		periodType, err := domain.ParsePeriodType(r.URL.Query().Get("period_type"))
		if err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, err.Error(), nil)
			return
		}

		periodKey := r.URL.Query().Get("period_key")
		if err := domain.ValidatePeriodKey(periodType, periodKey); err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, err.Error(), nil)
			return
		}

		reports, err := service.ListAllReports(periodType, periodKey)
		if err != nil {
			logrus.Error(err)
			apiErrors.WriteError(w, apiErrors.ErrDatabaseOperation, "failed to list reports", nil)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(reports)
	}
}

// ListRecentPublishedReports feeds the admin dashboard activity feed.
func ListRecentPublishedReports(service reporting.ReportingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reports, err := service.ListRecentPublished(10)
		if err != nil {
			logrus.Error(err)
			apiErrors.WriteError(w, apiErrors.ErrDatabaseOperation, "failed to list reports", nil)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(reports)
	}
}

// UpdateNarrative updates the editable text fields of a draft.
func UpdateNarrative(service reporting.ReportingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key, err := reportKeyFromPath(r)
		if err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, err.Error(), nil)
			return
		}

		var update reporting.NarrativeUpdate
		if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "invalid request body", nil)
			return
		}

		report, err := service.UpdateNarrative(key, update)
		if err != nil {
			handleReportError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(report)
	}
}

// PublishReport makes a report customer-visible.
func PublishReport(service reporting.ReportingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key, err := reportKeyFromPath(r)
		if err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, err.Error(), nil)
			return
		}

		report, err := service.Publish(key)
		if err != nil {
			handleReportError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(report)
	}
}

// UploadReportFile receives a spreadsheet or HTML export and merges its
// tables into the period's draft.
func UploadReportFile(service reporting.ReportingService, uploadCfg config.Upload) http.HandlerFunc {
	maxUploadBytes := maxUploadSize(uploadCfg)

	return func(w http.ResponseWriter, r *http.Request) {
		key, err := reportKeyFromPath(r)
		if err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, err.Error(), nil)
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "could not parse multipart form", nil)
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			apiErrors.WriteError(w, apiErrors.ErrMissingRequiredData, "missing file field", nil)
			return
		}
		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil {
			logrus.Error(err)
			apiErrors.WriteError(w, apiErrors.ErrInternalServer, "failed to read upload", nil)
			return
		}

		report, summary, err := service.ProcessUpload(key, header.Filename, data)
		if err != nil {
			handleReportError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(UploadResponse{
			Report:  report,
			Summary: summary,
		})
	}
}

// GenerateDrafts seeds drafts for all active customers for one period.
func GenerateDrafts(service reporting.ReportingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req GenerateDraftsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "invalid request body", nil)
			return
		}

		periodType, err := domain.ParsePeriodType(req.PeriodType)
		if err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, err.Error(), nil)
			return
		}

		result, err := service.GenerateDrafts(periodType, req.PeriodKey)
		if err != nil {
			handleReportError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(result)
	}
}

// maxUploadSize converts the configured megabyte limit to bytes, falling back
// to the default when the config carries no usable value.
func maxUploadSize(uploadCfg config.Upload) int64 {
	if uploadCfg.MaxSizeMB <= 0 {
		return defaultMaxUploadMB << 20
	}
	return int64(uploadCfg.MaxSizeMB) << 20
}

// handleReportError maps reporting errors to API responses.
func handleReportError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, reporting.ErrReportNotFound):
		apiErrors.WriteError(w, apiErrors.ErrReportNotFound, "report not found", nil)

	case errors.Is(err, reporting.ErrDraftNotFound):
		apiErrors.WriteError(w, apiErrors.ErrDraftMissing, "no draft exists for this period, generate drafts first", nil)

	case errors.Is(err, reporting.ErrCustomerNotFound):
		apiErrors.WriteError(w, apiErrors.ErrCustomerMissing, "customer not found", nil)

	case errors.Is(err, reporting.ErrCustomerInactive):
		apiErrors.WriteError(w, apiErrors.ErrCustomerDisabled, "customer is inactive", nil)

	case errors.Is(err, reporting.ErrEmptyUpload):
		apiErrors.WriteError(w, apiErrors.ErrUploadUnusable, "no recognizable tables in upload", nil)

	case errors.Is(err, ingest.ErrPDFNotSupported), errors.Is(err, ingest.ErrCannotDecode):
		apiErrors.WriteError(w, apiErrors.ErrUnsupportedFile, err.Error(), nil)

	case errors.Is(err, repository.ErrVersionConflict):
		apiErrors.WriteError(w, apiErrors.ErrStaleVersion, "report was modified concurrently, reload and retry", nil)

	default:
		logrus.Error(err)
		apiErrors.WriteError(w, apiErrors.ErrInternalServer, "internal error", nil)
	}
}
