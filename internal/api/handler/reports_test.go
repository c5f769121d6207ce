package handler

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/synlig/seo-portal-api/infrastructure/repository/memory"
	"github.com/synlig/seo-portal-api/internal/config"
	"github.com/synlig/seo-portal-api/internal/usecases/reporting"
)

func TestMaxUploadSize(t *testing.T) {
	tests := []struct {
		name     string
		sizeMB   int
		expected int64
	}{
		{name: "configured limit", sizeMB: 5, expected: 5 << 20},
		{name: "larger limit", sizeMB: 64, expected: 64 << 20},
		{name: "zero falls back to the default", sizeMB: 0, expected: defaultMaxUploadMB << 20},
		{name: "negative falls back to the default", sizeMB: -1, expected: defaultMaxUploadMB << 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, maxUploadSize(config.Upload{MaxSizeMB: tt.sizeMB}))
		})
	}
}

func TestUploadReportFileHonorsConfiguredLimit(t *testing.T) {
	service := reporting.NewService(memory.NewReportStore(), memory.NewCustomerStore(), nil)
	handler := UploadReportFile(service, config.Upload{MaxSizeMB: 1})

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", "big.csv")
	require.NoError(t, err)
	_, err = part.Write(bytes.Repeat([]byte("a"), 2<<20))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/v1/customers/cust-1/reports/monthly/2026-01/upload", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req = req.WithContext(context.WithValue(req.Context(), httprouter.ParamsKey, httprouter.Params{
		{Key: "id", Value: "cust-1"},
		{Key: "period_type", Value: "monthly"},
		{Key: "period_key", Value: "2026-01"},
	}))
	rec := httptest.NewRecorder()

	handler(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "VAL_001")
}
