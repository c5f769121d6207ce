package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/synlig/seo-portal-api/infrastructure/repository/mocks"
	"github.com/synlig/seo-portal-api/internal/config"
	"github.com/synlig/seo-portal-api/internal/domain"
	"github.com/synlig/seo-portal-api/internal/usecases/authenticating"
	"go.uber.org/mock/gomock"
	"golang.org/x/crypto/bcrypt"
)

func newAuthenticator(t *testing.T) (authenticating.Authenticator, *mocks.MockUserRepository) {
	t.Helper()

	ctrl := gomock.NewController(t)
	mockUserRepo := mocks.NewMockUserRepository(ctrl)

	service := authenticating.NewService(mockUserRepo, &config.Config{
		Auth: config.Auth{Secret: "test-secret"},
	})
	return service, mockUserRepo
}

func TestAuthMiddlewareAcceptsValidToken(t *testing.T) {
	service, mockUserRepo := newAuthenticator(t)

	hash, err := bcrypt.GenerateFromPassword([]byte("hemligt123"), bcrypt.MinCost)
	require.NoError(t, err)

	mockUserRepo.EXPECT().GetUserByEmail("anna@synlig.se").Return(&domain.User{
		ID:           1,
		Email:        "anna@synlig.se",
		PasswordHash: string(hash),
		Active:       true,
		RoleID:       domain.RoleClient,
	}, nil)

	token, err := service.LoginUser("anna@synlig.se", "hemligt123")
	require.NoError(t, err)

	var claims *domain.Claims
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, _ = r.Context().Value(ContextKeyUser).(*domain.Claims)
	})

	req := httptest.NewRequest(http.MethodGet, "/v1/notifications", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	AuthMiddleware(service)(next).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, claims)
	assert.Equal(t, 1, claims.UserID)
	assert.Equal(t, domain.RoleClient, claims.UserRoleID)
}

func TestAuthMiddlewareRejectsBadRequests(t *testing.T) {
	service, _ := newAuthenticator(t)

	tests := []struct {
		name   string
		header string
	}{
		{name: "missing authorization header", header: ""},
		{name: "missing bearer prefix", header: "some-token"},
		{name: "garbage token", header: "Bearer not-a-jwt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/v1/notifications", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				t.Fatal("handler must not run")
			})
			AuthMiddleware(service)(next).ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestAuthMiddlewareSkipsPublicPaths(t *testing.T) {
	service, _ := newAuthenticator(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/login", nil)
	rec := httptest.NewRecorder()

	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})
	AuthMiddleware(service)(next).ServeHTTP(rec, req)

	assert.True(t, called)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRoleMiddleware(t *testing.T) {
	tests := []struct {
		name       string
		middleware func(http.Handler) http.Handler
		roleID     int
		allowed    bool
	}{
		{name: "admin passes admin gate", middleware: AdminOnly(), roleID: domain.RoleAdmin, allowed: true},
		{name: "manager blocked by admin gate", middleware: AdminOnly(), roleID: domain.RoleManager, allowed: false},
		{name: "manager passes manager gate", middleware: AdminOrManager(), roleID: domain.RoleManager, allowed: true},
		{name: "client blocked by manager gate", middleware: AdminOrManager(), roleID: domain.RoleClient, allowed: false},
		{name: "client passes open gate", middleware: AllRoles(), roleID: domain.RoleClient, allowed: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/v1/reports", nil)
			ctx := context.WithValue(req.Context(), ContextKeyUser, &domain.Claims{
				UserID:     7,
				UserRoleID: tt.roleID,
			})
			req = req.WithContext(ctx)
			rec := httptest.NewRecorder()

			called := false
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
			})
			tt.middleware(next).ServeHTTP(rec, req)

			assert.Equal(t, tt.allowed, called)
			if !tt.allowed {
				assert.Equal(t, http.StatusForbidden, rec.Code)
			}
		})
	}
}
