package authenticating

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/synlig/seo-portal-api/infrastructure/repository/mocks"
	"github.com/synlig/seo-portal-api/internal/config"
	"github.com/synlig/seo-portal-api/internal/domain"
	"go.uber.org/mock/gomock"
	"golang.org/x/crypto/bcrypt"
)

func newTestService(t *testing.T) (*Service, *mocks.MockUserRepository) {
	t.Helper()

	ctrl := gomock.NewController(t)
	mockUserRepo := mocks.NewMockUserRepository(ctrl)

	service := &Service{
		userRepo: mockUserRepo,
		cfg:      &config.Config{Auth: config.Auth{Secret: "test-secret"}},
	}
	return service, mockUserRepo
}

func hashPassword(t *testing.T, password string) string {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func TestCreateUser(t *testing.T) {
	service, mockUserRepo := newTestService(t)

	mockUserRepo.EXPECT().GetUserByEmail("anna@synlig.se").Return(nil, nil)

	var stored *domain.User
	mockUserRepo.EXPECT().
		CreateUser(gomock.Any()).
		DoAndReturn(func(user *domain.User) (*domain.User, error) {
			stored = user
			created := *user
			created.ID = 1
			return &created, nil
		})

	created, err := service.CreateUser(&domain.User{
		Name:         "Anna",
		Email:        "  Anna@Synlig.se ",
		PasswordHash: "hemligt123",
	})
	require.NoError(t, err)

	assert.Equal(t, 1, created.ID)
	assert.Equal(t, "anna@synlig.se", created.Email)
	assert.Equal(t, domain.RoleClient, created.RoleID)
	assert.True(t, created.Active)
	// The response never carries the hash, and the stored hash is not the
	// plaintext password.
	assert.Empty(t, created.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("hemligt123")))
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	service, mockUserRepo := newTestService(t)

	mockUserRepo.EXPECT().
		GetUserByEmail("anna@synlig.se").
		Return(&domain.User{ID: 1, Email: "anna@synlig.se"}, nil)

	_, err := service.CreateUser(&domain.User{
		Name:         "Anna",
		Email:        "anna@synlig.se",
		PasswordHash: "hemligt123",
	})

	assert.ErrorIs(t, err, ErrUserAlreadyExists)
}

func TestCreateUserMissingFields(t *testing.T) {
	service, _ := newTestService(t)

	_, err := service.CreateUser(&domain.User{Email: "anna@synlig.se"})

	assert.ErrorIs(t, err, ErrMissingRequiredData)
}

func TestLoginUserAndValidateToken(t *testing.T) {
	service, mockUserRepo := newTestService(t)

	customerID := "cust-1"
	user := &domain.User{
		ID:           7,
		Name:         "Anna",
		Email:        "anna@synlig.se",
		PasswordHash: hashPassword(t, "hemligt123"),
		Active:       true,
		RoleID:       domain.RoleClient,
		CustomerID:   &customerID,
	}
	mockUserRepo.EXPECT().GetUserByEmail("anna@synlig.se").Return(user, nil)

	token, err := service.LoginUser("Anna@Synlig.se", "hemligt123")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := service.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, 7, claims.UserID)
	assert.Equal(t, domain.RoleClient, claims.UserRoleID)
	require.NotNil(t, claims.UserCustomerID)
	assert.Equal(t, "cust-1", *claims.UserCustomerID)
	assert.Equal(t, "seo-portal-api", claims.Issuer)
}

func TestLoginUserFailures(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(mockUserRepo *mocks.MockUserRepository)
		password string
		expected error
	}{
		{
			name: "unknown email",
			setup: func(mockUserRepo *mocks.MockUserRepository) {
				mockUserRepo.EXPECT().GetUserByEmail("anna@synlig.se").Return(nil, nil)
			},
			password: "hemligt123",
			expected: ErrInvalidCredentials,
		},
		{
			name: "wrong password",
			setup: func(mockUserRepo *mocks.MockUserRepository) {
				mockUserRepo.EXPECT().GetUserByEmail("anna@synlig.se").Return(&domain.User{
					ID:           7,
					PasswordHash: hashPassword(t, "hemligt123"),
					Active:       true,
				}, nil)
			},
			password: "fel-lösenord",
			expected: ErrInvalidCredentials,
		},
		{
			name: "disabled account",
			setup: func(mockUserRepo *mocks.MockUserRepository) {
				mockUserRepo.EXPECT().GetUserByEmail("anna@synlig.se").Return(&domain.User{
					ID:           7,
					PasswordHash: hashPassword(t, "hemligt123"),
					Active:       false,
				}, nil)
			},
			password: "hemligt123",
			expected: ErrUserDisabled,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, mockUserRepo := newTestService(t)
			tt.setup(mockUserRepo)

			_, err := service.LoginUser("anna@synlig.se", tt.password)

			assert.ErrorIs(t, err, tt.expected)
		})
	}
}

func TestValidateTokenRejectsForeignSignature(t *testing.T) {
	service, mockUserRepo := newTestService(t)

	user := &domain.User{
		ID:           7,
		Email:        "anna@synlig.se",
		PasswordHash: hashPassword(t, "hemligt123"),
		Active:       true,
	}
	mockUserRepo.EXPECT().GetUserByEmail("anna@synlig.se").Return(user, nil)

	token, err := service.LoginUser("anna@synlig.se", "hemligt123")
	require.NoError(t, err)

	other := &Service{cfg: &config.Config{Auth: config.Auth{Secret: "another-secret"}}}
	_, err = other.ValidateToken(token)

	assert.Error(t, err)
}

func TestChangePassword(t *testing.T) {
	service, mockUserRepo := newTestService(t)

	mockUserRepo.EXPECT().GetUserByID(7).Return(&domain.User{
		ID:           7,
		PasswordHash: hashPassword(t, "hemligt123"),
		Active:       true,
	}, nil)

	var newHash string
	mockUserRepo.EXPECT().
		UpdatePassword(7, gomock.Any()).
		DoAndReturn(func(userID int, hash string) error {
			newHash = hash
			return nil
		})

	err := service.ChangePassword(7, "hemligt123", "nyttlösen456")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(newHash), []byte("nyttlösen456")))
}

func TestChangePasswordFailures(t *testing.T) {
	tests := []struct {
		name            string
		currentPassword string
		newPassword     string
		expected        error
	}{
		{name: "wrong current password", currentPassword: "fel-lösenord", newPassword: "nyttlösen456", expected: ErrInvalidCredentials},
		{name: "same password", currentPassword: "hemligt123", newPassword: "hemligt123", expected: ErrSamePassword},
		{name: "weak new password", currentPassword: "hemligt123", newPassword: "kort1", expected: ErrWeakPassword},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, mockUserRepo := newTestService(t)

			mockUserRepo.EXPECT().GetUserByID(7).Return(&domain.User{
				ID:           7,
				PasswordHash: hashPassword(t, "hemligt123"),
				Active:       true,
			}, nil)

			err := service.ChangePassword(7, tt.currentPassword, tt.newPassword)

			assert.ErrorIs(t, err, tt.expected)
		})
	}
}

func TestValidatePasswordStrength(t *testing.T) {
	service, _ := newTestService(t)

	tests := []struct {
		name     string
		password string
		valid    bool
	}{
		{name: "letters and digits", password: "hemligt123", valid: true},
		{name: "Swedish letters count", password: "lösenord99", valid: true},
		{name: "too short", password: "abc1", valid: false},
		{name: "digits only", password: "12345678", valid: false},
		{name: "letters only", password: "lösenordet", valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := service.ValidatePasswordStrength(tt.password)

			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrWeakPassword)
			}
		})
	}
}
