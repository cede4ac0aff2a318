package identity

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/printcloud/backend/internal/domain/identity"
	"github.com/printcloud/backend/internal/domain/shared"
	"github.com/printcloud/backend/internal/infrastructure/auth"
	"github.com/printcloud/backend/internal/infrastructure/config"
)

// =============================================================================
// Mock Repositories
// =============================================================================

// MockUserRepository is a mock implementation of identity.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*identity.User, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindAll(ctx context.Context, filter shared.Filter) ([]identity.User, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]identity.User), args.Error(1)
}

func (m *MockUserRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]identity.User, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByUsername(ctx context.Context, tenantID uuid.UUID, username string) (*identity.User, error) {
	args := m.Called(ctx, tenantID, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) ExistsByUsername(ctx context.Context, tenantID uuid.UUID, username string) (bool, error) {
	args := m.Called(ctx, tenantID, username)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) Save(ctx context.Context, user *identity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUserRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) ListTenantIDs(ctx context.Context) ([]uuid.UUID, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

// =============================================================================
// Helpers
// =============================================================================

func newTestJWTService() *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret:                 "test-secret-key-for-auth-tests",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 24 * time.Hour,
		Issuer:                 "printcloud-test",
	})
}

func newTestUser(t *testing.T, tenantID uuid.UUID) *identity.User {
	user, err := identity.NewUser(tenantID, "operator", "S3curePass!", "Front Desk")
	assert.NoError(t, err)
	user.ClearDomainEvents()
	return user
}

// =============================================================================
// Tests
// =============================================================================

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("successful login returns a token pair and the profile", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		service := NewAuthService(userRepo, newTestJWTService(), tenantID, zap.NewNop())

		user := newTestUser(t, tenantID)
		userRepo.On("FindByUsername", ctx, tenantID, "operator").Return(user, nil)
		userRepo.On("Save", ctx, user).Return(nil)

		resp, err := service.Login(ctx, LoginRequest{Username: "operator", Password: "S3curePass!"})

		assert.NoError(t, err)
		assert.NotNil(t, resp)
		assert.NotEmpty(t, resp.AccessToken)
		assert.NotEmpty(t, resp.RefreshToken)
		assert.Equal(t, "Bearer", resp.TokenType)
		assert.Equal(t, "operator", resp.User.Username)
		assert.NotNil(t, user.LastLoginAt)
		userRepo.AssertExpectations(t)
	})

	t.Run("an explicit tenant overrides the default", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		service := NewAuthService(userRepo, newTestJWTService(), tenantID, zap.NewNop())

		otherTenant := uuid.New()
		user := newTestUser(t, otherTenant)
		userRepo.On("FindByUsername", ctx, otherTenant, "operator").Return(user, nil)
		userRepo.On("Save", ctx, user).Return(nil)

		resp, err := service.Login(ctx, LoginRequest{TenantID: &otherTenant, Username: "operator", Password: "S3curePass!"})

		assert.NoError(t, err)
		assert.NotNil(t, resp)
	})

	t.Run("unknown username yields the generic credentials error", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		service := NewAuthService(userRepo, newTestJWTService(), tenantID, zap.NewNop())

		userRepo.On("FindByUsername", ctx, tenantID, "ghost").Return(nil, shared.ErrNotFound)

		resp, err := service.Login(ctx, LoginRequest{Username: "ghost", Password: "whatever"})

		assert.Error(t, err)
		assert.Nil(t, resp)
		var domainErr *shared.DomainError
		assert.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_CREDENTIALS", domainErr.Code)
	})

	t.Run("wrong password counts toward lockout and is persisted", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		service := NewAuthService(userRepo, newTestJWTService(), tenantID, zap.NewNop())

		user := newTestUser(t, tenantID)
		userRepo.On("FindByUsername", ctx, tenantID, "operator").Return(user, nil)
		userRepo.On("Save", ctx, user).Return(nil)

		resp, err := service.Login(ctx, LoginRequest{Username: "operator", Password: "wrong"})

		assert.Error(t, err)
		assert.Nil(t, resp)
		var domainErr *shared.DomainError
		assert.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_CREDENTIALS", domainErr.Code)
		assert.Equal(t, 1, user.FailedAttempts)
		userRepo.AssertCalled(t, "Save", ctx, user)
	})

	t.Run("repeated failures lock the account", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		service := NewAuthService(userRepo, newTestJWTService(), tenantID, zap.NewNop())

		user := newTestUser(t, tenantID)
		userRepo.On("FindByUsername", ctx, tenantID, "operator").Return(user, nil)
		userRepo.On("Save", ctx, user).Return(nil)

		for i := 0; i < 5; i++ {
			_, err := service.Login(ctx, LoginRequest{Username: "operator", Password: "wrong"})
			assert.Error(t, err)
		}

		assert.True(t, user.IsLocked())

		// Even the correct password is rejected while the lock holds
		_, err := service.Login(ctx, LoginRequest{Username: "operator", Password: "S3curePass!"})
		var domainErr *shared.DomainError
		assert.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "USER_LOCKED", domainErr.Code)
	})

	t.Run("deactivated account cannot log in", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		service := NewAuthService(userRepo, newTestJWTService(), tenantID, zap.NewNop())

		user := newTestUser(t, tenantID)
		user.Deactivate()
		userRepo.On("FindByUsername", ctx, tenantID, "operator").Return(user, nil)
		userRepo.On("Save", ctx, user).Return(nil)

		_, err := service.Login(ctx, LoginRequest{Username: "operator", Password: "S3curePass!"})

		var domainErr *shared.DomainError
		assert.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "USER_DEACTIVATED", domainErr.Code)
	})
}

func TestAuthService_RefreshToken(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("a valid refresh token rotates the pair", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		jwtService := newTestJWTService()
		service := NewAuthService(userRepo, jwtService, tenantID, zap.NewNop())

		user := newTestUser(t, tenantID)
		pair, err := jwtService.GenerateTokenPair(auth.GenerateTokenInput{
			TenantID: tenantID,
			UserID:   user.ID,
			Username: user.Username,
		})
		assert.NoError(t, err)

		userRepo.On("FindByIDForTenant", ctx, tenantID, user.ID).Return(user, nil)

		resp, err := service.RefreshToken(ctx, RefreshTokenRequest{RefreshToken: pair.RefreshToken})

		assert.NoError(t, err)
		assert.NotEmpty(t, resp.AccessToken)
		assert.NotEmpty(t, resp.RefreshToken)
	})

	t.Run("a garbled token is rejected", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		service := NewAuthService(userRepo, newTestJWTService(), tenantID, zap.NewNop())

		resp, err := service.RefreshToken(ctx, RefreshTokenRequest{RefreshToken: "not.a.token"})

		assert.Error(t, err)
		assert.Nil(t, resp)
		var domainErr *shared.DomainError
		assert.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "TOKEN_INVALID", domainErr.Code)
		userRepo.AssertNotCalled(t, "FindByIDForTenant", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("an access token cannot be used as a refresh token", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		jwtService := newTestJWTService()
		service := NewAuthService(userRepo, jwtService, tenantID, zap.NewNop())

		user := newTestUser(t, tenantID)
		pair, err := jwtService.GenerateTokenPair(auth.GenerateTokenInput{
			TenantID: tenantID,
			UserID:   user.ID,
			Username: user.Username,
		})
		assert.NoError(t, err)

		_, err = service.RefreshToken(ctx, RefreshTokenRequest{RefreshToken: pair.AccessToken})

		var domainErr *shared.DomainError
		assert.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "TOKEN_INVALID", domainErr.Code)
	})

	t.Run("a deactivated user cannot refresh", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		jwtService := newTestJWTService()
		service := NewAuthService(userRepo, jwtService, tenantID, zap.NewNop())

		user := newTestUser(t, tenantID)
		pair, err := jwtService.GenerateTokenPair(auth.GenerateTokenInput{
			TenantID: tenantID,
			UserID:   user.ID,
			Username: user.Username,
		})
		assert.NoError(t, err)

		user.Deactivate()
		userRepo.On("FindByIDForTenant", ctx, tenantID, user.ID).Return(user, nil)

		_, err = service.RefreshToken(ctx, RefreshTokenRequest{RefreshToken: pair.RefreshToken})

		var domainErr *shared.DomainError
		assert.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "ACCOUNT_INACTIVE", domainErr.Code)
	})
}

func TestAuthService_ChangePassword(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("changes the password after verifying the current one", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		service := NewAuthService(userRepo, newTestJWTService(), tenantID, zap.NewNop())

		user := newTestUser(t, tenantID)
		userRepo.On("FindByIDForTenant", ctx, tenantID, user.ID).Return(user, nil)
		userRepo.On("Save", ctx, user).Return(nil)

		err := service.ChangePassword(ctx, tenantID, user.ID, ChangePasswordRequest{
			CurrentPassword: "S3curePass!",
			NewPassword:     "EvenB3tter!",
		})

		assert.NoError(t, err)
		assert.NoError(t, user.VerifyPassword("EvenB3tter!"))
	})

	t.Run("rejects a wrong current password", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		service := NewAuthService(userRepo, newTestJWTService(), tenantID, zap.NewNop())

		user := newTestUser(t, tenantID)
		userRepo.On("FindByIDForTenant", ctx, tenantID, user.ID).Return(user, nil)

		err := service.ChangePassword(ctx, tenantID, user.ID, ChangePasswordRequest{
			CurrentPassword: "wrong",
			NewPassword:     "EvenB3tter!",
		})

		var domainErr *shared.DomainError
		assert.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_CREDENTIALS", domainErr.Code)
		userRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestUserService_Register(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("registers a new operator", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		service := NewUserService(userRepo)

		userRepo.On("ExistsByUsername", ctx, tenantID, "frontdesk").Return(false, nil)
		userRepo.On("Save", ctx, mock.AnythingOfType("*identity.User")).Return(nil)

		resp, err := service.Register(ctx, tenantID, RegisterUserRequest{
			Username:    "frontdesk",
			Password:    "S3curePass!",
			DisplayName: "Front Desk",
			Email:       "frontdesk@printshop.example",
		})

		assert.NoError(t, err)
		assert.Equal(t, "frontdesk", resp.Username)
		assert.Equal(t, "active", resp.Status)
		assert.Equal(t, "frontdesk@printshop.example", resp.Email)
	})

	t.Run("rejects a taken username", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		service := NewUserService(userRepo)

		userRepo.On("ExistsByUsername", ctx, tenantID, "frontdesk").Return(true, nil)

		resp, err := service.Register(ctx, tenantID, RegisterUserRequest{
			Username: "frontdesk",
			Password: "S3curePass!",
		})

		assert.Error(t, err)
		assert.Nil(t, resp)
		var domainErr *shared.DomainError
		assert.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "USERNAME_TAKEN", domainErr.Code)
	})

	t.Run("rejects a short password", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		service := NewUserService(userRepo)

		userRepo.On("ExistsByUsername", ctx, tenantID, "frontdesk").Return(false, nil)

		resp, err := service.Register(ctx, tenantID, RegisterUserRequest{
			Username: "frontdesk",
			Password: "short",
		})

		assert.Error(t, err)
		assert.Nil(t, resp)
		userRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}
