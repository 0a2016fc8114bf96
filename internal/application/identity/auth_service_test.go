package identity

import (
	"context"
	"testing"
	"time"

	"github.com/creditmonitor/backend/internal/domain/identity"
	"github.com/creditmonitor/backend/internal/domain/shared"
	"github.com/creditmonitor/backend/internal/infrastructure/auth"
	"github.com/creditmonitor/backend/internal/infrastructure/config"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

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

func (m *MockUserRepository) FindByUsername(ctx context.Context, username string) (*identity.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	args := m.Called(ctx, username)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) Save(ctx context.Context, user *identity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func newTestAuthService(repo identity.UserRepository) *AuthService {
	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:                "test-secret-key-at-least-32-chars",
		AccessTokenExpiration: 8 * time.Hour,
		Issuer:                "test",
	})
	return NewAuthService(repo, jwtService, zap.NewNop())
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("issues token for valid credentials", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc := newTestAuthService(repo)

		user, err := identity.NewUser("alice", "correct-horse", "Alice Example", identity.RoleStaff)
		require.NoError(t, err)
		repo.On("FindByUsername", ctx, "alice").Return(user, nil)

		resp, err := svc.Login(ctx, LoginRequest{Username: "alice", Password: "correct-horse"})

		require.NoError(t, err)
		assert.NotEmpty(t, resp.AccessToken)
		assert.Equal(t, "Bearer", resp.TokenType)
		assert.Equal(t, "alice", resp.User.Username)
		assert.Equal(t, "staff", resp.User.Role)
		repo.AssertExpectations(t)
	})

	t.Run("wrong password yields invalid credentials", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc := newTestAuthService(repo)

		user, err := identity.NewUser("alice", "correct-horse", "Alice Example", identity.RoleStaff)
		require.NoError(t, err)
		repo.On("FindByUsername", ctx, "alice").Return(user, nil)

		_, err = svc.Login(ctx, LoginRequest{Username: "alice", Password: "wrong-password"})
		assert.ErrorIs(t, err, shared.ErrInvalidCredentials)
	})

	t.Run("unknown username yields the same invalid credentials", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc := newTestAuthService(repo)

		repo.On("FindByUsername", ctx, "ghost").Return(nil, shared.ErrNotFound)

		_, err := svc.Login(ctx, LoginRequest{Username: "ghost", Password: "whatever-pass"})
		assert.ErrorIs(t, err, shared.ErrInvalidCredentials)
	})
}

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("creates user with hashed password", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc := newTestAuthService(repo)

		repo.On("ExistsByUsername", ctx, "bob").Return(false, nil)
		repo.On("Save", ctx, mock.AnythingOfType("*identity.User")).Return(nil)

		resp, err := svc.Register(ctx, RegisterRequest{
			Username: "bob",
			Password: "secret-pass-1",
			FullName: "Bob Example",
			Role:     "admin",
		})

		require.NoError(t, err)
		assert.Equal(t, "bob", resp.Username)
		assert.Equal(t, "admin", resp.Role)

		saved := repo.Calls[1].Arguments.Get(1).(*identity.User)
		assert.NotEqual(t, "secret-pass-1", saved.PasswordHash)
		assert.True(t, saved.VerifyPassword("secret-pass-1"))
	})

	t.Run("rejects duplicate username", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc := newTestAuthService(repo)

		repo.On("ExistsByUsername", ctx, "bob").Return(true, nil)

		_, err := svc.Register(ctx, RegisterRequest{
			Username: "bob",
			Password: "secret-pass-1",
			FullName: "Bob Example",
			Role:     "staff",
		})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "ALREADY_EXISTS", domainErr.Code)
	})

	t.Run("rejects invalid role", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc := newTestAuthService(repo)

		repo.On("ExistsByUsername", ctx, "carol").Return(false, nil)

		_, err := svc.Register(ctx, RegisterRequest{
			Username: "carol",
			Password: "secret-pass-1",
			FullName: "Carol Example",
			Role:     "superuser",
		})
		require.Error(t, err)
	})
}

func TestAuthService_ChangePassword(t *testing.T) {
	ctx := context.Background()
	repo := new(MockUserRepository)
	svc := newTestAuthService(repo)

	user, err := identity.NewUser("dave", "original-pass", "Dave Example", identity.RoleStaff)
	require.NoError(t, err)
	repo.On("FindByID", ctx, user.ID).Return(user, nil)
	repo.On("Save", ctx, user).Return(nil)

	err = svc.ChangePassword(ctx, user.ID, ChangePasswordRequest{
		OldPassword: "original-pass",
		NewPassword: "rotated-pass-2",
	})
	require.NoError(t, err)
	assert.True(t, user.VerifyPassword("rotated-pass-2"))

	err = svc.ChangePassword(ctx, user.ID, ChangePasswordRequest{
		OldPassword: "original-pass",
		NewPassword: "another-pass-3",
	})
	assert.ErrorIs(t, err, shared.ErrInvalidCredentials)
}
