package identity

import (
	"context"
	"errors"

	"github.com/creditmonitor/backend/internal/domain/identity"
	"github.com/creditmonitor/backend/internal/domain/shared"
	"github.com/creditmonitor/backend/internal/infrastructure/auth"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AuthService handles login, registration and password changes
type AuthService struct {
	userRepo identity.UserRepository
	jwt      *auth.JWTService
	logger   *zap.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(userRepo identity.UserRepository, jwt *auth.JWTService, logger *zap.Logger) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		jwt:      jwt,
		logger:   logger.Named("auth"),
	}
}

// Login verifies the credentials and issues an access token. Unknown username
// and wrong password produce the same error so the response never reveals
// which part failed.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	user, err := s.userRepo.FindByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrInvalidCredentials
		}
		return nil, err
	}

	if !user.VerifyPassword(req.Password) {
		s.logger.Warn("Failed login attempt", zap.String("username", user.Username))
		return nil, shared.ErrInvalidCredentials
	}

	token, err := s.jwt.GenerateToken(auth.GenerateTokenInput{
		UserID:   user.ID,
		Username: user.Username,
		Role:     string(user.Role),
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("User logged in", zap.String("username", user.Username))

	return &LoginResponse{
		AccessToken: token.AccessToken,
		TokenType:   token.TokenType,
		ExpiresAt:   token.ExpiresAt,
		User:        ToUserResponse(user),
	}, nil
}

// Register creates a new user account
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*UserResponse, error) {
	exists, err := s.userRepo.ExistsByUsername(ctx, req.Username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Username is already taken")
	}

	user, err := identity.NewUser(req.Username, req.Password, req.FullName, identity.Role(req.Role))
	if err != nil {
		return nil, err
	}

	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("User registered",
		zap.String("username", user.Username),
		zap.String("role", string(user.Role)))

	response := ToUserResponse(user)
	return &response, nil
}

// ChangePassword rotates the password of the given user
func (s *AuthService) ChangePassword(ctx context.Context, userID uuid.UUID, req ChangePasswordRequest) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := user.ChangePassword(req.OldPassword, req.NewPassword); err != nil {
		return err
	}

	return s.userRepo.Save(ctx, user)
}

// GetByID retrieves a user by ID
func (s *AuthService) GetByID(ctx context.Context, userID uuid.UUID) (*UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	response := ToUserResponse(user)
	return &response, nil
}
