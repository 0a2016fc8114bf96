package auth

import (
	"testing"
	"time"

	"github.com/creditmonitor/backend/internal/infrastructure/config"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWTService() *JWTService {
	cfg := config.JWTConfig{
		Secret:                "test-secret-key-at-least-32-chars",
		AccessTokenExpiration: 8 * time.Hour,
		Issuer:                "test-issuer",
	}
	return NewJWTService(cfg)
}

func newTestInput() GenerateTokenInput {
	return GenerateTokenInput{
		UserID:   uuid.New(),
		Username: "testuser",
		Role:     "staff",
	}
}

func TestNewJWTService(t *testing.T) {
	cfg := config.JWTConfig{
		Secret:                "test-secret",
		AccessTokenExpiration: 8 * time.Hour,
		Issuer:                "test-issuer",
	}

	svc := NewJWTService(cfg)

	assert.NotNil(t, svc)
	assert.Equal(t, []byte(cfg.Secret), svc.secret)
	assert.Equal(t, cfg.AccessTokenExpiration, svc.expiration)
	assert.Equal(t, cfg.Issuer, svc.issuer)
}

func TestGenerateToken(t *testing.T) {
	svc := newTestJWTService()
	input := newTestInput()

	token, err := svc.GenerateToken(input)

	require.NoError(t, err)
	assert.NotEmpty(t, token.AccessToken)
	assert.Equal(t, "Bearer", token.TokenType)
	assert.True(t, token.ExpiresAt.After(time.Now()))
}

func TestValidateToken_Success(t *testing.T) {
	svc := newTestJWTService()
	input := newTestInput()

	token, err := svc.GenerateToken(input)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token.AccessToken)

	require.NoError(t, err)
	assert.Equal(t, input.UserID.String(), claims.UserID)
	assert.Equal(t, input.Username, claims.Username)
	assert.Equal(t, input.Role, claims.Role)
	assert.Equal(t, "test-issuer", claims.Issuer)

	userID, err := claims.GetUserUUID()
	require.NoError(t, err)
	assert.Equal(t, input.UserID, userID)
}

func TestValidateToken_ExpiredToken(t *testing.T) {
	cfg := config.JWTConfig{
		Secret:                "test-secret-key-at-least-32-chars",
		AccessTokenExpiration: -time.Minute, // already expired
		Issuer:                "test-issuer",
	}
	svc := NewJWTService(cfg)

	token, err := svc.GenerateToken(newTestInput())
	require.NoError(t, err)

	_, err = svc.ValidateToken(token.AccessToken)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	svc := newTestJWTService()

	token, err := svc.GenerateToken(newTestInput())
	require.NoError(t, err)

	other := NewJWTService(config.JWTConfig{
		Secret:                "a-completely-different-secret-key",
		AccessTokenExpiration: 8 * time.Hour,
		Issuer:                "test-issuer",
	})

	_, err = other.ValidateToken(token.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateToken_Garbage(t *testing.T) {
	svc := newTestJWTService()

	_, err := svc.ValidateToken("not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
