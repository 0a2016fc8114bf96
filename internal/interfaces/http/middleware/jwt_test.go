package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/creditmonitor/backend/internal/domain/identity"
	"github.com/creditmonitor/backend/internal/infrastructure/auth"
	"github.com/creditmonitor/backend/internal/infrastructure/config"
	"github.com/creditmonitor/backend/internal/infrastructure/persistence"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupAuthEnv(t *testing.T) (*auth.JWTService, identity.UserRepository, *identity.User) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, persistence.AutoMigrate(db))

	repo := persistence.NewGormUserRepository(db)
	user, err := identity.NewUser("asha", "s3cret-pass", "Asha Rao", identity.RoleStaff)
	require.NoError(t, err)
	require.NoError(t, repo.Save(context.Background(), user))

	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:                "test-secret-key-with-enough-length",
		AccessTokenExpiration: time.Hour,
		Issuer:                "credit-ledger",
	})
	return jwtService, repo, user
}

func authRouter(jwtService *auth.JWTService, repo identity.UserRepository) http.Handler {
	router := gin.New()
	protected := router.Group("/", RequireAuth(jwtService, repo))
	protected.GET("/me", func(c *gin.Context) {
		c.String(http.StatusOK, GetCurrentUser(c).Username)
	})
	protected.DELETE("/clients/1", RequireAdmin(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return router
}

func TestRequireAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	jwtService, repo, user := setupAuthEnv(t)
	router := authRouter(jwtService, repo)

	token, err := jwtService.GenerateToken(auth.GenerateTokenInput{
		UserID:   user.ID,
		Username: user.Username,
		Role:     string(user.Role),
	})
	require.NoError(t, err)

	t.Run("valid token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set(AuthHeaderKey, BearerPrefix+token.AccessToken)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "asha", w.Body.String())
	})

	t.Run("missing header", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("malformed header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set(AuthHeaderKey, "Token abc")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "TOKEN_INVALID")
	})

	t.Run("garbage token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set(AuthHeaderKey, BearerPrefix+"not.a.token")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("staff cannot reach admin routes", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodDelete, "/clients/1", nil)
		req.Header.Set(AuthHeaderKey, BearerPrefix+token.AccessToken)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Contains(t, w.Body.String(), "FORBIDDEN")
	})
}

func TestRequireAuth_DeletedUser(t *testing.T) {
	gin.SetMode(gin.TestMode)
	jwtService, _, user := setupAuthEnv(t)

	// an empty user store simulates an account removed after token issuance
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, persistence.AutoMigrate(db))
	emptyRepo := persistence.NewGormUserRepository(db)

	router := authRouter(jwtService, emptyRepo)

	token, err := jwtService.GenerateToken(auth.GenerateTokenInput{
		UserID:   user.ID,
		Username: user.Username,
		Role:     string(user.Role),
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set(AuthHeaderKey, BearerPrefix+token.AccessToken)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Account no longer exists")
}

// failingUserRepo errors on every lookup, as a broken store would
type failingUserRepo struct{}

func (failingUserRepo) FindByID(context.Context, uuid.UUID) (*identity.User, error) {
	return nil, errors.New("connection refused")
}

func (failingUserRepo) FindByUsername(context.Context, string) (*identity.User, error) {
	return nil, errors.New("connection refused")
}

func (failingUserRepo) ExistsByUsername(context.Context, string) (bool, error) {
	return false, errors.New("connection refused")
}

func (failingUserRepo) Save(context.Context, *identity.User) error {
	return errors.New("connection refused")
}

func TestRequireAuth_StorageFailureIsNot401(t *testing.T) {
	gin.SetMode(gin.TestMode)
	jwtService, _, user := setupAuthEnv(t)

	router := authRouter(jwtService, failingUserRepo{})

	token, err := jwtService.GenerateToken(auth.GenerateTokenInput{
		UserID:   user.ID,
		Username: user.Username,
		Role:     string(user.Role),
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set(AuthHeaderKey, BearerPrefix+token.AccessToken)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "Account no longer exists")
}
