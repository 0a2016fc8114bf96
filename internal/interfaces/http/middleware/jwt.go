package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/creditmonitor/backend/internal/domain/identity"
	"github.com/creditmonitor/backend/internal/domain/shared"
	"github.com/creditmonitor/backend/internal/infrastructure/auth"
	"github.com/creditmonitor/backend/internal/infrastructure/logger"
	"github.com/creditmonitor/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// JWT context keys
const (
	JWTClaimsKey   = "jwt_claims"
	JWTUserKey     = "jwt_user"
	JWTUserIDKey   = "jwt_user_id"
	JWTUsernameKey = "jwt_username"
	JWTRoleKey     = "jwt_role"
	AuthHeaderKey  = "Authorization"
	BearerPrefix   = "Bearer "
)

// RequireAuth validates the bearer token and loads the current user. The
// user lookup makes tokens of deleted accounts fail even before expiry.
func RequireAuth(jwtService *auth.JWTService, userRepo identity.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader(AuthHeaderKey)
		if authHeader == "" {
			abortAuth(c, dto.ErrCodeUnauthorized, "Missing authorization header")
			return
		}
		if !strings.HasPrefix(authHeader, BearerPrefix) {
			abortAuth(c, dto.ErrCodeTokenInvalid, "Invalid authorization header format")
			return
		}
		tokenString := strings.TrimPrefix(authHeader, BearerPrefix)
		if tokenString == "" {
			abortAuth(c, dto.ErrCodeTokenInvalid, "Missing token")
			return
		}

		claims, err := jwtService.ValidateToken(tokenString)
		if err != nil {
			code := dto.ErrCodeTokenInvalid
			if errors.Is(err, auth.ErrExpiredToken) {
				code = dto.ErrCodeTokenExpired
			}
			abortAuth(c, code, "Token validation failed")
			return
		}

		userID, err := claims.GetUserUUID()
		if err != nil {
			abortAuth(c, dto.ErrCodeTokenInvalid, "Token validation failed")
			return
		}

		user, err := userRepo.FindByID(c.Request.Context(), userID)
		if errors.Is(err, shared.ErrNotFound) {
			abortAuth(c, dto.ErrCodeUnauthorized, "Account no longer exists")
			return
		}
		if err != nil {
			// Storage failure, not a revoked account
			c.AbortWithStatusJSON(http.StatusInternalServerError,
				dto.NewErrorResponse(dto.ErrCodeInternal, "Internal server error"))
			return
		}

		ctx, _ := logger.WithUserID(c.Request.Context(),
			logger.FromContext(c.Request.Context()), user.ID.String())
		c.Request = c.Request.WithContext(ctx)

		c.Set(JWTClaimsKey, claims)
		c.Set(JWTUserKey, user)
		c.Set(JWTUserIDKey, claims.UserID)
		c.Set(JWTUsernameKey, user.Username)
		c.Set(JWTRoleKey, string(user.Role))
		c.Next()
	}
}

func abortAuth(c *gin.Context, code, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(code, message))
}

// GetCurrentUser returns the authenticated user, or nil outside RequireAuth
func GetCurrentUser(c *gin.Context) *identity.User {
	if v, exists := c.Get(JWTUserKey); exists {
		if user, ok := v.(*identity.User); ok {
			return user
		}
	}
	return nil
}

// GetJWTUserID returns the authenticated user's ID string
func GetJWTUserID(c *gin.Context) string {
	return c.GetString(JWTUserIDKey)
}

// GetJWTRole returns the authenticated user's role
func GetJWTRole(c *gin.Context) string {
	return c.GetString(JWTRoleKey)
}
