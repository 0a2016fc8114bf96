package middleware

import (
	"net/http"

	"github.com/creditmonitor/backend/internal/domain/identity"
	"github.com/creditmonitor/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// RequireAdmin rejects requests from non-admin accounts. Must run after
// RequireAuth.
func RequireAdmin() gin.HandlerFunc {
	return RequireRole(identity.RoleAdmin)
}

// RequireRole rejects requests whose account lacks the required role
func RequireRole(required identity.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := GetCurrentUser(c)
		if user == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				dto.NewErrorResponse(dto.ErrCodeUnauthorized, "Authentication required"))
			return
		}
		if err := identity.RequireRole(user, required); err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden,
				dto.NewErrorResponse(dto.ErrCodeForbidden, "Insufficient permissions"))
			return
		}
		c.Next()
	}
}
