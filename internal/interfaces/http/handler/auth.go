package handler

import (
	"github.com/creditmonitor/backend/internal/application/identity"
	"github.com/creditmonitor/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	BaseHandler
	service      *identity.AuthService
	requireAuth  gin.HandlerFunc
	requireAdmin gin.HandlerFunc
	loginLimiter gin.HandlerFunc
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(
	service *identity.AuthService,
	requireAuth gin.HandlerFunc,
	requireAdmin gin.HandlerFunc,
	loginLimiter gin.HandlerFunc,
) *AuthHandler {
	return &AuthHandler{
		service:      service,
		requireAuth:  requireAuth,
		requireAdmin: requireAdmin,
		loginLimiter: loginLimiter,
	}
}

// RegisterRoutes registers auth routes
func (h *AuthHandler) RegisterRoutes(rg *gin.RouterGroup) {
	auth := rg.Group("/auth")
	auth.POST("/login", h.loginLimiter, h.Login)
	auth.POST("/register", h.requireAuth, h.requireAdmin, h.Register)
	auth.POST("/change-password", h.requireAuth, h.ChangePassword)
	auth.GET("/me", h.requireAuth, h.Me)
}

// Login authenticates a user and issues an access token
func (h *AuthHandler) Login(c *gin.Context) {
	var req identity.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	resp, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Register creates a new user account. Admin only.
func (h *AuthHandler) Register(c *gin.Context) {
	var req identity.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	resp, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// ChangePassword rotates the authenticated user's password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req identity.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	userID, err := uuid.Parse(middleware.GetJWTUserID(c))
	if err != nil {
		h.BadRequest(c, "Invalid user identity")
		return
	}

	if err := h.service.ChangePassword(c.Request.Context(), userID, req); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Me returns the authenticated user's profile
func (h *AuthHandler) Me(c *gin.Context) {
	userID, err := uuid.Parse(middleware.GetJWTUserID(c))
	if err != nil {
		h.BadRequest(c, "Invalid user identity")
		return
	}

	resp, err := h.service.GetByID(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
