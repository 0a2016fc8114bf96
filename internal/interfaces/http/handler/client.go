package handler

import (
	appledger "github.com/creditmonitor/backend/internal/application/ledger"
	"github.com/gin-gonic/gin"
)

// ClientHandler handles client endpoints
type ClientHandler struct {
	BaseHandler
	service      *appledger.ClientService
	requireAuth  gin.HandlerFunc
	requireAdmin gin.HandlerFunc
}

// NewClientHandler creates a new ClientHandler
func NewClientHandler(
	service *appledger.ClientService,
	requireAuth gin.HandlerFunc,
	requireAdmin gin.HandlerFunc,
) *ClientHandler {
	return &ClientHandler{
		service:      service,
		requireAuth:  requireAuth,
		requireAdmin: requireAdmin,
	}
}

// RegisterRoutes registers client routes
func (h *ClientHandler) RegisterRoutes(rg *gin.RouterGroup) {
	clients := rg.Group("/clients", h.requireAuth)
	clients.GET("", h.List)
	clients.POST("", h.Create)
	clients.GET("/:id", h.Get)
	clients.PUT("/:id", h.Update)
	clients.DELETE("/:id", h.requireAdmin, h.Delete)
}

// List lists clients with their balance summaries, optionally filtered by
// a search term
func (h *ClientHandler) List(c *gin.Context) {
	resp, err := h.service.List(c.Request.Context(), c.Query("search"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Create creates a new client
func (h *ClientHandler) Create(c *gin.Context) {
	var req appledger.CreateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	resp, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Get returns one client with its balance summary
func (h *ClientHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid client ID")
		return
	}

	resp, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Update applies a partial update to a client
func (h *ClientHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid client ID")
		return
	}

	var req appledger.UpdateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	resp, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Delete removes a client and all its invoices and payments. Admin only.
func (h *ClientHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid client ID")
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
