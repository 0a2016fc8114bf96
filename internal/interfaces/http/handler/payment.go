package handler

import (
	appledger "github.com/creditmonitor/backend/internal/application/ledger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PaymentHandler handles payment endpoints
type PaymentHandler struct {
	BaseHandler
	service      *appledger.PaymentService
	requireAuth  gin.HandlerFunc
	requireAdmin gin.HandlerFunc
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(
	service *appledger.PaymentService,
	requireAuth gin.HandlerFunc,
	requireAdmin gin.HandlerFunc,
) *PaymentHandler {
	return &PaymentHandler{
		service:      service,
		requireAuth:  requireAuth,
		requireAdmin: requireAdmin,
	}
}

// RegisterRoutes registers payment routes
func (h *PaymentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	payments := rg.Group("/payments", h.requireAuth)
	payments.GET("", h.List)
	payments.POST("", h.Create)
	payments.DELETE("/:id", h.requireAdmin, h.Delete)
}

// List lists payments joined with invoice and client details
func (h *PaymentHandler) List(c *gin.Context) {
	var filter appledger.PaymentListFilter

	if raw := c.Query("invoice_id"); raw != "" {
		invoiceID, err := uuid.Parse(raw)
		if err != nil {
			h.BadRequest(c, "Invalid invoice_id")
			return
		}
		filter.InvoiceID = &invoiceID
	}
	if raw := c.Query("client_id"); raw != "" {
		clientID, err := uuid.Parse(raw)
		if err != nil {
			h.BadRequest(c, "Invalid client_id")
			return
		}
		filter.ClientID = &clientID
	}

	var err error
	if filter.StartDate, err = appledger.ParseOptionalDate(c.Query("start_date")); err != nil {
		h.HandleError(c, err)
		return
	}
	if filter.EndDate, err = appledger.ParseOptionalDate(c.Query("end_date")); err != nil {
		h.HandleError(c, err)
		return
	}

	resp, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Create records a payment against an invoice
func (h *PaymentHandler) Create(c *gin.Context) {
	var req appledger.CreatePaymentRequest
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

// Delete removes a payment. Admin only.
func (h *PaymentHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid payment ID")
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
