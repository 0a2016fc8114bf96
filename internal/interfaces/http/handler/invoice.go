package handler

import (
	"io"
	"net/http"

	"github.com/creditmonitor/backend/internal/application/importer"
	appledger "github.com/creditmonitor/backend/internal/application/ledger"
	"github.com/creditmonitor/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// InvoiceHandler handles invoice endpoints, including spreadsheet import
type InvoiceHandler struct {
	BaseHandler
	service       *appledger.InvoiceService
	importService *importer.Service
	maxUploadSize int64
	requireAuth   gin.HandlerFunc
	requireAdmin  gin.HandlerFunc
	uploadLimit   gin.HandlerFunc
}

// NewInvoiceHandler creates a new InvoiceHandler
func NewInvoiceHandler(
	service *appledger.InvoiceService,
	importService *importer.Service,
	maxUploadSize int64,
	requireAuth gin.HandlerFunc,
	requireAdmin gin.HandlerFunc,
	uploadLimit gin.HandlerFunc,
) *InvoiceHandler {
	return &InvoiceHandler{
		service:       service,
		importService: importService,
		maxUploadSize: maxUploadSize,
		requireAuth:   requireAuth,
		requireAdmin:  requireAdmin,
		uploadLimit:   uploadLimit,
	}
}

// RegisterRoutes registers invoice routes
func (h *InvoiceHandler) RegisterRoutes(rg *gin.RouterGroup) {
	invoices := rg.Group("/invoices", h.requireAuth)
	invoices.GET("", h.List)
	invoices.POST("", h.Create)
	invoices.POST("/import", h.uploadLimit, h.Import)
	invoices.GET("/:id", h.Get)
	invoices.DELETE("/:id", h.requireAdmin, h.Delete)
}

// List lists invoices with derived balances, filtered by client and status
func (h *InvoiceHandler) List(c *gin.Context) {
	var filter appledger.InvoiceListFilter

	if raw := c.Query("client_id"); raw != "" {
		clientID, err := uuid.Parse(raw)
		if err != nil {
			h.BadRequest(c, "Invalid client_id")
			return
		}
		filter.ClientID = &clientID
	}
	filter.Status = c.Query("status")

	resp, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Create creates a new invoice
func (h *InvoiceHandler) Create(c *gin.Context) {
	var req appledger.CreateInvoiceRequest
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

// Get returns one invoice with its derived balance
func (h *InvoiceHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	resp, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Delete removes an invoice and its payments. Admin only.
func (h *InvoiceHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Import reconciles an uploaded spreadsheet into the ledger. The
// auto_create_clients query flag controls whether unknown client names
// create new clients.
func (h *InvoiceHandler) Import(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		h.BadRequest(c, "A spreadsheet file is required in the 'file' field")
		return
	}
	if fileHeader.Size > h.maxUploadSize {
		h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodeRequestTooLarge,
			"Uploaded file exceeds maximum allowed size")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.BadRequest(c, "Could not read uploaded file")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.maxUploadSize))
	if err != nil {
		h.BadRequest(c, "Could not read uploaded file")
		return
	}

	opts := importer.Options{
		AutoCreateClients: c.Query("auto_create_clients") == "true",
	}

	result, err := h.importService.Import(c.Request.Context(), fileHeader.Filename, data, opts)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
