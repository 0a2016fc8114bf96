package handler

import (
	"fmt"
	"net/http"

	appledger "github.com/creditmonitor/backend/internal/application/ledger"
	"github.com/creditmonitor/backend/internal/application/report"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ReportHandler handles report and dashboard endpoints
type ReportHandler struct {
	BaseHandler
	service     *report.Service
	requireAuth gin.HandlerFunc
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(service *report.Service, requireAuth gin.HandlerFunc) *ReportHandler {
	return &ReportHandler{
		service:     service,
		requireAuth: requireAuth,
	}
}

// RegisterRoutes registers report routes
func (h *ReportHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/dashboard", h.requireAuth, h.Dashboard)

	reports := rg.Group("/reports", h.requireAuth)
	reports.GET("/outstanding", h.Outstanding)
	reports.GET("/overdue", h.Overdue)
	reports.GET("/payments", h.Payments)
	reports.GET("/export", h.Export)
}

// Dashboard returns the systemwide summary
func (h *ReportHandler) Dashboard(c *gin.Context) {
	resp, err := h.service.Dashboard(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Outstanding lists invoices carrying an outstanding amount
func (h *ReportHandler) Outstanding(c *gin.Context) {
	filter, ok := h.parseFilter(c)
	if !ok {
		return
	}
	resp, err := h.service.Outstanding(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Overdue lists invoices past due with an outstanding amount
func (h *ReportHandler) Overdue(c *gin.Context) {
	filter, ok := h.parseFilter(c)
	if !ok {
		return
	}
	resp, err := h.service.Overdue(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Payments lists payments joined with invoice and client details
func (h *ReportHandler) Payments(c *gin.Context) {
	filter, ok := h.parseFilter(c)
	if !ok {
		return
	}
	resp, err := h.service.Payments(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Export streams a report as an xlsx download
func (h *ReportHandler) Export(c *gin.Context) {
	filter, ok := h.parseFilter(c)
	if !ok {
		return
	}

	filename, data, err := h.service.Export(c.Request.Context(), c.Query("report_type"), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, xlsxContentType, data)
}

func (h *ReportHandler) parseFilter(c *gin.Context) (report.Filter, bool) {
	var filter report.Filter

	if raw := c.Query("client_id"); raw != "" {
		clientID, err := uuid.Parse(raw)
		if err != nil {
			h.BadRequest(c, "Invalid client_id")
			return filter, false
		}
		filter.ClientID = &clientID
	}

	var err error
	if filter.StartDate, err = appledger.ParseOptionalDate(c.Query("start_date")); err != nil {
		h.HandleError(c, err)
		return filter, false
	}
	if filter.EndDate, err = appledger.ParseOptionalDate(c.Query("end_date")); err != nil {
		h.HandleError(c, err)
		return filter, false
	}
	return filter, true
}
