package handler

import (
	"net/http"
	"time"

	"github.com/creditmonitor/backend/internal/infrastructure/persistence"
	"github.com/gin-gonic/gin"
)

// SystemHandler handles health and readiness endpoints. These stay
// unauthenticated so load balancers can probe them.
type SystemHandler struct {
	BaseHandler
	db      *persistence.Database
	appName string
	started time.Time
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(db *persistence.Database, appName string) *SystemHandler {
	return &SystemHandler{
		db:      db,
		appName: appName,
		started: time.Now(),
	}
}

// RegisterRoutes registers system routes
func (h *SystemHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/health", h.Health)
}

// Health reports process liveness and database reachability
func (h *SystemHandler) Health(c *gin.Context) {
	overall := "ok"
	dbStatus := "ok"
	status := http.StatusOK
	if h.db == nil || h.db.Ping() != nil {
		overall = "degraded"
		dbStatus = "unreachable"
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, gin.H{
		"app":      h.appName,
		"status":   overall,
		"database": dbStatus,
		"uptime":   time.Since(h.started).Round(time.Second).String(),
	})
}
