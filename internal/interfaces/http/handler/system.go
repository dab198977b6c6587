package handler

import (
	"net/http"
	"runtime"
	"time"

	appcatalog "github.com/coupang-catalog/backend/internal/application/catalog"
	"github.com/coupang-catalog/backend/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Version is the service version reported by /system/info
var Version = "1.0.0"

// CatalogStatusSource reports the catalog load state
type CatalogStatusSource interface {
	Status() appcatalog.StatusResponse
}

// SystemHandler handles system-related API endpoints
type SystemHandler struct {
	BaseHandler
	name      string
	catalog   CatalogStatusSource
	startTime time.Time
	now       func() time.Time
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(name string, catalog CatalogStatusSource) *SystemHandler {
	return &SystemHandler{
		name:      name,
		catalog:   catalog,
		startTime: time.Now(),
		now:       time.Now,
	}
}

// SystemInfoResponse represents the system information response
type SystemInfoResponse struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	GoVersion string `json:"go_version"`
	Uptime    string `json:"uptime"`
}

// GetSystemInfo handles GET /system/info
func (h *SystemHandler) GetSystemInfo(c *gin.Context) {
	h.Success(c, SystemInfoResponse{
		Name:      h.name,
		Version:   Version,
		GoVersion: runtime.Version(),
		Uptime:    h.now().Sub(h.startTime).Round(time.Second).String(),
	})
}

// PingResponse represents the ping response
type PingResponse struct {
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// Ping handles GET /system/ping
func (h *SystemHandler) Ping(c *gin.Context) {
	h.Success(c, PingResponse{
		Message:   "pong",
		Timestamp: h.now().UTC().Format(time.RFC3339),
	})
}

// Health handles GET /health. The service is healthy once a catalog snapshot
// is being served; before that, or after a failed first load, it answers 503.
func (h *SystemHandler) Health(c *gin.Context) {
	status := h.catalog.Status()
	body := gin.H{
		"time":            h.now().UTC().Format(time.RFC3339),
		"catalog":         status.State,
		"catalog_version": status.Version,
	}

	if status.State != appcatalog.LoadStateReady {
		logger.GetGinLogger(c).Warn("Health check failed",
			zap.String("catalog_state", string(status.State)),
			zap.String("error", status.Error),
		)
		body["status"] = "unhealthy"
		c.JSON(http.StatusServiceUnavailable, body)
		return
	}

	body["status"] = "healthy"
	c.JSON(http.StatusOK, body)
}
