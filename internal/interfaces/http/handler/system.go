package handler

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"

	appchannel "github.com/omnicrm/backend/internal/application/channel"
	dlqapp "github.com/omnicrm/backend/internal/application/deadletter"
	"github.com/omnicrm/backend/internal/interfaces/http/dto"
)

// DBPinger checks database connectivity
type DBPinger interface {
	Ping() error
}

// SystemHandler handles health and system-related API endpoints
type SystemHandler struct {
	BaseHandler
	startTime   time.Time
	db          DBPinger
	syncService *appchannel.SyncService
	dlqService  *dlqapp.Service
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(db DBPinger, syncService *appchannel.SyncService, dlqService *dlqapp.Service) *SystemHandler {
	return &SystemHandler{
		startTime:   time.Now(),
		db:          db,
		syncService: syncService,
		dlqService:  dlqService,
	}
}

// RegisterRoutes registers system routes
func (h *SystemHandler) RegisterRoutes(rg *gin.RouterGroup) {
	system := rg.Group("/system")
	{
		system.GET("/health", h.Health)
		system.GET("/info", h.GetSystemInfo)
	}
}

// ChannelHealthStatus reports the availability of one sales channel
type ChannelHealthStatus struct {
	Status string `json:"status" example:"UP"`
}

// HealthResponse represents the aggregated health report
type HealthResponse struct {
	Status             string                         `json:"status" example:"UP"`
	Database           string                         `json:"database" example:"UP"`
	Channels           map[string]ChannelHealthStatus `json:"channels"`
	PendingDeadLetters int64                          `json:"pending_dead_letters"`
}

// Health reports overall service health including per-channel availability.
// A channel that is down degrades the report without failing it: sync survives
// individual channel outages.
func (h *SystemHandler) Health(c *gin.Context) {
	resp := HealthResponse{
		Status:   "UP",
		Database: "UP",
		Channels: make(map[string]ChannelHealthStatus),
	}
	httpStatus := http.StatusOK

	if err := h.db.Ping(); err != nil {
		resp.Status = "DOWN"
		resp.Database = "DOWN"
		httpStatus = http.StatusServiceUnavailable
	}

	for name, available := range h.syncService.ChannelHealth(c.Request.Context()) {
		status := "UP"
		if !available {
			status = "DOWN"
			if resp.Status == "UP" {
				resp.Status = "DEGRADED"
			}
		}
		resp.Channels[name] = ChannelHealthStatus{Status: status}
	}

	if pending, err := h.dlqService.PendingCount(c.Request.Context()); err == nil {
		resp.PendingDeadLetters = pending
	}

	c.JSON(httpStatus, dto.NewSuccessResponse(resp))
}

// SystemInfoResponse represents the system information response
type SystemInfoResponse struct {
	Name      string `json:"name" example:"OmniCRM Backend API"`
	Version   string `json:"version" example:"1.0.0"`
	GoVersion string `json:"go_version" example:"go1.25.5"`
	Uptime    string `json:"uptime" example:"1h30m45s"`
}

// GetSystemInfo returns basic system information including version and uptime
func (h *SystemHandler) GetSystemInfo(c *gin.Context) {
	info := SystemInfoResponse{
		Name:      "OmniCRM Backend API",
		Version:   "1.0.0",
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	}

	c.JSON(http.StatusOK, dto.NewSuccessResponse(info))
}
