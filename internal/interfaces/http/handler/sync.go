package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	appchannel "github.com/omnicrm/backend/internal/application/channel"
	"github.com/omnicrm/backend/internal/infrastructure/scheduler"
	"github.com/omnicrm/backend/internal/interfaces/http/dto"
)

// SyncHandler handles admin sync endpoints
type SyncHandler struct {
	BaseHandler
	scheduler   *scheduler.SyncScheduler
	syncService *appchannel.SyncService
}

// NewSyncHandler creates a new SyncHandler
func NewSyncHandler(sched *scheduler.SyncScheduler, syncService *appchannel.SyncService) *SyncHandler {
	return &SyncHandler{scheduler: sched, syncService: syncService}
}

// RegisterRoutes registers admin sync routes
func (h *SyncHandler) RegisterRoutes(rg *gin.RouterGroup) {
	sync := rg.Group("/admin/sync")
	{
		sync.POST("", h.SyncAll)
		sync.POST("/:channel", h.SyncChannel)
	}
}

// SyncAll triggers a full sync of every channel
func (h *SyncHandler) SyncAll(c *gin.Context) {
	result, err := h.scheduler.TriggerNow(c.Request.Context())
	if err != nil {
		if errors.Is(err, scheduler.ErrAlreadyRunning) {
			h.Error(c, http.StatusConflict, dto.ErrCodeSyncInProgress, "A sync run is already in progress")
			return
		}
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// SyncChannel triggers a sync of one named channel
func (h *SyncHandler) SyncChannel(c *gin.Context) {
	imported, err := h.syncService.SyncChannelByName(c.Request.Context(), c.Param("channel"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{
		"channel":  c.Param("channel"),
		"imported": imported,
	})
}
