package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	dlqapp "github.com/omnicrm/backend/internal/application/deadletter"
	"github.com/omnicrm/backend/internal/domain/deadletter"
)

// DeadLetterHandler handles dead letter queue API endpoints
type DeadLetterHandler struct {
	BaseHandler
	dlqService *dlqapp.Service
}

// NewDeadLetterHandler creates a new DeadLetterHandler
func NewDeadLetterHandler(dlqService *dlqapp.Service) *DeadLetterHandler {
	return &DeadLetterHandler{dlqService: dlqService}
}

// RegisterRoutes registers dead letter routes
func (h *DeadLetterHandler) RegisterRoutes(rg *gin.RouterGroup) {
	dlq := rg.Group("/admin/dead-letters")
	{
		dlq.GET("", h.List)
		dlq.POST("/:id/resolve", h.Resolve)
		dlq.POST("/:id/retry", h.Retry)
	}
}

type deadLetterListQuery struct {
	Status   string `form:"status"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
}

// List returns dead letter entries, pending ones by default
func (h *DeadLetterHandler) List(c *gin.Context) {
	var query deadLetterListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BindingError(c, err)
		return
	}

	status := deadletter.StatusPending
	if query.Status != "" {
		switch deadletter.Status(query.Status) {
		case deadletter.StatusPending, deadletter.StatusRetried,
			deadletter.StatusResolved, deadletter.StatusFailed:
			status = deadletter.Status(query.Status)
		default:
			h.BadRequest(c, "Unknown dead letter status: "+query.Status)
			return
		}
	}

	page, err := h.dlqService.ListByStatus(c.Request.Context(), status, query.Page, query.PageSize)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// Resolve marks an entry as manually handled
func (h *DeadLetterHandler) Resolve(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid entry ID")
		return
	}

	resp, err := h.dlqService.Resolve(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Retry registers a retry attempt on an entry
func (h *DeadLetterHandler) Retry(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid entry ID")
		return
	}

	resp, err := h.dlqService.RegisterRetry(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
