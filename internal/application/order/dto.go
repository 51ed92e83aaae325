package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/omnicrm/backend/internal/domain/order"
	"github.com/omnicrm/backend/internal/domain/shared"
)

// ListFilter narrows and pages the order listing
type ListFilter struct {
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
	Channel  string `form:"channel"`
	Status   string `form:"status"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir"`
}

// UpdateStatusRequest asks for a status transition
type UpdateStatusRequest struct {
	Status    string     `json:"status" binding:"required"`
	ChangedBy *uuid.UUID `json:"changed_by,omitempty"`
	Notes     string     `json:"notes,omitempty" binding:"max=500"`
}

// OrderItemResponse is the API representation of a line item
type OrderItemResponse struct {
	ID          uuid.UUID       `json:"id"`
	ProductName string          `json:"product_name"`
	SKU         string          `json:"sku"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TotalPrice  decimal.Decimal `json:"total_price"`
}

// StatusHistoryResponse is the API representation of one status transition
type StatusHistoryResponse struct {
	OldStatus *string    `json:"old_status,omitempty"`
	NewStatus string     `json:"new_status"`
	ChangedBy *uuid.UUID `json:"changed_by,omitempty"`
	Notes     string     `json:"notes,omitempty"`
	ChangedAt time.Time  `json:"changed_at"`
}

// OrderResponse is the full API representation of an order
type OrderResponse struct {
	ID              uuid.UUID               `json:"id"`
	ExternalOrderID string                  `json:"external_order_id"`
	Channel         string                  `json:"channel"`
	Status          string                  `json:"status"`
	CustomerName    string                  `json:"customer_name"`
	CustomerEmail   string                  `json:"customer_email,omitempty"`
	CustomerPhone   string                  `json:"customer_phone,omitempty"`
	ShippingAddress string                  `json:"shipping_address,omitempty"`
	TotalAmount     decimal.Decimal         `json:"total_amount"`
	Currency        string                  `json:"currency"`
	Metadata        shared.JSONMap          `json:"metadata,omitempty"`
	OrderedAt       time.Time               `json:"ordered_at"`
	CreatedAt       time.Time               `json:"created_at"`
	Items           []OrderItemResponse     `json:"items"`
	StatusHistory   []StatusHistoryResponse `json:"status_history"`
}

// OrderListItemResponse is the compact listing representation of an order
type OrderListItemResponse struct {
	ID              uuid.UUID       `json:"id"`
	ExternalOrderID string          `json:"external_order_id"`
	Channel         string          `json:"channel"`
	Status          string          `json:"status"`
	CustomerName    string          `json:"customer_name"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	Currency        string          `json:"currency"`
	ItemCount       int             `json:"item_count"`
	OrderedAt       time.Time       `json:"ordered_at"`
}

// StatsResponse aggregates order counts
type StatsResponse struct {
	Total     int64            `json:"total"`
	ByStatus  map[string]int64 `json:"by_status"`
	ByChannel map[string]int64 `json:"by_channel"`
}

// ToOrderResponse converts a domain order to its full API representation
func ToOrderResponse(o *order.Order) OrderResponse {
	items := make([]OrderItemResponse, len(o.Items))
	for i, item := range o.Items {
		items[i] = OrderItemResponse{
			ID:          item.ID,
			ProductName: item.ProductName,
			SKU:         item.SKU,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			TotalPrice:  item.TotalPrice,
		}
	}

	history := make([]StatusHistoryResponse, len(o.StatusHistory))
	for i, h := range o.StatusHistory {
		var old *string
		if h.OldStatus != nil {
			v := h.OldStatus.String()
			old = &v
		}
		history[i] = StatusHistoryResponse{
			OldStatus: old,
			NewStatus: h.NewStatus.String(),
			ChangedBy: h.ChangedBy,
			Notes:     h.Notes,
			ChangedAt: h.ChangedAt,
		}
	}

	return OrderResponse{
		ID:              o.ID,
		ExternalOrderID: o.ExternalOrderID,
		Channel:         o.Channel.String(),
		Status:          o.Status.String(),
		CustomerName:    o.CustomerName,
		CustomerEmail:   o.CustomerEmail,
		CustomerPhone:   o.CustomerPhone,
		ShippingAddress: o.ShippingAddress,
		TotalAmount:     o.TotalAmount,
		Currency:        o.Currency,
		Metadata:        o.Metadata,
		OrderedAt:       o.OrderedAt,
		CreatedAt:       o.CreatedAt,
		Items:           items,
		StatusHistory:   history,
	}
}

// ToOrderListItemResponse converts a domain order to its listing representation
func ToOrderListItemResponse(o *order.Order) OrderListItemResponse {
	return OrderListItemResponse{
		ID:              o.ID,
		ExternalOrderID: o.ExternalOrderID,
		Channel:         o.Channel.String(),
		Status:          o.Status.String(),
		CustomerName:    o.CustomerName,
		TotalAmount:     o.TotalAmount,
		Currency:        o.Currency,
		ItemCount:       o.ItemCount(),
		OrderedAt:       o.OrderedAt,
	}
}
