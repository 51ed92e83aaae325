package channel

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/omnicrm/backend/internal/domain/shared"
)

// ChannelOrderItem is a line item as reported by a sales channel
type ChannelOrderItem struct {
	ProductName string
	SKU         string
	Quantity    int
	UnitPrice   decimal.Decimal
	TotalPrice  decimal.Decimal
}

// ChannelOrder is an order as fetched from a sales channel. It is ephemeral:
// nothing persists it directly; the sync orchestrator maps accepted orders
// into the Order aggregate. The external order ID is unique only within the
// namespace of its channel.
type ChannelOrder struct {
	ExternalOrderID string
	Channel         string
	Status          string
	CustomerName    string
	CustomerEmail   string
	CustomerPhone   string
	ShippingAddress string
	TotalAmount     decimal.Decimal
	Currency        string
	Metadata        shared.JSONMap
	OrderedAt       time.Time
	Items           []ChannelOrderItem
}
