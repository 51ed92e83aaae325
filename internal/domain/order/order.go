package order

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/omnicrm/backend/internal/domain/shared"
)

// OrderItem represents a line item in an imported order
type OrderItem struct {
	shared.BaseEntity
	OrderID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductName string          `gorm:"not null;size:200"`
	SKU         string          `gorm:"not null;size:50"`
	Quantity    int             `gorm:"not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TotalPrice  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
}

// TableName overrides the gorm table name
func (OrderItem) TableName() string {
	return "order_items"
}

// OrderStatusHistory is an append-only record of a single status transition.
// The first entry of an order has no old status (the import itself).
type OrderStatusHistory struct {
	shared.BaseEntity
	OrderID   uuid.UUID    `gorm:"type:uuid;not null;index"`
	OldStatus *OrderStatus `gorm:"size:16"`
	NewStatus OrderStatus  `gorm:"not null;size:16"`
	ChangedBy *uuid.UUID   `gorm:"type:uuid"`
	Notes     string       `gorm:"size:500"`
	ChangedAt time.Time    `gorm:"not null"`
}

// TableName overrides the gorm table name
func (OrderStatusHistory) TableName() string {
	return "order_status_history"
}

// Order is the aggregate root for an order reconciled from a sales channel.
// Items and status history are exclusively owned: they are persisted and
// deleted with the order and never addressed outside the aggregate.
type Order struct {
	shared.BaseEntity
	ExternalOrderID string          `gorm:"uniqueIndex;not null;size:64"`
	Channel         Channel         `gorm:"not null;size:16"`
	Status          OrderStatus     `gorm:"not null;size:16"`
	CustomerName    string          `gorm:"not null;size:200"`
	CustomerEmail   string          `gorm:"size:200"`
	CustomerPhone   string          `gorm:"size:32"`
	ShippingAddress string          `gorm:"size:500"`
	TotalAmount     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Currency        string          `gorm:"not null;size:3"`
	Metadata        shared.JSONMap  `gorm:"serializer:json"`
	OrderedAt       time.Time       `gorm:"not null;index"`

	Items         []OrderItem          `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	StatusHistory []OrderStatusHistory `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

// TableName overrides the gorm table name
func (Order) TableName() string {
	return "orders"
}

// NewOrder creates a new order in PENDING status for the given channel.
// Imported orders always start PENDING regardless of any upstream status.
func NewOrder(externalOrderID string, channel Channel) (*Order, error) {
	if externalOrderID == "" {
		return nil, shared.NewDomainError("INVALID_EXTERNAL_ID", "External order ID cannot be empty")
	}
	if !channel.IsValid() {
		return nil, shared.NewDomainError("INVALID_CHANNEL", fmt.Sprintf("Invalid channel: %s", channel))
	}

	return &Order{
		BaseEntity:      shared.NewBaseEntity(),
		ExternalOrderID: externalOrderID,
		Channel:         channel,
		Status:          OrderStatusPending,
		TotalAmount:     decimal.Zero,
		Currency:        "INR",
		Items:           make([]OrderItem, 0),
		StatusHistory:   make([]OrderStatusHistory, 0),
	}, nil
}

// AddItem appends a line item to the order
func (o *Order) AddItem(productName, sku string, quantity int, unitPrice, totalPrice decimal.Decimal) error {
	if productName == "" {
		return shared.NewDomainError("INVALID_PRODUCT_NAME", "Product name cannot be empty")
	}
	if quantity <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}

	o.Items = append(o.Items, OrderItem{
		BaseEntity:  shared.NewBaseEntity(),
		OrderID:     o.ID,
		ProductName: productName,
		SKU:         sku,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		TotalPrice:  totalPrice,
	})
	o.UpdatedAt = time.Now()

	return nil
}

// RecordImport appends the initial history entry marking the import source.
// It has no old status: the order came into existence as PENDING.
func (o *Order) RecordImport(notes string) {
	now := time.Now()
	o.StatusHistory = append(o.StatusHistory, OrderStatusHistory{
		BaseEntity: shared.NewBaseEntity(),
		OrderID:    o.ID,
		NewStatus:  OrderStatusPending,
		Notes:      notes,
		ChangedAt:  now,
	})
}

// ChangeStatus transitions the order to the target status, appending exactly
// one history entry. Status and history always change together; persistence
// of the pair is the repository's transactional responsibility.
func (o *Order) ChangeStatus(target OrderStatus, changedBy *uuid.UUID, notes string) error {
	if !target.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", fmt.Sprintf("Invalid status: %s", target))
	}
	if !o.Status.CanTransitionTo(target) {
		return shared.NewDomainError("INVALID_TRANSITION",
			fmt.Sprintf("Cannot transition from %s to %s", o.Status, target))
	}

	now := time.Now()
	old := o.Status
	o.StatusHistory = append(o.StatusHistory, OrderStatusHistory{
		BaseEntity: shared.NewBaseEntity(),
		OrderID:    o.ID,
		OldStatus:  &old,
		NewStatus:  target,
		ChangedBy:  changedBy,
		Notes:      notes,
		ChangedAt:  now,
	})
	o.Status = target
	o.UpdatedAt = now

	return nil
}

// RecalculateTotal recomputes the order total as the exact sum of item totals
func (o *Order) RecalculateTotal() {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.TotalPrice)
	}
	o.TotalAmount = total
}

// ItemCount returns the number of line items
func (o *Order) ItemCount() int {
	return len(o.Items)
}

// LatestHistory returns the most recent status history entry, or nil
func (o *Order) LatestHistory() *OrderStatusHistory {
	if len(o.StatusHistory) == 0 {
		return nil
	}
	return &o.StatusHistory[len(o.StatusHistory)-1]
}

// IsTerminal returns true if the order is in a terminal status
func (o *Order) IsTerminal() bool {
	return o.Status.IsTerminal()
}
