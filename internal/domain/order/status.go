package order

import (
	"fmt"
	"strings"

	"github.com/omnicrm/backend/internal/domain/shared"
)

// Channel identifies the sales channel an order originated from
type Channel string

const (
	ChannelAmazon   Channel = "AMAZON"
	ChannelFlipkart Channel = "FLIPKART"
	ChannelWebsite  Channel = "WEBSITE"
)

// IsValid checks if the channel is a known sales channel
func (c Channel) IsValid() bool {
	switch c {
	case ChannelAmazon, ChannelFlipkart, ChannelWebsite:
		return true
	}
	return false
}

// String returns the string representation of Channel
func (c Channel) String() string {
	return string(c)
}

// ParseChannel parses a channel name, case-insensitively
func ParseChannel(name string) (Channel, error) {
	c := Channel(strings.ToUpper(name))
	if !c.IsValid() {
		return "", shared.NewDomainError("INVALID_CHANNEL", fmt.Sprintf("Invalid channel: %s", name))
	}
	return c, nil
}

// OrderStatus represents the lifecycle status of an order
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusConfirmed  OrderStatus = "CONFIRMED"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusShipped    OrderStatus = "SHIPPED"
	OrderStatusDelivered  OrderStatus = "DELIVERED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
	OrderStatusReturned   OrderStatus = "RETURNED"
)

// AllStatuses returns every known order status in lifecycle order
func AllStatuses() []OrderStatus {
	return []OrderStatus{
		OrderStatusPending,
		OrderStatusConfirmed,
		OrderStatusProcessing,
		OrderStatusShipped,
		OrderStatusDelivered,
		OrderStatusCancelled,
		OrderStatusReturned,
	}
}

// IsValid checks if the status is a valid OrderStatus
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusProcessing,
		OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled, OrderStatusReturned:
		return true
	}
	return false
}

// String returns the string representation of OrderStatus
func (s OrderStatus) String() string {
	return string(s)
}

// IsTerminal returns true for statuses that accept no further transitions
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCancelled || s == OrderStatusReturned
}

// CanTransitionTo checks if the status can transition to the target status.
// The transition table is the source of truth for the order lifecycle; any
// pair not listed here is rejected, including self-transitions.
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	switch s {
	case OrderStatusPending:
		return target == OrderStatusConfirmed || target == OrderStatusCancelled
	case OrderStatusConfirmed:
		return target == OrderStatusProcessing || target == OrderStatusCancelled
	case OrderStatusProcessing:
		return target == OrderStatusShipped || target == OrderStatusCancelled
	case OrderStatusShipped:
		return target == OrderStatusDelivered || target == OrderStatusReturned
	case OrderStatusDelivered:
		return target == OrderStatusReturned
	case OrderStatusCancelled, OrderStatusReturned:
		return false
	}
	return false
}

// ParseOrderStatus parses a status name, case-insensitively
func ParseOrderStatus(name string) (OrderStatus, error) {
	s := OrderStatus(strings.ToUpper(name))
	if !s.IsValid() {
		return "", shared.NewDomainError("INVALID_STATUS", fmt.Sprintf("Invalid status: %s", name))
	}
	return s, nil
}
