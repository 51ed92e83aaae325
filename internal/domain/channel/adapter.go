package channel

import "context"

// Adapter is the uniform contract every sales channel implements.
// FetchOrders may fail with a transient error when the channel is unhealthy;
// IsAvailable is a cheap, non-destructive probe and never returns an error.
type Adapter interface {
	// Name returns the channel name (e.g. "AMAZON")
	Name() string

	// FetchOrders retrieves the orders currently available on the channel
	FetchOrders(ctx context.Context) ([]ChannelOrder, error)

	// IsAvailable probes whether the channel is reachable
	IsAvailable(ctx context.Context) bool
}
