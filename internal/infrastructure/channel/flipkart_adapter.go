package channel

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/omnicrm/backend/internal/domain/channel"
	"github.com/omnicrm/backend/internal/domain/order"
	"github.com/omnicrm/backend/internal/domain/shared"
)

// FlipkartAdapter simulates the Flipkart marketplace order feed
type FlipkartAdapter struct {
	sim        *Simulator
	orderCount int
}

// NewFlipkartAdapter creates a Flipkart channel adapter
func NewFlipkartAdapter(sim *Simulator, orderCount int) *FlipkartAdapter {
	return &FlipkartAdapter{sim: sim, orderCount: orderCount}
}

// Name implements channel.Adapter
func (a *FlipkartAdapter) Name() string {
	return order.ChannelFlipkart.String()
}

// FetchOrders implements channel.Adapter
func (a *FlipkartAdapter) FetchOrders(ctx context.Context) ([]channel.ChannelOrder, error) {
	if err := a.sim.SimulateLatency(ctx); err != nil {
		return nil, err
	}
	if err := a.sim.MaybeFail(a.Name(), a.sim.FailureRate()); err != nil {
		return nil, err
	}
	return a.sim.GenerateOrders(a.Name(), a.orderCount, flipkartOrderID, flipkartMetadata), nil
}

// IsAvailable implements channel.Adapter
func (a *FlipkartAdapter) IsAvailable(ctx context.Context) bool {
	return a.sim.MaybeFail(a.Name(), a.sim.FailureRate()) == nil
}

func flipkartOrderID(r *rand.Rand) string {
	return fmt.Sprintf("OD%013d", r.Int63n(10000000000000))
}

func flipkartMetadata(r *rand.Rand) shared.JSONMap {
	return shared.JSONMap{
		"seller_name":       "RetailNet",
		"flipkart_assured":  r.Intn(2) == 0,
		"supercoins_earned": r.Intn(50),
		"delivery_type":     "STANDARD",
	}
}
