package channel

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/omnicrm/backend/internal/domain/channel"
	"github.com/omnicrm/backend/internal/domain/order"
	"github.com/omnicrm/backend/internal/domain/shared"
)

// AmazonAdapter simulates the Amazon Selling Partner order feed
type AmazonAdapter struct {
	sim        *Simulator
	orderCount int
}

// NewAmazonAdapter creates an Amazon channel adapter
func NewAmazonAdapter(sim *Simulator, orderCount int) *AmazonAdapter {
	return &AmazonAdapter{sim: sim, orderCount: orderCount}
}

// Name implements channel.Adapter
func (a *AmazonAdapter) Name() string {
	return order.ChannelAmazon.String()
}

// FetchOrders implements channel.Adapter
func (a *AmazonAdapter) FetchOrders(ctx context.Context) ([]channel.ChannelOrder, error) {
	if err := a.sim.SimulateLatency(ctx); err != nil {
		return nil, err
	}
	if err := a.sim.MaybeFail(a.Name(), a.sim.FailureRate()); err != nil {
		return nil, err
	}
	return a.sim.GenerateOrders(a.Name(), a.orderCount, amazonOrderID, amazonMetadata), nil
}

// IsAvailable implements channel.Adapter
func (a *AmazonAdapter) IsAvailable(ctx context.Context) bool {
	return a.sim.MaybeFail(a.Name(), a.sim.FailureRate()) == nil
}

func amazonOrderID(r *rand.Rand) string {
	return fmt.Sprintf("114-%07d-%07d", r.Intn(10000000), r.Intn(10000000))
}

func amazonMetadata(r *rand.Rand) shared.JSONMap {
	fulfillment := "FBA"
	if r.Intn(2) == 0 {
		fulfillment = "FBM"
	}
	return shared.JSONMap{
		"marketplace":        "amazon.in",
		"fulfillment":        fulfillment,
		"is_prime":           r.Intn(2) == 0,
		"seller_order_id":    fmt.Sprintf("SO-%06d", r.Intn(1000000)),
		"marketplace_fee_pc": 15.0,
	}
}
