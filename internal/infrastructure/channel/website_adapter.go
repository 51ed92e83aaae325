package channel

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/omnicrm/backend/internal/domain/channel"
	"github.com/omnicrm/backend/internal/domain/order"
	"github.com/omnicrm/backend/internal/domain/shared"
)

// WebsiteAdapter simulates the first-party storefront order feed. The in-house
// platform is markedly more reliable than the marketplaces, so its simulator
// is constructed at half the base failure rate.
type WebsiteAdapter struct {
	sim        *Simulator
	orderCount int
}

// NewWebsiteAdapter creates a website channel adapter
func NewWebsiteAdapter(sim *Simulator, orderCount int) *WebsiteAdapter {
	return &WebsiteAdapter{sim: sim, orderCount: orderCount}
}

// Name implements channel.Adapter
func (a *WebsiteAdapter) Name() string {
	return order.ChannelWebsite.String()
}

// FetchOrders implements channel.Adapter
func (a *WebsiteAdapter) FetchOrders(ctx context.Context) ([]channel.ChannelOrder, error) {
	if err := a.sim.SimulateLatency(ctx); err != nil {
		return nil, err
	}
	if err := a.sim.MaybeFail(a.Name(), a.sim.FailureRate()); err != nil {
		return nil, err
	}
	return a.sim.GenerateOrders(a.Name(), a.orderCount, websiteOrderID, websiteMetadata), nil
}

// IsAvailable implements channel.Adapter
func (a *WebsiteAdapter) IsAvailable(ctx context.Context) bool {
	return a.sim.MaybeFail(a.Name(), a.sim.FailureRate()) == nil
}

func websiteOrderID(r *rand.Rand) string {
	return fmt.Sprintf("WEB-2026-%05d", r.Intn(100000))
}

func websiteMetadata(r *rand.Rand) shared.JSONMap {
	source := "organic"
	if r.Intn(2) == 0 {
		source = "direct"
	}
	return shared.JSONMap{
		"traffic_source": source,
		"device_type":    []string{"mobile", "desktop", "tablet"}[r.Intn(3)],
		"coupon_applied": r.Intn(3) == 0,
		"session_id":     fmt.Sprintf("sess-%08x", r.Uint32()),
	}
}
