package channel

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/omnicrm/backend/internal/domain/channel"
	"github.com/omnicrm/backend/internal/domain/shared"
)

var (
	firstNames = []string{
		"Aarav", "Vivaan", "Aditya", "Arjun", "Sai", "Reyansh", "Krishna", "Ishaan",
		"Ananya", "Diya", "Saanvi", "Aadhya", "Kiara", "Myra", "Anika", "Navya",
	}
	lastNames = []string{
		"Sharma", "Verma", "Patel", "Gupta", "Singh", "Kumar", "Reddy", "Nair",
		"Iyer", "Mehta", "Joshi", "Malhotra", "Agarwal", "Banerjee", "Chopra", "Desai",
	}
	productNames = []string{
		"Demi-Fine Gold Necklace", "Anti-Tarnish Hoop Earrings", "Layered Chain Bracelet",
		"Minimalist Pendant", "Statement Ring Set", "Pearl Drop Earrings",
		"Chunky Chain Necklace", "Charm Anklet", "Stackable Rings",
		"Evil Eye Bracelet", "Butterfly Studs", "Heart Locket Necklace",
		"Tennis Bracelet", "Crescent Moon Earrings", "Initial Pendant",
	}
	cities = []string{
		"Mumbai", "Delhi", "Bangalore", "Hyderabad", "Chennai", "Kolkata",
		"Pune", "Ahmedabad", "Jaipur", "Lucknow", "Chandigarh", "Indore",
	}
)

// Simulator fabricates channel orders and injects latency and failures so the
// resilience pipeline has something real to absorb. All randomness goes
// through a single guarded source so tests can seed it deterministically.
type Simulator struct {
	failureRate float64

	mu  sync.Mutex
	rng *rand.Rand
}

// NewSimulator creates a simulator with the given failure probability in [0, 1]
func NewSimulator(failureRate float64) *Simulator {
	return &Simulator{
		failureRate: failureRate,
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// NewSeededSimulator creates a simulator with a fixed seed for tests
func NewSeededSimulator(failureRate float64, seed int64) *Simulator {
	return &Simulator{
		failureRate: failureRate,
		rng:         rand.New(rand.NewSource(seed)),
	}
}

// SimulateLatency blocks for a random delay in [50ms, 300ms), honoring
// context cancellation
func (s *Simulator) SimulateLatency(ctx context.Context) error {
	timer := time.NewTimer(s.latencyDelay())
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// MaybeFail returns a transient error with probability failureRate
func (s *Simulator) MaybeFail(channelName string, rate float64) error {
	if s.float64() < rate {
		return channel.NewTransientError(channelName, "connection timed out")
	}
	return nil
}

// FailureRate returns the configured base failure probability
func (s *Simulator) FailureRate() float64 {
	return s.failureRate
}

// GenerateOrders fabricates count orders for the named channel. External order
// ids follow the channel's native format via the idFormat callback.
func (s *Simulator) GenerateOrders(channelName string, count int, idFormat func(r *rand.Rand) string, metadata func(r *rand.Rand) shared.JSONMap) []channel.ChannelOrder {
	s.mu.Lock()
	defer s.mu.Unlock()

	orders := make([]channel.ChannelOrder, 0, count)
	for i := 0; i < count; i++ {
		first := firstNames[s.rng.Intn(len(firstNames))]
		last := lastNames[s.rng.Intn(len(lastNames))]
		city := cities[s.rng.Intn(len(cities))]

		itemCount := 1 + s.rng.Intn(3)
		items := make([]channel.ChannelOrderItem, 0, itemCount)
		total := decimal.Zero
		for j := 0; j < itemCount; j++ {
			qty := 1 + s.rng.Intn(3)
			unitPrice := decimal.NewFromFloat(200 + s.rng.Float64()*1999).Round(2)
			lineTotal := unitPrice.Mul(decimal.NewFromInt(int64(qty)))
			items = append(items, channel.ChannelOrderItem{
				ProductName: productNames[s.rng.Intn(len(productNames))],
				SKU:         fmt.Sprintf("PAL-%03d", 1+s.rng.Intn(999)),
				Quantity:    qty,
				UnitPrice:   unitPrice,
				TotalPrice:  lineTotal,
			})
			total = total.Add(lineTotal)
		}

		orderedAt := time.Now().Add(-time.Duration(s.rng.Intn(48*3600)) * time.Second)

		orders = append(orders, channel.ChannelOrder{
			ExternalOrderID: idFormat(s.rng),
			Channel:         channelName,
			Status:          "PENDING",
			CustomerName:    first + " " + last,
			CustomerEmail:   fmt.Sprintf("%s.%s%d@example.com", strings.ToLower(first), strings.ToLower(last), s.rng.Intn(1000)),
			CustomerPhone:   fmt.Sprintf("+91%d", 7000000000+s.rng.Int63n(3000000000)),
			ShippingAddress: fmt.Sprintf("%d, %s Street, %s", 1+s.rng.Intn(200), last, city),
			TotalAmount:     total,
			Currency:        "INR",
			Metadata:        metadata(s.rng),
			OrderedAt:       orderedAt,
			Items:           items,
		})
	}
	return orders
}

func (s *Simulator) latencyDelay() time.Duration {
	return time.Duration(50+s.intn(250)) * time.Millisecond
}

func (s *Simulator) intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Intn(n)
}

func (s *Simulator) float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64()
}
