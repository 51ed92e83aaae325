package resilience

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func testBreakerConfig() BreakerConfig {
	return BreakerConfig{
		FailureThreshold: 0.5,
		MinimumCalls:     4,
		Window:           time.Minute,
		CooldownPeriod:   30 * time.Second,
		HalfOpenProbes:   2,
	}
}

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func TestCircuitBreaker_StaysClosedBelowMinimumCalls(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	cb := newCircuitBreaker(testBreakerConfig(), clock.now)

	for i := 0; i < 3; i++ {
		assert.True(t, cb.Allow())
		cb.RecordFailure()
	}
	assert.Equal(t, StateClosed, cb.State())
}

func TestCircuitBreaker_TripsAtThreshold(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	cb := newCircuitBreaker(testBreakerConfig(), clock.now)

	cb.RecordSuccess()
	cb.RecordSuccess()
	cb.RecordFailure()
	assert.Equal(t, StateClosed, cb.State())

	// 2 failures out of 4 calls reaches the 50% threshold
	cb.RecordFailure()
	assert.Equal(t, StateOpen, cb.State())
	assert.False(t, cb.Allow())
}

func TestCircuitBreaker_HalfOpenRecovery(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	cb := newCircuitBreaker(testBreakerConfig(), clock.now)

	for i := 0; i < 4; i++ {
		cb.RecordFailure()
	}
	assert.Equal(t, StateOpen, cb.State())

	clock.advance(31 * time.Second)
	assert.True(t, cb.Allow(), "first probe admitted after cooldown")
	assert.True(t, cb.Allow(), "second probe admitted")
	assert.False(t, cb.Allow(), "probe budget exhausted")

	cb.RecordSuccess()
	cb.RecordSuccess()
	assert.Equal(t, StateClosed, cb.State())
	assert.True(t, cb.Allow())
}

func TestCircuitBreaker_HalfOpenFailureReopens(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	cb := newCircuitBreaker(testBreakerConfig(), clock.now)

	for i := 0; i < 4; i++ {
		cb.RecordFailure()
	}
	clock.advance(31 * time.Second)
	assert.True(t, cb.Allow())

	cb.RecordFailure()
	assert.False(t, cb.Allow())

	// cooldown restarts from the reopen
	clock.advance(29 * time.Second)
	assert.False(t, cb.Allow())
	clock.advance(2 * time.Second)
	assert.True(t, cb.Allow())
}

func TestCircuitBreaker_WindowExpiresOldCounts(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	cb := newCircuitBreaker(testBreakerConfig(), clock.now)

	cb.RecordFailure()
	cb.RecordFailure()
	cb.RecordFailure()

	clock.advance(61 * time.Second)
	assert.True(t, cb.Allow())

	// old failures aged out, a fresh one is not enough to trip
	cb.RecordFailure()
	assert.Equal(t, StateClosed, cb.State())
}

func TestBulkhead(t *testing.T) {
	b := NewBulkhead(2)

	assert.True(t, b.TryAcquire())
	assert.True(t, b.TryAcquire())
	assert.False(t, b.TryAcquire())
	assert.Equal(t, 2, b.InUse())

	b.Release()
	assert.True(t, b.TryAcquire())
}
