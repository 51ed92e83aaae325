package resilience

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/omnicrm/backend/internal/domain/channel"
)

type stubAdapter struct {
	name      string
	calls     int
	responses []func() ([]channel.ChannelOrder, error)
}

func (s *stubAdapter) Name() string { return s.name }

func (s *stubAdapter) FetchOrders(ctx context.Context) ([]channel.ChannelOrder, error) {
	idx := s.calls
	s.calls++
	if idx >= len(s.responses) {
		idx = len(s.responses) - 1
	}
	return s.responses[idx]()
}

func (s *stubAdapter) IsAvailable(ctx context.Context) bool { return true }

func succeed(n int) func() ([]channel.ChannelOrder, error) {
	return func() ([]channel.ChannelOrder, error) {
		orders := make([]channel.ChannelOrder, n)
		return orders, nil
	}
}

func failTransient(name string) func() ([]channel.ChannelOrder, error) {
	return func() ([]channel.ChannelOrder, error) {
		return nil, channel.NewTransientError(name, "connection timed out")
	}
}

func testResilienceConfig() Config {
	return Config{
		RetryAttempts: 3,
		RetryBackoff:  time.Millisecond,
		MaxConcurrent: 2,
		Breaker: BreakerConfig{
			FailureThreshold: 0.5,
			MinimumCalls:     4,
			Window:           time.Minute,
			CooldownPeriod:   time.Minute,
			HalfOpenProbes:   1,
		},
	}
}

func TestResilientAdapter_PassThrough(t *testing.T) {
	stub := &stubAdapter{name: "AMAZON", responses: []func() ([]channel.ChannelOrder, error){succeed(3)}}
	r := Wrap(stub, testResilienceConfig(), zap.NewNop())

	orders, err := r.FetchOrders(context.Background())
	require.NoError(t, err)
	assert.Len(t, orders, 3)
	assert.Equal(t, 1, stub.calls)
	assert.Equal(t, "AMAZON", r.Name())
}

func TestResilientAdapter_RetriesTransientThenSucceeds(t *testing.T) {
	stub := &stubAdapter{name: "FLIPKART", responses: []func() ([]channel.ChannelOrder, error){
		failTransient("FLIPKART"),
		failTransient("FLIPKART"),
		succeed(2),
	}}
	r := Wrap(stub, testResilienceConfig(), zap.NewNop())

	orders, err := r.FetchOrders(context.Background())
	require.NoError(t, err)
	assert.Len(t, orders, 2)
	assert.Equal(t, 3, stub.calls)
}

func TestResilientAdapter_ExhaustedRetriesSurfaceError(t *testing.T) {
	stub := &stubAdapter{name: "AMAZON", responses: []func() ([]channel.ChannelOrder, error){
		failTransient("AMAZON"),
	}}
	r := Wrap(stub, testResilienceConfig(), zap.NewNop())

	_, err := r.FetchOrders(context.Background())
	require.Error(t, err)
	assert.True(t, channel.IsTransient(err))
	assert.Contains(t, err.Error(), "retries exhausted")
	assert.Equal(t, 3, stub.calls)
}

func TestResilientAdapter_OpenBreakerFallsBackToEmpty(t *testing.T) {
	stub := &stubAdapter{name: "AMAZON", responses: []func() ([]channel.ChannelOrder, error){
		failTransient("AMAZON"),
	}}
	cfg := testResilienceConfig()
	cfg.RetryAttempts = 5
	r := Wrap(stub, cfg, zap.NewNop())

	// enough failures inside one fetch to trip the breaker mid-loop
	_, err := r.FetchOrders(context.Background())
	require.Error(t, err)
	assert.Equal(t, StateOpen, r.BreakerState())

	callsBefore := stub.calls
	orders, err := r.FetchOrders(context.Background())
	require.NoError(t, err)
	assert.Empty(t, orders)
	assert.Equal(t, callsBefore, stub.calls, "open breaker must not touch the channel")
	assert.False(t, r.IsAvailable(context.Background()))
}

func TestResilientAdapter_ContextCancellationAborts(t *testing.T) {
	stub := &stubAdapter{name: "WEBSITE", responses: []func() ([]channel.ChannelOrder, error){
		func() ([]channel.ChannelOrder, error) { return nil, context.Canceled },
	}}
	r := Wrap(stub, testResilienceConfig(), zap.NewNop())

	_, err := r.FetchOrders(context.Background())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, stub.calls, "cancellation must not be retried")
}

func TestResilientAdapter_BulkheadRejectionIsRetried(t *testing.T) {
	stub := &stubAdapter{name: "AMAZON", responses: []func() ([]channel.ChannelOrder, error){succeed(1)}}
	cfg := testResilienceConfig()
	cfg.MaxConcurrent = 1
	cfg.RetryBackoff = 50 * time.Millisecond
	r := Wrap(stub, cfg, zap.NewNop())

	// hold the only permit for the first attempt, then release it
	require.True(t, r.bulkhead.TryAcquire())
	go func() {
		time.Sleep(10 * time.Millisecond)
		r.bulkhead.Release()
	}()

	orders, err := r.FetchOrders(context.Background())
	require.NoError(t, err)
	assert.Len(t, orders, 1)
}
