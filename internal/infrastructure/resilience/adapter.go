package resilience

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/omnicrm/backend/internal/domain/channel"
)

// Config tunes the full resilience pipeline wrapped around one adapter
type Config struct {
	RetryAttempts int
	RetryBackoff  time.Duration
	MaxConcurrent int
	Breaker       BreakerConfig
}

// ResilientAdapter decorates a channel adapter with a circuit breaker, a
// bounded retry loop and a bulkhead. Failure handling is strictly contained:
// a rejected call (breaker open, no real attempt made) degrades to an empty
// result with no error, while exhausting real attempts surfaces the last
// error to the caller for dead-lettering.
type ResilientAdapter struct {
	inner    channel.Adapter
	breaker  *CircuitBreaker
	bulkhead *Bulkhead
	cfg      Config
	log      *zap.Logger
}

// Wrap decorates adapter with the resilience pipeline
func Wrap(adapter channel.Adapter, cfg Config, log *zap.Logger) *ResilientAdapter {
	return &ResilientAdapter{
		inner:    adapter,
		breaker:  NewCircuitBreaker(cfg.Breaker),
		bulkhead: NewBulkhead(cfg.MaxConcurrent),
		cfg:      cfg,
		log:      log.With(zap.String("channel", adapter.Name())),
	}
}

// Name implements channel.Adapter
func (r *ResilientAdapter) Name() string {
	return r.inner.Name()
}

// BreakerState exposes the breaker mode for health reporting
func (r *ResilientAdapter) BreakerState() BreakerState {
	return r.breaker.State()
}

// FetchOrders implements channel.Adapter. Retries apply only to transient
// channel failures and bulkhead rejections; context cancellation aborts
// immediately.
func (r *ResilientAdapter) FetchOrders(ctx context.Context) ([]channel.ChannelOrder, error) {
	if !r.breaker.Allow() {
		r.log.Warn("circuit open, skipping channel fetch")
		return []channel.ChannelOrder{}, nil
	}

	backoff := r.cfg.RetryBackoff
	var lastErr error
	for attempt := 1; attempt <= r.cfg.RetryAttempts; attempt++ {
		if attempt > 1 {
			if !r.breaker.Allow() {
				break
			}
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}

		orders, err := r.attempt(ctx)
		if err == nil {
			if attempt > 1 {
				r.log.Info("channel fetch recovered", zap.Int("attempt", attempt))
			}
			return orders, nil
		}
		if !retryable(err) {
			return nil, err
		}

		lastErr = err
		r.log.Warn("channel fetch failed",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", r.cfg.RetryAttempts),
			zap.Error(err))
	}

	return nil, fmt.Errorf("channel %s: retries exhausted: %w", r.inner.Name(), lastErr)
}

// IsAvailable implements channel.Adapter
func (r *ResilientAdapter) IsAvailable(ctx context.Context) bool {
	if r.breaker.State() == StateOpen {
		return false
	}
	return r.inner.IsAvailable(ctx)
}

func (r *ResilientAdapter) attempt(ctx context.Context) ([]channel.ChannelOrder, error) {
	if !r.bulkhead.TryAcquire() {
		return nil, ErrBulkheadFull
	}
	defer r.bulkhead.Release()

	orders, err := r.inner.FetchOrders(ctx)
	if err != nil {
		if channel.IsTransient(err) {
			r.breaker.RecordFailure()
		}
		return nil, err
	}
	r.breaker.RecordSuccess()
	return orders, nil
}

// retryable reports whether the pipeline should attempt the call again.
// Bulkhead rejections are local and cheap to retry after backoff.
func retryable(err error) bool {
	return channel.IsTransient(err) || errors.Is(err, ErrBulkheadFull)
}
