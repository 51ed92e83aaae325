package resilience

import (
	"sync"
	"time"
)

// BreakerState is the current mode of a circuit breaker
type BreakerState string

const (
	StateClosed   BreakerState = "CLOSED"
	StateOpen     BreakerState = "OPEN"
	StateHalfOpen BreakerState = "HALF_OPEN"
)

// BreakerConfig tunes a circuit breaker
type BreakerConfig struct {
	// FailureThreshold is the failure ratio in (0, 1] that trips the breaker
	FailureThreshold float64
	// MinimumCalls is how many calls the window needs before the ratio counts
	MinimumCalls int
	// Window bounds the rolling observation period
	Window time.Duration
	// CooldownPeriod is how long the breaker stays open before probing
	CooldownPeriod time.Duration
	// HalfOpenProbes is how many trial calls half-open admits
	HalfOpenProbes int
}

// CircuitBreaker guards one downstream channel. Closed counts outcomes over a
// rolling window and trips when the failure ratio crosses the threshold with
// enough calls observed. Open rejects everything until the cooldown elapses,
// then half-open admits a fixed number of probes: all succeeding closes the
// breaker, any failing reopens it.
type CircuitBreaker struct {
	cfg BreakerConfig
	now func() time.Time

	mu          sync.Mutex
	state       BreakerState
	windowStart time.Time
	successes   int
	failures    int
	openedAt    time.Time
	probesUsed  int
	probesOK    int
}

// NewCircuitBreaker creates a closed breaker
func NewCircuitBreaker(cfg BreakerConfig) *CircuitBreaker {
	return newCircuitBreaker(cfg, time.Now)
}

func newCircuitBreaker(cfg BreakerConfig, now func() time.Time) *CircuitBreaker {
	return &CircuitBreaker{
		cfg:         cfg,
		now:         now,
		state:       StateClosed,
		windowStart: now(),
	}
}

// Allow reports whether a call may proceed right now. An open breaker whose
// cooldown has elapsed moves to half-open and admits the call as a probe.
func (cb *CircuitBreaker) Allow() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateClosed:
		cb.rollWindow()
		return true
	case StateOpen:
		if cb.now().Sub(cb.openedAt) < cb.cfg.CooldownPeriod {
			return false
		}
		cb.transition(StateHalfOpen)
		cb.probesUsed = 1
		return true
	case StateHalfOpen:
		if cb.probesUsed >= cb.cfg.HalfOpenProbes {
			return false
		}
		cb.probesUsed++
		return true
	}
	return false
}

// RecordSuccess feeds a successful call outcome into the breaker
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateClosed:
		cb.rollWindow()
		cb.successes++
	case StateHalfOpen:
		cb.probesOK++
		if cb.probesOK >= cb.cfg.HalfOpenProbes {
			cb.transition(StateClosed)
		}
	}
}

// RecordFailure feeds a failed call outcome into the breaker
func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateClosed:
		cb.rollWindow()
		cb.failures++
		total := cb.successes + cb.failures
		if total >= cb.cfg.MinimumCalls &&
			float64(cb.failures)/float64(total) >= cb.cfg.FailureThreshold {
			cb.trip()
		}
	case StateHalfOpen:
		cb.trip()
	}
}

// State returns the breaker's current mode
func (cb *CircuitBreaker) State() BreakerState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	if cb.state == StateOpen && cb.now().Sub(cb.openedAt) >= cb.cfg.CooldownPeriod {
		return StateHalfOpen
	}
	return cb.state
}

func (cb *CircuitBreaker) trip() {
	cb.transition(StateOpen)
	cb.openedAt = cb.now()
}

func (cb *CircuitBreaker) transition(to BreakerState) {
	cb.state = to
	cb.successes = 0
	cb.failures = 0
	cb.probesUsed = 0
	cb.probesOK = 0
	cb.windowStart = cb.now()
}

// rollWindow discards stale counts once the observation period lapses.
// Callers must hold cb.mu.
func (cb *CircuitBreaker) rollWindow() {
	if cb.now().Sub(cb.windowStart) >= cb.cfg.Window {
		cb.successes = 0
		cb.failures = 0
		cb.windowStart = cb.now()
	}
}
