package resilience

import "errors"

var (
	// ErrBulkheadFull is returned when all concurrency permits are in use
	ErrBulkheadFull = errors.New("bulkhead: no permits available")

	// ErrCircuitOpen is returned when the breaker rejects a call outright
	ErrCircuitOpen = errors.New("circuit breaker: open")
)
