package channel

import (
	"errors"
	"fmt"
)

// TransientError marks a channel failure that is expected to heal on its own
// (upstream flakiness, throttling, temporary unavailability). Transient
// failures are retried and tracked by the circuit breaker; they are never
// surfaced past the sync orchestrator.
type TransientError struct {
	Channel string
	Message string
}

// Error implements the error interface
func (e *TransientError) Error() string {
	return fmt.Sprintf("Simulated %s API failure: %s", e.Channel, e.Message)
}

// NewTransientError creates a transient channel error
func NewTransientError(channelName, message string) *TransientError {
	return &TransientError{Channel: channelName, Message: message}
}

// IsTransient reports whether err is (or wraps) a transient channel error
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}
