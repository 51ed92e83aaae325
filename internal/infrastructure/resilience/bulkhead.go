package resilience

// Bulkhead caps concurrent calls into one downstream with a semaphore.
// Rejection is immediate: callers that cannot get a permit back off and
// retry rather than queue.
type Bulkhead struct {
	permits chan struct{}
}

// NewBulkhead creates a bulkhead admitting at most maxConcurrent calls
func NewBulkhead(maxConcurrent int) *Bulkhead {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &Bulkhead{permits: make(chan struct{}, maxConcurrent)}
}

// TryAcquire claims a permit without blocking
func (b *Bulkhead) TryAcquire() bool {
	select {
	case b.permits <- struct{}{}:
		return true
	default:
		return false
	}
}

// Release returns a permit claimed by TryAcquire
func (b *Bulkhead) Release() {
	select {
	case <-b.permits:
	default:
	}
}

// InUse returns how many permits are currently claimed
func (b *Bulkhead) InUse() int {
	return len(b.permits)
}
