// Package scheduler drives periodic channel synchronization.
package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	appchannel "github.com/omnicrm/backend/internal/application/channel"
)

// ErrAlreadyRunning is returned when a second sync run is triggered while one
// is still in flight
var ErrAlreadyRunning = errors.New("channel sync already in progress")

// SyncExecutor runs one full channel synchronization
type SyncExecutor interface {
	SyncAllChannels(ctx context.Context) appchannel.SyncResult
}

// SyncSchedulerConfig holds configuration for the sync scheduler
type SyncSchedulerConfig struct {
	// Interval is how often a sync run is triggered
	Interval time.Duration
	// RunOnStart triggers an immediate run when the scheduler starts
	RunOnStart bool
}

// SyncScheduler triggers channel synchronization on a fixed interval. Runs
// never overlap: a tick that arrives while a run is in flight is skipped.
type SyncScheduler struct {
	config   SyncSchedulerConfig
	executor SyncExecutor
	logger   *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
	inFlight  bool
}

// NewSyncScheduler creates a new sync scheduler
func NewSyncScheduler(config SyncSchedulerConfig, executor SyncExecutor, logger *zap.Logger) *SyncScheduler {
	return &SyncScheduler{
		config:   config,
		executor: executor,
		logger:   logger,
	}
}

// Start starts the scheduler loop. Starting an already started scheduler is
// a no-op.
func (s *SyncScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.runLoop(ctx)

	s.logger.Info("Sync scheduler started",
		zap.Duration("interval", s.config.Interval),
		zap.Bool("run_on_start", s.config.RunOnStart),
	)
	return nil
}

// Stop stops the scheduler and waits for an in-flight run to finish
func (s *SyncScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Sync scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TriggerNow runs a sync immediately, outside the regular cadence
func (s *SyncScheduler) TriggerNow(ctx context.Context) (appchannel.SyncResult, error) {
	if !s.tryBeginRun() {
		return appchannel.SyncResult{}, ErrAlreadyRunning
	}
	defer s.endRun()

	return s.executor.SyncAllChannels(ctx), nil
}

func (s *SyncScheduler) runLoop(ctx context.Context) {
	defer s.wg.Done()

	if s.config.RunOnStart {
		s.runOnce(ctx)
	}

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

func (s *SyncScheduler) runOnce(ctx context.Context) {
	if !s.tryBeginRun() {
		s.logger.Warn("skipping scheduled sync, previous run still in flight")
		return
	}
	defer s.endRun()

	result := s.executor.SyncAllChannels(ctx)
	s.logger.Info("scheduled sync complete",
		zap.Int("total_imported", result.Total),
		zap.Duration("duration", result.Duration),
	)
}

func (s *SyncScheduler) tryBeginRun() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight {
		return false
	}
	s.inFlight = true
	return true
}

func (s *SyncScheduler) endRun() {
	s.mu.Lock()
	s.inFlight = false
	s.mu.Unlock()
}
