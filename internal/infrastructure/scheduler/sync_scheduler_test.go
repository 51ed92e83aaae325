package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appchannel "github.com/omnicrm/backend/internal/application/channel"
)

type countingExecutor struct {
	runs  atomic.Int64
	block chan struct{}
}

func (c *countingExecutor) SyncAllChannels(ctx context.Context) appchannel.SyncResult {
	c.runs.Add(1)
	if c.block != nil {
		<-c.block
	}
	return appchannel.SyncResult{Imported: map[string]int{"AMAZON": 2}, Total: 2}
}

func TestSyncScheduler_RunsOnInterval(t *testing.T) {
	executor := &countingExecutor{}
	s := NewSyncScheduler(SyncSchedulerConfig{Interval: 20 * time.Millisecond}, executor, zap.NewNop())

	require.NoError(t, s.Start(context.Background()))

	assert.Eventually(t, func() bool {
		return executor.runs.Load() >= 2
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, s.Stop(context.Background()))
}

func TestSyncScheduler_RunOnStart(t *testing.T) {
	executor := &countingExecutor{}
	s := NewSyncScheduler(SyncSchedulerConfig{
		Interval:   time.Hour,
		RunOnStart: true,
	}, executor, zap.NewNop())

	require.NoError(t, s.Start(context.Background()))

	assert.Eventually(t, func() bool {
		return executor.runs.Load() == 1
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, s.Stop(context.Background()))
}

func TestSyncScheduler_StartIsIdempotent(t *testing.T) {
	executor := &countingExecutor{}
	s := NewSyncScheduler(SyncSchedulerConfig{Interval: time.Hour}, executor, zap.NewNop())

	require.NoError(t, s.Start(context.Background()))
	require.NoError(t, s.Start(context.Background()))
	require.NoError(t, s.Stop(context.Background()))
	require.NoError(t, s.Stop(context.Background()))
}

func TestSyncScheduler_TriggerNow(t *testing.T) {
	executor := &countingExecutor{}
	s := NewSyncScheduler(SyncSchedulerConfig{Interval: time.Hour}, executor, zap.NewNop())

	result, err := s.TriggerNow(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, result.Total)
	assert.Equal(t, int64(1), executor.runs.Load())
}

func TestSyncScheduler_TriggerNowRejectsOverlap(t *testing.T) {
	executor := &countingExecutor{block: make(chan struct{})}
	s := NewSyncScheduler(SyncSchedulerConfig{Interval: time.Hour}, executor, zap.NewNop())

	started := make(chan struct{})
	go func() {
		close(started)
		_, _ = s.TriggerNow(context.Background())
	}()
	<-started

	assert.Eventually(t, func() bool {
		return executor.runs.Load() == 1
	}, time.Second, time.Millisecond)

	_, err := s.TriggerNow(context.Background())
	assert.ErrorIs(t, err, ErrAlreadyRunning)

	close(executor.block)
}
