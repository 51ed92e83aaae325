package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// SyncMetrics tracks the health of channel synchronization: how many runs
// succeed or fail per channel, how many orders get imported, and how large
// the dead letter backlog is.
type SyncMetrics struct {
	meter  metric.Meter
	logger *zap.Logger

	syncSuccessTotal    *Counter
	syncFailureTotal    *Counter
	ordersImportedTotal *Counter
	syncDuration        *Histogram
	deadLetterBacklog   *Gauge
}

// SyncMetricsConfig holds configuration for sync metrics.
type SyncMetricsConfig struct {
	Meter  metric.Meter
	Logger *zap.Logger
}

// NewSyncMetrics creates a new SyncMetrics instance.
func NewSyncMetrics(cfg SyncMetricsConfig) (*SyncMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	sm := &SyncMetrics{
		meter:  cfg.Meter,
		logger: logger,
	}

	var err error

	sm.syncSuccessTotal, err = NewCounter(
		cfg.Meter,
		"crm_channel_sync_success_total",
		"Total number of successful channel sync runs",
		"{runs}",
	)
	if err != nil {
		return nil, err
	}

	sm.syncFailureTotal, err = NewCounter(
		cfg.Meter,
		"crm_channel_sync_failure_total",
		"Total number of failed channel sync runs",
		"{runs}",
	)
	if err != nil {
		return nil, err
	}

	sm.ordersImportedTotal, err = NewCounter(
		cfg.Meter,
		"crm_orders_imported_total",
		"Total number of orders imported from sales channels",
		"{orders}",
	)
	if err != nil {
		return nil, err
	}

	sm.syncDuration, err = NewHistogram(
		cfg.Meter,
		"crm_channel_sync_duration_seconds",
		"Duration of channel sync runs",
		"s",
		SyncDurationBuckets,
	)
	if err != nil {
		return nil, err
	}

	sm.deadLetterBacklog, err = NewGauge(
		cfg.Meter,
		"crm_dead_letter_pending",
		"Current number of pending dead letter entries",
		"{entries}",
	)
	if err != nil {
		return nil, err
	}

	return sm, nil
}

// RecordSyncSuccess records a completed sync run and its imported order count
func (sm *SyncMetrics) RecordSyncSuccess(ctx context.Context, channelName string, imported int64) {
	sm.syncSuccessTotal.Inc(ctx, AttrChannel.String(channelName))
	if imported > 0 {
		sm.ordersImportedTotal.Add(ctx, imported, AttrChannel.String(channelName))
	}
}

// RecordSyncFailure records a sync run that ended in a dead letter
func (sm *SyncMetrics) RecordSyncFailure(ctx context.Context, channelName string) {
	sm.syncFailureTotal.Inc(ctx, AttrChannel.String(channelName))
}

// RecordSyncDuration records how long one channel sync took
func (sm *SyncMetrics) RecordSyncDuration(ctx context.Context, channelName string, d time.Duration) {
	sm.syncDuration.RecordDuration(ctx, d, AttrChannel.String(channelName))
}

// RecordDeadLetterBacklog records the current pending dead letter count
func (sm *SyncMetrics) RecordDeadLetterBacklog(ctx context.Context, pending int64) {
	sm.deadLetterBacklog.Record(ctx, pending)
}
