package telemetry_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"

	"github.com/omnicrm/backend/internal/infrastructure/telemetry"
)

func TestNewSyncMetrics(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")

	sm, err := telemetry.NewSyncMetrics(telemetry.SyncMetricsConfig{
		Meter:  meter,
		Logger: zap.NewNop(),
	})

	require.NoError(t, err)
	require.NotNil(t, sm)
}

func TestMeterProvider_DisabledIsNotEnabled(t *testing.T) {
	mp, err := telemetry.NewMeterProvider(context.Background(), telemetry.MetricsConfig{
		Enabled: false,
	}, zap.NewNop())

	require.NoError(t, err)
	assert.False(t, mp.IsEnabled())
	assert.NoError(t, mp.Shutdown(context.Background()))
}

func TestNewSyncMetrics_NilMeter(t *testing.T) {
	sm, err := telemetry.NewSyncMetrics(telemetry.SyncMetricsConfig{Meter: nil})

	require.Error(t, err)
	assert.Nil(t, sm)
	assert.ErrorIs(t, err, telemetry.ErrMeterNil)
}

func TestSyncMetrics_RecordOutcomes(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	sm, err := telemetry.NewSyncMetrics(telemetry.SyncMetricsConfig{
		Meter: provider.Meter("test"),
	})
	require.NoError(t, err)

	ctx := context.Background()
	sm.RecordSyncSuccess(ctx, "AMAZON", 3)
	sm.RecordSyncSuccess(ctx, "WEBSITE", 0)
	sm.RecordSyncFailure(ctx, "FLIPKART")
	sm.RecordSyncDuration(ctx, "AMAZON", 120*time.Millisecond)
	sm.RecordDeadLetterBacklog(ctx, 2)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))
	require.Len(t, rm.ScopeMetrics, 1)

	sums := map[string]int64{}
	for _, m := range rm.ScopeMetrics[0].Metrics {
		if sum, ok := m.Data.(metricdata.Sum[int64]); ok {
			var total int64
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
			sums[m.Name] = total
		}
	}

	assert.Equal(t, int64(2), sums["crm_channel_sync_success_total"])
	assert.Equal(t, int64(1), sums["crm_channel_sync_failure_total"])
	assert.Equal(t, int64(3), sums["crm_orders_imported_total"])
}

func TestSyncMetrics_NoopMeterDoesNotPanic(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")
	sm, err := telemetry.NewSyncMetrics(telemetry.SyncMetricsConfig{Meter: meter})
	require.NoError(t, err)

	ctx := context.Background()
	sm.RecordSyncSuccess(ctx, "AMAZON", 5)
	sm.RecordSyncFailure(ctx, "AMAZON")
	sm.RecordSyncDuration(ctx, "AMAZON", time.Second)
	sm.RecordDeadLetterBacklog(ctx, 0)
}
