package integration

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/zap"
	"gorm.io/gorm"

	appchannel "github.com/omnicrm/backend/internal/application/channel"
	dlqapp "github.com/omnicrm/backend/internal/application/deadletter"
	orderapp "github.com/omnicrm/backend/internal/application/order"
	"github.com/omnicrm/backend/internal/domain/channel"
	infrachannel "github.com/omnicrm/backend/internal/infrastructure/channel"
	"github.com/omnicrm/backend/internal/infrastructure/persistence"
	"github.com/omnicrm/backend/internal/infrastructure/resilience"
	"github.com/omnicrm/backend/internal/infrastructure/scheduler"
	"github.com/omnicrm/backend/internal/infrastructure/telemetry"
	"github.com/omnicrm/backend/internal/interfaces/http/handler"
	"github.com/omnicrm/backend/internal/interfaces/http/router"
)

type testServer struct {
	engine *gin.Engine
	db     *gorm.DB
}

func newTestServer(t *testing.T, failureRate float64) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := NewTestDB(t)
	orderRepo := persistence.NewGormOrderRepository(db)
	deadLetterRepo := persistence.NewGormDeadLetterRepository(db)

	cfg := resilience.Config{
		RetryAttempts: 2,
		RetryBackoff:  time.Millisecond,
		MaxConcurrent: 2,
		Breaker: resilience.BreakerConfig{
			FailureThreshold: 0.5,
			MinimumCalls:     100,
			Window:           time.Minute,
			CooldownPeriod:   time.Second,
			HalfOpenProbes:   2,
		},
	}
	log := zap.NewNop()
	adapters := []channel.Adapter{
		resilience.Wrap(infrachannel.NewAmazonAdapter(infrachannel.NewSeededSimulator(failureRate, 42), 3), cfg, log),
		resilience.Wrap(infrachannel.NewFlipkartAdapter(infrachannel.NewSeededSimulator(failureRate, 43), 3), cfg, log),
		resilience.Wrap(infrachannel.NewWebsiteAdapter(infrachannel.NewSeededSimulator(failureRate*0.5, 44), 2), cfg, log),
	}

	metrics, err := telemetry.NewSyncMetrics(telemetry.SyncMetricsConfig{
		Meter: noop.NewMeterProvider().Meter("integration"),
	})
	require.NoError(t, err)

	deadLetterService := dlqapp.NewService(deadLetterRepo, log)
	syncService := appchannel.NewSyncService(adapters, orderRepo, deadLetterService, metrics, log)
	orderService := orderapp.NewService(orderRepo)
	sched := scheduler.NewSyncScheduler(scheduler.SyncSchedulerConfig{Interval: time.Hour}, syncService, log)

	engine := gin.New()
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(handler.NewOrderHandler(orderService)).
		Register(handler.NewSyncHandler(sched, syncService)).
		Register(handler.NewDeadLetterHandler(deadLetterService))
	r.Setup()

	return &testServer{engine: engine, db: db}
}

func (s *testServer) request(t *testing.T, method, path, body string) (*httptest.ResponseRecorder, map[string]json.RawMessage) {
	t.Helper()
	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	s.engine.ServeHTTP(w, req)

	envelope := make(map[string]json.RawMessage)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	return w, envelope
}

func TestSyncFlow_EndToEnd(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	srv := newTestServer(t, 0)

	// Full sync across all three channels
	w, envelope := srv.request(t, http.MethodPost, "/api/v1/admin/sync", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var result appchannel.SyncResult
	require.NoError(t, json.Unmarshal(envelope["data"], &result))
	assert.Equal(t, 8, result.Total)
	assert.Equal(t, 3, result.Imported["AMAZON"])
	assert.Equal(t, 3, result.Imported["FLIPKART"])
	assert.Equal(t, 2, result.Imported["WEBSITE"])

	// Orders are queryable through the API
	w, envelope = srv.request(t, http.MethodGet, "/api/v1/orders?page_size=50", "")
	require.Equal(t, http.StatusOK, w.Code)

	var orders []orderapp.OrderListItemResponse
	require.NoError(t, json.Unmarshal(envelope["data"], &orders))
	require.Len(t, orders, 8)

	for _, o := range orders {
		assert.Equal(t, "PENDING", o.Status)
		assert.Equal(t, "INR", o.Currency)
	}

	// Channel filter narrows the result
	w, envelope = srv.request(t, http.MethodGet, "/api/v1/orders?channel=WEBSITE", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(envelope["data"], &orders))
	assert.Len(t, orders, 2)

	// Status transition persists and extends history
	target := orders[0]
	w, envelope = srv.request(t, http.MethodPut, "/api/v1/orders/"+target.ID.String()+"/status",
		`{"status": "CONFIRMED", "notes": "manual confirmation"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w, envelope = srv.request(t, http.MethodGet, "/api/v1/orders/"+target.ID.String(), "")
	require.Equal(t, http.StatusOK, w.Code)

	var detail orderapp.OrderResponse
	require.NoError(t, json.Unmarshal(envelope["data"], &detail))
	assert.Equal(t, "CONFIRMED", detail.Status)
	require.Len(t, detail.StatusHistory, 2)
	assert.Equal(t, "CONFIRMED", detail.StatusHistory[1].NewStatus)
	assert.NotEmpty(t, detail.Items)

	// Stats reflect the imported set
	w, envelope = srv.request(t, http.MethodGet, "/api/v1/orders/stats", "")
	require.Equal(t, http.StatusOK, w.Code)

	var stats orderapp.StatsResponse
	require.NoError(t, json.Unmarshal(envelope["data"], &stats))
	assert.Equal(t, int64(8), stats.Total)
	assert.Equal(t, int64(7), stats.ByStatus["PENDING"])
	assert.Equal(t, int64(1), stats.ByStatus["CONFIRMED"])
}

func TestSyncFlow_ChannelFailureIsDeadLettered(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	srv := newTestServer(t, 1.0)

	// The amazon simulator fails every call, so retries exhaust and the
	// failure lands in the dead letter queue instead of aborting the sync
	w, envelope := srv.request(t, http.MethodPost, "/api/v1/admin/sync/amazon", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var result struct {
		Imported int `json:"imported"`
	}
	require.NoError(t, json.Unmarshal(envelope["data"], &result))
	assert.Equal(t, 0, result.Imported)

	w, envelope = srv.request(t, http.MethodGet, "/api/v1/admin/dead-letters", "")
	require.Equal(t, http.StatusOK, w.Code)

	var entries []dlqapp.EntryResponse
	require.NoError(t, json.Unmarshal(envelope["data"], &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "CHANNEL_SYNC_AMAZON", entries[0].OperationType)
	assert.Equal(t, "PENDING", entries[0].Status)
	assert.Contains(t, entries[0].ErrorMessage, "retries exhausted")

	// No orders slipped through
	w, envelope = srv.request(t, http.MethodGet, "/api/v1/orders", "")
	require.Equal(t, http.StatusOK, w.Code)

	var orders []orderapp.OrderListItemResponse
	require.NoError(t, json.Unmarshal(envelope["data"], &orders))
	assert.Empty(t, orders)
}
