// Package channel orchestrates order synchronization from sales channels.
package channel

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	appdeadletter "github.com/omnicrm/backend/internal/application/deadletter"
	"github.com/omnicrm/backend/internal/domain/channel"
	"github.com/omnicrm/backend/internal/domain/order"
	"github.com/omnicrm/backend/internal/domain/shared"
	"github.com/omnicrm/backend/internal/infrastructure/telemetry"
)

// SyncService pulls orders from every registered sales channel and reconciles
// them into the order store. Channel failures are contained: a channel that
// cannot be synced is dead-lettered and contributes zero orders, it never
// fails the run or the other channels.
type SyncService struct {
	adapters   []channel.Adapter
	orderRepo  order.Repository
	deadLetter *appdeadletter.Service
	metrics    *telemetry.SyncMetrics
	logger     *zap.Logger
}

// NewSyncService creates a new SyncService. Adapters are expected to already
// carry their resilience decoration.
func NewSyncService(
	adapters []channel.Adapter,
	orderRepo order.Repository,
	deadLetter *appdeadletter.Service,
	metrics *telemetry.SyncMetrics,
	logger *zap.Logger,
) *SyncService {
	return &SyncService{
		adapters:   adapters,
		orderRepo:  orderRepo,
		deadLetter: deadLetter,
		metrics:    metrics,
		logger:     logger,
	}
}

// SyncResult summarizes one sync run
type SyncResult struct {
	Imported map[string]int `json:"imported"`
	Total    int            `json:"total"`
	Duration time.Duration  `json:"-"`
}

// SyncAllChannels syncs every channel concurrently and reports how many
// orders each one contributed
func (s *SyncService) SyncAllChannels(ctx context.Context) SyncResult {
	start := time.Now()
	result := SyncResult{Imported: make(map[string]int, len(s.adapters))}

	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, adapter := range s.adapters {
		wg.Add(1)
		go func(a channel.Adapter) {
			defer wg.Done()
			imported := s.SyncChannel(ctx, a)

			mu.Lock()
			result.Imported[a.Name()] = imported
			result.Total += imported
			mu.Unlock()
		}(adapter)
	}
	wg.Wait()

	result.Duration = time.Since(start)
	s.logger.Info("channel sync run complete",
		zap.Int("total_imported", result.Total),
		zap.Duration("duration", result.Duration))
	return result
}

// SyncChannel syncs a single channel. The returned count is how many new
// orders were imported; already-imported orders are skipped silently. Any
// failure is recorded as a dead letter and yields zero.
func (s *SyncService) SyncChannel(ctx context.Context, adapter channel.Adapter) int {
	start := time.Now()
	log := s.logger.With(zap.String("channel", adapter.Name()))
	defer func() {
		s.metrics.RecordSyncDuration(ctx, adapter.Name(), time.Since(start))
	}()

	channelOrders, err := adapter.FetchOrders(ctx)
	if err != nil {
		// a cancelled run is not a channel failure, it just stops
		if errors.Is(err, context.Canceled) {
			log.Info("channel sync cancelled")
			return 0
		}
		s.recordFailure(ctx, adapter.Name(), err)
		return 0
	}

	imported := 0
	for i := range channelOrders {
		created, err := s.importOrder(ctx, &channelOrders[i])
		if err != nil {
			if errors.Is(err, context.Canceled) {
				log.Info("channel sync cancelled")
				return imported
			}
			s.recordFailure(ctx, adapter.Name(), err)
			return 0
		}
		if created {
			imported++
		}
	}

	s.metrics.RecordSyncSuccess(ctx, adapter.Name(), int64(imported))
	log.Info("channel synced",
		zap.Int("fetched", len(channelOrders)),
		zap.Int("imported", imported))
	return imported
}

// SyncChannelByName syncs the channel with the given name
func (s *SyncService) SyncChannelByName(ctx context.Context, name string) (int, error) {
	ch, err := order.ParseChannel(name)
	if err != nil {
		return 0, err
	}
	for _, adapter := range s.adapters {
		if adapter.Name() == ch.String() {
			return s.SyncChannel(ctx, adapter), nil
		}
	}
	return 0, shared.NewDomainError("CHANNEL_NOT_REGISTERED",
		fmt.Sprintf("No adapter registered for channel %s", ch))
}

// ChannelHealth reports the availability of every registered channel
func (s *SyncService) ChannelHealth(ctx context.Context) map[string]bool {
	health := make(map[string]bool, len(s.adapters))
	for _, adapter := range s.adapters {
		health[adapter.Name()] = adapter.IsAvailable(ctx)
	}
	return health
}

// importOrder maps one channel order into the aggregate and persists it.
// Returns false with no error when the order was imported before.
func (s *SyncService) importOrder(ctx context.Context, co *channel.ChannelOrder) (bool, error) {
	exists, err := s.orderRepo.ExistsByExternalOrderID(ctx, co.ExternalOrderID)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	ch, err := order.ParseChannel(co.Channel)
	if err != nil {
		return false, err
	}

	o, err := order.NewOrder(co.ExternalOrderID, ch)
	if err != nil {
		return false, err
	}
	o.CustomerName = co.CustomerName
	o.CustomerEmail = co.CustomerEmail
	o.CustomerPhone = co.CustomerPhone
	o.ShippingAddress = co.ShippingAddress
	o.Currency = co.Currency
	o.Metadata = co.Metadata
	o.OrderedAt = co.OrderedAt

	for _, item := range co.Items {
		if err := o.AddItem(item.ProductName, item.SKU, item.Quantity, item.UnitPrice, item.TotalPrice); err != nil {
			return false, err
		}
	}
	o.RecalculateTotal()
	o.RecordImport("Imported from " + ch.String())

	if err := s.orderRepo.Save(ctx, o); err != nil {
		// another sync run won the unique-index race
		if errors.Is(err, shared.ErrAlreadyExists) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *SyncService) recordFailure(ctx context.Context, channelName string, cause error) {
	s.deadLetter.Record(ctx,
		"CHANNEL_SYNC_"+channelName,
		shared.JSONMap{
			"channel": channelName,
			"error":   cause.Error(),
		},
		cause)
	s.metrics.RecordSyncFailure(ctx, channelName)
	s.logger.Error("channel sync failed",
		zap.String("channel", channelName),
		zap.Error(cause))
}
