package order

import (
	"context"

	"github.com/google/uuid"

	"github.com/omnicrm/backend/internal/domain/shared"
)

// Repository defines persistence operations for the Order aggregate.
// Save persists the whole order graph (order, items, history) atomically.
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Order, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	ExistsByExternalOrderID(ctx context.Context, externalOrderID string) (bool, error)
	Save(ctx context.Context, o *Order) error
	CountByStatus(ctx context.Context) (map[OrderStatus]int64, error)
	CountByChannel(ctx context.Context) (map[Channel]int64, error)
}
