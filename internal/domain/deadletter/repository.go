package deadletter

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines persistence operations for dead-letter entries
type Repository interface {
	Save(ctx context.Context, entry *Entry) error
	FindByID(ctx context.Context, id uuid.UUID) (*Entry, error)
	// FindByStatus returns entries with the given status, newest first
	FindByStatus(ctx context.Context, status Status, page, pageSize int) ([]Entry, int64, error)
	CountByStatus(ctx context.Context, status Status) (int64, error)
}
