// Package deadletter records permanently failed operations for later review.
package deadletter

import (
	"context"
	"errors"
	"runtime/debug"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/omnicrm/backend/internal/domain/deadletter"
	"github.com/omnicrm/backend/internal/domain/shared"
)

// Service handles dead letter queue operations
type Service struct {
	repo   deadletter.Repository
	logger *zap.Logger
}

// NewService creates a new dead letter Service
func NewService(repo deadletter.Repository, logger *zap.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Record captures a failed operation as a pending dead letter entry. The
// current stack is attached so the failure can be diagnosed later. Recording
// must never fail the caller: persistence errors are logged and swallowed.
func (s *Service) Record(ctx context.Context, operationType string, payload shared.JSONMap, cause error) *deadletter.Entry {
	entry := deadletter.NewEntry(operationType, payload, cause, string(debug.Stack()))

	if err := s.repo.Save(ctx, entry); err != nil {
		s.logger.Error("failed to persist dead letter entry",
			zap.String("operation_type", operationType),
			zap.Error(err))
		return nil
	}

	s.logger.Warn("operation dead-lettered",
		zap.String("operation_type", operationType),
		zap.String("entry_id", entry.ID.String()),
		zap.NamedError("cause", cause))
	return entry
}

// ListByStatus returns dead letter entries in a status, newest first
func (s *Service) ListByStatus(ctx context.Context, status deadletter.Status, page, pageSize int) (shared.Paginated[EntryResponse], error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}

	entries, total, err := s.repo.FindByStatus(ctx, status, page, pageSize)
	if err != nil {
		return shared.Paginated[EntryResponse]{}, err
	}

	items := make([]EntryResponse, len(entries))
	for i := range entries {
		items[i] = ToEntryResponse(&entries[i])
	}
	return shared.NewPaginated(items, total, page, pageSize), nil
}

// Resolve marks an entry as manually handled. Resolving is idempotent:
// a terminal or already-deleted entry is a no-op, never an error.
func (s *Service) Resolve(ctx context.Context, id uuid.UUID) (*EntryResponse, error) {
	entry, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	entry.MarkResolved()
	if err := s.repo.Save(ctx, entry); err != nil {
		return nil, err
	}

	resp := ToEntryResponse(entry)
	return &resp, nil
}

// RegisterRetry bumps an entry's retry count, failing it permanently once the
// retry budget is spent
func (s *Service) RegisterRetry(ctx context.Context, id uuid.UUID) (*EntryResponse, error) {
	entry, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if entry.Status == deadletter.StatusResolved || entry.Status == deadletter.StatusFailed {
		return nil, shared.NewDomainError("INVALID_STATE", "Entry is already terminal")
	}

	entry.RegisterRetry()
	if err := s.repo.Save(ctx, entry); err != nil {
		return nil, err
	}

	resp := ToEntryResponse(entry)
	return &resp, nil
}

// PendingCount returns how many entries still await handling
func (s *Service) PendingCount(ctx context.Context) (int64, error) {
	return s.repo.CountByStatus(ctx, deadletter.StatusPending)
}
