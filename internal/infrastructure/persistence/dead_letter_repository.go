package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/omnicrm/backend/internal/domain/deadletter"
	"github.com/omnicrm/backend/internal/domain/shared"
)

// GormDeadLetterRepository implements deadletter.Repository using GORM
type GormDeadLetterRepository struct {
	db *gorm.DB
}

// NewGormDeadLetterRepository creates a new GormDeadLetterRepository
func NewGormDeadLetterRepository(db *gorm.DB) *GormDeadLetterRepository {
	return &GormDeadLetterRepository{db: db}
}

// Save creates or updates a dead letter entry
func (r *GormDeadLetterRepository) Save(ctx context.Context, entry *deadletter.Entry) error {
	return r.db.WithContext(ctx).Save(entry).Error
}

// FindByID finds a dead letter entry by its ID
func (r *GormDeadLetterRepository) FindByID(ctx context.Context, id uuid.UUID) (*deadletter.Entry, error) {
	var entry deadletter.Entry
	if err := r.db.WithContext(ctx).First(&entry, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &entry, nil
}

// FindByStatus finds dead letter entries in a status, newest first
func (r *GormDeadLetterRepository) FindByStatus(ctx context.Context, status deadletter.Status, page, pageSize int) ([]deadletter.Entry, int64, error) {
	query := r.db.WithContext(ctx).Model(&deadletter.Entry{}).Where("status = ?", status)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var entries []deadletter.Entry
	offset := 0
	if page > 0 && pageSize > 0 {
		offset = (page - 1) * pageSize
	}
	if err := query.
		Order("created_at DESC").
		Offset(offset).Limit(pageSize).
		Find(&entries).Error; err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

// CountByStatus counts dead letter entries in a status
func (r *GormDeadLetterRepository) CountByStatus(ctx context.Context, status deadletter.Status) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&deadletter.Entry{}).
		Where("status = ?", status).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Ensure GormDeadLetterRepository implements deadletter.Repository
var _ deadletter.Repository = (*GormDeadLetterRepository)(nil)
