package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/omnicrm/backend/internal/domain/order"
	"github.com/omnicrm/backend/internal/domain/shared"
)

// GormOrderRepository implements order.Repository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// FindByID finds an order by its ID with items and status history loaded
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	var o order.Order
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("StatusHistory", func(db *gorm.DB) *gorm.DB {
			return db.Order("changed_at ASC")
		}).
		First(&o, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

// FindAll finds orders with filtering
func (r *GormOrderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]order.Order, error) {
	var orders []order.Order
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&order.Order{}).Preload("Items"),
		filter,
	)

	if err := query.Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// Count counts orders matching the filter
func (r *GormOrderRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&order.Order{}), filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ExistsByExternalOrderID checks whether a channel order was already imported
func (r *GormOrderRepository) ExistsByExternalOrderID(ctx context.Context, externalOrderID string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&order.Order{}).
		Where("external_order_id = ?", externalOrderID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates or updates an order together with its items and status history.
// A unique-index violation on external_order_id surfaces as
// shared.ErrAlreadyExists so callers can treat re-imports as no-ops.
func (r *GormOrderRepository) Save(ctx context.Context, o *order.Order) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Items", "StatusHistory").Save(o).Error; err != nil {
			return err
		}

		for i := range o.Items {
			o.Items[i].OrderID = o.ID
			if err := tx.Save(&o.Items[i]).Error; err != nil {
				return err
			}
		}

		for i := range o.StatusHistory {
			o.StatusHistory[i].OrderID = o.ID
			if err := tx.Save(&o.StatusHistory[i]).Error; err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// CountByStatus counts orders per status
func (r *GormOrderRepository) CountByStatus(ctx context.Context) (map[order.OrderStatus]int64, error) {
	type row struct {
		Status order.OrderStatus
		Count  int64
	}
	var rows []row
	if err := r.db.WithContext(ctx).
		Model(&order.Order{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[order.OrderStatus]int64, len(rows))
	for _, rw := range rows {
		counts[rw.Status] = rw.Count
	}
	return counts, nil
}

// CountByChannel counts orders per sales channel
func (r *GormOrderRepository) CountByChannel(ctx context.Context) (map[order.Channel]int64, error) {
	type row struct {
		Channel order.Channel
		Count   int64
	}
	var rows []row
	if err := r.db.WithContext(ctx).
		Model(&order.Order{}).
		Select("channel, count(*) as count").
		Group("channel").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[order.Channel]int64, len(rows))
	for _, rw := range rows {
		counts[rw.Channel] = rw.Count
	}
	return counts, nil
}

func (r *GormOrderRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if filter.OrderBy != "" {
		orderDir := "ASC"
		if strings.ToLower(filter.OrderDir) == "desc" {
			orderDir = "DESC"
		}
		query = query.Order(filter.OrderBy + " " + orderDir)
	} else {
		query = query.Order("ordered_at DESC")
	}

	return query
}

func (r *GormOrderRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for key, value := range filter.Filters {
		switch key {
		case "channel":
			query = query.Where("channel = ?", value)
		case "status":
			query = query.Where("status = ?", value)
		case "customer_email":
			query = query.Where("customer_email = ?", value)
		case "ordered_after":
			if t, ok := value.(time.Time); ok {
				query = query.Where("ordered_at >= ?", t)
			}
		case "ordered_before":
			if t, ok := value.(time.Time); ok {
				query = query.Where("ordered_at <= ?", t)
			}
		}
	}
	return query
}

// Ensure GormOrderRepository implements order.Repository
var _ order.Repository = (*GormOrderRepository)(nil)
