// Package order exposes order query and lifecycle operations.
package order

import (
	"context"

	"github.com/google/uuid"

	"github.com/omnicrm/backend/internal/domain/order"
	"github.com/omnicrm/backend/internal/domain/shared"
)

// Service handles order business operations
type Service struct {
	repo order.Repository
}

// NewService creates a new order Service
func NewService(repo order.Repository) *Service {
	return &Service{repo: repo}
}

// GetByID retrieves an order with its items and status history
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*OrderResponse, error) {
	o, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToOrderResponse(o)
	return &resp, nil
}

// List retrieves orders with filtering and pagination
func (s *Service) List(ctx context.Context, filter ListFilter) (shared.Paginated[OrderListItemResponse], error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.PageSize > 100 {
		filter.PageSize = 100
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Filters:  make(map[string]interface{}),
	}
	if filter.Channel != "" {
		ch, err := order.ParseChannel(filter.Channel)
		if err != nil {
			return shared.Paginated[OrderListItemResponse]{}, err
		}
		domainFilter.Filters["channel"] = ch
	}
	if filter.Status != "" {
		st, err := order.ParseOrderStatus(filter.Status)
		if err != nil {
			return shared.Paginated[OrderListItemResponse]{}, err
		}
		domainFilter.Filters["status"] = st
	}

	orders, err := s.repo.FindAll(ctx, domainFilter)
	if err != nil {
		return shared.Paginated[OrderListItemResponse]{}, err
	}
	total, err := s.repo.Count(ctx, domainFilter)
	if err != nil {
		return shared.Paginated[OrderListItemResponse]{}, err
	}

	items := make([]OrderListItemResponse, len(orders))
	for i := range orders {
		items[i] = ToOrderListItemResponse(&orders[i])
	}
	return shared.NewPaginated(items, total, filter.Page, filter.PageSize), nil
}

// UpdateStatus transitions an order to a new status, appending a history
// entry. Illegal transitions are rejected without touching the order.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, req UpdateStatusRequest) (*OrderResponse, error) {
	target, err := order.ParseOrderStatus(req.Status)
	if err != nil {
		return nil, err
	}

	o, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := o.ChangeStatus(target, req.ChangedBy, req.Notes); err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, o); err != nil {
		return nil, err
	}

	resp := ToOrderResponse(o)
	return &resp, nil
}

// Stats aggregates order counts by status and by channel
func (s *Service) Stats(ctx context.Context) (*StatsResponse, error) {
	byStatus, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	byChannel, err := s.repo.CountByChannel(ctx)
	if err != nil {
		return nil, err
	}

	resp := &StatsResponse{
		ByStatus:  make(map[string]int64, len(byStatus)),
		ByChannel: make(map[string]int64, len(byChannel)),
	}
	var total int64
	for st, n := range byStatus {
		resp.ByStatus[st.String()] = n
		total += n
	}
	for ch, n := range byChannel {
		resp.ByChannel[ch.String()] = n
	}
	resp.Total = total
	return resp, nil
}
