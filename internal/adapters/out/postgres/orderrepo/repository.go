package orderrepo

import (
	"context"
	"errors"
	"fmt"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"

	"gorm.io/gorm"
)

const service = "postgres"

// GormOrderRepository implements ports.OrderRepository using GORM.
//
// ConditionalUpdate issues a single UPDATE guarded by id, status and version,
// so two writers racing on the same order cannot both succeed.
type GormOrderRepository struct {
	db *gorm.DB
}

var _ ports.OrderRepository = (*GormOrderRepository)(nil)

func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// Add inserts a new order. A duplicate id is a StateConflictError; the
// connection must be opened with TranslateError enabled.
func (r *GormOrderRepository) Add(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate.Snapshot())
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return errs.NewStateConflictErrorWithCause("order", aggregate.ID(), "order already exists", err)
		}
		return errs.NewExternalServiceError(service, err)
	}
	return nil
}

func (r *GormOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto OrderDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("order", id.String())
		}
		return nil, errs.NewExternalServiceError(service, err)
	}

	return toDomain(dto)
}

func (r *GormOrderRepository) ConditionalUpdate(
	ctx context.Context,
	id kernel.UUID,
	expectedStatus order.Status,
	mutate ports.OrderMutator,
) (*order.Order, error) {
	current, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status() != expectedStatus {
		return nil, errs.NewStateConflictError("order", id,
			"expected "+expectedStatus.String()+", found "+current.Status().String())
	}

	priorVersion := current.Version()
	if err := mutate(current); err != nil {
		return nil, err
	}

	next := current.Snapshot()
	next.Version = priorVersion + 1
	dto := fromDomain(next)

	result := r.db.WithContext(ctx).
		Model(&OrderDTO{}).
		Where("id = ? AND status = ? AND version = ?", dto.ID, expectedStatus.String(), priorVersion).
		Select("*").
		Omit("id").
		Updates(&dto)
	if result.Error != nil {
		return nil, errs.NewExternalServiceError(service, result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, errs.NewStateConflictError("order", id, "order was modified concurrently")
	}

	return order.Restore(next)
}

func (r *GormOrderRepository) Query(
	ctx context.Context,
	filter ports.OrderFilter,
	sort ports.OrderSort,
) ([]*order.Order, error) {
	tx := r.db.WithContext(ctx).Model(&OrderDTO{})

	if filter.RequesterID != nil {
		tx = tx.Where("requester_id = ?", filter.RequesterID.Bytes())
	}
	if filter.SupplyNodeID != nil {
		tx = tx.Where("supply_node_id = ?", filter.SupplyNodeID.Bytes())
	}
	if filter.CourierID != nil {
		tx = tx.Where("courier_id = ?", filter.CourierID.Bytes())
	}
	if len(filter.Statuses) > 0 {
		names := make([]string, 0, len(filter.Statuses))
		for _, s := range filter.Statuses {
			names = append(names, s.String())
		}
		tx = tx.Where("status IN ?", names)
	}
	if filter.Unassigned {
		tx = tx.Where("courier_id IS NULL")
	}
	if filter.AvailableTo != nil {
		tx = tx.Where("(courier_id IS NULL OR courier_id = ?)", filter.AvailableTo.Bytes())
	}
	if filter.AcceptedBefore != nil {
		tx = tx.Where("accepted_at < ?", *filter.AcceptedBefore)
	}
	if filter.DeliveredSince != nil {
		tx = tx.Where("delivered_at >= ?", *filter.DeliveredSince)
	}
	if filter.Limit > 0 {
		tx = tx.Limit(filter.Limit)
	}

	var dtos []OrderDTO
	if err := tx.Order(orderClause(sort)).Find(&dtos).Error; err != nil {
		return nil, errs.NewExternalServiceError(service, err)
	}

	orders := make([]*order.Order, 0, len(dtos))
	for _, dto := range dtos {
		o, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, nil
}

// orderClause sorts missing timestamps as the earliest values and breaks ties
// by id in the same direction.
func orderClause(sort ports.OrderSort) string {
	column := "ordered_at"
	switch sort.Field {
	case ports.SortByReadyAt:
		column = "ready_at"
	case ports.SortByAcceptedAt:
		column = "accepted_at"
	case ports.SortByDeliveredAt:
		column = "delivered_at"
	case ports.SortByOrderedAt:
	}

	if sort.Descending {
		return fmt.Sprintf("%s DESC NULLS LAST, id DESC", column)
	}
	return fmt.Sprintf("%s ASC NULLS FIRST, id ASC", column)
}
