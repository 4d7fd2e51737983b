package queries

import (
	"context"

	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/ports"

	"github.com/shopspring/decimal"
)

// EarningsSummary totals settled earnings. Today starts at local midnight;
// the week window starts at midnight seven days ago.
type EarningsSummary struct {
	Today          decimal.Decimal
	LastSevenDays  decimal.Decimal
	Total          decimal.Decimal
	CompletedCount int
}

type GetCourierEarningsQueryHandler struct {
	orders ports.OrderRepository
	clock  Clock
}

func NewGetCourierEarningsQueryHandler(orders ports.OrderRepository, clock Clock) GetCourierEarningsQueryHandler {
	return GetCourierEarningsQueryHandler{orders: orders, clock: clock}
}

func (h GetCourierEarningsQueryHandler) Handle(ctx context.Context, query GetCourierEarningsQuery) (EarningsSummary, error) {
	if err := query.Validate(); err != nil {
		return EarningsSummary{}, err
	}

	courierID := query.CourierID()
	delivered, err := h.orders.Query(ctx, ports.OrderFilter{
		CourierID: &courierID,
		Statuses:  []order.Status{order.Delivered},
	}, ports.OrderSort{Field: ports.SortByDeliveredAt, Descending: true})
	if err != nil {
		return EarningsSummary{}, err
	}

	today := startOfDay(h.clock.now())
	weekAgo := today.AddDate(0, 0, -7)

	summary := EarningsSummary{CompletedCount: len(delivered)}
	for _, o := range delivered {
		settlement := o.Settlement()
		if settlement == nil || o.DeliveredAt() == nil {
			continue
		}
		earned := settlement.TotalEarning
		summary.Total = summary.Total.Add(earned)
		if !o.DeliveredAt().Before(weekAgo) {
			summary.LastSevenDays = summary.LastSevenDays.Add(earned)
		}
		if !o.DeliveredAt().Before(today) {
			summary.Today = summary.Today.Add(earned)
		}
	}
	return summary, nil
}

type GetCourierDeliveryHistoryQueryHandler struct {
	orders ports.OrderRepository
}

func NewGetCourierDeliveryHistoryQueryHandler(orders ports.OrderRepository) GetCourierDeliveryHistoryQueryHandler {
	return GetCourierDeliveryHistoryQueryHandler{orders: orders}
}

func (h GetCourierDeliveryHistoryQueryHandler) Handle(
	ctx context.Context,
	query GetCourierDeliveryHistoryQuery,
) ([]OrderView, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	courierID := query.CourierID()
	delivered, err := h.orders.Query(ctx, ports.OrderFilter{
		CourierID: &courierID,
		Statuses:  []order.Status{order.Delivered},
		Limit:     query.Limit(),
	}, ports.OrderSort{Field: ports.SortByDeliveredAt, Descending: true})
	if err != nil {
		return nil, err
	}
	return newOrderViews(delivered), nil
}
