package queries

import (
	"context"
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"
)

// RequesterOrderView adds the courier's arrival estimate to an order.
// EtaMinutes is set only while the order is out for delivery and both the
// courier and the delivery coordinate are known.
type RequesterOrderView struct {
	OrderView
	EtaMinutes *int
}

type GetRequesterOrdersQueryHandler struct {
	orders   ports.OrderRepository
	couriers ports.CourierDirectory
	eta      services.ETAEstimator
}

func NewGetRequesterOrdersQueryHandler(
	orders ports.OrderRepository,
	couriers ports.CourierDirectory,
	eta services.ETAEstimator,
) GetRequesterOrdersQueryHandler {
	return GetRequesterOrdersQueryHandler{orders: orders, couriers: couriers, eta: eta}
}

func (h GetRequesterOrdersQueryHandler) Handle(
	ctx context.Context,
	query GetRequesterOrdersQuery,
) ([]RequesterOrderView, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	requesterID := query.RequesterID()
	orders, err := h.orders.Query(ctx, ports.OrderFilter{RequesterID: &requesterID}, ports.NewestFirst)
	if err != nil {
		return nil, err
	}

	views := make([]RequesterOrderView, 0, len(orders))
	for _, o := range orders {
		view := RequesterOrderView{OrderView: newOrderView(o)}
		eta, etaErr := h.estimate(ctx, o)
		if etaErr != nil {
			return nil, etaErr
		}
		view.EtaMinutes = eta
		views = append(views, view)
	}
	return views, nil
}

func (h GetRequesterOrdersQueryHandler) estimate(ctx context.Context, o *order.Order) (*int, error) {
	if o.Status() != order.OutForDelivery || o.Courier() == nil || o.DeliveryLocation() == nil {
		return nil, nil
	}

	c, err := h.couriers.Get(ctx, *o.Courier())
	if errors.Is(err, errs.ErrObjectNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	minutes, ok := h.eta.Minutes(kernel.Distance(c.Location(), o.DeliveryLocation()))
	if !ok {
		return nil, nil
	}
	return &minutes, nil
}
