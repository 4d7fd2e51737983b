package queries

import (
	"context"
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/domain/model/supplynode"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"
)

// ReadyOrderView is an order in a courier's ready list.
//
// DeliveryDistanceKm is the supply node to requester distance, nil when either
// side has no coordinate. ExpectedEarning applies the settlement formula to that
// distance, so an unknown distance previews the base earning only.
type ReadyOrderView struct {
	OrderView
	SupplyNodeName     string
	SupplyNodeLocation *kernel.Location
	DeliveryDistanceKm *float64
	ExpectedEarning    order.Earnings
}

// GetCourierReadyListQueryHandler builds the ready list, newest orders first.
type GetCourierReadyListQueryHandler struct {
	orders      ports.OrderRepository
	couriers    ports.CourierDirectory
	supplyNodes ports.SupplyNodeDirectory
	earnings    services.EarningsCalculator
}

func NewGetCourierReadyListQueryHandler(
	orders ports.OrderRepository,
	couriers ports.CourierDirectory,
	supplyNodes ports.SupplyNodeDirectory,
	earnings services.EarningsCalculator,
) GetCourierReadyListQueryHandler {
	return GetCourierReadyListQueryHandler{
		orders:      orders,
		couriers:    couriers,
		supplyNodes: supplyNodes,
		earnings:    earnings,
	}
}

func (h GetCourierReadyListQueryHandler) Handle(
	ctx context.Context,
	query GetCourierReadyListQuery,
) ([]ReadyOrderView, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	courierID := query.CourierID()
	if _, err := h.couriers.Get(ctx, courierID); err != nil {
		return nil, err
	}

	orders, err := h.orders.Query(ctx, ports.OrderFilter{
		Statuses:    []order.Status{order.Ready, order.OutForDelivery},
		AvailableTo: &courierID,
	}, ports.NewestFirst)
	if err != nil {
		return nil, err
	}

	nodes := make(map[kernel.UUID]*supplynode.SupplyNode)
	views := make([]ReadyOrderView, 0, len(orders))
	for _, o := range orders {
		node, ok := nodes[o.SupplyNodeID()]
		if !ok {
			node, err = h.supplyNodes.Get(ctx, o.SupplyNodeID())
			if err != nil && !errors.Is(err, errs.ErrObjectNotFound) {
				return nil, err
			}
			nodes[o.SupplyNodeID()] = node
		}
		views = append(views, h.readyView(o, node))
	}
	return views, nil
}

func (h GetCourierReadyListQueryHandler) readyView(o *order.Order, node *supplynode.SupplyNode) ReadyOrderView {
	view := ReadyOrderView{OrderView: newOrderView(o)}

	var origin *kernel.Location
	if node != nil {
		view.SupplyNodeName = node.Name()
		view.SupplyNodeLocation = node.Location()
		origin = node.Location()
	}

	distance := kernel.Distance(origin, o.DeliveryLocation())
	if !kernel.IsUnreachable(distance) {
		view.DeliveryDistanceKm = &distance
	}
	view.ExpectedEarning = h.earnings.Calculate(distance)
	return view
}
