package commands

import (
	"context"

	"dispatch/internal/core/application/notifications"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"
)

// AcceptDeliveryCommandHandler moves a ready order to out-for-delivery.
//
// A courier may accept an unassigned order or one soft-assigned to itself.
// Accepting an order soft-assigned to or already accepted by someone else is
// forbidden. Losing a race with another courier is a state conflict.
type AcceptDeliveryCommandHandler struct {
	orders    ports.OrderRepository
	couriers  ports.CourierDirectory
	publisher notifications.Publisher
	clock     Clock
}

func NewAcceptDeliveryCommandHandler(
	orders ports.OrderRepository,
	couriers ports.CourierDirectory,
	publisher notifications.Publisher,
	clock Clock,
) AcceptDeliveryCommandHandler {
	return AcceptDeliveryCommandHandler{
		orders:    orders,
		couriers:  couriers,
		publisher: publisher,
		clock:     clock,
	}
}

func (h AcceptDeliveryCommandHandler) Handle(ctx context.Context, cmd AcceptDeliveryCommand) (OrderResult, error) {
	if err := cmd.Validate(); err != nil {
		return OrderResult{}, err
	}

	if _, err := h.couriers.Get(ctx, cmd.CourierID()); err != nil {
		return OrderResult{}, err
	}

	current, err := h.orders.Get(ctx, cmd.OrderID())
	if err != nil {
		return OrderResult{}, err
	}
	switch {
	case current.Status() == order.Delivered:
		return OrderResult{Order: current, AlreadyDone: true}, nil
	case current.Status() == order.OutForDelivery && current.IsCourier(cmd.CourierID()):
		return OrderResult{Order: current, AlreadyDone: true}, nil
	case current.Status() == order.OutForDelivery:
		return OrderResult{}, errs.NewForbiddenError(cmd.CourierID(), "order "+current.ID().String(),
			"order was accepted by another courier")
	}

	now := h.clock.now()
	updated, err := h.orders.ConditionalUpdate(ctx, current.ID(), order.Ready, func(o *order.Order) error {
		return o.Accept(cmd.CourierID(), now)
	})
	if err != nil {
		return OrderResult{}, err
	}

	h.publisher.Publish(ctx, notifications.Accepted, updated)
	return OrderResult{Order: updated}, nil
}
