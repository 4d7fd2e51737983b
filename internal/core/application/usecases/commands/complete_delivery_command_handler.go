package commands

import (
	"context"
	"errors"

	"dispatch/internal/core/application/notifications"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"
)

// CompleteDeliveryCommandHandler delivers an order and freezes its settlement.
//
// Earnings use the distance from the supply node to the delivery coordinate
// captured at placement, never the courier's position. A repeated delivery by
// the same courier returns the settled order with AlreadyDone.
type CompleteDeliveryCommandHandler struct {
	orders      ports.OrderRepository
	supplyNodes ports.SupplyNodeDirectory
	earnings    services.EarningsCalculator
	publisher   notifications.Publisher
	clock       Clock
}

func NewCompleteDeliveryCommandHandler(
	orders ports.OrderRepository,
	supplyNodes ports.SupplyNodeDirectory,
	earnings services.EarningsCalculator,
	publisher notifications.Publisher,
	clock Clock,
) CompleteDeliveryCommandHandler {
	return CompleteDeliveryCommandHandler{
		orders:      orders,
		supplyNodes: supplyNodes,
		earnings:    earnings,
		publisher:   publisher,
		clock:       clock,
	}
}

func (h CompleteDeliveryCommandHandler) Handle(ctx context.Context, cmd CompleteDeliveryCommand) (OrderResult, error) {
	if err := cmd.Validate(); err != nil {
		return OrderResult{}, err
	}

	current, err := h.orders.Get(ctx, cmd.OrderID())
	if err != nil {
		return OrderResult{}, err
	}
	if result, done, doneErr := h.alreadyDelivered(current, cmd); done {
		return result, doneErr
	}

	node, err := h.supplyNodes.Get(ctx, current.SupplyNodeID())
	if err != nil {
		return OrderResult{}, err
	}
	settlement := h.earnings.Between(node.Location(), current.DeliveryLocation())

	now := h.clock.now()
	updated, err := h.orders.ConditionalUpdate(ctx, current.ID(), order.OutForDelivery, func(o *order.Order) error {
		return o.Deliver(cmd.CourierID(), now, settlement)
	})
	if errors.Is(err, order.ErrAlreadyDelivered) || errors.Is(err, errs.ErrStateConflict) {
		latest, getErr := h.orders.Get(ctx, current.ID())
		if getErr != nil {
			return OrderResult{}, getErr
		}
		if result, done, doneErr := h.alreadyDelivered(latest, cmd); done {
			return result, doneErr
		}
		return OrderResult{}, err
	}
	if err != nil {
		return OrderResult{}, err
	}

	h.publisher.Publish(ctx, notifications.Delivered, updated)
	return OrderResult{Order: updated}, nil
}

func (h CompleteDeliveryCommandHandler) alreadyDelivered(o *order.Order, cmd CompleteDeliveryCommand) (OrderResult, bool, error) {
	if o.Status() != order.Delivered {
		return OrderResult{}, false, nil
	}
	if !o.IsCourier(cmd.CourierID()) {
		return OrderResult{}, true, errs.NewForbiddenError(cmd.CourierID(), "order "+o.ID().String(),
			"order was delivered by another courier")
	}
	return OrderResult{Order: o, AlreadyDone: true}, true, nil
}
