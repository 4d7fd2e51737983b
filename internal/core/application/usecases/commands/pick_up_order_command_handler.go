package commands

import (
	"context"
	"errors"

	"dispatch/internal/core/application/notifications"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"
)

// PickUpOrderCommandHandler sets the pickup flag of an out-for-delivery order.
// Repeated pickups return the current state with AlreadyDone.
type PickUpOrderCommandHandler struct {
	orders    ports.OrderRepository
	publisher notifications.Publisher
	clock     Clock
}

func NewPickUpOrderCommandHandler(
	orders ports.OrderRepository,
	publisher notifications.Publisher,
	clock Clock,
) PickUpOrderCommandHandler {
	return PickUpOrderCommandHandler{
		orders:    orders,
		publisher: publisher,
		clock:     clock,
	}
}

func (h PickUpOrderCommandHandler) Handle(ctx context.Context, cmd PickUpOrderCommand) (OrderResult, error) {
	if err := cmd.Validate(); err != nil {
		return OrderResult{}, err
	}

	current, err := h.orders.Get(ctx, cmd.OrderID())
	if err != nil {
		return OrderResult{}, err
	}
	if !current.IsCourier(cmd.CourierID()) {
		return OrderResult{}, errs.NewForbiddenError(cmd.CourierID(), "order "+current.ID().String(),
			"order is not assigned to this courier")
	}
	if current.Status() == order.Delivered || (current.Status() == order.OutForDelivery && current.PickedUp()) {
		return OrderResult{Order: current, AlreadyDone: true}, nil
	}

	now := h.clock.now()
	updated, err := h.orders.ConditionalUpdate(ctx, current.ID(), order.OutForDelivery, func(o *order.Order) error {
		changed, pickErr := o.PickUp(cmd.CourierID(), now)
		if pickErr != nil {
			return pickErr
		}
		if !changed {
			return errUnchanged
		}
		return nil
	})
	if errors.Is(err, errUnchanged) || errors.Is(err, order.ErrAlreadyDelivered) {
		latest, getErr := h.orders.Get(ctx, current.ID())
		if getErr != nil {
			return OrderResult{}, getErr
		}
		return OrderResult{Order: latest, AlreadyDone: true}, nil
	}
	if err != nil {
		return OrderResult{}, err
	}

	h.publisher.Publish(ctx, notifications.PickedUp, updated)
	return OrderResult{Order: updated}, nil
}
