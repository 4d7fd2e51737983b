package commands

import (
	"context"
	"errors"

	"dispatch/internal/core/application/notifications"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"
)

// ChangeOrderStatusCommandHandler applies supply-node status changes.
//
// Marking an order ready triggers a best-effort courier assignment before the
// status event goes out, so observers see the courier in the same event.
// Changes on a delivered order report AlreadyDone.
type ChangeOrderStatusCommandHandler struct {
	orders    ports.OrderRepository
	assigner  AssignCourierCommandHandler
	publisher notifications.Publisher
	clock     Clock
}

func NewChangeOrderStatusCommandHandler(
	orders ports.OrderRepository,
	assigner AssignCourierCommandHandler,
	publisher notifications.Publisher,
	clock Clock,
) ChangeOrderStatusCommandHandler {
	return ChangeOrderStatusCommandHandler{
		orders:    orders,
		assigner:  assigner,
		publisher: publisher,
		clock:     clock,
	}
}

func (h ChangeOrderStatusCommandHandler) Handle(ctx context.Context, cmd ChangeOrderStatusCommand) (OrderResult, error) {
	if err := cmd.Validate(); err != nil {
		return OrderResult{}, err
	}

	current, err := h.orders.Get(ctx, cmd.OrderID())
	if err != nil {
		return OrderResult{}, err
	}
	if !current.SupplyNodeID().IsEqual(cmd.SupplyNodeID()) {
		return OrderResult{}, errs.NewForbiddenError(cmd.SupplyNodeID(), "order "+current.ID().String(),
			"order belongs to another supply node")
	}
	if current.Status() == order.Delivered {
		return OrderResult{Order: current, AlreadyDone: true}, nil
	}

	now := h.clock.now()
	updated, err := h.orders.ConditionalUpdate(ctx, current.ID(), current.Status(), func(o *order.Order) error {
		return o.ChangeStatus(cmd.Target(), now)
	})
	if errors.Is(err, order.ErrAlreadyDelivered) {
		return OrderResult{Order: current, AlreadyDone: true}, nil
	}
	if err != nil {
		return OrderResult{}, err
	}

	result := OrderResult{Order: updated}
	switch updated.Status() {
	case order.Ready:
		assigned, assignErr := h.assigner.assign(ctx, updated)
		if assignErr != nil {
			h.assigner.logger.ErrorContext(ctx, "assignment failed after ready",
				"order_id", updated.ID().String(),
				"error", assignErr,
			)
		} else {
			result.Order = assigned.Order
			result.Preview = assigned.Preview
		}
		h.publisher.Publish(ctx, notifications.MarkedReady, result.Order)
	case order.Rejected:
		h.publisher.Publish(ctx, notifications.Rejected, updated)
	}

	return result, nil
}
