package commands

import (
	"context"
	"errors"
	"log/slog"

	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"
)

// AssignCourierResult carries the order after the attempt. CourierID is the
// order's courier, set by this attempt or earlier. Assigned reports whether
// this attempt wrote it. Preview prices the trip from the chosen courier to
// the supply node and is nil unless Assigned.
type AssignCourierResult struct {
	Order     *order.Order
	CourierID *kernel.UUID
	Assigned  bool
	Preview   *order.Earnings
}

// AssignCourierCommandHandler soft-assigns a courier to a ready order.
//
// The attempt is best-effort: no eligible courier, a supply node without a
// location, or a lost race all leave the order as it is and are not errors.
// Only infrastructure failures are returned.
//
// Example:
//
//	result, err := handler.Handle(ctx, cmd)
//	if err != nil {
//	    return err
//	}
//	if result.CourierID == nil {
//	    // order stays in the ready list for every courier
//	}
type AssignCourierCommandHandler struct {
	orders      ports.OrderRepository
	couriers    ports.CourierDirectory
	supplyNodes ports.SupplyNodeDirectory
	dispatcher  services.OrderDispatcher
	earnings    services.EarningsCalculator
	logger      *slog.Logger
}

func NewAssignCourierCommandHandler(
	orders ports.OrderRepository,
	couriers ports.CourierDirectory,
	supplyNodes ports.SupplyNodeDirectory,
	earnings services.EarningsCalculator,
	logger *slog.Logger,
) AssignCourierCommandHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return AssignCourierCommandHandler{
		orders:      orders,
		couriers:    couriers,
		supplyNodes: supplyNodes,
		dispatcher:  services.NewOrderDispatcher(),
		earnings:    earnings,
		logger:      logger.With("component", "AssignCourier"),
	}
}

func (h AssignCourierCommandHandler) Handle(ctx context.Context, cmd AssignCourierCommand) (AssignCourierResult, error) {
	if err := cmd.Validate(); err != nil {
		return AssignCourierResult{}, err
	}

	o, err := h.orders.Get(ctx, cmd.OrderID())
	if err != nil {
		return AssignCourierResult{}, err
	}

	return h.assign(ctx, o)
}

func (h AssignCourierCommandHandler) assign(ctx context.Context, o *order.Order) (AssignCourierResult, error) {
	result := AssignCourierResult{Order: o, CourierID: o.Courier()}
	if o.Status() != order.Ready || o.Courier() != nil {
		return result, nil
	}

	node, err := h.supplyNodes.Get(ctx, o.SupplyNodeID())
	if err != nil {
		return result, err
	}
	if !node.HasLocation() {
		h.logger.InfoContext(ctx, "assignment skipped: supply node has no location",
			"order_id", o.ID().String(),
			"supply_node_id", node.ID().String(),
		)
		return result, nil
	}

	candidates, err := h.couriers.FindOnlineWithLocation(ctx)
	if err != nil {
		return result, err
	}

	var chosen *courier.Courier
	updated, err := h.orders.ConditionalUpdate(ctx, o.ID(), order.Ready, func(current *order.Order) error {
		c, dispatchErr := h.dispatcher.Dispatch(current, node, candidates)
		chosen = c
		return dispatchErr
	})
	switch {
	case errors.Is(err, services.ErrCourierNotFound):
		h.logger.InfoContext(ctx, "no courier available", "order_id", o.ID().String(), "candidates", len(candidates))
		return result, nil
	case errors.Is(err, errs.ErrStateConflict):
		h.logger.WarnContext(ctx, "assignment lost a race", "order_id", o.ID().String(), "error", err)
		return result, nil
	case err != nil:
		return result, err
	}

	result = AssignCourierResult{Order: updated, CourierID: updated.Courier()}
	if chosen != nil {
		preview := h.earnings.Between(chosen.Location(), node.Location())
		result.Assigned = true
		result.Preview = &preview
		h.logger.InfoContext(ctx, "courier assigned",
			"order_id", updated.ID().String(),
			"courier_id", chosen.ID().String(),
			"distance_km", preview.DistanceKm,
		)
	}
	return result, nil
}
