package services

import (
	"errors"

	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/domain/model/supplynode"
	"dispatch/internal/pkg/errs"
)

var (
	// ErrCourierNotFound is returned when no dispatchable courier is within reach.
	ErrCourierNotFound = errors.New("courier not found")

	// ErrSupplyNodeUnreachable is returned when the supply node has no coordinate,
	// which makes every courier distance unreachable.
	ErrSupplyNodeUnreachable = errors.New("supply node has no location")
)

// OrderDispatcher is a domain service that soft-assigns the nearest online
// courier to a ready order.
//
// Selection rules:
//   - Only online couriers with a known position are candidates
//   - Distance is measured from the supply node to the courier
//   - Unreachable distances disqualify a courier
//   - Equidistant couriers are ordered by lowest courier ID
//
// The assignment is advisory. The courier's accept is the binding commitment,
// so callers write it through a conditional update and tolerate losing a race.
//
// Example usage:
//
//	dispatcher := services.NewOrderDispatcher()
//	best, err := dispatcher.Dispatch(o, node, couriers)
//	if errors.Is(err, services.ErrCourierNotFound) {
//	    // order stays ready and unassigned
//	}
type OrderDispatcher struct{}

func NewOrderDispatcher() OrderDispatcher {
	return OrderDispatcher{}
}

// Dispatch picks the nearest courier and records it on the order.
//
// The order must be ready and unassigned. Returns ErrSupplyNodeUnreachable or
// ErrCourierNotFound when no courier qualifies; the order is left unchanged.
func (d OrderDispatcher) Dispatch(
	o *order.Order,
	node *supplynode.SupplyNode,
	couriers []*courier.Courier,
) (*courier.Courier, error) {
	if err := errors.Join(o.Validate(), node.Validate()); err != nil {
		return nil, err
	}
	if !o.SupplyNodeID().IsEqual(node.ID()) {
		return nil, errs.NewValueIsInvalidError("supply node")
	}
	if o.Status() != order.Ready {
		return nil, errs.NewStateConflictError("order", o.ID(), "only ready orders can be dispatched")
	}
	if o.Courier() != nil {
		return nil, errs.NewStateConflictError("order", o.ID(), "order already assigned")
	}

	best, _, err := d.FindNearest(node.Location(), couriers)
	if err != nil {
		return nil, err
	}

	if err := o.Assign(best.ID()); err != nil {
		return nil, err
	}

	return best, nil
}

// FindNearest returns the dispatchable courier closest to origin and its distance in km.
func (d OrderDispatcher) FindNearest(origin *kernel.Location, couriers []*courier.Courier) (*courier.Courier, float64, error) {
	if origin == nil {
		return nil, kernel.Unreachable, ErrSupplyNodeUnreachable
	}

	var (
		best     *courier.Courier
		bestDist = kernel.Unreachable
	)

	for _, c := range couriers {
		if err := c.Validate(); err != nil {
			return nil, kernel.Unreachable, err
		}
		if !c.IsDispatchable() {
			continue
		}

		dist := c.DistanceTo(origin)
		if kernel.IsUnreachable(dist) {
			continue
		}

		if best == nil || dist < bestDist || (dist == bestDist && c.ID().Compare(best.ID()) < 0) {
			best = c
			bestDist = dist
		}
	}

	if best == nil {
		return nil, kernel.Unreachable, ErrCourierNotFound
	}

	return best, bestDist, nil
}
