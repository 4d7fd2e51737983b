package commands

import (
	"errors"
	"fmt"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

var ErrChangeOrderStatusCommandIsNotConstructed = errors.New(
	"ChangeOrderStatusCommand must be created via NewChangeOrderStatusCommand constructor",
)

// ChangeOrderStatusCommand is a supply node moving one of its orders to
// ready or rejected.
type ChangeOrderStatusCommand struct {
	orderID      kernel.UUID
	supplyNodeID kernel.UUID
	target       order.Status
	guard        guard.ConstructorGuard
}

func NewChangeOrderStatusCommand(orderID, supplyNodeID kernel.UUID, target order.Status) (ChangeOrderStatusCommand, error) {
	var errList []error
	if err := orderID.Validate(); err != nil {
		errList = append(errList, err)
	}
	if err := supplyNodeID.Validate(); err != nil {
		errList = append(errList, errs.NewValueIsRequiredErrorWithCause("supply node", err))
	}
	if err := target.Validate(); err != nil {
		errList = append(errList, err)
	} else if target != order.Ready && target != order.Rejected {
		errList = append(errList, errs.NewValueIsInvalidErrorWithCause("status",
			fmt.Errorf("supply node may only set %s or %s", order.Ready, order.Rejected)))
	}
	if err := errors.Join(errList...); err != nil {
		return ChangeOrderStatusCommand{}, err
	}

	return ChangeOrderStatusCommand{
		orderID:      orderID,
		supplyNodeID: supplyNodeID,
		target:       target,
		guard:        guard.NewConstructorGuard(),
	}, nil
}

func (c ChangeOrderStatusCommand) Validate() error {
	return c.guard.Validate(ErrChangeOrderStatusCommandIsNotConstructed)
}

func (c ChangeOrderStatusCommand) OrderID() kernel.UUID {
	return c.orderID
}

func (c ChangeOrderStatusCommand) SupplyNodeID() kernel.UUID {
	return c.supplyNodeID
}

func (c ChangeOrderStatusCommand) Target() order.Status {
	return c.target
}
