package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

var ErrCourierOrderCommandIsNotConstructed = errors.New(
	"courier order command must be created via its constructor",
)

// CourierOrderCommand names a courier acting on one order. It is shared by
// accept, pickup and delivery.
type CourierOrderCommand struct {
	orderID   kernel.UUID
	courierID kernel.UUID
	guard     guard.ConstructorGuard
}

func newCourierOrderCommand(orderID, courierID kernel.UUID) (CourierOrderCommand, error) {
	var errList []error
	if err := orderID.Validate(); err != nil {
		errList = append(errList, err)
	}
	if err := courierID.Validate(); err != nil {
		errList = append(errList, errs.NewValueIsRequiredErrorWithCause("courier", err))
	}
	if err := errors.Join(errList...); err != nil {
		return CourierOrderCommand{}, err
	}
	return CourierOrderCommand{
		orderID:   orderID,
		courierID: courierID,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

func (c CourierOrderCommand) Validate() error {
	return c.guard.Validate(ErrCourierOrderCommandIsNotConstructed)
}

func (c CourierOrderCommand) OrderID() kernel.UUID {
	return c.orderID
}

func (c CourierOrderCommand) CourierID() kernel.UUID {
	return c.courierID
}

// AcceptDeliveryCommand is the courier's binding commitment to a ready order.
type AcceptDeliveryCommand struct{ CourierOrderCommand }

func NewAcceptDeliveryCommand(orderID, courierID kernel.UUID) (AcceptDeliveryCommand, error) {
	c, err := newCourierOrderCommand(orderID, courierID)
	return AcceptDeliveryCommand{c}, err
}

// PickUpOrderCommand marks that the courier collected the bundle.
type PickUpOrderCommand struct{ CourierOrderCommand }

func NewPickUpOrderCommand(orderID, courierID kernel.UUID) (PickUpOrderCommand, error) {
	c, err := newCourierOrderCommand(orderID, courierID)
	return PickUpOrderCommand{c}, err
}

// CompleteDeliveryCommand hands the bundle to the requester and settles earnings.
type CompleteDeliveryCommand struct{ CourierOrderCommand }

func NewCompleteDeliveryCommand(orderID, courierID kernel.UUID) (CompleteDeliveryCommand, error) {
	c, err := newCourierOrderCommand(orderID, courierID)
	return CompleteDeliveryCommand{c}, err
}
