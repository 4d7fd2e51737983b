package commands

import (
	"errors"
	"fmt"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"

	"github.com/shopspring/decimal"
)

var ErrPlaceOrderCommandIsNotConstructed = errors.New(
	"PlaceOrderCommand must be created via NewPlaceOrderCommand constructor",
)

// CheckoutLine is one cart line handed over by the checkout collaborator.
type CheckoutLine struct {
	Name         string
	Quantity     int
	UnitPrice    decimal.Decimal
	SupplyNodeID kernel.UUID
}

// PlaceOrderCommand turns a checkout into one pending order per supply node.
//
// Example:
//
//	cmd, err := NewPlaceOrderCommand(requesterID, lines, &home, "12 Park Lane")
//	if err != nil {
//	    return err
//	}
//	placed, err := handler.Handle(ctx, cmd)
type PlaceOrderCommand struct {
	requesterID      kernel.UUID
	lines            []CheckoutLine
	deliveryLocation *kernel.Location
	deliveryAddress  string

	guard guard.ConstructorGuard
}

func NewPlaceOrderCommand(
	requesterID kernel.UUID,
	lines []CheckoutLine,
	deliveryLocation *kernel.Location,
	deliveryAddress string,
) (PlaceOrderCommand, error) {
	var errList []error
	if err := requesterID.Validate(); err != nil {
		errList = append(errList, errs.NewValueIsRequiredErrorWithCause("requester", err))
	}
	if len(lines) == 0 {
		errList = append(errList, errs.NewValueIsRequiredError("items"))
	}
	for i, line := range lines {
		if err := line.SupplyNodeID.Validate(); err != nil {
			errList = append(errList, errs.NewValueIsRequiredErrorWithCause(fmt.Sprintf("items[%d].supplyNodeId", i), err))
		}
	}
	if deliveryLocation != nil {
		if err := deliveryLocation.Validate(); err != nil {
			errList = append(errList, err)
		}
	}
	if err := errors.Join(errList...); err != nil {
		return PlaceOrderCommand{}, err
	}

	copied := make([]CheckoutLine, len(lines))
	copy(copied, lines)

	return PlaceOrderCommand{
		requesterID:      requesterID,
		lines:            copied,
		deliveryLocation: deliveryLocation,
		deliveryAddress:  deliveryAddress,
		guard:            guard.NewConstructorGuard(),
	}, nil
}

func (c PlaceOrderCommand) Validate() error {
	return c.guard.Validate(ErrPlaceOrderCommandIsNotConstructed)
}

func (c PlaceOrderCommand) RequesterID() kernel.UUID {
	return c.requesterID
}

func (c PlaceOrderCommand) Lines() []CheckoutLine {
	out := make([]CheckoutLine, len(c.lines))
	copy(out, c.lines)
	return out
}

func (c PlaceOrderCommand) DeliveryLocation() *kernel.Location {
	return c.deliveryLocation
}

func (c PlaceOrderCommand) DeliveryAddress() string {
	return c.deliveryAddress
}
