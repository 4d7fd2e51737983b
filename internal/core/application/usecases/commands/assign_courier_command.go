package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrAssignCourierCommandIsNotConstructed = errors.New(
	"AssignCourierCommand must be created via NewAssignCourierCommand constructor",
)

// AssignCourierCommand asks the dispatcher to soft-assign the nearest online
// courier to a ready order.
//
// Example:
//
//	cmd, err := NewAssignCourierCommand(orderID)
//	if err != nil {
//	    return err
//	}
//	result, err := handler.Handle(ctx, cmd)
type AssignCourierCommand struct {
	orderID kernel.UUID
	guard   guard.ConstructorGuard
}

func NewAssignCourierCommand(orderID kernel.UUID) (AssignCourierCommand, error) {
	if err := orderID.Validate(); err != nil {
		return AssignCourierCommand{}, err
	}
	return AssignCourierCommand{
		orderID: orderID,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
func (c AssignCourierCommand) Validate() error {
	return c.guard.Validate(ErrAssignCourierCommandIsNotConstructed)
}

func (c AssignCourierCommand) OrderID() kernel.UUID {
	return c.orderID
}
