package commands

import (
	"errors"
	"strings"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

var ErrCreateCourierCommandIsNotConstructed = errors.New(
	"CreateCourierCommand must be created via NewCreateCourierCommand constructor",
)

// CreateCourierCommand registers a courier account in the directory. The
// courier starts offline without a position.
type CreateCourierCommand struct {
	courierID kernel.UUID
	name      string
	guard     guard.ConstructorGuard
}

func NewCreateCourierCommand(courierID kernel.UUID, name string) (CreateCourierCommand, error) {
	cmd := CreateCourierCommand{guard: guard.NewConstructorGuard()}

	var errList []error
	if err := courierID.Validate(); err != nil {
		errList = append(errList, err)
	}
	cmd.courierID = courierID

	cmd.name = strings.TrimSpace(name)
	if cmd.name == "" {
		errList = append(errList, errs.NewValueIsRequiredError("name"))
	}

	if err := errors.Join(errList...); err != nil {
		return CreateCourierCommand{}, err
	}
	return cmd, nil
}

func (c CreateCourierCommand) Validate() error {
	return c.guard.Validate(ErrCreateCourierCommandIsNotConstructed)
}

func (c CreateCourierCommand) CourierID() kernel.UUID {
	return c.courierID
}

func (c CreateCourierCommand) Name() string {
	return c.name
}
