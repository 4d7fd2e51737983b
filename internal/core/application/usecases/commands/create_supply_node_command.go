package commands

import (
	"errors"
	"strings"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

var ErrCreateSupplyNodeCommandIsNotConstructed = errors.New(
	"CreateSupplyNodeCommand must be created via NewCreateSupplyNodeCommand constructor",
)

// CreateSupplyNodeCommand registers a pharmacy. The location is optional.
type CreateSupplyNodeCommand struct {
	supplyNodeID kernel.UUID
	name         string
	location     *kernel.Location
	guard        guard.ConstructorGuard
}

func NewCreateSupplyNodeCommand(supplyNodeID kernel.UUID, name string, location *kernel.Location) (CreateSupplyNodeCommand, error) {
	cmd := CreateSupplyNodeCommand{guard: guard.NewConstructorGuard(), location: location}

	var errList []error
	if err := supplyNodeID.Validate(); err != nil {
		errList = append(errList, err)
	}
	cmd.supplyNodeID = supplyNodeID

	cmd.name = strings.TrimSpace(name)
	if cmd.name == "" {
		errList = append(errList, errs.NewValueIsRequiredError("name"))
	}

	if err := errors.Join(errList...); err != nil {
		return CreateSupplyNodeCommand{}, err
	}
	return cmd, nil
}

func (c CreateSupplyNodeCommand) Validate() error {
	return c.guard.Validate(ErrCreateSupplyNodeCommandIsNotConstructed)
}

func (c CreateSupplyNodeCommand) SupplyNodeID() kernel.UUID {
	return c.supplyNodeID
}

func (c CreateSupplyNodeCommand) Name() string {
	return c.name
}

func (c CreateSupplyNodeCommand) Location() *kernel.Location {
	return c.location
}
