package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var (
	ErrUpdateCourierLocationCommandIsNotConstructed = errors.New(
		"UpdateCourierLocationCommand must be created via NewUpdateCourierLocationCommand constructor",
	)
	ErrSetCourierOnlineCommandIsNotConstructed = errors.New(
		"SetCourierOnlineCommand must be created via NewSetCourierOnlineCommand constructor",
	)
)

// UpdateCourierLocationCommand is a location ping from the courier app.
type UpdateCourierLocationCommand struct {
	courierID kernel.UUID
	location  kernel.Location
	guard     guard.ConstructorGuard
}

func NewUpdateCourierLocationCommand(courierID kernel.UUID, lat, lon float64) (UpdateCourierLocationCommand, error) {
	location, locErr := kernel.NewLocation(lat, lon)
	if err := errors.Join(courierID.Validate(), locErr); err != nil {
		return UpdateCourierLocationCommand{}, err
	}
	return UpdateCourierLocationCommand{
		courierID: courierID,
		location:  location,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

func (c UpdateCourierLocationCommand) Validate() error {
	return c.guard.Validate(ErrUpdateCourierLocationCommandIsNotConstructed)
}

func (c UpdateCourierLocationCommand) CourierID() kernel.UUID {
	return c.courierID
}

func (c UpdateCourierLocationCommand) Location() kernel.Location {
	return c.location
}

// SetCourierOnlineCommand toggles whether the courier takes new work.
type SetCourierOnlineCommand struct {
	courierID kernel.UUID
	online    bool
	guard     guard.ConstructorGuard
}

func NewSetCourierOnlineCommand(courierID kernel.UUID, online bool) (SetCourierOnlineCommand, error) {
	if err := courierID.Validate(); err != nil {
		return SetCourierOnlineCommand{}, err
	}
	return SetCourierOnlineCommand{
		courierID: courierID,
		online:    online,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

func (c SetCourierOnlineCommand) Validate() error {
	return c.guard.Validate(ErrSetCourierOnlineCommandIsNotConstructed)
}

func (c SetCourierOnlineCommand) CourierID() kernel.UUID {
	return c.courierID
}

func (c SetCourierOnlineCommand) Online() bool {
	return c.online
}
