package courier

import (
	"errors"
	"strings"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

var (
	// ErrNameIsRequired is returned when attempting to create a courier without a name.
	ErrNameIsRequired = errs.NewValueIsRequiredError("name")
	// ErrCourierIsNotConstructed is returned when using an improperly initialized Courier.
	ErrCourierIsNotConstructed = errors.New("Courier must be created via NewCourier or RestoreCourier constructors")
)

// Courier is the aggregate behind a courier account.
//
// The assignment engine only reads couriers; the courier's own location pings
// and online toggles are the sole writers.
//
// Example usage:
//
//	c, err := courier.NewCourier(kernel.NewUUID(), "Alice")
//	if err != nil {
//	    return err
//	}
//	c.SetOnline(true)
//	_ = c.UpdateLocation(here)
type Courier struct {
	id       kernel.UUID
	name     string
	online   bool
	location *kernel.Location
	guard    guard.ConstructorGuard
}

// NewCourier creates an offline courier with no known position.
func NewCourier(id kernel.UUID, name string) (*Courier, error) {
	c := &Courier{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		c.setID(id),
		c.setName(name),
	); err != nil {
		return nil, err
	}

	return c, nil
}

// RestoreCourier reconstructs a Courier from persistent storage.
func RestoreCourier(id kernel.UUID, name string, online bool, location *kernel.Location) (*Courier, error) {
	c, err := NewCourier(id, name)
	if err != nil {
		return nil, err
	}
	c.online = online

	if location != nil {
		if err := c.UpdateLocation(*location); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// Validate ensures the Courier instance was properly constructed.
func (c *Courier) Validate() error {
	if c == nil {
		return ErrCourierIsNotConstructed
	}
	return c.guard.Validate(ErrCourierIsNotConstructed)
}

func (c *Courier) ID() kernel.UUID {
	return c.id
}

func (c *Courier) Name() string {
	return c.name
}

func (c *Courier) IsOnline() bool {
	return c.online
}

// Location returns the last known position, or nil.
func (c *Courier) Location() *kernel.Location {
	if c.location == nil {
		return nil
	}
	loc := *c.location
	return &loc
}

// IsDispatchable reports whether the assignment engine may consider the courier.
func (c *Courier) IsDispatchable() bool {
	return c.online && c.location != nil
}

// DistanceTo returns the distance from the courier to target, or
// kernel.Unreachable when either position is unknown.
func (c *Courier) DistanceTo(target *kernel.Location) float64 {
	return kernel.Distance(c.location, target)
}

func (c *Courier) SetOnline(online bool) {
	c.online = online
}

// UpdateLocation records a location ping.
func (c *Courier) UpdateLocation(location kernel.Location) error {
	if err := location.Validate(); err != nil {
		return err
	}
	c.location = &location
	return nil
}

func (c *Courier) IsEqual(other *Courier) bool {
	return other != nil && c.id.IsEqual(other.id)
}

func (c *Courier) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	c.id = id
	return nil
}

func (c *Courier) setName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrNameIsRequired
	}
	c.name = name
	return nil
}
