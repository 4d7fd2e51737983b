package kernel

import (
	"fmt"

	"dispatch/internal/pkg/errs"
)

// Role distinguishes accounts that share one directory.
type Role string

const (
	RoleRequester  Role = "requester"
	RoleSupplyNode Role = "supply_node"
	RoleCourier    Role = "courier"
)

// ParseRole maps a stored role name to a Role.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if err := r.Validate(); err != nil {
		return "", err
	}
	return r, nil
}

func (r Role) Validate() error {
	switch r {
	case RoleRequester, RoleSupplyNode, RoleCourier:
		return nil
	default:
		return errs.NewValueIsInvalidErrorWithCause("role", fmt.Errorf("%q is not a valid role", string(r)))
	}
}

func (r Role) String() string {
	return string(r)
}
