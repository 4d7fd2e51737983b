// Package supplynode holds the SupplyNode entity: the pharmacy an order is
// fulfilled from.
package supplynode

import (
	"errors"
	"strings"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

var (
	ErrNameIsRequired             = errs.NewValueIsRequiredError("name")
	ErrSupplyNodeIsNotConstructed = errors.New("SupplyNode must be created via NewSupplyNode constructor")
)

// SupplyNode is read-only to the dispatch engine. A node without a coordinate
// is unreachable: it gets no automatic assignment and settles at base earning.
type SupplyNode struct {
	id       kernel.UUID
	name     string
	location *kernel.Location
	guard    guard.ConstructorGuard
}

func NewSupplyNode(id kernel.UUID, name string, location *kernel.Location) (*SupplyNode, error) {
	n := &SupplyNode{guard: guard.NewConstructorGuard()}

	var errList []error
	if err := id.Validate(); err != nil {
		errList = append(errList, err)
	}
	n.id = id

	n.name = strings.TrimSpace(name)
	if n.name == "" {
		errList = append(errList, ErrNameIsRequired)
	}

	if location != nil {
		if err := location.Validate(); err != nil {
			errList = append(errList, err)
		}
		loc := *location
		n.location = &loc
	}

	if err := errors.Join(errList...); err != nil {
		return nil, err
	}
	return n, nil
}

func (n *SupplyNode) Validate() error {
	if n == nil {
		return ErrSupplyNodeIsNotConstructed
	}
	return n.guard.Validate(ErrSupplyNodeIsNotConstructed)
}

func (n *SupplyNode) ID() kernel.UUID {
	return n.id
}

func (n *SupplyNode) Name() string {
	return n.name
}

// Location returns the node coordinate, or nil when unknown.
func (n *SupplyNode) Location() *kernel.Location {
	if n.location == nil {
		return nil
	}
	loc := *n.location
	return &loc
}

// HasLocation reports whether distances from this node are computable.
func (n *SupplyNode) HasLocation() bool {
	return n.location != nil
}
