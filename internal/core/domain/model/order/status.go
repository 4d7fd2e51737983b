package order

import (
	"fmt"

	"dispatch/internal/pkg/errs"
)

// Status represents the lifecycle state of an order.
//
// State transitions:
//
//	Pending ──> Ready ──> OutForDelivery ──> Delivered
//	   │
//	   └──> Rejected
//
// Delivered and Rejected are terminal. Status only moves forward.
type Status int

const (
	// Unknown catches uninitialized Status values.
	Unknown Status = iota

	// Pending is the status of a freshly placed order awaiting the supply node.
	Pending

	// Ready means the supply node prepared the bundle; a courier may be soft-assigned.
	Ready

	// OutForDelivery means a courier accepted the order. The pickup flag on the
	// order tells whether the courier has collected it yet.
	OutForDelivery

	// Delivered is terminal; settlement fields are frozen.
	Delivered

	// Rejected is terminal; the supply node declined the order.
	Rejected
)

func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:        "unknown",
		Pending:        "pending",
		Ready:          "ready",
		OutForDelivery: "out-for-delivery",
		Delivered:      "delivered",
		Rejected:       "rejected",
	}
}

// transitions lists the forward edges of the lifecycle graph.
func transitions() map[Status][]Status {
	//nolint:exhaustive // terminal and unknown statuses have no outgoing edges
	return map[Status][]Status{
		Pending:        {Ready, Rejected},
		Ready:          {OutForDelivery},
		OutForDelivery: {Delivered},
	}
}

// ParseStatus maps the wire name ("pending", "out-for-delivery", ...) to a Status.
func ParseStatus(s string) (Status, error) {
	for status, name := range getStatusStrings() {
		if status != Unknown && name == s {
			return status, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%q is not a valid status", s))
}

// Validate checks that s is one of the known lifecycle statuses.
func (s Status) Validate() error {
	if _, ok := getStatusStrings()[s]; !ok || s == Unknown {
		return errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

// String returns the wire name of the status.
func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "unknown"
}

// IsTerminal reports whether no transition may leave s.
func (s Status) IsTerminal() bool {
	return s == Delivered || s == Rejected
}

// CanTransitionTo reports whether target is a direct successor of s.
func (s Status) CanTransitionTo(target Status) bool {
	for _, next := range transitions()[s] {
		if next == target {
			return true
		}
	}
	return false
}

// TransitionTo returns target if the edge s -> target exists in the lifecycle graph.
func (s Status) TransitionTo(target Status) (Status, error) {
	if !s.CanTransitionTo(target) {
		return Unknown, errs.NewStateConflictError("status", s.String(),
			fmt.Sprintf("cannot move from %s to %s", s, target))
	}
	return target, nil
}
