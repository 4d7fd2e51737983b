package errs

import (
	"errors"
	"fmt"
)

var (
	ErrStateConflict = errors.New("state conflict")
	ErrForbidden     = errors.New("access is forbidden")
)

// StateConflictError reports an illegal transition or a conditional write that
// lost a race against a concurrent writer.
type StateConflictError struct {
	Entity string
	ID     any
	Reason string
	Cause  error
}

func NewStateConflictError(entity string, id any, reason string) *StateConflictError {
	return &StateConflictError{Entity: entity, ID: id, Reason: reason}
}

func NewStateConflictErrorWithCause(entity string, id any, reason string, cause error) *StateConflictError {
	return &StateConflictError{Entity: entity, ID: id, Reason: reason, Cause: cause}
}

func (e *StateConflictError) Error() string {
	return withCause(fmt.Sprintf("%s: %s %v: %s", ErrStateConflict, e.Entity, e.ID, e.Reason), e.Cause)
}

func (e *StateConflictError) Unwrap() error {
	return ErrStateConflict
}

// ForbiddenError reports an actor acting on a resource it does not own.
type ForbiddenError struct {
	Actor    any
	Resource string
	Reason   string
}

func NewForbiddenError(actor any, resource, reason string) *ForbiddenError {
	return &ForbiddenError{Actor: actor, Resource: resource, Reason: reason}
}

func (e *ForbiddenError) Error() string {
	return fmt.Sprintf("%s: %v on %s: %s", ErrForbidden, e.Actor, e.Resource, e.Reason)
}

func (e *ForbiddenError) Unwrap() error {
	return ErrForbidden
}
