// Package commands contains business operations that modify system state.
// Every command follows the same pattern: a guarded command value, a handler
// that loads state, applies a domain transition through a conditional write,
// and publishes the committed transition.
package commands

import (
	"errors"
	"time"

	"dispatch/internal/core/domain/model/order"
)

// Clock returns the current time. Handlers default to time.Now.
type Clock func() time.Time

func (c Clock) now() time.Time {
	if c == nil {
		return time.Now().UTC()
	}
	return c()
}

// OrderResult is returned by order transitions. AlreadyDone reports an
// idempotent repeat: the order is returned as stored and nothing was written.
// Preview is set when marking an order ready assigned a courier.
type OrderResult struct {
	Order       *order.Order
	AlreadyDone bool
	Preview     *order.Earnings
}

// errUnchanged aborts a conditional write whose mutation turned out to be a no-op.
var errUnchanged = errors.New("order unchanged")
