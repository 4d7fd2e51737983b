package ports

import (
	"context"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
)

// OrderMutator applies a domain transition to a loaded order. Returning an
// error aborts the write and the error reaches the caller unchanged.
type OrderMutator func(o *order.Order) error

// OrderRepository defines the persistence contract for order aggregates.
//
// Every state change goes through ConditionalUpdate; there is no blind Update.
type OrderRepository interface {
	// Add persists a new order. The order must be valid and not yet stored.
	Add(ctx context.Context, aggregate *order.Order) error

	// Get returns the order or an errs.ObjectNotFoundError.
	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)

	// ConditionalUpdate reads the order, checks it is in expectedStatus, applies
	// mutate and writes the result guarded by the prior status and version.
	//
	// Of two concurrent writers exactly one wins; the other receives an
	// errs.StateConflictError. A status mismatch is reported the same way.
	// The returned order carries the new version.
	ConditionalUpdate(
		ctx context.Context,
		id kernel.UUID,
		expectedStatus order.Status,
		mutate OrderMutator,
	) (*order.Order, error)

	// Query returns orders matching filter in the requested order.
	Query(ctx context.Context, filter OrderFilter, sort OrderSort) ([]*order.Order, error)
}

// OrderFilter narrows Query. Zero-valued fields do not filter.
type OrderFilter struct {
	RequesterID  *kernel.UUID
	SupplyNodeID *kernel.UUID
	CourierID    *kernel.UUID
	Statuses     []order.Status

	// Unassigned keeps only orders without a courier.
	Unassigned bool

	// AvailableTo keeps orders without a courier or assigned to this courier.
	AvailableTo *kernel.UUID

	AcceptedBefore *time.Time
	DeliveredSince *time.Time

	Limit int
}

type OrderSortField int

const (
	SortByOrderedAt OrderSortField = iota
	SortByReadyAt
	SortByAcceptedAt
	SortByDeliveredAt
)

type OrderSort struct {
	Field      OrderSortField
	Descending bool
}

// NewestFirst sorts by placement time, latest first.
var NewestFirst = OrderSort{Field: SortByOrderedAt, Descending: true}
