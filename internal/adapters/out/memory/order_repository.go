// Package memory provides in-process implementations of the dispatch ports.
// They back unit tests and single-node development runs.
package memory

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"
)

// OrderRepository keeps order snapshots in a map. ConditionalUpdate reads and
// writes under separate critical sections and relies on the version check,
// like the SQL adapter does.
type OrderRepository struct {
	mu     sync.RWMutex
	orders map[kernel.UUID]order.Snapshot
}

var _ ports.OrderRepository = (*OrderRepository)(nil)

func NewOrderRepository() *OrderRepository {
	return &OrderRepository{orders: make(map[kernel.UUID]order.Snapshot)}
}

func (r *OrderRepository) Add(ctx context.Context, aggregate *order.Order) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := aggregate.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.orders[aggregate.ID()]; ok {
		return errs.NewStateConflictError("order", aggregate.ID(), "order already exists")
	}
	r.orders[aggregate.ID()] = aggregate.Snapshot()
	return nil
}

func (r *OrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	snapshot, ok := r.orders[id]
	r.mu.RUnlock()

	if !ok {
		return nil, errs.NewObjectNotFoundError("order", id.String())
	}
	return order.Restore(snapshot)
}

func (r *OrderRepository) ConditionalUpdate(
	ctx context.Context,
	id kernel.UUID,
	expectedStatus order.Status,
	mutate ports.OrderMutator,
) (*order.Order, error) {
	current, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status() != expectedStatus {
		return nil, errs.NewStateConflictError("order", id,
			"expected "+expectedStatus.String()+", found "+current.Status().String())
	}

	if err := mutate(current); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.orders[id]
	if !ok {
		return nil, errs.NewObjectNotFoundError("order", id.String())
	}
	if stored.Version != current.Version() || stored.Status != expectedStatus {
		return nil, errs.NewStateConflictError("order", id, "order was modified concurrently")
	}

	next := current.Snapshot()
	next.Version = stored.Version + 1
	r.orders[id] = next

	return order.Restore(next)
}

func (r *OrderRepository) Query(ctx context.Context, filter ports.OrderFilter, sort ports.OrderSort) ([]*order.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	matched := make([]order.Snapshot, 0)
	for _, s := range r.orders {
		if matches(s, filter) {
			matched = append(matched, s)
		}
	}
	r.mu.RUnlock()

	slices.SortFunc(matched, func(a, b order.Snapshot) int {
		c := cmp.Compare(sortKey(a, sort.Field), sortKey(b, sort.Field))
		if c == 0 {
			c = a.ID.Compare(b.ID)
		}
		if sort.Descending {
			return -c
		}
		return c
	})

	if filter.Limit > 0 && len(matched) > filter.Limit {
		matched = matched[:filter.Limit]
	}

	out := make([]*order.Order, 0, len(matched))
	for _, s := range matched {
		o, err := order.Restore(s)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, nil
}

func matches(s order.Snapshot, f ports.OrderFilter) bool {
	if f.RequesterID != nil && !s.RequesterID.IsEqual(*f.RequesterID) {
		return false
	}
	if f.SupplyNodeID != nil && !s.SupplyNodeID.IsEqual(*f.SupplyNodeID) {
		return false
	}
	if f.CourierID != nil && (s.CourierID == nil || !s.CourierID.IsEqual(*f.CourierID)) {
		return false
	}
	if len(f.Statuses) > 0 && !slices.Contains(f.Statuses, s.Status) {
		return false
	}
	if f.Unassigned && s.CourierID != nil {
		return false
	}
	if f.AvailableTo != nil && s.CourierID != nil && !s.CourierID.IsEqual(*f.AvailableTo) {
		return false
	}
	if f.AcceptedBefore != nil && (s.AcceptedAt == nil || !s.AcceptedAt.Before(*f.AcceptedBefore)) {
		return false
	}
	if f.DeliveredSince != nil && (s.DeliveredAt == nil || s.DeliveredAt.Before(*f.DeliveredSince)) {
		return false
	}
	return true
}

func sortKey(s order.Snapshot, field ports.OrderSortField) int64 {
	var t *time.Time
	switch field {
	case ports.SortByReadyAt:
		t = s.ReadyAt
	case ports.SortByAcceptedAt:
		t = s.AcceptedAt
	case ports.SortByDeliveredAt:
		t = s.DeliveredAt
	default:
		t = &s.OrderedAt
	}
	if t == nil {
		return 0
	}
	return t.UnixNano()
}
