package memory

import (
	"context"
	"slices"
	"sync"

	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/supplynode"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"
)

type courierRecord struct {
	name     string
	online   bool
	location *kernel.Location
}

// AccountDirectory stores courier and supply-node accounts side by side.
type AccountDirectory struct {
	mu          sync.RWMutex
	couriers    map[kernel.UUID]courierRecord
	supplyNodes map[kernel.UUID]*supplynode.SupplyNode
}

var (
	_ ports.CourierDirectory    = (*AccountDirectory)(nil)
	_ ports.SupplyNodeDirectory = (*SupplyNodeView)(nil)
)

func NewAccountDirectory() *AccountDirectory {
	return &AccountDirectory{
		couriers:    make(map[kernel.UUID]courierRecord),
		supplyNodes: make(map[kernel.UUID]*supplynode.SupplyNode),
	}
}

func (d *AccountDirectory) Add(ctx context.Context, c *courier.Courier) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := c.Validate(); err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.couriers[c.ID()]; ok {
		return errs.NewStateConflictError("courier", c.ID(), "courier already exists")
	}
	d.couriers[c.ID()] = courierRecord{name: c.Name(), online: c.IsOnline(), location: c.Location()}
	return nil
}

func (d *AccountDirectory) Get(ctx context.Context, id kernel.UUID) (*courier.Courier, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d.mu.RLock()
	rec, ok := d.couriers[id]
	d.mu.RUnlock()

	if !ok {
		return nil, errs.NewObjectNotFoundError("courier", id.String())
	}
	return courier.RestoreCourier(id, rec.name, rec.online, rec.location)
}

func (d *AccountDirectory) FindOnlineWithLocation(ctx context.Context) ([]*courier.Courier, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	ids := make([]kernel.UUID, 0, len(d.couriers))
	for id, rec := range d.couriers {
		if rec.online && rec.location != nil {
			ids = append(ids, id)
		}
	}
	slices.SortFunc(ids, kernel.UUID.Compare)

	out := make([]*courier.Courier, 0, len(ids))
	for _, id := range ids {
		rec := d.couriers[id]
		c, err := courier.RestoreCourier(id, rec.name, rec.online, rec.location)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func (d *AccountDirectory) UpdateLocation(ctx context.Context, id kernel.UUID, location kernel.Location) error {
	if err := location.Validate(); err != nil {
		return err
	}
	return d.updateCourier(ctx, id, func(rec *courierRecord) {
		rec.location = &location
	})
}

func (d *AccountDirectory) SetOnline(ctx context.Context, id kernel.UUID, online bool) error {
	return d.updateCourier(ctx, id, func(rec *courierRecord) {
		rec.online = online
	})
}

func (d *AccountDirectory) updateCourier(ctx context.Context, id kernel.UUID, apply func(*courierRecord)) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	rec, ok := d.couriers[id]
	if !ok {
		return errs.NewObjectNotFoundError("courier", id.String())
	}
	apply(&rec)
	d.couriers[id] = rec
	return nil
}

// SupplyNodes exposes the supply-node side of the directory.
func (d *AccountDirectory) SupplyNodes() *SupplyNodeView {
	return &SupplyNodeView{d: d}
}

// SupplyNodeView implements ports.SupplyNodeDirectory over an AccountDirectory.
type SupplyNodeView struct {
	d *AccountDirectory
}

func (v *SupplyNodeView) Add(ctx context.Context, n *supplynode.SupplyNode) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := n.Validate(); err != nil {
		return err
	}

	v.d.mu.Lock()
	defer v.d.mu.Unlock()

	if _, ok := v.d.supplyNodes[n.ID()]; ok {
		return errs.NewStateConflictError("supply node", n.ID(), "supply node already exists")
	}
	v.d.supplyNodes[n.ID()] = n
	return nil
}

func (v *SupplyNodeView) Get(ctx context.Context, id kernel.UUID) (*supplynode.SupplyNode, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	v.d.mu.RLock()
	n, ok := v.d.supplyNodes[id]
	v.d.mu.RUnlock()

	if !ok {
		return nil, errs.NewObjectNotFoundError("supply node", id.String())
	}
	return n, nil
}
