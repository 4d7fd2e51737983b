package ports

import (
	"context"

	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/supplynode"
)

// CourierDirectory gives read access to courier accounts and lets a courier
// write its own presence. The dispatch engine only reads snapshots.
type CourierDirectory interface {
	// Add registers a courier account.
	Add(ctx context.Context, c *courier.Courier) error

	// Get returns the courier or an errs.ObjectNotFoundError.
	Get(ctx context.Context, id kernel.UUID) (*courier.Courier, error)

	// FindOnlineWithLocation returns a snapshot of couriers that are online and
	// have a known position.
	FindOnlineWithLocation(ctx context.Context) ([]*courier.Courier, error)

	UpdateLocation(ctx context.Context, id kernel.UUID, location kernel.Location) error

	SetOnline(ctx context.Context, id kernel.UUID, online bool) error
}

// SupplyNodeDirectory is the read side of supply-node accounts.
type SupplyNodeDirectory interface {
	Add(ctx context.Context, n *supplynode.SupplyNode) error

	// Get returns the supply node or an errs.ObjectNotFoundError.
	Get(ctx context.Context, id kernel.UUID) (*supplynode.SupplyNode, error)
}
