package redis

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/ports"

	"github.com/shopspring/decimal"
)

// CachedOrderRepository serves Get from a cache in front of another
// repository. A successful conditional write refreshes the entry, a failed
// one drops it. Any cache failure is logged and treated as a miss.
//
// ConditionalUpdate and Query always read the inner repository, so a stale
// entry can delay what Get returns by at most the TTL but never lets a write
// through that the inner repository would reject.
type CachedOrderRepository struct {
	inner  ports.OrderRepository
	cache  ports.Cache
	ttl    time.Duration
	logger *slog.Logger
}

var _ ports.OrderRepository = (*CachedOrderRepository)(nil)

func NewCachedOrderRepository(
	inner ports.OrderRepository,
	cache ports.Cache,
	ttl time.Duration,
	logger *slog.Logger,
) *CachedOrderRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedOrderRepository{
		inner:  inner,
		cache:  cache,
		ttl:    ttl,
		logger: logger.With("component", "OrderCache"),
	}
}

func orderKey(id kernel.UUID) string {
	return "order:" + id.String()
}

func (r *CachedOrderRepository) Add(ctx context.Context, aggregate *order.Order) error {
	return r.inner.Add(ctx, aggregate)
}

func (r *CachedOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	key := orderKey(id)

	cached, err := r.cache.Get(ctx, key)
	switch {
	case err == nil:
		o, decodeErr := decodeOrder(cached)
		if decodeErr == nil {
			return o, nil
		}
		r.logger.WarnContext(ctx, "discarding undecodable cache entry", "key", key, "error", decodeErr)
	case !errors.Is(err, ports.ErrCacheMiss):
		r.logger.WarnContext(ctx, "cache read failed", "key", key, "error", err)
	}

	o, err := r.inner.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	r.store(ctx, o)
	return o, nil
}

func (r *CachedOrderRepository) ConditionalUpdate(
	ctx context.Context,
	id kernel.UUID,
	expectedStatus order.Status,
	mutate ports.OrderMutator,
) (*order.Order, error) {
	updated, err := r.inner.ConditionalUpdate(ctx, id, expectedStatus, mutate)
	if err == nil {
		r.store(ctx, updated)
		return updated, nil
	}
	if invalidateErr := r.cache.Invalidate(ctx, orderKey(id)); invalidateErr != nil {
		r.logger.WarnContext(ctx, "cache invalidation failed", "order_id", id.String(), "error", invalidateErr)
	}
	return nil, err
}

func (r *CachedOrderRepository) Query(
	ctx context.Context,
	filter ports.OrderFilter,
	sort ports.OrderSort,
) ([]*order.Order, error) {
	return r.inner.Query(ctx, filter, sort)
}

func (r *CachedOrderRepository) store(ctx context.Context, o *order.Order) {
	body, err := encodeOrder(o)
	if err != nil {
		r.logger.WarnContext(ctx, "order not cacheable", "order_id", o.ID().String(), "error", err)
		return
	}
	if err := r.cache.Set(ctx, orderKey(o.ID()), body, r.ttl); err != nil {
		r.logger.WarnContext(ctx, "cache write failed", "order_id", o.ID().String(), "error", err)
	}
}

type cachedItem struct {
	Name         string          `json:"name"`
	Quantity     int             `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unitPrice"`
	SupplyNodeID kernel.UUID     `json:"supplyNodeId"`
}

type cachedLocation struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type cachedOrder struct {
	ID               kernel.UUID     `json:"id"`
	RequesterID      kernel.UUID     `json:"requesterId"`
	SupplyNodeID     kernel.UUID     `json:"supplyNodeId"`
	CourierID        *kernel.UUID    `json:"courierId,omitempty"`
	Status           string          `json:"status"`
	Items            []cachedItem    `json:"items"`
	DeliveryLocation *cachedLocation `json:"deliveryLocation,omitempty"`
	DeliveryAddress  string          `json:"deliveryAddress"`
	OrderedAt        time.Time       `json:"orderedAt"`
	ReadyAt          *time.Time      `json:"readyAt,omitempty"`
	AcceptedAt       *time.Time      `json:"acceptedAt,omitempty"`
	PickedUp         bool            `json:"pickedUp"`
	PickedUpAt       *time.Time      `json:"pickedUpAt,omitempty"`
	DeliveredAt      *time.Time      `json:"deliveredAt,omitempty"`
	Settlement       *order.Earnings `json:"settlement,omitempty"`
	Version          int64           `json:"version"`
}

func encodeOrder(o *order.Order) ([]byte, error) {
	s := o.Snapshot()

	items := make([]cachedItem, 0, len(s.Items))
	for _, it := range s.Items {
		items = append(items, cachedItem{
			Name:         it.Name(),
			Quantity:     it.Quantity(),
			UnitPrice:    it.UnitPrice(),
			SupplyNodeID: it.SupplyNodeID(),
		})
	}

	var loc *cachedLocation
	if s.DeliveryLocation != nil {
		loc = &cachedLocation{Lat: s.DeliveryLocation.Lat(), Lon: s.DeliveryLocation.Lon()}
	}

	return json.Marshal(cachedOrder{
		ID:               s.ID,
		RequesterID:      s.RequesterID,
		SupplyNodeID:     s.SupplyNodeID,
		CourierID:        s.CourierID,
		Status:           s.Status.String(),
		Items:            items,
		DeliveryLocation: loc,
		DeliveryAddress:  s.DeliveryAddress,
		OrderedAt:        s.OrderedAt,
		ReadyAt:          s.ReadyAt,
		AcceptedAt:       s.AcceptedAt,
		PickedUp:         s.PickedUp,
		PickedUpAt:       s.PickedUpAt,
		DeliveredAt:      s.DeliveredAt,
		Settlement:       s.Settlement,
		Version:          s.Version,
	})
}

func decodeOrder(body []byte) (*order.Order, error) {
	var c cachedOrder
	if err := json.Unmarshal(body, &c); err != nil {
		return nil, err
	}

	status, err := order.ParseStatus(c.Status)
	if err != nil {
		return nil, err
	}

	items := make([]order.Item, 0, len(c.Items))
	for _, it := range c.Items {
		item, itemErr := order.NewItem(it.Name, it.Quantity, it.UnitPrice, it.SupplyNodeID)
		if itemErr != nil {
			return nil, itemErr
		}
		items = append(items, item)
	}

	var loc *kernel.Location
	if c.DeliveryLocation != nil {
		loc, err = kernel.NewLocationPtr(c.DeliveryLocation.Lat, c.DeliveryLocation.Lon)
		if err != nil {
			return nil, err
		}
	}

	return order.Restore(order.Snapshot{
		ID:               c.ID,
		RequesterID:      c.RequesterID,
		SupplyNodeID:     c.SupplyNodeID,
		CourierID:        c.CourierID,
		Items:            items,
		Status:           status,
		DeliveryLocation: loc,
		DeliveryAddress:  c.DeliveryAddress,
		OrderedAt:        c.OrderedAt,
		ReadyAt:          c.ReadyAt,
		AcceptedAt:       c.AcceptedAt,
		PickedUp:         c.PickedUp,
		PickedUpAt:       c.PickedUpAt,
		DeliveredAt:      c.DeliveredAt,
		Settlement:       c.Settlement,
		Version:          c.Version,
	})
}
