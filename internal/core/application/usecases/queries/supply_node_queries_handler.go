package queries

import (
	"context"
	"slices"

	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/ports"

	"github.com/shopspring/decimal"
)

type GetSupplyNodeOrdersQueryHandler struct {
	orders ports.OrderRepository
}

func NewGetSupplyNodeOrdersQueryHandler(orders ports.OrderRepository) GetSupplyNodeOrdersQueryHandler {
	return GetSupplyNodeOrdersQueryHandler{orders: orders}
}

func (h GetSupplyNodeOrdersQueryHandler) Handle(ctx context.Context, query GetSupplyNodeOrdersQuery) ([]OrderView, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	nodeID := query.SupplyNodeID()
	orders, err := h.orders.Query(ctx, ports.OrderFilter{
		SupplyNodeID: &nodeID,
		Statuses:     query.Statuses(),
	}, ports.NewestFirst)
	if err != nil {
		return nil, err
	}
	return newOrderViews(orders), nil
}

// TopItem is the best-selling item by quantity over all of a node's orders.
type TopItem struct {
	Name     string
	Quantity int
}

// SupplyNodeAnalytics is the dashboard summary of a supply node.
// SalesToday sums the total amount of orders delivered since midnight.
// TopItem is nil when the node has no orders.
type SupplyNodeAnalytics struct {
	SalesToday   decimal.Decimal
	PendingCount int
	TopItem      *TopItem
}

type GetSupplyNodeAnalyticsQueryHandler struct {
	orders ports.OrderRepository
	clock  Clock
}

func NewGetSupplyNodeAnalyticsQueryHandler(orders ports.OrderRepository, clock Clock) GetSupplyNodeAnalyticsQueryHandler {
	return GetSupplyNodeAnalyticsQueryHandler{orders: orders, clock: clock}
}

func (h GetSupplyNodeAnalyticsQueryHandler) Handle(
	ctx context.Context,
	query GetSupplyNodeAnalyticsQuery,
) (SupplyNodeAnalytics, error) {
	if err := query.Validate(); err != nil {
		return SupplyNodeAnalytics{}, err
	}

	nodeID := query.SupplyNodeID()
	orders, err := h.orders.Query(ctx, ports.OrderFilter{SupplyNodeID: &nodeID}, ports.NewestFirst)
	if err != nil {
		return SupplyNodeAnalytics{}, err
	}

	today := startOfDay(h.clock.now())
	quantities := make(map[string]int)
	var analytics SupplyNodeAnalytics
	for _, o := range orders {
		switch o.Status() {
		case order.Pending:
			analytics.PendingCount++
		case order.Delivered:
			if o.DeliveredAt() != nil && !o.DeliveredAt().Before(today) {
				analytics.SalesToday = analytics.SalesToday.Add(o.TotalAmount())
			}
		}
		for _, it := range o.Items() {
			quantities[it.Name()] += it.Quantity()
		}
	}
	analytics.TopItem = topItem(quantities)
	return analytics, nil
}

// topItem picks the highest quantity; ties go to the alphabetically first name.
func topItem(quantities map[string]int) *TopItem {
	names := make([]string, 0, len(quantities))
	for name := range quantities {
		names = append(names, name)
	}
	slices.Sort(names)

	var best *TopItem
	for _, name := range names {
		if best == nil || quantities[name] > best.Quantity {
			best = &TopItem{Name: name, Quantity: quantities[name]}
		}
	}
	return best
}
