package commands

import (
	"context"

	"dispatch/internal/core/application/notifications"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/ports"
)

// PlaceOrderCommandHandler splits a checkout per supply node and stores one
// pending order for each. Supply nodes are grouped in first-seen order.
type PlaceOrderCommandHandler struct {
	orders      ports.OrderRepository
	supplyNodes ports.SupplyNodeDirectory
	publisher   notifications.Publisher
	clock       Clock
}

func NewPlaceOrderCommandHandler(
	orders ports.OrderRepository,
	supplyNodes ports.SupplyNodeDirectory,
	publisher notifications.Publisher,
	clock Clock,
) PlaceOrderCommandHandler {
	return PlaceOrderCommandHandler{
		orders:      orders,
		supplyNodes: supplyNodes,
		publisher:   publisher,
		clock:       clock,
	}
}

// Handle validates every supply node before storing anything. If a later Add
// fails, the orders already stored and announced are returned with the error.
func (h PlaceOrderCommandHandler) Handle(ctx context.Context, cmd PlaceOrderCommand) ([]*order.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	var nodeOrder []kernel.UUID
	grouped := make(map[kernel.UUID][]order.Item)
	for _, line := range cmd.Lines() {
		item, err := order.NewItem(line.Name, line.Quantity, line.UnitPrice, line.SupplyNodeID)
		if err != nil {
			return nil, err
		}
		if _, seen := grouped[line.SupplyNodeID]; !seen {
			nodeOrder = append(nodeOrder, line.SupplyNodeID)
		}
		grouped[line.SupplyNodeID] = append(grouped[line.SupplyNodeID], item)
	}

	for _, nodeID := range nodeOrder {
		if _, err := h.supplyNodes.Get(ctx, nodeID); err != nil {
			return nil, err
		}
	}

	now := h.clock.now()
	placed := make([]*order.Order, 0, len(nodeOrder))
	for _, nodeID := range nodeOrder {
		o, err := order.NewOrder(
			kernel.NewUUID(),
			cmd.RequesterID(),
			nodeID,
			grouped[nodeID],
			cmd.DeliveryLocation(),
			cmd.DeliveryAddress(),
			now,
		)
		if err != nil {
			return placed, err
		}
		if err := h.orders.Add(ctx, o); err != nil {
			return placed, err
		}
		h.publisher.Publish(ctx, notifications.Created, o)
		placed = append(placed, o)
	}

	return placed, nil
}
