// Package notifications turns accepted order transitions into lifecycle events
// and fans them out to the local observer groups and the external event bus.
package notifications

import "dispatch/internal/core/ports"

// Transition identifies an accepted change in an order's lifecycle.
type Transition int

const (
	Created Transition = iota + 1
	MarkedReady
	Rejected
	Accepted
	PickedUp
	Delivered
)

const (
	TopicOrderCreated     = "order.created"
	TopicStatusUpdated    = "order.status.updated"
	TopicDeliveryAccepted = "order.delivery.accepted"
	TopicDeliveryPickedUp = "order.delivery.picked-up"
	TopicOrderDelivered   = "order.delivered"
)

// Fanout declares the topic of a transition and which observer groups hear it.
// The event bus receives every transition.
type Fanout struct {
	Topic       string
	SupplyNode  bool
	Requester   bool
	CourierPool bool
}

// Groups lists the observer groups the fan-out reaches.
func (f Fanout) Groups() []ports.ObserverGroup {
	var groups []ports.ObserverGroup
	if f.SupplyNode {
		groups = append(groups, ports.SupplyNodeObservers)
	}
	if f.Requester {
		groups = append(groups, ports.RequesterObservers)
	}
	if f.CourierPool {
		groups = append(groups, ports.CourierPool)
	}
	return groups
}

var routes = map[Transition]Fanout{
	Created:     {Topic: TopicOrderCreated, SupplyNode: true, Requester: true},
	MarkedReady: {Topic: TopicStatusUpdated, SupplyNode: true, Requester: true, CourierPool: true},
	Rejected:    {Topic: TopicStatusUpdated, SupplyNode: true, Requester: true},
	Accepted:    {Topic: TopicDeliveryAccepted, SupplyNode: true, Requester: true, CourierPool: true},
	PickedUp:    {Topic: TopicDeliveryPickedUp, SupplyNode: true, Requester: true, CourierPool: true},
	Delivered:   {Topic: TopicOrderDelivered, SupplyNode: true, Requester: true, CourierPool: true},
}

// Route returns the fan-out declared for t.
func Route(t Transition) (Fanout, bool) {
	f, ok := routes[t]
	return f, ok
}

func (t Transition) String() string {
	switch t {
	case Created:
		return "created"
	case MarkedReady:
		return "ready"
	case Rejected:
		return "rejected"
	case Accepted:
		return "accepted"
	case PickedUp:
		return "picked-up"
	case Delivered:
		return "delivered"
	default:
		return "unknown"
	}
}
