package ports

import "context"

// Event is a lifecycle notification: a topic plus a JSON-serializable payload.
type Event struct {
	Topic   string
	Payload any
}

// EventBus publishes events to external consumers, at least once.
type EventBus interface {
	Publish(ctx context.Context, event Event) error
}

// ObserverGroup names one of the local audiences of lifecycle events.
type ObserverGroup string

const (
	SupplyNodeObservers ObserverGroup = "supply_node"
	RequesterObservers  ObserverGroup = "requester"
	CourierPool         ObserverGroup = "courier_pool"
)

// Observers delivers events to connected local clients. An empty recipient
// broadcasts to the whole group.
type Observers interface {
	Notify(ctx context.Context, group ObserverGroup, recipient string, event Event) error
}
