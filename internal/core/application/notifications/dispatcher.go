package notifications

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/ports"

	"golang.org/x/sync/errgroup"
)

const (
	maxConcurrentTargets = 4
	defaultQueueSize     = 256
)

// Publisher is the narrow interface use cases depend on.
type Publisher interface {
	Publish(ctx context.Context, t Transition, o *order.Order)
}

// Dispatcher fans a committed transition out to the observer groups declared
// by Route and to the event bus. It never fails the caller: delivery errors
// are logged and dropped.
//
// Publish only enqueues. One worker drains the queue in publish order, so
// events of one order reach every target in lifecycle order. Close drains
// what is queued and stops the worker.
type Dispatcher struct {
	observers ports.Observers
	bus       ports.EventBus
	logger    *slog.Logger

	queue  chan delivery
	done   chan struct{}
	mu     sync.RWMutex
	closed bool
}

type delivery struct {
	ctx        context.Context
	transition Transition
	order      *order.Order
	event      ports.Event
}

var _ Publisher = (*Dispatcher)(nil)

// NewDispatcher accepts nil observers or bus; the missing side is skipped.
// Callers must Close the dispatcher on shutdown.
func NewDispatcher(observers ports.Observers, bus ports.EventBus, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	d := &Dispatcher{
		observers: observers,
		bus:       bus,
		logger:    logger.With("component", "NotificationDispatcher"),
		queue:     make(chan delivery, defaultQueueSize),
		done:      make(chan struct{}),
	}
	go d.run()
	return d
}

// Publish builds the event and queues it. It blocks only while the queue is
// full. Cancellation of ctx does not abort the fan-out; events published after
// Close are dropped.
func (d *Dispatcher) Publish(ctx context.Context, t Transition, o *order.Order) {
	if _, ok := Route(t); !ok {
		d.logger.WarnContext(ctx, "no route for transition", "transition", t.String())
		return
	}
	event, ok := NewEvent(t, o)
	if !ok {
		return
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.logger.WarnContext(ctx, "event dropped after close", "topic", event.Topic, "order_id", o.ID().String())
		return
	}
	d.queue <- delivery{ctx: context.WithoutCancel(ctx), transition: t, order: o, event: event}
}

// Close waits for queued events to be delivered. It is safe to call twice.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()
	<-d.done
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for item := range d.queue {
		d.fanOut(item)
	}
}

func (d *Dispatcher) fanOut(item delivery) {
	ctx, o, event := item.ctx, item.order, item.event
	route, _ := Route(item.transition)

	var g errgroup.Group
	g.SetLimit(maxConcurrentTargets)

	run := func(target string, fn func() error) {
		g.Go(func() error {
			if err := fn(); err != nil {
				d.logger.WarnContext(ctx, "notification failed",
					"target", target,
					"topic", event.Topic,
					"order_id", o.ID().String(),
					"error", err,
				)
				return fmt.Errorf("%s: %w", target, err)
			}
			return nil
		})
	}

	if d.observers != nil {
		for _, group := range route.Groups() {
			recipient := recipientFor(group, o)
			run(string(group), func() error {
				return d.observers.Notify(ctx, group, recipient, event)
			})
		}
	}
	if d.bus != nil {
		run("event_bus", func() error {
			return d.bus.Publish(ctx, event)
		})
	}

	if err := g.Wait(); err != nil {
		d.logger.ErrorContext(ctx, "fan-out incomplete",
			"transition", item.transition.String(),
			"order_id", o.ID().String(),
			"error", err,
		)
		return
	}

	d.logger.DebugContext(ctx, "event published", "topic", event.Topic, "order_id", o.ID().String())
}

func recipientFor(group ports.ObserverGroup, o *order.Order) string {
	switch group {
	case ports.SupplyNodeObservers:
		return o.SupplyNodeID().String()
	case ports.RequesterObservers:
		return o.RequesterID().String()
	default:
		return ""
	}
}
