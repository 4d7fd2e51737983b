package jobs

import (
	"context"
	"log/slog"
	"time"

	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/ports"
)

// StaleDeliveryJob reports orders that have been out for delivery longer than
// the threshold. It never changes them; recovering a stuck delivery is a
// manual operation.
type StaleDeliveryJob struct {
	orders ports.OrderRepository
	after  time.Duration
	clock  func() time.Time
	logger *slog.Logger
}

func NewStaleDeliveryJob(
	orders ports.OrderRepository,
	after time.Duration,
	clock func() time.Time,
	logger *slog.Logger,
) *StaleDeliveryJob {
	if clock == nil {
		clock = time.Now
	}
	return &StaleDeliveryJob{
		orders: orders,
		after:  after,
		clock:  clock,
		logger: logger.With("component", "stale_delivery_job"),
	}
}

func (j *StaleDeliveryJob) Name() string { return "stale_delivery" }

// Run returns the number of stale deliveries found.
func (j *StaleDeliveryJob) Run(ctx context.Context) (int, error) {
	now := j.clock()
	cutoff := now.Add(-j.after)
	stale, err := j.orders.Query(ctx, ports.OrderFilter{
		Statuses:       []order.Status{order.OutForDelivery},
		AcceptedBefore: &cutoff,
	}, ports.OrderSort{Field: ports.SortByAcceptedAt})
	if err != nil {
		return 0, err
	}

	for _, o := range stale {
		attrs := []any{
			"order_id", o.ID().String(),
			"supply_node_id", o.SupplyNodeID().String(),
			"picked_up", o.PickedUp(),
		}
		if c := o.Courier(); c != nil {
			attrs = append(attrs, "courier_id", c.String())
		}
		if at := o.AcceptedAt(); at != nil {
			attrs = append(attrs, "out_for", now.Sub(*at).Round(time.Minute).String())
		}
		j.logger.WarnContext(ctx, "Delivery is stale", attrs...)
	}
	return len(stale), nil
}
