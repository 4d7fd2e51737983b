package jobs

import (
	"context"
	"log/slog"

	"dispatch/internal/core/application/notifications"
	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/ports"
)

// ReassignmentJob retries courier assignment for ready orders that no courier
// was found for when they became ready. Oldest ready orders go first. Every
// assignment it makes is announced like the one made when the order became
// ready.
type ReassignmentJob struct {
	orders    ports.OrderRepository
	handler   commands.AssignCourierCommandHandler
	publisher notifications.Publisher
	logger    *slog.Logger
}

func NewReassignmentJob(
	orders ports.OrderRepository,
	handler commands.AssignCourierCommandHandler,
	publisher notifications.Publisher,
	logger *slog.Logger,
) *ReassignmentJob {
	return &ReassignmentJob{
		orders:    orders,
		handler:   handler,
		publisher: publisher,
		logger:    logger.With("component", "reassignment_job"),
	}
}

func (j *ReassignmentJob) Name() string { return "reassignment" }

// Run makes one pass and returns how many orders got a courier. A failure on
// one order is logged and does not stop the pass.
func (j *ReassignmentJob) Run(ctx context.Context) (int, error) {
	pending, err := j.orders.Query(ctx, ports.OrderFilter{
		Statuses:   []order.Status{order.Ready},
		Unassigned: true,
	}, ports.OrderSort{Field: ports.SortByReadyAt})
	if err != nil {
		return 0, err
	}

	assigned := 0
	for _, o := range pending {
		if err := ctx.Err(); err != nil {
			return assigned, err
		}

		cmd, err := commands.NewAssignCourierCommand(o.ID())
		if err != nil {
			return assigned, err
		}
		result, err := j.handler.Handle(ctx, cmd)
		if err != nil {
			j.logger.ErrorContext(ctx, "Reassignment failed", "order_id", o.ID().String(), "error", err)
			continue
		}
		if result.Assigned {
			assigned++
			j.publisher.Publish(ctx, notifications.MarkedReady, result.Order)
		}
	}

	if assigned > 0 {
		j.logger.InfoContext(ctx, "Reassignment pass finished", "pending", len(pending), "assigned", assigned)
	}
	return assigned, nil
}
