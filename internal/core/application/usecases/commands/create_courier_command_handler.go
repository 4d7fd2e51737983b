package commands

import (
	"context"

	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/ports"
)

// CreateCourierCommandHandler registers courier accounts.
type CreateCourierCommandHandler struct {
	couriers ports.CourierDirectory
}

func NewCreateCourierCommandHandler(couriers ports.CourierDirectory) CreateCourierCommandHandler {
	return CreateCourierCommandHandler{couriers: couriers}
}

func (h CreateCourierCommandHandler) Handle(ctx context.Context, cmd CreateCourierCommand) (*courier.Courier, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	c, err := courier.NewCourier(cmd.CourierID(), cmd.Name())
	if err != nil {
		return nil, err
	}

	if err := h.couriers.Add(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}
