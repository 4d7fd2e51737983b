package commands

import (
	"context"

	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/ports"
)

// CourierPresenceCommandHandler writes a courier's own position and online
// flag. These are the only writes to the courier directory.
type CourierPresenceCommandHandler struct {
	couriers ports.CourierDirectory
}

func NewCourierPresenceCommandHandler(couriers ports.CourierDirectory) CourierPresenceCommandHandler {
	return CourierPresenceCommandHandler{couriers: couriers}
}

func (h CourierPresenceCommandHandler) UpdateLocation(ctx context.Context, cmd UpdateCourierLocationCommand) (*courier.Courier, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	if err := h.couriers.UpdateLocation(ctx, cmd.CourierID(), cmd.Location()); err != nil {
		return nil, err
	}
	return h.couriers.Get(ctx, cmd.CourierID())
}

func (h CourierPresenceCommandHandler) SetOnline(ctx context.Context, cmd SetCourierOnlineCommand) (*courier.Courier, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	if err := h.couriers.SetOnline(ctx, cmd.CourierID(), cmd.Online()); err != nil {
		return nil, err
	}
	return h.couriers.Get(ctx, cmd.CourierID())
}
