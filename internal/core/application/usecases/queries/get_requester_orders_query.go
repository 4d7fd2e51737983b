package queries

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrGetRequesterOrdersQueryIsNotConstructed = errors.New(
	"GetRequesterOrdersQuery must be created via NewGetRequesterOrdersQuery constructor",
)

// GetRequesterOrdersQuery returns a requester's order history, newest first.
type GetRequesterOrdersQuery struct {
	requesterID kernel.UUID
	guard       guard.ConstructorGuard
}

func NewGetRequesterOrdersQuery(requesterID kernel.UUID) (GetRequesterOrdersQuery, error) {
	if err := requesterID.Validate(); err != nil {
		return GetRequesterOrdersQuery{}, err
	}
	return GetRequesterOrdersQuery{requesterID: requesterID, guard: guard.NewConstructorGuard()}, nil
}

func (q GetRequesterOrdersQuery) Validate() error {
	return q.guard.Validate(ErrGetRequesterOrdersQueryIsNotConstructed)
}

func (q GetRequesterOrdersQuery) RequesterID() kernel.UUID {
	return q.requesterID
}
