package queries

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrGetCourierReadyListQueryIsNotConstructed = errors.New(
	"GetCourierReadyListQuery must be created via NewGetCourierReadyListQuery constructor",
)

// GetCourierReadyListQuery lists the orders a courier can work on: ready or
// out-for-delivery orders that are unassigned or assigned to that courier.
//
// Example:
//
//	query, err := NewGetCourierReadyListQuery(courierID)
//	if err != nil {
//	    return err
//	}
//	list, err := handler.Handle(ctx, query)
type GetCourierReadyListQuery struct {
	courierID kernel.UUID
	guard     guard.ConstructorGuard
}

func NewGetCourierReadyListQuery(courierID kernel.UUID) (GetCourierReadyListQuery, error) {
	if err := courierID.Validate(); err != nil {
		return GetCourierReadyListQuery{}, err
	}
	return GetCourierReadyListQuery{courierID: courierID, guard: guard.NewConstructorGuard()}, nil
}

func (q GetCourierReadyListQuery) Validate() error {
	return q.guard.Validate(ErrGetCourierReadyListQueryIsNotConstructed)
}

func (q GetCourierReadyListQuery) CourierID() kernel.UUID {
	return q.courierID
}
