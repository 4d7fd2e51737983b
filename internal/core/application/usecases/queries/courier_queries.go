package queries

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

var (
	ErrGetCourierEarningsQueryIsNotConstructed = errors.New(
		"GetCourierEarningsQuery must be created via NewGetCourierEarningsQuery constructor",
	)
	ErrGetCourierDeliveryHistoryQueryIsNotConstructed = errors.New(
		"GetCourierDeliveryHistoryQuery must be created via NewGetCourierDeliveryHistoryQuery constructor",
	)
)

// GetCourierEarningsQuery summarizes a courier's settled deliveries.
type GetCourierEarningsQuery struct {
	courierID kernel.UUID
	guard     guard.ConstructorGuard
}

func NewGetCourierEarningsQuery(courierID kernel.UUID) (GetCourierEarningsQuery, error) {
	if err := courierID.Validate(); err != nil {
		return GetCourierEarningsQuery{}, err
	}
	return GetCourierEarningsQuery{courierID: courierID, guard: guard.NewConstructorGuard()}, nil
}

func (q GetCourierEarningsQuery) Validate() error {
	return q.guard.Validate(ErrGetCourierEarningsQueryIsNotConstructed)
}

func (q GetCourierEarningsQuery) CourierID() kernel.UUID {
	return q.courierID
}

// GetCourierDeliveryHistoryQuery lists a courier's delivered orders, most
// recent delivery first. A zero limit returns everything.
type GetCourierDeliveryHistoryQuery struct {
	courierID kernel.UUID
	limit     int
	guard     guard.ConstructorGuard
}

func NewGetCourierDeliveryHistoryQuery(courierID kernel.UUID, limit int) (GetCourierDeliveryHistoryQuery, error) {
	if err := courierID.Validate(); err != nil {
		return GetCourierDeliveryHistoryQuery{}, err
	}
	if limit < 0 {
		return GetCourierDeliveryHistoryQuery{}, errs.NewValueIsOutOfRangeError("limit", limit, 0, "unbounded")
	}
	return GetCourierDeliveryHistoryQuery{
		courierID: courierID,
		limit:     limit,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

func (q GetCourierDeliveryHistoryQuery) Validate() error {
	return q.guard.Validate(ErrGetCourierDeliveryHistoryQueryIsNotConstructed)
}

func (q GetCourierDeliveryHistoryQuery) CourierID() kernel.UUID {
	return q.courierID
}

func (q GetCourierDeliveryHistoryQuery) Limit() int {
	return q.limit
}
