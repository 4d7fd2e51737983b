package queries

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/pkg/guard"
)

var (
	ErrGetSupplyNodeOrdersQueryIsNotConstructed = errors.New(
		"GetSupplyNodeOrdersQuery must be created via NewGetSupplyNodeOrdersQuery constructor",
	)
	ErrGetSupplyNodeAnalyticsQueryIsNotConstructed = errors.New(
		"GetSupplyNodeAnalyticsQuery must be created via NewGetSupplyNodeAnalyticsQuery constructor",
	)
)

// GetSupplyNodeOrdersQuery lists a supply node's orders, newest first,
// optionally narrowed to some statuses.
type GetSupplyNodeOrdersQuery struct {
	supplyNodeID kernel.UUID
	statuses     []order.Status
	guard        guard.ConstructorGuard
}

func NewGetSupplyNodeOrdersQuery(supplyNodeID kernel.UUID, statuses ...order.Status) (GetSupplyNodeOrdersQuery, error) {
	if err := supplyNodeID.Validate(); err != nil {
		return GetSupplyNodeOrdersQuery{}, err
	}
	for _, s := range statuses {
		if err := s.Validate(); err != nil {
			return GetSupplyNodeOrdersQuery{}, err
		}
	}
	return GetSupplyNodeOrdersQuery{
		supplyNodeID: supplyNodeID,
		statuses:     statuses,
		guard:        guard.NewConstructorGuard(),
	}, nil
}

func (q GetSupplyNodeOrdersQuery) Validate() error {
	return q.guard.Validate(ErrGetSupplyNodeOrdersQueryIsNotConstructed)
}

func (q GetSupplyNodeOrdersQuery) SupplyNodeID() kernel.UUID {
	return q.supplyNodeID
}

func (q GetSupplyNodeOrdersQuery) Statuses() []order.Status {
	return q.statuses
}

// GetSupplyNodeAnalyticsQuery reports today's sales, the pending backlog and
// the best-selling item of a supply node.
type GetSupplyNodeAnalyticsQuery struct {
	supplyNodeID kernel.UUID
	guard        guard.ConstructorGuard
}

func NewGetSupplyNodeAnalyticsQuery(supplyNodeID kernel.UUID) (GetSupplyNodeAnalyticsQuery, error) {
	if err := supplyNodeID.Validate(); err != nil {
		return GetSupplyNodeAnalyticsQuery{}, err
	}
	return GetSupplyNodeAnalyticsQuery{supplyNodeID: supplyNodeID, guard: guard.NewConstructorGuard()}, nil
}

func (q GetSupplyNodeAnalyticsQuery) Validate() error {
	return q.guard.Validate(ErrGetSupplyNodeAnalyticsQueryIsNotConstructed)
}

func (q GetSupplyNodeAnalyticsQuery) SupplyNodeID() kernel.UUID {
	return q.supplyNodeID
}
