package services

import (
	"math"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

const moneyPlaces = 2

var (
	DefaultBaseEarning  = decimal.NewFromInt(30)
	DefaultPerKmEarning = decimal.NewFromInt(5)
)

// EarningsCalculator computes earning(km) = base + perKm * km.
//
// Unreachable distances count as zero kilometres, so the base earning still
// applies. Amounts are rounded half away from zero to two places.
type EarningsCalculator struct {
	base  decimal.Decimal
	perKm decimal.Decimal
}

func NewEarningsCalculator(base, perKm decimal.Decimal) (EarningsCalculator, error) {
	if base.IsNegative() {
		return EarningsCalculator{}, errs.NewValueIsOutOfRangeError("base earning", base, 0, "unbounded")
	}
	if perKm.IsNegative() {
		return EarningsCalculator{}, errs.NewValueIsOutOfRangeError("per km earning", perKm, 0, "unbounded")
	}
	return EarningsCalculator{base: base, perKm: perKm}, nil
}

// Calculate returns the payout breakdown for distanceKm.
func (c EarningsCalculator) Calculate(distanceKm float64) order.Earnings {
	if kernel.IsUnreachable(distanceKm) || distanceKm < 0 || math.IsNaN(distanceKm) {
		distanceKm = 0
	}

	base := c.base.Round(moneyPlaces)
	distance := c.perKm.Mul(decimal.NewFromFloat(distanceKm)).Round(moneyPlaces)

	return order.Earnings{
		DistanceKm:      distanceKm,
		BaseEarning:     base,
		DistanceEarning: distance,
		TotalEarning:    base.Add(distance),
	}
}

// Between computes earnings for the distance between two optional coordinates.
func (c EarningsCalculator) Between(from, to *kernel.Location) order.Earnings {
	return c.Calculate(kernel.Distance(from, to))
}
