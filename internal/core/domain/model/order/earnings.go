package order

import (
	"errors"
	"math"

	"dispatch/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

// Earnings is the courier payout breakdown for one order. The same type carries
// the pre-acceptance preview and the settlement frozen at delivery.
type Earnings struct {
	DistanceKm      float64
	BaseEarning     decimal.Decimal
	DistanceEarning decimal.Decimal
	TotalEarning    decimal.Decimal
}

// Validate checks the breakdown is internally consistent.
func (e Earnings) Validate() error {
	var errList []error
	if math.IsNaN(e.DistanceKm) || math.IsInf(e.DistanceKm, 0) || e.DistanceKm < 0 {
		errList = append(errList, errs.NewValueIsInvalidError("distance km"))
	}
	if e.BaseEarning.IsNegative() || e.DistanceEarning.IsNegative() {
		errList = append(errList, errs.NewValueIsInvalidError("earning"))
	}
	if !e.BaseEarning.Add(e.DistanceEarning).Equal(e.TotalEarning) {
		errList = append(errList, errs.NewValueIsInvalidError("total earning"))
	}
	return errors.Join(errList...)
}
