package services

import (
	"math"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
)

const DefaultAverageSpeedKmph = 25.0

// ETAEstimator computes eta(km) = max(1, round(km / speed * 60)) minutes.
type ETAEstimator struct {
	averageSpeedKmph float64
}

func NewETAEstimator(averageSpeedKmph float64) (ETAEstimator, error) {
	if math.IsNaN(averageSpeedKmph) || math.IsInf(averageSpeedKmph, 0) || averageSpeedKmph <= 0 {
		return ETAEstimator{}, errs.NewValueIsOutOfRangeError("average speed", averageSpeedKmph, "0 exclusive", "unbounded")
	}
	return ETAEstimator{averageSpeedKmph: averageSpeedKmph}, nil
}

// Minutes returns the estimate, or false when distanceKm is unreachable.
func (e ETAEstimator) Minutes(distanceKm float64) (int, bool) {
	if kernel.IsUnreachable(distanceKm) || math.IsNaN(distanceKm) || distanceKm < 0 {
		return 0, false
	}

	minutes := int(math.Round(distanceKm / e.averageSpeedKmph * 60))
	return max(1, minutes), true
}
