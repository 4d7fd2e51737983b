// Package services provides the stateless domain services of the dispatch engine.
//
// The package includes:
//   - OrderDispatcher: selects the nearest dispatchable courier and soft-assigns it
//   - EarningsCalculator: turns a distance into a courier payout breakdown
//   - ETAEstimator: turns a distance into a whole-minute arrival estimate
//
// Earnings and ETA are computed with one formula for previews and settlement;
// only the moment the distance is sampled differs.
package services
