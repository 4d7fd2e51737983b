// Package courier provides the Courier aggregate: a delivery account with an
// online flag and an optional last-known position.
//
// Key business rules:
//   - Couriers must have a valid identifier and a non-empty name
//   - Only the courier itself writes its position and online flag
//   - A courier is dispatchable when online and its position is known
package courier
