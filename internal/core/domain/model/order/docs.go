// Package order provides the Order aggregate of the dispatch engine: one bundle
// of items from one supply node for one requester.
//
// The package includes:
//   - Order: the aggregate root with identity, items, courier reference and lifecycle
//   - Item: a line item priced with decimals
//   - Status: the lifecycle state machine
//   - Earnings: a courier payout breakdown, frozen on the order at delivery
//
// Key business rules:
//   - Status only moves forward: Pending -> Ready -> OutForDelivery -> Delivered, or Pending -> Rejected
//   - The courier reference is set at most once; a soft assignment may only be claimed by its courier
//   - Pickup is a flag inside OutForDelivery and never reassigns the order
//   - Settlement is written once, at delivery
//
// Version is the optimistic concurrency token. Repositories bump it on every
// write and match it together with the status in conditional writes.
package order
