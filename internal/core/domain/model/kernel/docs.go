// Package kernel provides the shared value objects of the dispatch domain.
//
// The package includes:
//   - UUID: identifier value object with validation and a total order
//   - Location: latitude/longitude pair with haversine distance
//   - Role: the account kind stored in the shared account directory
//
// Absent coordinates are modelled as nil *Location. Distance between an absent
// coordinate and anything else is the Unreachable sentinel.
package kernel
