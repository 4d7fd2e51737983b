package kernel

import (
	"errors"
	"fmt"
	"math"

	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

const (
	// EarthRadiusKm is the mean Earth radius used by the haversine formula.
	EarthRadiusKm = 6371.0

	MinLatitude  = -90.0
	MaxLatitude  = 90.0
	MinLongitude = -180.0
	MaxLongitude = 180.0
)

// Unreachable is the distance reported when either end has no known coordinate.
// Callers must check IsUnreachable before doing arithmetic with a distance.
var Unreachable = math.Inf(1)

// ErrLocationIsNotConstructed is returned when a Location literal bypassed NewLocation.
var ErrLocationIsNotConstructed = errs.NewValueIsRequiredError(
	"location must be created via NewLocation constructor")

// Location is an immutable latitude/longitude pair in degrees.
// An absent coordinate is modelled as a nil *Location, never as the zero value.
//
// Example:
//
//	pharmacy, err := kernel.NewLocation(12.9716, 77.5946)
//	if err != nil {
//	    return err
//	}
//	km := kernel.Distance(&pharmacy, order.DeliveryLocation())
//	if kernel.IsUnreachable(km) {
//	    // requester did not share a coordinate
//	}
type Location struct { //nolint:recvcheck //using for validation
	lat   float64
	lon   float64
	guard guard.ConstructorGuard
}

// NewLocation validates both coordinates and returns a Location.
// Latitude must lie in [-90, 90] and longitude in [-180, 180]; NaN is rejected.
func NewLocation(lat, lon float64) (Location, error) {
	loc := Location{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(loc.setLat(lat), loc.setLon(lon)); err != nil {
		return Location{}, err
	}

	return loc, nil
}

// NewLocationPtr is NewLocation for optional fields.
func NewLocationPtr(lat, lon float64) (*Location, error) {
	loc, err := NewLocation(lat, lon)
	if err != nil {
		return nil, err
	}
	return &loc, nil
}

// Validate reports whether the Location was built by NewLocation.
func (l Location) Validate() error {
	return l.guard.Validate(ErrLocationIsNotConstructed)
}

func (l Location) Lat() float64 {
	return l.lat
}

func (l Location) Lon() float64 {
	return l.lon
}

func (l Location) String() string {
	return fmt.Sprintf("Location(%.6f,%.6f)", l.lat, l.lon)
}

// IsEqual compares two constructed locations.
func (l Location) IsEqual(other Location) (bool, error) {
	if err := errors.Join(l.Validate(), other.Validate()); err != nil {
		return false, err
	}

	return l.lat == other.lat && l.lon == other.lon, nil
}

// DistanceTo returns the great-circle distance in kilometres.
// It returns Unreachable if either location was not constructed.
func (l Location) DistanceTo(other Location) float64 {
	if l.Validate() != nil || other.Validate() != nil {
		return Unreachable
	}

	toRad := func(deg float64) float64 { return deg * math.Pi / 180 }

	dLat := toRad(other.lat - l.lat)
	dLon := toRad(other.lon - l.lon)
	lat1 := toRad(l.lat)
	lat2 := toRad(other.lat)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Sin(dLon/2)*math.Sin(dLon/2)*math.Cos(lat1)*math.Cos(lat2)

	return EarthRadiusKm * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// Distance is the haversine distance between two optional coordinates.
// A nil argument yields Unreachable.
func Distance(a, b *Location) float64 {
	if a == nil || b == nil {
		return Unreachable
	}
	return a.DistanceTo(*b)
}

// IsUnreachable reports whether km is the Unreachable sentinel.
func IsUnreachable(km float64) bool {
	return math.IsInf(km, 1)
}

func (l *Location) setLat(lat float64) error {
	if math.IsNaN(lat) || lat < MinLatitude || lat > MaxLatitude {
		return errs.NewValueIsOutOfRangeError("lat", lat, MinLatitude, MaxLatitude)
	}
	l.lat = lat
	return nil
}

func (l *Location) setLon(lon float64) error {
	if math.IsNaN(lon) || lon < MinLongitude || lon > MaxLongitude {
		return errs.NewValueIsOutOfRangeError("lon", lon, MinLongitude, MaxLongitude)
	}
	l.lon = lon
	return nil
}
