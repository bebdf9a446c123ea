package geo

import (
	"math"

	"github.com/golang/geo/s2"
)

// EarthRadiusMeters is the Earth's mean radius.
const EarthRadiusMeters = 6371000.0

// DistanceMeters returns the great-circle distance between two points given
// in degrees.
func DistanceMeters(lat1, lng1, lat2, lng2 float64) float64 {
	p1 := s2.LatLngFromDegrees(lat1, lng1)
	p2 := s2.LatLngFromDegrees(lat2, lng2)
	return p1.Distance(p2).Radians() * EarthRadiusMeters
}

// RoundCoordinate rounds a degree value to the given number of decimals.
// Five decimals is roughly one meter.
func RoundCoordinate(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}
