// Package geo computes great-circle distances between coordinates.
package geo

import (
	"math"

	"github.com/pkordes/trip-companion/backend/internal/domain"
)

// EarthRadiusKm is the mean Earth radius used by the haversine formula.
const EarthRadiusKm = 6371.0

// DistanceKm returns the haversine distance between two points in
// kilometres, rounded to the nearest whole kilometre.
//
// It is total: a NaN input yields 0 instead of an error, so callers that
// need to tell "0 km" from "unknown" should use Between.
func DistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	for _, v := range [...]float64{lat1, lon1, lat2, lon2} {
		if math.IsNaN(v) {
			return 0
		}
	}

	dLat := toRadians(lat2 - lat1)
	dLon := toRadians(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	// Float error can push a slightly outside [0,1] near antipodes.
	a = math.Min(1, math.Max(0, a))
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return math.Round(EarthRadiusKm * c)
}

// Between returns the distance between a and b and true, or 0 and false
// when either point is missing.
func Between(a, b *domain.Coordinates) (float64, bool) {
	if a == nil || b == nil {
		return 0, false
	}
	if math.IsNaN(a.Lat) || math.IsNaN(a.Lng) || math.IsNaN(b.Lat) || math.IsNaN(b.Lng) {
		return 0, false
	}
	return DistanceKm(a.Lat, a.Lng, b.Lat, b.Lng), true
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
