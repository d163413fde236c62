// Package discovery turns a fetched trip list into the viewer's discovery
// feed: it annotates trips with viewer-relative values, filters them by the
// active criteria and optionally ranks them by distance.
//
// Everything here is pure and synchronous; callers fetch trips first.
package discovery

import (
	"fmt"
	"sort"

	"github.com/pkordes/trip-companion/backend/internal/domain"
	"github.com/pkordes/trip-companion/backend/internal/geo"
)

// DistanceUnavailable is the label shown when no distance can be computed.
const DistanceUnavailable = "Distance unavailable"

// Annotate pairs every trip with its distance from the viewer and whether
// the poster is one of the viewer's friends. Order is preserved.
func Annotate(trips []domain.Trip, viewer domain.Viewer) []domain.AnnotatedTrip {
	out := make([]domain.AnnotatedTrip, len(trips))
	for i, t := range trips {
		out[i] = domain.AnnotatedTrip{
			Trip:           t,
			PosterIsFriend: viewer.IsFriend(t.CreatedBy),
		}
		if d, ok := geo.Between(viewer.Location, t.Coordinates()); ok {
			out[i].DistanceKm = &d
		}
	}
	return out
}

// SortByDistance orders trips nearest first, in place. Trips without a
// distance go last; ties keep their input order.
func SortByDistance(trips []domain.AnnotatedTrip) {
	sort.SliceStable(trips, func(i, j int) bool {
		a, b := trips[i].DistanceKm, trips[j].DistanceKm
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return *a < *b
		}
	})
}

// DistanceLabel renders a trip's distance for display.
func DistanceLabel(t domain.AnnotatedTrip) string {
	if t.DistanceKm == nil {
		return DistanceUnavailable
	}
	return fmt.Sprintf("%.0f km away", *t.DistanceKm)
}
