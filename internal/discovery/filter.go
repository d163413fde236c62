package discovery

import "github.com/pkordes/trip-companion/backend/internal/domain"

// FilterTrips returns the trips the viewer should see under criteria.
//
// Stages run in order, each narrowing the set:
//  1. the viewer's own trips are always dropped;
//  2. when a distance bound is set, trips outside [min, max] are dropped,
//     with an unavailable distance counting as 0;
//  3. when the age range is not Any, trips whose poster age is unknown or
//     outside the range are dropped.
//
// The result keeps input order and is never nil.
func FilterTrips(trips []domain.AnnotatedTrip, viewerID string, criteria domain.FilterCriteria) []domain.AnnotatedTrip {
	out := make([]domain.AnnotatedTrip, 0, len(trips))
	for _, t := range trips {
		if t.CreatedBy == viewerID {
			continue
		}
		if !withinDistance(t, criteria) {
			continue
		}
		if !matchesAge(t, criteria.AgeRange) {
			continue
		}
		out = append(out, t)
	}
	return out
}

func withinDistance(t domain.AnnotatedTrip, c domain.FilterCriteria) bool {
	if !c.HasDistanceBounds() {
		return true
	}
	lo, hi := c.DistanceWindow()
	d := t.EffectiveDistanceKm()
	return d >= lo && d <= hi
}

func matchesAge(t domain.AnnotatedTrip, r domain.AgeRange) bool {
	if r.IsAny() {
		return true
	}
	age := t.PosterAge()
	return age != nil && r.Contains(*age)
}
