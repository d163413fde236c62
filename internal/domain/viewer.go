package domain

// Viewer is the authenticated user browsing the discovery feed.
// It is read-only input to annotation and filtering.
type Viewer struct {
	ID       string
	Location *Coordinates
	Friends  map[string]struct{}
}

// IsFriend reports whether userID is in the viewer's accepted friend set.
func (v Viewer) IsFriend(userID string) bool {
	_, ok := v.Friends[userID]
	return ok
}

// AnnotatedTrip is a Trip plus values derived for one viewer.
// DistanceKm is nil when either side has no coordinates; it is never persisted.
type AnnotatedTrip struct {
	Trip
	DistanceKm     *float64
	PosterIsFriend bool
}

// EffectiveDistanceKm returns the computed distance, or 0 when unavailable.
// The filter engine compares against this value.
func (a AnnotatedTrip) EffectiveDistanceKm() float64 {
	if a.DistanceKm == nil {
		return 0
	}
	return *a.DistanceKm
}
