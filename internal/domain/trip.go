// Package domain contains the core data types for the Trip Companion backend.
// Besides uuid it has no external dependencies and is imported by every other
// internal package (repo, service, discovery, handler).
package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Coordinates is a latitude/longitude pair in decimal degrees.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Validate reports whether the pair lies within lat [-90,90] and lng [-180,180].
func (c Coordinates) Validate() error {
	if c.Lat < -90 || c.Lat > 90 {
		return fmt.Errorf("%w: latitude must be between -90 and 90", ErrValidation)
	}
	if c.Lng < -180 || c.Lng > 180 {
		return fmt.Errorf("%w: longitude must be between -180 and 180", ErrValidation)
	}
	return nil
}

// Location is where a trip takes place. Coordinates is nil when the poster
// only supplied a free-text address.
type Location struct {
	Address     string       `json:"address"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
}

// Poster is the public profile of the user who created a trip.
// Age is nil when the user never filled it in.
type Poster struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar,omitempty"`
	Age       *int   `json:"age,omitempty"`
}

// Trip is an outing posted by a user looking for companions.
// Trips are fetched wholesale and treated as immutable while a discovery
// request is being served.
type Trip struct {
	ID               uuid.UUID `json:"id"`
	Name             string    `json:"name"`
	Location         *Location `json:"location,omitempty"`
	StartTime        time.Time `json:"start_time"`
	EndTime          time.Time `json:"end_time"`
	MaxCompanions    int       `json:"max_companions"`
	DesiredInterests []string  `json:"desired_interests"`
	CreatedBy        string    `json:"created_by"`
	Poster           Poster    `json:"poster"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Coordinates returns the trip's coordinates, or nil when it has none.
func (t Trip) Coordinates() *Coordinates {
	if t.Location == nil {
		return nil
	}
	return t.Location.Coordinates
}

// PosterAge returns the poster's age, or nil when unknown.
func (t Trip) PosterAge() *int {
	return t.Poster.Age
}
