package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pkordes/trip-companion/backend/internal/auth"
	"github.com/pkordes/trip-companion/backend/internal/domain"
	"github.com/pkordes/trip-companion/backend/internal/schedule"
)

// CreateTripRequest is the body of POST /trips. Times accept RFC 3339
// strings or epoch milliseconds, the formats mobile clients send.
type CreateTripRequest struct {
	Name             string           `json:"name"`
	Location         *LocationRequest `json:"location"`
	StartTime        json.RawMessage  `json:"start_time"`
	EndTime          json.RawMessage  `json:"end_time"`
	MaxCompanions    int              `json:"max_companions"`
	DesiredInterests []string         `json:"desired_interests"`
}

// LocationRequest carries an address and optional coordinates. Lat and Lng
// must be given together.
type LocationRequest struct {
	Address string   `json:"address"`
	Lat     *float64 `json:"lat"`
	Lng     *float64 `json:"lng"`
}

// Trip is the API representation of a trip.
type Trip struct {
	ID               uuid.UUID `json:"id"`
	Name             string    `json:"name"`
	Location         *Location `json:"location,omitempty"`
	StartTime        time.Time `json:"start_time"`
	EndTime          time.Time `json:"end_time"`
	MaxCompanions    int       `json:"max_companions"`
	DesiredInterests []string  `json:"desired_interests"`
	Poster           Poster    `json:"poster"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Location is the API representation of a trip location.
type Location struct {
	Address string   `json:"address,omitempty"`
	Lat     *float64 `json:"lat,omitempty"`
	Lng     *float64 `json:"lng,omitempty"`
}

// Poster is the public profile shown on a trip card.
type Poster struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
	Age    *int   `json:"age,omitempty"`
}

// CreateTrip handles POST /trips. The viewer becomes the trip's poster.
func (s *Server) CreateTrip(w http.ResponseWriter, r *http.Request) {
	viewerID, _ := auth.ViewerID(r.Context())

	var body CreateTripRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, codeValidation, "request body too large")
			return
		}
		requestError(w, "request body must be a JSON object")
		return
	}

	trip, err := requestToTrip(body)
	if err != nil {
		requestError(w, err.Error())
		return
	}
	trip.CreatedBy = viewerID

	created, err := s.trips.Create(r.Context(), trip)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, codeNotFound, "poster profile not found")
			return
		}
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, tripToResponse(created))
}

// GetTrip handles GET /trips/{id}.
func (s *Server) GetTrip(w http.ResponseWriter, r *http.Request) {
	id, ok := tripID(w, r)
	if !ok {
		return
	}

	trip, err := s.trips.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, codeNotFound, "trip not found")
			return
		}
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tripToResponse(trip))
}

// DeleteTrip handles DELETE /trips/{id}. Only the trip's poster may delete it.
func (s *Server) DeleteTrip(w http.ResponseWriter, r *http.Request) {
	id, ok := tripID(w, r)
	if !ok {
		return
	}
	viewerID, _ := auth.ViewerID(r.Context())

	if err := s.trips.Delete(r.Context(), id, viewerID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, codeNotFound, "trip not found")
			return
		}
		s.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- mapping helpers --------------------------------------------------------

// tripID parses the {id} path parameter, writing a 422 when it is not a UUID.
func tripID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		requestError(w, "id must be a UUID")
		return uuid.Nil, false
	}
	return id, true
}

// requestToTrip converts a CreateTripRequest body into a domain.Trip.
// Returns an error if the times or coordinates are malformed; business
// rules are left to the service.
func requestToTrip(body CreateTripRequest) (domain.Trip, error) {
	start, ok := rawInstant(body.StartTime)
	if !ok {
		return domain.Trip{}, errors.New("start_time must be an RFC 3339 timestamp or epoch milliseconds")
	}
	end, ok := rawInstant(body.EndTime)
	if !ok {
		return domain.Trip{}, errors.New("end_time must be an RFC 3339 timestamp or epoch milliseconds")
	}

	t := domain.Trip{
		Name:             body.Name,
		StartTime:        start,
		EndTime:          end,
		MaxCompanions:    body.MaxCompanions,
		DesiredInterests: body.DesiredInterests,
	}
	if body.Location != nil {
		loc := &domain.Location{Address: body.Location.Address}
		switch {
		case body.Location.Lat != nil && body.Location.Lng != nil:
			loc.Coordinates = &domain.Coordinates{Lat: *body.Location.Lat, Lng: *body.Location.Lng}
		case body.Location.Lat != nil || body.Location.Lng != nil:
			return domain.Trip{}, errors.New("location.lat and location.lng must be given together")
		}
		t.Location = loc
	}
	return t, nil
}

// rawInstant accepts a JSON string or number and parses it as an instant.
func rawInstant(raw json.RawMessage) (time.Time, bool) {
	if len(raw) == 0 {
		return time.Time{}, false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		s = string(raw)
	}
	return schedule.ParseInstant(s)
}

// tripToResponse converts a domain.Trip into its API representation.
func tripToResponse(t domain.Trip) Trip {
	resp := Trip{
		ID:               t.ID,
		Name:             t.Name,
		StartTime:        t.StartTime,
		EndTime:          t.EndTime,
		MaxCompanions:    t.MaxCompanions,
		DesiredInterests: t.DesiredInterests,
		Poster: Poster{
			ID:     t.Poster.ID,
			Name:   t.Poster.Name,
			Avatar: t.Poster.AvatarURL,
			Age:    t.Poster.Age,
		},
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
	if resp.DesiredInterests == nil {
		resp.DesiredInterests = []string{}
	}
	if resp.Poster.ID == "" {
		resp.Poster.ID = t.CreatedBy
	}
	if t.Location != nil {
		resp.Location = &Location{Address: t.Location.Address}
		if c := t.Location.Coordinates; c != nil {
			lat, lng := c.Lat, c.Lng
			resp.Location.Lat, resp.Location.Lng = &lat, &lng
		}
	}
	return resp
}
