// Package handler implements the HTTP handlers for the Trip Companion API.
// All handlers are methods on Server. Methods are split into domain-specific
// files (health.go, trip.go, discover.go) but share the same Server struct so
// they can access its dependencies.
package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pkordes/trip-companion/backend/internal/auth"
	"github.com/pkordes/trip-companion/backend/internal/domain"
	"github.com/pkordes/trip-companion/backend/internal/service"
)

// TripServicer defines the business operations the trip handlers depend on.
// Defining the interface here (in the consumer package) lets handler tests
// inject a mock without touching the database or service layer.
type TripServicer interface {
	Create(ctx context.Context, trip domain.Trip) (domain.Trip, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error)
	Delete(ctx context.Context, id uuid.UUID, viewerID string) error
}

// DiscoveryServicer builds a viewer's discovery feed.
type DiscoveryServicer interface {
	Discover(ctx context.Context, req service.DiscoverRequest) (service.DiscoverResult, error)
}

// Server holds the dependencies shared by every handler.
type Server struct {
	trips     TripServicer
	discovery DiscoveryServicer
	verifier  *auth.Verifier
}

// NewServer constructs the Server with all its dependencies.
func NewServer(trips TripServicer, discovery DiscoveryServicer, verifier *auth.Verifier) *Server {
	return &Server{trips: trips, discovery: discovery, verifier: verifier}
}

// Routes returns the API router. Health and the OpenAPI document are public;
// everything else requires a bearer token.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, codeNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	})

	r.Get("/healthz", s.GetHealth)
	r.Get("/openapi.yaml", s.GetOpenAPI)

	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware(s.verifier, s.respondError))
		r.Post("/trips", s.CreateTrip)
		r.Get("/trips/{id}", s.GetTrip)
		r.Delete("/trips/{id}", s.DeleteTrip)
		r.Get("/discover", s.Discover)
	})
	return r
}
