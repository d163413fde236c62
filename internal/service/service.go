// Package service contains the business logic for the Trip Companion API.
// Services validate inputs, enforce business rules, and orchestrate repo,
// cache and event calls. No SQL lives here: services depend on repo
// interfaces, not implementations.
package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/pkordes/trip-companion/backend/internal/domain"
)

// TripListCache holds the wholesale list of active trips shared by all
// discovery requests. A nil TripListCache disables caching.
type TripListCache interface {
	Get(ctx context.Context) ([]domain.Trip, bool, error)
	Set(ctx context.Context, trips []domain.Trip) error
	Invalidate(ctx context.Context) error
}

// TripEvents receives trip lifecycle notifications. A nil TripEvents
// disables publishing.
type TripEvents interface {
	TripCreated(ctx context.Context, trip domain.Trip) error
	TripDeleted(ctx context.Context, id uuid.UUID, deletedBy string) error
}
