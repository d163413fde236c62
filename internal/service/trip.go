package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/pkordes/trip-companion/backend/internal/domain"
	"github.com/pkordes/trip-companion/backend/internal/repo"
)

// TripService implements business logic for Trip operations.
type TripService struct {
	repo   repo.TripRepo
	cache  TripListCache
	events TripEvents
	log    *slog.Logger
}

// NewTripService constructs a TripService. cache and events may be nil.
func NewTripService(r repo.TripRepo, cache TripListCache, events TripEvents, log *slog.Logger) *TripService {
	if log == nil {
		log = slog.Default()
	}
	return &TripService{repo: r, cache: cache, events: events, log: log}
}

// Create validates and persists a new trip, then drops the cached trip
// list and announces the trip. Cache and publish failures are logged, not
// returned: the trip is already saved.
func (s *TripService) Create(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	trip, err := normalizeTrip(trip)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Create: %w", err)
	}

	created, err := s.repo.Create(ctx, trip)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Create: %w", err)
	}

	s.invalidate(ctx)
	if s.events != nil {
		if err := s.events.TripCreated(ctx, created); err != nil {
			s.log.WarnContext(ctx, "publish trip created failed", "trip_id", created.ID, "error", err)
		}
	}
	return created, nil
}

// GetByID returns a single trip by ID.
func (s *TripService) GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	trip, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.GetByID: %w", err)
	}
	return trip, nil
}

// Delete removes a trip. Only its poster may delete it; anyone else gets
// domain.ErrForbidden.
func (s *TripService) Delete(ctx context.Context, id uuid.UUID, viewerID string) error {
	trip, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("service.TripService.Delete: %w", err)
	}
	if trip.CreatedBy != viewerID {
		return fmt.Errorf("service.TripService.Delete: %w: trip belongs to another user", domain.ErrForbidden)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("service.TripService.Delete: %w", err)
	}

	s.invalidate(ctx)
	if s.events != nil {
		if err := s.events.TripDeleted(ctx, id, viewerID); err != nil {
			s.log.WarnContext(ctx, "publish trip deleted failed", "trip_id", id, "error", err)
		}
	}
	return nil
}

func (s *TripService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.log.WarnContext(ctx, "invalidate trip cache failed", "error", err)
	}
}

// normalizeTrip trims free text, de-duplicates interests and enforces the
// trip invariants.
func normalizeTrip(t domain.Trip) (domain.Trip, error) {
	t.Name = strings.TrimSpace(t.Name)
	if t.Name == "" {
		return domain.Trip{}, fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	if strings.TrimSpace(t.CreatedBy) == "" {
		return domain.Trip{}, fmt.Errorf("%w: created_by is required", domain.ErrValidation)
	}
	if t.StartTime.IsZero() || t.EndTime.IsZero() {
		return domain.Trip{}, fmt.Errorf("%w: start_time and end_time are required", domain.ErrValidation)
	}
	if t.EndTime.Before(t.StartTime) {
		return domain.Trip{}, fmt.Errorf("%w: end_time must not be before start_time", domain.ErrValidation)
	}
	if t.MaxCompanions < 1 {
		return domain.Trip{}, fmt.Errorf("%w: max_companions must be at least 1", domain.ErrValidation)
	}

	if t.Location != nil {
		loc := *t.Location
		loc.Address = strings.TrimSpace(loc.Address)
		if loc.Coordinates != nil {
			if err := loc.Coordinates.Validate(); err != nil {
				return domain.Trip{}, err
			}
		}
		if loc.Address == "" && loc.Coordinates == nil {
			t.Location = nil
		} else {
			t.Location = &loc
		}
	}

	seen := make(map[string]struct{}, len(t.DesiredInterests))
	interests := make([]string, 0, len(t.DesiredInterests))
	for _, in := range t.DesiredInterests {
		in = strings.TrimSpace(in)
		key := strings.ToLower(in)
		if in == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		interests = append(interests, in)
	}
	t.DesiredInterests = interests
	return t, nil
}
