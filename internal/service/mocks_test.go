package service_test

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/trip-companion/backend/internal/domain"
	"github.com/pkordes/trip-companion/backend/internal/repo"
	"github.com/pkordes/trip-companion/backend/internal/service"
)

// mockTripRepo is a hand-written test double for repo.TripRepo.
// Each method is a function field; set only the ones your test needs.
type mockTripRepo struct {
	create     func(ctx context.Context, trip domain.Trip) (domain.Trip, error)
	getByID    func(ctx context.Context, id uuid.UUID) (domain.Trip, error)
	listActive func(ctx context.Context, now time.Time) ([]domain.Trip, error)
	delete     func(ctx context.Context, id uuid.UUID) error
}

func (m *mockTripRepo) Create(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	return m.create(ctx, trip)
}
func (m *mockTripRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	return m.getByID(ctx, id)
}
func (m *mockTripRepo) ListActive(ctx context.Context, now time.Time) ([]domain.Trip, error) {
	return m.listActive(ctx, now)
}
func (m *mockTripRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.delete(ctx, id)
}

var _ repo.TripRepo = (*mockTripRepo)(nil)

type mockViewerRepo struct {
	getViewer func(ctx context.Context, id string) (domain.Viewer, error)
}

func (m *mockViewerRepo) GetViewer(ctx context.Context, id string) (domain.Viewer, error) {
	return m.getViewer(ctx, id)
}

var _ repo.ViewerRepo = (*mockViewerRepo)(nil)

// memCache is an in-memory service.TripListCache that counts calls.
type memCache struct {
	trips       []domain.Trip
	ok          bool
	getErr      error
	gets, sets  int
	invalidated int
}

func (c *memCache) Get(context.Context) ([]domain.Trip, bool, error) {
	c.gets++
	return c.trips, c.ok, c.getErr
}

func (c *memCache) Set(_ context.Context, trips []domain.Trip) error {
	c.sets++
	c.trips, c.ok = trips, true
	return nil
}

func (c *memCache) Invalidate(context.Context) error {
	c.invalidated++
	c.trips, c.ok = nil, false
	return nil
}

var _ service.TripListCache = (*memCache)(nil)

// recordingEvents is a service.TripEvents that remembers what it was sent.
type recordingEvents struct {
	created []domain.Trip
	deleted []uuid.UUID
	err     error
}

func (e *recordingEvents) TripCreated(_ context.Context, trip domain.Trip) error {
	e.created = append(e.created, trip)
	return e.err
}

func (e *recordingEvents) TripDeleted(_ context.Context, id uuid.UUID, _ string) error {
	e.deleted = append(e.deleted, id)
	return e.err
}

var _ service.TripEvents = (*recordingEvents)(nil)

func ptr[T any](v T) *T { return &v }
