package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/trip-companion/backend/internal/domain"
	"github.com/pkordes/trip-companion/backend/internal/service"
)

func validTrip() domain.Trip {
	start := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	return domain.Trip{
		Name:             "Sunrise hike",
		Location:         &domain.Location{Address: "Ridge", Coordinates: &domain.Coordinates{Lat: 28.61, Lng: 77.2}},
		StartTime:        start,
		EndTime:          start.Add(3 * time.Hour),
		MaxCompanions:    3,
		DesiredInterests: []string{"hiking"},
		CreatedBy:        "u1",
	}
}

// echoRepo returns whatever it is given, so Create tests only exercise
// validation and side effects.
func echoRepo() *mockTripRepo {
	return &mockTripRepo{
		create: func(_ context.Context, t domain.Trip) (domain.Trip, error) {
			t.ID = uuid.New()
			return t, nil
		},
	}
}

func TestTripService_Create_Valid(t *testing.T) {
	c, ev := &memCache{}, &recordingEvents{}
	svc := service.NewTripService(echoRepo(), c, ev, nil)

	got, err := svc.Create(context.Background(), validTrip())

	require.NoError(t, err)
	assert.Equal(t, "Sunrise hike", got.Name)
	assert.Equal(t, 1, c.invalidated, "a new trip must drop the cached list")
	require.Len(t, ev.created, 1)
	assert.Equal(t, got.ID, ev.created[0].ID)
}

func TestTripService_Create_NormalizesInput(t *testing.T) {
	var saved domain.Trip
	r := &mockTripRepo{create: func(_ context.Context, t domain.Trip) (domain.Trip, error) {
		saved = t
		return t, nil
	}}
	svc := service.NewTripService(r, nil, nil, nil)

	trip := validTrip()
	trip.Name = "  Sunrise hike  "
	trip.DesiredInterests = []string{" Hiking", "hiking", "", "Photography "}
	trip.Location = &domain.Location{Address: "   "}

	_, err := svc.Create(context.Background(), trip)

	require.NoError(t, err)
	assert.Equal(t, "Sunrise hike", saved.Name)
	assert.Equal(t, []string{"Hiking", "Photography"}, saved.DesiredInterests)
	assert.Nil(t, saved.Location, "a blank address without coordinates is no location")
}

func TestTripService_Create_ValidationErrors(t *testing.T) {
	cases := map[string]func(*domain.Trip){
		"blank name":        func(t *domain.Trip) { t.Name = "   " },
		"no poster":         func(t *domain.Trip) { t.CreatedBy = "" },
		"missing start":     func(t *domain.Trip) { t.StartTime = time.Time{} },
		"end before start":  func(t *domain.Trip) { t.EndTime = t.StartTime.Add(-time.Minute) },
		"zero companions":   func(t *domain.Trip) { t.MaxCompanions = 0 },
		"latitude too high": func(t *domain.Trip) { t.Location.Coordinates.Lat = 91 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := &memCache{}
			svc := service.NewTripService(echoRepo(), c, nil, nil)
			trip := validTrip()
			mutate(&trip)

			_, err := svc.Create(context.Background(), trip)

			assert.ErrorIs(t, err, domain.ErrValidation)
			assert.Zero(t, c.invalidated)
		})
	}
}

func TestTripService_Create_EndEqualToStart(t *testing.T) {
	svc := service.NewTripService(echoRepo(), nil, nil, nil)
	trip := validTrip()
	trip.EndTime = trip.StartTime

	_, err := svc.Create(context.Background(), trip)

	assert.NoError(t, err)
}

func TestTripService_Create_RepoError(t *testing.T) {
	repoErr := errors.New("db exploded")
	ev := &recordingEvents{}
	r := &mockTripRepo{create: func(context.Context, domain.Trip) (domain.Trip, error) {
		return domain.Trip{}, repoErr
	}}
	svc := service.NewTripService(r, nil, ev, nil)

	_, err := svc.Create(context.Background(), validTrip())

	assert.ErrorIs(t, err, repoErr)
	assert.Empty(t, ev.created)
}

func TestTripService_Create_PublishFailureIsNotFatal(t *testing.T) {
	ev := &recordingEvents{err: errors.New("broker down")}
	svc := service.NewTripService(echoRepo(), nil, ev, nil)

	_, err := svc.Create(context.Background(), validTrip())

	assert.NoError(t, err)
	assert.Len(t, ev.created, 1)
}

func TestTripService_GetByID_NotFound(t *testing.T) {
	r := &mockTripRepo{getByID: func(context.Context, uuid.UUID) (domain.Trip, error) {
		return domain.Trip{}, domain.ErrNotFound
	}}

	_, err := service.NewTripService(r, nil, nil, nil).GetByID(context.Background(), uuid.New())

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTripService_Delete(t *testing.T) {
	id := uuid.New()
	deleted := false
	r := &mockTripRepo{
		getByID: func(context.Context, uuid.UUID) (domain.Trip, error) {
			return domain.Trip{ID: id, CreatedBy: "u1"}, nil
		},
		delete: func(context.Context, uuid.UUID) error {
			deleted = true
			return nil
		},
	}
	c, ev := &memCache{}, &recordingEvents{}
	svc := service.NewTripService(r, c, ev, nil)

	require.NoError(t, svc.Delete(context.Background(), id, "u1"))

	assert.True(t, deleted)
	assert.Equal(t, 1, c.invalidated)
	assert.Equal(t, []uuid.UUID{id}, ev.deleted)
}

func TestTripService_Delete_OtherUsersTrip(t *testing.T) {
	r := &mockTripRepo{
		getByID: func(context.Context, uuid.UUID) (domain.Trip, error) {
			return domain.Trip{CreatedBy: "u1"}, nil
		},
		delete: func(context.Context, uuid.UUID) error {
			t.Fatal("delete must not be called")
			return nil
		},
	}

	err := service.NewTripService(r, nil, nil, nil).Delete(context.Background(), uuid.New(), "u2")

	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestTripService_Delete_NotFound(t *testing.T) {
	r := &mockTripRepo{getByID: func(context.Context, uuid.UUID) (domain.Trip, error) {
		return domain.Trip{}, domain.ErrNotFound
	}}

	err := service.NewTripService(r, nil, nil, nil).Delete(context.Background(), uuid.New(), "u1")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}
