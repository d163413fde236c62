package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/trip-companion/backend/internal/domain"
)

// TripRepo defines the persistence operations for Trips.
// Every read joins the poster's public profile onto the trip.
type TripRepo interface {
	// Create inserts a new trip and returns the persisted record with its
	// DB-generated id and timestamps and the poster profile populated.
	// Returns domain.ErrNotFound if the poster has no profile row.
	Create(ctx context.Context, trip domain.Trip) (domain.Trip, error)

	// GetByID retrieves a single trip by its UUID primary key.
	// Returns domain.ErrNotFound if no trip with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error)

	// ListActive returns every trip that has not ended before now, ordered
	// by start_time ascending. It is the candidate set for discovery.
	ListActive(ctx context.Context, now time.Time) ([]domain.Trip, error)

	// Delete removes a trip by ID. Returns domain.ErrNotFound if it does not exist.
	Delete(ctx context.Context, id uuid.UUID) error
}

// pgTripRepo is the Postgres implementation of TripRepo.
type pgTripRepo struct {
	db db
}

// NewTripRepo constructs a TripRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx or a pgxmock pool.
func NewTripRepo(db db) TripRepo {
	return &pgTripRepo{db: db}
}

const tripColumns = `
	t.id, t.name, t.address, t.lat, t.lng, t.start_time, t.end_time,
	t.max_companions, t.desired_interests, t.created_by, t.created_at, t.updated_at,
	u.name, u.avatar_url, u.age`

// Create inserts a trip row and reads it back joined with its poster.
func (r *pgTripRepo) Create(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	const q = `
		WITH t AS (
			INSERT INTO trips (name, address, lat, lng, start_time, end_time,
			                   max_companions, desired_interests, created_by)
			VALUES (@name, @address, @lat, @lng, @start_time, @end_time,
			        @max_companions, @desired_interests, @created_by)
			RETURNING *
		)
		SELECT` + tripColumns + `
		FROM t
		JOIN users u ON u.id = t.created_by`

	args := pgx.NamedArgs{
		"name":              trip.Name,
		"address":           nil,
		"lat":               nil,
		"lng":               nil,
		"start_time":        trip.StartTime,
		"end_time":          trip.EndTime,
		"max_companions":    trip.MaxCompanions,
		"desired_interests": nonNil(trip.DesiredInterests),
		"created_by":        trip.CreatedBy,
	}
	if trip.Location != nil {
		args["address"] = trip.Location.Address
		if c := trip.Location.Coordinates; c != nil {
			args["lat"] = c.Lat
			args["lng"] = c.Lng
		}
	}

	result, err := scanTrip(r.db.QueryRow(ctx, q, args))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
			return domain.Trip{}, fmt.Errorf("repo.TripRepo.Create: poster %q: %w", trip.CreatedBy, domain.ErrNotFound)
		}
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Create: %w", err)
	}
	return result, nil
}

// GetByID retrieves a trip by primary key.
func (r *pgTripRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	const q = `
		SELECT` + tripColumns + `
		FROM trips t
		JOIN users u ON u.id = t.created_by
		WHERE t.id = @id`

	result, err := scanTrip(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.GetByID: %w", err)
	}
	return result, nil
}

// ListActive returns trips ending at or after now, soonest first.
func (r *pgTripRepo) ListActive(ctx context.Context, now time.Time) ([]domain.Trip, error) {
	const q = `
		SELECT` + tripColumns + `
		FROM trips t
		JOIN users u ON u.id = t.created_by
		WHERE t.end_time >= @now
		ORDER BY t.start_time ASC, t.id ASC`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"now": now})
	if err != nil {
		return nil, fmt.Errorf("repo.TripRepo.ListActive: %w", err)
	}
	defer rows.Close()

	trips := []domain.Trip{}
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.TripRepo.ListActive: scan: %w", err)
		}
		trips = append(trips, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.TripRepo.ListActive: rows: %w", err)
	}
	return trips, nil
}

// Delete removes a trip by primary key.
func (r *pgTripRepo) Delete(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM trips WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.TripRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.TripRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

// scanTrip maps one row selected with tripColumns into a domain.Trip.
// Nullable columns go through pgtype so NULL maps to nil pointers.
func scanTrip(s scanner) (domain.Trip, error) {
	var (
		t       domain.Trip
		id      pgtype.UUID
		address pgtype.Text
		lat     pgtype.Float8
		lng     pgtype.Float8
		avatar  pgtype.Text
		age     pgtype.Int4
	)

	err := s.Scan(
		&id, &t.Name, &address, &lat, &lng, &t.StartTime, &t.EndTime,
		&t.MaxCompanions, &t.DesiredInterests, &t.CreatedBy, &t.CreatedAt, &t.UpdatedAt,
		&t.Poster.Name, &avatar, &age,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Trip{}, domain.ErrNotFound
		}
		return domain.Trip{}, err
	}

	t.ID = uuid.UUID(id.Bytes)
	t.Poster.ID = t.CreatedBy
	t.Poster.AvatarURL = avatar.String
	if age.Valid {
		a := int(age.Int32)
		t.Poster.Age = &a
	}
	if address.Valid || lat.Valid {
		t.Location = &domain.Location{Address: address.String}
		if lat.Valid && lng.Valid {
			t.Location.Coordinates = &domain.Coordinates{Lat: lat.Float64, Lng: lng.Float64}
		}
	}
	if t.DesiredInterests == nil {
		t.DesiredInterests = []string{}
	}
	return t, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
