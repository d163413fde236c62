package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/trip-companion/backend/internal/domain"
)

// ViewerRepo loads the discovery context of the authenticated user.
type ViewerRepo interface {
	// GetViewer returns the user's stored location and accepted friends.
	// Returns domain.ErrNotFound if the user has no profile row.
	GetViewer(ctx context.Context, userID string) (domain.Viewer, error)
}

// pgViewerRepo is the Postgres implementation of ViewerRepo.
type pgViewerRepo struct {
	db db
}

// NewViewerRepo constructs a ViewerRepo backed by the provided db connection.
func NewViewerRepo(db db) ViewerRepo {
	return &pgViewerRepo{db: db}
}

func (r *pgViewerRepo) GetViewer(ctx context.Context, userID string) (domain.Viewer, error) {
	const profileQ = `SELECT lat, lng FROM users WHERE id = @id`

	var lat, lng pgtype.Float8
	if err := r.db.QueryRow(ctx, profileQ, pgx.NamedArgs{"id": userID}).Scan(&lat, &lng); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Viewer{}, fmt.Errorf("repo.ViewerRepo.GetViewer: %w", domain.ErrNotFound)
		}
		return domain.Viewer{}, fmt.Errorf("repo.ViewerRepo.GetViewer: %w", err)
	}

	v := domain.Viewer{ID: userID, Friends: map[string]struct{}{}}
	if lat.Valid && lng.Valid {
		v.Location = &domain.Coordinates{Lat: lat.Float64, Lng: lng.Float64}
	}

	const friendsQ = `SELECT friend_id FROM friendships WHERE user_id = @id`

	rows, err := r.db.Query(ctx, friendsQ, pgx.NamedArgs{"id": userID})
	if err != nil {
		return domain.Viewer{}, fmt.Errorf("repo.ViewerRepo.GetViewer: friends: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var friendID string
		if err := rows.Scan(&friendID); err != nil {
			return domain.Viewer{}, fmt.Errorf("repo.ViewerRepo.GetViewer: scan friend: %w", err)
		}
		v.Friends[friendID] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return domain.Viewer{}, fmt.Errorf("repo.ViewerRepo.GetViewer: friends rows: %w", err)
	}
	return v, nil
}
