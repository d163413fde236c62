package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/pkordes/trip-companion/backend/internal/discovery"
	"github.com/pkordes/trip-companion/backend/internal/domain"
	"github.com/pkordes/trip-companion/backend/internal/repo"
	"github.com/pkordes/trip-companion/backend/internal/schedule"
)

// DiscoverRequest is one discovery feed query.
type DiscoverRequest struct {
	ViewerID string
	Criteria domain.FilterCriteria
	// Location, when set, replaces the viewer's stored profile location,
	// e.g. with a live device fix.
	Location *domain.Coordinates
	// SortByDistance ranks the feed nearest first instead of by start time.
	SortByDistance bool
	// Refresh bypasses the shared trip cache and refills it.
	Refresh bool
	Page    domain.PaginationParams
}

// FeedItem is a discovered trip ready for display.
type FeedItem struct {
	domain.AnnotatedTrip
	DistanceLabel string
	Schedule      string
}

// DiscoverResult is one page of the feed plus the total match count.
type DiscoverResult struct {
	Items []FeedItem
	Total int
}

// DiscoveryService builds a viewer's discovery feed: fetch the active trips,
// annotate them for the viewer, filter, optionally rank, page and format.
type DiscoveryService struct {
	trips     repo.TripRepo
	viewers   repo.ViewerRepo
	cache     TripListCache
	formatter schedule.Formatter
	log       *slog.Logger
}

// NewDiscoveryService constructs a DiscoveryService. cache may be nil.
// formatter supplies both the display clock and the "now" used to decide
// which trips are still active.
func NewDiscoveryService(trips repo.TripRepo, viewers repo.ViewerRepo, cache TripListCache, formatter schedule.Formatter, log *slog.Logger) *DiscoveryService {
	if log == nil {
		log = slog.Default()
	}
	if formatter.Now == nil {
		formatter.Now = time.Now
	}
	return &DiscoveryService{trips: trips, viewers: viewers, cache: cache, formatter: formatter, log: log}
}

// Discover returns one page of the viewer's feed.
// Returns domain.ErrValidation for malformed criteria or override location.
func (s *DiscoveryService) Discover(ctx context.Context, req DiscoverRequest) (DiscoverResult, error) {
	if err := req.Criteria.Validate(); err != nil {
		return DiscoverResult{}, fmt.Errorf("service.DiscoveryService.Discover: %w", err)
	}

	viewer, err := s.viewer(ctx, req.ViewerID)
	if err != nil {
		return DiscoverResult{}, fmt.Errorf("service.DiscoveryService.Discover: %w", err)
	}
	if req.Location != nil {
		if err := req.Location.Validate(); err != nil {
			return DiscoverResult{}, fmt.Errorf("service.DiscoveryService.Discover: %w", err)
		}
		loc := *req.Location
		viewer.Location = &loc
	}

	trips, err := s.activeTrips(ctx, req.Refresh)
	if err != nil {
		return DiscoverResult{}, fmt.Errorf("service.DiscoveryService.Discover: %w", err)
	}

	matched := discovery.FilterTrips(discovery.Annotate(trips, viewer), viewer.ID, req.Criteria)
	if req.SortByDistance {
		discovery.SortByDistance(matched)
	}

	start, end := req.Page.Bounds(len(matched))
	items := make([]FeedItem, 0, end-start)
	for _, t := range matched[start:end] {
		items = append(items, FeedItem{
			AnnotatedTrip: t,
			DistanceLabel: discovery.DistanceLabel(t),
			Schedule:      s.formatter.Window(t.StartTime, t.EndTime),
		})
	}
	return DiscoverResult{Items: items, Total: len(matched)}, nil
}

// viewer loads the viewer's context. A viewer without a profile row still
// gets a feed, just without distances or friend flags.
func (s *DiscoveryService) viewer(ctx context.Context, id string) (domain.Viewer, error) {
	if id == "" {
		return domain.Viewer{}, domain.ErrUnauthorized
	}
	v, err := s.viewers.GetViewer(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Viewer{ID: id}, nil
	}
	if err != nil {
		return domain.Viewer{}, err
	}
	return v, nil
}

// activeTrips returns the candidate list, from cache unless refresh is set.
func (s *DiscoveryService) activeTrips(ctx context.Context, refresh bool) ([]domain.Trip, error) {
	if s.cache != nil && !refresh {
		trips, ok, err := s.cache.Get(ctx)
		switch {
		case err != nil:
			s.log.WarnContext(ctx, "read trip cache failed", "error", err)
		case ok:
			return trips, nil
		}
	}

	trips, err := s.trips.ListActive(ctx, s.formatter.Now())
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, trips); err != nil {
			s.log.WarnContext(ctx, "write trip cache failed", "error", err)
		}
	}
	return trips, nil
}
