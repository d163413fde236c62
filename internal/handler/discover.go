package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/oapi-codegen/runtime"

	"github.com/pkordes/trip-companion/backend/internal/auth"
	"github.com/pkordes/trip-companion/backend/internal/domain"
	"github.com/pkordes/trip-companion/backend/internal/service"
)

// DiscoverParams are the query parameters of GET /discover.
type DiscoverParams struct {
	MinDistanceKm *float64
	MaxDistanceKm *float64
	Age           *string
	Lat           *float64
	Lng           *float64
	Sort          *string
	Refresh       *bool
	Page          *int
	Limit         *int
}

// DiscoverItem is one card in the discovery feed.
type DiscoverItem struct {
	Trip
	DistanceKm    *float64 `json:"distance_km"`
	DistanceLabel string   `json:"distance_label"`
	IsFriend      bool     `json:"is_friend"`
	Schedule      string   `json:"schedule"`
}

// Pagination describes the page returned and the total match count.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
}

// DiscoverResponse is the body of GET /discover.
type DiscoverResponse struct {
	Data       []DiscoverItem `json:"data"`
	Pagination Pagination     `json:"pagination"`
}

// Discover handles GET /discover.
// Supports ?min_distance_km=, ?max_distance_km=, ?age= (any, 26-35, 45+),
// ?lat=&lng= (live location), ?sort=distance, ?refresh=true and the usual
// ?page= and ?limit= (defaults: page=1, limit=20, max=100).
func (s *Server) Discover(w http.ResponseWriter, r *http.Request) {
	params, err := bindDiscoverParams(r)
	if err != nil {
		requestError(w, err.Error())
		return
	}

	req, err := paramsToRequest(params)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	req.ViewerID, _ = auth.ViewerID(r.Context())

	res, err := s.discovery.Discover(r.Context(), req)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	data := make([]DiscoverItem, len(res.Items))
	for i, it := range res.Items {
		data[i] = DiscoverItem{
			Trip:          tripToResponse(it.Trip),
			DistanceKm:    it.DistanceKm,
			DistanceLabel: it.DistanceLabel,
			IsFriend:      it.PosterIsFriend,
			Schedule:      it.Schedule,
		}
	}
	writeJSON(w, http.StatusOK, DiscoverResponse{
		Data: data,
		Pagination: Pagination{
			Page:  req.Page.Page,
			Limit: req.Page.Limit,
			Total: res.Total,
		},
	})
}

// bindDiscoverParams binds the optional form-style query parameters the
// same way generated oapi-codegen wrappers do.
func bindDiscoverParams(r *http.Request) (DiscoverParams, error) {
	var p DiscoverParams
	q := r.URL.Query()
	for _, b := range []struct {
		name string
		dest any
	}{
		{"min_distance_km", &p.MinDistanceKm},
		{"max_distance_km", &p.MaxDistanceKm},
		{"age", &p.Age},
		{"lat", &p.Lat},
		{"lng", &p.Lng},
		{"sort", &p.Sort},
		{"refresh", &p.Refresh},
		{"page", &p.Page},
		{"limit", &p.Limit},
	} {
		if err := runtime.BindQueryParameter("form", true, false, b.name, q, b.dest); err != nil {
			return DiscoverParams{}, errors.New("invalid format for parameter " + b.name)
		}
	}
	return p, nil
}

// paramsToRequest turns bound query parameters into a service request.
// Errors wrap domain.ErrValidation.
func paramsToRequest(p DiscoverParams) (service.DiscoverRequest, error) {
	req := service.DiscoverRequest{
		Criteria: domain.FilterCriteria{
			MinDistanceKm: p.MinDistanceKm,
			MaxDistanceKm: p.MaxDistanceKm,
		},
		Page: domain.NewPaginationParams(p.Page, p.Limit),
	}

	if p.Age != nil {
		age, err := domain.ParseAgeRange(*p.Age)
		if err != nil {
			return service.DiscoverRequest{}, err
		}
		req.Criteria.AgeRange = age
	}

	switch {
	case p.Lat != nil && p.Lng != nil:
		req.Location = &domain.Coordinates{Lat: *p.Lat, Lng: *p.Lng}
	case p.Lat != nil || p.Lng != nil:
		return service.DiscoverRequest{}, fmt.Errorf("%w: lat and lng must be given together", domain.ErrValidation)
	}

	if p.Sort != nil {
		switch *p.Sort {
		case "", "start_time":
		case "distance":
			req.SortByDistance = true
		default:
			return service.DiscoverRequest{}, fmt.Errorf("%w: sort must be start_time or distance", domain.ErrValidation)
		}
	}

	req.Refresh = p.Refresh != nil && *p.Refresh
	return req, nil
}
