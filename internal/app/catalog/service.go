// Package catalog serves the read-only trip and country listings.
package catalog

import (
	"context"
	"errors"

	"github.com/Overland-East-Bay/trip-booking-api/internal/app/apperr"
	"github.com/Overland-East-Bay/trip-booking-api/internal/domain"
	"github.com/Overland-East-Bay/trip-booking-api/internal/ports/out/bookingstore"
)

type Service struct {
	store bookingstore.Store
}

func NewService(store bookingstore.Store) *Service {
	return &Service{store: store}
}

// ListTrips returns every trip, newest DateFrom first.
func (s *Service) ListTrips(ctx context.Context) ([]domain.Trip, error) {
	ts, err := s.store.ListTrips(ctx)
	if err != nil {
		return nil, apperr.StoreFailure(err)
	}
	if ts == nil {
		ts = []domain.Trip{}
	}
	return ts, nil
}

// GetTrip reports a missing trip with ok=false rather than an error.
func (s *Service) GetTrip(ctx context.Context, id domain.TripID) (domain.Trip, bool, error) {
	t, err := s.store.GetTrip(ctx, id)
	if errors.Is(err, bookingstore.ErrNotFound) {
		return domain.Trip{}, false, nil
	}
	if err != nil {
		return domain.Trip{}, false, apperr.StoreFailure(err)
	}
	return t, true, nil
}

func (s *Service) ListCountries(ctx context.Context) ([]domain.Country, error) {
	cs, err := s.store.ListCountries(ctx)
	if err != nil {
		return nil, apperr.StoreFailure(err)
	}
	if cs == nil {
		cs = []domain.Country{}
	}
	return cs, nil
}
