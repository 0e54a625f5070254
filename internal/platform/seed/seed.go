// Package seed loads trip catalog fixtures from YAML.
//
// Trips are created outside the booking workflow; countries named by a trip are
// created by the store when missing.
package seed

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Overland-East-Bay/trip-booking-api/internal/domain"
	"github.com/Overland-East-Bay/trip-booking-api/internal/ports/out/bookingstore"
)

//go:embed sample.yaml
var sample []byte

type Fixture struct {
	Trips []Trip `yaml:"trips"`
}

// Trip dates are YYYY-MM-DD calendar dates.
type Trip struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	DateFrom    string   `yaml:"dateFrom"`
	DateTo      string   `yaml:"dateTo"`
	MaxPeople   int      `yaml:"maxPeople"`
	Countries   []string `yaml:"countries"`
}

// TripCreator is the slice of bookingstore.Store the seeder needs.
type TripCreator interface {
	CreateTrip(ctx context.Context, t bookingstore.NewTrip) (domain.TripID, error)
}

// Parse decodes a fixture. Unknown keys are rejected so typos do not silently
// drop data.
func Parse(r io.Reader) (Fixture, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var f Fixture
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return Fixture{}, errors.New("seed: empty fixture")
		}
		return Fixture{}, fmt.Errorf("seed: decode: %w", err)
	}
	return f, nil
}

func LoadFile(path string) (Fixture, error) {
	fh, err := os.Open(path)
	if err != nil {
		return Fixture{}, err
	}
	defer fh.Close()
	return Parse(fh)
}

func Sample() (Fixture, error) {
	return Parse(bytes.NewReader(sample))
}

// NewTrips validates every trip and converts it to the store's insert shape.
// Nothing is returned unless all trips are valid.
func (f Fixture) NewTrips() ([]bookingstore.NewTrip, error) {
	out := make([]bookingstore.NewTrip, 0, len(f.Trips))
	var errs []error
	for i, t := range f.Trips {
		nt, err := t.toNewTrip()
		if err != nil {
			errs = append(errs, fmt.Errorf("trips[%d]: %w", i, err))
			continue
		}
		out = append(out, nt)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return out, nil
}

func (t Trip) toNewTrip() (bookingstore.NewTrip, error) {
	name := domain.NormalizeHumanName(t.Name)
	if name == "" {
		return bookingstore.NewTrip{}, errors.New("name is required")
	}
	from, err := domain.ParseDate(t.DateFrom)
	if err != nil {
		return bookingstore.NewTrip{}, fmt.Errorf("dateFrom: %w", err)
	}
	to, err := domain.ParseDate(t.DateTo)
	if err != nil {
		return bookingstore.NewTrip{}, fmt.Errorf("dateTo: %w", err)
	}
	if to.Before(from) {
		return bookingstore.NewTrip{}, errors.New("dateTo is before dateFrom")
	}
	if t.MaxPeople < 1 {
		return bookingstore.NewTrip{}, errors.New("maxPeople must be at least 1")
	}

	countries := make([]string, 0, len(t.Countries))
	for _, c := range t.Countries {
		if c = strings.TrimSpace(c); c != "" {
			countries = append(countries, c)
		}
	}
	return bookingstore.NewTrip{
		Name:        name,
		Description: strings.TrimSpace(t.Description),
		DateFrom:    from,
		DateTo:      to,
		MaxPeople:   t.MaxPeople,
		Countries:   countries,
	}, nil
}

// Apply creates every trip in f, in order, and returns the new ids.
func Apply(ctx context.Context, store TripCreator, f Fixture) ([]domain.TripID, error) {
	trips, err := f.NewTrips()
	if err != nil {
		return nil, err
	}
	ids := make([]domain.TripID, 0, len(trips))
	for _, nt := range trips {
		id, err := store.CreateTrip(ctx, nt)
		if err != nil {
			return ids, fmt.Errorf("seed: create trip %q: %w", nt.Name, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
