package bookingstore

//go:generate mockgen -source=store.go -destination=mocks/mocks.go -package=mocks Store,Tx

import (
	"context"
	"time"

	"github.com/Overland-East-Bay/trip-booking-api/internal/domain"
)

// NewClient is the insert shape for a client; the store assigns the ID.
type NewClient struct {
	FirstName string
	LastName  string
	Email     string
	Telephone *string
	Pesel     *string
}

// NewTrip is the insert shape for a trip. Countries are matched by name and
// created when missing.
type NewTrip struct {
	Name        string
	Description string
	DateFrom    time.Time
	DateTo      time.Time
	MaxPeople   int
	Countries   []string
}

// Store is the entity store for clients, trips, countries and registrations.
//
// Reads that carry no invariant are exposed directly. Everything that checks and
// then writes goes through WithinTx.
type Store interface {
	// WithinTx runs fn in a single transaction. The transaction commits only when fn
	// returns nil; an error, a panic or a cancelled ctx rolls it back.
	WithinTx(ctx context.Context, fn func(tx Tx) error) error

	ListTrips(ctx context.Context) ([]domain.Trip, error)
	// GetTrip returns ErrNotFound when no trip has the given id.
	GetTrip(ctx context.Context, id domain.TripID) (domain.Trip, error)
	ListCountries(ctx context.Context) ([]domain.Country, error)
	// GetClient returns ErrNotFound when no client has the given id.
	GetClient(ctx context.Context, id domain.ClientID) (domain.Client, error)

	CreateTrip(ctx context.Context, t NewTrip) (domain.TripID, error)

	Ping(ctx context.Context) error
}

// Tx is the transactional view of the store.
//
// Implementations must make the sequence LockTrip → RegistrationExists →
// CountRegistrations → InsertRegistration atomic with respect to other transactions
// touching the same trip.
type Tx interface {
	ClientExists(ctx context.Context, id domain.ClientID) (bool, error)
	// ClientKeyTaken reports whether a client with the email (case-insensitive) or,
	// when non-nil, the pesel already exists.
	ClientKeyTaken(ctx context.Context, email string, pesel *string) (bool, error)
	// InsertClient returns ErrDuplicateClient on a uniqueness violation.
	InsertClient(ctx context.Context, c NewClient) (domain.ClientID, error)

	// LockTrip locks the trip row for the rest of the transaction and returns its
	// capacity. It returns ErrNotFound when the trip does not exist.
	LockTrip(ctx context.Context, id domain.TripID) (maxPeople int, err error)
	RegistrationExists(ctx context.Context, clientID domain.ClientID, tripID domain.TripID) (bool, error)
	CountRegistrations(ctx context.Context, tripID domain.TripID) (int, error)
	// InsertRegistration returns ErrAlreadyRegistered when the pair exists.
	InsertRegistration(ctx context.Context, r domain.Registration) error
	// DeleteRegistration returns ErrNotFound when the pair does not exist.
	DeleteRegistration(ctx context.Context, clientID domain.ClientID, tripID domain.TripID) error

	ListClientTrips(ctx context.Context, clientID domain.ClientID) ([]domain.ClientTrip, error)
}
