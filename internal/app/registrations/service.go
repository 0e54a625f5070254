package registrations

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Overland-East-Bay/trip-booking-api/internal/app/apperr"
	"github.com/Overland-East-Bay/trip-booking-api/internal/domain"
	"github.com/Overland-East-Bay/trip-booking-api/internal/platform/metrics"
	"github.com/Overland-East-Bay/trip-booking-api/internal/ports/out/bookingstore"
	clockport "github.com/Overland-East-Bay/trip-booking-api/internal/ports/out/clock"
	"github.com/Overland-East-Bay/trip-booking-api/internal/ports/out/events"
)

const tracerName = "github.com/Overland-East-Bay/trip-booking-api/internal/app/registrations"

// Service is the registration workflow: the only writer of client/trip registrations.
type Service struct {
	store  bookingstore.Store
	clk    clockport.Clock
	pub    events.Publisher
	logger *slog.Logger
	tracer trace.Tracer

	newEventID func() string
}

type Option func(*Service)

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithPublisher sets the publisher notified after each committed change.
func WithPublisher(p events.Publisher) Option {
	return func(s *Service) { s.pub = p }
}

func WithTracer(t trace.Tracer) Option {
	return func(s *Service) {
		if t != nil {
			s.tracer = t
		}
	}
}

func NewService(store bookingstore.Store, clk clockport.Clock, opts ...Option) *Service {
	s := &Service{
		store:      store,
		clk:        clk,
		logger:     slog.Default(),
		tracer:     otel.Tracer(tracerName),
		newEventID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register binds clientID to tripID.
//
// Checks run in order inside one transaction and the first failure wins:
// client exists, trip exists, pair not yet registered, trip below capacity.
// RegisteredAt is today's date per the injected clock.
func (s *Service) Register(ctx context.Context, clientID domain.ClientID, tripID domain.TripID) (err error) {
	ctx, span := s.startSpan(ctx, "registrations.Register", clientID, tripID)
	defer func() { s.finish(ctx, span, "register", err, clientID, tripID) }()

	registeredAt := domain.DateOf(s.clk.Now())

	start := time.Now()
	err = s.store.WithinTx(ctx, func(tx bookingstore.Tx) error {
		ok, err := tx.ClientExists(ctx, clientID)
		if err != nil {
			return err
		}
		if !ok {
			return clientNotFound(clientID)
		}

		maxPeople, err := tx.LockTrip(ctx, tripID)
		if errors.Is(err, bookingstore.ErrNotFound) {
			return tripNotFound(tripID)
		}
		if err != nil {
			return err
		}

		exists, err := tx.RegistrationExists(ctx, clientID, tripID)
		if err != nil {
			return err
		}
		if exists {
			return alreadyRegistered(clientID, tripID)
		}

		n, err := tx.CountRegistrations(ctx, tripID)
		if err != nil {
			return err
		}
		if n >= maxPeople {
			e := apperr.Conflict(apperr.CodeTripFull, "Trip is full.")
			e.Details = map[string]any{"tripId": int64(tripID), "maxPeople": maxPeople}
			return e
		}

		return tx.InsertRegistration(ctx, domain.Registration{
			ClientID:     clientID,
			TripID:       tripID,
			RegisteredAt: registeredAt,
		})
	})
	metrics.ObserveStoreTx("register", start)
	if err != nil {
		if errors.Is(err, bookingstore.ErrAlreadyRegistered) {
			return alreadyRegistered(clientID, tripID)
		}
		return translate(err)
	}

	s.publish(ctx, events.TypeRegistrationCreated, clientID, tripID)
	return nil
}

// Unregister removes the registration of clientID for tripID.
func (s *Service) Unregister(ctx context.Context, clientID domain.ClientID, tripID domain.TripID) (err error) {
	ctx, span := s.startSpan(ctx, "registrations.Unregister", clientID, tripID)
	defer func() { s.finish(ctx, span, "unregister", err, clientID, tripID) }()

	start := time.Now()
	err = s.store.WithinTx(ctx, func(tx bookingstore.Tx) error {
		return tx.DeleteRegistration(ctx, clientID, tripID)
	})
	metrics.ObserveStoreTx("unregister", start)
	if err != nil {
		if errors.Is(err, bookingstore.ErrNotFound) {
			e := apperr.NotFound(apperr.CodeRegistrationNotFound, "Client is not registered for this trip.")
			e.Details = map[string]any{"clientId": int64(clientID), "tripId": int64(tripID)}
			return e
		}
		return translate(err)
	}

	s.publish(ctx, events.TypeRegistrationRemoved, clientID, tripID)
	return nil
}

// ListClientTrips returns the trips clientID is registered for. A client without
// registrations yields an empty slice; a missing client yields CLIENT_NOT_FOUND.
func (s *Service) ListClientTrips(ctx context.Context, clientID domain.ClientID) (out []domain.ClientTrip, err error) {
	ctx, span := s.startSpan(ctx, "registrations.ListClientTrips", clientID, 0)
	defer func() { s.finish(ctx, span, "list_client_trips", err, clientID, 0) }()

	start := time.Now()
	err = s.store.WithinTx(ctx, func(tx bookingstore.Tx) error {
		ok, err := tx.ClientExists(ctx, clientID)
		if err != nil {
			return err
		}
		if !ok {
			return clientNotFound(clientID)
		}
		out, err = tx.ListClientTrips(ctx, clientID)
		return err
	})
	metrics.ObserveStoreTx("list_client_trips", start)
	if err != nil {
		return nil, translate(err)
	}
	if out == nil {
		out = []domain.ClientTrip{}
	}
	return out, nil
}

func (s *Service) startSpan(ctx context.Context, name string, clientID domain.ClientID, tripID domain.TripID) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{attribute.Int64("client.id", int64(clientID))}
	if tripID != 0 {
		attrs = append(attrs, attribute.Int64("trip.id", int64(tripID)))
	}
	return s.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func (s *Service) finish(ctx context.Context, span trace.Span, op string, err error, clientID domain.ClientID, tripID domain.TripID) {
	defer span.End()

	attrs := []any{
		slog.String("operation", op),
		slog.Int64("client_id", int64(clientID)),
	}
	if tripID != 0 {
		attrs = append(attrs, slog.Int64("trip_id", int64(tripID)))
	}

	if err == nil {
		metrics.ObserveRegistration(op, "ok")
		span.SetStatus(codes.Ok, "")
		s.logger.InfoContext(ctx, "registration workflow ok", attrs...)
		return
	}

	code := apperr.CodeOf(err)
	metrics.ObserveRegistration(op, code)
	span.SetAttributes(attribute.String("error.code", code))
	attrs = append(attrs, slog.String("code", code))
	if apperr.HasKind(err, apperr.KindStoreFailure) {
		span.RecordError(err)
		span.SetStatus(codes.Error, code)
		s.logger.ErrorContext(ctx, "registration workflow failed", append(attrs, slog.Any("err", err))...)
		return
	}
	s.logger.WarnContext(ctx, "registration workflow rejected", attrs...)
}

func (s *Service) publish(ctx context.Context, typ events.Type, clientID domain.ClientID, tripID domain.TripID) {
	if s.pub == nil {
		return
	}
	e := events.Event{
		ID:         s.newEventID(),
		Type:       typ,
		OccurredAt: s.clk.Now().UTC(),
		ClientID:   clientID,
		TripID:     tripID,
	}
	if err := s.pub.Publish(ctx, e); err != nil {
		metrics.IncEventPublishFailure(string(typ))
		s.logger.WarnContext(ctx, "event publish failed",
			slog.String("event_type", string(typ)),
			slog.String("event_id", e.ID),
			slog.Any("err", err),
		)
	}
}

func clientNotFound(id domain.ClientID) *apperr.Error {
	e := apperr.NotFound(apperr.CodeClientNotFound, fmt.Sprintf("Client with id %d does not exist.", id))
	e.Details = map[string]any{"clientId": int64(id)}
	return e
}

func tripNotFound(id domain.TripID) *apperr.Error {
	e := apperr.NotFound(apperr.CodeTripNotFound, fmt.Sprintf("Trip with id %d does not exist.", id))
	e.Details = map[string]any{"tripId": int64(id)}
	return e
}

func alreadyRegistered(clientID domain.ClientID, tripID domain.TripID) *apperr.Error {
	e := apperr.Conflict(apperr.CodeClientAlreadyRegistered, "Client already registered for this trip.")
	e.Details = map[string]any{"clientId": int64(clientID), "tripId": int64(tripID)}
	return e
}

// translate passes app errors through and wraps everything else as STORE_FAILURE.
func translate(err error) error {
	if _, ok := apperr.As(err); ok {
		return err
	}
	return apperr.StoreFailure(err)
}
