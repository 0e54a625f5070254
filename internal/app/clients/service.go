package clients

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Overland-East-Bay/trip-booking-api/internal/app/apperr"
	"github.com/Overland-East-Bay/trip-booking-api/internal/domain"
	"github.com/Overland-East-Bay/trip-booking-api/internal/platform/metrics"
	"github.com/Overland-East-Bay/trip-booking-api/internal/ports/out/bookingstore"
	clockport "github.com/Overland-East-Bay/trip-booking-api/internal/ports/out/clock"
	"github.com/Overland-East-Bay/trip-booking-api/internal/ports/out/events"
)

type Service struct {
	store  bookingstore.Store
	clk    clockport.Clock
	pub    events.Publisher
	logger *slog.Logger

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

func WithPublisher(p events.Publisher) Option {
	return func(s *Service) { s.pub = p }
}

func NewService(store bookingstore.Store, clk clockport.Clock, opts ...Option) *Service {
	s := &Service{
		store:      store,
		clk:        clk,
		logger:     slog.Default(),
		newEventID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateClient validates in and inserts a new client.
// An email (case-insensitive) or pesel already on file yields CLIENT_ALREADY_EXISTS.
func (s *Service) CreateClient(ctx context.Context, in CreateClientInput) (id domain.ClientID, err error) {
	defer func() { metrics.ObserveClientOperation("create", resultOf(err)) }()

	n := normalize(in)
	if details := n.validate(); len(details) > 0 {
		return 0, apperr.Validation("invalid client", details)
	}

	start := time.Now()
	err = s.store.WithinTx(ctx, func(tx bookingstore.Tx) error {
		taken, err := tx.ClientKeyTaken(ctx, n.email, n.pesel)
		if err != nil {
			return err
		}
		if taken {
			return bookingstore.ErrDuplicateClient
		}
		id, err = tx.InsertClient(ctx, bookingstore.NewClient{
			FirstName: n.firstName,
			LastName:  n.lastName,
			Email:     n.email,
			Telephone: n.telephone,
			Pesel:     n.pesel,
		})
		return err
	})
	metrics.ObserveStoreTx("create_client", start)
	if err != nil {
		if errors.Is(err, bookingstore.ErrDuplicateClient) {
			s.logger.WarnContext(ctx, "duplicate client rejected")
			return 0, apperr.Conflict(apperr.CodeClientAlreadyExists, "Client with this email or pesel already exists.")
		}
		s.logger.ErrorContext(ctx, "create client failed", slog.Any("err", err))
		return 0, apperr.StoreFailure(err)
	}

	s.logger.InfoContext(ctx, "client created", slog.Int64("client_id", int64(id)))
	s.publish(ctx, id)
	return id, nil
}

func (s *Service) GetClient(ctx context.Context, id domain.ClientID) (domain.Client, error) {
	c, err := s.store.GetClient(ctx, id)
	if errors.Is(err, bookingstore.ErrNotFound) {
		e := apperr.NotFound(apperr.CodeClientNotFound, fmt.Sprintf("Client with id %d does not exist.", id))
		e.Details = map[string]any{"clientId": int64(id)}
		return domain.Client{}, e
	}
	if err != nil {
		return domain.Client{}, apperr.StoreFailure(err)
	}
	return c, nil
}

func (s *Service) publish(ctx context.Context, id domain.ClientID) {
	if s.pub == nil {
		return
	}
	e := events.Event{
		ID:         s.newEventID(),
		Type:       events.TypeClientCreated,
		OccurredAt: s.clk.Now().UTC(),
		ClientID:   id,
	}
	if err := s.pub.Publish(ctx, e); err != nil {
		metrics.IncEventPublishFailure(string(e.Type))
		s.logger.WarnContext(ctx, "event publish failed",
			slog.String("event_type", string(e.Type)),
			slog.String("event_id", e.ID),
			slog.Any("err", err),
		)
	}
}

func resultOf(err error) string {
	if err == nil {
		return "ok"
	}
	return apperr.CodeOf(err)
}
