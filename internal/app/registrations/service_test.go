package registrations

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	memstore "github.com/Overland-East-Bay/trip-booking-api/internal/adapters/memory/bookingstore"
	memclock "github.com/Overland-East-Bay/trip-booking-api/internal/adapters/memory/clock"
	memevents "github.com/Overland-East-Bay/trip-booking-api/internal/adapters/memory/events"
	"github.com/Overland-East-Bay/trip-booking-api/internal/app/apperr"
	"github.com/Overland-East-Bay/trip-booking-api/internal/domain"
	"github.com/Overland-East-Bay/trip-booking-api/internal/platform/logging"
	"github.com/Overland-East-Bay/trip-booking-api/internal/ports/out/bookingstore"
	"github.com/Overland-East-Bay/trip-booking-api/internal/ports/out/bookingstore/mocks"
	"github.com/Overland-East-Bay/trip-booking-api/internal/ports/out/events"
)

type ServiceSuite struct {
	suite.Suite

	ctx   context.Context
	store *memstore.Store
	clk   *memclock.ManualClock
	rec   *memevents.Recorder
	svc   *Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = memstore.NewStore()
	s.clk = memclock.NewManualClock(time.Date(2024, 5, 10, 15, 30, 0, 0, time.UTC))
	s.rec = memevents.NewRecorder(nil)
	s.svc = NewService(s.store, s.clk, WithPublisher(s.rec), WithLogger(logging.Discard()))
}

func (s *ServiceSuite) addClient(email string) domain.ClientID {
	var id domain.ClientID
	err := s.store.WithinTx(s.ctx, func(tx bookingstore.Tx) error {
		var err error
		id, err = tx.InsertClient(s.ctx, bookingstore.NewClient{FirstName: "Jan", LastName: "Kowalski", Email: email})
		return err
	})
	s.Require().NoError(err)
	return id
}

func (s *ServiceSuite) addTrip(name string, maxPeople int) domain.TripID {
	id, err := s.store.CreateTrip(s.ctx, bookingstore.NewTrip{
		Name:      name,
		DateFrom:  time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		DateTo:    time.Date(2024, 6, 7, 0, 0, 0, 0, time.UTC),
		MaxPeople: maxPeople,
	})
	s.Require().NoError(err)
	return id
}

func (s *ServiceSuite) TestRegister_LastSeatThenFullThenDuplicate() {
	c1 := s.addClient("one@example.com")
	c2 := s.addClient("two@example.com")
	trip := s.addTrip("Rila", 1)

	s.Require().NoError(s.svc.Register(s.ctx, c1, trip))

	err := s.svc.Register(s.ctx, c2, trip)
	s.Require().True(apperr.HasCode(err, apperr.CodeTripFull), "err=%v", err)
	s.Require().True(apperr.HasKind(err, apperr.KindConflict))

	// Already registered wins over trip full.
	err = s.svc.Register(s.ctx, c1, trip)
	s.Require().True(apperr.HasCode(err, apperr.CodeClientAlreadyRegistered), "err=%v", err)

	got, err := s.svc.ListClientTrips(s.ctx, c1)
	s.Require().NoError(err)
	s.Require().Len(got, 1)
	s.Equal(trip, got[0].TripID)
	s.Equal(time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC), got[0].RegisteredAt)
	s.Nil(got[0].PaymentDate)
}

func (s *ServiceSuite) TestRegister_SingleSeatTripChangesHands() {
	c1 := s.addClient("one@example.com")
	c2 := s.addClient("two@example.com")
	s.Require().Equal(domain.ClientID(1), c1)
	s.Require().Equal(domain.ClientID(2), c2)
	for i := 1; i <= 4; i++ {
		s.addTrip("filler", 10)
	}
	trip := s.addTrip("Tatras", 1)
	s.Require().Equal(domain.TripID(5), trip)

	s.Require().NoError(s.svc.Register(s.ctx, 1, 5))
	err := s.svc.Register(s.ctx, 2, 5)
	s.Require().True(apperr.HasCode(err, apperr.CodeTripFull), "err=%v", err)
	s.Require().NoError(s.svc.Unregister(s.ctx, 1, 5))
	s.Require().NoError(s.svc.Register(s.ctx, 2, 5))
}

func (s *ServiceSuite) TestRegister_CheckOrder() {
	c := s.addClient("a@example.com")
	trip := s.addTrip("Alps", 2)

	// Missing client wins over missing trip.
	err := s.svc.Register(s.ctx, 999, 888)
	s.Require().True(apperr.HasCode(err, apperr.CodeClientNotFound), "err=%v", err)

	err = s.svc.Register(s.ctx, c, 888)
	s.Require().True(apperr.HasCode(err, apperr.CodeTripNotFound), "err=%v", err)
	s.Require().True(apperr.HasKind(err, apperr.KindNotFound))

	s.Require().NoError(s.svc.Register(s.ctx, c, trip))
}

func (s *ServiceSuite) TestRegister_AfterUnregisterUsesNewDate() {
	c := s.addClient("a@example.com")
	trip := s.addTrip("Alps", 2)

	s.Require().NoError(s.svc.Register(s.ctx, c, trip))
	s.Require().NoError(s.svc.Unregister(s.ctx, c, trip))

	s.clk.Advance(72 * time.Hour)
	s.Require().NoError(s.svc.Register(s.ctx, c, trip))

	got, err := s.svc.ListClientTrips(s.ctx, c)
	s.Require().NoError(err)
	s.Require().Len(got, 1)
	s.Equal(time.Date(2024, 5, 13, 0, 0, 0, 0, time.UTC), got[0].RegisteredAt)
}

func (s *ServiceSuite) TestUnregister_Missing() {
	c := s.addClient("a@example.com")
	trip := s.addTrip("Alps", 2)

	err := s.svc.Unregister(s.ctx, c, trip)
	s.Require().True(apperr.HasCode(err, apperr.CodeRegistrationNotFound), "err=%v", err)
	s.Require().True(apperr.HasKind(err, apperr.KindNotFound))

	// Unknown ids also report the missing registration.
	err = s.svc.Unregister(s.ctx, 999, 888)
	s.Require().True(apperr.HasCode(err, apperr.CodeRegistrationNotFound), "err=%v", err)
}

func (s *ServiceSuite) TestUnregister_FreesSeat() {
	c1 := s.addClient("one@example.com")
	c2 := s.addClient("two@example.com")
	trip := s.addTrip("Rila", 1)

	s.Require().NoError(s.svc.Register(s.ctx, c1, trip))
	s.Require().NoError(s.svc.Unregister(s.ctx, c1, trip))
	s.Require().NoError(s.svc.Register(s.ctx, c2, trip))
}

func (s *ServiceSuite) TestListClientTrips() {
	c := s.addClient("a@example.com")

	got, err := s.svc.ListClientTrips(s.ctx, c)
	s.Require().NoError(err)
	s.Require().NotNil(got)
	s.Empty(got)

	_, err = s.svc.ListClientTrips(s.ctx, 999)
	s.Require().True(apperr.HasCode(err, apperr.CodeClientNotFound), "err=%v", err)
}

func (s *ServiceSuite) TestEventsPublishedAfterCommit() {
	c := s.addClient("a@example.com")
	trip := s.addTrip("Alps", 1)

	s.Require().NoError(s.svc.Register(s.ctx, c, trip))
	s.Require().Error(s.svc.Register(s.ctx, c, trip))
	s.Require().NoError(s.svc.Unregister(s.ctx, c, trip))

	got := s.rec.Events()
	s.Require().Len(got, 2)
	s.Equal(events.TypeRegistrationCreated, got[0].Type)
	s.Equal(events.TypeRegistrationRemoved, got[1].Type)
	s.Equal(c, got[0].ClientID)
	s.Equal(trip, got[0].TripID)
	s.NotEmpty(got[0].ID)
	s.NotEqual(got[0].ID, got[1].ID)
}

func (s *ServiceSuite) TestPublishFailureDoesNotFailRegister() {
	c := s.addClient("a@example.com")
	trip := s.addTrip("Alps", 1)
	s.rec.FailWith(errors.New("broker down"))

	s.Require().NoError(s.svc.Register(s.ctx, c, trip))

	got, err := s.svc.ListClientTrips(s.ctx, c)
	s.Require().NoError(err)
	s.Len(got, 1)
}

func (s *ServiceSuite) TestConcurrentRegister_LastSeat() {
	const racers = 16
	trip := s.addTrip("Rila", 3)
	clients := make([]domain.ClientID, racers)
	for i := range clients {
		clients[i] = s.addClient(string(rune('a'+i)) + "@example.com")
	}

	var ok, full atomic.Int32
	var wg sync.WaitGroup
	for _, c := range clients {
		wg.Add(1)
		go func(c domain.ClientID) {
			defer wg.Done()
			err := s.svc.Register(s.ctx, c, trip)
			switch {
			case err == nil:
				ok.Add(1)
			case apperr.HasCode(err, apperr.CodeTripFull):
				full.Add(1)
			default:
				s.T().Errorf("Register(%d) err=%v", c, err)
			}
		}(c)
	}
	wg.Wait()

	s.Equal(int32(3), ok.Load())
	s.Equal(int32(racers-3), full.Load())
}

func (s *ServiceSuite) TestConcurrentRegister_SamePair() {
	c := s.addClient("a@example.com")
	trip := s.addTrip("Alps", 10)

	var ok, dup atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.svc.Register(s.ctx, c, trip)
			switch {
			case err == nil:
				ok.Add(1)
			case apperr.HasCode(err, apperr.CodeClientAlreadyRegistered):
				dup.Add(1)
			default:
				s.T().Errorf("Register() err=%v", err)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), ok.Load())
	s.Equal(int32(7), dup.Load())
}

func runTx(tx bookingstore.Tx) func(context.Context, func(bookingstore.Tx) error) error {
	return func(_ context.Context, fn func(bookingstore.Tx) error) error { return fn(tx) }
}

func TestRegister_MissingClientShortCircuits(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	store := mocks.NewMockStore(ctrl)
	tx := mocks.NewMockTx(ctrl)

	store.EXPECT().WithinTx(gomock.Any(), gomock.Any()).DoAndReturn(runTx(tx))
	tx.EXPECT().ClientExists(gomock.Any(), domain.ClientID(999)).Return(false, nil)
	// No LockTrip, RegistrationExists, CountRegistrations or InsertRegistration.

	rec := memevents.NewRecorder(nil)
	svc := NewService(store, memclock.NewManualClock(time.Unix(0, 0)), WithPublisher(rec), WithLogger(logging.Discard()))
	err := svc.Register(context.Background(), 999, 5)
	require.True(t, apperr.HasCode(err, apperr.CodeClientNotFound), "err=%v", err)
	require.Empty(t, rec.Events())
}

func TestRegister_InsertRaceMapsToAlreadyRegistered(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	store := mocks.NewMockStore(ctrl)
	tx := mocks.NewMockTx(ctrl)

	store.EXPECT().WithinTx(gomock.Any(), gomock.Any()).DoAndReturn(runTx(tx))
	gomock.InOrder(
		tx.EXPECT().ClientExists(gomock.Any(), domain.ClientID(1)).Return(true, nil),
		tx.EXPECT().LockTrip(gomock.Any(), domain.TripID(5)).Return(2, nil),
		tx.EXPECT().RegistrationExists(gomock.Any(), domain.ClientID(1), domain.TripID(5)).Return(false, nil),
		tx.EXPECT().CountRegistrations(gomock.Any(), domain.TripID(5)).Return(0, nil),
		tx.EXPECT().InsertRegistration(gomock.Any(), gomock.Any()).Return(bookingstore.ErrAlreadyRegistered),
	)

	svc := NewService(store, memclock.NewManualClock(time.Unix(0, 0)), WithLogger(logging.Discard()))
	err := svc.Register(context.Background(), 1, 5)
	require.True(t, apperr.HasCode(err, apperr.CodeClientAlreadyRegistered), "err=%v", err)
}

func TestRegister_StoreFailure(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	store := mocks.NewMockStore(ctrl)
	tx := mocks.NewMockTx(ctrl)
	cause := errors.New("connection reset")

	store.EXPECT().WithinTx(gomock.Any(), gomock.Any()).DoAndReturn(runTx(tx))
	tx.EXPECT().ClientExists(gomock.Any(), gomock.Any()).Return(true, nil)
	tx.EXPECT().LockTrip(gomock.Any(), gomock.Any()).Return(0, cause)

	svc := NewService(store, memclock.NewManualClock(time.Unix(0, 0)), WithLogger(logging.Discard()))
	err := svc.Register(context.Background(), 1, 5)
	require.True(t, apperr.HasKind(err, apperr.KindStoreFailure), "err=%v", err)
	require.ErrorIs(t, err, cause)
}

func TestListClientTrips_StoreFailure(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	store := mocks.NewMockStore(ctrl)
	store.EXPECT().WithinTx(gomock.Any(), gomock.Any()).Return(context.DeadlineExceeded)

	svc := NewService(store, memclock.NewManualClock(time.Unix(0, 0)), WithLogger(logging.Discard()))
	_, err := svc.ListClientTrips(context.Background(), 1)
	require.True(t, apperr.HasCode(err, apperr.CodeStoreFailure), "err=%v", err)
}
