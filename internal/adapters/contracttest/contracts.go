package contracttest

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Overland-East-Bay/trip-booking-api/internal/domain"
	bookingstoreport "github.com/Overland-East-Bay/trip-booking-api/internal/ports/out/bookingstore"
	idempotencyport "github.com/Overland-East-Bay/trip-booking-api/internal/ports/out/idempotency"
)

type CleanupFunc = func()

type BookingStoreFactory func(t *testing.T) (bookingstoreport.Store, CleanupFunc)
type IdemStoreFactory func(t *testing.T) (idempotencyport.Store, CleanupFunc)

func RunIdempotencyStore(t *testing.T, newStore IdemStoreFactory) {
	t.Helper()
	ctx := context.Background()

	store, cleanup := newStore(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	fp := idempotencyport.Fingerprint{
		Key:      "k-1",
		Method:   "POST",
		Route:    "/api/clients",
		BodyHash: "",
	}
	rec := idempotencyport.Record{
		StatusCode:  0,
		ContentType: "text/plain",
		Body:        []byte("hash-abc"),
		CreatedAt:   time.Now().UTC().Truncate(time.Second),
	}
	if err := store.Put(ctx, fp, rec); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, ok, err := store.Get(ctx, fp)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok {
		t.Fatalf("expected ok=true")
	}
	if string(got.Body) != "hash-abc" || got.ContentType != "text/plain" || got.StatusCode != 0 {
		t.Fatalf("unexpected record: %+v", got)
	}

	// Overwrite semantics.
	rec2 := rec
	rec2.Body = []byte("hash-def")
	if err := store.Put(ctx, fp, rec2); err != nil {
		t.Fatalf("Put overwrite: %v", err)
	}
	got, ok, err = store.Get(ctx, fp)
	if err != nil || !ok || string(got.Body) != "hash-def" {
		t.Fatalf("expected overwritten record, got ok=%v err=%v body=%q", ok, err, string(got.Body))
	}

	// Fingerprints differing only by body hash are distinct.
	other := fp
	other.BodyHash = "hash-def"
	if _, ok, err := store.Get(ctx, other); err != nil || ok {
		t.Fatalf("Get(other)=ok:%v err:%v, want ok=false", ok, err)
	}
}

// RunBookingStore exercises the single-threaded contract of bookingstore.Store.
func RunBookingStore(t *testing.T, newStore BookingStoreFactory) {
	t.Helper()
	ctx := context.Background()

	store, cleanup := newStore(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	// --- catalog ---
	older, err := store.CreateTrip(ctx, bookingstoreport.NewTrip{
		Name:        "Baltic Coast",
		Description: "Gdansk to Klaipeda",
		DateFrom:    date(2024, 6, 1),
		DateTo:      date(2024, 6, 10),
		MaxPeople:   2,
		Countries:   []string{"Poland", "Lithuania"},
	})
	if err != nil {
		t.Fatalf("CreateTrip older: %v", err)
	}
	newer, err := store.CreateTrip(ctx, bookingstoreport.NewTrip{
		Name:        "Alps",
		Description: "Hut to hut",
		DateFrom:    date(2024, 8, 1),
		DateTo:      date(2024, 8, 5),
		MaxPeople:   1,
		Countries:   []string{"Austria", "Poland"},
	})
	if err != nil {
		t.Fatalf("CreateTrip newer: %v", err)
	}

	trips, err := store.ListTrips(ctx)
	if err != nil {
		t.Fatalf("ListTrips: %v", err)
	}
	if len(trips) != 2 || trips[0].ID != newer || trips[1].ID != older {
		t.Fatalf("ListTrips order=%+v, want newest DateFrom first", trips)
	}

	got, err := store.GetTrip(ctx, older)
	if err != nil {
		t.Fatalf("GetTrip: %v", err)
	}
	if got.Name != "Baltic Coast" || got.MaxPeople != 2 || !got.DateFrom.Equal(date(2024, 6, 1)) || !got.DateTo.Equal(date(2024, 6, 10)) {
		t.Fatalf("GetTrip=%+v", got)
	}
	if fmt.Sprint(got.Countries) != "[Lithuania Poland]" {
		t.Fatalf("GetTrip countries=%v, want sorted [Lithuania Poland]", got.Countries)
	}
	if _, err := store.GetTrip(ctx, domain.TripID(999999)); !errors.Is(err, bookingstoreport.ErrNotFound) {
		t.Fatalf("GetTrip(missing) err=%v, want ErrNotFound", err)
	}

	countries, err := store.ListCountries(ctx)
	if err != nil {
		t.Fatalf("ListCountries: %v", err)
	}
	if len(countries) != 3 || countries[0].Name != "Austria" || countries[2].Name != "Poland" {
		t.Fatalf("ListCountries=%+v, want 3 unique countries sorted by name", countries)
	}

	// --- clients ---
	pesel := "90010112345"
	phone := "+48 600 100 200"
	var alice domain.ClientID
	if err := store.WithinTx(ctx, func(tx bookingstoreport.Tx) error {
		var err error
		alice, err = tx.InsertClient(ctx, bookingstoreport.NewClient{
			FirstName: "Alice",
			LastName:  "Nowak",
			Email:     "Alice@Example.com",
			Telephone: &phone,
			Pesel:     &pesel,
		})
		return err
	}); err != nil {
		t.Fatalf("InsertClient alice: %v", err)
	}
	c, err := store.GetClient(ctx, alice)
	if err != nil {
		t.Fatalf("GetClient: %v", err)
	}
	if c.Email != "Alice@Example.com" || c.Pesel == nil || *c.Pesel != pesel || c.Telephone == nil || *c.Telephone != phone {
		t.Fatalf("GetClient=%+v", c)
	}
	if _, err := store.GetClient(ctx, domain.ClientID(999999)); !errors.Is(err, bookingstoreport.ErrNotFound) {
		t.Fatalf("GetClient(missing) err=%v, want ErrNotFound", err)
	}

	if err := store.WithinTx(ctx, func(tx bookingstoreport.Tx) error {
		_, err := tx.InsertClient(ctx, bookingstoreport.NewClient{FirstName: "Émile", LastName: "Zola", Email: "Émile@Example.com"})
		return err
	}); err != nil {
		t.Fatalf("InsertClient emile: %v", err)
	}

	// Email uniqueness is case-insensitive (non-ASCII letters included); pesel
	// uniqueness is enforced when present.
	for name, nc := range map[string]bookingstoreport.NewClient{
		"email":           {FirstName: "A", LastName: "B", Email: "alice@example.COM"},
		"non-ascii email": {FirstName: "A", LastName: "B", Email: "émile@example.com"},
		"pesel":           {FirstName: "A", LastName: "B", Email: "other@example.com", Pesel: &pesel},
	} {
		err := store.WithinTx(ctx, func(tx bookingstoreport.Tx) error {
			taken, err := tx.ClientKeyTaken(ctx, nc.Email, nc.Pesel)
			if err != nil {
				return err
			}
			if !taken {
				t.Errorf("ClientKeyTaken(%s)=false, want true", name)
			}
			_, err = tx.InsertClient(ctx, nc)
			return err
		})
		if !errors.Is(err, bookingstoreport.ErrDuplicateClient) {
			t.Fatalf("InsertClient duplicate %s err=%v, want ErrDuplicateClient", name, err)
		}
	}

	// Clients without pesel do not collide with each other.
	var bob, carol domain.ClientID
	if err := store.WithinTx(ctx, func(tx bookingstoreport.Tx) error {
		var err error
		if bob, err = tx.InsertClient(ctx, bookingstoreport.NewClient{FirstName: "Bob", LastName: "K", Email: "bob@example.com"}); err != nil {
			return err
		}
		carol, err = tx.InsertClient(ctx, bookingstoreport.NewClient{FirstName: "Carol", LastName: "K", Email: "carol@example.com"})
		return err
	}); err != nil {
		t.Fatalf("InsertClient bob/carol: %v", err)
	}

	// --- rollback ---
	boom := errors.New("boom")
	err = store.WithinTx(ctx, func(tx bookingstoreport.Tx) error {
		if _, err := tx.InsertClient(ctx, bookingstoreport.NewClient{FirstName: "Rolled", LastName: "Back", Email: "rollback@example.com"}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("WithinTx err=%v, want boom", err)
	}
	if err := store.WithinTx(ctx, func(tx bookingstoreport.Tx) error {
		taken, err := tx.ClientKeyTaken(ctx, "rollback@example.com", nil)
		if err != nil {
			return err
		}
		if taken {
			t.Errorf("rolled back client is visible")
		}
		return nil
	}); err != nil {
		t.Fatalf("WithinTx check rollback: %v", err)
	}

	// --- registrations ---
	regDay := date(2024, 5, 20)
	if err := store.WithinTx(ctx, func(tx bookingstoreport.Tx) error {
		maxPeople, err := tx.LockTrip(ctx, older)
		if err != nil {
			return err
		}
		if maxPeople != 2 {
			t.Errorf("LockTrip maxPeople=%d, want 2", maxPeople)
		}
		if _, err := tx.LockTrip(ctx, domain.TripID(999999)); !errors.Is(err, bookingstoreport.ErrNotFound) {
			t.Errorf("LockTrip(missing) err=%v, want ErrNotFound", err)
		}
		if ok, err := tx.ClientExists(ctx, alice); err != nil || !ok {
			t.Errorf("ClientExists(alice)=%v err=%v", ok, err)
		}
		if ok, err := tx.ClientExists(ctx, domain.ClientID(999999)); err != nil || ok {
			t.Errorf("ClientExists(missing)=%v err=%v", ok, err)
		}
		if err := tx.InsertRegistration(ctx, domain.Registration{ClientID: alice, TripID: older, RegisteredAt: regDay}); err != nil {
			return err
		}
		return tx.InsertRegistration(ctx, domain.Registration{ClientID: alice, TripID: newer, RegisteredAt: regDay.AddDate(0, 0, 1)})
	}); err != nil {
		t.Fatalf("InsertRegistration: %v", err)
	}

	err = store.WithinTx(ctx, func(tx bookingstoreport.Tx) error {
		return tx.InsertRegistration(ctx, domain.Registration{ClientID: alice, TripID: older, RegisteredAt: regDay})
	})
	if !errors.Is(err, bookingstoreport.ErrAlreadyRegistered) {
		t.Fatalf("InsertRegistration duplicate err=%v, want ErrAlreadyRegistered", err)
	}

	if err := store.WithinTx(ctx, func(tx bookingstoreport.Tx) error {
		ok, err := tx.RegistrationExists(ctx, alice, older)
		if err != nil || !ok {
			t.Errorf("RegistrationExists(alice, older)=%v err=%v", ok, err)
		}
		ok, err = tx.RegistrationExists(ctx, bob, older)
		if err != nil || ok {
			t.Errorf("RegistrationExists(bob, older)=%v err=%v", ok, err)
		}
		n, err := tx.CountRegistrations(ctx, older)
		if err != nil || n != 1 {
			t.Errorf("CountRegistrations(older)=%d err=%v, want 1", n, err)
		}

		items, err := tx.ListClientTrips(ctx, alice)
		if err != nil {
			return err
		}
		if len(items) != 2 {
			t.Fatalf("ListClientTrips len=%d, want 2", len(items))
		}
		first := items[0]
		if first.TripID != older || first.TripName != "Baltic Coast" || first.TripDescription != "Gdansk to Klaipeda" || first.MaxPeople != 2 {
			t.Errorf("ListClientTrips[0]=%+v", first)
		}
		if !first.RegisteredAt.Equal(regDay) || first.PaymentDate != nil {
			t.Errorf("ListClientTrips[0] registeredAt=%v paymentDate=%v", first.RegisteredAt, first.PaymentDate)
		}
		if !first.DateFrom.Equal(date(2024, 6, 1)) || !first.DateTo.Equal(date(2024, 6, 10)) {
			t.Errorf("ListClientTrips[0] dates=%v..%v", first.DateFrom, first.DateTo)
		}
		if items[1].TripID != newer {
			t.Errorf("ListClientTrips[1].TripID=%d, want %d", items[1].TripID, newer)
		}

		empty, err := tx.ListClientTrips(ctx, carol)
		if err != nil {
			return err
		}
		if empty == nil || len(empty) != 0 {
			t.Errorf("ListClientTrips(carol)=%#v, want empty non-nil", empty)
		}
		return nil
	}); err != nil {
		t.Fatalf("WithinTx reads: %v", err)
	}

	if err := store.WithinTx(ctx, func(tx bookingstoreport.Tx) error {
		return tx.DeleteRegistration(ctx, alice, older)
	}); err != nil {
		t.Fatalf("DeleteRegistration: %v", err)
	}
	err = store.WithinTx(ctx, func(tx bookingstoreport.Tx) error {
		return tx.DeleteRegistration(ctx, alice, older)
	})
	if !errors.Is(err, bookingstoreport.ErrNotFound) {
		t.Fatalf("DeleteRegistration(missing) err=%v, want ErrNotFound", err)
	}

	// --- cancelled context never commits ---
	cctx, cancel := context.WithCancel(ctx)
	cancel()
	err = store.WithinTx(cctx, func(tx bookingstoreport.Tx) error {
		return tx.InsertRegistration(cctx, domain.Registration{ClientID: bob, TripID: older, RegisteredAt: regDay})
	})
	if err == nil {
		t.Fatalf("WithinTx(cancelled ctx) err=nil, want error")
	}
	if err := store.WithinTx(ctx, func(tx bookingstoreport.Tx) error {
		ok, err := tx.RegistrationExists(ctx, bob, older)
		if err != nil {
			return err
		}
		if ok {
			t.Errorf("registration from cancelled tx is visible")
		}
		return nil
	}); err != nil {
		t.Fatalf("WithinTx check cancelled: %v", err)
	}

	if err := store.Ping(ctx); err != nil {
		t.Fatalf("Ping: %v", err)
	}
}

// RunBookingStoreConcurrency races check-then-insert transactions against one trip and
// asserts the store serializes them.
func RunBookingStoreConcurrency(t *testing.T, newStore BookingStoreFactory) {
	t.Helper()
	ctx := context.Background()

	store, cleanup := newStore(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	const racers = 8

	tripID, err := store.CreateTrip(ctx, bookingstoreport.NewTrip{
		Name:      "Last seat",
		DateFrom:  date(2025, 1, 1),
		DateTo:    date(2025, 1, 2),
		MaxPeople: 2,
	})
	if err != nil {
		t.Fatalf("CreateTrip: %v", err)
	}

	clients := make([]domain.ClientID, racers+1)
	if err := store.WithinTx(ctx, func(tx bookingstoreport.Tx) error {
		for i := range clients {
			id, err := tx.InsertClient(ctx, bookingstoreport.NewClient{
				FirstName: "Racer",
				LastName:  fmt.Sprint(i),
				Email:     fmt.Sprintf("racer-%d@example.com", i),
			})
			if err != nil {
				return err
			}
			clients[i] = id
		}
		// One seat already taken.
		return tx.InsertRegistration(ctx, domain.Registration{ClientID: clients[racers], TripID: tripID, RegisteredAt: date(2024, 12, 1)})
	}); err != nil {
		t.Fatalf("seed clients: %v", err)
	}

	t.Run("last seat", func(t *testing.T) {
		var ok, full atomic.Int32
		var g errgroup.Group
		for i := 0; i < racers; i++ {
			clientID := clients[i]
			g.Go(func() error {
				err := checkedRegister(ctx, store, clientID, tripID)
				switch {
				case err == nil:
					ok.Add(1)
				case errors.Is(err, errTripFull):
					full.Add(1)
				default:
					return err
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			t.Fatalf("racer err=%v", err)
		}
		if ok.Load() != 1 || full.Load() != racers-1 {
			t.Fatalf("ok=%d full=%d, want ok=1 full=%d", ok.Load(), full.Load(), racers-1)
		}
		assertCount(t, store, tripID, 2)
	})

	t.Run("duplicate pair", func(t *testing.T) {
		dupTrip, err := store.CreateTrip(ctx, bookingstoreport.NewTrip{
			Name:      "Roomy",
			DateFrom:  date(2025, 2, 1),
			DateTo:    date(2025, 2, 2),
			MaxPeople: racers * 2,
		})
		if err != nil {
			t.Fatalf("CreateTrip: %v", err)
		}

		var ok, dup atomic.Int32
		var g errgroup.Group
		for i := 0; i < racers; i++ {
			g.Go(func() error {
				err := checkedRegister(ctx, store, clients[0], dupTrip)
				switch {
				case err == nil:
					ok.Add(1)
				case errors.Is(err, bookingstoreport.ErrAlreadyRegistered):
					dup.Add(1)
				default:
					return err
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			t.Fatalf("racer err=%v", err)
		}
		if ok.Load() != 1 || dup.Load() != racers-1 {
			t.Fatalf("ok=%d dup=%d, want ok=1 dup=%d", ok.Load(), dup.Load(), racers-1)
		}
		assertCount(t, store, dupTrip, 1)
	})

	t.Run("duplicate email", func(t *testing.T) {
		var ok, dup atomic.Int32
		var g errgroup.Group
		for i := 0; i < racers; i++ {
			g.Go(func() error {
				err := store.WithinTx(ctx, func(tx bookingstoreport.Tx) error {
					_, err := tx.InsertClient(ctx, bookingstoreport.NewClient{FirstName: "Same", LastName: "Person", Email: "same@example.com"})
					return err
				})
				switch {
				case err == nil:
					ok.Add(1)
				case errors.Is(err, bookingstoreport.ErrDuplicateClient):
					dup.Add(1)
				default:
					return err
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			t.Fatalf("racer err=%v", err)
		}
		if ok.Load() != 1 || dup.Load() != racers-1 {
			t.Fatalf("ok=%d dup=%d, want ok=1 dup=%d", ok.Load(), dup.Load(), racers-1)
		}
	})
}

var errTripFull = errors.New("trip full")

// checkedRegister is the store-level shape of the registration workflow.
func checkedRegister(ctx context.Context, store bookingstoreport.Store, clientID domain.ClientID, tripID domain.TripID) error {
	return store.WithinTx(ctx, func(tx bookingstoreport.Tx) error {
		maxPeople, err := tx.LockTrip(ctx, tripID)
		if err != nil {
			return err
		}
		exists, err := tx.RegistrationExists(ctx, clientID, tripID)
		if err != nil {
			return err
		}
		if exists {
			return bookingstoreport.ErrAlreadyRegistered
		}
		n, err := tx.CountRegistrations(ctx, tripID)
		if err != nil {
			return err
		}
		if n >= maxPeople {
			return errTripFull
		}
		return tx.InsertRegistration(ctx, domain.Registration{ClientID: clientID, TripID: tripID, RegisteredAt: date(2025, 1, 1)})
	})
}

func assertCount(t *testing.T, store bookingstoreport.Store, tripID domain.TripID, want int) {
	t.Helper()
	ctx := context.Background()
	if err := store.WithinTx(ctx, func(tx bookingstoreport.Tx) error {
		n, err := tx.CountRegistrations(ctx, tripID)
		if err != nil {
			return err
		}
		if n != want {
			t.Errorf("CountRegistrations=%d, want %d", n, want)
		}
		return nil
	}); err != nil {
		t.Fatalf("CountRegistrations: %v", err)
	}
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
