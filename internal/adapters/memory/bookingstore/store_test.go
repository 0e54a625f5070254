package bookingstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Overland-East-Bay/trip-booking-api/internal/domain"
	bookingstoreport "github.com/Overland-East-Bay/trip-booking-api/internal/ports/out/bookingstore"
)

func TestStore_PanicInTxRollsBack(t *testing.T) {
	t.Parallel()

	s := NewStore()
	ctx := context.Background()

	func() {
		defer func() { _ = recover() }()
		_ = s.WithinTx(ctx, func(tx bookingstoreport.Tx) error {
			if _, err := tx.InsertClient(ctx, bookingstoreport.NewClient{FirstName: "P", LastName: "Q", Email: "p@example.com"}); err != nil {
				return err
			}
			panic("boom")
		})
	}()

	if _, err := s.GetClient(ctx, domain.ClientID(1)); !errors.Is(err, bookingstoreport.ErrNotFound) {
		t.Fatalf("GetClient() err=%v, want ErrNotFound after panic", err)
	}
	// The lock must have been released.
	if err := s.WithinTx(ctx, func(tx bookingstoreport.Tx) error { return nil }); err != nil {
		t.Fatalf("WithinTx() err=%v", err)
	}
}

func TestStore_GetTripReturnsCopy(t *testing.T) {
	t.Parallel()

	s := NewStore()
	ctx := context.Background()
	id, err := s.CreateTrip(ctx, bookingstoreport.NewTrip{
		Name:      "Tatra",
		DateFrom:  time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC),
		DateTo:    time.Date(2024, 7, 3, 0, 0, 0, 0, time.UTC),
		MaxPeople: 3,
		Countries: []string{"Slovakia", "Poland", "Poland"},
	})
	if err != nil {
		t.Fatalf("CreateTrip() err=%v", err)
	}

	got, err := s.GetTrip(ctx, id)
	if err != nil {
		t.Fatalf("GetTrip() err=%v", err)
	}
	if len(got.Countries) != 2 {
		t.Fatalf("Countries=%v, want duplicates collapsed", got.Countries)
	}
	if !got.DateFrom.Equal(time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("DateFrom=%v, want truncated to day", got.DateFrom)
	}
	got.Countries[0] = "mutated"

	again, _ := s.GetTrip(ctx, id)
	if again.Countries[0] != "Poland" {
		t.Fatalf("Countries[0]=%q, want Poland (store must not share slices)", again.Countries[0])
	}
}

func TestStore_TxTimeoutAppliedWithoutDeadline(t *testing.T) {
	t.Parallel()

	s := NewStore().WithTxTimeout(10 * time.Millisecond)
	err := s.WithinTx(context.Background(), func(tx bookingstoreport.Tx) error {
		time.Sleep(50 * time.Millisecond)
		return nil
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("WithinTx() err=%v, want DeadlineExceeded", err)
	}
}
