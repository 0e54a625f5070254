package bookingstore

import (
	"testing"

	"github.com/Overland-East-Bay/trip-booking-api/internal/adapters/contracttest"
	bookingstoreport "github.com/Overland-East-Bay/trip-booking-api/internal/ports/out/bookingstore"
)

func TestContract_BookingStore(t *testing.T) {
	contracttest.RunBookingStore(t, func(t *testing.T) (bookingstoreport.Store, func()) {
		t.Helper()
		return NewStore(), nil
	})
}

func TestContract_BookingStoreConcurrency(t *testing.T) {
	contracttest.RunBookingStoreConcurrency(t, func(t *testing.T) (bookingstoreport.Store, func()) {
		t.Helper()
		return NewStore(), nil
	})
}
