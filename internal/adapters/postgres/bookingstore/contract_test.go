package bookingstore

import (
	"testing"

	"github.com/Overland-East-Bay/trip-booking-api/internal/adapters/contracttest"
	"github.com/Overland-East-Bay/trip-booking-api/internal/adapters/postgres/testutil"
	bookingstoreport "github.com/Overland-East-Bay/trip-booking-api/internal/ports/out/bookingstore"
)

func TestContract_PostgresBookingStore(t *testing.T) {
	contracttest.RunBookingStore(t, func(t *testing.T) (bookingstoreport.Store, contracttest.CleanupFunc) {
		t.Helper()
		return NewStore(testutil.OpenMigratedPool(t)), nil
	})
}

func TestContract_PostgresBookingStoreConcurrency(t *testing.T) {
	contracttest.RunBookingStoreConcurrency(t, func(t *testing.T) (bookingstoreport.Store, contracttest.CleanupFunc) {
		t.Helper()
		return NewStore(testutil.OpenMigratedPool(t)), nil
	})
}
