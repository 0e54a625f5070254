package idempotency

import (
	"context"
	"testing"
	"time"

	"github.com/Overland-East-Bay/trip-booking-api/internal/adapters/contracttest"
	"github.com/Overland-East-Bay/trip-booking-api/internal/adapters/postgres/testutil"
	idempotencyport "github.com/Overland-East-Bay/trip-booking-api/internal/ports/out/idempotency"
)

func TestContract_PostgresIdempotencyStore(t *testing.T) {
	pool := testutil.OpenMigratedPool(t)

	contracttest.RunIdempotencyStore(t, func(t *testing.T) (idempotencyport.Store, contracttest.CleanupFunc) {
		t.Helper()
		return NewStore(pool, 24*time.Hour), nil
	})
}

func TestStore_ExpiredRecordsAreAbsentAndPurged(t *testing.T) {
	pool := testutil.OpenMigratedPool(t)
	ctx := context.Background()

	s := NewStore(pool, time.Hour)
	fp := idempotencyport.Fingerprint{Key: "k", Method: "PUT", Route: "/api/clients/{clientId}/trips/{tripId}"}
	old := time.Now().UTC().Add(-2 * time.Hour)
	if err := s.Put(ctx, fp, idempotencyport.Record{StatusCode: 204, CreatedAt: old}); err != nil {
		t.Fatalf("Put() err=%v", err)
	}
	if _, ok, err := s.Get(ctx, fp); err != nil || ok {
		t.Fatalf("Get() ok=%v err=%v, want expired", ok, err)
	}
	n, err := s.PurgeExpired(ctx)
	if err != nil || n != 1 {
		t.Fatalf("PurgeExpired()=%d, %v; want 1", n, err)
	}
}
