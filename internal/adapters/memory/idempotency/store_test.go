package idempotency

import (
	"context"
	"testing"
	"time"

	"github.com/Overland-East-Bay/trip-booking-api/internal/ports/out/idempotency"
)

func TestStore_PutThenGet(t *testing.T) {
	t.Parallel()

	s := NewStore()
	fp := idempotency.Fingerprint{
		Key:      "k1",
		Method:   "PUT",
		Route:    "/api/clients/{clientId}/trips/{tripId}",
		BodyHash: "abc123",
	}
	rec := idempotency.Record{
		StatusCode:  204,
		ContentType: "application/json",
		Body:        []byte(`{}`),
		CreatedAt:   time.Unix(123, 0).UTC(),
	}

	if err := s.Put(context.Background(), fp, rec); err != nil {
		t.Fatalf("Put() err=%v", err)
	}

	got, ok, err := s.Get(context.Background(), fp)
	if err != nil {
		t.Fatalf("Get() err=%v", err)
	}
	if !ok {
		t.Fatalf("Get() ok=false, want true")
	}
	if got.StatusCode != rec.StatusCode || got.ContentType != rec.ContentType || string(got.Body) != string(rec.Body) {
		t.Fatalf("Get()=%+v, want %+v", got, rec)
	}
}

func TestStore_ExpiredRecordIsAbsent(t *testing.T) {
	t.Parallel()

	s := NewStoreWithTTL(time.Minute)
	now := time.Unix(10_000, 0).UTC()
	s.now = func() time.Time { return now }

	fp := idempotency.Fingerprint{Key: "k1", Method: "POST", Route: "/api/clients"}
	if err := s.Put(context.Background(), fp, idempotency.Record{StatusCode: 201, CreatedAt: now.Add(-2 * time.Minute)}); err != nil {
		t.Fatalf("Put() err=%v", err)
	}
	if _, ok, err := s.Get(context.Background(), fp); err != nil || ok {
		t.Fatalf("Get() ok=%v err=%v, want ok=false", ok, err)
	}
}
