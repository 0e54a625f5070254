package idempotency

import (
	"context"
	"sync"
	"time"

	"github.com/Overland-East-Bay/trip-booking-api/internal/ports/out/idempotency"
)

// Store is an in-memory implementation of idempotency.Store.
// Records older than the TTL (when set) are treated as absent.
// It is safe for concurrent use.
type Store struct {
	mu  sync.RWMutex
	m   map[idempotency.Fingerprint]idempotency.Record
	ttl time.Duration
	now func() time.Time
}

func NewStore() *Store {
	return NewStoreWithTTL(0)
}

func NewStoreWithTTL(ttl time.Duration) *Store {
	return &Store{
		m:   make(map[idempotency.Fingerprint]idempotency.Record),
		ttl: ttl,
		now: func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) Get(ctx context.Context, fp idempotency.Fingerprint) (idempotency.Record, bool, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.m[fp]
	if !ok {
		return idempotency.Record{}, false, nil
	}
	if s.ttl > 0 && s.now().Sub(rec.CreatedAt) > s.ttl {
		return idempotency.Record{}, false, nil
	}
	rec.Body = append([]byte(nil), rec.Body...)
	return rec, true, nil
}

func (s *Store) Put(ctx context.Context, fp idempotency.Fingerprint, rec idempotency.Record) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = s.now()
	}
	rec.Body = append([]byte(nil), rec.Body...)
	s.m[fp] = rec
	return nil
}

func (s *Store) Ping(ctx context.Context) error { return nil }
