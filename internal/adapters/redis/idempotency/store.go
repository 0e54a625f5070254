package idempotency

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Overland-East-Bay/trip-booking-api/internal/ports/out/idempotency"
)

const keyPrefix = "idem:"

// Store is a Redis implementation of idempotency.Store. Records expire through
// the key TTL, so no purge job is needed.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

func NewStore(client *redis.Client, ttl time.Duration) *Store {
	return &Store{client: client, ttl: ttl}
}

type record struct {
	StatusCode  int       `json:"statusCode"`
	ContentType string    `json:"contentType"`
	Body        []byte    `json:"body"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (s *Store) Get(ctx context.Context, fp idempotency.Fingerprint) (idempotency.Record, bool, error) {
	if s.client == nil {
		return idempotency.Record{}, false, errors.New("nil redis client")
	}
	raw, err := s.client.Get(ctx, redisKey(fp)).Bytes()
	if errors.Is(err, redis.Nil) {
		return idempotency.Record{}, false, nil
	}
	if err != nil {
		return idempotency.Record{}, false, err
	}
	var r record
	if err := json.Unmarshal(raw, &r); err != nil {
		return idempotency.Record{}, false, fmt.Errorf("decode idempotency record: %w", err)
	}
	return idempotency.Record{
		StatusCode:  r.StatusCode,
		ContentType: r.ContentType,
		Body:        r.Body,
		CreatedAt:   r.CreatedAt.UTC(),
	}, true, nil
}

func (s *Store) Put(ctx context.Context, fp idempotency.Fingerprint, rec idempotency.Record) error {
	if s.client == nil {
		return errors.New("nil redis client")
	}
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	raw, err := json.Marshal(record{
		StatusCode:  rec.StatusCode,
		ContentType: rec.ContentType,
		Body:        rec.Body,
		CreatedAt:   createdAt.UTC(),
	})
	if err != nil {
		return err
	}
	// ttl 0 keeps the key forever.
	return s.client.Set(ctx, redisKey(fp), raw, s.ttl).Err()
}

func (s *Store) Ping(ctx context.Context) error {
	if s.client == nil {
		return errors.New("nil redis client")
	}
	return s.client.Ping(ctx).Err()
}

// redisKey hashes the fingerprint so caller-supplied keys cannot collide through separators.
func redisKey(fp idempotency.Fingerprint) string {
	h := sha256.New()
	for _, part := range []string{string(fp.Key), fp.Method, fp.Route, fp.BodyHash} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return keyPrefix + hex.EncodeToString(h.Sum(nil))
}
