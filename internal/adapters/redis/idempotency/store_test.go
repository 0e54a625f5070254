package idempotency

import (
	"strings"
	"testing"

	"github.com/Overland-East-Bay/trip-booking-api/internal/ports/out/idempotency"
)

func TestRedisKey(t *testing.T) {
	t.Parallel()

	a := idempotency.Fingerprint{Key: "k", Method: "PUT", Route: "/a", BodyHash: ""}
	b := idempotency.Fingerprint{Key: "k", Method: "PUT", Route: "/a", BodyHash: "h"}
	c := idempotency.Fingerprint{Key: "kP", Method: "UT", Route: "/a"}

	ka, kb, kc := redisKey(a), redisKey(b), redisKey(c)
	if !strings.HasPrefix(ka, keyPrefix) {
		t.Fatalf("redisKey()=%q, want prefix %q", ka, keyPrefix)
	}
	if ka == kb || ka == kc {
		t.Fatalf("distinct fingerprints share a key: %q %q %q", ka, kb, kc)
	}
	if redisKey(a) != ka {
		t.Fatalf("redisKey() not deterministic")
	}
}
