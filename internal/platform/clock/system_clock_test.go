package clock

import (
	"testing"
	"time"
)

func TestSystemClock_NowIsUTC(t *testing.T) {
	t.Parallel()

	before := time.Now()
	got := NewSystemClock().Now()
	if got.Location() != time.UTC {
		t.Fatalf("Location()=%v, want UTC", got.Location())
	}
	if got.Before(before.Add(-time.Second)) {
		t.Fatalf("Now()=%v is behind wall clock %v", got, before)
	}
}
