package bookingstore

import (
	"context"
	"testing"
	"time"
)

func TestCountryNames(t *testing.T) {
	t.Parallel()

	got := countryNames([]string{" Poland", "Austria", "", "Poland", "  "})
	if len(got) != 2 || got[0] != "Austria" || got[1] != "Poland" {
		t.Fatalf("countryNames()=%v, want [Austria Poland]", got)
	}
}

func TestDateHelpers(t *testing.T) {
	t.Parallel()

	in := time.Date(2024, 3, 9, 23, 59, 0, 0, time.UTC)
	d := dateOf(in)
	if !d.Valid || !d.Time.Equal(time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("dateOf()=%+v", d)
	}
	if p := datePtr(nil); p.Valid {
		t.Fatalf("datePtr(nil).Valid=true")
	}
	if got := dateToTimePtr(d); got == nil || !got.Equal(d.Time) {
		t.Fatalf("dateToTimePtr()=%v", got)
	}
	if got := dateToTimePtr(datePtr(nil)); got != nil {
		t.Fatalf("dateToTimePtr(invalid)=%v, want nil", got)
	}
}

func TestStore_NilPool(t *testing.T) {
	t.Parallel()

	s := NewStore(nil)
	if err := s.Ping(context.Background()); err == nil {
		t.Fatalf("Ping() err=nil, want error")
	}
	if _, err := s.ListTrips(context.Background()); err == nil {
		t.Fatalf("ListTrips() err=nil, want error")
	}
}
