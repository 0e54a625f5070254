package seed

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	memstore "github.com/Overland-East-Bay/trip-booking-api/internal/adapters/memory/bookingstore"
)

func TestSample_Applies(t *testing.T) {
	t.Parallel()

	f, err := Sample()
	require.NoError(t, err)
	require.Len(t, f.Trips, 3)

	store := memstore.NewStore()
	ids, err := Apply(context.Background(), store, f)
	require.NoError(t, err)
	require.Len(t, ids, 3)

	trip, err := store.GetTrip(context.Background(), ids[0])
	require.NoError(t, err)
	require.Equal(t, "Alpine Lakes", trip.Name)
	require.Equal(t, time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC), trip.DateFrom)
	require.Equal(t, []string{"Austria", "Italy"}, trip.Countries)

	countries, err := store.ListCountries(context.Background())
	require.NoError(t, err)
	require.Len(t, countries, 6)
}

func TestParse_RejectsUnknownKeys(t *testing.T) {
	t.Parallel()

	_, err := Parse(strings.NewReader("trips:\n  - name: X\n    seats: 3\n"))
	require.Error(t, err)
}

func TestParse_Empty(t *testing.T) {
	t.Parallel()

	_, err := Parse(strings.NewReader(""))
	require.Error(t, err)
}

func TestNewTrips_ReportsEveryInvalidTrip(t *testing.T) {
	t.Parallel()

	f := Fixture{Trips: []Trip{
		{Name: "ok", DateFrom: "2025-01-01", DateTo: "2025-01-02", MaxPeople: 1},
		{Name: " ", DateFrom: "2025-01-01", DateTo: "2025-01-02", MaxPeople: 1},
		{Name: "backwards", DateFrom: "2025-01-05", DateTo: "2025-01-02", MaxPeople: 1},
		{Name: "nobody", DateFrom: "2025-01-01", DateTo: "2025-01-02", MaxPeople: 0},
		{Name: "bad date", DateFrom: "01/01/2025", DateTo: "2025-01-02", MaxPeople: 1},
	}}
	trips, err := f.NewTrips()
	require.Nil(t, trips)
	require.Error(t, err)
	for _, want := range []string{"trips[1]", "trips[2]", "trips[3]", "trips[4]"} {
		require.Contains(t, err.Error(), want)
	}
	require.NotContains(t, err.Error(), "trips[0]")
}

func TestApply_InvalidFixtureWritesNothing(t *testing.T) {
	t.Parallel()

	store := memstore.NewStore()
	_, err := Apply(context.Background(), store, Fixture{Trips: []Trip{
		{Name: "ok", DateFrom: "2025-01-01", DateTo: "2025-01-02", MaxPeople: 1},
		{Name: "bad", DateFrom: "2025-01-01", DateTo: "2025-01-02"},
	}})
	require.Error(t, err)

	trips, err := store.ListTrips(context.Background())
	require.NoError(t, err)
	require.Empty(t, trips)
}
