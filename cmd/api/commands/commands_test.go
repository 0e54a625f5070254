package commands

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Overland-East-Bay/trip-booking-api/internal/adapters/sqlite"
	sqlitebookingstore "github.com/Overland-East-Bay/trip-booking-api/internal/adapters/sqlite/bookingstore"
)

func run(t *testing.T, args ...string) error {
	t.Helper()
	t.Setenv("LOG_LEVEL", "error")
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&discard{})
	cmd.SetErr(&discard{})
	return cmd.ExecuteContext(context.Background())
}

type discard struct{}

func (*discard) Write(p []byte) (int, error) { return len(p), nil }

func TestSeed_FlagValidation(t *testing.T) {
	require.ErrorContains(t, run(t, "seed"), "--file or --sample")
	require.ErrorContains(t, run(t, "seed", "--file", "x.yaml", "--sample"), "mutually exclusive")
}

func TestMigrate_RejectsMemoryBackend(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "memory")
	require.ErrorContains(t, run(t, "migrate", "up"), "postgres or sqlite")
}

func TestMigrateAndSeed_SQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "booking.db")
	t.Setenv("STORAGE_BACKEND", "sqlite")
	t.Setenv("SQLITE_PATH", path)
	t.Setenv("MIGRATE_ON_START", "false")

	require.NoError(t, run(t, "migrate", "up"))

	fixture := filepath.Join(t.TempDir(), "trips.yaml")
	require.NoError(t, os.WriteFile(fixture, []byte(`trips:
  - name: Test Trip
    description: d
    dateFrom: "2025-01-01"
    dateTo: "2025-01-03"
    maxPeople: 2
    countries: [Spain]
`), 0o600))
	require.NoError(t, run(t, "seed", "--file", fixture))

	db, err := sqlite.Open(context.Background(), path)
	require.NoError(t, err)
	trips, err := sqlitebookingstore.NewStore(db).ListTrips(context.Background())
	require.NoError(t, err)
	require.NoError(t, db.Close())
	require.Len(t, trips, 1)
	require.Equal(t, []string{"Spain"}, trips[0].Countries)

	require.NoError(t, run(t, "migrate", "down", "--steps", "1"))
}
