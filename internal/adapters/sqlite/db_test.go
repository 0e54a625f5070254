package sqlite

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDSN(t *testing.T) {
	t.Parallel()

	got := dsn("/tmp/x.db")
	require.True(t, strings.HasPrefix(got, "file:/tmp/x.db?"))
	require.Contains(t, got, "_txlock=immediate")
	require.Contains(t, got, "foreign_keys")
}

func TestOpen_MigrateAndConstraints(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	db, err := Open(ctx, filepath.Join(t.TempDir(), "booking.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, ApplyMigrations(db))
	require.NoError(t, ApplyMigrations(db), "second run must be a no-op")

	_, err = db.ExecContext(ctx, `INSERT INTO clients (first_name, last_name, email, email_key) VALUES ('a', 'b', 'X@y.com', 'x@y.com')`)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `INSERT INTO clients (first_name, last_name, email, email_key) VALUES ('c', 'd', 'x@Y.com', 'x@y.com')`)
	require.True(t, IsUniqueViolation(err), "err=%v", err)
	require.False(t, IsForeignKeyViolation(err))

	_, err = db.ExecContext(ctx, `INSERT INTO client_trip (client_id, trip_id, registered_at) VALUES (1, 42, '2024-01-01')`)
	require.True(t, IsForeignKeyViolation(err), "err=%v", err)
}

func TestOpen_EmptyPath(t *testing.T) {
	t.Parallel()

	_, err := Open(context.Background(), "")
	require.Error(t, err)
}

func TestRollbackMigrations(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	db, err := Open(ctx, filepath.Join(t.TempDir(), "booking.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, ApplyMigrations(db))
	require.NoError(t, RollbackMigrations(db, 1))

	_, err = db.ExecContext(ctx, `SELECT 1 FROM trips`)
	require.Error(t, err, "trips must be gone after rollback")
	require.Error(t, RollbackMigrations(db, 0))
}

func TestMigrationVersion(t *testing.T) {
	t.Parallel()

	db, err := Open(context.Background(), filepath.Join(t.TempDir(), "booking.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, _, ok, err := MigrationVersion(db)
	require.NoError(t, err)
	require.False(t, ok, "empty database has no version")

	require.NoError(t, ApplyMigrations(db))
	version, dirty, ok, err := MigrationVersion(db)
	require.NoError(t, err)
	require.True(t, ok)
	require.False(t, dirty)
	require.Equal(t, uint(1), version)
}
