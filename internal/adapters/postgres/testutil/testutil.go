// Package testutil provisions migrated Postgres databases for adapter tests.
//
// TEST_DATABASE_URL points the tests at an existing server. Without it a
// postgres container is started once per test binary. Tests are skipped in
// -short mode and when neither is available.
package testutil

import (
	"context"
	"net/url"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	postgres "github.com/Overland-East-Bay/trip-booking-api/internal/adapters/postgres"
)

var (
	serverOnce sync.Once
	serverURL  string
	serverErr  error
)

// OpenMigratedPool creates a fresh database, applies all migrations and returns a
// pool on it. The pool is closed when the test ends.
func OpenMigratedPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := CreateMigratedDatabase(t)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	pool, err := postgres.NewPool(ctx, dsn, postgres.PoolOptions{MaxConns: 16})
	if err != nil {
		t.Fatalf("open pool: %v", err)
	}
	t.Cleanup(pool.Close)
	return pool
}

// CreateMigratedDatabase returns the URL of a fresh, migrated database.
func CreateMigratedDatabase(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("postgres tests skipped in -short mode")
	}

	base := serverDatabaseURL(t)
	name := "test_" + strings.ReplaceAll(uuid.NewString(), "-", "")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	admin, err := pgx.Connect(ctx, base)
	if err != nil {
		t.Fatalf("connect admin: %v", err)
	}
	defer func() { _ = admin.Close(context.Background()) }()
	if _, err := admin.Exec(ctx, "CREATE DATABASE "+pgx.Identifier{name}.Sanitize()); err != nil {
		t.Fatalf("create database: %v", err)
	}

	dsn, err := withDatabase(base, name)
	if err != nil {
		t.Fatalf("database url: %v", err)
	}
	if err := postgres.MigrateUp(dsn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return dsn
}

func serverDatabaseURL(t *testing.T) string {
	t.Helper()
	if u := os.Getenv("TEST_DATABASE_URL"); u != "" {
		return u
	}

	serverOnce.Do(func() {
		ctx := context.Background()
		// Left running for the life of the test binary; Ryuk reaps it.
		container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
			tcpostgres.WithDatabase("booking"),
			tcpostgres.WithUsername("booking"),
			tcpostgres.WithPassword("booking"),
			tcpostgres.BasicWaitStrategies(),
		)
		if err != nil {
			serverErr = err
			return
		}
		serverURL, serverErr = container.ConnectionString(ctx, "sslmode=disable")
	})
	if serverErr != nil {
		t.Skipf("postgres unavailable (set TEST_DATABASE_URL or start docker): %v", serverErr)
	}
	return serverURL
}

func withDatabase(dsn, name string) (string, error) {
	u, err := url.Parse(dsn)
	if err != nil {
		return "", err
	}
	u.Path = "/" + name
	return u.String(), nil
}
