package itest

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Overland-East-Bay/trip-booking-api/internal/adapters/httpapi"
	membookingstore "github.com/Overland-East-Bay/trip-booking-api/internal/adapters/memory/bookingstore"
	memclock "github.com/Overland-East-Bay/trip-booking-api/internal/adapters/memory/clock"
	memevents "github.com/Overland-East-Bay/trip-booking-api/internal/adapters/memory/events"
	memidempotency "github.com/Overland-East-Bay/trip-booking-api/internal/adapters/memory/idempotency"
	pgbookingstore "github.com/Overland-East-Bay/trip-booking-api/internal/adapters/postgres/bookingstore"
	pgidempotency "github.com/Overland-East-Bay/trip-booking-api/internal/adapters/postgres/idempotency"
	postgres_testutil "github.com/Overland-East-Bay/trip-booking-api/internal/adapters/postgres/testutil"
	"github.com/Overland-East-Bay/trip-booking-api/internal/adapters/sqlite"
	sqlitebookingstore "github.com/Overland-East-Bay/trip-booking-api/internal/adapters/sqlite/bookingstore"
	"github.com/Overland-East-Bay/trip-booking-api/internal/app/catalog"
	"github.com/Overland-East-Bay/trip-booking-api/internal/app/clients"
	"github.com/Overland-East-Bay/trip-booking-api/internal/app/registrations"
	"github.com/Overland-East-Bay/trip-booking-api/internal/platform/logging"
	bookingstoreport "github.com/Overland-East-Bay/trip-booking-api/internal/ports/out/bookingstore"
	idempotencyport "github.com/Overland-East-Bay/trip-booking-api/internal/ports/out/idempotency"
)

type backend string

const (
	backendMemory   backend = "memory"
	backendSQLite   backend = "sqlite"
	backendPostgres backend = "postgres"
)

func backendsFromEnv(t *testing.T) []backend {
	t.Helper()
	switch strings.ToLower(strings.TrimSpace(os.Getenv("ITEST_BACKEND"))) {
	case "", "memory":
		return []backend{backendMemory}
	case "sqlite":
		return []backend{backendSQLite}
	case "postgres":
		return []backend{backendPostgres}
	case "all":
		return []backend{backendMemory, backendSQLite, backendPostgres}
	default:
		t.Fatalf("unknown ITEST_BACKEND value (expected memory|sqlite|postgres|all)")
		return nil
	}
}

type testServer struct {
	baseURL string
	client  *http.Client
	store   bookingstoreport.Store
	clock   *memclock.ManualClock
	events  *memevents.Recorder
}

func newTestServer(t *testing.T, b backend) *testServer {
	t.Helper()

	clk := memclock.NewManualClock(time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC))
	logger := logging.Discard()

	var (
		store     bookingstoreport.Store
		idemStore idempotencyport.Store
	)

	switch b {
	case backendPostgres:
		pool := postgres_testutil.OpenMigratedPool(t)
		store = pgbookingstore.NewStore(pool)
		idemStore = pgidempotency.NewStore(pool, time.Hour)
	case backendSQLite:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		db, err := sqlite.Open(ctx, filepath.Join(t.TempDir(), "booking.db"))
		if err != nil {
			t.Fatalf("open sqlite: %v", err)
		}
		t.Cleanup(func() { _ = db.Close() })
		if err := sqlite.ApplyMigrations(db); err != nil {
			t.Fatalf("migrate sqlite: %v", err)
		}
		store = sqlitebookingstore.NewStore(db)
		idemStore = memidempotency.NewStore()
	case backendMemory:
		store = membookingstore.NewStore()
		idemStore = memidempotency.NewStore()
	default:
		t.Fatalf("unknown backend: %s", b)
	}

	rec := memevents.NewRecorder(logger)
	api := httpapi.NewServer(
		clients.NewService(store, clk, clients.WithLogger(logger), clients.WithPublisher(rec)),
		registrations.NewService(store, clk, registrations.WithLogger(logger), registrations.WithPublisher(rec)),
		catalog.NewService(store),
		idemStore,
	)
	api.Logger = logger
	handler := httpapi.NewRouterWithOptions(api, httpapi.RouterOptions{
		Logger: logger,
		Readiness: []httpapi.ReadinessCheck{
			{Name: "store", Check: store.Ping},
		},
	})

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return &testServer{
		baseURL: srv.URL,
		client:  srv.Client(),
		store:   store,
		clock:   clk,
		events:  rec,
	}
}

func (s *testServer) seedTrip(t *testing.T, name string, maxPeople int, from time.Time, countries ...string) int64 {
	t.Helper()
	id, err := s.store.CreateTrip(context.Background(), bookingstoreport.NewTrip{
		Name:        name,
		Description: "Seeded " + name,
		DateFrom:    from,
		DateTo:      from.AddDate(0, 0, 7),
		MaxPeople:   maxPeople,
		Countries:   countries,
	})
	if err != nil {
		t.Fatalf("seed trip: %v", err)
	}
	return int64(id)
}

func (s *testServer) url(path string) string {
	if strings.HasPrefix(path, "/") {
		return s.baseURL + path
	}
	return s.baseURL + "/" + path
}

func (s *testServer) doJSON(t *testing.T, method string, path string, body any, headers ...string) (int, []byte, http.Header) {
	t.Helper()

	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		r = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, s.url(path), r)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	resp, err := s.client.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()
	out, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, out, resp.Header
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func mustUnmarshal[T any](t *testing.T, b []byte) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("unmarshal: %v\nbody=%s", err, string(b))
	}
	return out
}

func requireStatus(t *testing.T, status int, body []byte, want int) {
	t.Helper()
	if status != want {
		t.Fatalf("status=%d want=%d body=%s", status, want, string(body))
	}
}

func requireErrorCode(t *testing.T, status int, body []byte, wantStatus int, wantCode string) {
	t.Helper()
	requireStatus(t, status, body, wantStatus)
	got := mustUnmarshal[errorResponse](t, body)
	if got.Error.Code != wantCode {
		t.Fatalf("error.code=%q want=%q body=%s", got.Error.Code, wantCode, string(body))
	}
}

func requireHeaderPresent(t *testing.T, h http.Header, key string) {
	t.Helper()
	if strings.TrimSpace(h.Get(key)) == "" {
		t.Fatalf("expected header %q to be present", key)
	}
}
