package commands

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Overland-East-Bay/trip-booking-api/internal/adapters/httpapi"
	kafkaevents "github.com/Overland-East-Bay/trip-booking-api/internal/adapters/kafka/events"
	membookingstore "github.com/Overland-East-Bay/trip-booking-api/internal/adapters/memory/bookingstore"
	memevents "github.com/Overland-East-Bay/trip-booking-api/internal/adapters/memory/events"
	memidempotency "github.com/Overland-East-Bay/trip-booking-api/internal/adapters/memory/idempotency"
	"github.com/Overland-East-Bay/trip-booking-api/internal/adapters/postgres"
	pgbookingstore "github.com/Overland-East-Bay/trip-booking-api/internal/adapters/postgres/bookingstore"
	pgidempotency "github.com/Overland-East-Bay/trip-booking-api/internal/adapters/postgres/idempotency"
	redisadapter "github.com/Overland-East-Bay/trip-booking-api/internal/adapters/redis"
	redisidempotency "github.com/Overland-East-Bay/trip-booking-api/internal/adapters/redis/idempotency"
	"github.com/Overland-East-Bay/trip-booking-api/internal/adapters/sqlite"
	sqlitebookingstore "github.com/Overland-East-Bay/trip-booking-api/internal/adapters/sqlite/bookingstore"
	"github.com/Overland-East-Bay/trip-booking-api/internal/platform/config"
	bookingstoreport "github.com/Overland-East-Bay/trip-booking-api/internal/ports/out/bookingstore"
	eventsport "github.com/Overland-East-Bay/trip-booking-api/internal/ports/out/events"
	idempotencyport "github.com/Overland-East-Bay/trip-booking-api/internal/ports/out/idempotency"
)

// storeBackend is an opened entity store plus what the other backends may share
// with it (the postgres pool backs idempotency too).
type storeBackend struct {
	store bookingstoreport.Store
	pool  *pgxpool.Pool
	db    *sql.DB
}

func (b *storeBackend) Close() {
	if b.pool != nil {
		b.pool.Close()
	}
	if b.db != nil {
		_ = b.db.Close()
	}
}

func openStore(ctx context.Context, cfg config.StoreConfig, logger *slog.Logger) (*storeBackend, error) {
	switch cfg.Backend {
	case "postgres":
		if cfg.MigrateOnStart {
			if err := postgres.MigrateUp(cfg.DatabaseURL); err != nil {
				return nil, fmt.Errorf("migrate postgres: %w", err)
			}
			logger.Info("postgres migrations applied")
		}
		pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, postgres.PoolOptions{MaxConns: cfg.MaxConns})
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		return &storeBackend{
			store: pgbookingstore.NewStore(pool).WithTxTimeout(cfg.TxTimeout),
			pool:  pool,
		}, nil

	case "sqlite":
		db, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		if cfg.MigrateOnStart {
			if err := sqlite.ApplyMigrations(db); err != nil {
				_ = db.Close()
				return nil, fmt.Errorf("migrate sqlite: %w", err)
			}
			logger.Info("sqlite migrations applied", slog.String("path", cfg.SQLitePath))
		}
		return &storeBackend{
			store: sqlitebookingstore.NewStore(db).WithTxTimeout(cfg.TxTimeout),
			db:    db,
		}, nil

	case "memory":
		logger.Warn("using in-memory store; data is lost on restart")
		return &storeBackend{store: membookingstore.NewStore().WithTxTimeout(cfg.TxTimeout)}, nil

	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}

type idempotencyBackend struct {
	store idempotencyport.Store
	check *httpapi.ReadinessCheck
	close func()
	// purge deletes expired records; nil when the backend expires them itself.
	purge func(context.Context) (int64, error)
}

func openIdempotency(ctx context.Context, cfg config.IdempotencyConfig, sb *storeBackend) (*idempotencyBackend, error) {
	switch cfg.Backend {
	case "postgres":
		if sb.pool == nil {
			return nil, errors.New("IDEMPOTENCY_BACKEND=postgres requires STORAGE_BACKEND=postgres")
		}
		st := pgidempotency.NewStore(sb.pool, cfg.TTL)
		return &idempotencyBackend{store: st, close: func() {}, purge: st.PurgeExpired}, nil

	case "redis":
		client, err := redisadapter.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("open redis: %w", err)
		}
		st := redisidempotency.NewStore(client, cfg.TTL)
		return &idempotencyBackend{
			store: st,
			check: &httpapi.ReadinessCheck{Name: "redis", Check: st.Ping},
			close: func() { _ = client.Close() },
		}, nil

	case "memory":
		return &idempotencyBackend{store: memidempotency.NewStoreWithTTL(cfg.TTL), close: func() {}}, nil

	default:
		return nil, fmt.Errorf("unknown idempotency backend %q", cfg.Backend)
	}
}

type eventsBackend struct {
	pub   eventsport.Publisher
	check *httpapi.ReadinessCheck
	close func(context.Context) error
}

func openEvents(cfg config.EventsConfig, logger *slog.Logger) (*eventsBackend, error) {
	switch cfg.Backend {
	case "kafka":
		p, err := kafkaevents.NewPublisher(kafkaevents.Config{Brokers: cfg.KafkaBrokers, Topic: cfg.KafkaTopic})
		if err != nil {
			return nil, fmt.Errorf("open kafka: %w", err)
		}
		return &eventsBackend{
			pub:   p,
			check: &httpapi.ReadinessCheck{Name: "kafka", Check: p.Ping},
			close: p.Close,
		}, nil

	case "log":
		return &eventsBackend{
			pub:   memevents.NewLogPublisher(logger),
			close: func(context.Context) error { return nil },
		}, nil

	default:
		return nil, fmt.Errorf("unknown events backend %q", cfg.Backend)
	}
}
