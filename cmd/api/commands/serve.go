package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/Overland-East-Bay/trip-booking-api/internal/adapters/httpapi"
	"github.com/Overland-East-Bay/trip-booking-api/internal/app/catalog"
	"github.com/Overland-East-Bay/trip-booking-api/internal/app/clients"
	"github.com/Overland-East-Bay/trip-booking-api/internal/app/registrations"
	platformclock "github.com/Overland-East-Bay/trip-booking-api/internal/platform/clock"
	"github.com/Overland-East-Bay/trip-booking-api/internal/platform/config"
	"github.com/Overland-East-Bay/trip-booking-api/internal/platform/tracing"
)

const idempotencyPurgeInterval = time.Hour

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the booking HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(ctx context.Context) error {
	serverCfg, err := config.LoadServerConfigFromEnv()
	if err != nil {
		return fmt.Errorf("invalid server config: %w", err)
	}
	storeCfg, err := config.LoadStoreConfigFromEnv()
	if err != nil {
		return fmt.Errorf("invalid store config: %w", err)
	}
	idemCfg, err := config.LoadIdempotencyConfigFromEnv()
	if err != nil {
		return fmt.Errorf("invalid idempotency config: %w", err)
	}
	eventsCfg, err := config.LoadEventsConfigFromEnv()
	if err != nil {
		return fmt.Errorf("invalid events config: %w", err)
	}
	logCfg := config.LoadLogConfigFromEnv()

	shutdownTracing, err := tracing.Init(ctx, logger, tracing.Config{
		ServiceName: serviceName,
		Environment: logCfg.Env,
		Endpoint:    config.LoadTracingConfigFromEnv().Endpoint,
	})
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer func() { _ = shutdownTracing(context.Background()) }()

	sb, err := openStore(ctx, storeCfg, logger)
	if err != nil {
		return err
	}
	defer sb.Close()

	idem, err := openIdempotency(ctx, idemCfg, sb)
	if err != nil {
		return err
	}
	defer idem.close()

	ev, err := openEvents(eventsCfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := ev.close(closeCtx); err != nil {
			logger.Warn("events close failed", slog.Any("err", err))
		}
	}()

	clk := platformclock.NewSystemClock()
	api := httpapi.NewServer(
		clients.NewService(sb.store, clk, clients.WithLogger(logger), clients.WithPublisher(ev.pub)),
		registrations.NewService(sb.store, clk, registrations.WithLogger(logger), registrations.WithPublisher(ev.pub)),
		catalog.NewService(sb.store),
		idem.store,
	)
	api.Logger = logger

	checks := []httpapi.ReadinessCheck{{Name: "store", Check: sb.store.Ping}}
	for _, c := range []*httpapi.ReadinessCheck{idem.check, ev.check} {
		if c != nil {
			checks = append(checks, *c)
		}
	}
	handler := httpapi.NewRouterWithOptions(api, httpapi.RouterOptions{
		Logger:    logger,
		RateLimit: httpapi.RateLimit{RPS: serverCfg.RateLimitRPS, Burst: serverCfg.RateLimitBurst},
		Readiness: checks,
	})

	if idem.purge != nil {
		go purgeIdempotency(ctx, idem.purge)
	}

	srv := &http.Server{
		Addr:              ":" + serverCfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: serverCfg.ReadHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("api listening",
			slog.String("addr", srv.Addr),
			slog.String("store", storeCfg.Backend),
			slog.String("idempotency", idemCfg.Backend),
			slog.String("events", eventsCfg.Backend),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), serverCfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func purgeIdempotency(ctx context.Context, purge func(context.Context) (int64, error)) {
	t := time.NewTicker(idempotencyPurgeInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			n, err := purge(ctx)
			if err != nil {
				logger.Warn("idempotency purge failed", slog.Any("err", err))
				continue
			}
			if n > 0 {
				logger.Info("idempotency records purged", slog.Int64("count", n))
			}
		}
	}
}
