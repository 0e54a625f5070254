package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Overland-East-Bay/trip-booking-api/internal/platform/logging"
)

// ReadinessCheck probes one dependency (store, idempotency backend, broker).
type ReadinessCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

type ReadinessResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

const readinessTimeout = 2 * time.Second

func readyHandler(checks []ReadinessCheck, fallback *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		var (
			mu      sync.Mutex
			results = make(map[string]string, len(checks))
			healthy = true
		)
		var g errgroup.Group
		for _, c := range checks {
			g.Go(func() error {
				err := c.Check(ctx)
				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					healthy = false
					results[c.Name] = "unavailable"
					logging.FromContext(r.Context(), fallback).WarnContext(r.Context(), "readiness check failed",
						slog.String("check", c.Name), slog.Any("err", err))
					return nil
				}
				results[c.Name] = "ok"
				return nil
			})
		}
		_ = g.Wait()

		resp := ReadinessResponse{Status: "ready", Checks: results}
		status := http.StatusOK
		if !healthy {
			resp.Status = "not_ready"
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, resp)
	}
}
