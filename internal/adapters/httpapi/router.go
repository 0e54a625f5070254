package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/Overland-East-Bay/trip-booking-api/internal/platform/logging"
	"github.com/Overland-East-Bay/trip-booking-api/internal/platform/metrics"
)

type RouterOptions struct {
	Logger    *slog.Logger
	RateLimit RateLimit
	Readiness []ReadinessCheck
}

// NewRouter constructs the API HTTP router with default options.
func NewRouter(s *Server) http.Handler {
	return NewRouterWithOptions(s, RouterOptions{})
}

func NewRouterWithOptions(s *Server, opts RouterOptions) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = s.Logger
	}
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	// Infra endpoints sit outside tracing, logging and rate limiting.
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/readyz", readyHandler(opts.Readiness, logger))
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(api chi.Router) {
		api.Use(func(next http.Handler) http.Handler {
			return otelhttp.NewHandler(next, "http.server")
		})
		api.Use(metrics.HTTPMetricsMiddleware)
		api.Use(logging.HTTPMiddleware(logger))
		api.Use(rateLimitMiddleware(opts.RateLimit, logger))
		s.routes(api)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusNotFound, "NOT_FOUND", "route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed", nil)
	})
	return r
}
