package httpapi

import (
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/Overland-East-Bay/trip-booking-api/internal/platform/logging"
	"github.com/Overland-East-Bay/trip-booking-api/internal/platform/metrics"
)

// RateLimit configures per-client token buckets. RPS <= 0 disables limiting.
type RateLimit struct {
	RPS   float64
	Burst int
}

const limiterIdleSweep = 5 * time.Minute

type rateLimiter struct {
	limiters sync.Map // map[string]*rate.Limiter
	rate     rate.Limit
	burst    int

	mu          sync.Mutex
	lastCleanup time.Time
}

func (rl *rateLimiter) getLimiter(key string) *rate.Limiter {
	if l, ok := rl.limiters.Load(key); ok {
		return l.(*rate.Limiter)
	}
	l := rate.NewLimiter(rl.rate, rl.burst)
	actual, _ := rl.limiters.LoadOrStore(key, l)
	rl.maybeCleanup()
	return actual.(*rate.Limiter)
}

// maybeCleanup drops limiters whose bucket is full again, i.e. idle clients.
func (rl *rateLimiter) maybeCleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	if time.Since(rl.lastCleanup) < limiterIdleSweep {
		return
	}
	rl.lastCleanup = time.Now()
	rl.limiters.Range(func(key, value any) bool {
		if value.(*rate.Limiter).Tokens() >= float64(rl.burst) {
			rl.limiters.Delete(key)
		}
		return true
	})
}

// rateLimitMiddleware limits by client IP. It runs after chi's RealIP, so
// RemoteAddr already reflects X-Forwarded-For / X-Real-IP.
func rateLimitMiddleware(cfg RateLimit, fallback *slog.Logger) func(http.Handler) http.Handler {
	if cfg.RPS <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = max(int(cfg.RPS), 1)
	}
	rl := &rateLimiter{rate: rate.Limit(cfg.RPS), burst: burst, lastCleanup: time.Now()}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := clientIP(r)
			limiter := rl.getLimiter(key)
			if limiter.Allow() {
				next.ServeHTTP(w, r)
				return
			}

			res := limiter.Reserve()
			delay := res.Delay()
			res.Cancel()
			retryAfter := max(int(delay.Seconds()), 1)

			metrics.IncRateLimited()
			logging.FromContext(r.Context(), fallback).WarnContext(r.Context(), "rate limit exceeded",
				slog.String("key", key),
				slog.Int("retry_after", retryAfter),
			)
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			w.Header().Set("X-RateLimit-Limit", strconv.FormatFloat(cfg.RPS, 'f', -1, 64))
			writeError(w, r, http.StatusTooManyRequests, codeRateLimited, "too many requests", nil)
		})
	}
}

func clientIP(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
