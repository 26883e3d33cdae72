package middleware

import (
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/kiranshivaraju/qwatch/internal/api/response"
	"github.com/kiranshivaraju/qwatch/internal/cache"
	"github.com/kiranshivaraju/qwatch/internal/telemetry"
)

const (
	defaultLimit  = 60
	defaultWindow = time.Minute
)

// RateLimit is a fixed-window limiter counted in Redis. Each API key gets
// its own budget per route pattern, so a dashboard polling the job list
// does not starve stats or detail lookups.
type RateLimit struct {
	cache  cache.Cache
	limit  int
	window time.Duration
	now    func() time.Time
}

func NewRateLimit(c cache.Cache, limit int, window time.Duration) *RateLimit {
	if limit <= 0 {
		limit = defaultLimit
	}
	if window <= 0 {
		window = defaultWindow
	}
	return &RateLimit{cache: c, limit: limit, window: window, now: time.Now}
}

// Limit must run after Authenticate. Requests without a principal pass
// through, and so does everything while Redis is unavailable.
func (rl *RateLimit) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := PrincipalFrom(r.Context())
		if !ok || p.KeyPrefix == "" {
			next.ServeHTTP(w, r)
			return
		}

		route := routePattern(r)
		count, resetIn, err := rl.cache.IncrWindow(r.Context(), cache.RateLimitKey(p.KeyPrefix, route), rl.window)
		if err != nil {
			slog.Warn("rate limit check failed, allowing request",
				"error", err,
				"key_prefix", p.KeyPrefix,
				"route", route,
			)
			next.ServeHTTP(w, r)
			return
		}
		if resetIn <= 0 || resetIn > rl.window {
			resetIn = rl.window
		}
		retryAfter := int(math.Ceil(resetIn.Seconds()))

		h := w.Header()
		h.Set("X-RateLimit-Limit", strconv.Itoa(rl.limit))
		h.Set("X-RateLimit-Remaining", strconv.Itoa(max(rl.limit-int(count), 0)))
		h.Set("X-RateLimit-Reset", strconv.FormatInt(rl.now().Add(resetIn).Unix(), 10))

		if count > int64(rl.limit) {
			telemetry.RateLimited.WithLabelValues(route).Inc()
			Annotate(r, "rate_limited", true)
			h.Set("Retry-After", strconv.Itoa(retryAfter))
			response.Error(w, http.StatusTooManyRequests,
				"RATE_LIMIT_EXCEEDED", "Too many requests",
				map[string]any{"limit": rl.limit, "retry_after_seconds": retryAfter})
			return
		}

		next.ServeHTTP(w, r)
	})
}
