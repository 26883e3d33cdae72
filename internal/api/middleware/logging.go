package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/kiranshivaraju/qwatch/internal/telemetry"
)

// Logger writes one access log line per request and records its latency.
// The line carries the route pattern, the caller's key prefix once
// Authenticate has run, and anything handlers add with Annotate.
func Logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		reqLog := &requestLog{}
		r = r.WithContext(context.WithValue(r.Context(), requestLogKey, reqLog))
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		elapsed := time.Since(start)
		route := routePattern(r)
		telemetry.ObserveRequest(route, r.Method, status, elapsed)

		attrs := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"route", route,
			"status", status,
			"bytes", ww.BytesWritten(),
			"duration_ms", elapsed.Milliseconds(),
			"remote_addr", r.RemoteAddr,
		}
		if id := chimw.GetReqID(r.Context()); id != "" {
			attrs = append(attrs, "request_id", id)
		}
		if p := reqLog.principal; p.KeyPrefix != "" {
			attrs = append(attrs, "key_prefix", p.KeyPrefix, "tenant_id", p.TenantID.String())
		}
		attrs = append(attrs, reqLog.attrs...)

		slog.Log(r.Context(), levelFor(status), "request", attrs...)
	})
}

func levelFor(status int) slog.Level {
	switch {
	case status >= 500:
		return slog.LevelError
	case status >= 400:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

// routePattern is the matched chi pattern, or the raw path when nothing
// matched (404s, tests without a router).
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return r.URL.Path
}
