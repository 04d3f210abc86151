package middleware

import (
	"net/http"
	"time"

	"relytailors-be/internal/metrics"

	"github.com/go-chi/chi/v5"
)

const unmatchedRoute = "unmatched"

// Instrument counts requests by chi route pattern rather than raw path, so
// order ids do not explode label cardinality.
func Instrument(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &responseRecorder{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(rec, r)

			route := unmatchedRoute
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}
			m.ObserveRequest(r.Method, route, rec.statusCode, time.Since(start).Seconds())
		})
	}
}
