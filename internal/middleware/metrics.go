package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/Abdurahmanit/GroupProject/car-listing-service/internal/platform/metrics"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// Metrics records request latency labelled by method, route pattern and status.
func Metrics(m *metrics.MetricsManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			startTime := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			route := routePattern(r)
			if route == "" {
				route = "unmatched"
			}
			m.HTTPRequestDuration.
				WithLabelValues(r.Method, route, strconv.Itoa(statusOf(ww))).
				Observe(time.Since(startTime).Seconds())
		})
	}
}
