package middleware

import (
	"net/http"
	"time"
)

// HTTPObserver receives one observation per request.
type HTTPObserver interface {
	Observe(method, route string, status int, duration time.Duration)
}

// Metrics records request latency labelled by the chi route pattern, not the raw path.
func Metrics(observer HTTPObserver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if observer == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := &statusRecorder{ResponseWriter: w}
			start := time.Now()
			next.ServeHTTP(rec, r)
			observer.Observe(r.Method, routePattern(r), rec.Status(), time.Since(start))
		})
	}
}
