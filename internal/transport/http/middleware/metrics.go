package middleware

import (
	"net/http"
	"time"

	"empdir/internal/platform/metrics"
)

func Metrics(collector *metrics.Collector) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			recorder := newStatusRecorder(w)
			next.ServeHTTP(recorder, r)
			collector.Record(r.Method, routePattern(r), recorder.status, time.Since(start))
		})
	}
}
