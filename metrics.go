package main

import (
	"net/http"
	"strconv"

	"github.com/felixge/httpsnoop"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

var (
	fetchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "directory_fetch_duration_seconds",
		Help:    "Duration of data API fetches.",
		Buckets: prometheus.DefBuckets,
	}, []string{"resource"})

	fetchFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "directory_fetch_failures_total",
		Help: "Data API fetches that failed.",
	}, []string{"resource"})

	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "directory_http_requests_total",
		Help: "HTTP requests by route and status code.",
	}, []string{"route", "code"})
)

// instrument counts requests per route template and logs each one.
func instrument(next http.Handler) http.Handler {
	log := logger.Named("http")
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m := httpsnoop.CaptureMetrics(next, w, r)

		route := "unmatched"
		if cur := mux.CurrentRoute(r); cur != nil {
			if tpl, err := cur.GetPathTemplate(); err == nil {
				route = tpl
			}
		}
		httpRequests.WithLabelValues(route, strconv.Itoa(m.Code)).Inc()
		log.Info("request",
			zap.String("request_id", w.Header().Get(requestIDHeader)),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", m.Code),
			zap.Duration("duration", m.Duration),
			zap.Int64("bytes", m.Written),
		)
	})
}
