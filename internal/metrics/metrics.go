// Package metrics exposes Prometheus counters for the HTTP API, the
// persistence worker and the calendar feed.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "classbook",
		Name:      "http_requests_total",
		Help:      "HTTP requests by route, method and status.",
	}, []string{"route", "method", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "classbook",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route"})

	PersistenceSaves = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "classbook",
		Name:      "persistence_saves_total",
		Help:      "Workbook snapshot saves by adapter and result.",
	}, []string{"adapter", "result"})

	FeedFetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "classbook",
		Name:      "ical_feed_fetches_total",
		Help:      "Calendar feed fetches by source (network, cache) and result.",
	}, []string{"source", "result"})
)

// Result label values.
const (
	ResultOK    = "ok"
	ResultError = "error"
)

// Middleware records request counts and latency per matched route.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		HTTPRequests.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		HTTPDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
