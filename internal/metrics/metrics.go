package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mediavault_http_requests_total",
		Help: "HTTP requests by method, route and status.",
	}, []string{"method", "route", "status"})

	httpDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "mediavault_http_request_duration_seconds",
		Help:    "HTTP request latency by method and route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	ingested = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mediavault_ingested_total",
		Help: "Ingested items by outcome.",
	}, []string{"outcome"})

	deleted = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mediavault_deleted_total",
		Help: "Delete references by resulting status.",
	}, []string{"status"})

	servedBytes = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "mediavault_served_bytes_total",
		Help: "Body bytes written by the file server.",
	})

	serveResponses = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mediavault_serve_responses_total",
		Help: "File server responses by status code.",
	}, []string{"status"})

	initOnce sync.Once
)

// InitMetrics registers the collectors with the default registry. Safe to
// call more than once.
func InitMetrics() {
	initOnce.Do(func() {
		prometheus.MustRegister(httpRequests, httpDuration, ingested, deleted, servedBytes, serveResponses)
	})
}

// Register attaches the Prometheus metrics endpoint to the router.
func Register(router *gin.Engine, path string) {
	router.GET(path, gin.WrapH(promhttp.Handler()))
}

// Middleware counts requests and observes their latency per matched route.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method
		httpRequests.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		httpDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}

// ObserveIngest counts one ingested item. outcome is stored, dedup or failed.
func ObserveIngest(outcome string) {
	ingested.WithLabelValues(outcome).Inc()
}

// ObserveDelete counts one delete reference by its result status.
func ObserveDelete(status string) {
	deleted.WithLabelValues(status).Inc()
}

// ObserveServe records one file-server response and the body bytes sent.
func ObserveServe(status int, bytes int64) {
	serveResponses.WithLabelValues(strconv.Itoa(status)).Inc()
	if bytes > 0 {
		servedBytes.Add(float64(bytes))
	}
}
