package monitoring

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP metrics
	HttpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	HttpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	HttpResponseSize = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_response_size_bytes",
			Help:    "HTTP response size in bytes",
			Buckets: prometheus.ExponentialBuckets(100, 10, 8),
		},
		[]string{"method", "endpoint"},
	)

	ActiveConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "active_connections",
			Help: "Number of in-flight requests",
		},
	)

	// Marketplace metrics
	AccountsRegistered = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gameflix_accounts_registered_total",
			Help: "Accounts created, by kind",
		},
		[]string{"kind"}, // customer or developer
	)

	AuthenticationAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gameflix_authentication_attempts_total",
			Help: "Login attempts, by outcome",
		},
		[]string{"status"}, // success or failure
	)

	GamesPublished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gameflix_game_status_changes_total",
			Help: "Game status transitions, by target status",
		},
		[]string{"status"},
	)

	GameViews = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "gameflix_game_views_total",
			Help: "Game detail views recorded",
		},
	)

	Purchases = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "gameflix_purchases_total",
			Help: "Completed game purchases",
		},
	)

	WishlistOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gameflix_wishlist_operations_total",
			Help: "Wishlist changes, by action",
		},
		[]string{"action"}, // add or remove
	)

	CacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gameflix_cache_lookups_total",
			Help: "Redis cache lookups, by result",
		},
		[]string{"cache", "result"}, // hit or miss
	)

	ErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "errors_total",
			Help: "Total number of errors",
		},
		[]string{"type", "endpoint"},
	)
)

var registerOnce sync.Once

// InitMetrics registers every collector with the default registry. Safe to
// call more than once.
func InitMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			HttpRequestsTotal,
			HttpRequestDuration,
			HttpResponseSize,
			ActiveConnections,
			AccountsRegistered,
			AuthenticationAttempts,
			GamesPublished,
			GameViews,
			Purchases,
			WishlistOperations,
			CacheLookups,
			ErrorsTotal,
		)
	})
}

// ObserveCache records the outcome of a cache lookup.
func ObserveCache(name string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	CacheLookups.WithLabelValues(name, result).Inc()
}

// PrometheusMiddleware collects metrics for each request
func PrometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		ActiveConnections.Inc()
		defer ActiveConnections.Dec()

		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		status := c.Writer.Status()

		HttpRequestsTotal.WithLabelValues(c.Request.Method, endpoint, strconv.Itoa(status)).Inc()
		HttpRequestDuration.WithLabelValues(c.Request.Method, endpoint).Observe(time.Since(start).Seconds())
		HttpResponseSize.WithLabelValues(c.Request.Method, endpoint).Observe(float64(c.Writer.Size()))

		if status >= 500 {
			ErrorsTotal.WithLabelValues("server_error", endpoint).Inc()
		} else if status >= 400 {
			ErrorsTotal.WithLabelValues("client_error", endpoint).Inc()
		}
	}
}

// PrometheusHandler returns Prometheus metrics handler
func PrometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
