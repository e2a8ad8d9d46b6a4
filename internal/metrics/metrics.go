package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "wanderlust", Name: "http_requests_total", Help: "HTTP requests."},
		[]string{"route", "method", "status"},
	)
	HTTPLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "wanderlust", Name: "http_request_duration_seconds",
			Help:    "HTTP request duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)
	RankingLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "wanderlust", Name: "ranking_query_duration_seconds",
			Help:    "Experience ranking query duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"sort"},
	)
	RankingResults = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "wanderlust", Name: "ranking_results",
			Help:    "Listings returned per ranking query.",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250},
		},
		[]string{"sort"},
	)
	SessionEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "wanderlust", Name: "session_storage_events_total", Help: "Session storage hits/misses/sets/dels."},
		[]string{"event"}, // event: hit|miss|set|del
	)
)

func InitRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(HTTPRequests, HTTPLatency, RankingLatency, RankingResults, SessionEvents)
	return reg
}

func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

func ObserveHTTP(route, method string, status int, dur time.Duration) {
	HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	HTTPLatency.WithLabelValues(route, method).Observe(dur.Seconds())
}

func ObserveRanking(sort string, results int, dur time.Duration) {
	RankingLatency.WithLabelValues(sort).Observe(dur.Seconds())
	RankingResults.WithLabelValues(sort).Observe(float64(results))
}

func ObserveSession(event string) { SessionEvents.WithLabelValues(event).Inc() }

// Middleware records every request under its matched route pattern.
// Errors are handed to the app's error handler first so the recorded
// status is the one the client sees.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		if err := c.Next(); err != nil {
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}
		ObserveHTTP(c.Route().Path, c.Method(), c.Response().StatusCode(), time.Since(start))
		return nil
	}
}
