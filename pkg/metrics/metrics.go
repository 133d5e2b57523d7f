package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "soundclone_http_requests_total",
			Help: "Total number of HTTP requests by method, route and status code",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "soundclone_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	LikeToggles = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "soundclone_like_toggles_total",
			Help: "Total number of like toggles by resulting state",
		},
		[]string{"result"}, // "liked", "unliked"
	)

	SearchFallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "soundclone_search_fallbacks_total",
			Help: "Searches answered by the database because the index failed",
		},
	)
)

// RecordHTTPRequest records one finished request. route is the matched
// pattern, never the raw path, to keep label cardinality bounded.
func RecordHTTPRequest(method, route string, status int, d time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// RecordLikeToggle counts a successful toggle.
func RecordLikeToggle(liked bool) {
	if liked {
		LikeToggles.WithLabelValues("liked").Inc()
		return
	}
	LikeToggles.WithLabelValues("unliked").Inc()
}
