// Package observability registers the service-level Prometheus metrics.
package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	listDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "fitness",
		Subsystem: "query",
		Name:      "list_duration_seconds",
		Help:      "Latency of paginated list operations by resource.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"resource"})
	statsDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "fitness",
		Subsystem: "query",
		Name:      "stats_duration_seconds",
		Help:      "Latency of user statistics computation.",
		Buckets:   prometheus.DefBuckets,
	})
	storeErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fitness",
		Subsystem: "domain",
		Name:      "errors_total",
		Help:      "Failed service operations by operation and error kind.",
	}, []string{"op", "kind"})
	bookmarkToggles = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fitness",
		Subsystem: "bookmarks",
		Name:      "toggles_total",
		Help:      "Bookmark toggles by resulting action.",
	}, []string{"action"})
	httpRequests = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "fitness",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency by method, route pattern and status code.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
	activityLoggedGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "fitness",
		Subsystem: "persistence",
		Name:      "last_activity_logged_timestamp_seconds",
		Help:      "Unix timestamp of the most recent activity logged.",
	})
)

func init() {
	prometheus.MustRegister(listDuration, statsDuration, storeErrors, bookmarkToggles, httpRequests, activityLoggedGauge)
}

// ObserveList records the latency of a list operation.
func ObserveList(resource string, d time.Duration) {
	listDuration.WithLabelValues(resource).Observe(d.Seconds())
}

// ObserveStats records the latency of a statistics request.
func ObserveStats(d time.Duration) {
	statsDuration.Observe(d.Seconds())
}

// RecordError counts a failed operation.
func RecordError(op, kind string) {
	storeErrors.WithLabelValues(op, kind).Inc()
}

// RecordBookmarkToggle counts a toggle outcome ("added" or "removed").
func RecordBookmarkToggle(action string) {
	bookmarkToggles.WithLabelValues(action).Inc()
}

// RecordActivityLogged updates the activity watermark gauge.
func RecordActivityLogged(ts time.Time) {
	if ts.IsZero() {
		return
	}
	activityLoggedGauge.Set(float64(ts.Unix()))
}

// ObserveHTTP records a served request. route should be the router pattern,
// not the raw path, to keep label cardinality bounded.
func ObserveHTTP(method, route string, status int, d time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Observe(d.Seconds())
}
