// Package metrics exposes Prometheus collectors for the HTTP layer and domain operations.
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

const namespace = "citizenpulse"

var (
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by route, method and status code.",
	}, []string{"route", "method", "code"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route and method.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "method"})

	ReportsSubmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reports_submitted_total",
		Help:      "Reports submitted, by report type.",
	}, []string{"type"})

	StatusChanges = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "status_changes_total",
		Help:      "Workflow status transitions, by target status.",
	}, []string{"to"})

	UpvoteToggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "upvote_toggles_total",
		Help:      "Upvote toggles, by resulting action (added or removed).",
	}, []string{"action"})

	ReportViews = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "report_views_total",
		Help:      "Report views that incremented a view counter.",
	})
)

// Middleware records request counts and latencies. Unmatched routes are grouped.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		httpRequests.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		httpDuration.WithLabelValues(route, c.Request.Method).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
