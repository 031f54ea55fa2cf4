// Package metrics declares the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTPRequests counts served requests by route template and status.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "portfolio_http_requests_total",
		Help: "HTTP requests by method, route and status",
	}, []string{"method", "route", "status"})

	// HTTPDuration tracks request latency.
	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "portfolio_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14),
	}, []string{"method", "route"})

	// Comments counts comment submissions by result (created, rejected).
	Comments = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "portfolio_comments_total",
		Help: "Comment submissions by result",
	}, []string{"result"})

	// BookmarkToggles counts saved-post toggles by action (added, removed).
	BookmarkToggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "portfolio_bookmark_toggles_total",
		Help: "Saved-for-later toggles by action",
	}, []string{"action"})

	// PostSearches counts listing queries, split by whether a filter was applied.
	PostSearches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "portfolio_post_searches_total",
		Help: "Post listing queries by whether a search or tag filter was applied",
	}, []string{"filtered"})
)

// ObserveRequest records one served request.
func ObserveRequest(method, route string, status int, seconds float64) {
	HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPDuration.WithLabelValues(method, route).Observe(seconds)
}

// CommentResult records a comment outcome.
func CommentResult(created bool) {
	if created {
		Comments.WithLabelValues("created").Inc()
		return
	}
	Comments.WithLabelValues("rejected").Inc()
}

// BookmarkToggled records a toggle.
func BookmarkToggled(saved bool) {
	if saved {
		BookmarkToggles.WithLabelValues("added").Inc()
		return
	}
	BookmarkToggles.WithLabelValues("removed").Inc()
}

// PostSearch records a listing query.
func PostSearch(filtered bool) {
	PostSearches.WithLabelValues(strconv.FormatBool(filtered)).Inc()
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
