package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce        sync.Once
	forumRequestsTotal  *prometheus.CounterVec
	forumLatencySeconds *prometheus.HistogramVec
	forumErrorsTotal    *prometheus.CounterVec
	bannerStoredTotal   prometheus.Counter
	bannerRejectedTotal *prometheus.CounterVec
	rankRefreshesTotal  prometheus.Counter
)

// RegisterMetrics initialises the Prometheus collectors used by the forum API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		forumRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "forum_requests_total",
			Help: "Total number of forum API requests served.",
		}, []string{"method", "route", "status"})

		forumLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "forum_latency_seconds",
			Help:    "Latency distribution for forum API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		forumErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "forum_errors_total",
			Help: "Total number of error responses returned by forum endpoints.",
		}, []string{"method", "route", "status"})

		bannerStoredTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "forum_banner_stored_total",
			Help: "Total number of channel banners written to storage.",
		})

		bannerRejectedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "forum_banner_rejected_total",
			Help: "Total number of banner uploads rejected, by reason.",
		}, []string{"reason"})

		rankRefreshesTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "forum_rank_refreshes_total",
			Help: "Total number of completed channel rank refresh passes.",
		})

		prometheus.MustRegister(
			forumRequestsTotal,
			forumLatencySeconds,
			forumErrorsTotal,
			bannerStoredTotal,
			bannerRejectedTotal,
			rankRefreshesTotal,
		)
	})
}

// ForumRequests exposes the counter for forum requests.
func ForumRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return forumRequestsTotal
}

// ForumLatency exposes the latency histogram for forum requests.
func ForumLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return forumLatencySeconds
}

// ForumErrors exposes the counter for forum error responses.
func ForumErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return forumErrorsTotal
}

// BannerStored exposes the counter for persisted banners.
func BannerStored() prometheus.Counter {
	RegisterMetrics()
	return bannerStoredTotal
}

// BannerRejected exposes the counter for rejected banner uploads.
func BannerRejected() *prometheus.CounterVec {
	RegisterMetrics()
	return bannerRejectedTotal
}

// RankRefreshes exposes the counter for rank refresh passes.
func RankRefreshes() prometheus.Counter {
	RegisterMetrics()
	return rankRefreshesTotal
}
