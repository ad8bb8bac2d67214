// Package metrics holds the Prometheus collectors for the service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	StatsComputations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "uptime",
		Name:      "stats_computations_total",
		Help:      "Stats runs by kind (uptime, insights, post_insight).",
	}, []string{"kind"})

	SyncRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "uptime",
		Name:      "sync_runs_total",
		Help:      "Daily post sync runs by outcome.",
	}, []string{"outcome"})

	VideoFetchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "uptime",
		Name:      "video_fetch_duration_seconds",
		Help:      "Time spent fetching a creator's video list, all pages.",
		Buckets:   prometheus.DefBuckets,
	})

	VideosFetched = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "uptime",
		Name:      "videos_fetched_total",
		Help:      "Videos returned by the video list API.",
	})

	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "uptime",
		Name:      "http_requests_total",
		Help:      "HTTP requests by route pattern and status class.",
	}, []string{"route", "status"})
)
