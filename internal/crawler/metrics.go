package crawler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	pagesFetched = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "newscrawler_pages_fetched_total",
		Help: "Pages fetched successfully, by site and page kind.",
	}, []string{"site", "kind"})

	pageFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "newscrawler_page_failures_total",
		Help: "Pages that failed after retry exhaustion, by site.",
	}, []string{"site"})

	fetchRetries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "newscrawler_fetch_retries_total",
		Help: "Transient fetch failures that were retried, by site.",
	}, []string{"site"})

	recordsEmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "newscrawler_records_emitted_total",
		Help: "Validated article records emitted, by site.",
	}, []string{"site"})

	recordsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "newscrawler_records_rejected_total",
		Help: "Extraction candidates rejected by the validator, by site.",
	}, []string{"site"})

	fetchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "newscrawler_fetch_duration_seconds",
		Help:    "Fetch latency, by site.",
		Buckets: prometheus.DefBuckets,
	}, []string{"site"})
)
