package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Tracks outbound marketplace page fetches.
	PagesFetchedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reviewradar_pages_fetched_total",
			Help: "Total marketplace pages fetched (by page kind and outcome).",
		},
		[]string{"page", "outcome"}, // page = product | reviews; outcome = ok | http_error | blocked | timeout | error
	)

	// Measures duration of marketplace page fetches.
	PageFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "reviewradar_page_fetch_duration_seconds",
			Help:    "Duration of marketplace page fetches in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms → ~40s
		},
		[]string{"page"},
	)

	// Counts soft-block (CAPTCHA) pages served with a success status.
	BlockPagesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "reviewradar_block_pages_total",
			Help: "Total HTTP-successful responses identified as block/CAPTCHA pages.",
		},
	)

	BatchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reviewradar_batches_total",
			Help: "Total scrape batches processed.",
		},
		[]string{"status"}, // success | error
	)

	BatchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "reviewradar_batch_duration_seconds",
			Help:    "Wall-clock duration of whole scrape batches in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
		},
	)

	BatchSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "reviewradar_batch_size",
			Help:    "Number of ASINs per scrape batch.",
			Buckets: prometheus.LinearBuckets(1, 5, 10),
		},
	)

	// Tracks result cache hits and misses.
	CacheAccessTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reviewradar_cache_access_total",
			Help: "Number of result cache hits/misses.",
		},
		[]string{"result"}, // hit | miss
	)

	EventPublishTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reviewradar_event_publish_total",
			Help: "Batch events published to the bus.",
		},
		[]string{"result"}, // ok | error
	)
)

// ObservePageFetch records one page fetch with its outcome and latency.
func ObservePageFetch(page, outcome string, start time.Time) {
	PagesFetchedTotal.WithLabelValues(page, outcome).Inc()
	PageFetchDuration.WithLabelValues(page).Observe(time.Since(start).Seconds())
}

func IncCacheAccess(result string) {
	CacheAccessTotal.WithLabelValues(result).Inc()
}

func IncEventPublish(result string) {
	EventPublishTotal.WithLabelValues(result).Inc()
}

// ObserveBatch records a finished batch.
func ObserveBatch(status string, size int, start time.Time) {
	BatchesTotal.WithLabelValues(status).Inc()
	BatchSize.Observe(float64(size))
	BatchDuration.Observe(time.Since(start).Seconds())
}
