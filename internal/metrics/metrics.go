package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "swapquoter_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "swapquoter_http_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	RateLimited = promauto.NewCounter(prometheus.CounterOpts{
		Name: "swapquoter_rate_limited_total",
		Help: "Requests rejected by the rate limiter",
	})

	// Quote metrics
	QuoteRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "swapquoter_quote_requests_total",
			Help: "Total number of quote requests",
		},
		[]string{"swap_mode", "status"},
	)

	QuoteDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "swapquoter_quote_duration_seconds",
			Help:    "Quote request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"swap_mode"},
	)

	RoutesEvaluated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "swapquoter_routes_evaluated_total",
		Help: "Candidate routes priced by the router",
	})

	RoutesRejected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "swapquoter_routes_rejected_total",
		Help: "Candidate routes dropped for liquidity or shape errors",
	})

	// Snapshot metrics
	SnapshotCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "swapquoter_snapshot_cache_hits_total",
		Help: "Reserve snapshots served from cache",
	})

	SnapshotCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "swapquoter_snapshot_cache_misses_total",
		Help: "Reserve snapshots fetched from chain",
	})

	SnapshotErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "swapquoter_snapshot_errors_total",
			Help: "Reserve snapshot fetch failures by DEX",
		},
		[]string{"dex"},
	)
)
