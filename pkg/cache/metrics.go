package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheHits tracks snapshot hits by layer (redis)
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cmc_cache_hits_total",
			Help: "Total number of snapshot cache hits",
		},
		[]string{"layer"}, // "redis"
	)

	// CacheMisses tracks snapshot misses
	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cmc_cache_misses_total",
			Help: "Total number of snapshot cache misses",
		},
	)

	// CacheSize tracks stored snapshot size in bytes by layer
	CacheSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cmc_cache_size_bytes",
			Help: "Size of the last stored snapshot in bytes",
		},
		[]string{"layer"}, // "redis"
	)

	// CacheErrors tracks cache operation errors
	CacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cmc_cache_errors_total",
			Help: "Total number of cache operation errors",
		},
		[]string{"operation"}, // "get", "set", "delete"
	)
)
