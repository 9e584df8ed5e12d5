package scraper

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the multiget engine.
var (
	multigetItemsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cmc_multiget_items_total",
		Help: "Total items enqueued by multiget producers",
	})

	multigetResponsesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cmc_multiget_responses_total",
		Help: "Total response bodies collected by multiget consumers",
	})

	multigetRetriesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cmc_multiget_retries_total",
		Help: "Total timed-out items moved to the retry queue",
	})

	multigetDroppedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cmc_multiget_dropped_total",
		Help: "Total items dropped without a response, by reason",
	}, []string{"reason"}) // "timeout", "error", "cancelled"
)
