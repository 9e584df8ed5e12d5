package scraper

import (
	"github.com/voramos/coinmarket-client/pkg/progress"
)

// CallOption adjusts a single multiget call.
type CallOption func(*callOptions)

type callOptions struct {
	consumers      int
	retryConsumers int
	label          string
	observer       progress.Observer
	report         *Report
}

// WithConsumers overrides the worker count for the main queue. The
// default is min(connector limit, estimated item count).
func WithConsumers(n int) CallOption {
	return func(o *callOptions) { o.consumers = n }
}

// WithRetryConsumers overrides the worker count for the retry queue.
// The default matches the main pool size.
func WithRetryConsumers(n int) CallOption {
	return func(o *callOptions) { o.retryConsumers = n }
}

// WithLabel sets the descriptive label shown by the progress observer.
func WithLabel(label string) CallOption {
	return func(o *callOptions) { o.label = label }
}

// WithObserver overrides the progress observer for this call.
func WithObserver(obs progress.Observer) CallOption {
	return func(o *callOptions) { o.observer = obs }
}

// WithReport captures per-call accounting in r.
func WithReport(r *Report) CallOption {
	return func(o *callOptions) { o.report = r }
}

// Report accounts for one multiget call.
type Report struct {
	// Requested is the number of items handed to the work queue.
	Requested int

	// Fetched is the number of response bodies collected.
	Fetched int

	// Retried is the number of timeouts moved to the retry queue.
	Retried int

	// Dropped is the number of items lost to a second timeout or a
	// non-timeout fetch failure.
	Dropped int
}
