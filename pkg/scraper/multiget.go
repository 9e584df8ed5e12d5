package scraper

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"slices"
	"sync"

	"github.com/voramos/coinmarket-client/pkg/client"
)

// unknownLengthEstimate stands in for the item count of inputs whose
// length cannot be determined up front.
const unknownLengthEstimate = 1_000_000

// URLBuilder maps one domain item (ticker symbol or canonical name) to
// a fully qualified fetch URL. Builders are called from the producer
// and must be safe for concurrent use.
type URLBuilder func(ctx context.Context, item string) (string, error)

// callState is the collection shared by all consumer workers of one
// multiget call. Appends happen from many goroutines, hence the lock.
type callState struct {
	mu        sync.Mutex
	responses []string
	report    *Report
}

func (st *callState) requested() {
	st.mu.Lock()
	st.report.Requested++
	st.mu.Unlock()
	multigetItemsTotal.Inc()
}

func (st *callState) collect(body string) {
	st.mu.Lock()
	st.responses = append(st.responses, body)
	st.report.Fetched++
	st.mu.Unlock()
	multigetResponsesTotal.Inc()
}

func (st *callState) retried() {
	st.mu.Lock()
	st.report.Retried++
	st.mu.Unlock()
	multigetRetriesTotal.Inc()
}

func (st *callState) drop(reason string) {
	st.mu.Lock()
	st.report.Dropped++
	st.mu.Unlock()
	multigetDroppedTotal.WithLabelValues(reason).Inc()
}

// Multiget fetches one URL per item with bounded concurrency and a
// single dead-letter retry pass for timed-out requests, returning the
// raw response bodies in nondeterministic completion order.
//
// Permanent failures shrink the result: len(result) <= len(items), and
// callers must not assume any correspondence between input order and
// output order. Use WithReport to account for dropped items.
func (s *Scraper) Multiget(ctx context.Context, items []string, build URLBuilder, opts ...CallOption) ([]string, error) {
	return s.multiget(ctx, slices.Values(items), len(items), build, opts)
}

// MultigetSeq is Multiget over a sequence of unknown length. The
// default worker count falls back to the connector limit because the
// item count cannot be estimated.
func (s *Scraper) MultigetSeq(ctx context.Context, items iter.Seq[string], build URLBuilder, opts ...CallOption) ([]string, error) {
	return s.multiget(ctx, items, unknownLengthEstimate, build, opts)
}

func (s *Scraper) multiget(ctx context.Context, items iter.Seq[string], estimate int, build URLBuilder, opts []CallOption) ([]string, error) {
	call := callOptions{observer: s.observer}
	for _, opt := range opts {
		opt(&call)
	}
	if call.report == nil {
		call.report = &Report{}
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	main := newWorkQueue(ctx, s.config.QueueSize)
	dlq := newWorkQueue(ctx, 0) // unbounded: a timeout burst must not stall main consumers

	workers := call.consumers
	if workers <= 0 {
		workers = min(s.connectorLimit, estimate)
	}
	retryWorkers := call.retryConsumers
	if retryWorkers <= 0 {
		retryWorkers = workers
	}

	st := &callState{report: call.report}

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go s.consume(ctx, &wg, main, dlq, st, false)
	}
	for i := 0; i < retryWorkers; i++ {
		wg.Add(1)
		go s.consume(ctx, &wg, dlq, nil, st, true)
	}

	s.logger.Debug().
		Int("workers", workers).
		Int("retry_workers", retryWorkers).
		Int("queue_size", s.config.QueueSize).
		Str("label", call.label).
		Msg("Starting multiget")

	if err := s.produce(ctx, items, estimate, build, main, call, st); err != nil {
		cancel()
		wg.Wait()
		return nil, err
	}

	// The retry queue is fed only by main-queue consumers, so the main
	// join must complete before the retry join is awaited; reversing
	// the order races with timeouts that are not yet discovered.
	if err := main.Join(ctx); err != nil {
		wg.Wait()
		return nil, err
	}
	if err := dlq.Join(ctx); err != nil {
		wg.Wait()
		return nil, err
	}

	cancel()
	wg.Wait()

	st.mu.Lock()
	responses := st.responses
	report := *st.report
	st.mu.Unlock()

	s.logger.Info().
		Int("requested", report.Requested).
		Int("fetched", report.Fetched).
		Int("retried", report.Retried).
		Int("dropped", report.Dropped).
		Str("label", call.label).
		Msg("Multiget complete")
	if report.Dropped > 0 {
		s.logger.Warn().
			Int("dropped", report.Dropped).
			Str("label", call.label).
			Msg("Items dropped without a response")
	}

	return responses, nil
}

// produce drains the input through the URL builder into the main queue.
// Put blocks while the queue is at capacity, which bounds memory
// regardless of input size.
func (s *Scraper) produce(ctx context.Context, items iter.Seq[string], estimate int, build URLBuilder, queue *workQueue, call callOptions, st *callState) error {
	total := estimate
	if total >= unknownLengthEstimate {
		total = -1
	}
	call.observer.Start(call.label, total)
	defer call.observer.Finish()

	for item := range items {
		url, err := build(ctx, item)
		if err != nil {
			return fmt.Errorf("build url for %q: %w", item, err)
		}
		if err := queue.Put(ctx, url); err != nil {
			return err
		}
		st.requested()
		call.observer.Advance()
	}
	return nil
}

// consume runs one worker: dequeue, fetch, account. Main-queue workers
// route first timeouts to the retry queue (dlq); retry workers drop a
// second timeout. The loop only ends by cancellation, which happens
// once both queues have fully drained.
func (s *Scraper) consume(ctx context.Context, wg *sync.WaitGroup, queue, dlq *workQueue, st *callState, retryPass bool) {
	defer wg.Done()

	for {
		url, err := queue.Get(ctx)
		if err != nil {
			return
		}

		body, err := s.fetcher.Fetch(ctx, url)
		switch {
		case err == nil:
			st.collect(body)
		case client.IsTimeout(err):
			if retryPass {
				s.logger.Debug().Str("url", url).Msg("Second timeout, dropping")
				st.drop("timeout")
			} else {
				s.logger.Debug().Str("url", url).Msg("Timeout, moving to retry queue")
				st.retried()
				if perr := dlq.Put(ctx, url); perr != nil {
					// Cancelled mid-handoff; the call is aborting anyway.
					st.drop("cancelled")
				}
			}
		case errors.Is(err, context.Canceled):
			// Fetch abandoned by cancellation; nothing left to account.
			queue.Done()
			return
		default:
			// A worker must not die silently on a bad response; that
			// would shrink the pool without signaling the orchestrator.
			s.logger.Warn().Err(err).Str("url", url).Msg("Fetch failed, dropping item")
			st.drop("error")
		}

		queue.Done()
	}
}
