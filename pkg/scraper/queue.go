package scraper

import (
	"context"
	"sync"
)

// workQueue is a FIFO of fetch URLs with completion tracking: every Put
// must eventually be balanced by a Done, and Join blocks until that
// holds for all enqueued URLs.
//
// A positive capacity bounds the queue, so Put blocks when it is full
// (producer backpressure). Capacity <= 0 makes the queue unbounded: Put
// never waits for space.
type workQueue struct {
	in  chan string // non-nil only in unbounded mode
	out chan string

	mu         sync.Mutex
	unfinished int
	idle       chan struct{} // non-nil while a Join is waiting
}

func newWorkQueue(ctx context.Context, capacity int) *workQueue {
	q := &workQueue{}
	if capacity > 0 {
		q.out = make(chan string, capacity)
		return q
	}
	q.in = make(chan string)
	q.out = make(chan string)
	go q.pump(ctx)
	return q
}

// pump shuttles URLs from in to out through an in-memory buffer so an
// unbounded Put never waits for a consumer.
func (q *workQueue) pump(ctx context.Context) {
	var buf []string
	for {
		var out chan string
		var next string
		if len(buf) > 0 {
			out = q.out
			next = buf[0]
		}
		select {
		case <-ctx.Done():
			return
		case u := <-q.in:
			buf = append(buf, u)
		case out <- next:
			buf = buf[1:]
		}
	}
}

// Put enqueues a URL, blocking while a bounded queue is at capacity.
func (q *workQueue) Put(ctx context.Context, url string) error {
	q.add(1)

	ch := q.out
	if q.in != nil {
		ch = q.in
	}

	select {
	case ch <- url:
		return nil
	case <-ctx.Done():
		q.add(-1)
		return ctx.Err()
	}
}

// Get dequeues one URL, blocking while the queue is empty.
func (q *workQueue) Get(ctx context.Context) (string, error) {
	select {
	case u := <-q.out:
		return u, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Done marks one previously dequeued URL as fully processed.
func (q *workQueue) Done() {
	q.add(-1)
}

// Join blocks until every enqueued URL has been marked processed.
func (q *workQueue) Join(ctx context.Context) error {
	q.mu.Lock()
	if q.unfinished == 0 {
		q.mu.Unlock()
		return nil
	}
	if q.idle == nil {
		q.idle = make(chan struct{})
	}
	idle := q.idle
	q.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *workQueue) add(delta int) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.unfinished += delta
	if q.unfinished < 0 {
		panic("workQueue: Done called more times than Put")
	}
	if q.unfinished == 0 && q.idle != nil {
		close(q.idle)
		q.idle = nil
	}
}
