package scraper

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestWorkQueue_PutGet(t *testing.T) {
	ctx := context.Background()
	q := newWorkQueue(ctx, 4)

	urls := []string{"http://test/a", "http://test/b", "http://test/c"}
	for _, u := range urls {
		if err := q.Put(ctx, u); err != nil {
			t.Fatalf("Put(%q) failed: %v", u, err)
		}
	}

	for _, want := range urls {
		got, err := q.Get(ctx)
		if err != nil {
			t.Fatalf("Get() failed: %v", err)
		}
		if got != want {
			t.Errorf("Get() = %q, want %q", got, want)
		}
	}
}

func TestWorkQueue_BoundedPutBlocks(t *testing.T) {
	ctx := context.Background()
	q := newWorkQueue(ctx, 1)

	if err := q.Put(ctx, "http://test/a"); err != nil {
		t.Fatalf("First Put failed: %v", err)
	}

	blocked := make(chan error, 1)
	go func() {
		blocked <- q.Put(ctx, "http://test/b")
	}()

	select {
	case err := <-blocked:
		t.Fatalf("Second Put returned (%v), want it to block at capacity", err)
	case <-time.After(100 * time.Millisecond):
	}

	// Draining one slot releases the blocked producer.
	if _, err := q.Get(ctx); err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	select {
	case err := <-blocked:
		if err != nil {
			t.Fatalf("Blocked Put failed after drain: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Put still blocked after a slot was freed")
	}
}

func TestWorkQueue_BlockedPutHonoursCancel(t *testing.T) {
	q := newWorkQueue(context.Background(), 1)

	if err := q.Put(context.Background(), "http://test/a"); err != nil {
		t.Fatalf("First Put failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	blocked := make(chan error, 1)
	go func() {
		blocked <- q.Put(ctx, "http://test/b")
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-blocked:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Put error = %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Cancelled Put never returned")
	}

	// The aborted Put must not count toward completion tracking.
	q.Get(context.Background())
	q.Done()
	if err := q.Join(context.Background()); err != nil {
		t.Fatalf("Join() failed: %v", err)
	}
}

func TestWorkQueue_UnboundedPutNeverBlocks(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	q := newWorkQueue(ctx, 0)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 1000; i++ {
			if err := q.Put(ctx, "http://test/x"); err != nil {
				t.Errorf("Put #%d failed: %v", i, err)
				return
			}
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Unbounded Put blocked without a consumer")
	}

	for i := 0; i < 1000; i++ {
		if _, err := q.Get(ctx); err != nil {
			t.Fatalf("Get #%d failed: %v", i, err)
		}
		q.Done()
	}
	if err := q.Join(ctx); err != nil {
		t.Fatalf("Join() failed: %v", err)
	}
}

func TestWorkQueue_JoinWaitsForDone(t *testing.T) {
	ctx := context.Background()
	q := newWorkQueue(ctx, 4)

	q.Put(ctx, "http://test/a")
	q.Put(ctx, "http://test/b")
	q.Get(ctx)
	q.Get(ctx)

	joined := make(chan struct{})
	go func() {
		defer close(joined)
		q.Join(ctx)
	}()

	select {
	case <-joined:
		t.Fatal("Join returned with items still outstanding")
	case <-time.After(100 * time.Millisecond):
	}

	q.Done()
	select {
	case <-joined:
		t.Fatal("Join returned with one item still outstanding")
	case <-time.After(100 * time.Millisecond):
	}

	q.Done()
	select {
	case <-joined:
	case <-time.After(time.Second):
		t.Fatal("Join did not return after all items completed")
	}
}

func TestWorkQueue_JoinEmptyReturnsImmediately(t *testing.T) {
	ctx := context.Background()
	q := newWorkQueue(ctx, 4)

	if err := q.Join(ctx); err != nil {
		t.Fatalf("Join() on empty queue failed: %v", err)
	}
}

func TestWorkQueue_JoinHonoursCancel(t *testing.T) {
	q := newWorkQueue(context.Background(), 4)
	q.Put(context.Background(), "http://test/a")

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	if err := q.Join(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Join error = %v, want context.Canceled", err)
	}
}

func TestWorkQueue_ReusableAfterJoin(t *testing.T) {
	ctx := context.Background()
	q := newWorkQueue(ctx, 4)

	for round := 0; round < 3; round++ {
		q.Put(ctx, "http://test/a")
		q.Get(ctx)
		q.Done()
		if err := q.Join(ctx); err != nil {
			t.Fatalf("Round %d: Join() failed: %v", round, err)
		}
	}
}
