package handoff

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func waitFor(t *testing.T, condition func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("condition not met: %s", msg)
}

func TestBufferedOrder(t *testing.T) {
	q := New[int]()
	for i := 0; i < 3; i++ {
		q.Enqueue(i)
	}

	if q.Len() != 3 {
		t.Fatalf("expected 3 buffered items, got %d", q.Len())
	}

	for i := 0; i < 3; i++ {
		item, err := q.Dequeue(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if item != i {
			t.Errorf("expected item %d, got %d", i, item)
		}
	}

	if q.Len() != 0 {
		t.Errorf("expected empty buffer, got %d", q.Len())
	}
}

func TestPeek(t *testing.T) {
	q := New[string]()

	if _, ok := q.Peek(); ok {
		t.Error("expected Peek on empty queue to report false")
	}

	q.Enqueue("a")
	q.Enqueue("b")

	item, ok := q.Peek()
	if !ok || item != "a" {
		t.Errorf("expected oldest item 'a', got %q (ok=%v)", item, ok)
	}
	if q.Len() != 2 {
		t.Errorf("Peek must not remove items, got len %d", q.Len())
	}
}

func TestWaiterFIFO(t *testing.T) {
	q := New[int]()

	const n = 8
	var mu sync.Mutex
	received := make([]int, 0, n)
	var wg sync.WaitGroup

	// Register waiters one at a time so their order is known.
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			item, err := q.Dequeue(context.Background())
			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}
			mu.Lock()
			received = append(received, item)
			mu.Unlock()
		}()
		i := i
		waitFor(t, func() bool { return q.Waiting() == i+1 }, "waiter registered")
	}

	// Release items one at a time; the i-th waiter must get the i-th item.
	for i := 0; i < n; i++ {
		q.Enqueue(i)
		i := i
		waitFor(t, func() bool {
			mu.Lock()
			defer mu.Unlock()
			return len(received) == i+1
		}, "item delivered")
	}
	wg.Wait()

	for i, item := range received {
		if item != i {
			t.Errorf("waiter %d received item %d, want %d", i, item, i)
		}
	}
}

func TestRendezvousBypassesBuffer(t *testing.T) {
	q := New[int]()

	done := make(chan int)
	go func() {
		item, err := q.Dequeue(context.Background())
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		done <- item
	}()
	waitFor(t, func() bool { return q.Waiting() == 1 }, "waiter registered")

	q.Enqueue(42)

	if item := <-done; item != 42 {
		t.Errorf("expected handoff of 42, got %d", item)
	}
	if q.Len() != 0 {
		t.Errorf("rendezvous must not buffer, got len %d", q.Len())
	}
	if q.Waiting() != 0 {
		t.Errorf("expected no waiters, got %d", q.Waiting())
	}
}

func TestDequeueCancellation(t *testing.T) {
	q := New[int]()

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error)
	go func() {
		_, err := q.Dequeue(ctx)
		errCh <- err
	}()
	waitFor(t, func() bool { return q.Waiting() == 1 }, "waiter registered")

	cancel()
	if err := <-errCh; err != context.Canceled {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if q.Waiting() != 0 {
		t.Errorf("cancelled waiter must be unregistered, got %d waiters", q.Waiting())
	}

	// The slot is gone; a later item is buffered, not lost.
	q.Enqueue(7)
	if q.Len() != 1 {
		t.Errorf("expected item buffered after cancellation, got len %d", q.Len())
	}
}

func TestDequeueDeadline(t *testing.T) {
	q := New[int]()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := q.Dequeue(ctx)
	if err != context.DeadlineExceeded {
		t.Fatalf("expected context.DeadlineExceeded, got %v", err)
	}
}

func TestDequeueOrRegister(t *testing.T) {
	q := New[int]()
	q.Enqueue(9)

	item, ok, w := q.DequeueOrRegister()
	if !ok || item != 9 {
		t.Fatalf("expected buffered item 9, got %d (ok=%v)", item, ok)
	}
	if w != nil {
		t.Fatal("expected no waiter when an item was buffered")
	}

	_, ok, w = q.DequeueOrRegister()
	if ok || w == nil {
		t.Fatal("expected registration on an empty buffer")
	}
	if q.Waiting() != 1 {
		t.Fatalf("expected 1 registered waiter, got %d", q.Waiting())
	}

	go q.Enqueue(10)
	item, err := w.Await(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if item != 10 {
		t.Errorf("expected handoff of 10, got %d", item)
	}
}

func TestAbortWaitersFailsPendingDequeues(t *testing.T) {
	q := New[int]()

	errCh := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func() {
			_, err := q.Dequeue(context.Background())
			errCh <- err
		}()
	}
	waitFor(t, func() bool { return q.Waiting() == 2 }, "waiters registered")

	q.AbortWaiters()
	for i := 0; i < 2; i++ {
		if err := <-errCh; !errors.Is(err, ErrAborted) {
			t.Fatalf("expected ErrAborted, got %v", err)
		}
	}
	if q.Waiting() != 0 {
		t.Errorf("expected no waiters after abort, got %d", q.Waiting())
	}

	// The queue stays usable: later items buffer normally.
	q.Enqueue(5)
	if q.Len() != 1 {
		t.Errorf("expected item buffered after abort, got len %d", q.Len())
	}
}

func TestConcurrentProducersConsumers(t *testing.T) {
	q := New[int]()

	const items = 200
	var wg sync.WaitGroup
	seen := make(chan int, items)

	for i := 0; i < items; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			item, err := q.Dequeue(context.Background())
			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}
			seen <- item
		}()
	}
	for i := 0; i < items; i++ {
		go q.Enqueue(i)
	}
	wg.Wait()
	close(seen)

	// Every item comes out exactly once.
	got := make(map[int]bool, items)
	for item := range seen {
		if got[item] {
			t.Errorf("item %d delivered twice", item)
		}
		got[item] = true
	}
	if len(got) != items {
		t.Errorf("expected %d distinct items, got %d", items, len(got))
	}
}
