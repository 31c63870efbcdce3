// Package handoff provides an asynchronous FIFO handoff queue: a generic
// container that either buffers enqueued items or hands them directly to
// waiting consumers, whichever side arrived first.
//
// # Rendezvous Semantics
//
// The queue maintains two sequences: buffered items and pending waiters.
// At most one of the two is non-empty at any instant:
//
//   - Enqueue hands the item directly to the oldest waiter if one exists
//     (a rendezvous - the item never touches the buffer), otherwise it is
//     appended to the buffer.
//   - Dequeue takes the oldest buffered item if one exists, otherwise the
//     caller registers as a waiter and blocks until an Enqueue fulfills it.
//
// Waiters are fulfilled in the exact order they called Dequeue, and buffered
// items are consumed in the exact order they were enqueued, so distribution
// is strict FIFO regardless of whether supply or demand arrives first. The
// Go runtime does not document a fairness guarantee for goroutines blocked
// on a shared channel, which is why the waiter list is explicit instead of
// a single buffered channel.
//
// Callers that need to interleave bookkeeping of their own between the
// buffer check and the commitment to wait can split Dequeue into its two
// halves with DequeueOrRegister and Waiter.Await.
//
// # Basic Usage
//
//	q := handoff.New[*sql.Conn]()
//	q.Enqueue(conn)
//
//	conn, err := q.Dequeue(ctx) // blocks until an item is available
//	if err != nil {
//	    return err // ctx cancelled or deadline exceeded
//	}
package handoff

import (
	"context"
	"errors"
	"sync"
)

// ErrAborted is returned from a pending Dequeue or Await when AbortWaiters
// fails the waiter.
var ErrAborted = errors.New("handoff: waiter aborted")

// Queue is an unbounded FIFO handoff queue for items of type T.
// It is safe for concurrent use. The zero value is not usable; construct
// with New.
type Queue[T any] struct {
	mu      sync.Mutex
	items   []T
	waiters []chan T // each cap-1, receives exactly one item or is closed
}

// New creates an empty handoff queue.
func New[T any]() *Queue[T] {
	return &Queue[T]{}
}

// Enqueue makes item available to consumers. If a waiter is pending, the
// oldest one receives the item directly; otherwise the item is buffered.
// Enqueue never blocks and never fails.
func (q *Queue[T]) Enqueue(item T) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.waiters) > 0 {
		ch := q.waiters[0]
		q.waiters = q.waiters[1:]
		// Waiter channels have capacity 1 and receive exactly one send,
		// so this cannot block while the lock is held.
		ch <- item
		return
	}
	q.items = append(q.items, item)
}

// Dequeue removes and returns the oldest buffered item. If the buffer is
// empty, the caller is registered as a waiter and blocks until an Enqueue
// fulfills it, AbortWaiters fails it with ErrAborted, or ctx is done.
func (q *Queue[T]) Dequeue(ctx context.Context) (T, error) {
	item, ok, w := q.DequeueOrRegister()
	if ok {
		return item, nil
	}
	return w.Await(ctx)
}

// DequeueOrRegister returns the oldest buffered item immediately when one
// exists. Otherwise it appends the caller to the waiter list and returns a
// Waiter to block on. Both halves happen in one critical section, so a
// caller serializing on a lock of its own cannot have the queue change
// state between its check and its commitment to wait.
func (q *Queue[T]) DequeueOrRegister() (T, bool, *Waiter[T]) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) > 0 {
		item := q.items[0]
		q.items = q.items[1:]
		return item, true, nil
	}

	ch := make(chan T, 1)
	q.waiters = append(q.waiters, ch)
	var zero T
	return zero, false, &Waiter[T]{q: q, ch: ch}
}

// AbortWaiters fails every pending waiter with ErrAborted and clears the
// waiter list. Buffered items are unaffected and the queue remains usable.
func (q *Queue[T]) AbortWaiters() {
	q.mu.Lock()
	waiters := q.waiters
	q.waiters = nil
	q.mu.Unlock()

	// The channels were removed from the list under the lock, so no
	// Enqueue can send on them anymore.
	for _, ch := range waiters {
		close(ch)
	}
}

// Peek returns the oldest buffered item without removing it. The second
// return value is false when the buffer is empty. Peek never reflects
// pending waiters.
func (q *Queue[T]) Peek() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		var zero T
		return zero, false
	}
	return q.items[0], true
}

// Len returns the number of buffered items.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Waiting returns the number of consumers currently blocked in Dequeue.
func (q *Queue[T]) Waiting() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.waiters)
}

// Waiter is a registered consumer slot created by DequeueOrRegister.
// Exactly one of three things resolves it: an Enqueue fulfills it, Await
// abandons it on context cancellation, or AbortWaiters fails it.
type Waiter[T any] struct {
	q  *Queue[T]
	ch chan T
}

// Await blocks until the slot is fulfilled, aborted, or ctx is done.
//
// On cancellation the slot is released. If a concurrent Enqueue has already
// claimed it, the delivered item is re-enqueued so it is not lost; it then
// goes to the next waiter or the buffer as usual.
func (w *Waiter[T]) Await(ctx context.Context) (T, error) {
	select {
	case item, ok := <-w.ch:
		if !ok {
			var zero T
			return zero, ErrAborted
		}
		return item, nil
	case <-ctx.Done():
		var zero T
		w.q.mu.Lock()
		for i, ch := range w.q.waiters {
			if ch == w.ch {
				w.q.waiters = append(w.q.waiters[:i], w.q.waiters[i+1:]...)
				w.q.mu.Unlock()
				return zero, ctx.Err()
			}
		}
		w.q.mu.Unlock()
		// The slot was claimed before we could release it: either an
		// Enqueue delivered an item or AbortWaiters closed the channel.
		// Put a delivered item back into circulation.
		if item, ok := <-w.ch; ok {
			w.q.Enqueue(item)
		}
		return zero, ctx.Err()
	}
}
