package mirror

import (
	"sync"

	"github.com/roach88/seqsync/internal/diff"
)

// batch is one queued unit of work.
type batch[T any] struct {
	updates []diff.Update[T]
}

// batchQueue is an unbounded, thread-safe FIFO of batches.
//
// Producers call Enqueue from any goroutine while the Run loop drains with
// TryDequeue. The signal channel lets Run wait with a select on ctx.Done().
type batchQueue[T any] struct {
	mu      sync.Mutex
	batches []batch[T]
	closed  bool
	signal  chan struct{} // buffered, size 1
}

func newBatchQueue[T any]() *batchQueue[T] {
	return &batchQueue[T]{
		batches: make([]batch[T], 0, 16),
		signal:  make(chan struct{}, 1),
	}
}

// Enqueue adds b to the back of the queue.
// Returns false if the queue is closed.
func (q *batchQueue[T]) Enqueue(b batch[T]) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}

	q.batches = append(q.batches, b)

	// Non-blocking; the buffer of 1 coalesces signals.
	select {
	case q.signal <- struct{}{}:
	default:
	}
	return true
}

// TryDequeue removes and returns the front batch without blocking.
func (q *batchQueue[T]) TryDequeue() (batch[T], bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.batches) == 0 {
		return batch[T]{}, false
	}

	b := q.batches[0]
	// Release the slot so the backing array does not pin the updates.
	q.batches[0] = batch[T]{}
	if len(q.batches) == 1 {
		q.batches = q.batches[:0]
	} else {
		q.batches = q.batches[1:]
	}
	return b, true
}

// Wait returns a channel that signals when batches may be available.
// It is closed once the queue is closed.
func (q *batchQueue[T]) Wait() <-chan struct{} {
	return q.signal
}

// Len returns the number of queued batches.
func (q *batchQueue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.batches)
}

// Closed reports whether Close has been called.
func (q *batchQueue[T]) Closed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}

// Close stops accepting batches and wakes any waiter.
// Batches already queued can still be dequeued.
func (q *batchQueue[T]) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	close(q.signal)
}
