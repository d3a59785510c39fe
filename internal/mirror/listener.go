package mirror

import "github.com/roach88/seqsync/internal/diff"

// Change describes one successfully applied batch.
type Change[T any] struct {
	// Seq is the logical clock value stamped on the batch.
	Seq int64

	// Token correlates the batch across logs and downstream consumers.
	Token string

	// Updates is the batch as it was enqueued.
	Updates []diff.Update[T]

	// Sequence is the mirrored state after the batch. Listeners own this
	// slice; the mirror keeps its own copy.
	Sequence []T

	// NewIDs holds the identifiers introduced by the batch. Empty when the
	// mirror has no Identify configured.
	NewIDs diff.IDSet
}

// Failure describes a batch that was discarded.
type Failure struct {
	Seq   int64
	Token string
	Err   error
}

// Listener is notified after each applied batch.
// Calls happen on the Run goroutine, in registration order.
type Listener[T any] interface {
	OnChange(Change[T])
}

// FailureListener may be implemented by a Listener that also wants to see
// discarded batches.
type FailureListener interface {
	OnFailure(Failure)
}

// ListenerFunc adapts a function to Listener.
type ListenerFunc[T any] func(Change[T])

// OnChange calls f(c).
func (f ListenerFunc[T]) OnChange(c Change[T]) { f(c) }
