// Package mirror keeps a client-side copy of one remote ordered collection.
//
// The diff package is pure and has no notion of ordering between callers.
// A Mirror supplies that ordering: batches are enqueued from any goroutine
// and applied by a single writer, so updates for one logical sequence are
// never applied concurrently or out of order.
//
// Processing flow:
//  1. Enqueue appends a batch to a FIFO queue.
//  2. Run dequeues batches one at a time.
//  3. Each batch gets a logical seq from the Clock and a token from the
//     TokenGenerator.
//  4. The batch is folded with diff.ApplyBatch. A failed batch is logged and
//     dropped; the mirrored state is left exactly as it was.
//  5. On success the new state is published and listeners receive a Change
//     carrying the batch, the new sequence and the identifiers it introduced.
//
// Listeners run on the Run goroutine, in registration order. Projection and
// IndexSink are the two listeners this package provides.
package mirror
