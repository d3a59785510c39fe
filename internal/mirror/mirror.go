package mirror

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/roach88/seqsync/internal/diff"
)

// Mirror holds one logical sequence and applies batches to it in FIFO order.
//
// Thread-safety model:
//   - Enqueue, Snapshot, Failures, LastError, QueueLen: safe from any goroutine
//   - Run: must be called from exactly one goroutine
//   - AddListener: call before Run
type Mirror[T any] struct {
	mu    sync.RWMutex
	state []T
	seq   int64 // seq of the last applied batch
	last  error

	queue     *batchQueue[T]
	clock     Clock
	tokens    TokenGenerator
	identify  diff.Identify[T]
	listeners []Listener[T]
	logger    *slog.Logger

	failures atomic.Int64
}

// Option configures a Mirror.
type Option[T any] func(*Mirror[T])

// WithIdentify sets the extractor used to report new identifiers in each
// Change. Without it Change.NewIDs is always empty.
func WithIdentify[T any](identify diff.Identify[T]) Option[T] {
	return func(m *Mirror[T]) {
		m.identify = identify
	}
}

// WithTokenGenerator replaces the default UUIDv7 batch tokens.
func WithTokenGenerator[T any](gen TokenGenerator) Option[T] {
	return func(m *Mirror[T]) {
		m.tokens = gen
	}
}

// WithClock replaces the default LogicalClock.
func WithClock[T any](clock Clock) Option[T] {
	return func(m *Mirror[T]) {
		m.clock = clock
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger[T any](logger *slog.Logger) Option[T] {
	return func(m *Mirror[T]) {
		m.logger = logger
	}
}

// WithListener registers l at construction time.
func WithListener[T any](l Listener[T]) Option[T] {
	return func(m *Mirror[T]) {
		m.listeners = append(m.listeners, l)
	}
}

// New creates a mirror seeded with a copy of initial.
func New[T any](initial []T, opts ...Option[T]) *Mirror[T] {
	m := &Mirror[T]{
		state:  slices.Clone(initial),
		queue:  newBatchQueue[T](),
		clock:  NewLogicalClock(),
		tokens: UUIDv7Generator{},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// AddListener registers l. Not safe to call once Run has started.
func (m *Mirror[T]) AddListener(l Listener[T]) {
	m.listeners = append(m.listeners, l)
}

// Enqueue submits a batch. The slice is copied, so the caller may reuse it.
// Returns false if the mirror has been stopped.
func (m *Mirror[T]) Enqueue(updates []diff.Update[T]) bool {
	return m.queue.Enqueue(batch[T]{updates: slices.Clone(updates)})
}

// Snapshot returns a copy of the current sequence.
func (m *Mirror[T]) Snapshot() []T {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.state)
}

// Seq returns the seq of the last applied batch, or 0 if none was applied.
func (m *Mirror[T]) Seq() int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.seq
}

// Failures returns how many batches were discarded.
func (m *Mirror[T]) Failures() int64 {
	return m.failures.Load()
}

// LastError returns the error of the most recently discarded batch.
func (m *Mirror[T]) LastError() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.last
}

// QueueLen returns the number of batches waiting to be applied.
func (m *Mirror[T]) QueueLen() int {
	return m.queue.Len()
}

// Run is the single-writer loop. It blocks until ctx is cancelled or Stop
// is called and the queue has drained.
//
// A batch that fails is logged and dropped; processing continues with the
// next batch.
func (m *Mirror[T]) Run(ctx context.Context) error {
	m.logger.Info("mirror starting", "length", len(m.Snapshot()))

	for {
		if b, ok := m.queue.TryDequeue(); ok {
			m.process(b)
			continue
		}

		select {
		case <-ctx.Done():
			m.logger.Info("mirror stopping: context cancelled")
			m.queue.Close()
			return ctx.Err()

		case <-m.queue.Wait():
			// The signal channel is closed by Stop; an empty queue then means done.
			if m.queue.Len() == 0 && m.queue.Closed() {
				m.logger.Info("mirror stopping: queue closed")
				return nil
			}
		}
	}
}

// Stop closes the queue. Run applies the batches already queued, then returns.
func (m *Mirror[T]) Stop() {
	m.queue.Close()
}

// process applies one batch. Called only from Run.
func (m *Mirror[T]) process(b batch[T]) {
	seq := m.clock.Next()
	token := m.tokens.Generate()

	m.mu.RLock()
	current := m.state
	m.mu.RUnlock()

	next, err := diff.ApplyBatch(current, b.updates)
	if err != nil {
		m.failures.Add(1)
		m.mu.Lock()
		m.last = err
		m.mu.Unlock()

		m.logger.Error("batch discarded",
			"batch", token,
			"seq", seq,
			"updates", len(b.updates),
			"code", string(diff.CodeOf(err)),
			"error", err,
		)
		m.notifyFailure(Failure{Seq: seq, Token: token, Err: err})
		return
	}

	ids := diff.IDSet{}
	if m.identify != nil {
		ids = diff.CollectNewIdentifiers(b.updates, m.identify)
	}

	m.mu.Lock()
	m.state = next
	m.seq = seq
	m.mu.Unlock()

	m.logger.Debug("batch applied",
		"batch", token,
		"seq", seq,
		"updates", len(b.updates),
		"length", len(next),
		"new_ids", ids.Len(),
	)

	for _, l := range m.listeners {
		l.OnChange(Change[T]{
			Seq:      seq,
			Token:    token,
			Updates:  b.updates,
			Sequence: slices.Clone(next),
			NewIDs:   ids,
		})
	}
}

func (m *Mirror[T]) notifyFailure(f Failure) {
	for _, l := range m.listeners {
		if fl, ok := l.(FailureListener); ok {
			fl.OnFailure(f)
		}
	}
}
