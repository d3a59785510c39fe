package mirror

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/seqsync/internal/diff"
	"github.com/roach88/seqsync/internal/testutil"
	"github.com/roach88/seqsync/internal/value"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// recorder collects changes and failures in delivery order.
type recorder[T any] struct {
	mu       sync.Mutex
	changes  []Change[T]
	failures []Failure
}

func (r *recorder[T]) OnChange(c Change[T]) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changes = append(r.changes, c)
}

func (r *recorder[T]) OnFailure(f Failure) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures = append(r.failures, f)
}

func newStringMirror(initial []string, opts ...Option[string]) *Mirror[string] {
	base := []Option[string]{
		WithLogger[string](quietLogger()),
		WithClock[string](testutil.NewDeterministicClock()),
		WithTokenGenerator[string](testutil.NewCountingTokenGenerator("batch")),
	}
	return New(initial, append(base, opts...)...)
}

// drain stops m and runs it until every queued batch is applied.
func drain[T any](t *testing.T, m *Mirror[T]) {
	t.Helper()
	m.Stop()
	require.NoError(t, m.Run(context.Background()))
}

func TestMirror_AppliesBatchesInOrder(t *testing.T) {
	rec := &recorder[string]{}
	m := newStringMirror([]string{"a"}, WithListener[string](rec))

	require.True(t, m.Enqueue([]diff.Update[string]{
		diff.PushBack[string]{Value: "b"},
		diff.PushFront[string]{Value: "z"},
	}))
	require.True(t, m.Enqueue([]diff.Update[string]{
		diff.Remove[string]{Index: 0},
		diff.Append[string]{Values: []string{"c", "d"}},
	}))
	drain(t, m)

	assert.Equal(t, []string{"a", "b", "c", "d"}, m.Snapshot())
	assert.Equal(t, int64(2), m.Seq())
	assert.Equal(t, int64(0), m.Failures())

	require.Len(t, rec.changes, 2)
	assert.Equal(t, int64(1), rec.changes[0].Seq)
	assert.Equal(t, "batch-1", rec.changes[0].Token)
	assert.Equal(t, []string{"z", "a", "b"}, rec.changes[0].Sequence)
	assert.Equal(t, int64(2), rec.changes[1].Seq)
	assert.Equal(t, "batch-2", rec.changes[1].Token)
	assert.Equal(t, []string{"a", "b", "c", "d"}, rec.changes[1].Sequence)
}

func TestMirror_FailedBatchIsDiscardedAtomically(t *testing.T) {
	rec := &recorder[string]{}
	m := newStringMirror([]string{"a", "b"}, WithListener[string](rec))

	m.Enqueue([]diff.Update[string]{
		diff.PushBack[string]{Value: "c"},
		diff.Remove[string]{Index: 9},
	})
	m.Enqueue([]diff.Update[string]{diff.PopFront[string]{}})
	drain(t, m)

	// The first batch left no trace; the second still applied.
	assert.Equal(t, []string{"b"}, m.Snapshot())
	assert.Equal(t, int64(1), m.Failures())
	assert.True(t, diff.IsBoundsViolation(m.LastError()))

	require.Len(t, rec.failures, 1)
	assert.Equal(t, int64(1), rec.failures[0].Seq)
	assert.Equal(t, "batch-1", rec.failures[0].Token)

	require.Len(t, rec.changes, 1)
	assert.Equal(t, int64(2), rec.changes[0].Seq)
}

func TestMirror_UnrecognizedUpdateFailsBatch(t *testing.T) {
	m := newStringMirror(nil)
	m.Enqueue([]diff.Update[string]{diff.PushBack[string]{Value: "a"}, nil})
	drain(t, m)

	assert.Empty(t, m.Snapshot())
	assert.True(t, diff.IsUnrecognizedUpdate(m.LastError()))
}

func TestMirror_EnqueueCopiesBatch(t *testing.T) {
	m := newStringMirror(nil)
	updates := []diff.Update[string]{diff.PushBack[string]{Value: "a"}}
	m.Enqueue(updates)
	updates[0] = diff.Clear[string]{}
	drain(t, m)

	assert.Equal(t, []string{"a"}, m.Snapshot())
}

func TestMirror_SnapshotIsACopy(t *testing.T) {
	initial := []string{"a", "b"}
	m := newStringMirror(initial)
	initial[0] = "mutated"

	snap := m.Snapshot()
	assert.Equal(t, []string{"a", "b"}, snap)
	snap[1] = "mutated"
	assert.Equal(t, []string{"a", "b"}, m.Snapshot())
}

func TestMirror_EnqueueAfterStop(t *testing.T) {
	m := newStringMirror(nil)
	m.Stop()
	assert.False(t, m.Enqueue([]diff.Update[string]{diff.Clear[string]{}}))
}

func TestMirror_RunStopsOnContextCancel(t *testing.T) {
	m := newStringMirror(nil)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- m.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.False(t, m.Enqueue(nil), "cancel closes the queue")
}

func TestMirror_ConcurrentProducers(t *testing.T) {
	m := newStringMirror(nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- m.Run(ctx) }()

	const producers = 8
	const each = 50
	var wg sync.WaitGroup
	for i := 0; i < producers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < each; j++ {
				m.Enqueue([]diff.Update[string]{diff.PushBack[string]{Value: "x"}})
			}
		}()
	}
	wg.Wait()
	m.Stop()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not drain")
	}
	assert.Len(t, m.Snapshot(), producers*each)
	assert.Equal(t, int64(producers*each), m.Seq())
}

func TestMirror_NewIDs(t *testing.T) {
	rec := &recorder[value.Value]{}
	sink := NewIndexSink[value.Value]()

	m := New([]value.Value{value.Obj(value.O("id", value.String("e0")))},
		WithLogger[value.Value](quietLogger()),
		WithIdentify(value.Field("id")),
		WithListener[value.Value](rec),
		WithListener[value.Value](sink),
	)

	m.Enqueue([]diff.Update[value.Value]{
		diff.PushBack[value.Value]{Value: value.Obj(value.O("id", value.String("e1")))},
		diff.PopFront[value.Value]{},
	})
	m.Enqueue([]diff.Update[value.Value]{diff.Truncate[value.Value]{Length: 0}})
	m.Enqueue([]diff.Update[value.Value]{
		diff.Append[value.Value]{Values: []value.Value{
			value.Obj(value.O("id", value.Int(2))),
			value.Obj(value.O("id", value.Null{})),
		}},
	})
	drain(t, m)

	require.Len(t, rec.changes, 3)
	assert.Equal(t, []string{"e1"}, rec.changes[0].NewIDs.Sorted())
	assert.Equal(t, 0, rec.changes[1].NewIDs.Len())
	assert.Equal(t, []string{"2"}, rec.changes[2].NewIDs.Sorted())

	assert.Equal(t, []string{"2", "e1"}, sink.IDs())
	assert.True(t, sink.Has("e1"))
	assert.False(t, sink.Has("e0"), "initial snapshot is not new")
	assert.Equal(t, 2, sink.Batches())
}

func TestMirror_NoIdentifyMeansNoIDs(t *testing.T) {
	rec := &recorder[string]{}
	m := newStringMirror(nil, WithListener[string](rec))
	m.Enqueue([]diff.Update[string]{diff.PushBack[string]{Value: "a"}})
	drain(t, m)

	require.Len(t, rec.changes, 1)
	assert.NotNil(t, rec.changes[0].NewIDs)
	assert.Equal(t, 0, rec.changes[0].NewIDs.Len())
}

func TestMirror_ListenerFunc(t *testing.T) {
	var lengths []int
	m := newStringMirror(nil)
	m.AddListener(ListenerFunc[string](func(c Change[string]) {
		lengths = append(lengths, len(c.Sequence))
	}))

	m.Enqueue([]diff.Update[string]{diff.Append[string]{Values: []string{"a", "b"}}})
	m.Enqueue([]diff.Update[string]{diff.PopBack[string]{}})
	drain(t, m)

	assert.Equal(t, []int{2, 1}, lengths)
}

func TestMirror_ListenerCannotCorruptState(t *testing.T) {
	m := newStringMirror(nil)
	m.AddListener(ListenerFunc[string](func(c Change[string]) {
		for i := range c.Sequence {
			c.Sequence[i] = strings.ToUpper(c.Sequence[i])
		}
	}))

	m.Enqueue([]diff.Update[string]{diff.PushBack[string]{Value: "a"}})
	drain(t, m)
	assert.Equal(t, []string{"a"}, m.Snapshot())
}
