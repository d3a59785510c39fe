package mirror

import (
	"sync"

	"github.com/roach88/seqsync/internal/diff"
)

// IndexSink accumulates every identifier a mirror has reported as new.
// It stands in for a downstream cache that must learn about new elements
// without diffing snapshots.
type IndexSink[T any] struct {
	mu      sync.Mutex
	ids     diff.IDSet
	batches int
}

// NewIndexSink creates an empty sink.
func NewIndexSink[T any]() *IndexSink[T] {
	return &IndexSink[T]{ids: diff.IDSet{}}
}

// OnChange records c.NewIDs.
func (s *IndexSink[T]) OnChange(c Change[T]) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids.Union(c.NewIDs)
	if c.NewIDs.Len() > 0 {
		s.batches++
	}
}

// Has reports whether id was ever introduced.
func (s *IndexSink[T]) Has(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ids.Has(id)
}

// IDs returns the accumulated identifiers in ascending order.
func (s *IndexSink[T]) IDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ids.Sorted()
}

// Batches returns how many batches introduced at least one identifier.
func (s *IndexSink[T]) Batches() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.batches
}
