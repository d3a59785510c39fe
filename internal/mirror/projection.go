package mirror

import (
	"slices"
	"sync"

	"github.com/roach88/seqsync/internal/diff"
)

// Projection maintains a transformed copy of a mirrored sequence.
//
// It never re-derives a diff from two snapshots: each Change's updates are
// mapped with diff.MapBatch and folded onto the projection's own state, so
// the projection always equals the transform applied to every element of
// the source.
type Projection[T, R any] struct {
	mu        sync.RWMutex
	transform func(T) R
	state     []R
	err       error
}

// NewProjection creates a projection of initial, which must be the same
// sequence the source mirror was created with.
func NewProjection[T, R any](initial []T, transform func(T) R) *Projection[T, R] {
	state := make([]R, len(initial))
	for i, v := range initial {
		state[i] = transform(v)
	}
	return &Projection[T, R]{transform: transform, state: state}
}

// OnChange folds the mapped batch onto the projected state.
func (p *Projection[T, R]) OnChange(c Change[T]) {
	mapped, err := diff.MapBatch(c.Updates, p.transform)
	if err == nil {
		p.mu.RLock()
		current := p.state
		p.mu.RUnlock()

		var next []R
		if next, err = diff.ApplyBatch(current, mapped); err == nil {
			p.mu.Lock()
			p.state = next
			p.mu.Unlock()
			return
		}
	}

	p.mu.Lock()
	p.err = err
	p.mu.Unlock()
}

// Snapshot returns a copy of the projected sequence.
func (p *Projection[T, R]) Snapshot() []R {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return slices.Clone(p.state)
}

// Err returns the last error hit while projecting. Because mapping keeps the
// structure of every update, an error here means the projection was seeded
// with a different initial sequence than its source.
func (p *Projection[T, R]) Err() error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.err
}
