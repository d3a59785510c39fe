package diff

import (
	"slices"
)

// Identify derives a stable identifier from an element.
// It returns ok=false when the element has no identifier. An empty string is
// treated as absent as well.
type Identify[T any] func(T) (id string, ok bool)

// IDSet is a set of element identifiers.
type IDSet map[string]struct{}

// NewIDSet creates a set holding ids.
func NewIDSet(ids ...string) IDSet {
	s := make(IDSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Add inserts id into the set.
func (s IDSet) Add(id string) {
	s[id] = struct{}{}
}

// Has reports whether id is in the set.
func (s IDSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Len returns the number of identifiers in the set.
func (s IDSet) Len() int {
	return len(s)
}

// Union adds every identifier of other to s.
func (s IDSet) Union(other IDSet) {
	for id := range other {
		s[id] = struct{}{}
	}
}

// Sorted returns the identifiers in ascending order.
func (s IDSet) Sorted() []string {
	var ids []string
	for id := range s {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// CollectNewIdentifiers returns the identifiers of every element introduced
// by an additive update in updates.
//
// Insert, PushFront, PushBack and Set contribute their value; Append and
// Reset contribute each of their values. identify is called once per
// candidate element. Clear, PopFront, PopBack, Remove and Truncate contribute
// nothing.
//
// The result does not depend on update order: removals later in the batch do
// not retract identifiers. Unrecognized updates are skipped silently, so a
// best-effort index keeps working when the upstream protocol grows a variant
// this package does not know yet.
func CollectNewIdentifiers[T any](updates []Update[T], identify Identify[T]) IDSet {
	ids := make(IDSet)
	add := func(v T) {
		if id, ok := identify(v); ok && id != "" {
			ids[id] = struct{}{}
		}
	}

	for _, u := range updates {
		switch op := u.(type) {
		case Insert[T]:
			add(op.Value)
		case PushFront[T]:
			add(op.Value)
		case PushBack[T]:
			add(op.Value)
		case Set[T]:
			add(op.Value)
		case Append[T]:
			for _, v := range op.Values {
				add(v)
			}
		case Reset[T]:
			for _, v := range op.Values {
				add(v)
			}
		}
	}
	return ids
}
