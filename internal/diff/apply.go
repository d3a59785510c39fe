package diff

// Apply returns the sequence produced by applying u to seq.
//
// seq is never modified and the result never shares a backing array with it,
// so callers may keep both states. Index-bearing variants are checked against
// len(seq):
//
//   - Insert: 0 <= Index; Index > len(seq) appends
//   - Set, Remove: 0 <= Index < len(seq)
//   - Truncate: 0 <= Length; Length >= len(seq) is a no-op
//
// Violations return a BOUNDS_VIOLATION *Error. A u that is not one of the
// eleven variants returns an UNRECOGNIZED_UPDATE *Error.
func Apply[T any](seq []T, u Update[T]) ([]T, error) {
	switch op := u.(type) {
	case Clear[T]:
		return []T{}, nil

	case PopFront[T]:
		if len(seq) == 0 {
			return []T{}, nil
		}
		return clone(seq[1:]), nil

	case PopBack[T]:
		if len(seq) == 0 {
			return []T{}, nil
		}
		return clone(seq[:len(seq)-1]), nil

	case Append[T]:
		out := make([]T, 0, len(seq)+len(op.Values))
		out = append(out, seq...)
		return append(out, op.Values...), nil

	case PushFront[T]:
		out := make([]T, 0, len(seq)+1)
		out = append(out, op.Value)
		return append(out, seq...), nil

	case PushBack[T]:
		out := make([]T, 0, len(seq)+1)
		out = append(out, seq...)
		return append(out, op.Value), nil

	case Insert[T]:
		if op.Index < 0 {
			return nil, NewBoundsError(KindInsert, op.Index, len(seq))
		}
		idx := min(op.Index, len(seq))
		out := make([]T, 0, len(seq)+1)
		out = append(out, seq[:idx]...)
		out = append(out, op.Value)
		return append(out, seq[idx:]...), nil

	case Set[T]:
		if op.Index < 0 || op.Index >= len(seq) {
			return nil, NewBoundsError(KindSet, op.Index, len(seq))
		}
		out := clone(seq)
		out[op.Index] = op.Value
		return out, nil

	case Remove[T]:
		if op.Index < 0 || op.Index >= len(seq) {
			return nil, NewBoundsError(KindRemove, op.Index, len(seq))
		}
		out := make([]T, 0, len(seq)-1)
		out = append(out, seq[:op.Index]...)
		return append(out, seq[op.Index+1:]...), nil

	case Truncate[T]:
		if op.Length < 0 {
			return nil, NewBoundsError(KindTruncate, op.Length, len(seq))
		}
		if op.Length >= len(seq) {
			return clone(seq), nil
		}
		return clone(seq[:op.Length]), nil

	case Reset[T]:
		return clone(op.Values), nil

	default:
		return nil, NewUnrecognizedError(u)
	}
}

// ApplyBatch left-folds Apply over updates, in order.
//
// Each update's indices are interpreted against the state produced by the
// updates before it. An empty batch returns a copy of seq.
//
// The first failing update aborts the fold. ApplyBatch then returns nil and
// an *Error whose Position is the failing update's index in the batch; no
// partially folded state is exposed.
func ApplyBatch[T any](seq []T, updates []Update[T]) ([]T, error) {
	if len(updates) == 0 {
		return clone(seq), nil
	}

	cur := seq
	for i, u := range updates {
		next, err := Apply(cur, u)
		if err != nil {
			return nil, atPosition(err, i)
		}
		cur = next
	}
	return cur, nil
}

// clone copies s into a fresh, non-nil slice with no spare capacity.
func clone[T any](s []T) []T {
	out := make([]T, len(s))
	copy(out, s)
	return out
}
