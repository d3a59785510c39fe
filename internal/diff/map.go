package diff

// MapUpdate returns the update of the same kind with f applied to every value
// it carries.
//
// Append and Reset values are transformed in order, each exactly once. The
// single value of PushFront, PushBack, Insert and Set is transformed. Clear,
// PopFront, PopBack, Remove and Truncate carry no values and pass through
// with only their element type changed. Indices and lengths are copied
// unchanged; they are not checked here.
//
// This lets a caller maintain a transformed mirror from the same update
// stream instead of diffing two materialized snapshots.
func MapUpdate[T, R any](u Update[T], f func(T) R) (Update[R], error) {
	switch op := u.(type) {
	case Clear[T]:
		return Clear[R]{}, nil
	case PopFront[T]:
		return PopFront[R]{}, nil
	case PopBack[T]:
		return PopBack[R]{}, nil
	case Append[T]:
		return Append[R]{Values: mapValues(op.Values, f)}, nil
	case PushFront[T]:
		return PushFront[R]{Value: f(op.Value)}, nil
	case PushBack[T]:
		return PushBack[R]{Value: f(op.Value)}, nil
	case Insert[T]:
		return Insert[R]{Index: op.Index, Value: f(op.Value)}, nil
	case Set[T]:
		return Set[R]{Index: op.Index, Value: f(op.Value)}, nil
	case Remove[T]:
		return Remove[R]{Index: op.Index}, nil
	case Truncate[T]:
		return Truncate[R]{Length: op.Length}, nil
	case Reset[T]:
		return Reset[R]{Values: mapValues(op.Values, f)}, nil
	default:
		return nil, NewUnrecognizedError(u)
	}
}

// MapBatch maps each update independently. No state is folded between
// updates; the result has the same length and order as updates.
// The first unrecognized update aborts with its batch position.
func MapBatch[T, R any](updates []Update[T], f func(T) R) ([]Update[R], error) {
	out := make([]Update[R], len(updates))
	for i, u := range updates {
		mapped, err := MapUpdate(u, f)
		if err != nil {
			return nil, atPosition(err, i)
		}
		out[i] = mapped
	}
	return out, nil
}

func mapValues[T, R any](values []T, f func(T) R) []R {
	if values == nil {
		return nil
	}
	out := make([]R, len(values))
	for i, v := range values {
		out[i] = f(v)
	}
	return out
}
