package diff

// Kind is the tag of an update variant. Kind values are identical to the
// keys used on the wire.
type Kind string

const (
	KindClear     Kind = "Clear"
	KindPopFront  Kind = "PopFront"
	KindPopBack   Kind = "PopBack"
	KindAppend    Kind = "Append"
	KindPushFront Kind = "PushFront"
	KindPushBack  Kind = "PushBack"
	KindInsert    Kind = "Insert"
	KindSet       Kind = "Set"
	KindRemove    Kind = "Remove"
	KindTruncate  Kind = "Truncate"
	KindReset     Kind = "Reset"
)

// kinds is the declaration order of all variants.
var kinds = []Kind{
	KindClear,
	KindPopFront,
	KindPopBack,
	KindAppend,
	KindPushFront,
	KindPushBack,
	KindInsert,
	KindSet,
	KindRemove,
	KindTruncate,
	KindReset,
}

// Kinds returns every update kind in declaration order.
func Kinds() []Kind {
	out := make([]Kind, len(kinds))
	copy(out, kinds)
	return out
}

// ValidKind reports whether k names a known variant.
func ValidKind(k Kind) bool {
	for _, known := range kinds {
		if known == k {
			return true
		}
	}
	return false
}

// Additive reports whether updates of this kind introduce new elements.
func (k Kind) Additive() bool {
	switch k {
	case KindInsert, KindPushFront, KindPushBack, KindSet, KindAppend, KindReset:
		return true
	default:
		return false
	}
}

// Update is one incremental change to a sequence of T.
// Sealed - only the eleven variant types in this package implement it.
type Update[T any] interface {
	Kind() Kind
	update(T) // Sealed; the T parameter ties each variant to its element type
}

// Clear replaces the sequence with an empty one.
type Clear[T any] struct{}

// PopFront removes the first element. No-op on an empty sequence.
type PopFront[T any] struct{}

// PopBack removes the last element. No-op on an empty sequence.
type PopBack[T any] struct{}

// Append adds Values to the end, preserving their relative order.
type Append[T any] struct {
	Values []T
}

// PushFront prepends one value.
type PushFront[T any] struct {
	Value T
}

// PushBack appends one value.
type PushBack[T any] struct {
	Value T
}

// Insert places Value so that it becomes the element at Index.
// Later elements shift right.
type Insert[T any] struct {
	Index int
	Value T
}

// Set replaces the element at Index in place.
type Set[T any] struct {
	Index int
	Value T
}

// Remove deletes the element at Index.
type Remove[T any] struct {
	Index int
}

// Truncate keeps the first Length elements.
// No-op when Length is at least the current length.
type Truncate[T any] struct {
	Length int
}

// Reset replaces the whole sequence with Values.
type Reset[T any] struct {
	Values []T
}

func (Clear[T]) Kind() Kind     { return KindClear }
func (PopFront[T]) Kind() Kind  { return KindPopFront }
func (PopBack[T]) Kind() Kind   { return KindPopBack }
func (Append[T]) Kind() Kind    { return KindAppend }
func (PushFront[T]) Kind() Kind { return KindPushFront }
func (PushBack[T]) Kind() Kind  { return KindPushBack }
func (Insert[T]) Kind() Kind    { return KindInsert }
func (Set[T]) Kind() Kind       { return KindSet }
func (Remove[T]) Kind() Kind    { return KindRemove }
func (Truncate[T]) Kind() Kind  { return KindTruncate }
func (Reset[T]) Kind() Kind     { return KindReset }

func (Clear[T]) update(T)     {}
func (PopFront[T]) update(T)  {}
func (PopBack[T]) update(T)   {}
func (Append[T]) update(T)    {}
func (PushFront[T]) update(T) {}
func (PushBack[T]) update(T)  {}
func (Insert[T]) update(T)    {}
func (Set[T]) update(T)       {}
func (Remove[T]) update(T)    {}
func (Truncate[T]) update(T)  {}
func (Reset[T]) update(T)     {}

// kindOf returns the kind of u, or "" when u is not one of the eleven
// value variants.
func kindOf[T any](u Update[T]) Kind {
	switch u.(type) {
	case Clear[T], PopFront[T], PopBack[T], Append[T], PushFront[T],
		PushBack[T], Insert[T], Set[T], Remove[T], Truncate[T], Reset[T]:
		return u.Kind()
	default:
		return ""
	}
}
