// Package diff implements the sequence update engine for seqsync.
//
// A remote subsystem (a room list, a timeline, a member list) reports changes
// to an ordered collection as a stream of small updates instead of full
// snapshots. This package folds those updates into a client-side mirror of
// the collection, transforms update streams elementwise, and extracts the
// identifiers an update stream introduces.
//
// The package is the foundational layer: it imports nothing internal and
// holds no state between calls.
//
// # Update Variants
//
// Update[T] is a sealed interface. Exactly eleven value types implement it:
//
//	Clear      PopFront   PopBack    Append{Values}
//	PushFront{Value}      PushBack{Value}
//	Insert{Index, Value}  Set{Index, Value}      Remove{Index}
//	Truncate{Length}      Reset{Values}
//
// Anything else (a nil Update, a pointer to a variant) is unrecognized and
// rejected by Apply and MapUpdate with an UNRECOGNIZED_UPDATE error.
//
// # Operations
//
//   - Apply: one update against a sequence, returning a fresh sequence
//   - ApplyBatch: left fold of Apply; the first error aborts the fold
//   - MapUpdate / MapBatch: structure-preserving elementwise transform
//   - CollectNewIdentifiers: set of identifiers introduced by additive variants
//
// Indices carried by Insert, Set and Remove are interpreted against the
// sequence state immediately preceding the update, so
//
//	ApplyBatch(s, [u1, u2]) == Apply(Apply(s, u1), u2)
//
// # Bounds Policy
//
// Negative indices and lengths are BOUNDS_VIOLATION errors. Set and Remove
// must address an existing element. Insert with an index past the end
// appends.
//
// # Purity
//
// Inputs are never mutated and results never alias input slices. All
// functions are safe for concurrent use on independent inputs. Callers that
// receive concurrent batches for one logical sequence must serialize them
// (see package mirror).
package diff
