package value

import (
	"strconv"

	"github.com/roach88/seqsync/internal/diff"
)

// Field returns an identifier extractor reading the top-level key of object
// elements.
//
// Non-empty strings and integers are identifiers (integers in decimal).
// A missing key, null, "", false, true, arrays, objects and non-object
// elements are all absent.
func Field(key string) diff.Identify[Value] {
	return func(v Value) (string, bool) {
		obj, ok := v.(Object)
		if !ok {
			return "", false
		}
		return scalarID(obj[key])
	}
}

// Self returns an identifier extractor for sequences whose elements are the
// identifiers themselves (e.g. a list of room IDs).
func Self() diff.Identify[Value] {
	return scalarID
}

// ByFingerprint identifies every element by its content fingerprint.
func ByFingerprint() diff.Identify[Value] {
	return func(v Value) (string, bool) {
		fp, err := ElementFingerprint(v)
		if err != nil {
			return "", false
		}
		return fp, true
	}
}

func scalarID(v Value) (string, bool) {
	switch id := v.(type) {
	case String:
		return string(id), id != ""
	case Int:
		return strconv.FormatInt(int64(id), 10), true
	default:
		return "", false
	}
}

// Project returns a transform that replaces object elements with the value
// of key, for use with diff.MapUpdate and diff.MapBatch. Elements that are
// not objects, or lack the key, project to Null.
func Project(key string) func(Value) Value {
	return func(v Value) Value {
		obj, ok := v.(Object)
		if !ok {
			return Null{}
		}
		field, ok := obj[key]
		if !ok || field == nil {
			return Null{}
		}
		return field
	}
}
