// Package value provides the JSON element model for sequences decoded from
// the wire.
//
// When seqsync mirrors a collection it does not know the element schema, so
// elements are decoded into a small sealed set of value types: Null, String,
// Int, Bool, Array and Object. The package also produces canonical JSON for
// those values and content fingerprints for whole sequences, so a mirror can
// be compared against an upstream snapshot without a full diff.
//
// Key design constraints:
//   - NO float types - numbers must be integers so fingerprints are stable
//   - Canonical JSON follows RFC 8785 (UTF-16 key order, NFC strings)
//   - value imports only diff; diff imports nothing internal
package value
