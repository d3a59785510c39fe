package value

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content fingerprints.
// Version suffix enables future algorithm migration.
const (
	DomainSequence = "seqsync/sequence/v1"
	DomainElement  = "seqsync/element/v1"
)

// hashWithDomain computes SHA-256 with domain separation.
// Format: SHA256(domain + 0x00 + data)
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Fingerprint returns a stable content hash of a sequence.
// Two sequences have the same fingerprint iff their canonical JSON matches,
// so key order in objects and Unicode normalization do not matter.
func Fingerprint(seq []Value) (string, error) {
	canonical, err := MarshalCanonicalSequence(seq)
	if err != nil {
		return "", fmt.Errorf("fingerprint: %w", err)
	}
	return hashWithDomain(DomainSequence, canonical), nil
}

// ElementFingerprint returns a stable content hash of one element.
// Useful as an identifier for elements that carry no natural key.
func ElementFingerprint(v Value) (string, error) {
	canonical, err := MarshalCanonical(v)
	if err != nil {
		return "", fmt.Errorf("element fingerprint: %w", err)
	}
	return hashWithDomain(DomainElement, canonical), nil
}

// MustFingerprint is like Fingerprint but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustFingerprint(seq []Value) string {
	fp, err := Fingerprint(seq)
	if err != nil {
		panic(err)
	}
	return fp
}
