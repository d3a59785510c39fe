package diff

import (
	"errors"
	"fmt"
)

// Error is returned when an update cannot be applied or mapped.
//
// Errors include:
//   - Unrecognized update: a value that is not exactly one known variant
//   - Bounds violation: an index or length outside the range the variant allows
//
// Error carries structured fields so callers can log the failing update
// without re-deriving it.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Kind is the variant being applied. Empty for unrecognized updates.
	Kind Kind

	// Index is the offending index or length (bounds violations only).
	Index int

	// Length is the sequence length the update was checked against.
	Length int

	// Position is the update's position within its batch, or -1 when the
	// update was applied on its own.
	Position int
}

// ErrorCode categorizes update errors.
type ErrorCode string

const (
	// ErrCodeUnrecognizedUpdate indicates a value with zero or several variant tags.
	ErrCodeUnrecognizedUpdate ErrorCode = "UNRECOGNIZED_UPDATE"

	// ErrCodeBoundsViolation indicates an index or length outside the allowed range.
	ErrCodeBoundsViolation ErrorCode = "BOUNDS_VIOLATION"
)

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Position >= 0 {
		return fmt.Sprintf("%s: %s (batch position %d)", e.Code, e.Message, e.Position)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsUnrecognizedUpdate returns true if err is an unrecognized update error.
// Uses errors.As to handle wrapped errors.
func IsUnrecognizedUpdate(err error) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == ErrCodeUnrecognizedUpdate
	}
	return false
}

// IsBoundsViolation returns true if err is a bounds violation error.
// Uses errors.As to handle wrapped errors.
func IsBoundsViolation(err error) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == ErrCodeBoundsViolation
	}
	return false
}

// CodeOf returns the ErrorCode carried by err, or "" if err is not an *Error.
func CodeOf(err error) ErrorCode {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// NewUnrecognizedError creates an Error for a value that is not a known variant.
// v is the offending value, reported by type.
func NewUnrecognizedError(v any) *Error {
	return &Error{
		Code:     ErrCodeUnrecognizedUpdate,
		Message:  fmt.Sprintf("value of type %T is not exactly one known update variant", v),
		Position: -1,
	}
}

// NewBoundsError creates an Error for an index or length out of range.
func NewBoundsError(kind Kind, index, length int) *Error {
	var msg string
	switch kind {
	case KindTruncate:
		msg = fmt.Sprintf("truncate length %d is negative", index)
	case KindInsert:
		msg = fmt.Sprintf("insert index %d is negative", index)
	default:
		msg = fmt.Sprintf("%s index %d out of range [0, %d)", kind, index, length)
	}
	return &Error{
		Code:     ErrCodeBoundsViolation,
		Message:  msg,
		Kind:     kind,
		Index:    index,
		Length:   length,
		Position: -1,
	}
}

// atPosition returns a copy of err stamped with a batch position.
// Errors that are not *Error are wrapped with the position instead.
func atPosition(err error, pos int) error {
	var de *Error
	if errors.As(err, &de) {
		stamped := *de
		stamped.Position = pos
		return &stamped
	}
	return fmt.Errorf("batch[%d]: %w", pos, err)
}
