package mirror

import "github.com/google/uuid"

// TokenGenerator produces a correlation token for each applied batch.
// Implemented by UUIDv7Generator here and by testutil generators in tests.
type TokenGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 batch tokens, so tokens
// in a log sort in arrival order.
//
// Thread-safety: stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate returns a new UUIDv7 in hyphenated form (36 characters).
// Panics if the random source fails.
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}
