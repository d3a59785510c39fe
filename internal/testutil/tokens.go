package testutil

import (
	"fmt"
	"sync"
)

// DefaultBatchToken is returned by a FixedTokenGenerator built with "".
const DefaultBatchToken = "test-batch-default"

// FixedTokenGenerator returns the same batch token on every call.
//
// Use it when a test needs to assert on Change.Token without caring about
// uniqueness. It satisfies mirror.TokenGenerator.
type FixedTokenGenerator struct {
	token string
}

// NewFixedTokenGenerator creates a generator that always returns token.
// An empty token is replaced with DefaultBatchToken.
func NewFixedTokenGenerator(token string) *FixedTokenGenerator {
	if token == "" {
		token = DefaultBatchToken
	}
	return &FixedTokenGenerator{token: token}
}

// Generate returns the fixed token.
func (g *FixedTokenGenerator) Generate() string {
	return g.token
}

// CountingTokenGenerator returns "<prefix>-1", "<prefix>-2", ... in call order.
//
// Thread-safety: safe for concurrent use via internal mutex.
type CountingTokenGenerator struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewCountingTokenGenerator creates a counting generator. An empty prefix
// defaults to "batch".
func NewCountingTokenGenerator(prefix string) *CountingTokenGenerator {
	if prefix == "" {
		prefix = "batch"
	}
	return &CountingTokenGenerator{prefix: prefix}
}

// Generate returns the next token.
func (g *CountingTokenGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-%d", g.prefix, g.n)
}
