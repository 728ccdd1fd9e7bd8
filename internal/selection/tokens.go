package selection

import (
	"strings"
	"sync"

	"github.com/google/uuid"
)

// TokenGenerator produces placeholder tokens.
//
// Tokens replace leaf field names in printed documents, so they must be
// valid GraphQL names and must not occur anywhere else in the document.
// No token may contain another as a substring.
type TokenGenerator interface {
	Generate() string
}

// UUIDGenerator generates tokens of the form "_" + 32 hex digits from a
// UUIDv7.
//
// Thread-safety: UUIDGenerator is stateless and safe for concurrent use.
type UUIDGenerator struct{}

// Generate creates a new token.
//
// Panics if UUID generation fails (should never happen in practice).
func (g UUIDGenerator) Generate() string {
	return "_" + strings.ReplaceAll(uuid.Must(uuid.NewV7()).String(), "-", "")
}

// FixedGenerator returns predetermined tokens for testing.
//
// Thread-safety: FixedGenerator is safe for concurrent use via internal mutex.
type FixedGenerator struct {
	mu     sync.Mutex
	tokens []string
	idx    int
}

// NewFixedGenerator creates a generator that returns tokens in order.
//
// Example:
//
//	gen := NewFixedGenerator("_t1", "_t2")
//	gen.Generate() // "_t1"
//	gen.Generate() // "_t2"
//	gen.Generate() // panic: all tokens exhausted
func NewFixedGenerator(tokens ...string) *FixedGenerator {
	return &FixedGenerator{
		tokens: tokens,
		idx:    0,
	}
}

// Generate returns the next predetermined token.
//
// Panics if all tokens have been consumed, which catches a test that
// matched more entities than it expected.
func (g *FixedGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.idx >= len(g.tokens) {
		panic("FixedGenerator: all tokens exhausted")
	}
	token := g.tokens[g.idx]
	g.idx++
	return token
}
