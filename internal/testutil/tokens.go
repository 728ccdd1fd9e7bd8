package testutil

import (
	"strconv"
	"sync"
)

// SequenceGenerator produces placeholder tokens from a counter:
// prefix+"1_", prefix+"2_", ... The trailing underscore keeps "_tok1_"
// out of "_tok10_", since tokens are replaced textually.
//
// Unlike selection.FixedGenerator it never runs out, and it can be reset
// so the same scenario produces the same tokens on every run.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type SequenceGenerator struct {
	mu     sync.Mutex
	prefix string
	seq    int
}

// NewSequenceGenerator creates a generator starting at 1.
// If prefix is empty, "_tok" is used so tokens are valid GraphQL names.
func NewSequenceGenerator(prefix string) *SequenceGenerator {
	if prefix == "" {
		prefix = "_tok"
	}
	return &SequenceGenerator{prefix: prefix}
}

// Generate returns the next token.
//
// Implements selection.TokenGenerator interface.
func (g *SequenceGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq++
	return g.prefix + strconv.Itoa(g.seq) + "_"
}

// Issued returns how many tokens have been generated since the last reset.
func (g *SequenceGenerator) Issued() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.seq
}

// Reset restarts the sequence. The next token is prefix+"1_".
func (g *SequenceGenerator) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq = 0
}
