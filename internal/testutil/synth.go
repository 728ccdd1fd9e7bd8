package testutil

import (
	"sync"

	"github.com/roach88/dynsel/internal/ir"
	"github.com/roach88/dynsel/internal/selection"
)

// CountingSynthesizer wraps a Synthesizer and counts calls per entity.
//
// Used to observe cache hits: a hit must not reach the synthesizer.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type CountingSynthesizer struct {
	next selection.Synthesizer

	mu    sync.Mutex
	calls map[string]int
}

// NewCountingSynthesizer wraps next.
func NewCountingSynthesizer(next selection.Synthesizer) *CountingSynthesizer {
	return &CountingSynthesizer{
		next:  next,
		calls: make(map[string]int),
	}
}

// Synthesize counts the call and delegates.
//
// Implements selection.Synthesizer interface.
func (c *CountingSynthesizer) Synthesize(entity string, relations ir.Relations, conds ir.Conditions) (string, error) {
	c.mu.Lock()
	c.calls[entity]++
	c.mu.Unlock()

	return c.next.Synthesize(entity, relations, conds)
}

// Calls returns how often entity was synthesized.
func (c *CountingSynthesizer) Calls(entity string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[entity]
}

// Total returns the number of calls across all entities.
func (c *CountingSynthesizer) Total() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for _, v := range c.calls {
		n += v
	}
	return n
}

// Reset zeroes all counters.
func (c *CountingSynthesizer) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = make(map[string]int)
}
