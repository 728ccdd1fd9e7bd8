package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
)

// SlotKey names the single store slot holding every entry.
const SlotKey = "dynsel-cache"

// entries is the decoded slot: outer key -> inner key -> final text.
type entries map[string]map[string]string

// Cache stores final document text by Fingerprint.
//
// The enable flag is checked by the engine on every call. When it is off
// the engine clears the slot instead of skipping the cache, so nothing
// written earlier can be read after caching is turned back on.
type Cache struct {
	store   Store
	enabled atomic.Bool

	// mu serializes read-modify-write of the slot within this process.
	// Other processes sharing the store race with last-write-wins.
	mu sync.Mutex
}

// New creates a Cache over s.
func New(s Store, enabled bool) *Cache {
	c := &Cache{store: s}
	c.enabled.Store(enabled)
	return c
}

// Enabled reports whether caching is on.
func (c *Cache) Enabled() bool {
	return c.enabled.Load()
}

// SetEnabled turns caching on or off.
func (c *Cache) SetEnabled(enabled bool) {
	c.enabled.Store(enabled)
}

// Get returns the cached text for fp. A missing slot or entry is a miss
// with a nil error; an undecodable slot is a miss with an error so the
// caller can log it.
func (c *Cache) Get(ctx context.Context, fp Fingerprint) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	all, err := c.load(ctx)
	if err != nil {
		return "", false, err
	}

	text, ok := all[fp.Outer][fp.Inner]
	return text, ok, nil
}

// Put records text under fp. The whole slot is rewritten. A slot that
// fails to decode is replaced rather than repaired.
func (c *Cache) Put(ctx context.Context, fp Fingerprint, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	all, err := c.load(ctx)
	if err != nil {
		all = entries{}
	}

	inner, ok := all[fp.Outer]
	if !ok {
		inner = make(map[string]string)
		all[fp.Outer] = inner
	}
	inner[fp.Inner] = text

	// encoding/json rather than the canonical encoder: values are document
	// text and must round-trip byte for byte, without NFC normalization.
	data, err := json.Marshal(all)
	if err != nil {
		return fmt.Errorf("encode cache slot: %w", err)
	}
	if err := c.store.Set(ctx, SlotKey, string(data)); err != nil {
		return fmt.Errorf("write cache slot: %w", err)
	}
	return nil
}

// Clear removes the slot and with it every entry.
func (c *Cache) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.store.Remove(ctx, SlotKey); err != nil {
		return fmt.Errorf("clear cache slot: %w", err)
	}
	return nil
}

// Len returns the number of cached entries across all outer keys.
func (c *Cache) Len(ctx context.Context) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	all, err := c.load(ctx)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, inner := range all {
		n += len(inner)
	}
	return n, nil
}

func (c *Cache) load(ctx context.Context) (entries, error) {
	raw, ok, err := c.store.Get(ctx, SlotKey)
	if err != nil {
		return nil, fmt.Errorf("read cache slot: %w", err)
	}
	if !ok || raw == "" {
		return entries{}, nil
	}

	var all entries
	if err := json.Unmarshal([]byte(raw), &all); err != nil {
		return nil, fmt.Errorf("decode cache slot: %w", err)
	}
	if all == nil {
		all = entries{}
	}
	return all, nil
}
