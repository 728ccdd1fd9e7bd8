// Package registry holds the entity registry consulted by the expansion
// engine.
//
// The registry maps a public entity name (the leaf field name written in
// skeleton queries) to a descriptor carrying the entity's internal type id
// and its default expansion options. Field lists are keyed by internal
// type id so several public names can share one shape, and nested
// relations point at internal type ids.
//
// Entities are registered three ways, all thin wrappers over the same
// data mutation:
//   - RegisterType / RegisterField directly
//   - RegisterStruct from `dynsel` struct tags
//   - compiled CUE entity specs (see internal/compiler) via Register
//
// The registry is read-only from the engine's point of view. Snapshot
// exposes its full state for cache fingerprints.
package registry
