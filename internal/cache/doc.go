// Package cache memoizes whole expansions.
//
// An entry is addressed by a two-level Fingerprint: the printed input
// document (outer key) and the canonical JSON of the call options followed
// by the canonical JSON of the registry snapshot (inner key). All entries
// live in a single named slot of a Store, read and written wholesale.
//
// Entries are never invalidated. Correctness rests on the fingerprint
// covering every input that can change an expansion.
package cache
