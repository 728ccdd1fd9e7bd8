// Package store provides SQLite-backed key/value storage for the
// expansion cache.
//
// Each key holds one TEXT value. Writes are upserts and bump a logical
// write counter (seq) so Keys lists keys in write order:
//
//	ORDER BY seq ASC, key ASC COLLATE BINARY
//
// The database runs in WAL mode with a 5 second busy timeout so several
// dynsel processes can share one cache file. Schema changes are numbered
// migrations tracked in PRAGMA user_version.
//
// *Store satisfies cache.Store.
package store
