// Package ir provides the shared data model for dynsel.
//
// This package contains type definitions and the canonical serialization
// used for content-addressed cache keys. All other internal packages
// import ir; ir imports nothing internal.
//
// Key design constraints:
//   - Descriptors are immutable after registration
//   - Predicates are tagged identifiers, never closures, so they serialize
//     to stable text for fingerprints
//   - Field order is declaration order and is never re-sorted
//   - Map-shaped data is serialized with RFC 8785 key ordering
package ir
