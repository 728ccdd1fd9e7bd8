// Package selection expands entity placeholders in GraphQL documents.
//
// A skeleton document names registered entities as leaf fields:
//
//	query { posts { Post } }
//
// Select rewrites every such leaf into the entity's synthesized field
// selection, pruned by the call's relations and conditions:
//
//	query { posts { id title author { name } } }
//
// The pipeline is Scan (mark matched leaves with tokens), Synthesize
// (build selection text per entity), and Substitute (replace tokens in
// the printed document and re-parse). Engine ties them together with an
// optional expansion cache.
//
// Thread-safety: an Engine may be shared across goroutines as long as the
// registry is not modified while calls are in flight.
package selection
