// Package harness provides conformance testing for entity expansion.
//
// A scenario compiles CUE entity files into a fresh registry, then runs a
// sequence of Select calls against one engine and one in-memory cache,
// checking each output.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	entities:
//	  - ../entities/blog.cue
//	predicates:
//	  editor: [admin, author]   # custom predicate: true if any flag is set
//	cache: true                 # initial cache state (default off)
//	strict: false               # fail on unregistered entities
//	steps:
//	  - query: "query { posts { Post } }"
//	    options:
//	      relations: { author: {} }
//	      conditions: { withBody: true }
//	      entities: { User: { conditions: { anonymous: true } } }
//	    expect:
//	      document: "query { posts { id title body author { id name } } }"
//	      contains: [title]
//	      not_contains: [email]
//	      tokens: 1
//	      cache: miss
//
// # Expectations
//
//   - document: the output equals this text after both are parsed and printed
//   - contains / not_contains: substrings of the printed output
//   - error: malformed, unregistered, predicate or parse
//   - tokens: number of placeholder tokens issued by the step
//   - cache: hit or miss (a hit never reaches the synthesizer)
//   - cache_entries: number of entries in the cache after the step
//   - synthesized: number of synthesizer calls made by the step
//
// # Deterministic Testing
//
// Tokens come from testutil.SequenceGenerator and the synthesized text of
// every entity is recorded per step, so RunWithGolden can compare runs
// against golden files byte for byte.
package harness
