// Package dynsel expands entity placeholders in GraphQL documents into
// field selections.
//
// Entities are registered once, either through the Registry API, from
// tagged Go structs, or from CUE declarations. An Engine then rewrites
// every leaf of a query that names a registered entity into that
// entity's fields, pruned by include/skip predicates and extended by the
// relations the caller asks for.
//
//	reg := dynsel.NewRegistry()
//	if err := dynsel.RegisterCUE(reg, src); err != nil { ... }
//	eng := dynsel.New(reg, dynsel.WithCache(dynsel.NewCache(dynsel.NewMemoryStore(), true)))
//	out, err := eng.SelectString(ctx, "{ posts { Post } }", &dynsel.CallOptions{
//		Relations: dynsel.Relations{"author": {}},
//	})
package dynsel

import (
	"errors"
	"fmt"

	"cuelang.org/go/cue/cuecontext"

	"github.com/roach88/dynsel/internal/cache"
	"github.com/roach88/dynsel/internal/compiler"
	"github.com/roach88/dynsel/internal/ir"
	"github.com/roach88/dynsel/internal/registry"
	"github.com/roach88/dynsel/internal/selection"
	"github.com/roach88/dynsel/internal/store"
)

type (
	Registry         = registry.Registry
	PredicateFunc    = registry.PredicateFunc
	Engine           = selection.Engine
	Option           = selection.Option
	Synthesizer      = selection.Synthesizer
	TokenGenerator   = selection.TokenGenerator
	CallOptions      = ir.CallOptions
	ExpansionOptions = ir.ExpansionOptions
	Relations        = ir.Relations
	Conditions       = ir.Conditions
	FieldDescriptor  = ir.FieldDescriptor
	Predicate        = ir.Predicate
	Cache            = cache.Cache
	Store            = cache.Store
	Fingerprint      = cache.Fingerprint

	MalformedSelectionError = selection.MalformedSelectionError
	UnregisteredEntityError = selection.UnregisteredEntityError
	UnknownPredicateError   = registry.UnknownPredicateError
)

var (
	WithCache          = selection.WithCache
	WithLogger         = selection.WithLogger
	WithTokenGenerator = selection.WithTokenGenerator
	WithSynthesizer    = selection.WithSynthesizer
	WithStrictEntities = selection.WithStrictEntities
	WithRecorder       = selection.WithRecorder

	IsMalformedSelection = selection.IsMalformedSelection
	IsUnregisteredEntity = selection.IsUnregisteredEntity

	Flag   = ir.Flag
	Custom = ir.Custom
	AnyOf  = registry.AnyOf

	Parse = selection.Parse
	Print = selection.Print
)

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return registry.New()
}

// New creates an engine over reg.
func New(reg *Registry, opts ...Option) *Engine {
	return selection.New(reg, opts...)
}

// NewCache creates an expansion cache over s.
func NewCache(s Store, enabled bool) *Cache {
	return cache.New(s, enabled)
}

// NewMemoryStore returns a process-local cache store.
func NewMemoryStore() Store {
	return cache.NewMemoryStore()
}

// OpenSQLiteStore opens (or creates) a SQLite-backed cache store. The
// caller closes it.
func OpenSQLiteStore(path string) (*store.Store, error) {
	return store.Open(path)
}

// DecodeCallOptions parses call options from YAML or JSON.
func DecodeCallOptions(data []byte) (*CallOptions, error) {
	return ir.DecodeCallOptions(data)
}

// RegisterCUE compiles CUE entity and predicate declarations and
// registers them in reg. Nothing is registered if any declaration fails.
func RegisterCUE(reg *Registry, src []byte) error {
	v := cuecontext.New().CompileBytes(src)
	if err := v.Err(); err != nil {
		return fmt.Errorf("compile entities: %w", err)
	}

	specs, errs := compiler.CompileEntities(v)
	preds, predErrs := compiler.CompilePredicates(v)
	if all := append(errs, predErrs...); len(all) > 0 {
		return fmt.Errorf("compile entities: %w", errors.Join(all...))
	}

	compiler.Apply(reg, specs)
	compiler.ApplyPredicates(reg, preds)
	return nil
}
