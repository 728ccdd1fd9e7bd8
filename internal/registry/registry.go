package registry

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/roach88/dynsel/internal/ir"
)

// PredicateFunc decides a custom include/skip predicate from the merged
// conditions of one entity.
type PredicateFunc func(conds ir.Conditions) bool

// Registry maps public entity names to descriptors and internal type ids
// to their ordered field lists.
//
// A Registry is built once at wiring time and passed to the engine.
// Writes are serialized by a mutex so concurrent registration cannot
// corrupt the maps, but registration racing with expansion can still
// observe a half-registered entity; finish registering before expanding.
type Registry struct {
	mu         sync.RWMutex
	types      map[string]ir.EntityDescriptor
	fields     map[string][]ir.FieldDescriptor
	predicates map[string]PredicateFunc
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{
		types:      make(map[string]ir.EntityDescriptor),
		fields:     make(map[string][]ir.FieldDescriptor),
		predicates: make(map[string]PredicateFunc),
	}
}

// RegisterType records an entity under its public name.
// Re-registering a name silently replaces the previous descriptor.
func (r *Registry) RegisterType(name, typeID string, defaults ir.ExpansionOptions) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.types[name] = ir.EntityDescriptor{
		Name:    name,
		TypeID:  typeID,
		Default: defaults,
	}
}

// RegisterField appends a field to the type's field list, creating the
// list on first use.
func (r *Registry) RegisterField(typeID string, field ir.FieldDescriptor) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.fields[typeID] = append(r.fields[typeID], field)
}

// RegisterPredicate stores a custom predicate function under id.
// Fingerprints identify predicates by id only, so replacing the function
// behind an id does not invalidate cached expansions.
func (r *Registry) RegisterPredicate(id string, fn PredicateFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.predicates[id] = fn
}

// Register applies a compiled entity spec: the type, then its fields in
// declaration order.
func (r *Registry) Register(spec ir.EntitySpec) {
	r.RegisterType(spec.Entity.Name, spec.Entity.TypeID, spec.Entity.Default)
	for _, f := range spec.Fields {
		r.RegisterField(spec.Entity.TypeID, f)
	}
}

// LookupType returns the descriptor registered under a public name.
func (r *Registry) LookupType(name string) (ir.EntityDescriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	desc, ok := r.types[name]
	return desc, ok
}

// LookupFields returns the ordered fields of an internal type id.
// Returns an empty slice (not nil) when nothing is registered.
func (r *Registry) LookupFields(typeID string) []ir.FieldDescriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	fields := r.fields[typeID]
	out := make([]ir.FieldDescriptor, len(fields))
	copy(out, fields)
	return out
}

// Known reports whether typeID has fields registered or is the internal
// id of a registered type.
func (r *Registry) Known(typeID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, ok := r.fields[typeID]; ok {
		return true
	}
	for _, desc := range r.types {
		if desc.TypeID == typeID {
			return true
		}
	}
	return false
}

// Types returns all registered entity descriptors sorted by public name.
func (r *Registry) Types() []ir.EntityDescriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]ir.EntityDescriptor, 0, len(r.types))
	for _, desc := range r.types {
		out = append(out, desc)
	}
	slices.SortFunc(out, func(a, b ir.EntityDescriptor) int {
		return strings.Compare(a.Name, b.Name)
	})
	return out
}

// Evaluate resolves a predicate against conditions. A nil predicate
// yields dflt. Flag predicates read conditions[name] (missing is false).
// Custom predicates call the registered function.
func (r *Registry) Evaluate(p *ir.Predicate, conds ir.Conditions, dflt bool) (bool, error) {
	if p == nil {
		return dflt, nil
	}

	switch p.Kind {
	case ir.PredicateFlag:
		return conds[p.Name], nil
	case ir.PredicateCustom:
		r.mu.RLock()
		fn, ok := r.predicates[p.Name]
		r.mu.RUnlock()
		if !ok || fn == nil {
			return false, &UnknownPredicateError{ID: p.Name}
		}
		return fn(conds), nil
	default:
		return false, fmt.Errorf("evaluate predicate: invalid kind %q", p.Kind)
	}
}

// UnknownPredicateError reports a custom predicate id with no registered
// function.
type UnknownPredicateError struct {
	ID string
}

func (e *UnknownPredicateError) Error() string {
	return fmt.Sprintf("custom predicate %q is not registered", e.ID)
}

// AnyOf returns a predicate that is true when any of the named
// conditions is true.
func AnyOf(conditions ...string) PredicateFunc {
	names := append([]string(nil), conditions...)
	return func(conds ir.Conditions) bool {
		for _, name := range names {
			if conds[name] {
				return true
			}
		}
		return false
	}
}
