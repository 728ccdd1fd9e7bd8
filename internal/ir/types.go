package ir

import "fmt"

// EntityDescriptor represents a registered entity type.
type EntityDescriptor struct {
	Name    string           `json:"name" yaml:"name"`       // Public name matched against leaf fields
	TypeID  string           `json:"type_id" yaml:"type_id"` // Internal type identifier, keys the field list
	Default ExpansionOptions `json:"default" yaml:"default"` // Registry-level default options
}

// FieldDescriptor represents one declared field of an entity.
type FieldDescriptor struct {
	Name    string     `json:"name" yaml:"name"`                           // Property name emitted in output
	Ref     string     `json:"ref,omitempty" yaml:"ref,omitempty"`         // Internal type id of nested entity; empty for scalars
	Include *Predicate `json:"include,omitempty" yaml:"include,omitempty"` // nil means always included
	Skip    *Predicate `json:"skip,omitempty" yaml:"skip,omitempty"`       // nil means never skipped
}

// IsRelation reports whether the field references a nested entity.
func (f FieldDescriptor) IsRelation() bool {
	return f.Ref != ""
}

// PredicateKind distinguishes flag lookups from registered functions.
type PredicateKind string

const (
	// PredicateFlag looks Name up in the call's conditions.
	PredicateFlag PredicateKind = "flag"

	// PredicateCustom evaluates the function registered under Name.
	PredicateCustom PredicateKind = "custom"
)

// Predicate is a tagged include/skip rule.
//
// Predicates are identified by name, not by function value, so two
// registries with the same predicates produce the same fingerprint.
type Predicate struct {
	Kind PredicateKind `json:"kind" yaml:"kind"`
	Name string        `json:"name" yaml:"name"`
}

// Flag returns a predicate that resolves to conditions[name].
func Flag(name string) *Predicate {
	return &Predicate{Kind: PredicateFlag, Name: name}
}

// Custom returns a predicate that resolves through the registered
// function with the given id.
func Custom(id string) *Predicate {
	return &Predicate{Kind: PredicateCustom, Name: id}
}

// String renders the predicate as kind:name.
func (p *Predicate) String() string {
	if p == nil {
		return "<none>"
	}
	return fmt.Sprintf("%s:%s", p.Kind, p.Name)
}

// Validate checks that the predicate is well formed.
func (p *Predicate) Validate() error {
	if p == nil {
		return nil
	}
	switch p.Kind {
	case PredicateFlag, PredicateCustom:
	default:
		return fmt.Errorf("invalid predicate kind %q: must be %q or %q", p.Kind, PredicateFlag, PredicateCustom)
	}
	if p.Name == "" {
		return fmt.Errorf("%s predicate requires a name", p.Kind)
	}
	return nil
}

// EntitySpec is a compiled entity definition ready for registration.
// Produced by the CUE compiler and by struct tag reflection.
type EntitySpec struct {
	Entity EntityDescriptor  `json:"entity"`
	Fields []FieldDescriptor `json:"fields"`
}

// PlaceholderMap maps generated tokens to entity public names for one
// expansion call. Iteration order is the order tokens were assigned.
type PlaceholderMap struct {
	tokens  []string
	byToken map[string]string
	byName  map[string]string
}

// NewPlaceholderMap returns an empty map.
func NewPlaceholderMap() *PlaceholderMap {
	return &PlaceholderMap{
		byToken: make(map[string]string),
		byName:  make(map[string]string),
	}
}

// TokenFor returns the token already assigned to entity, if any.
func (m *PlaceholderMap) TokenFor(entity string) (string, bool) {
	tok, ok := m.byName[entity]
	return tok, ok
}

// Assign records token as the placeholder for entity.
func (m *PlaceholderMap) Assign(token, entity string) {
	if _, ok := m.byToken[token]; !ok {
		m.tokens = append(m.tokens, token)
	}
	m.byToken[token] = entity
	m.byName[entity] = token
}

// Entity returns the entity name for token.
func (m *PlaceholderMap) Entity(token string) (string, bool) {
	name, ok := m.byToken[token]
	return name, ok
}

// Tokens returns tokens in assignment order.
func (m *PlaceholderMap) Tokens() []string {
	out := make([]string, len(m.tokens))
	copy(out, m.tokens)
	return out
}

// Len returns the number of distinct tokens.
func (m *PlaceholderMap) Len() int {
	return len(m.tokens)
}
