package selection

import (
	"strings"

	"github.com/roach88/dynsel/internal/ir"
	"github.com/roach88/dynsel/internal/registry"
)

// Synthesizer builds the literal selection text for one entity.
type Synthesizer interface {
	Synthesize(entity string, relations ir.Relations, conds ir.Conditions) (string, error)
}

// RegistrySynthesizer synthesizes selections from a registry.
type RegistrySynthesizer struct {
	reg *registry.Registry
}

// NewSynthesizer returns a Synthesizer reading from reg.
func NewSynthesizer(reg *registry.Registry) *RegistrySynthesizer {
	return &RegistrySynthesizer{reg: reg}
}

// Synthesize returns the selection of entity, one line per field, in
// declaration order.
//
// A field is emitted when its include predicate holds (absent means
// true) and its skip predicate does not (absent means false). Scalars
// emit their name. Relations emit "name {", the nested selection and "}",
// but only when relations has a key equal to the field name; the nested
// call gets the relation set under that key and the same conditions.
//
// An unknown public name yields an *UnregisteredEntityError. An unknown
// nested type id also yields one, with Partial holding the selection
// built with that relation's body left empty; sibling fields are kept.
// A registered type with no fields yields "".
func (s *RegistrySynthesizer) Synthesize(entity string, relations ir.Relations, conds ir.Conditions) (string, error) {
	desc, ok := s.reg.LookupType(entity)
	if !ok {
		return "", &UnregisteredEntityError{Entity: entity}
	}

	var missing *UnregisteredEntityError
	lines, err := s.synthesizeType(entity, desc.TypeID, relations, conds, &missing)
	if err != nil {
		return "", err
	}
	text := strings.Join(lines, "\n")
	if missing != nil {
		missing.Partial = text
		return "", missing
	}
	return text, nil
}

// synthesizeType returns the lines for typeID. The first unknown type id
// met is stored in *missing and contributes no lines.
func (s *RegistrySynthesizer) synthesizeType(entity, typeID string, relations ir.Relations, conds ir.Conditions, missing **UnregisteredEntityError) ([]string, error) {
	if !s.reg.Known(typeID) {
		if *missing == nil {
			*missing = &UnregisteredEntityError{Entity: entity, TypeID: typeID}
		}
		return nil, nil
	}

	var lines []string
	for _, f := range s.reg.LookupFields(typeID) {
		include, err := s.reg.Evaluate(f.Include, conds, true)
		if err != nil {
			return nil, err
		}
		skip, err := s.reg.Evaluate(f.Skip, conds, false)
		if err != nil {
			return nil, err
		}
		if !include || skip {
			continue
		}

		if !f.IsRelation() {
			lines = append(lines, f.Name)
			continue
		}

		nested, ok := relations.Lookup(f.Name)
		if !ok {
			continue
		}
		inner, err := s.synthesizeType(entity, f.Ref, nested, conds, missing)
		if err != nil {
			return nil, err
		}
		lines = append(lines, f.Name+" {")
		lines = append(lines, inner...)
		lines = append(lines, "}")
	}
	return lines, nil
}
