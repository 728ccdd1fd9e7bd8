package selection

import (
	"github.com/vektah/gqlparser/v2/ast"

	"github.com/roach88/dynsel/internal/ir"
)

// EntityLookup resolves public entity names. *registry.Registry
// implements it.
type EntityLookup interface {
	LookupType(name string) (ir.EntityDescriptor, bool)
}

// Scan marks entity leaves in doc, in place.
//
// Traversal is depth-first in document order: operations first, then
// fragment definitions. A field with a sub-selection is structural and is
// only descended into. A leaf field whose name is a registered entity is
// renamed to that entity's token; every leaf naming the same entity
// shares one token. Matched leaves lose their alias.
func Scan(doc *ast.QueryDocument, entities EntityLookup, gen TokenGenerator) *ir.PlaceholderMap {
	s := &scanner{
		entities:     entities,
		gen:          gen,
		placeholders: ir.NewPlaceholderMap(),
	}

	for _, op := range doc.Operations {
		s.selectionSet(op.SelectionSet)
	}
	for _, frag := range doc.Fragments {
		s.selectionSet(frag.SelectionSet)
	}

	return s.placeholders
}

type scanner struct {
	entities     EntityLookup
	gen          TokenGenerator
	placeholders *ir.PlaceholderMap
}

func (s *scanner) selectionSet(set ast.SelectionSet) {
	for _, sel := range set {
		switch sel := sel.(type) {
		case *ast.Field:
			s.field(sel)
		case *ast.InlineFragment:
			s.selectionSet(sel.SelectionSet)
		case *ast.FragmentSpread:
			// Definitions are scanned once at the document level.
		}
	}
}

func (s *scanner) field(f *ast.Field) {
	if len(f.SelectionSet) > 0 {
		s.selectionSet(f.SelectionSet)
		return
	}

	if _, ok := s.entities.LookupType(f.Name); !ok {
		return
	}

	token, ok := s.placeholders.TokenFor(f.Name)
	if !ok {
		token = s.gen.Generate()
		s.placeholders.Assign(token, f.Name)
	}

	f.Name = token
	f.Alias = token
}
