package selection

import (
	"strings"

	"github.com/vektah/gqlparser/v2/ast"

	"github.com/roach88/dynsel/internal/ir"
)

// ExpandFunc returns the selection text for one entity.
type ExpandFunc func(entity string) (string, error)

// Substitute prints doc, replaces every occurrence of each placeholder
// token with the expansion of its entity, and parses the result.
//
// Tokens are processed in scan order. Replacement is textual, not an
// AST rewrite. If the final parse fails the error is a
// *MalformedSelectionError; no partially substituted document is ever
// returned.
func Substitute(doc *ast.QueryDocument, placeholders *ir.PlaceholderMap, expand ExpandFunc) (*ast.QueryDocument, error) {
	text := Print(doc)

	for _, token := range placeholders.Tokens() {
		entity, _ := placeholders.Entity(token)
		sel, err := expand(entity)
		if err != nil {
			return nil, err
		}
		text = strings.ReplaceAll(text, token, sel)
	}

	out, err := Parse(text)
	if err != nil {
		return nil, &MalformedSelectionError{Text: text, Err: err}
	}
	return out, nil
}
