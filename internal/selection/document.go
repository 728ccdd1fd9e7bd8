package selection

import (
	"bytes"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/formatter"
	"github.com/vektah/gqlparser/v2/parser"
)

// Parse parses query text into a document. Parser errors are returned
// as-is.
func Parse(text string) (*ast.QueryDocument, error) {
	doc, err := parser.ParseQuery(&ast.Source{Input: text})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// Print renders a document as query text.
func Print(doc *ast.QueryDocument) string {
	var buf bytes.Buffer
	formatter.NewFormatter(&buf).FormatQueryDocument(doc)
	return buf.String()
}

// clone deep-copies a document by printing and re-parsing it, so the
// scanner can rename leaves without touching the caller's document.
func clone(doc *ast.QueryDocument) (*ast.QueryDocument, string, error) {
	text := Print(doc)
	cp, err := Parse(text)
	if err != nil {
		return nil, "", err
	}
	return cp, text, nil
}
