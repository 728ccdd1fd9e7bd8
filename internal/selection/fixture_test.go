package selection

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vektah/gqlparser/v2/ast"

	"github.com/roach88/dynsel/internal/ir"
	"github.com/roach88/dynsel/internal/registry"
)

// newBlogRegistry registers Post -> author/comments, Comment -> author,
// and User.
func newBlogRegistry() *registry.Registry {
	reg := registry.New()

	reg.RegisterType("Post", "PostEntity", ir.ExpansionOptions{})
	reg.RegisterField("PostEntity", ir.FieldDescriptor{Name: "id"})
	reg.RegisterField("PostEntity", ir.FieldDescriptor{Name: "title"})
	reg.RegisterField("PostEntity", ir.FieldDescriptor{Name: "body", Include: ir.Flag("withBody")})
	reg.RegisterField("PostEntity", ir.FieldDescriptor{Name: "author", Ref: "UserEntity"})
	reg.RegisterField("PostEntity", ir.FieldDescriptor{Name: "comments", Ref: "CommentEntity"})

	reg.RegisterType("Comment", "CommentEntity", ir.ExpansionOptions{})
	reg.RegisterField("CommentEntity", ir.FieldDescriptor{Name: "text"})
	reg.RegisterField("CommentEntity", ir.FieldDescriptor{Name: "author", Ref: "UserEntity"})

	reg.RegisterType("User", "UserEntity", ir.ExpansionOptions{})
	reg.RegisterField("UserEntity", ir.FieldDescriptor{Name: "id"})
	reg.RegisterField("UserEntity", ir.FieldDescriptor{Name: "name"})
	reg.RegisterField("UserEntity", ir.FieldDescriptor{Name: "email", Skip: ir.Flag("anonymous")})

	return reg
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func mustParse(t *testing.T, text string) *ast.QueryDocument {
	t.Helper()
	doc, err := Parse(text)
	require.NoError(t, err)
	return doc
}

// normalize prints text through the parser and formatter so expectations
// can be written compactly.
func normalize(t *testing.T, text string) string {
	t.Helper()
	return Print(mustParse(t, text))
}
