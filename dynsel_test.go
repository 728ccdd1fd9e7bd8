package dynsel_test

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/dynsel"
)

const blogCUE = `
entity: {
	Post: {
		type: "PostEntity"
		fields: ["id", "title", {name: "author", ref: "UserEntity"}]
	}
	User: {
		type: "UserEntity"
		fields: ["id", "name", {name: "email", skip: {custom: "private"}}]
	}
}
predicate: private: anyOf: ["anonymous"]
`

func normalize(t *testing.T, text string) string {
	t.Helper()
	doc, err := dynsel.Parse(text)
	require.NoError(t, err)
	return dynsel.Print(doc)
}

func TestRegisterCUEAndSelect(t *testing.T) {
	reg := dynsel.NewRegistry()
	require.NoError(t, dynsel.RegisterCUE(reg, []byte(blogCUE)))

	eng := dynsel.New(reg)
	out, err := eng.SelectString(context.Background(), "{ posts { Post } }", &dynsel.CallOptions{
		Relations:  dynsel.Relations{"author": {}},
		Conditions: dynsel.Conditions{"anonymous": true},
	})
	require.NoError(t, err)
	assert.Equal(t, normalize(t, "{ posts { id title author { id name } } }"), out)
}

func TestRegisterCUEErrorsRegisterNothing(t *testing.T) {
	reg := dynsel.NewRegistry()
	err := dynsel.RegisterCUE(reg, []byte(`
entity: {
	Good: fields: ["id"]
	Bad: fields: ["id", "id"]
}
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate field")
	assert.Empty(t, reg.Types())
}

func TestRegisterCUESyntaxError(t *testing.T) {
	err := dynsel.RegisterCUE(dynsel.NewRegistry(), []byte(`entity: {`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "compile entities")
}

func TestSQLiteBackedCache(t *testing.T) {
	st, err := dynsel.OpenSQLiteStore(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	defer st.Close()

	reg := dynsel.NewRegistry()
	require.NoError(t, dynsel.RegisterCUE(reg, []byte(blogCUE)))

	c := dynsel.NewCache(st, true)
	eng := dynsel.New(reg, dynsel.WithCache(c))

	ctx := context.Background()
	first, err := eng.SelectString(ctx, "{ posts { Post } }", nil)
	require.NoError(t, err)
	second, err := eng.SelectString(ctx, "{ posts { Post } }", nil)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	n, err := c.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestDecodeCallOptions(t *testing.T) {
	opts, err := dynsel.DecodeCallOptions([]byte("relations:\n  author: {}\n"))
	require.NoError(t, err)
	_, ok := opts.Relations.Lookup("author")
	assert.True(t, ok)

	_, err = dynsel.DecodeCallOptions([]byte("relation: {}\n"))
	require.Error(t, err)
}

func TestStrictEntities(t *testing.T) {
	reg := dynsel.NewRegistry()
	reg.RegisterType("Post", "PostEntity", dynsel.ExpansionOptions{})
	reg.RegisterField("PostEntity", dynsel.FieldDescriptor{Name: "owner", Ref: "Missing"})

	opts := &dynsel.CallOptions{Relations: dynsel.Relations{"owner": {}}}

	_, err := dynsel.New(reg, dynsel.WithStrictEntities(true)).SelectString(context.Background(), "{ p { id Post } }", opts)
	require.Error(t, err)
	assert.True(t, dynsel.IsUnregisteredEntity(err))

	_, err = dynsel.New(reg).SelectString(context.Background(), "{ p { id Post } }", opts)
	require.Error(t, err)
	assert.True(t, dynsel.IsMalformedSelection(err))

	out, err := dynsel.New(reg).SelectString(context.Background(), "{ p { id Post } }", nil)
	require.NoError(t, err)
	assert.False(t, strings.Contains(out, "owner"))
}
