package selection

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubstituteReplacesEveryOccurrence(t *testing.T) {
	doc := mustParse(t, `query { a: posts { Post } b: drafts { Post } me { User } }`)
	m := Scan(doc, newBlogRegistry(), NewFixedGenerator("_t1", "_t2"))

	calls := map[string]int{}
	out, err := Substitute(doc, m, func(entity string) (string, error) {
		calls[entity]++
		if entity == "Post" {
			return "id\ntitle", nil
		}
		return "name", nil
	})
	require.NoError(t, err)

	assert.Equal(t,
		normalize(t, `query { a: posts { id title } b: drafts { id title } me { name } }`),
		Print(out),
	)
	assert.Equal(t, map[string]int{"Post": 1, "User": 1}, calls, "one expansion per entity")
}

func TestSubstituteExpandError(t *testing.T) {
	doc := mustParse(t, `query { posts { Post } }`)
	m := Scan(doc, newBlogRegistry(), NewFixedGenerator("_t1"))
	boom := errors.New("boom")

	out, err := Substitute(doc, m, func(string) (string, error) { return "", boom })

	assert.Nil(t, out)
	assert.ErrorIs(t, err, boom)
}

func TestSubstituteMalformedSelection(t *testing.T) {
	doc := mustParse(t, `query { posts { Post } }`)
	m := Scan(doc, newBlogRegistry(), NewFixedGenerator("_t1"))

	out, err := Substitute(doc, m, func(string) (string, error) { return "id {", nil })

	assert.Nil(t, out, "no partial document on failure")
	require.Error(t, err)
	assert.True(t, IsMalformedSelection(err))

	var me *MalformedSelectionError
	require.True(t, errors.As(err, &me))
	assert.Contains(t, me.Text, "id {")
	assert.NotNil(t, errors.Unwrap(err))
	assert.Contains(t, err.Error(), "malformed selection")
}

func TestSubstituteNoPlaceholders(t *testing.T) {
	doc := mustParse(t, `query { posts { id } }`)
	m := Scan(doc, newBlogRegistry(), NewFixedGenerator())

	out, err := Substitute(doc, m, func(string) (string, error) {
		t.Fatal("expand must not be called")
		return "", nil
	})
	require.NoError(t, err)
	assert.Equal(t, Print(doc), Print(out))
}
