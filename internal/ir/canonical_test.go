package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonicalBasic(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected string
	}{
		{"string", String("hello"), `"hello"`},
		{"empty string", String(""), `""`},
		{"int", Int(42), "42"},
		{"negative int", Int(-100), "-100"},
		{"bool true", Bool(true), "true"},
		{"bool false", Bool(false), "false"},
		{"empty list", List{}, "[]"},
		{"empty object", Object{}, "{}"},
		{"list of ints", List{Int(1), Int(2), Int(3)}, "[1,2,3]"},
		{"simple object", Object{"a": Int(1)}, `{"a":1}`},
		{"go string", "plain", `"plain"`},
		{"go bool", true, "true"},
		{"go int", 7, "7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := MarshalCanonical(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(result))
		})
	}
}

func TestMarshalCanonicalSortedKeys(t *testing.T) {
	obj := Object{
		"zebra": Int(1),
		"apple": Int(2),
		"mango": Int(3),
	}

	result, err := MarshalCanonical(obj)
	require.NoError(t, err)
	assert.Equal(t, `{"apple":2,"mango":3,"zebra":1}`, string(result))
}

func TestMarshalCanonicalNestedSortedKeys(t *testing.T) {
	obj := Object{
		"outer": Object{
			"z": Bool(true),
			"a": Bool(false),
		},
		"first": List{String("b"), String("a")},
	}

	result, err := MarshalCanonical(obj)
	require.NoError(t, err)
	// Lists keep their order, objects are sorted.
	assert.Equal(t, `{"first":["b","a"],"outer":{"a":false,"z":true}}`, string(result))
}

func TestMarshalCanonicalUTF16Ordering(t *testing.T) {
	// U+1F600 encodes as surrogates 0xD83D 0xDE00 and sorts before U+FF61
	// in UTF-16, while UTF-8 byte order would put it after.
	obj := Object{
		"\uFF61":     Int(1),
		"\U0001F600": Int(2),
	}

	result, err := MarshalCanonical(obj)
	require.NoError(t, err)
	assert.Equal(t, "{\"\U0001F600\":2,\"\uFF61\":1}", string(result))
}

func TestMarshalCanonicalNoHTMLEscape(t *testing.T) {
	result, err := MarshalCanonical(String("<a> & <b>"))
	require.NoError(t, err)
	assert.Equal(t, `"<a> & <b>"`, string(result))
}

func TestMarshalCanonicalRejectsFloats(t *testing.T) {
	_, err := MarshalCanonical(3.14)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "floats are forbidden")
}

func TestMarshalCanonicalRejectsNull(t *testing.T) {
	_, err := MarshalCanonical(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "null is forbidden")

	_, err = MarshalCanonical(Object{"a": nil})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `value for key "a"`)
}

func TestMarshalCanonicalRejectsUnsupported(t *testing.T) {
	_, err := MarshalCanonical(struct{}{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported type")
}

func TestMarshalCanonicalNFCNormalization(t *testing.T) {
	// "e" + combining acute accent normalizes to precomposed U+00E9.
	decomposed, err := MarshalCanonical(String("cafe\u0301"))
	require.NoError(t, err)
	composed, err := MarshalCanonical(String("caf\u00e9"))
	require.NoError(t, err)

	assert.Equal(t, string(composed), string(decomposed))
}

func TestMarshalExactKeepsNormalizationForm(t *testing.T) {
	obj := Object{"cafe\u0301": Bool(true)}

	exact, err := MarshalExact(obj)
	require.NoError(t, err)
	assert.Equal(t, "{\"cafe\u0301\":true}", string(exact))

	composed, err := MarshalExact(Object{"caf\u00e9": Bool(true)})
	require.NoError(t, err)
	assert.NotEqual(t, string(composed), string(exact))

	canonical, err := MarshalCanonical(obj)
	require.NoError(t, err)
	assert.Equal(t, string(composed), string(canonical), "canonical form still normalizes")
}

func TestMarshalCanonicalStringEscaping(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"newline", "a\nb", `"a\nb"`},
		{"tab", "a\tb", `"a\tb"`},
		{"quote", `say "hi"`, `"say \"hi\""`},
		{"backslash", `a\b`, `"a\\b"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := MarshalCanonical(String(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(result))
		})
	}
}

func TestMarshalCanonicalLineSeparatorsNotEscaped(t *testing.T) {
	// RFC 8785: U+2028 and U+2029 are emitted literally.
	result, err := MarshalCanonical(String("a\u2028b\u2029c"))
	require.NoError(t, err)
	assert.Equal(t, "\"a\u2028b\u2029c\"", string(result))
	assert.NotContains(t, string(result), `\u2028`)
}

func TestMarshalCanonicalLiteralBackslashU2028(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "literal backslash-u2028 text",
			input:    `the escape sequence is \u2028`,
			expected: `"the escape sequence is \\u2028"`,
		},
		{
			name:     "mixed literal and actual",
			input:    "literal \\u2028 and actual \u2028",
			expected: "\"literal \\\\u2028 and actual \u2028\"",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := MarshalCanonical(String(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(result))
		})
	}
}

func TestMarshalCanonicalIdempotency(t *testing.T) {
	obj := Object{
		"relations":  Object{"author": Object{}, "comments": Object{"author": Object{}}},
		"conditions": Object{"draft": Bool(false), "admin": Bool(true)},
	}

	first, err := MarshalCanonical(obj)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := MarshalCanonical(obj)
		require.NoError(t, err)
		assert.Equal(t, string(first), string(again))
	}
}
