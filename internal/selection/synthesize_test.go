package selection

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/dynsel/internal/ir"
	"github.com/roach88/dynsel/internal/registry"
)

func TestSynthesize(t *testing.T) {
	s := NewSynthesizer(newBlogRegistry())

	tests := []struct {
		name      string
		entity    string
		relations ir.Relations
		conds     ir.Conditions
		want      string
	}{
		{
			name:   "scalars only",
			entity: "Post",
			want:   "id\ntitle",
		},
		{
			name:   "include flag on",
			entity: "Post",
			conds:  ir.Conditions{"withBody": true},
			want:   "id\ntitle\nbody",
		},
		{
			name:      "relation requested",
			entity:    "Post",
			relations: ir.Relations{"author": {}},
			want:      "id\ntitle\nauthor {\nid\nname\nemail\n}",
		},
		{
			name:      "nested relations",
			entity:    "Post",
			relations: ir.Relations{"comments": {"author": {}}},
			want:      "id\ntitle\ncomments {\ntext\nauthor {\nid\nname\nemail\n}\n}",
		},
		{
			name:      "nested relation not requested",
			entity:    "Post",
			relations: ir.Relations{"comments": {}},
			want:      "id\ntitle\ncomments {\ntext\n}",
		},
		{
			name:      "conditions apply at every depth",
			entity:    "Post",
			relations: ir.Relations{"author": {}},
			conds:     ir.Conditions{"anonymous": true},
			want:      "id\ntitle\nauthor {\nid\nname\n}",
		},
		{
			name:      "relation key on a scalar is ignored",
			entity:    "Post",
			relations: ir.Relations{"title": {"x": {}}},
			want:      "id\ntitle",
		},
		{
			name:      "declared order wins over relation order",
			entity:    "Post",
			relations: ir.Relations{"comments": {}, "author": {}},
			want:      "id\ntitle\nauthor {\nid\nname\nemail\n}\ncomments {\ntext\n}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Synthesize(tt.entity, tt.relations, tt.conds)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSynthesizeRelationNeverEmittedWithoutRequest(t *testing.T) {
	s := NewSynthesizer(newBlogRegistry())

	got, err := s.Synthesize("Post", ir.Relations{}, ir.Conditions{"withBody": true})
	require.NoError(t, err)
	assert.NotContains(t, got, "author")
	assert.NotContains(t, got, "comments")
}

func TestSynthesizeSkipBeatsInclude(t *testing.T) {
	reg := registry.New()
	reg.RegisterType("Doc", "Doc", ir.ExpansionOptions{})
	reg.RegisterField("Doc", ir.FieldDescriptor{Name: "id"})
	reg.RegisterField("Doc", ir.FieldDescriptor{Name: "secret", Include: ir.Flag("admin"), Skip: ir.Flag("audit")})

	s := NewSynthesizer(reg)

	tests := []struct {
		conds ir.Conditions
		want  string
	}{
		{ir.Conditions{"admin": true, "audit": true}, "id"},
		{ir.Conditions{"admin": true}, "id\nsecret"},
		{ir.Conditions{"audit": true}, "id"},
		{ir.Conditions{}, "id"},
	}

	for _, tt := range tests {
		got, err := s.Synthesize("Doc", nil, tt.conds)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "conditions %v", tt.conds)
	}
}

func TestSynthesizeCustomPredicate(t *testing.T) {
	reg := registry.New()
	reg.RegisterType("Doc", "Doc", ir.ExpansionOptions{})
	reg.RegisterField("Doc", ir.FieldDescriptor{Name: "id"})
	reg.RegisterField("Doc", ir.FieldDescriptor{Name: "draft", Include: ir.Custom("editor")})
	reg.RegisterPredicate("editor", func(c ir.Conditions) bool {
		return c["admin"] || c["author"]
	})

	s := NewSynthesizer(reg)

	got, err := s.Synthesize("Doc", nil, ir.Conditions{"author": true})
	require.NoError(t, err)
	assert.Equal(t, "id\ndraft", got)

	got, err = s.Synthesize("Doc", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "id", got)
}

func TestSynthesizeUnknownCustomPredicate(t *testing.T) {
	reg := registry.New()
	reg.RegisterType("Doc", "Doc", ir.ExpansionOptions{})
	reg.RegisterField("Doc", ir.FieldDescriptor{Name: "draft", Skip: ir.Custom("missing")})

	_, err := NewSynthesizer(reg).Synthesize("Doc", nil, nil)

	var upe *registry.UnknownPredicateError
	require.True(t, errors.As(err, &upe))
	assert.Equal(t, "missing", upe.ID)
}

func TestSynthesizeUnregisteredEntity(t *testing.T) {
	s := NewSynthesizer(newBlogRegistry())

	_, err := s.Synthesize("Ghost", nil, nil)
	require.Error(t, err)
	assert.True(t, IsUnregisteredEntity(err))

	var ue *UnregisteredEntityError
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, "Ghost", ue.Entity)
	assert.Empty(t, ue.TypeID)
}

func TestSynthesizeUnregisteredNestedType(t *testing.T) {
	reg := registry.New()
	reg.RegisterType("Post", "PostEntity", ir.ExpansionOptions{})
	reg.RegisterField("PostEntity", ir.FieldDescriptor{Name: "id"})
	reg.RegisterField("PostEntity", ir.FieldDescriptor{Name: "author", Ref: "GhostEntity"})

	s := NewSynthesizer(reg)

	got, err := s.Synthesize("Post", nil, nil)
	require.NoError(t, err, "unrequested relations are never resolved")
	assert.Equal(t, "id", got)

	_, err = s.Synthesize("Post", ir.Relations{"author": {}}, nil)
	var ue *UnregisteredEntityError
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, "Post", ue.Entity)
	assert.Equal(t, "GhostEntity", ue.TypeID)
	assert.Contains(t, err.Error(), "GhostEntity")
	assert.Equal(t, "id\nauthor {\n}", ue.Partial)
}

func TestSynthesizeUnregisteredDeepTypeKeepsSiblings(t *testing.T) {
	reg := registry.New()
	reg.RegisterType("Post", "PostEntity", ir.ExpansionOptions{})
	reg.RegisterField("PostEntity", ir.FieldDescriptor{Name: "title"})
	reg.RegisterField("PostEntity", ir.FieldDescriptor{Name: "author", Ref: "UserEntity"})
	reg.RegisterField("PostEntity", ir.FieldDescriptor{Name: "body"})
	reg.RegisterField("UserEntity", ir.FieldDescriptor{Name: "name"})
	reg.RegisterField("UserEntity", ir.FieldDescriptor{Name: "avatar", Ref: "ImageEntity"})

	_, err := NewSynthesizer(reg).Synthesize("Post", ir.Relations{"author": {"avatar": {}}}, nil)

	var ue *UnregisteredEntityError
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, "ImageEntity", ue.TypeID)
	assert.Equal(t, "title\nauthor {\nname\navatar {\n}\n}\nbody", ue.Partial)
}

func TestSynthesizeTypeWithoutFields(t *testing.T) {
	reg := registry.New()
	reg.RegisterType("Empty", "EmptyEntity", ir.ExpansionOptions{})

	got, err := NewSynthesizer(reg).Synthesize("Empty", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "", got)
}
