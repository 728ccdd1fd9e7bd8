package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/dynsel/internal/ir"
)

func TestValidateEntitySpecValid(t *testing.T) {
	spec := &ir.EntitySpec{
		Entity: ir.EntityDescriptor{Name: "Post", TypeID: "PostEntity"},
		Fields: []ir.FieldDescriptor{
			{Name: "id"},
			{Name: "_internal", Include: ir.Flag("admin")},
			{Name: "author", Ref: "UserEntity", Skip: ir.Custom("anon")},
		},
	}

	assert.Empty(t, Validate(spec))
}

func TestValidateEntitySpecErrors(t *testing.T) {
	tests := []struct {
		name     string
		spec     ir.EntitySpec
		wantCode string
	}{
		{
			name: "entity name with dash",
			spec: ir.EntitySpec{
				Entity: ir.EntityDescriptor{Name: "blog-post", TypeID: "P"},
				Fields: []ir.FieldDescriptor{{Name: "id"}},
			},
			wantCode: ErrInvalidEntityName,
		},
		{
			name: "empty type id",
			spec: ir.EntitySpec{
				Entity: ir.EntityDescriptor{Name: "Post"},
				Fields: []ir.FieldDescriptor{{Name: "id"}},
			},
			wantCode: ErrEmptyTypeID,
		},
		{
			name: "no fields",
			spec: ir.EntitySpec{
				Entity: ir.EntityDescriptor{Name: "Post", TypeID: "P"},
			},
			wantCode: ErrEntityNoFields,
		},
		{
			name: "field name with braces",
			spec: ir.EntitySpec{
				Entity: ir.EntityDescriptor{Name: "Post", TypeID: "P"},
				Fields: []ir.FieldDescriptor{{Name: "id }"}},
			},
			wantCode: ErrInvalidFieldName,
		},
		{
			name: "field name starting with digit",
			spec: ir.EntitySpec{
				Entity: ir.EntityDescriptor{Name: "Post", TypeID: "P"},
				Fields: []ir.FieldDescriptor{{Name: "1st"}},
			},
			wantCode: ErrInvalidFieldName,
		},
		{
			name: "duplicate field",
			spec: ir.EntitySpec{
				Entity: ir.EntityDescriptor{Name: "Post", TypeID: "P"},
				Fields: []ir.FieldDescriptor{{Name: "id"}, {Name: "id"}},
			},
			wantCode: ErrDuplicateField,
		},
		{
			name: "bad predicate kind",
			spec: ir.EntitySpec{
				Entity: ir.EntityDescriptor{Name: "Post", TypeID: "P"},
				Fields: []ir.FieldDescriptor{{Name: "id", Include: &ir.Predicate{Kind: "lambda", Name: "x"}}},
			},
			wantCode: ErrInvalidPredicate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := Validate(&tt.spec)
			require.Len(t, errs, 1, "%v", errs)
			assert.Equal(t, tt.wantCode, errs[0].Code)
			assert.Contains(t, errs[0].Error(), tt.wantCode)
		})
	}
}

func TestValidateReportsAllErrors(t *testing.T) {
	spec := &ir.EntitySpec{
		Entity: ir.EntityDescriptor{Name: "bad name"},
		Fields: []ir.FieldDescriptor{{Name: "a"}, {Name: "a"}, {Name: ""}},
	}

	errs := Validate(spec)
	assert.Len(t, errs, 4)
}
