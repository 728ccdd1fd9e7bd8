package compiler

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/dynsel/internal/ir"
)

// CompileEntity parses a CUE value into an EntitySpec.
// Uses CUE SDK's Go API directly (not CLI subprocess).
//
// The CUE value should be the entity struct itself, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`entity: Post: { fields: [{name: "id"}] }`)
//	spec, err := CompileEntity(v.LookupPath(cue.ParsePath("entity.Post")))
func CompileEntity(v cue.Value) (*ir.EntitySpec, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	spec := &ir.EntitySpec{}

	// Public name comes from the struct label
	labels := v.Path().Selectors()
	if len(labels) > 0 {
		spec.Entity.Name = labels[len(labels)-1].String()
	}
	if spec.Entity.Name == "" {
		return nil, &CompileError{
			Field:   "entity",
			Message: "entity must be declared under a label",
			Pos:     v.Pos(),
		}
	}

	// Internal type id defaults to the public name
	spec.Entity.TypeID = spec.Entity.Name
	typeVal := v.LookupPath(cue.ParsePath("type"))
	if typeVal.Exists() {
		typeID, err := typeVal.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		if typeID == "" {
			return nil, &CompileError{
				Field:   "type",
				Message: "type must not be empty",
				Pos:     typeVal.Pos(),
			}
		}
		spec.Entity.TypeID = typeID
	}

	defaultVal := v.LookupPath(cue.ParsePath("default"))
	if defaultVal.Exists() {
		defaults, err := parseExpansionOptions(defaultVal)
		if err != nil {
			return nil, err
		}
		spec.Entity.Default = defaults
	}

	fields, err := parseFields(v)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, &CompileError{
			Field:   "fields",
			Message: "at least one field is required",
			Pos:     v.Pos(),
		}
	}
	spec.Fields = fields

	return spec, nil
}

// CompileEntities compiles every entity under the top-level "entity"
// struct, in declaration order. Errors are collected, not fatal, so
// callers can report all of them at once.
func CompileEntities(v cue.Value) ([]ir.EntitySpec, []error) {
	entitiesVal := v.LookupPath(cue.ParsePath("entity"))
	if !entitiesVal.Exists() {
		return nil, nil
	}

	iter, err := entitiesVal.Fields()
	if err != nil {
		return nil, []error{formatCUEError(err)}
	}

	var (
		specs []ir.EntitySpec
		errs  []error
	)
	for iter.Next() {
		spec, err := CompileEntity(iter.Value())
		if err != nil {
			errs = append(errs, fmt.Errorf("entity.%s: %w", iter.Label(), err))
			continue
		}
		if verrs := Validate(spec); len(verrs) > 0 {
			for i := range verrs {
				errs = append(errs, verrs[i])
			}
			continue
		}
		specs = append(specs, *spec)
	}
	return specs, errs
}

// parseFields extracts the ordered field list.
func parseFields(v cue.Value) ([]ir.FieldDescriptor, error) {
	fieldsVal := v.LookupPath(cue.ParsePath("fields"))
	if !fieldsVal.Exists() {
		return nil, nil
	}

	iter, err := fieldsVal.List()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var fields []ir.FieldDescriptor
	for iter.Next() {
		fieldVal := iter.Value()

		// Shorthand: a bare string is an always-included scalar
		if name, err := fieldVal.String(); err == nil {
			fields = append(fields, ir.FieldDescriptor{Name: name})
			continue
		}

		nameVal := fieldVal.LookupPath(cue.ParsePath("name"))
		if !nameVal.Exists() {
			return nil, &CompileError{
				Field:   "fields.name",
				Message: "field name is required",
				Pos:     fieldVal.Pos(),
			}
		}
		name, err := nameVal.String()
		if err != nil {
			return nil, formatCUEError(err)
		}

		field := ir.FieldDescriptor{Name: name}

		refVal := fieldVal.LookupPath(cue.ParsePath("ref"))
		if refVal.Exists() {
			ref, err := refVal.String()
			if err != nil {
				return nil, formatCUEError(err)
			}
			if ref == "" {
				return nil, &CompileError{
					Field:   "fields.ref",
					Message: fmt.Sprintf("field %q has an empty ref", name),
					Pos:     refVal.Pos(),
				}
			}
			field.Ref = ref
		}

		if field.Include, err = parsePredicate(fieldVal, "include"); err != nil {
			return nil, err
		}
		if field.Skip, err = parsePredicate(fieldVal, "skip"); err != nil {
			return nil, err
		}

		fields = append(fields, field)
	}

	return fields, nil
}

// parsePredicate reads an optional include/skip predicate.
// Supports:
// - String: "flagName" (flag lookup)
// - Object: { flag: "flagName" } or { custom: "predicateID" }
func parsePredicate(v cue.Value, key string) (*ir.Predicate, error) {
	predVal := v.LookupPath(cue.ParsePath(key))
	if !predVal.Exists() {
		return nil, nil
	}

	if name, err := predVal.String(); err == nil {
		return ir.Flag(name), validatePredicate(ir.Flag(name), key, predVal.Pos())
	}

	flagVal := predVal.LookupPath(cue.ParsePath("flag"))
	customVal := predVal.LookupPath(cue.ParsePath("custom"))

	switch {
	case flagVal.Exists() && customVal.Exists():
		return nil, &CompileError{
			Field:   "fields." + key,
			Message: "predicate must set exactly one of flag or custom",
			Pos:     predVal.Pos(),
		}
	case flagVal.Exists():
		name, err := flagVal.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return ir.Flag(name), validatePredicate(ir.Flag(name), key, flagVal.Pos())
	case customVal.Exists():
		id, err := customVal.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return ir.Custom(id), validatePredicate(ir.Custom(id), key, customVal.Pos())
	default:
		return nil, &CompileError{
			Field:   "fields." + key,
			Message: "predicate must be a string or an object with flag or custom",
			Pos:     predVal.Pos(),
		}
	}
}

func validatePredicate(p *ir.Predicate, key string, pos token.Pos) error {
	if err := p.Validate(); err != nil {
		return &CompileError{
			Field:   "fields." + key,
			Message: err.Error(),
			Pos:     pos,
		}
	}
	return nil
}

// parseExpansionOptions parses a { relations, conditions } struct.
func parseExpansionOptions(v cue.Value) (ir.ExpansionOptions, error) {
	var opts ir.ExpansionOptions

	relVal := v.LookupPath(cue.ParsePath("relations"))
	if relVal.Exists() {
		rels, err := parseRelations(relVal)
		if err != nil {
			return opts, err
		}
		opts.Relations = rels
	}

	condVal := v.LookupPath(cue.ParsePath("conditions"))
	if condVal.Exists() {
		iter, err := condVal.Fields()
		if err != nil {
			return opts, formatCUEError(err)
		}
		opts.Conditions = ir.Conditions{}
		for iter.Next() {
			b, err := iter.Value().Bool()
			if err != nil {
				return opts, &CompileError{
					Field:   "default.conditions",
					Message: fmt.Sprintf("condition %q must be a bool", iter.Label()),
					Pos:     iter.Value().Pos(),
				}
			}
			opts.Conditions[iter.Label()] = b
		}
	}

	return opts, nil
}

// parseRelations parses a relation tree. A nested struct descends, true
// or null requests the relation with no further nesting, false drops it.
func parseRelations(v cue.Value) (ir.Relations, error) {
	iter, err := v.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	rels := ir.Relations{}
	for iter.Next() {
		label := iter.Label()
		val := iter.Value()

		switch val.IncompleteKind() {
		case cue.StructKind:
			nested, err := parseRelations(val)
			if err != nil {
				return nil, err
			}
			rels[label] = nested
		case cue.NullKind:
			rels[label] = ir.Relations{}
		case cue.BoolKind:
			b, err := val.Bool()
			if err != nil {
				return nil, formatCUEError(err)
			}
			if b {
				rels[label] = ir.Relations{}
			}
		default:
			return nil, &CompileError{
				Field:   "default.relations",
				Message: fmt.Sprintf("relation %q must be a struct, bool or null", label),
				Pos:     val.Pos(),
			}
		}
	}
	return rels, nil
}

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	// CUE errors may contain multiple errors
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	// Return first error with position info
	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
