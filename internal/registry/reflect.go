package registry

import (
	"fmt"
	"reflect"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/roach88/dynsel/internal/ir"
)

// TagName is the struct tag read by RegisterStruct.
const TagName = "dynsel"

// RegisterStruct registers the struct type of v as entity name, reading
// field declarations from `dynsel` struct tags:
//
//	type Post struct {
//		ID     string `dynsel:"id"`
//		Title  string `dynsel:"title,include=withTitle"`
//		Body   string `dynsel:"body,skipFn=isSummary"`
//		Author *User  `dynsel:"author"`
//	}
//
// Tag options: include=<flag>, skip=<flag>, includeFn=<predicate id>,
// skipFn=<predicate id>, scalar (treat a struct-typed field as a leaf).
// Untagged fields and fields tagged "-" are ignored. Struct-typed fields
// (directly, through pointers, slices or arrays) become relations whose
// internal type id is the Go type name; those types are registered
// recursively. The Go type name of v is the entity's internal type id.
//
// A Go type's fields are registered once: types that already have fields
// in the registry are not appended to again.
// Nothing is registered if any tag fails to parse.
func (r *Registry) RegisterStruct(name string, v any, defaults ir.ExpansionOptions) error {
	t := reflect.TypeOf(v)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return fmt.Errorf("register struct %q: expected a struct, got %T", name, v)
	}
	if t.Name() == "" {
		return fmt.Errorf("register struct %q: anonymous struct types have no type id", name)
	}

	pending := make(map[string][]ir.FieldDescriptor)
	var order []string
	if err := collectStructFields(t, pending, &order); err != nil {
		return fmt.Errorf("register struct %q: %w", name, err)
	}

	r.RegisterType(name, t.Name(), defaults)
	for _, typeID := range order {
		if len(r.LookupFields(typeID)) > 0 {
			continue
		}
		for _, f := range pending[typeID] {
			r.RegisterField(typeID, f)
		}
	}
	return nil
}

// collectStructFields walks t and every struct type it references,
// recording field lists in first-visit order.
func collectStructFields(t reflect.Type, pending map[string][]ir.FieldDescriptor, order *[]string) error {
	typeID := t.Name()
	if _, seen := pending[typeID]; seen {
		return nil
	}
	pending[typeID] = []ir.FieldDescriptor{}
	*order = append(*order, typeID)

	var fields []ir.FieldDescriptor
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		tag, ok := sf.Tag.Lookup(TagName)
		if !ok || tag == "-" || !sf.IsExported() {
			continue
		}

		field, scalar, err := parseTag(sf.Name, tag)
		if err != nil {
			return fmt.Errorf("%s.%s: %w", typeID, sf.Name, err)
		}

		if nested := structElem(sf.Type); nested != nil && !scalar {
			if nested.Name() == "" {
				return fmt.Errorf("%s.%s: anonymous struct types have no type id", typeID, sf.Name)
			}
			field.Ref = nested.Name()
			if err := collectStructFields(nested, pending, order); err != nil {
				return err
			}
		}
		fields = append(fields, field)
	}
	pending[typeID] = fields
	return nil
}

// structElem unwraps pointers, slices and arrays and returns the struct
// type underneath, or nil.
func structElem(t reflect.Type) reflect.Type {
	for {
		switch t.Kind() {
		case reflect.Pointer, reflect.Slice, reflect.Array:
			t = t.Elem()
		case reflect.Struct:
			return t
		default:
			return nil
		}
	}
}

func parseTag(goName, tag string) (ir.FieldDescriptor, bool, error) {
	parts := strings.Split(tag, ",")

	field := ir.FieldDescriptor{Name: strings.TrimSpace(parts[0])}
	if field.Name == "" {
		field.Name = lowerFirst(goName)
	}

	scalar := false
	for _, opt := range parts[1:] {
		opt = strings.TrimSpace(opt)
		if opt == "" {
			continue
		}
		if opt == "scalar" {
			scalar = true
			continue
		}

		key, val, ok := strings.Cut(opt, "=")
		if !ok || val == "" {
			return field, false, fmt.Errorf("tag option %q needs a value", opt)
		}
		switch key {
		case "include":
			field.Include = ir.Flag(val)
		case "skip":
			field.Skip = ir.Flag(val)
		case "includeFn":
			field.Include = ir.Custom(val)
		case "skipFn":
			field.Skip = ir.Custom(val)
		default:
			return field, false, fmt.Errorf("unknown tag option %q", key)
		}
	}
	return field, scalar, nil
}

func lowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToLower(r)) + s[size:]
}
