package registry

import (
	"fmt"
	"slices"

	"github.com/roach88/dynsel/internal/ir"
)

// Snapshot returns the complete registry state as a canonical value:
// types with their defaults, every field list in declaration order, and
// the ids of registered custom predicates. Predicates are represented by
// their {kind, name} identifiers, never by function values.
//
// Everything that can change the output of an expansion must appear here,
// because the cache trusts the snapshot to detect registry changes.
func (r *Registry) Snapshot() ir.Object {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make(ir.Object, len(r.types))
	for name, desc := range r.types {
		types[name] = ir.Object{
			"type_id": ir.String(desc.TypeID),
			"default": desc.Default.ToValue(),
		}
	}

	fields := make(ir.Object, len(r.fields))
	for typeID, list := range r.fields {
		items := make(ir.List, len(list))
		for i, f := range list {
			items[i] = fieldValue(f)
		}
		fields[typeID] = items
	}

	ids := make([]string, 0, len(r.predicates))
	for id := range r.predicates {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	return ir.Object{
		"version":    ir.String(ir.SnapshotVersion),
		"types":      types,
		"fields":     fields,
		"predicates": ir.StringList(ids),
	}
}

// SnapshotDigest returns a short content hash of Snapshot for logs and
// diagnostics.
func (r *Registry) SnapshotDigest() (string, error) {
	data, err := ir.MarshalExact(r.Snapshot())
	if err != nil {
		return "", fmt.Errorf("snapshot digest: %w", err)
	}
	return ir.Digest(ir.DomainSnapshot, data), nil
}

func fieldValue(f ir.FieldDescriptor) ir.Object {
	obj := ir.Object{"name": ir.String(f.Name)}
	if f.Ref != "" {
		obj["ref"] = ir.String(f.Ref)
	}
	if f.Include != nil {
		obj["include"] = predicateValue(f.Include)
	}
	if f.Skip != nil {
		obj["skip"] = predicateValue(f.Skip)
	}
	return obj
}

func predicateValue(p *ir.Predicate) ir.Object {
	return ir.Object{
		"kind": ir.String(string(p.Kind)),
		"name": ir.String(p.Name),
	}
}
