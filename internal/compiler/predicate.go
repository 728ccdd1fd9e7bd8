package compiler

import (
	"fmt"
	"sort"

	"cuelang.org/go/cue"

	"github.com/roach88/dynsel/internal/registry"
)

// PredicateSpec declares a custom predicate that is true when any of the
// listed conditions is true.
type PredicateSpec struct {
	ID    string
	AnyOf []string
}

// CompilePredicates reads the top-level "predicate" struct:
//
//	predicate: private: anyOf: ["anonymous", "guest"]
//
// Results are sorted by id.
func CompilePredicates(v cue.Value) ([]PredicateSpec, []error) {
	predsVal := v.LookupPath(cue.ParsePath("predicate"))
	if !predsVal.Exists() {
		return nil, nil
	}

	iter, err := predsVal.Fields()
	if err != nil {
		return nil, []error{formatCUEError(err)}
	}

	var (
		specs []PredicateSpec
		errs  []error
	)
	for iter.Next() {
		id := iter.Label()
		anyOfVal := iter.Value().LookupPath(cue.ParsePath("anyOf"))
		if !anyOfVal.Exists() {
			errs = append(errs, fmt.Errorf("predicate.%s: %w", id, &CompileError{
				Field:   "predicate.anyOf",
				Message: "anyOf is required",
				Pos:     iter.Value().Pos(),
			}))
			continue
		}

		var names []string
		if err := anyOfVal.Decode(&names); err != nil {
			errs = append(errs, fmt.Errorf("predicate.%s: %w", id, formatCUEError(err)))
			continue
		}
		if len(names) == 0 {
			errs = append(errs, fmt.Errorf("predicate.%s: %w", id, &CompileError{
				Field:   "predicate.anyOf",
				Message: "anyOf needs at least one condition",
				Pos:     anyOfVal.Pos(),
			}))
			continue
		}

		specs = append(specs, PredicateSpec{ID: id, AnyOf: names})
	}

	sort.Slice(specs, func(i, j int) bool { return specs[i].ID < specs[j].ID })
	return specs, errs
}

// ApplyPredicates registers each predicate as registry.AnyOf.
func ApplyPredicates(reg *registry.Registry, specs []PredicateSpec) {
	for _, p := range specs {
		reg.RegisterPredicate(p.ID, registry.AnyOf(p.AnyOf...))
	}
}
