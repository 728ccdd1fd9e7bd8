package compiler

import (
	"fmt"
	"regexp"

	"github.com/roach88/dynsel/internal/ir"
)

// Validation error codes (E100-E199)
const (
	ErrInvalidEntityName = "E101" // entity name is not a GraphQL name
	ErrEntityNoFields    = "E102" // at least one field required
	ErrInvalidFieldName  = "E103" // field name is not a GraphQL name
	ErrDuplicateField    = "E104" // duplicate field name within an entity
	ErrInvalidPredicate  = "E105" // malformed include/skip predicate
	ErrEmptyTypeID       = "E106" // internal type id is empty
)

// graphQLName matches the Name production of the GraphQL grammar. Both
// entity names (matched against leaves) and field names (emitted into
// selection text) must satisfy it.
var graphQLName = regexp.MustCompile(`^[_A-Za-z][_0-9A-Za-z]*$`)

// ValidationError represents a schema validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate checks a compiled entity spec.
// Returns all errors found (does not fail-fast).
func Validate(spec *ir.EntitySpec) []ValidationError {
	var errs []ValidationError

	if !graphQLName.MatchString(spec.Entity.Name) {
		errs = append(errs, ValidationError{
			Field:   "entity",
			Message: fmt.Sprintf("entity name %q is not a valid GraphQL name", spec.Entity.Name),
			Code:    ErrInvalidEntityName,
		})
	}

	if spec.Entity.TypeID == "" {
		errs = append(errs, ValidationError{
			Field:   "entity." + spec.Entity.Name + ".type",
			Message: "type id must not be empty",
			Code:    ErrEmptyTypeID,
		})
	}

	if len(spec.Fields) == 0 {
		errs = append(errs, ValidationError{
			Field:   "entity." + spec.Entity.Name + ".fields",
			Message: "at least one field is required",
			Code:    ErrEntityNoFields,
		})
	}

	seen := make(map[string]bool, len(spec.Fields))
	for i, f := range spec.Fields {
		path := fmt.Sprintf("entity.%s.fields[%d]", spec.Entity.Name, i)

		if !graphQLName.MatchString(f.Name) {
			errs = append(errs, ValidationError{
				Field:   path,
				Message: fmt.Sprintf("field name %q is not a valid GraphQL name", f.Name),
				Code:    ErrInvalidFieldName,
			})
		}

		if seen[f.Name] {
			errs = append(errs, ValidationError{
				Field:   path,
				Message: fmt.Sprintf("duplicate field %q", f.Name),
				Code:    ErrDuplicateField,
			})
		}
		seen[f.Name] = true

		for _, p := range []*ir.Predicate{f.Include, f.Skip} {
			if err := p.Validate(); err != nil {
				errs = append(errs, ValidationError{
					Field:   path,
					Message: err.Error(),
					Code:    ErrInvalidPredicate,
				})
			}
		}
	}

	return errs
}
