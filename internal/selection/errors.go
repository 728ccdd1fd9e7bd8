package selection

import (
	"errors"
	"fmt"
)

// MalformedSelectionError reports that the document failed to re-parse
// after placeholders were replaced with synthesized selections.
type MalformedSelectionError struct {
	// Text is the substituted document that failed to parse.
	Text string

	// Err is the parser error.
	Err error
}

// Error implements the error interface.
func (e *MalformedSelectionError) Error() string {
	return fmt.Sprintf("malformed selection: %v", e.Err)
}

// Unwrap returns the parser error.
func (e *MalformedSelectionError) Unwrap() error {
	return e.Err
}

// UnregisteredEntityError reports an entity with no registered
// descriptor. Entity is set for public names, TypeID for nested
// references that point at an unknown internal type id.
type UnregisteredEntityError struct {
	Entity string
	TypeID string

	// Partial is the entity's selection with the unknown nested body
	// left empty. Empty when the entity itself is unknown.
	Partial string
}

// Error implements the error interface.
func (e *UnregisteredEntityError) Error() string {
	if e.TypeID != "" {
		return fmt.Sprintf("entity %q: nested type %q is not registered", e.Entity, e.TypeID)
	}
	return fmt.Sprintf("entity %q is not registered", e.Entity)
}

// IsMalformedSelection returns true if err is or wraps a
// MalformedSelectionError.
// Uses errors.As to handle wrapped errors.
func IsMalformedSelection(err error) bool {
	var me *MalformedSelectionError
	return errors.As(err, &me)
}

// IsUnregisteredEntity returns true if err is or wraps an
// UnregisteredEntityError.
func IsUnregisteredEntity(err error) bool {
	var ue *UnregisteredEntityError
	return errors.As(err, &ue)
}
