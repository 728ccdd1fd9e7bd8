package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"

	"github.com/roach88/dynsel/internal/compiler"
	"github.com/roach88/dynsel/internal/ir"
	"github.com/roach88/dynsel/internal/registry"
)

// LoadMode controls how errors are handled during entity loading.
type LoadMode int

const (
	// LoadModeFailFast stops on the first error encountered.
	LoadModeFailFast LoadMode = iota
	// LoadModeCollectAll collects all errors before returning.
	LoadModeCollectAll
)

// LoadResult contains the results of loading entities from a directory.
type LoadResult struct {
	Entities   []ir.EntitySpec
	Predicates []compiler.PredicateSpec
	CUEValue   cue.Value // The raw CUE value for additional processing
	FileCount  int       // Number of CUE files found
}

// Registry builds a registry from the loaded entities and predicates.
func (r *LoadResult) Registry() *registry.Registry {
	reg := registry.New()
	compiler.Apply(reg, r.Entities)
	compiler.ApplyPredicates(reg, r.Predicates)
	return reg
}

// LoadError represents an error that occurred during entity loading.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadEntities loads and compiles CUE entity declarations from a directory.
// If mode is LoadModeFailFast, returns on first error.
// If mode is LoadModeCollectAll, collects all errors.
func LoadEntities(dir string, mode LoadMode) (*LoadResult, []error) {
	// Verify directory exists
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("entities directory not found: %s", dir)}}
	}
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing entities directory: %v", err)}}
	}
	if !info.IsDir() {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("not a directory: %s", dir)}}
	}

	// Find CUE files
	cueFiles, err := FindCUEFiles(dir)
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}}
	}
	if len(cueFiles) == 0 {
		return nil, []error{&LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", dir)}}
	}

	// Load CUE instances
	ctx := cuecontext.New()
	cfg := &load.Config{Dir: dir}
	instances := load.Instances([]string{"."}, cfg)
	if len(instances) == 0 {
		return nil, []error{&LoadError{Code: ErrCodeLoadFailed, Message: "no CUE instances loaded"}}
	}

	// Check for load errors
	inst := instances[0]
	if inst.Err != nil {
		return nil, []error{&LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("loading CUE files: %v", inst.Err)}}
	}

	// Build value from instance
	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, []error{&LoadError{Code: ErrCodeBuildFailed, Message: fmt.Sprintf("building CUE value: %v", err)}}
	}

	result := &LoadResult{
		CUEValue:  value,
		FileCount: len(cueFiles),
	}

	var errs []error

	specs, entityErrs := compiler.CompileEntities(value)
	result.Entities = specs
	for _, err := range entityErrs {
		errs = append(errs, convertCompileError(err))
		if mode == LoadModeFailFast {
			return result, errs
		}
	}

	preds, predErrs := compiler.CompilePredicates(value)
	result.Predicates = preds
	for _, err := range predErrs {
		errs = append(errs, convertCompileError(err))
		if mode == LoadModeFailFast {
			return result, errs
		}
	}

	// Check if we found anything
	if len(result.Entities) == 0 && len(errs) == 0 {
		errs = append(errs, &LoadError{Code: ErrCodeNoEntities, Message: "no entities found"})
	}

	return result, errs
}

// FindCUEFiles walks the directory and returns all .cue file paths.
func FindCUEFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(path) == ".cue" {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// convertCompileError converts a compiler error to a LoadError with position info.
func convertCompileError(err error) *LoadError {
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		return &LoadError{
			Code:    MapFieldToErrorCode(compileErr.Field),
			Message: err.Error(),
			Pos:     compileErr.Pos,
		}
	}

	var validationErr compiler.ValidationError
	if errors.As(err, &validationErr) {
		return &LoadError{
			Code:    validationErr.Code,
			Message: fmt.Sprintf("%s: %s", validationErr.Field, validationErr.Message),
		}
	}

	return &LoadError{
		Code:    ErrCodeGeneric,
		Message: err.Error(),
	}
}

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeScanError   = "E002" // Directory scan error
	ErrCodeNoFiles     = "E003" // No CUE files found
	ErrCodeLoadFailed  = "E004" // CUE load failed
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeBuildFailed = "E006" // CUE build failed
	ErrCodeWriteFailed = "E007" // File write error
	ErrCodeNoEntities  = "E008" // No entities declared

	// Compile errors (validation codes E101-E106 come from the compiler)
	ErrCodeEntityDecl   = "E110" // Entity declaration error
	ErrCodeFieldDecl    = "E111" // Field declaration error
	ErrCodePredicate    = "E112" // Predicate declaration error
	ErrCodeDefaultsDecl = "E113" // Default options error

	// Expansion errors
	ErrCodeQueryParse   = "E201" // Query does not parse
	ErrCodeOptions      = "E202" // Call options do not decode
	ErrCodeExpandFailed = "E203" // Expansion failed
	ErrCodeCache        = "E204" // Cache store error

	// Harness errors
	ErrCodeScenarioFailed = "E301" // One or more scenarios failed
)

// MapFieldToErrorCode maps a compiler error field to an error code.
func MapFieldToErrorCode(field string) string {
	switch field {
	case "entity", "type":
		return ErrCodeEntityDecl
	case "fields", "fields.name", "fields.ref":
		return ErrCodeFieldDecl
	case "fields.include", "fields.skip", "predicate.anyOf":
		return ErrCodePredicate
	case "default", "default.relations", "default.conditions":
		return ErrCodeDefaultsDecl
	default:
		return ErrCodeGeneric
	}
}
