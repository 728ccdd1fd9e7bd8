package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// ValidationIssue is one problem found in the entity declarations.
type ValidationIssue struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	File    string `json:"file,omitempty"`
	Line    int    `json:"line,omitempty"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid    bool              `json:"valid"`
	Entities int               `json:"entities"`
	Errors   []ValidationIssue `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <entities-dir>",
		Short: "Validate entity declarations",
		Long: `Validate CUE entity declarations without expanding anything.

Reports every error at once: unknown keys, invalid GraphQL names,
duplicate fields and malformed include/skip predicates.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, entitiesDir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	loadResult, loadErrors := LoadEntities(entitiesDir, LoadModeCollectAll)

	// Handle load errors (directory not found, no files, etc.)
	if loadResult == nil && len(loadErrors) > 0 {
		var loadErr *LoadError
		if errors.As(loadErrors[0], &loadErr) {
			return outputValidateError(formatter, loadErr.Code, loadErr.Message, nil)
		}
		return outputValidateError(formatter, ErrCodeGeneric, loadErrors[0].Error(), nil)
	}

	formatter.VerboseLog("Found %d CUE file(s) in %s", loadResult.FileCount, entitiesDir)
	for _, spec := range loadResult.Entities {
		formatter.VerboseLog("Validated entity: %s (%d fields)", spec.Entity.Name, len(spec.Fields))
	}

	issues := make([]ValidationIssue, 0, len(loadErrors))
	for _, err := range loadErrors {
		issues = append(issues, toIssue(err))
	}

	if len(issues) > 0 {
		return outputValidationErrors(formatter, len(loadResult.Entities), issues)
	}

	return outputValidateSuccess(formatter, len(loadResult.Entities))
}

func toIssue(err error) ValidationIssue {
	var loadErr *LoadError
	if !errors.As(err, &loadErr) {
		return ValidationIssue{Code: ErrCodeGeneric, Message: err.Error()}
	}

	issue := ValidationIssue{Code: loadErr.Code, Message: loadErr.Message}
	if loadErr.Pos.IsValid() {
		issue.File = loadErr.Pos.Filename()
		issue.Line = loadErr.Pos.Line()
	}
	return issue
}

// WriteText prints the success line.
func (r ValidationResult) WriteText(w io.Writer) {
	fmt.Fprintf(w, "✓ All entities valid (%d)\n", r.Entities)
}

// outputValidateSuccess outputs successful validation results.
func outputValidateSuccess(formatter *OutputFormatter, entities int) error {
	return formatter.Success(ValidationResult{Valid: true, Entities: entities})
}

// outputValidateError outputs a single load error.
func outputValidateError(formatter *OutputFormatter, code, message string, details any) error {
	_ = formatter.Error(code, message, details)
	// Load errors are command-level errors (exit code 2)
	return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message))
}

// outputValidationErrors outputs every issue; invalid entities exit 1.
func outputValidationErrors(formatter *OutputFormatter, entities int, issues []ValidationIssue) error {
	return outputIssues(formatter, "Validation failed", ExitFailure, entities, issues)
}
