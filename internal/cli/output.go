package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // command succeeded
	ExitFailure      = 1 // expansion failed, invalid entities, scenarios failed
	ExitCommandError = 2 // bad arguments, unreadable files, unopenable cache
)

// ExitError carries the process exit code for a failed command.
type ExitError struct {
	Code    int    // ExitFailure or ExitCommandError
	Message string // summary for stderr
	Err     error  // underlying error (optional)
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode maps err to a process exit code: ExitSuccess for nil, the
// carried code for an ExitError, ExitFailure otherwise.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// TextWriter is implemented by command payloads that have a
// human-readable form. Payloads without it are printed with fmt.
type TextWriter interface {
	WriteText(w io.Writer)
}

// OutputFormatter renders command results as text or as a JSON envelope.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // verbose logs and slog output; falls back to Writer
	Verbose   bool
}

// newFormatter builds the formatter for cmd from the global flags.
// Diagnostics go to stderr so JSON on stdout stays parseable.
func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}

// CLIResponse is the JSON envelope of every command.
type CLIResponse struct {
	Status string    `json:"status"`          // "ok" or "error"
	Data   any       `json:"data,omitempty"`  // command payload
	Error  *CLIError `json:"error,omitempty"` // first or only error
}

// CLIError is the error part of a CLIResponse.
type CLIError struct {
	Code    string `json:"code"`              // "E001", "E203", ...
	Message string `json:"message"`           // human-readable message
	Details any    `json:"details,omitempty"` // additional context
}

// Success outputs a command payload.
func (f *OutputFormatter) Success(data any) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "ok",
			Data:   data,
		})
	}

	if tw, ok := data.(TextWriter); ok {
		tw.WriteText(f.Writer)
		return nil
	}
	fmt.Fprintln(f.Writer, data)
	return nil
}

// Error outputs a single coded error.
func (f *OutputFormatter) Error(code, message string, details any) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Error: &CLIError{
				Code:    code,
				Message: message,
				Details: details,
			},
		})
	}

	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", details)
	}
	return nil
}

// Failure outputs a payload that describes a failed run, such as a list
// of validation issues or scenario results. JSON carries both the
// payload and the summary error; text uses the payload's WriteText.
func (f *OutputFormatter) Failure(code, message string, data any) error {
	if f.Format == "json" {
		enc := json.NewEncoder(f.Writer)
		enc.SetIndent("", "  ")
		return enc.Encode(CLIResponse{
			Status: "error",
			Data:   data,
			Error:  &CLIError{Code: code, Message: message},
		})
	}

	if tw, ok := data.(TextWriter); ok {
		tw.WriteText(f.Writer)
		return nil
	}
	return f.Error(code, message, nil)
}

// VerboseLog writes a diagnostic line when verbose mode is enabled.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	fmt.Fprintf(f.Diagnostics(), format+"\n", args...)
}

// Diagnostics returns the writer for logs and verbose output.
func (f *OutputFormatter) Diagnostics() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}

// issueReport is the text and JSON form of a failed validate or compile
// run.
type issueReport struct {
	title string
	ValidationResult
}

func (r issueReport) WriteText(w io.Writer) {
	fmt.Fprintf(w, "✗ %s\n\n", r.title)
	for _, issue := range r.Errors {
		if issue.Line > 0 {
			fmt.Fprintf(w, "%s:%d\n", issue.File, issue.Line)
		}
		fmt.Fprintf(w, "  %s: %s\n\n", issue.Code, issue.Message)
	}
}

func (r issueReport) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.ValidationResult)
}

// outputIssues reports every issue and returns an ExitError with code.
func outputIssues(f *OutputFormatter, title string, exitCode int, entities int, issues []ValidationIssue) error {
	report := issueReport{
		title: title,
		ValidationResult: ValidationResult{
			Valid:    false,
			Entities: entities,
			Errors:   issues,
		},
	}
	if err := f.Failure(issues[0].Code, issues[0].Message, report); err != nil {
		return err
	}
	return NewExitError(exitCode, fmt.Sprintf("%s with %d error(s)", title, len(issues)))
}
