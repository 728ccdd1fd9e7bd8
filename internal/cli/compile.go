package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/dynsel/internal/compiler"
	"github.com/roach88/dynsel/internal/ir"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Output string // output file path
}

// EntitySummary describes one compiled entity.
type EntitySummary struct {
	Name      string `json:"name"`
	TypeID    string `json:"type_id"`
	Fields    int    `json:"fields"`
	Relations int    `json:"relations"`
}

// CompilationResult holds the compiled registry summary.
type CompilationResult struct {
	Entities   []EntitySummary `json:"entities"`
	Predicates []string        `json:"predicates,omitempty"`
	Digest     string          `json:"digest"`
	Output     string          `json:"output,omitempty"`
}

// WriteText prints the entity and predicate summary.
func (r *CompilationResult) WriteText(w io.Writer) {
	fmt.Fprintf(w, "✓ Compiled %d entit(ies), %d predicate(s)\n\n",
		len(r.Entities), len(r.Predicates))

	fmt.Fprintln(w, "Entities:")
	for _, e := range r.Entities {
		fmt.Fprintf(w, "  %s (%s): %d field(s), %d relation(s)\n",
			e.Name, e.TypeID, e.Fields, e.Relations)
	}
	fmt.Fprintln(w)

	if len(r.Predicates) > 0 {
		fmt.Fprintln(w, "Predicates:")
		for _, id := range r.Predicates {
			fmt.Fprintf(w, "  %s\n", id)
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Snapshot digest: %s\n", r.Digest)
	if r.Output != "" {
		fmt.Fprintf(w, "Wrote canonical snapshot to %s\n", r.Output)
	}
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <entities-dir>",
		Short: "Compile CUE entities to a canonical registry snapshot",
		Long: `Compile CUE entity declarations into a registry and print a summary.

With --output the canonical JSON snapshot of the registry is written to a
file. The snapshot digest changes whenever any declaration that can
change an expansion changes.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path")

	return cmd
}

func runCompile(opts *CompileOptions, entitiesDir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	// Use shared loader with collect-all mode
	loadResult, loadErrors := LoadEntities(entitiesDir, LoadModeCollectAll)

	// Handle load errors (directory not found, no files, etc.)
	if loadResult == nil && len(loadErrors) > 0 {
		var loadErr *LoadError
		if errors.As(loadErrors[0], &loadErr) {
			return outputCompileError(formatter, loadErr.Code, loadErr.Message, nil)
		}
		return outputCompileError(formatter, ErrCodeGeneric, loadErrors[0].Error(), nil)
	}

	formatter.VerboseLog("Found %d CUE file(s) in %s", loadResult.FileCount, entitiesDir)
	for _, spec := range loadResult.Entities {
		formatter.VerboseLog("Compiling entity: %s", spec.Entity.Name)
	}

	// Handle compilation errors
	if len(loadErrors) > 0 {
		issues := make([]ValidationIssue, 0, len(loadErrors))
		for _, err := range loadErrors {
			issues = append(issues, toIssue(err))
		}
		return outputIssues(formatter, "Compilation failed", ExitCommandError, len(loadResult.Entities), issues)
	}

	reg := loadResult.Registry()
	digest, err := reg.SnapshotDigest()
	if err != nil {
		return outputCompileError(formatter, ErrCodeGeneric, err.Error(), nil)
	}

	result := &CompilationResult{
		Entities:   summarize(loadResult.Entities),
		Predicates: predicateIDs(loadResult.Predicates),
		Digest:     digest,
		Output:     opts.Output,
	}

	// Write to file if --output specified
	if opts.Output != "" {
		data, err := ir.MarshalCanonical(reg.Snapshot())
		if err != nil {
			return outputCompileError(formatter, ErrCodeGeneric, fmt.Sprintf("marshaling snapshot: %v", err), nil)
		}
		if err := os.WriteFile(opts.Output, data, 0o644); err != nil {
			return outputCompileError(formatter, ErrCodeWriteFailed, fmt.Sprintf("writing output file: %v", err), nil)
		}
	}

	return formatter.Success(result)
}

func summarize(specs []ir.EntitySpec) []EntitySummary {
	out := make([]EntitySummary, 0, len(specs))
	for _, spec := range specs {
		s := EntitySummary{
			Name:   spec.Entity.Name,
			TypeID: spec.Entity.TypeID,
			Fields: len(spec.Fields),
		}
		for _, f := range spec.Fields {
			if f.IsRelation() {
				s.Relations++
			}
		}
		out = append(out, s)
	}
	return out
}

func predicateIDs(specs []compiler.PredicateSpec) []string {
	ids := make([]string, 0, len(specs))
	for _, p := range specs {
		ids = append(ids, p.ID)
	}
	return ids
}

// outputCompileError outputs a single compilation error.
func outputCompileError(formatter *OutputFormatter, code, message string, details any) error {
	_ = formatter.Error(code, message, details)
	// Compilation errors are command-level errors (exit code 2)
	return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message))
}
