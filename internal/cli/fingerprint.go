package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/dynsel/internal/ir"
	"github.com/roach88/dynsel/internal/selection"
)

// FingerprintOptions holds flags for the fingerprint command.
type FingerprintOptions struct {
	*RootOptions
	Query       string
	OptionsFile string
}

// FingerprintResult is the JSON payload of the fingerprint command.
type FingerprintResult struct {
	Outer    string `json:"outer"`
	Inner    string `json:"inner"`
	Digest   string `json:"digest"`
	Registry string `json:"registry"`
}

// WriteText prints one labelled digest per line.
func (r FingerprintResult) WriteText(w io.Writer) {
	fmt.Fprintf(w, "outer:    %s\n", r.Outer)
	fmt.Fprintf(w, "inner:    %s\n", r.Inner)
	fmt.Fprintf(w, "digest:   %s\n", r.Digest)
	fmt.Fprintf(w, "registry: %s\n", r.Registry)
}

// NewFingerprintCommand creates the fingerprint command.
func NewFingerprintCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &FingerprintOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "fingerprint <entities-dir> [query-file]",
		Short: "Print the cache key of a document and options",
		Long: `Print the cache fingerprint expand would use for a document, call
options and the compiled registry, without expanding anything.

Outer and inner are hashes of the two cache keys: the printed document,
and the call options followed by the registry snapshot.`,
		Args:          cobra.RangeArgs(1, 2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFingerprint(opts, args, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Query, "query", "q", "", "query text")
	cmd.Flags().StringVar(&opts.OptionsFile, "options", "", "call options file (YAML or JSON)")

	return cmd
}

func runFingerprint(opts *FingerprintOptions, args []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	loadResult, loadErrors := LoadEntities(args[0], LoadModeFailFast)
	if len(loadErrors) > 0 {
		issue := toIssue(loadErrors[0])
		return outputExpandError(formatter, issue.Code, issue.Message)
	}

	query, err := readQuery(opts.Query, args[1:], cmd.InOrStdin())
	if err != nil {
		return outputExpandError(formatter, ErrCodeNotFound, err.Error())
	}
	callOpts, err := readCallOptions(opts.OptionsFile)
	if err != nil {
		return outputExpandError(formatter, ErrCodeOptions, err.Error())
	}
	doc, err := selection.Parse(query)
	if err != nil {
		return outputExpandError(formatter, ErrCodeQueryParse, err.Error())
	}

	reg := loadResult.Registry()
	fp, err := selection.New(reg, selection.WithLogger(newLogger(formatter))).Fingerprint(doc, callOpts)
	if err != nil {
		return outputExpandError(formatter, ErrCodeGeneric, err.Error())
	}
	regDigest, err := reg.SnapshotDigest()
	if err != nil {
		return outputExpandError(formatter, ErrCodeGeneric, err.Error())
	}

	result := FingerprintResult{
		Outer:    ir.Digest(ir.DomainFingerprint, []byte(fp.Outer)),
		Inner:    ir.Digest(ir.DomainFingerprint, []byte(fp.Inner)),
		Digest:   fp.Digest(),
		Registry: regDigest,
	}

	return formatter.Success(result)
}
