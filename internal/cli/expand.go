package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/dynsel/internal/cache"
	"github.com/roach88/dynsel/internal/ir"
	"github.com/roach88/dynsel/internal/selection"
	"github.com/roach88/dynsel/internal/store"
)

// ExpandOptions holds flags for the expand command.
type ExpandOptions struct {
	*RootOptions
	Query       string // inline query text
	OptionsFile string // YAML or JSON call options
	Cache       bool   // enable the expansion cache
	CacheDB     string // SQLite cache database (empty: in-memory)
	Strict      bool   // fail on unregistered entities
}

// ExpandResult is the JSON payload of the expand command.
type ExpandResult struct {
	Document    string `json:"document"`
	Fingerprint string `json:"fingerprint,omitempty"`
}

// WriteText prints the expanded document alone, so the output can be
// piped to a GraphQL client.
func (r ExpandResult) WriteText(w io.Writer) {
	fmt.Fprintln(w, strings.TrimRight(r.Document, "\n"))
}

// NewExpandCommand creates the expand command.
func NewExpandCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExpandOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "expand <entities-dir> [query-file]",
		Short: "Expand entity placeholders in a GraphQL document",
		Long: `Expand every leaf of a GraphQL document that names a registered entity
into that entity's field selection.

The query is read from --query, from query-file, or from stdin when
query-file is "-". Call options (relations, conditions and per-entity
overrides) are read from --options as YAML or JSON.

Examples:
  dynsel expand ./entities --query '{ posts { Post } }'
  dynsel expand ./entities query.graphql --options opts.yaml
  dynsel expand ./entities - --cache --cache-db ./dynsel.db < query.graphql`,
		Args:          cobra.RangeArgs(1, 2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExpand(opts, args, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Query, "query", "q", "", "query text")
	cmd.Flags().StringVar(&opts.OptionsFile, "options", "", "call options file (YAML or JSON)")
	cmd.Flags().BoolVar(&opts.Cache, "cache", false, "enable the expansion cache")
	cmd.Flags().StringVar(&opts.CacheDB, "cache-db", "", "SQLite cache database path")
	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "fail on unregistered entities")

	return cmd
}

func runExpand(opts *ExpandOptions, args []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	loadResult, loadErrors := LoadEntities(args[0], LoadModeFailFast)
	if len(loadErrors) > 0 {
		issue := toIssue(loadErrors[0])
		return outputExpandError(formatter, issue.Code, issue.Message)
	}
	formatter.VerboseLog("Loaded %d entit(ies) from %s", len(loadResult.Entities), args[0])

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

	kv, closeStore, err := openCacheStore(opts.CacheDB)
	if err != nil {
		return outputExpandError(formatter, ErrCodeCache, err.Error())
	}
	defer closeStore()

	reg := loadResult.Registry()
	engine := selection.New(reg,
		selection.WithCache(cache.New(kv, opts.Cache)),
		selection.WithStrictEntities(opts.Strict),
		selection.WithLogger(newLogger(formatter)),
	)

	var fingerprint string
	if opts.Cache {
		fp, err := engine.Fingerprint(doc, callOpts)
		if err != nil {
			return outputExpandError(formatter, ErrCodeGeneric, err.Error())
		}
		fingerprint = fp.Digest()
		formatter.VerboseLog("Fingerprint: %s", fingerprint)
	}

	out, err := engine.Select(cmd.Context(), doc, callOpts)
	if err != nil {
		return outputExpandError(formatter, ErrCodeExpandFailed, err.Error())
	}

	return formatter.Success(ExpandResult{Document: selection.Print(out), Fingerprint: fingerprint})
}

// readQuery returns the inline query, the contents of the query file, or
// stdin when the file is "-".
func readQuery(inline string, args []string, stdin io.Reader) (string, error) {
	switch {
	case inline != "" && len(args) > 0:
		return "", errors.New("use either --query or a query file, not both")
	case inline != "":
		return inline, nil
	case len(args) == 0:
		return "", errors.New("no query given: pass --query or a query file")
	case args[0] == "-":
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	default:
		data, err := os.ReadFile(args[0])
		if err != nil {
			return "", fmt.Errorf("reading query file: %w", err)
		}
		return string(data), nil
	}
}

// readCallOptions decodes the options file. No file means empty options.
func readCallOptions(path string) (*ir.CallOptions, error) {
	if path == "" {
		return &ir.CallOptions{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading options file: %w", err)
	}
	opts, err := ir.DecodeCallOptions(data)
	if err != nil {
		return nil, fmt.Errorf("decoding options file: %w", err)
	}
	return opts, nil
}

// openCacheStore opens the SQLite store at path, or an in-memory store
// when path is empty.
func openCacheStore(path string) (cache.Store, func(), error) {
	if path == "" {
		return cache.NewMemoryStore(), func() {}, nil
	}
	st, err := store.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening cache database: %w", err)
	}
	return st, func() { _ = st.Close() }, nil
}

// newLogger writes engine logs to the diagnostic writer. Debug output
// only appears in verbose mode.
func newLogger(formatter *OutputFormatter) *slog.Logger {
	level := slog.LevelWarn
	if formatter.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(formatter.Diagnostics(), &slog.HandlerOptions{Level: level}))
}

func outputExpandError(formatter *OutputFormatter, code, message string) error {
	_ = formatter.Error(code, message, nil)
	return NewExitError(ExitFailure, fmt.Sprintf("%s: %s", code, message))
}
