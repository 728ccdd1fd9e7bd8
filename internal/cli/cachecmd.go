package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/dynsel/internal/cache"
	"github.com/roach88/dynsel/internal/store"
)

// CacheOptions holds flags for the cache commands.
type CacheOptions struct {
	*RootOptions
	CacheDB string
}

// CacheStatus is the JSON payload of the cache commands.
type CacheStatus struct {
	Path    string `json:"path"`
	Entries int    `json:"entries"`
	Cleared bool   `json:"cleared,omitempty"`
}

// WriteText prints the clear confirmation or the entry count.
func (s CacheStatus) WriteText(w io.Writer) {
	if s.Cleared {
		fmt.Fprintf(w, "✓ Cleared cache %s\n", s.Path)
		return
	}
	fmt.Fprintf(w, "%s: %d cached expansion(s)\n", s.Path, s.Entries)
}

// NewCacheCommand creates the cache command group.
func NewCacheCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CacheOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear a persistent expansion cache",
	}
	cmd.PersistentFlags().StringVar(&opts.CacheDB, "cache-db", "dynsel.db", "SQLite cache database path")

	cmd.AddCommand(&cobra.Command{
		Use:           "stats",
		Short:         "Print the number of cached expansions",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCache(opts, false, cmd)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:           "clear",
		Short:         "Remove every cached expansion",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCache(opts, true, cmd)
		},
	})

	return cmd
}

func runCache(opts *CacheOptions, clearAll bool, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	st, err := store.Open(opts.CacheDB)
	if err != nil {
		_ = formatter.Error(ErrCodeCache, err.Error(), nil)
		return WrapExitError(ExitCommandError, "opening cache database", err)
	}
	defer st.Close()

	ctx := cmd.Context()
	c := cache.New(st, true)

	if clearAll {
		if err := c.Clear(ctx); err != nil {
			_ = formatter.Error(ErrCodeCache, err.Error(), nil)
			return WrapExitError(ExitFailure, "clearing cache", err)
		}
		formatter.VerboseLog("Cleared %s", opts.CacheDB)
	}

	n, err := c.Len(ctx)
	if err != nil {
		_ = formatter.Error(ErrCodeCache, err.Error(), nil)
		return WrapExitError(ExitFailure, "reading cache", err)
	}

	return formatter.Success(CacheStatus{Path: opts.CacheDB, Entries: n, Cleared: clearAll})
}
