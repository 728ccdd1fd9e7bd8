package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

const blogEntitiesDir = "testdata/entities"

// writeEntities writes a single CUE file in package test into a fresh
// directory.
func writeEntities(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	src := "package test\n" + content
	require.NoError(t, os.WriteFile(filepath.Join(dir, "entities.cue"), []byte(src), 0o644))
	return dir
}

// execute runs cmd with args and returns stdout.
func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	errBuf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(errBuf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}
