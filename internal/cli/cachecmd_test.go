package cli

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/dynsel/internal/cache"
	"github.com/roach88/dynsel/internal/store"
)

func seedCache(t *testing.T, path string, entries int) {
	t.Helper()
	st, err := store.Open(path)
	require.NoError(t, err)
	defer st.Close()

	c := cache.New(st, true)
	for i := 0; i < entries; i++ {
		fp := cache.Fingerprint{Outer: "doc", Inner: string(rune('a' + i))}
		require.NoError(t, c.Put(context.Background(), fp, "{ a }"))
	}
}

func TestCacheStatsEmpty(t *testing.T) {
	db := filepath.Join(t.TempDir(), "cache.db")

	out, err := execute(t, NewCacheCommand(&RootOptions{Format: "text"}), "stats", "--cache-db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "0 cached expansion(s)")
}

func TestCacheClear(t *testing.T) {
	db := filepath.Join(t.TempDir(), "cache.db")
	seedCache(t, db, 3)

	out, err := execute(t, NewCacheCommand(&RootOptions{Format: "json"}), "stats", "--cache-db", db)
	require.NoError(t, err)
	var resp struct {
		Data CacheStatus `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, 3, resp.Data.Entries)

	out, err = execute(t, NewCacheCommand(&RootOptions{Format: "text"}), "clear", "--cache-db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Cleared cache")

	out, err = execute(t, NewCacheCommand(&RootOptions{Format: "text"}), "stats", "--cache-db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "0 cached expansion(s)")
}

func TestCacheUnopenableDatabase(t *testing.T) {
	db := filepath.Join(t.TempDir(), "missing", "dir", "cache.db")

	_, err := execute(t, NewCacheCommand(&RootOptions{Format: "text"}), "stats", "--cache-db", db)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
