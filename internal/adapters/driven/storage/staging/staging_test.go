package staging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestDir_ClearsLeftovers(t *testing.T) {
	final := filepath.Join(t.TempDir(), "base")
	writeFile(t, final+stagingSuffix, "stale", "x")

	dir, err := Dir(final)
	require.NoError(t, err)
	assert.Equal(t, final+stagingSuffix, dir)
	assert.NoDirExists(t, dir)
}

func TestSwap_ReplacesExisting(t *testing.T) {
	final := filepath.Join(t.TempDir(), "base")
	writeFile(t, final, "index.db", "old")

	dir, err := Dir(final)
	require.NoError(t, err)
	writeFile(t, dir, "index.db", "new")

	require.NoError(t, Swap(dir, final))

	assert.Equal(t, "new", readFile(t, filepath.Join(final, "index.db")))
	assert.NoDirExists(t, dir)
	assert.NoDirExists(t, final+backupSuffix)
}

func TestSwap_NoExisting(t *testing.T) {
	final := filepath.Join(t.TempDir(), "companies")

	dir, err := Dir(final)
	require.NoError(t, err)
	writeFile(t, dir, "index.db", "new")

	require.NoError(t, Swap(dir, final))
	assert.Equal(t, "new", readFile(t, filepath.Join(final, "index.db")))
}

func TestSwap_MissingStagingRestoresExisting(t *testing.T) {
	final := filepath.Join(t.TempDir(), "base")
	writeFile(t, final, "index.db", "old")

	err := Swap(final+stagingSuffix, final)

	require.Error(t, err)
	assert.Equal(t, "old", readFile(t, filepath.Join(final, "index.db")))
}

func TestDiscard(t *testing.T) {
	final := filepath.Join(t.TempDir(), "base")
	dir, err := Dir(final)
	require.NoError(t, err)
	writeFile(t, dir, "index.db", "partial")

	Discard(dir)
	assert.NoDirExists(t, dir)
}
