package acquire

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanupIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.mp3")
	require.NoError(t, os.WriteFile(path, []byte("data"), 0644))

	Cleanup(path)
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	// Second call on the already-removed path must not panic or error.
	assert.NotPanics(t, func() { Cleanup(path) })
	assert.NotPanics(t, func() { Cleanup("") })
}

func TestCleanupDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "session-x")
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.mp3"), []byte("x"), 0644))

	CleanupDir(dir)
	_, err := os.Stat(dir)
	assert.True(t, os.IsNotExist(err))

	assert.NotPanics(t, func() { CleanupDir(dir) })
}
