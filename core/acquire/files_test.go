package acquire

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindNewAudioFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "old.mp3"), []byte("x"), 0644))

	before := snapshotAudioFiles(dir)
	require.Len(t, before, 1)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "fresh.mp3"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))

	assert.Equal(t, filepath.Join(dir, "fresh.mp3"), findNewAudioFile(dir, before))
}

func TestFindNewAudioFileFallsBackToNewest(t *testing.T) {
	dir := t.TempDir()
	oldPath := filepath.Join(dir, "a.mp3")
	newPath := filepath.Join(dir, "b.mp3")
	require.NoError(t, os.WriteFile(oldPath, []byte("x"), 0644))
	require.NoError(t, os.WriteFile(newPath, []byte("x"), 0644))

	past := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(oldPath, past, past))

	// Both files predate the snapshot; the most recently modified one wins.
	before := snapshotAudioFiles(dir)
	assert.Equal(t, newPath, findNewAudioFile(dir, before))
}

func TestFindNewAudioFileEmptyDir(t *testing.T) {
	dir := t.TempDir()
	assert.Empty(t, findNewAudioFile(dir, snapshotAudioFiles(dir)))
}

func TestCleanupGlob(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "x.mp3.part"), nil, 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "x.ytdl"), nil, 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "keep.mp3"), nil, 0644))

	cleanupGlob(filepath.Join(dir, "x.*"))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "keep.mp3", entries[0].Name())
}
