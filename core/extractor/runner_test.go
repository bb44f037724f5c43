package extractor

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func shCommand(script string) Command {
	return Command{Path: "/bin/sh", Args: []string{"-c", script}}
}

func TestRunSuccessWithArtifact(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "abc.mp3")

	cmd := shCommand("echo done; touch " + out)
	cmd.OutputGlob = filepath.Join(dir, "abc.*")
	cmd.Timeout = 5 * time.Second

	res := NewExecRunner().Run(context.Background(), cmd)
	assert.True(t, res.Success)
	assert.False(t, res.TimedOut)
	assert.Equal(t, out, res.ProducedFile)
	assert.Contains(t, res.Stdout, "done")
}

func TestRunCleanExitWithoutArtifactFails(t *testing.T) {
	dir := t.TempDir()

	cmd := shCommand("echo nothing to do")
	cmd.OutputGlob = filepath.Join(dir, "abc.*")

	res := NewExecRunner().Run(context.Background(), cmd)
	assert.False(t, res.Success, "exit 0 without the expected artifact is a failure")
	assert.Empty(t, res.ProducedFile)
}

func TestRunPartialFileIsNotAnArtifact(t *testing.T) {
	dir := t.TempDir()
	part := filepath.Join(dir, "abc.mp3.part")

	cmd := shCommand("touch " + part)
	cmd.OutputGlob = filepath.Join(dir, "abc.*")

	res := NewExecRunner().Run(context.Background(), cmd)
	assert.False(t, res.Success)
}

func TestRunNonZeroExit(t *testing.T) {
	cmd := shCommand("echo 'HTTP Error 403' >&2; exit 1")

	res := NewExecRunner().Run(context.Background(), cmd)
	assert.False(t, res.Success)
	assert.False(t, res.TimedOut)
	assert.Contains(t, res.Stderr, "403")
}

func TestRunTimeout(t *testing.T) {
	cmd := shCommand("sleep 5")
	cmd.Timeout = 50 * time.Millisecond

	start := time.Now()
	res := NewExecRunner().Run(context.Background(), cmd)
	assert.False(t, res.Success)
	assert.True(t, res.TimedOut)
	assert.Less(t, time.Since(start), 3*time.Second, "timeout must kill the process")
}

func TestRunStreamsStdoutLines(t *testing.T) {
	cmd := shCommand(`printf 'Attempt 1: Android Client\n[download]  12.5%% of 3MiB\n'`)

	var lines []string
	cmd.OnStdoutLine = func(line string) { lines = append(lines, line) }

	res := NewExecRunner().Run(context.Background(), cmd)
	assert.True(t, res.Success)
	require.Len(t, lines, 2)
	assert.Equal(t, "Attempt 1: Android Client", lines[0])
	assert.Contains(t, res.Stdout, "12.5%")
}

func TestRunMissingExecutable(t *testing.T) {
	cmd := Command{Path: "/nonexistent/extractor-binary"}
	res := NewExecRunner().Run(context.Background(), cmd)
	assert.False(t, res.Success)
}

func TestFindArtifactSkipsInFlightFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "x.mp3.part"), nil, 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "x.ytdl"), nil, 0644))
	assert.Empty(t, findArtifact(filepath.Join(dir, "x.*")))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "x.mp3"), nil, 0644))
	assert.Equal(t, filepath.Join(dir, "x.mp3"), findArtifact(filepath.Join(dir, "x.*")))
}
