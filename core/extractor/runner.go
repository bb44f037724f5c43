package extractor

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"Bt1QDL/logger"
)

// Command describes one invocation of an external extraction executable.
type Command struct {
	Path string
	Args []string
	Dir  string

	// OutputGlob, when set, names the artifact the executable is expected to
	// produce. Success then requires both a zero exit code and a matching
	// file on disk; some extractors exit cleanly while producing nothing.
	OutputGlob string

	Timeout time.Duration

	// OnStdoutLine, when set, is called for every stdout line while the
	// process runs. Used to surface incremental progress markers.
	OnStdoutLine func(line string)
}

// Result is the uniform outcome of one attempt.
type Result struct {
	Success      bool
	TimedOut     bool
	Stdout       string
	Stderr       string
	ProducedFile string
}

// Runner invokes external extraction executables.
type Runner interface {
	Run(ctx context.Context, cmd Command) Result
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

// NewExecRunner creates a Runner backed by real processes.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{}
}

// Run spawns the process, captures combined output and inspects exit code
// plus expected output artifact. A timeout kills the process and reports an
// ordinary failure, never an error the caller has to distinguish.
func (r *ExecRunner) Run(ctx context.Context, cmd Command) Result {
	runCtx := ctx
	var cancel context.CancelFunc
	if cmd.Timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, cmd.Timeout)
		defer cancel()
	}

	c := exec.CommandContext(runCtx, cmd.Path, cmd.Args...)
	if cmd.Dir != "" {
		c.Dir = cmd.Dir
	}

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	c.Stderr = &stderr

	var runErr error
	if cmd.OnStdoutLine != nil {
		pipe, err := c.StdoutPipe()
		if err != nil {
			logger.Error("extractor stdout pipe failed", logger.ErrorField(err))
			return Result{Stderr: err.Error()}
		}
		if err := c.Start(); err != nil {
			logger.Warn("extractor start failed",
				logger.String("path", cmd.Path),
				logger.ErrorField(err))
			return Result{Stderr: err.Error()}
		}
		scanLines(pipe, &stdout, cmd.OnStdoutLine)
		runErr = c.Wait()
	} else {
		c.Stdout = &stdout
		runErr = c.Run()
	}

	res := Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		res.TimedOut = true
		logger.Warn("extractor attempt timed out",
			logger.String("path", cmd.Path),
			logger.Duration("timeout", cmd.Timeout))
		return res
	}
	if runErr != nil {
		logger.Debug("extractor attempt failed",
			logger.String("path", cmd.Path),
			logger.ErrorField(runErr))
		return res
	}

	// Exit 0 alone is not proof of success when an artifact is expected.
	if cmd.OutputGlob != "" {
		produced := findArtifact(cmd.OutputGlob)
		if produced == "" {
			logger.Debug("extractor exited cleanly but produced no artifact",
				logger.String("path", cmd.Path),
				logger.String("glob", cmd.OutputGlob))
			return res
		}
		res.ProducedFile = produced
	}

	res.Success = true
	return res
}

// findArtifact resolves the expected output glob to a finished file.
// In-flight ".part" files do not count as artifacts.
func findArtifact(glob string) string {
	matches, err := filepath.Glob(glob)
	if err != nil {
		return ""
	}
	for _, m := range matches {
		if strings.HasSuffix(m, ".part") || strings.HasSuffix(m, ".ytdl") {
			continue
		}
		return m
	}
	return ""
}

func scanLines(r io.Reader, capture *bytes.Buffer, onLine func(string)) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		capture.WriteString(line)
		capture.WriteByte('\n')
		onLine(line)
	}
}
