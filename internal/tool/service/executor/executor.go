// Package executor runs subprocesses with wall-clock timeouts and bounded
// output capture.
package executor

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"time"
)

// ErrTimeout is returned when a command exceeds its wall-clock limit. The
// process is killed before the error is returned.
var ErrTimeout = errors.New("command execution timed out")

// MaxStreamChars is the per-stream capture limit. Output beyond it is
// dropped and replaced by a marker noting the true size.
const MaxStreamChars = 10000

// Result is the captured outcome of a subprocess run. Stdout and Stderr are
// truncated independently at MaxStreamChars.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Executor runs commands under a working directory.
type Executor struct {
	workingDir string
}

// New creates an Executor rooted at the given working directory.
func New(workingDir string) *Executor {
	if workingDir == "" {
		panic("executor.New: working directory required")
	}
	return &Executor{workingDir: workingDir}
}

// RunShell executes a command line through the shell with a timeout.
func (e *Executor) RunShell(ctx context.Context, command string, timeout time.Duration) (*Result, error) {
	return e.Run(ctx, []string{"/bin/sh", "-c", command}, nil, timeout)
}

// Run executes argv with a timeout, killing the process when the limit is
// reached. env of nil inherits the parent environment.
func (e *Executor) Run(ctx context.Context, argv []string, env []string, timeout time.Duration) (*Result, error) {
	if len(argv) == 0 {
		return nil, os.ErrInvalid
	}

	stdoutCollector := newCollector(MaxStreamChars, "\n... (output truncated, total size: %d bytes)")
	stderrCollector := newCollector(MaxStreamChars, "\n... (error output truncated, total size: %d bytes)")

	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Dir = e.workingDir
	cmd.Env = env
	cmd.Stdin = nil
	// Collectors are handed to os/exec directly: Wait only returns once the
	// internal output copying is done, so nothing written before process exit
	// can be lost.
	cmd.Stdout = stdoutCollector
	cmd.Stderr = stderrCollector

	if err := cmd.Start(); err != nil {
		return nil, err
	}

	done := make(chan error, 1)
	go func() {
		done <- cmd.Wait()
	}()

	var execErr error
	select {
	case err := <-done:
		execErr = err
	case <-ctx.Done():
		_ = cmd.Process.Kill()
		<-done
		execErr = ctx.Err()
	case <-time.After(timeout):
		_ = cmd.Process.Kill()
		<-done
		execErr = ErrTimeout
	}

	if errors.Is(execErr, ErrTimeout) || errors.Is(execErr, context.Canceled) || errors.Is(execErr, context.DeadlineExceeded) {
		return nil, execErr
	}

	exitCode := 0
	if execErr != nil {
		var exitErr *exec.ExitError
		if errors.As(execErr, &exitErr) {
			exitCode = exitErr.ExitCode()
		} else {
			return nil, execErr
		}
	}

	return &Result{
		Stdout:   stdoutCollector.String(),
		Stderr:   stderrCollector.String(),
		ExitCode: exitCode,
	}, nil
}
