package executor

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunShell_CapturesStdout(t *testing.T) {
	e := New(t.TempDir())

	res, err := e.RunShell(context.Background(), "echo hello", 10*time.Second)

	require.NoError(t, err)
	assert.Equal(t, "hello\n", res.Stdout)
	assert.Equal(t, 0, res.ExitCode)
}

func TestRunShell_CapturesStderrAndExitCode(t *testing.T) {
	e := New(t.TempDir())

	res, err := e.RunShell(context.Background(), "echo oops >&2; exit 3", 10*time.Second)

	require.NoError(t, err)
	assert.Equal(t, "oops\n", res.Stderr)
	assert.Equal(t, 3, res.ExitCode)
}

func TestRunShell_FastExitNeverLosesOutput(t *testing.T) {
	e := New(t.TempDir())

	// Repeated fast-exiting commands: output written just before exit must
	// always be captured, every run.
	for i := 0; i < 25; i++ {
		res, err := e.RunShell(context.Background(), "echo hello; echo oops >&2; exit 3", 10*time.Second)
		require.NoError(t, err)
		assert.Equal(t, "hello\n", res.Stdout, "run %d", i)
		assert.Equal(t, "oops\n", res.Stderr, "run %d", i)
		assert.Equal(t, 3, res.ExitCode, "run %d", i)
	}
}

func TestRunShell_RunsInWorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	e := New(dir)

	res, err := e.RunShell(context.Background(), "pwd", 10*time.Second)

	require.NoError(t, err)
	assert.Contains(t, strings.TrimSpace(res.Stdout), dir)
}

func TestRunShell_TimeoutKillsProcess(t *testing.T) {
	e := New(t.TempDir())

	start := time.Now()
	_, err := e.RunShell(context.Background(), "sleep 30", 300*time.Millisecond)

	assert.ErrorIs(t, err, ErrTimeout)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestRunShell_TruncatesLongOutputWithTrueSizeMarker(t *testing.T) {
	e := New(t.TempDir())

	// 20000 chars of output, over the 10000-char cap
	res, err := e.RunShell(context.Background(), `head -c 20000 /dev/zero | tr '\0' 'x'`, 10*time.Second)

	require.NoError(t, err)
	assert.Contains(t, res.Stdout, "output truncated, total size: 20000 bytes")
	assert.True(t, strings.HasPrefix(res.Stdout, strings.Repeat("x", 100)))
	assert.LessOrEqual(t, len(res.Stdout), MaxStreamChars+100)
}

func TestRunShell_ShortOutputNotMarked(t *testing.T) {
	e := New(t.TempDir())

	res, err := e.RunShell(context.Background(), "echo short", 10*time.Second)

	require.NoError(t, err)
	assert.NotContains(t, res.Stdout, "truncated")
}

func TestRun_EmptyArgv(t *testing.T) {
	e := New(t.TempDir())
	_, err := e.Run(context.Background(), nil, nil, time.Second)
	assert.Error(t, err)
}

func TestRun_ContextCancellation(t *testing.T) {
	e := New(t.TempDir())
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(100 * time.Millisecond)
		cancel()
	}()

	_, err := e.RunShell(ctx, "sleep 30", time.Minute)
	assert.ErrorIs(t, err, context.Canceled)
}
