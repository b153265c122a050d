package batch

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Cyclone1070/lmcode/internal/tool"
)

type fakeRunner struct {
	calls   []string
	results map[string]tool.Result
}

func (f *fakeRunner) Execute(ctx context.Context, name string, params map[string]any) tool.Result {
	f.calls = append(f.calls, name)
	if res, ok := f.results[name]; ok {
		return res
	}
	return tool.Success(nil)
}

type fakeBash struct {
	commands []string
	result   tool.Result
}

func (f *fakeBash) Run(ctx context.Context, command string) tool.Result {
	f.commands = append(f.commands, command)
	return f.result
}

func newTestTool() (*Tool, *fakeRunner, *fakeBash) {
	runner := &fakeRunner{results: map[string]tool.Result{}}
	bash := &fakeBash{result: tool.Success(map[string]any{"stdout": "ok"})}
	return New(runner, bash), runner, bash
}

func TestRun_DispatchesEachInvocation(t *testing.T) {
	bt, runner, _ := newTestTool()
	runner.results["file_read"] = tool.Success(map[string]any{"content": "data"})

	res := bt.Run(context.Background(), map[string]any{
		"description": "read two files",
		"invocations": []any{
			map[string]any{"tool_name": "file_read", "input": map[string]any{"path": "a.txt"}},
			map[string]any{"tool_name": "file_list", "input": map[string]any{}},
		},
	})

	require.False(t, res.IsError())
	assert.Equal(t, "read two files", res["description"])
	assert.Equal(t, 2, res["count"])
	assert.Equal(t, []string{"file_read", "file_list"}, runner.calls)

	results := res["results"].([]map[string]any)
	require.Len(t, results, 2)
	assert.Equal(t, "file_read", results[0]["tool_name"])
	inner := results[0]["result"].(tool.Result)
	assert.Equal(t, "data", inner["content"])
}

func TestRun_BashInvocationUsesShellRunner(t *testing.T) {
	bt, runner, bash := newTestTool()

	res := bt.Run(context.Background(), map[string]any{
		"invocations": []any{
			map[string]any{"tool_name": "bash", "input": map[string]any{"command": "ls -la"}},
		},
	})

	require.False(t, res.IsError())
	assert.Equal(t, []string{"ls -la"}, bash.commands)
	assert.Empty(t, runner.calls, "bash must not go through the registry")
}

func TestRun_BashMissingCommand(t *testing.T) {
	bt, _, bash := newTestTool()

	res := bt.Run(context.Background(), map[string]any{
		"invocations": []any{
			map[string]any{"tool_name": "bash", "input": map[string]any{}},
		},
	})

	require.False(t, res.IsError(), "batch itself succeeds")
	results := res["results"].([]map[string]any)
	inner := results[0]["result"].(tool.Result)
	assert.True(t, inner.IsError())
	assert.Contains(t, inner.ErrorMessage(), "Missing required parameter: command")
	assert.Empty(t, bash.commands)
}

func TestRun_MissingInvocations(t *testing.T) {
	bt, _, _ := newTestTool()

	res := bt.Run(context.Background(), map[string]any{})

	require.True(t, res.IsError())
	assert.Equal(t, "Missing required parameter: invocations", res.ErrorMessage())
}

func TestRun_InvocationsNotAList(t *testing.T) {
	bt, _, _ := newTestTool()

	res := bt.Run(context.Background(), map[string]any{"invocations": "not a list"})

	require.True(t, res.IsError())
	assert.Equal(t, "Parameter 'invocations' must be a list", res.ErrorMessage())
}

func TestRun_BadEntriesDoNotStopTheBatch(t *testing.T) {
	bt, runner, _ := newTestTool()

	res := bt.Run(context.Background(), map[string]any{
		"invocations": []any{
			"just a string",
			map[string]any{"input": map[string]any{}},
			map[string]any{"tool_name": "file_list"},
		},
	})

	require.False(t, res.IsError())
	assert.Equal(t, 3, res["count"])

	results := res["results"].([]map[string]any)
	assert.Equal(t, "Invocation 0 is not a valid object", results[0]["error"])
	assert.Equal(t, "Missing 'tool_name' in invocation 1", results[1]["error"])
	assert.Equal(t, "file_list", results[2]["tool_name"])
	assert.Equal(t, []string{"file_list"}, runner.calls)
}

func TestRun_DefaultDescription(t *testing.T) {
	bt, _, _ := newTestTool()

	res := bt.Run(context.Background(), map[string]any{"invocations": []any{}})

	require.False(t, res.IsError())
	assert.Equal(t, "Batch operation", res["description"])
	assert.Equal(t, 0, res["count"])
}
