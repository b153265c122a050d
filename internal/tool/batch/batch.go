// Package batch implements the batch tool, which runs several tool calls in
// one request.
package batch

import (
	"context"
	"fmt"

	"github.com/Cyclone1070/lmcode/internal/tool"
)

// Runner dispatches a single tool call by name.
type Runner interface {
	Execute(ctx context.Context, name string, params map[string]any) tool.Result
}

// BashRunner executes one shell command line.
type BashRunner interface {
	Run(ctx context.Context, command string) tool.Result
}

// Tool executes a list of tool invocations sequentially. One failing
// invocation does not stop the rest; each entry carries its own result.
type Tool struct {
	runner Runner
	bash   BashRunner
}

func New(runner Runner, bash BashRunner) *Tool {
	if runner == nil {
		panic("batch.New: runner is required")
	}
	if bash == nil {
		panic("batch.New: bash runner is required")
	}
	return &Tool{runner: runner, bash: bash}
}

func (t *Tool) Declaration() tool.Declaration {
	return tool.Declaration{
		Name:        "batch",
		Description: "Execute multiple tools in a single batch",
		Params: map[string]tool.ParamSpec{
			"invocations": {Type: "array", Required: true, Description: "List of {tool_name, input} objects"},
			"description": {Type: "string", Description: "Label for the batch"},
		},
	}
}

func (t *Tool) Run(ctx context.Context, params map[string]any) tool.Result {
	rawInvocations, ok := params["invocations"]
	if !ok {
		return tool.Errorf("Missing required parameter: invocations")
	}
	invocations, ok := rawInvocations.([]any)
	if !ok {
		return tool.Errorf("Parameter 'invocations' must be a list")
	}

	description, _ := params["description"].(string)
	if description == "" {
		description = "Batch operation"
	}

	results := make([]map[string]any, 0, len(invocations))
	for idx, rawInvocation := range invocations {
		invocation, ok := rawInvocation.(map[string]any)
		if !ok {
			results = append(results, map[string]any{
				"status": tool.StatusError,
				"error":  invalidInvocation(idx),
			})
			continue
		}

		toolName, _ := invocation["tool_name"].(string)
		if toolName == "" {
			results = append(results, map[string]any{
				"status": tool.StatusError,
				"error":  missingToolName(idx),
			})
			continue
		}

		input, _ := invocation["input"].(map[string]any)
		if input == nil {
			input = map[string]any{}
		}

		var toolResult tool.Result
		if toolName == "bash" {
			toolResult = t.runBash(ctx, input)
		} else {
			toolResult = t.runner.Execute(ctx, toolName, input)
		}

		results = append(results, map[string]any{
			"tool_name": toolName,
			"result":    toolResult,
		})
	}

	return tool.Success(map[string]any{
		"description": description,
		"results":     results,
		"count":       len(results),
	})
}

func (t *Tool) runBash(ctx context.Context, input map[string]any) tool.Result {
	command, _ := input["command"].(string)
	if command == "" {
		return tool.Errorf("Missing required parameter: command")
	}
	return t.bash.Run(ctx, command)
}

func invalidInvocation(idx int) string {
	return fmt.Sprintf("Invocation %d is not a valid object", idx)
}

func missingToolName(idx int) string {
	return fmt.Sprintf("Missing 'tool_name' in invocation %d", idx)
}
