// Package python implements the python_run tool: syntax pre-check, then
// execution with a timeout.
package python

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/Cyclone1070/lmcode/internal/security"
	"github.com/Cyclone1070/lmcode/internal/tool"
	"github.com/Cyclone1070/lmcode/internal/tool/service/executor"
)

// execTimeout bounds script execution.
const execTimeout = 15 * time.Second

// syntaxChecker compiles the script without executing it and reports any
// syntax error as JSON on stdout, mirroring the interpreter's own error
// fields (message, line, column offset, offending source line).
const syntaxChecker = `import json, sys
src = open(sys.argv[1]).read()
try:
    compile(src, sys.argv[1], "exec")
except SyntaxError as e:
    print(json.dumps({"msg": str(e), "line": e.lineno, "offset": e.offset, "text": e.text}))
    sys.exit(1)
`

type RunRequest struct {
	Path string `mapstructure:"path"`
	Code string `mapstructure:"code"`
}

// syntaxError is the parsed checker output.
type syntaxError struct {
	Msg    string  `json:"msg"`
	Line   *int    `json:"line"`
	Offset *int    `json:"offset"`
	Text   *string `json:"text"`
}

// RunTool executes a Python script given inline code or a workspace path.
type RunTool struct {
	policy   *security.Policy
	executor *executor.Executor
}

func NewRunTool(policy *security.Policy, exec *executor.Executor) *RunTool {
	if policy == nil {
		panic("python.NewRunTool: policy is required")
	}
	if exec == nil {
		panic("python.NewRunTool: executor is required")
	}
	return &RunTool{policy: policy, executor: exec}
}

func (t *RunTool) Declaration() tool.Declaration {
	return tool.Declaration{
		Name:        "python_run",
		Description: "Execute a Python script",
		Params: map[string]tool.ParamSpec{
			"path": {Type: "string", Description: "Path to a Python script in the workspace"},
			"code": {Type: "string", Description: "Inline Python code to run instead of a file"},
		},
	}
}

func (t *RunTool) Run(ctx context.Context, params map[string]any) tool.Result {
	req, err := tool.DecodeParams[RunRequest](params)
	if err != nil {
		return tool.Errorf("%v", err)
	}
	if req.Path == "" && req.Code == "" {
		return tool.Errorf("Missing required parameter: either 'path' or 'code'")
	}

	python, err := findInterpreter()
	if err != nil {
		return tool.Errorf("Python executable not found.")
	}

	scriptPath := req.Path
	if req.Code != "" {
		tempFile, err := os.CreateTemp("", "lmcode-*.py")
		if err != nil {
			return tool.Errorf("%v", err)
		}
		// Temp file is removed even when the check or run fails.
		defer os.Remove(tempFile.Name())

		if _, err := tempFile.WriteString(req.Code); err != nil {
			tempFile.Close()
			return tool.Errorf("%v", err)
		}
		tempFile.Close()
		scriptPath = tempFile.Name()
	} else {
		scriptPath, err = t.policy.SanitizePath(req.Path, security.OpRead)
		if err != nil {
			return tool.Errorf("%v", err)
		}
		info, statErr := os.Stat(scriptPath)
		if statErr != nil {
			return tool.Errorf("Script file not found: %s", scriptPath)
		}
		if info.IsDir() {
			return tool.Errorf("Not a file: %s", scriptPath)
		}
	}

	if result := t.checkSyntax(ctx, python, scriptPath, req); result != nil {
		return result
	}

	res, err := t.executor.Run(ctx, []string{python, scriptPath}, nil, execTimeout)
	if err != nil {
		if errors.Is(err, executor.ErrTimeout) {
			return tool.Errorf("Python script execution timed out after %d seconds.", int(execTimeout.Seconds()))
		}
		return tool.Errorf("%v", err)
	}

	if res.ExitCode == 0 {
		return tool.Success(map[string]any{
			"returncode":  res.ExitCode,
			"stdout":      res.Stdout,
			"script_path": scriptPath,
		})
	}
	return tool.Result{
		"status":      tool.StatusError,
		"returncode":  res.ExitCode,
		"stderr":      res.Stderr,
		"stdout":      res.Stdout,
		"script_path": scriptPath,
	}
}

// checkSyntax compiles the script without running it. A nil return means the
// script parsed cleanly; otherwise the structured syntax-error result is
// returned and the script is never executed.
func (t *RunTool) checkSyntax(ctx context.Context, python, scriptPath string, req RunRequest) tool.Result {
	res, err := t.executor.Run(ctx, []string{python, "-c", syntaxChecker, scriptPath}, nil, execTimeout)
	if err != nil || res == nil {
		return nil // checker itself failed; fall through to execution
	}
	if res.ExitCode == 0 {
		return nil
	}

	var se syntaxError
	if jsonErr := json.Unmarshal([]byte(res.Stdout), &se); jsonErr != nil {
		return nil
	}

	var message string
	if req.Code != "" {
		message = fmt.Sprintf("Python syntax error: %s", se.Msg)
	} else {
		message = fmt.Sprintf("Python syntax error in file %s: %s", scriptPath, se.Msg)
	}

	result := tool.Result{
		"status": tool.StatusError,
		"error":  message,
		"line":   se.Line,
		"offset": se.Offset,
		"text":   se.Text,
	}
	if req.Code != "" {
		result["code"] = req.Code
	}
	return result
}

func findInterpreter() (string, error) {
	if path, err := exec.LookPath("python3"); err == nil {
		return path, nil
	}
	return exec.LookPath("python")
}
