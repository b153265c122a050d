// Package processor turns a model response into executed actions: shell
// commands, tool calls and bare code blocks, each stage gated by
// configuration.
package processor

import (
	"context"
	"encoding/json"
	"regexp"

	"go.uber.org/zap"

	"github.com/Cyclone1070/lmcode/internal/config"
	"github.com/Cyclone1070/lmcode/internal/extract"
	"github.com/Cyclone1070/lmcode/internal/security"
	"github.com/Cyclone1070/lmcode/internal/tool"
	"github.com/Cyclone1070/lmcode/internal/tool/service/executor"
)

// Kind tags a processed result.
type Kind string

const (
	KindBash         Kind = "bash"
	KindTool         Kind = "tool"
	KindCodeExecuted Kind = "code_executed"
	KindCodeSaved    Kind = "code_saved"
)

// Result is one executed action. Fields are populated per Kind: bash uses
// Command+Result, tool uses Tool+Params+Result, code_executed uses
// Language+Success+Output/Error, code_saved uses Language+Path.
type Result struct {
	Kind     Kind
	Command  string
	Tool     string
	Params   map[string]any
	Result   tool.Result
	Language string
	Success  bool
	Output   string
	Error    string
	Path     string
}

// CommandRunner executes one shell command line.
type CommandRunner interface {
	Run(ctx context.Context, command string) tool.Result
}

// ToolRunner dispatches a tool call by name.
type ToolRunner interface {
	Execute(ctx context.Context, name string, params map[string]any) tool.Result
}

// Processor runs the extraction pipeline over response text. The config is
// held by pointer so runtime toggles from the UI take effect immediately.
type Processor struct {
	cfg      *config.ProcessorConfig
	policy   *security.Policy
	shell    CommandRunner
	tools    ToolRunner
	executor *executor.Executor
	console  Console
	logger   *zap.Logger
}

func New(cfg *config.ProcessorConfig, policy *security.Policy, shell CommandRunner, tools ToolRunner, exec *executor.Executor, console Console, logger *zap.Logger) *Processor {
	if cfg == nil {
		panic("processor.New: config is required")
	}
	if policy == nil {
		panic("processor.New: policy is required")
	}
	if shell == nil {
		panic("processor.New: shell runner is required")
	}
	if tools == nil {
		panic("processor.New: tool runner is required")
	}
	if exec == nil {
		panic("processor.New: executor is required")
	}
	if logger == nil {
		panic("processor.New: logger is required")
	}
	if console == nil {
		console = NopConsole{}
	}
	return &Processor{
		cfg:      cfg,
		policy:   policy,
		shell:    shell,
		tools:    tools,
		executor: exec,
		console:  console,
		logger:   logger,
	}
}

// Process executes every action found in the response text. Stages run in a
// fixed order (shell, tools, code blocks) and each is skipped entirely when
// its gate is off. The response text itself is never modified.
func (p *Processor) Process(ctx context.Context, responseText string) []Result {
	var results []Result

	if p.policy.BashEnabled() {
		results = append(results, p.processCommands(ctx, responseText)...)
	}
	if p.policy.ToolsEnabled() {
		results = append(results, p.processToolCalls(ctx, responseText)...)
	}
	if p.cfg.AutoExtractCode {
		results = append(results, p.processCodeBlocks(ctx, responseText)...)
	}

	return results
}

func (p *Processor) processCommands(ctx context.Context, text string) []Result {
	var results []Result
	for _, command := range extract.Commands(text) {
		p.console.Infof("Executing bash command: %s", command)
		p.logger.Info("executing bash command", zap.String("command", command))

		res := p.shell.Run(ctx, command)
		if res.IsError() {
			p.console.Errorf("Command execution failed: %s", res.ErrorMessage())
			if stderr, _ := res["stderr"].(string); stderr != "" {
				p.console.Plainf("Error output:\n%s", stderr)
			}
		} else {
			p.console.Successf("Command executed successfully")
			if stdout, _ := res["stdout"].(string); stdout != "" {
				p.console.Plainf("Output:\n%s", stdout)
			}
		}

		results = append(results, Result{Kind: KindBash, Command: command, Result: res})
	}
	return results
}

func (p *Processor) processToolCalls(ctx context.Context, text string) []Result {
	var results []Result
	for _, call := range extract.ToolCalls(text) {
		p.console.Infof("Executing tool: %s", call.Tool)
		if encoded, err := json.MarshalIndent(call.Params, "", "  "); err == nil {
			p.console.Plainf("Parameters: %s", encoded)
		}
		p.logger.Info("executing tool", zap.String("tool", call.Tool))

		if call.Tool == "python_run" {
			if code, ok := call.Params["code"].(string); ok {
				call.Params["code"] = p.repairPythonCode(code)
			}
		}

		res := p.tools.Execute(ctx, call.Tool, call.Params)
		if res.IsError() {
			p.console.Errorf("Tool execution failed: %s", res.ErrorMessage())
			p.logger.Error("tool execution failed",
				zap.String("tool", call.Tool), zap.String("error", res.ErrorMessage()))
		} else {
			p.console.Successf("Tool executed successfully")
			p.previewToolResult(res)
		}

		results = append(results, Result{
			Kind:   KindTool,
			Tool:   call.Tool,
			Params: call.Params,
			Result: res,
		})
	}
	return results
}

var (
	starredForRe   = regexp.MustCompile(`for \* in`)
	starredIdentRe = regexp.MustCompile(`([a-zA-Z0-9_]+)\*([a-zA-Z0-9_]+)`)
)

// repairPythonCode fixes asterisk artifacts models leave in generated Python
// (stray `for * in` loops, identifiers split by `*`). The console marker is
// only emitted when the code actually changed.
func (p *Processor) repairPythonCode(code string) string {
	fixed := starredForRe.ReplaceAllString(code, "for _ in")
	fixed = starredIdentRe.ReplaceAllString(fixed, "${1}_${2}")
	if fixed != code {
		p.console.Infof("Fixed potential syntax issues in Python code")
		p.logger.Info("fixed potential syntax issues in python code")
	}
	return fixed
}

// previewToolResult echoes the result with any long content field shortened.
const previewContentLimit = 500

func (p *Processor) previewToolResult(res tool.Result) {
	display := make(map[string]any, len(res))
	for key, value := range res {
		display[key] = value
	}
	if content, ok := res["content"].(string); ok && len(content) > previewContentLimit {
		display["content"] = content[:previewContentLimit] + "... (content truncated)"
	}
	if encoded, err := json.MarshalIndent(display, "", "  "); err == nil {
		p.console.Plainf("Result: %s", encoded)
	}
}
