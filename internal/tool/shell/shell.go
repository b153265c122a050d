// Package shell runs model-issued shell commands under the security policy.
package shell

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/Cyclone1070/lmcode/internal/security"
	"github.com/Cyclone1070/lmcode/internal/tool"
	"github.com/Cyclone1070/lmcode/internal/tool/service/executor"
)

// DefaultTimeout bounds a single shell command.
const DefaultTimeout = 30 * time.Second

// Runner executes shell command lines inside the working directory.
type Runner struct {
	policy   *security.Policy
	executor *executor.Executor
	timeout  time.Duration
	logger   *zap.Logger
}

// NewRunner creates a Runner with injected dependencies.
func NewRunner(policy *security.Policy, exec *executor.Executor, logger *zap.Logger) *Runner {
	if policy == nil {
		panic("shell.NewRunner: policy is required")
	}
	if exec == nil {
		panic("shell.NewRunner: executor is required")
	}
	if logger == nil {
		panic("shell.NewRunner: logger is required")
	}
	return &Runner{
		policy:   policy,
		executor: exec,
		timeout:  DefaultTimeout,
		logger:   logger,
	}
}

// Run validates the command against the policy, executes it and returns a
// structured result. Failures, denials and timeouts all come back as
// error-status results.
func (r *Runner) Run(ctx context.Context, command string) tool.Result {
	if decision := r.policy.CheckCommand(command); !decision.Allowed {
		r.logger.Warn("command rejected",
			zap.String("command", command), zap.String("reason", decision.Reason))
		return tool.Errorf("Command not allowed: %s", decision.Reason)
	}

	r.logger.Info("executing command", zap.String("command", command))

	res, err := r.executor.RunShell(ctx, command, r.timeout)
	if err != nil {
		if errors.Is(err, executor.ErrTimeout) {
			r.logger.Warn("command timed out", zap.String("command", command))
			return tool.Errorf("Command execution timed out after %d seconds.", int(r.timeout.Seconds()))
		}
		r.logger.Error("command failed to run", zap.String("command", command), zap.Error(err))
		return tool.Errorf("Error executing command: %v", err)
	}

	status := tool.StatusSuccess
	if res.ExitCode != 0 {
		status = tool.StatusError
		r.logger.Warn("command failed",
			zap.String("command", command), zap.Int("return_code", res.ExitCode))
	}

	return tool.Result{
		"status":      status,
		"command":     command,
		"return_code": res.ExitCode,
		"stdout":      res.Stdout,
		"stderr":      res.Stderr,
	}
}
