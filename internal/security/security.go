// Package security decides whether shell commands, filesystem paths and URLs
// are permitted under the current safety configuration.
package security

import (
	"go.uber.org/zap"

	"github.com/Cyclone1070/lmcode/internal/config"
)

// Operation classifies a filesystem access for path checks.
type Operation string

const (
	OpRead    Operation = "read"
	OpWrite   Operation = "write"
	OpExecute Operation = "execute"
)

// Decision is the outcome of a policy check. Reason is empty when allowed.
type Decision struct {
	Allowed bool
	Reason  string
}

// Allow returns an allowing decision.
func Allow() Decision {
	return Decision{Allowed: true}
}

// Deny returns a denying decision with the given reason.
func Deny(reason string) Decision {
	return Decision{Allowed: false, Reason: reason}
}

// Policy evaluates safety checks against static rule sets. The mode flags
// can be toggled at runtime by the UI; the rule sets themselves never change.
type Policy struct {
	safeMode    bool
	enableBash  bool
	enableTools bool
	workingDir  string
	logger      *zap.Logger
}

// NewPolicy creates a Policy from the security configuration.
func NewPolicy(cfg config.SecurityConfig, logger *zap.Logger) *Policy {
	if logger == nil {
		panic("NewPolicy: logger cannot be nil")
	}
	return &Policy{
		safeMode:    cfg.SafeMode,
		enableBash:  cfg.EnableBash,
		enableTools: cfg.EnableTools,
		workingDir:  cfg.WorkingDirectory,
		logger:      logger,
	}
}

// SafeMode reports whether restrictive checks are active.
func (p *Policy) SafeMode() bool { return p.safeMode }

// BashEnabled reports whether shell execution is permitted at all.
func (p *Policy) BashEnabled() bool { return p.enableBash }

// ToolsEnabled reports whether tool execution is permitted at all.
func (p *Policy) ToolsEnabled() bool { return p.enableTools }

// WorkingDirectory returns the directory write and execute operations are
// confined to under safe mode.
func (p *Policy) WorkingDirectory() string { return p.workingDir }

// SetSafeMode toggles the restrictive checks at runtime.
func (p *Policy) SetSafeMode(enabled bool) {
	p.safeMode = enabled
	p.logger.Info("safe mode changed", zap.Bool("enabled", enabled))
}

// SetBashEnabled toggles shell execution at runtime.
func (p *Policy) SetBashEnabled(enabled bool) {
	p.enableBash = enabled
	p.logger.Info("bash execution changed", zap.Bool("enabled", enabled))
}

// SetToolsEnabled toggles tool execution at runtime.
func (p *Policy) SetToolsEnabled(enabled bool) {
	p.enableTools = enabled
	p.logger.Info("tool execution changed", zap.Bool("enabled", enabled))
}
