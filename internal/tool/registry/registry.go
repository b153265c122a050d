// Package registry maps tool names to handlers and enforces the configured
// allow-list before dispatch.
package registry

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/Cyclone1070/lmcode/internal/tool"
)

// Registry dispatches tool calls by name. Names absent from the allow-list
// are rejected before lookup, so an unknown name and a disallowed name get
// the same answer (fail closed).
type Registry struct {
	tools   map[string]tool.Tool
	allowed map[string]bool
	logger  *zap.Logger
}

// New creates a Registry permitting only the named tools.
func New(allowedTools []string, logger *zap.Logger) *Registry {
	if logger == nil {
		panic("registry.New: logger is required")
	}
	allowed := make(map[string]bool, len(allowedTools))
	for _, name := range allowedTools {
		allowed[name] = true
	}
	return &Registry{
		tools:   make(map[string]tool.Tool),
		allowed: allowed,
		logger:  logger,
	}
}

// Register adds a tool under its declared name.
func (r *Registry) Register(t tool.Tool) {
	if t == nil {
		panic("registry.Register: tool is nil")
	}
	name := t.Declaration().Name
	if name == "" {
		panic("registry.Register: tool has no name")
	}
	r.tools[name] = t
}

// Execute runs one tool call. Every failure mode comes back as an
// error-status result, including a panicking handler.
func (r *Registry) Execute(ctx context.Context, name string, params map[string]any) (result tool.Result) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("tool panicked",
				zap.String("tool", name), zap.Any("panic", rec))
			result = tool.Errorf("Error executing tool '%s': %v", name, rec)
		}
	}()

	if !r.allowed[name] {
		return tool.Errorf("Tool '%s' is not allowed or does not exist.", name)
	}

	t, ok := r.tools[name]
	if !ok {
		return tool.Errorf("Tool '%s' is not implemented.", name)
	}

	r.logger.Info("executing tool", zap.String("tool", name))
	return t.Run(ctx, params)
}

// Declarations returns the schemas of all registered tools, sorted by name.
func (r *Registry) Declarations() []tool.Declaration {
	decls := make([]tool.Declaration, 0, len(r.tools))
	for _, t := range r.tools {
		decls = append(decls, t.Declaration())
	}
	sort.Slice(decls, func(a, b int) bool { return decls[a].Name < decls[b].Name })
	return decls
}

// AllowedNames returns the allow-listed tool names, sorted.
func (r *Registry) AllowedNames() []string {
	names := make([]string, 0, len(r.allowed))
	for name := range r.allowed {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// String describes the registry for logs.
func (r *Registry) String() string {
	return fmt.Sprintf("registry(%d tools, %d allowed)", len(r.tools), len(r.allowed))
}
