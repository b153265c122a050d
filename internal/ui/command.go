// Package ui holds the terminal surface: styled console output, the REPL,
// slash commands and the input prompt. Commands are thin wrappers over the
// core packages; no business logic lives here.
package ui

import (
	"context"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/Cyclone1070/lmcode/internal/config"
	"github.com/Cyclone1070/lmcode/internal/history"
	"github.com/Cyclone1070/lmcode/internal/provider"
	"github.com/Cyclone1070/lmcode/internal/security"
	"github.com/Cyclone1070/lmcode/internal/tool/service/executor"
)

// Env is everything a slash command may touch. LastResponse tracks the most
// recent assistant reply for /run and /save.
type Env struct {
	Config       *config.Config
	Policy       *security.Policy
	Client       provider.Client
	History      *history.History
	Console      *Console
	Executor     *executor.Executor
	Out          io.Writer
	Renderer     MarkdownRenderer
	LastResponse string
	Logger       *zap.Logger
}

// Command is one slash command. Run returns false when the REPL should exit.
type Command struct {
	Name    string
	Help    string
	Aliases []string
	Run     func(ctx context.Context, args string, env *Env) bool
}

// Registry maps slash command names and aliases to commands.
type Registry struct {
	commands map[string]*Command
	aliases  map[string]string
	order    []string
}

// NewRegistry builds a registry with the built-in commands.
func NewRegistry() *Registry {
	r := &Registry{
		commands: make(map[string]*Command),
		aliases:  make(map[string]string),
	}
	for _, cmd := range builtinCommands(r) {
		r.Register(cmd)
	}
	return r
}

func (r *Registry) Register(cmd *Command) {
	r.commands[cmd.Name] = cmd
	r.order = append(r.order, cmd.Name)
	for _, alias := range cmd.Aliases {
		r.aliases[alias] = cmd.Name
	}
}

func (r *Registry) lookup(name string) *Command {
	if canonical, ok := r.aliases[name]; ok {
		name = canonical
	}
	return r.commands[name]
}

// Execute parses and runs one slash command line. It returns false when the
// REPL should exit; unknown commands keep the loop alive.
func (r *Registry) Execute(ctx context.Context, line string, env *Env) bool {
	parts := strings.SplitN(strings.TrimSpace(line), " ", 2)
	name := strings.TrimPrefix(parts[0], "/")
	args := ""
	if len(parts) > 1 {
		args = parts[1]
	}

	cmd := r.lookup(name)
	if cmd == nil {
		env.Console.Infof("Unknown command: /%s. Type /help for available commands.", name)
		return true
	}

	if env.Logger != nil {
		env.Logger.Info("executing slash command",
			zap.String("command", cmd.Name), zap.String("args", args))
	}
	return cmd.Run(ctx, args, env)
}
