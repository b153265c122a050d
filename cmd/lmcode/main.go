// Package main wires the lmcode CLI: configuration, security policy, tools,
// the Ollama client and the interactive REPL.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Cyclone1070/lmcode/internal/config"
	"github.com/Cyclone1070/lmcode/internal/history"
	"github.com/Cyclone1070/lmcode/internal/logging"
	"github.com/Cyclone1070/lmcode/internal/processor"
	"github.com/Cyclone1070/lmcode/internal/provider/ollama"
	"github.com/Cyclone1070/lmcode/internal/security"
	"github.com/Cyclone1070/lmcode/internal/session"
	"github.com/Cyclone1070/lmcode/internal/tool/batch"
	"github.com/Cyclone1070/lmcode/internal/tool/file"
	"github.com/Cyclone1070/lmcode/internal/tool/python"
	"github.com/Cyclone1070/lmcode/internal/tool/registry"
	"github.com/Cyclone1070/lmcode/internal/tool/service/executor"
	"github.com/Cyclone1070/lmcode/internal/tool/shell"
	"github.com/Cyclone1070/lmcode/internal/tool/sysinfo"
	"github.com/Cyclone1070/lmcode/internal/tool/web"
	"github.com/Cyclone1070/lmcode/internal/ui"
)

// flags collects the command line overrides applied on top of the config file.
type flags struct {
	model       string
	endpoint    string
	temperature float64
	workdir     string
	noBash      bool
	noTools     bool
	unsafe      bool
	autoSave    bool
	autoRun     bool
	verbose     bool
}

func main() {
	var f flags

	root := &cobra.Command{
		Use:   "lmcode",
		Short: "A coding assistant for local Ollama models",
		Long: "lmcode turns a local Ollama model into a coding assistant that can run\n" +
			"shell commands and tools the model requests through fenced code blocks.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), &f)
		},
	}

	root.Flags().StringVarP(&f.model, "model", "m", "", "model to use (overrides config)")
	root.Flags().StringVar(&f.endpoint, "endpoint", "", "Ollama endpoint URL (overrides config)")
	root.Flags().Float64VarP(&f.temperature, "temperature", "t", -1, "sampling temperature, 0.0-1.0")
	root.Flags().StringVarP(&f.workdir, "workdir", "w", "", "working directory for file operations")
	root.Flags().BoolVar(&f.noBash, "no-bash", false, "disable bash command execution")
	root.Flags().BoolVar(&f.noTools, "no-tools", false, "disable tool execution")
	root.Flags().BoolVar(&f.unsafe, "unsafe", false, "disable safe mode restrictions")
	root.Flags().BoolVar(&f.autoSave, "auto-save", false, "automatically save code blocks from responses")
	root.Flags().BoolVar(&f.autoRun, "auto-run", false, "automatically run Python code blocks")
	root.Flags().BoolVarP(&f.verbose, "verbose", "v", false, "mirror logs to stderr at debug level")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, f *flags) error {
	cfg, err := config.NewLoader().Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	applyFlags(cfg, f)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	workdir := cfg.Security.WorkingDirectory
	if err := os.MkdirAll(workdir, 0755); err != nil {
		return fmt.Errorf("creating workspace %s: %w", workdir, err)
	}

	logger, err := logging.New(workdir, f.verbose)
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck // stderr sync fails on some platforms

	policy := security.NewPolicy(cfg.Security, logger)
	exec := executor.New(workdir)
	shellRunner := shell.NewRunner(policy, exec, logger)

	tools := registry.New(cfg.Security.AllowedTools, logger)
	tools.Register(file.NewReadTool(policy))
	tools.Register(file.NewWriteTool(policy))
	tools.Register(file.NewListTool(policy))
	tools.Register(file.NewSearchTool(policy))
	tools.Register(file.NewGrepTool(policy))
	tools.Register(file.NewEditTool(policy))
	tools.Register(web.NewGetTool(policy))
	tools.Register(sysinfo.New(workdir))
	tools.Register(python.NewRunTool(policy, exec))
	tools.Register(batch.New(tools, shellRunner))

	console := ui.NewConsole(os.Stdout)
	proc := processor.New(&cfg.Processor, policy, shellRunner, tools, exec, console, logger)

	client := ollama.New(cfg.Provider.Endpoint, logger)
	if err := client.Ping(ctx); err != nil {
		logger.Error("ollama unreachable", zap.String("endpoint", cfg.Provider.Endpoint), zap.Error(err))
		return fmt.Errorf("could not connect to Ollama at %s; is it running? Start it with: ollama serve",
			cfg.Provider.Endpoint)
	}

	hist := history.New(cfg.History.MaxTokens, session.SystemPrompt, logger)
	sess := session.New(cfg, hist, client, proc, console, os.Stdout, logger)
	if err := sess.ValidateModel(ctx); err != nil {
		return err
	}

	renderer := newRenderer(logger)
	env := &ui.Env{
		Config:   cfg,
		Policy:   policy,
		Client:   client,
		History:  hist,
		Console:  console,
		Executor: exec,
		Out:      os.Stdout,
		Renderer: renderer,
		Logger:   logger,
	}

	logger.Info("lmcode starting",
		zap.String("model", cfg.Provider.Model),
		zap.String("endpoint", cfg.Provider.Endpoint),
		zap.String("workspace", workdir))

	return ui.NewREPL(env, sess).Run(ctx)
}

// applyFlags layers explicit command line overrides onto the loaded config.
func applyFlags(cfg *config.Config, f *flags) {
	if f.model != "" {
		cfg.Provider.Model = f.model
	}
	if f.endpoint != "" {
		cfg.Provider.Endpoint = f.endpoint
	}
	if f.temperature >= 0 {
		cfg.Provider.Temperature = f.temperature
	}
	if f.workdir != "" {
		cfg.Security.WorkingDirectory = f.workdir
	}
	if f.noBash {
		cfg.Security.EnableBash = false
	}
	if f.noTools {
		cfg.Security.EnableTools = false
	}
	if f.unsafe {
		cfg.Security.SafeMode = false
	}
	if f.autoSave {
		cfg.Processor.AutoSaveCode = true
	}
	if f.autoRun {
		cfg.Processor.AutoRunPython = true
	}
	if f.autoSave || f.autoRun {
		cfg.Processor.AutoExtractCode = true
	}
}

func newRenderer(logger *zap.Logger) ui.MarkdownRenderer {
	renderer, err := ui.NewGlamourRenderer()
	if err != nil {
		logger.Warn("markdown renderer unavailable, using plain output", zap.Error(err))
		return ui.PlainRenderer{}
	}
	return renderer
}
