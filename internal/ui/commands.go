package ui

import (
	"context"
	"errors"
	"fmt"
	"os"
	osexec "os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/Cyclone1070/lmcode/internal/extract"
	"github.com/Cyclone1070/lmcode/internal/tool/service/executor"
)

// runTimeout bounds /run executions.
const runTimeout = 10 * time.Second

func builtinCommands(r *Registry) []*Command {
	return []*Command{
		{
			Name: "help", Help: "Show available commands",
			Run: func(ctx context.Context, args string, env *Env) bool {
				var b strings.Builder
				b.WriteString("# Commands\n\n")
				for _, name := range r.order {
					cmd := r.commands[name]
					b.WriteString(fmt.Sprintf("- `/%s` - %s\n", cmd.Name, cmd.Help))
				}
				rendered, err := env.Renderer.Render(b.String())
				if err != nil {
					rendered = b.String()
				}
				fmt.Fprint(env.Out, rendered)
				return true
			},
		},
		{
			Name: "quit", Help: "Exit lmcode", Aliases: []string{"exit", "q"},
			Run: func(ctx context.Context, args string, env *Env) bool {
				fmt.Fprintln(env.Out, "Goodbye!")
				return false
			},
		},
		{
			Name: "clear", Help: "Clear the conversation history",
			Run: func(ctx context.Context, args string, env *Env) bool {
				env.History.Clear()
				env.Console.Infof("Conversation history cleared.")
				return true
			},
		},
		{
			Name: "models", Help: "List available models",
			Run: cmdModels,
		},
		{
			Name: "model", Help: "Show or switch the active model",
			Run: cmdModel,
		},
		{
			Name: "run", Help: "Extract and run the last code block",
			Run: cmdRun,
		},
		{
			Name: "save", Help: "Save the last response to a file",
			Run: cmdSave,
		},
		{
			Name: "config", Help: "Show current configuration",
			Run: cmdConfig,
		},
		{
			Name: "temp", Help: "Set temperature (0.0-1.0)",
			Run: cmdTemp,
		},
		{
			Name: "tools", Help: "List available tools and their status",
			Run: cmdTools,
		},
		{
			Name: "bash", Help: "Enable/disable bash execution", Aliases: []string{"toggle_bash"},
			Run: func(ctx context.Context, args string, env *Env) bool {
				env.Config.Security.EnableBash = !env.Config.Security.EnableBash
				env.Policy.SetBashEnabled(env.Config.Security.EnableBash)
				env.Console.Successf("Bash execution %s.", enabledWord(env.Config.Security.EnableBash))
				return true
			},
		},
		{
			Name: "toggle_tools", Help: "Enable/disable tools",
			Run: func(ctx context.Context, args string, env *Env) bool {
				env.Config.Security.EnableTools = !env.Config.Security.EnableTools
				env.Policy.SetToolsEnabled(env.Config.Security.EnableTools)
				env.Console.Successf("Tools %s.", enabledWord(env.Config.Security.EnableTools))
				return true
			},
		},
		{
			Name: "safe", Help: "Enable/disable safe mode", Aliases: []string{"toggle_safe"},
			Run: func(ctx context.Context, args string, env *Env) bool {
				env.Config.Security.SafeMode = !env.Config.Security.SafeMode
				env.Policy.SetSafeMode(env.Config.Security.SafeMode)
				env.Console.Successf("Safe mode %s.", enabledWord(env.Config.Security.SafeMode))
				if !env.Config.Security.SafeMode {
					env.Console.Infof("Warning: Disabling safe mode removes security restrictions.")
				}
				return true
			},
		},
		{
			Name: "auto_save", Help: "Enable/disable automatic code saving",
			Run: func(ctx context.Context, args string, env *Env) bool {
				proc := &env.Config.Processor
				proc.AutoSaveCode = !proc.AutoSaveCode
				proc.AutoExtractCode = proc.AutoSaveCode || proc.AutoRunPython
				env.Console.Successf("Auto-save code %s.", enabledWord(proc.AutoSaveCode))
				return true
			},
		},
		{
			Name: "auto_run", Help: "Enable/disable automatic Python execution",
			Run: func(ctx context.Context, args string, env *Env) bool {
				proc := &env.Config.Processor
				proc.AutoRunPython = !proc.AutoRunPython
				proc.AutoExtractCode = proc.AutoRunPython || proc.AutoSaveCode
				env.Console.Successf("Auto-run Python code %s.", enabledWord(proc.AutoRunPython))
				return true
			},
		},
		{
			Name: "list_code", Help: "List saved code files",
			Run: cmdListCode,
		},
		{
			Name: "workspace", Help: "Show the working directory and its contents",
			Run: cmdWorkspace,
		},
	}
}

func enabledWord(enabled bool) string {
	if enabled {
		return "enabled"
	}
	return "disabled"
}

func cmdModels(ctx context.Context, args string, env *Env) bool {
	names, err := env.Client.ListModels(ctx)
	if err != nil || len(names) == 0 {
		env.Console.Infof("No models found or couldn't retrieve model list.")
		return true
	}
	fmt.Fprintln(env.Out, BoldStyle.Render("Available models:"))
	for _, name := range names {
		marker := "  "
		if name == env.Config.Provider.Model {
			marker = "* "
		}
		fmt.Fprintln(env.Out, marker+name)
	}
	return true
}

func cmdModel(ctx context.Context, args string, env *Env) bool {
	newModel := strings.TrimSpace(args)
	if newModel == "" {
		env.Console.Infof("Current model: %s", env.Config.Provider.Model)
		return true
	}

	names, err := env.Client.ListModels(ctx)
	if err == nil && len(names) > 0 && !contains(names, newModel) {
		env.Console.Errorf("Error: Model '%s' not found.", newModel)
		env.Console.Plainf("Available models: %s", strings.Join(names, ", "))
		env.Console.Plainf("You may need to pull it first with: ollama pull %s", newModel)
		return true
	}

	env.Config.Provider.Model = newModel
	env.Console.Successf("Switched to model: %s", newModel)
	return true
}

func cmdRun(ctx context.Context, args string, env *Env) bool {
	blocks := extract.FencedBlocks(env.LastResponse)
	if len(blocks) == 0 {
		env.Console.Infof("No code blocks found in the last response.")
		return true
	}

	block := blocks[len(blocks)-1]
	env.Console.Plainf("Running %s code...", block.Language)

	output, err := runCodeBlock(ctx, env.Executor, block.Language, block.Content)
	if err != nil {
		env.Console.Errorf("Execution failed:")
		env.Console.Plainf("%s", err.Error())
		return true
	}
	env.Console.Successf("Execution successful:")
	env.Console.Plainf("%s", output)
	return true
}

// runCodeBlock executes one code block through an interpreter chosen by
// language tag. Unsupported languages are an error, not a crash.
func runCodeBlock(ctx context.Context, runner *executor.Executor, language, code string) (string, error) {
	var argv0 string
	switch strings.ToLower(language) {
	case "python", "py":
		for _, candidate := range []string{"python3", "python"} {
			if path, err := osexec.LookPath(candidate); err == nil {
				argv0 = path
				break
			}
		}
	case "bash", "shell", "sh":
		argv0 = "/bin/sh"
	case "javascript", "js":
		if path, err := osexec.LookPath("node"); err == nil {
			argv0 = path
		}
	}
	if argv0 == "" {
		return "", fmt.Errorf("Execution not supported for language '%s' or required executable not found.", language)
	}

	tempFile, err := os.CreateTemp("", "lmcode-run-*"+extensionForLanguage(language))
	if err != nil {
		return "", err
	}
	defer os.Remove(tempFile.Name())
	if _, err := tempFile.WriteString(code); err != nil {
		tempFile.Close()
		return "", err
	}
	tempFile.Close()

	res, err := runner.Run(ctx, []string{argv0, tempFile.Name()}, nil, runTimeout)
	if err != nil {
		if errors.Is(err, executor.ErrTimeout) {
			return "", fmt.Errorf("Execution timed out after %d seconds.", int(runTimeout.Seconds()))
		}
		return "", err
	}
	if res.ExitCode != 0 {
		return "", fmt.Errorf("Execution error (code %d):\n%s", res.ExitCode, res.Stderr)
	}
	return res.Stdout, nil
}

func extensionForLanguage(language string) string {
	switch strings.ToLower(language) {
	case "python", "py":
		return ".py"
	case "bash", "shell", "sh":
		return ".sh"
	case "javascript", "js":
		return ".js"
	}
	return ".txt"
}

func cmdSave(ctx context.Context, args string, env *Env) bool {
	if env.LastResponse == "" {
		env.Console.Infof("No response to save.")
		return true
	}

	path := strings.TrimSpace(args)
	if path == "" {
		path = fmt.Sprintf("response_%s.md", time.Now().Format("20060102_150405"))
	}
	if strings.HasPrefix(path, "~") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}

	if err := os.WriteFile(path, []byte(env.LastResponse), 0o644); err != nil {
		env.Console.Errorf("Error saving file: %v", err)
		return true
	}
	env.Console.Successf("Response saved to %s", path)
	return true
}

func cmdConfig(ctx context.Context, args string, env *Env) bool {
	cfg := env.Config
	fmt.Fprintln(env.Out, BoldStyle.Render("Current configuration:"))
	fmt.Fprintf(env.Out, "  endpoint: %s\n", cfg.Provider.Endpoint)
	fmt.Fprintf(env.Out, "  model: %s\n", cfg.Provider.Model)
	fmt.Fprintf(env.Out, "  temperature: %g\n", cfg.Provider.Temperature)
	fmt.Fprintf(env.Out, "  max_tokens: %d\n", cfg.Provider.MaxTokens)
	fmt.Fprintf(env.Out, "  safe_mode: %t\n", cfg.Security.SafeMode)
	fmt.Fprintf(env.Out, "  enable_bash: %t\n", cfg.Security.EnableBash)
	fmt.Fprintf(env.Out, "  enable_tools: %t\n", cfg.Security.EnableTools)
	fmt.Fprintf(env.Out, "  working_directory: %s\n", cfg.Security.WorkingDirectory)
	fmt.Fprintf(env.Out, "  auto_extract_code: %t\n", cfg.Processor.AutoExtractCode)
	fmt.Fprintf(env.Out, "  auto_run_python: %t\n", cfg.Processor.AutoRunPython)
	fmt.Fprintf(env.Out, "  auto_save_code: %t\n", cfg.Processor.AutoSaveCode)
	fmt.Fprintf(env.Out, "  process_followup_commands: %t\n", cfg.Processor.ProcessFollowupCommands)
	fmt.Fprintf(env.Out, "  max_followup_depth: %d\n", cfg.Processor.MaxFollowupDepth)
	fmt.Fprintf(env.Out, "  history max_tokens: %d\n", cfg.History.MaxTokens)
	return true
}

func cmdTemp(ctx context.Context, args string, env *Env) bool {
	value, err := strconv.ParseFloat(strings.TrimSpace(args), 64)
	if err != nil {
		env.Console.Infof("Invalid temperature value")
		return true
	}
	if value < 0.0 || value > 1.0 {
		env.Console.Infof("Temperature must be between 0.0 and 1.0")
		return true
	}
	env.Config.Provider.Temperature = value
	env.Console.Successf("Temperature set to %g", value)
	return true
}

func cmdTools(ctx context.Context, args string, env *Env) bool {
	cfg := env.Config
	fmt.Fprintln(env.Out, BoldStyle.Render("Status:"))
	fmt.Fprintf(env.Out, "  Tools enabled: %t\n", cfg.Security.EnableTools)
	fmt.Fprintf(env.Out, "  Bash enabled: %t\n", cfg.Security.EnableBash)
	fmt.Fprintf(env.Out, "  Safe mode: %t\n", cfg.Security.SafeMode)
	fmt.Fprintf(env.Out, "  Auto-save code: %t\n", cfg.Processor.AutoSaveCode)
	fmt.Fprintf(env.Out, "  Auto-run Python: %t\n", cfg.Processor.AutoRunPython)

	if cfg.Security.EnableTools {
		fmt.Fprintln(env.Out, BoldStyle.Render("\nAllowed tools:"))
		for _, name := range cfg.Security.AllowedTools {
			fmt.Fprintf(env.Out, "  %s\n", AccentStyle.Render(name))
		}
	}
	if cfg.Security.EnableBash {
		fmt.Fprintln(env.Out, BoldStyle.Render("\nBash commands:"))
		fmt.Fprintln(env.Out, "  Use triple backtick blocks with bash, sh, or shell language tag.")
		if cfg.Security.SafeMode {
			fmt.Fprintln(env.Out, InfoStyle.Render("  Note: Safe mode is enabled. Certain commands are restricted."))
		}
	}
	return true
}

func cmdListCode(ctx context.Context, args string, env *Env) bool {
	dir := env.Policy.WorkingDirectory()
	if env.Config.Processor.CodeDirectory != "" {
		dir = filepath.Join(dir, env.Config.Processor.CodeDirectory)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		env.Console.Errorf("Error listing files: %v", err)
		return true
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() {
			files = append(files, entry.Name())
		}
	}
	if len(files) == 0 {
		env.Console.Infof("No code files found in %s", dir)
		return true
	}

	sort.Strings(files)
	fmt.Fprintln(env.Out, BoldStyle.Render(fmt.Sprintf("Saved code files in %s:", dir)))
	for _, name := range files {
		fmt.Fprintf(env.Out, "  %s\n", name)
	}
	return true
}

func cmdWorkspace(ctx context.Context, args string, env *Env) bool {
	dir := env.Policy.WorkingDirectory()
	fmt.Fprintf(env.Out, "Current working directory: %s\n", dir)

	entries, err := os.ReadDir(dir)
	if err != nil {
		env.Console.Errorf("Error reading directory: %v", err)
		return true
	}
	if len(entries) == 0 {
		fmt.Fprintln(env.Out, "\nDirectory is empty.")
		return true
	}

	fmt.Fprintf(env.Out, "\nContents (%d items):\n", len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			fmt.Fprintf(env.Out, "  \U0001F4C1 %s/\n", entry.Name())
			continue
		}
		size := int64(0)
		if info, err := entry.Info(); err == nil {
			size = info.Size()
		}
		fmt.Fprintf(env.Out, "  \U0001F4C4 %s (%d bytes)\n", entry.Name(), size)
	}
	return true
}

func contains(values []string, want string) bool {
	for _, value := range values {
		if value == want {
			return true
		}
	}
	return false
}
