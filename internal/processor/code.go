package processor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Cyclone1070/lmcode/internal/extract"
	"github.com/Cyclone1070/lmcode/internal/tool/service/executor"
)

// pythonRunTimeout bounds an auto-executed code block.
const pythonRunTimeout = 15 * time.Second

// languageExtensions maps a fence language tag to a file extension. Unknown
// tags fall back to .txt.
var languageExtensions = map[string]string{
	"python": ".py", "py": ".py",
	"javascript": ".js", "js": ".js",
	"typescript": ".ts", "ts": ".ts",
	"html": ".html",
	"css":  ".css",
	"c":    ".c",
	"cpp":  ".cpp", "c++": ".cpp",
	"java": ".java",
	"rust": ".rs",
	"go":   ".go",
	"ruby": ".rb",
	"php":  ".php",
	"bash": ".sh", "shell": ".sh", "sh": ".sh",
	"sql":  ".sql",
	"json": ".json",
	"xml":  ".xml",
	"yaml": ".yml", "yml": ".yml",
	"markdown": ".md", "md": ".md",
	"txt": ".txt",
}

func extensionFor(language string) string {
	if ext, ok := languageExtensions[strings.ToLower(language)]; ok {
		return ext
	}
	return ".txt"
}

// processCodeBlocks auto-runs and auto-saves bare code blocks. Shell and tool
// blocks never reach this stage; the extractor consumes them.
func (p *Processor) processCodeBlocks(ctx context.Context, text string) []Result {
	var results []Result
	for _, block := range extract.CodeBlocks(text) {
		lang := strings.ToLower(block.Language)

		if (lang == "python" || lang == "py") && p.cfg.AutoRunPython {
			results = append(results, p.runPythonBlock(ctx, block.Content))
		}
		if p.cfg.AutoSaveCode {
			if saved, ok := p.saveCodeBlock(block); ok {
				results = append(results, saved)
			}
		}
	}
	return results
}

func (p *Processor) runPythonBlock(ctx context.Context, code string) Result {
	p.console.Infof("Auto-executing Python code...")
	p.logger.Info("auto-executing python code")

	output, err := p.executePython(ctx, code)
	if err != nil {
		p.console.Errorf("Execution failed:")
		p.console.Plainf("%s", err.Error())
		p.logger.Error("python execution failed", zap.Error(err))
		return Result{
			Kind:     KindCodeExecuted,
			Language: "python",
			Success:  false,
			Error:    err.Error(),
		}
	}

	p.console.Successf("Execution successful:")
	p.console.Plainf("%s", output)
	p.logger.Info("python execution successful")
	return Result{
		Kind:     KindCodeExecuted,
		Language: "python",
		Success:  true,
		Output:   output,
	}
}

// executePython writes the code to a temp file and runs it. The returned
// error text is what the model sees in the followup.
func (p *Processor) executePython(ctx context.Context, code string) (string, error) {
	python, err := findPython()
	if err != nil {
		return "", errors.New("Execution not supported: Python executable not found.")
	}

	tempFile, err := os.CreateTemp("", "lmcode-*.py")
	if err != nil {
		return "", err
	}
	defer os.Remove(tempFile.Name())

	if _, err := tempFile.WriteString(code); err != nil {
		tempFile.Close()
		return "", err
	}
	tempFile.Close()

	res, err := p.executor.Run(ctx, []string{python, tempFile.Name()}, nil, pythonRunTimeout)
	if err != nil {
		if errors.Is(err, executor.ErrTimeout) {
			return "", fmt.Errorf("Execution timed out after %d seconds.", int(pythonRunTimeout.Seconds()))
		}
		return "", fmt.Errorf("Error executing code: %v", err)
	}
	if res.ExitCode != 0 {
		return "", fmt.Errorf("Execution error (code %d):\n%s", res.ExitCode, res.Stderr)
	}
	return res.Stdout, nil
}

func findPython() (string, error) {
	if path, err := exec.LookPath("python3"); err == nil {
		return path, nil
	}
	return exec.LookPath("python")
}

func (p *Processor) saveCodeBlock(block extract.CodeBlock) (Result, bool) {
	saveDir := p.policy.WorkingDirectory()
	if p.cfg.CodeDirectory != "" {
		saveDir = filepath.Join(saveDir, p.cfg.CodeDirectory)
		if err := os.MkdirAll(saveDir, 0o755); err != nil {
			p.console.Errorf("Could not create code directory: %v", err)
			p.logger.Error("code directory creation failed", zap.Error(err))
			return Result{}, false
		}
	}

	savePath := filepath.Join(saveDir, generateFilename(block.Content, block.Language))
	if err := os.WriteFile(savePath, []byte(block.Content), 0o644); err != nil {
		p.console.Errorf("Could not save code: %v", err)
		p.logger.Error("code save failed", zap.Error(err))
		return Result{}, false
	}

	p.console.Successf("Code saved to %s", savePath)
	p.logger.Info("code saved", zap.String("path", savePath))
	return Result{
		Kind:     KindCodeSaved,
		Language: block.Language,
		Path:     savePath,
	}, true
}

var (
	commentNameRe = regexp.MustCompile(`#\s*([\w\s]+)\.?`)
	nonWordRe     = regexp.MustCompile(`\W+`)
)

// generateFilename derives a name from a leading comment when there is one,
// otherwise falls back to a timestamped name.
func generateFilename(code, language string) string {
	firstLine := strings.SplitN(strings.TrimSpace(code), "\n", 2)[0]

	var name string
	if m := commentNameRe.FindStringSubmatch(firstLine); m != nil {
		name = nonWordRe.ReplaceAllString(strings.TrimSpace(strings.ToLower(m[1])), "_")
	} else {
		name = "code_" + time.Now().Format("20060102_150405")
	}
	return name + extensionFor(language)
}
