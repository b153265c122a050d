// Package format renders processed action results as markdown for the
// synthetic followup prompt. Rendering is deterministic: same results in,
// same text out.
package format

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Cyclone1070/lmcode/internal/processor"
	"github.com/Cyclone1070/lmcode/internal/tool"
)

const (
	header  = "\n\nHere are the results of the commands and tools you requested:\n\n"
	trailer = "Please continue based on these results. What would you like to do next?\n"

	// webContentLimit caps web content in the followup view. The raw tool
	// result allows far more; the model only needs a sample.
	webContentLimit = 1000

	// genericFieldLimit caps string fields in the generic JSON rendering.
	genericFieldLimit = 1000
)

// extensionLanguages infers a fence language from a file extension.
var extensionLanguages = map[string]string{
	".py": "python", ".js": "javascript", ".html": "html", ".css": "css",
	".json": "json", ".md": "markdown", ".c": "c", ".cpp": "cpp",
	".h": "c", ".sh": "bash", ".txt": "", ".xml": "xml",
	".yml": "yaml", ".yaml": "yaml", ".java": "java", ".rb": "ruby",
	".php": "php", ".go": "go", ".rs": "rust", ".ts": "typescript",
}

// FollowUp renders the results as a followup prompt. The empty string means
// there is nothing to report, which is the caller's signal not to recurse.
func FollowUp(results []processor.Result) string {
	if len(results) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(header)
	for _, result := range results {
		switch result.Kind {
		case processor.KindBash:
			writeBashResult(&b, result)
		case processor.KindTool:
			writeToolResult(&b, result)
		case processor.KindCodeSaved:
			writeCodeSaved(&b, result)
		case processor.KindCodeExecuted:
			writeCodeExecuted(&b, result)
		}
	}
	b.WriteString(trailer)
	return b.String()
}

func writeBashResult(b *strings.Builder, result processor.Result) {
	res := result.Result
	fmt.Fprintf(b, "## Bash Command Result: `%s`\n\n", result.Command)

	if res.IsError() {
		fmt.Fprintf(b, "Command execution failed with error: %s\n\n", errorOr(res, "Unknown error"))
		if stderr := asString(res["stderr"]); stderr != "" {
			fmt.Fprintf(b, "**Error output:**\n```\n%s\n```\n\n", stderr)
		}
		return
	}

	b.WriteString("Command executed successfully.\n\n")
	if stdout := asString(res["stdout"]); stdout != "" {
		fmt.Fprintf(b, "**Output:**\n```\n%s\n```\n\n", stdout)
	} else {
		b.WriteString("Command produced no output.\n\n")
	}
}

func writeToolResult(b *strings.Builder, result processor.Result) {
	res := result.Result
	fmt.Fprintf(b, "## Tool Result: `%s`\n\n", result.Tool)

	if res.IsError() {
		if result.Tool == "python_run" {
			writePythonFailure(b, res)
			return
		}
		fmt.Fprintf(b, "Tool execution failed with error: %s\n\n", errorOr(res, "Unknown error"))
		return
	}

	b.WriteString("Tool executed successfully.\n\n")
	switch result.Tool {
	case "file_read":
		writeFileRead(b, res)
	case "file_list":
		writeFileList(b, res)
	case "web_get":
		writeWebGet(b, res)
	case "sys_info":
		writeSysInfo(b, res)
	case "python_run":
		writePythonRun(b, res)
	default:
		writeGeneric(b, res)
	}
}

func writeFileRead(b *strings.Builder, res tool.Result) {
	path := asString(res["path"])
	language := extensionLanguages[strings.ToLower(filepath.Ext(path))]
	fmt.Fprintf(b, "**File content (%s):**\n```%s\n%s\n```\n\n",
		path, language, asString(res["content"]))
}

func writeFileList(b *strings.Builder, res tool.Result) {
	fmt.Fprintf(b, "**Directory contents of %s:**\n\n", asString(res["directory"]))

	items := asMapSlice(res["items"])
	sort.SliceStable(items, func(a, c int) bool {
		aDir := asString(items[a]["type"]) == "directory"
		cDir := asString(items[c]["type"]) == "directory"
		if aDir != cDir {
			return aDir
		}
		return strings.ToLower(asString(items[a]["name"])) < strings.ToLower(asString(items[c]["name"]))
	})

	for _, item := range items {
		name := asString(item["name"])
		if asString(item["type"]) == "directory" {
			fmt.Fprintf(b, "- \U0001F4C1 %s/\n", name)
			continue
		}
		sizeSuffix := ""
		if size, ok := asInt(item["size"]); ok {
			sizeSuffix = fmt.Sprintf(" (%d bytes)", size)
		}
		fmt.Fprintf(b, "- \U0001F4C4 %s%s\n", name, sizeSuffix)
	}
	b.WriteString("\n")
}

func writeWebGet(b *strings.Builder, res tool.Result) {
	fmt.Fprintf(b, "**URL:** %s\n", asString(res["url"]))
	fmt.Fprintf(b, "**Status code:** %v\n", res["status_code"])
	fmt.Fprintf(b, "**Content type:** %s\n\n", asString(res["content_type"]))

	content := asString(res["content"])
	if len(content) > webContentLimit {
		content = content[:webContentLimit] + "... (content truncated)"
	}
	fmt.Fprintf(b, "**Content:**\n```\n%s\n```\n\n", content)
}

func writeSysInfo(b *strings.Builder, res tool.Result) {
	info, _ := res["info"].(map[string]any)
	b.WriteString("**System Information:**\n\n")
	fmt.Fprintf(b, "- OS: %s\n", asString(info["os"]))
	fmt.Fprintf(b, "- Architecture: %s\n", asString(info["architecture"]))
	fmt.Fprintf(b, "- Hostname: %s\n", asString(info["hostname"]))
	fmt.Fprintf(b, "- Runtime version: %s\n", asString(info["runtime_version"]))
	fmt.Fprintf(b, "- Current time: %s\n", asString(info["time"]))
	fmt.Fprintf(b, "- Working directory: %s\n\n", asString(info["working_directory"]))

	if env, ok := info["environment"].(map[string]string); ok && len(env) > 0 {
		b.WriteString("**Environment Variables:**\n\n")
		keys := make([]string, 0, len(env))
		for key := range env {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			fmt.Fprintf(b, "- %s=%s\n", key, env[key])
		}
		b.WriteString("\n")
	}
}

func writePythonRun(b *strings.Builder, res tool.Result) {
	b.WriteString("**Python Script Execution:**\n\n")
	script := asString(res["script_path"])
	if script == "" {
		script = "Unknown"
	}
	fmt.Fprintf(b, "Script: %s\n\n", script)

	b.WriteString("Execution successful.\n\n")
	if stdout := asString(res["stdout"]); stdout != "" {
		fmt.Fprintf(b, "**Output:**\n```\n%s\n```\n\n", stdout)
	} else {
		b.WriteString("Script executed without producing any output.\n\n")
	}
}

// writePythonFailure renders a failed python_run result, distinguishing
// syntax errors (with a caret pointing at the reported column) from runtime
// errors.
func writePythonFailure(b *strings.Builder, res tool.Result) {
	b.WriteString("**Python Script Execution:**\n\n")
	script := asString(res["script_path"])
	if script == "" {
		script = "Unknown"
	}
	fmt.Fprintf(b, "Script: %s\n\n", script)

	message := res.ErrorMessage()
	if strings.Contains(message, "Python syntax error") {
		fmt.Fprintf(b, "**Syntax Error:**\n%s\n\n", message)

		line, hasLine := asInt(res["line"])
		text := asString(res["text"])
		if hasLine && text != "" {
			fmt.Fprintf(b, "Line %d: `%s`\n", line, strings.TrimRight(text, "\n"))
			if offset, ok := asInt(res["offset"]); ok && offset > 0 {
				pointer := strings.Repeat(" ", offset-1) + "^"
				fmt.Fprintf(b, "`%s`\n\n", pointer)
			}
		}
		if code := asString(res["code"]); code != "" {
			fmt.Fprintf(b, "**Code with error:**\n```python\n%s\n```\n\n", code)
		}
		return
	}

	returncode := any("Unknown")
	if rc, ok := asInt(res["returncode"]); ok {
		returncode = rc
	}
	fmt.Fprintf(b, "Execution failed with error code: %v\n\n", returncode)
	if stderr := asString(res["stderr"]); stderr != "" {
		fmt.Fprintf(b, "**Error:**\n```\n%s\n```\n\n", stderr)
	}
	if stdout := asString(res["stdout"]); stdout != "" {
		fmt.Fprintf(b, "**Output before error:**\n```\n%s\n```\n\n", stdout)
	}
}

func writeGeneric(b *strings.Builder, res tool.Result) {
	display := make(map[string]any, len(res))
	for key, value := range res {
		if s, ok := value.(string); ok && len(s) > genericFieldLimit {
			display[key] = fmt.Sprintf("[%d characters]", len(s))
			continue
		}
		display[key] = value
	}
	encoded, err := json.MarshalIndent(display, "", "  ")
	if err != nil {
		fmt.Fprintf(b, "**Result:** %v\n\n", res)
		return
	}
	fmt.Fprintf(b, "**Result:**\n```json\n%s\n```\n\n", encoded)
}

func writeCodeSaved(b *strings.Builder, result processor.Result) {
	fmt.Fprintf(b, "## Code Saved: `%s`\n\n", filepath.Base(result.Path))
	fmt.Fprintf(b, "A %s code file was saved to: %s\n\n", result.Language, result.Path)
}

func writeCodeExecuted(b *strings.Builder, result processor.Result) {
	fmt.Fprintf(b, "## Code Execution: %s\n\n", result.Language)

	if result.Success {
		b.WriteString("Code executed successfully.\n\n")
		if result.Output != "" {
			fmt.Fprintf(b, "**Output:**\n```\n%s\n```\n\n", result.Output)
		} else {
			b.WriteString("No output was produced.\n\n")
		}
		return
	}

	b.WriteString("Code execution failed.\n\n")
	if result.Error != "" {
		fmt.Fprintf(b, "**Error:**\n```\n%s\n```\n\n", result.Error)
	}
}

func errorOr(res tool.Result, fallback string) string {
	if message := res.ErrorMessage(); message != "" {
		return message
	}
	return fallback
}

func asString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case *string:
		if s != nil {
			return *s
		}
	}
	return ""
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	case *int:
		if n != nil {
			return *n, true
		}
	}
	return 0, false
}

func asMapSlice(v any) []map[string]any {
	switch items := v.(type) {
	case []map[string]any:
		out := make([]map[string]any, len(items))
		copy(out, items)
		return out
	case []any:
		out := make([]map[string]any, 0, len(items))
		for _, item := range items {
			if m, ok := item.(map[string]any); ok {
				out = append(out, m)
			}
		}
		return out
	}
	return nil
}
