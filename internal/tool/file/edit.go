package file

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/Cyclone1070/lmcode/internal/security"
	"github.com/Cyclone1070/lmcode/internal/tool"
)

// EditTool replaces a single exact occurrence of a string in a file. An
// empty old_string against a missing file creates it.
type EditTool struct {
	policy *security.Policy
}

func NewEditTool(policy *security.Policy) *EditTool {
	if policy == nil {
		panic("file.NewEditTool: policy is required")
	}
	return &EditTool{policy: policy}
}

func (t *EditTool) Declaration() tool.Declaration {
	return tool.Declaration{
		Name:        "edit",
		Description: "Edit a file by replacing a specific string",
		Params: map[string]tool.ParamSpec{
			"file_path":  {Type: "string", Required: true, Description: "Path to the file to edit"},
			"old_string": {Type: "string", Required: true, Description: "Exact text to replace; empty to create a new file"},
			"new_string": {Type: "string", Required: true, Description: "Replacement text"},
		},
	}
}

func (t *EditTool) Run(ctx context.Context, params map[string]any) tool.Result {
	// Key presence matters here: an empty old_string is meaningful (file
	// creation), so absence cannot be inferred from the zero value.
	for _, key := range []string{"file_path", "old_string", "new_string"} {
		if _, ok := params[key]; !ok {
			return tool.Errorf("Missing required parameter: %s", key)
		}
	}

	req, err := tool.DecodeParams[EditRequest](params)
	if err != nil {
		return tool.Errorf("%v", err)
	}

	path, err := t.policy.SanitizePath(req.FilePath, security.OpWrite)
	if err != nil {
		return tool.Errorf("%v", err)
	}

	info, statErr := os.Stat(path)
	exists := statErr == nil

	if !exists && req.OldString == "" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return tool.Errorf("%v", err)
		}
		if err := os.WriteFile(path, []byte(req.NewString), 0644); err != nil {
			return tool.Errorf("%v", err)
		}
		return tool.Success(map[string]any{
			"message": "Created new file: " + path,
			"path":    path,
		})
	}

	if !exists {
		return tool.Errorf("File not found: %s", path)
	}
	if info.IsDir() {
		return tool.Errorf("Not a file: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return tool.Errorf("%v", err)
	}
	content := strings.ToValidUTF8(string(data), "�")

	occurrences := strings.Count(content, req.OldString)
	if occurrences == 0 {
		return tool.Errorf("The specified text was not found in %s", path)
	}
	if occurrences > 1 {
		return tool.Errorf("The specified text appears %d times in %s. Please provide a more specific text to replace.",
			occurrences, path)
	}

	newContent := strings.Replace(content, req.OldString, req.NewString, 1)
	if err := os.WriteFile(path, []byte(newContent), 0644); err != nil {
		return tool.Errorf("%v", err)
	}

	return tool.Success(map[string]any{
		"message": "Successfully edited " + path,
		"path":    path,
	})
}
