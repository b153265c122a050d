package file

import (
	"context"
	"os"
	"path/filepath"

	"github.com/Cyclone1070/lmcode/internal/security"
	"github.com/Cyclone1070/lmcode/internal/tool"
)

// WriteTool writes content to a file, creating parent directories as needed.
type WriteTool struct {
	policy *security.Policy
}

func NewWriteTool(policy *security.Policy) *WriteTool {
	if policy == nil {
		panic("file.NewWriteTool: policy is required")
	}
	return &WriteTool{policy: policy}
}

func (t *WriteTool) Declaration() tool.Declaration {
	return tool.Declaration{
		Name:        "file_write",
		Description: "Write content to a file",
		Params: map[string]tool.ParamSpec{
			"path":    {Type: "string", Required: true, Description: "Path to the file to write"},
			"content": {Type: "string", Required: true, Description: "Content to write"},
		},
	}
}

func (t *WriteTool) Run(ctx context.Context, params map[string]any) tool.Result {
	if _, ok := params["content"]; !ok {
		return tool.Errorf("Missing required parameter: content")
	}

	req, err := tool.DecodeParams[WriteRequest](params)
	if err != nil {
		return tool.Errorf("%v", err)
	}

	path, err := t.policy.SanitizePath(req.Path, security.OpWrite)
	if err != nil {
		return tool.Errorf("%v", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return tool.Errorf("%v", err)
	}
	if err := os.WriteFile(path, []byte(req.Content), 0644); err != nil {
		return tool.Errorf("%v", err)
	}

	return tool.Success(map[string]any{
		"message": "Content written to " + path,
		"path":    path,
		"size":    len(req.Content),
	})
}
