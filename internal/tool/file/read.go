// Package file implements the filesystem tools: read, write, list, edit,
// glob search and content grep. Every path goes through the security policy
// after resolution against the working directory.
package file

import (
	"context"
	"os"
	"strings"

	"github.com/Cyclone1070/lmcode/internal/security"
	"github.com/Cyclone1070/lmcode/internal/tool"
)

// MaxReadSize caps file_read at 10 MiB.
const MaxReadSize = 10 * 1024 * 1024

// ReadTool returns a file's full text content.
type ReadTool struct {
	policy *security.Policy
}

func NewReadTool(policy *security.Policy) *ReadTool {
	if policy == nil {
		panic("file.NewReadTool: policy is required")
	}
	return &ReadTool{policy: policy}
}

func (t *ReadTool) Declaration() tool.Declaration {
	return tool.Declaration{
		Name:        "file_read",
		Description: "Read a file and return its contents",
		Params: map[string]tool.ParamSpec{
			"path": {Type: "string", Required: true, Description: "Path to the file to read"},
		},
	}
}

func (t *ReadTool) Run(ctx context.Context, params map[string]any) tool.Result {
	req, err := tool.DecodeParams[ReadRequest](params)
	if err != nil {
		return tool.Errorf("%v", err)
	}

	path, err := t.policy.SanitizePath(req.Path, security.OpRead)
	if err != nil {
		return tool.Errorf("%v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return tool.Errorf("File not found: %s", path)
		}
		return tool.Errorf("%v", err)
	}
	if info.IsDir() {
		return tool.Errorf("Not a file: %s", path)
	}
	if info.Size() > MaxReadSize {
		return tool.Errorf("File too large (%.2f MB). Maximum size is 10MB.",
			float64(info.Size())/1024/1024)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return tool.Errorf("%v", err)
	}

	// Invalid bytes are replaced, never a read failure.
	content := strings.ToValidUTF8(string(data), "�")

	return tool.Success(map[string]any{
		"content": content,
		"size":    info.Size(),
		"path":    path,
	})
}
