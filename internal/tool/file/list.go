package file

import (
	"context"
	"os"
	"time"

	"github.com/Cyclone1070/lmcode/internal/security"
	"github.com/Cyclone1070/lmcode/internal/tool"
)

// ListTool lists the direct children of a directory, no recursion.
type ListTool struct {
	policy *security.Policy
}

func NewListTool(policy *security.Policy) *ListTool {
	if policy == nil {
		panic("file.NewListTool: policy is required")
	}
	return &ListTool{policy: policy}
}

func (t *ListTool) Declaration() tool.Declaration {
	return tool.Declaration{
		Name:        "file_list",
		Description: "List files in a directory",
		Params: map[string]tool.ParamSpec{
			"directory": {Type: "string", Description: "Directory to list, defaults to the workspace root"},
		},
	}
}

func (t *ListTool) Run(ctx context.Context, params map[string]any) tool.Result {
	req, err := tool.DecodeParams[ListRequest](params)
	if err != nil {
		return tool.Errorf("%v", err)
	}
	if req.Directory == "" {
		req.Directory = "."
	}

	path, err := t.policy.SanitizePath(req.Directory, security.OpRead)
	if err != nil {
		return tool.Errorf("%v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return tool.Errorf("Directory not found: %s", path)
		}
		return tool.Errorf("%v", err)
	}
	if !info.IsDir() {
		return tool.Errorf("Not a directory: %s", path)
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return tool.Errorf("%v", err)
	}

	items := make([]map[string]any, 0, len(entries))
	for _, entry := range entries {
		entryInfo, err := entry.Info()
		if err != nil {
			continue
		}
		item := map[string]any{
			"name":          entry.Name(),
			"type":          entryType(entry.IsDir()),
			"size":          nil,
			"last_modified": entryInfo.ModTime().Format(time.RFC3339),
		}
		if !entry.IsDir() {
			item["size"] = entryInfo.Size()
		}
		items = append(items, item)
	}

	return tool.Success(map[string]any{
		"directory":   path,
		"items_count": len(items),
		"items":       items,
	})
}

func entryType(isDir bool) string {
	if isDir {
		return "directory"
	}
	return "file"
}
