package file

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/Cyclone1070/lmcode/internal/security"
	"github.com/Cyclone1070/lmcode/internal/tool"
)

// Per-file and per-search caps on reported grep matches.
const (
	maxMatchesPerFile = 10
	maxMatchedFiles   = 20
)

// GrepTool searches file contents with a regular expression.
type GrepTool struct {
	policy *security.Policy
}

func NewGrepTool(policy *security.Policy) *GrepTool {
	if policy == nil {
		panic("file.NewGrepTool: policy is required")
	}
	return &GrepTool{policy: policy}
}

func (t *GrepTool) Declaration() tool.Declaration {
	return tool.Declaration{
		Name:        "file_grep",
		Description: "Search for content in files using regular expressions",
		Params: map[string]tool.ParamSpec{
			"pattern": {Type: "string", Required: true, Description: "Regular expression to search for"},
			"path":    {Type: "string", Description: "Directory to search under, defaults to the workspace root"},
			"include": {Type: "string", Description: "Glob filter on file names, defaults to *"},
		},
	}
}

func (t *GrepTool) Run(ctx context.Context, params map[string]any) tool.Result {
	req, err := tool.DecodeParams[GrepRequest](params)
	if err != nil {
		return tool.Errorf("%v", err)
	}
	if req.Path == "" {
		req.Path = "."
	}
	if req.Include == "" {
		req.Include = "*"
	}

	root, err := t.policy.SanitizePath(req.Path, security.OpRead)
	if err != nil {
		return tool.Errorf("%v", err)
	}

	re, err := regexp.Compile(req.Pattern)
	if err != nil {
		return tool.Errorf("Invalid pattern: %v", err)
	}

	files, err := findFiles(root, func(relPath string, d fs.DirEntry) (bool, error) {
		return filepath.Match(req.Include, d.Name())
	})
	if err != nil {
		return tool.Errorf("%v", err)
	}

	var results []map[string]any
	for _, f := range files {
		data, readErr := os.ReadFile(filepath.Join(root, f.relPath))
		if readErr != nil {
			continue
		}
		content := strings.ToValidUTF8(string(data), "�")
		if !re.MatchString(content) {
			continue
		}

		var matches []map[string]any
		matchCount := 0
		for i, line := range strings.Split(content, "\n") {
			if re.MatchString(line) {
				matchCount++
				if len(matches) < maxMatchesPerFile {
					matches = append(matches, map[string]any{
						"line_number": i + 1,
						"line":        line,
					})
				}
			}
		}
		if len(matches) == 0 {
			continue
		}
		results = append(results, map[string]any{
			"file":        f.relPath,
			"matches":     matches,
			"match_count": matchCount,
		})
	}

	reported := results
	if len(reported) > maxMatchedFiles {
		reported = reported[:maxMatchedFiles]
	}

	return tool.Success(map[string]any{
		"pattern":              req.Pattern,
		"search_path":          root,
		"include":              req.Include,
		"matches":              reported,
		"total_files_searched": len(files),
		"total_files_matched":  len(results),
	})
}
