package file

import (
	"context"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/Cyclone1070/lmcode/internal/security"
	"github.com/Cyclone1070/lmcode/internal/tool"
)

// SearchTool finds files matching a glob pattern, newest first, honoring the
// workspace .gitignore.
type SearchTool struct {
	policy *security.Policy
}

func NewSearchTool(policy *security.Policy) *SearchTool {
	if policy == nil {
		panic("file.NewSearchTool: policy is required")
	}
	return &SearchTool{policy: policy}
}

func (t *SearchTool) Declaration() tool.Declaration {
	return tool.Declaration{
		Name:        "file_search",
		Description: "Search for files using glob patterns",
		Params: map[string]tool.ParamSpec{
			"pattern": {Type: "string", Required: true, Description: "Glob pattern matched against file names"},
			"path":    {Type: "string", Description: "Directory to search under, defaults to the workspace root"},
		},
	}
}

func (t *SearchTool) Run(ctx context.Context, params map[string]any) tool.Result {
	req, err := tool.DecodeParams[SearchRequest](params)
	if err != nil {
		return tool.Errorf("%v", err)
	}
	if req.Path == "" {
		req.Path = "."
	}

	root, err := t.policy.SanitizePath(req.Path, security.OpRead)
	if err != nil {
		return tool.Errorf("%v", err)
	}

	matches, err := findFiles(root, func(relPath string, d fs.DirEntry) (bool, error) {
		return matchPattern(req.Pattern, relPath, d.Name())
	})
	if err != nil {
		return tool.Errorf("%v", err)
	}

	relative := make([]string, len(matches))
	for i, m := range matches {
		relative[i] = m.relPath
	}

	return tool.Success(map[string]any{
		"pattern":     req.Pattern,
		"search_path": root,
		"matches":     relative,
		"count":       len(relative),
	})
}

// matchPattern applies a glob to one walked file. A leading **/ matches at
// any depth, a pattern containing a separator is matched against the
// root-relative path, and a bare pattern is matched against the file name.
func matchPattern(pattern, relPath, name string) (bool, error) {
	if rest, ok := strings.CutPrefix(pattern, "**/"); ok {
		segments := strings.Split(filepath.ToSlash(relPath), "/")
		for i := range segments {
			ok, err := filepath.Match(rest, strings.Join(segments[i:], "/"))
			if ok || err != nil {
				return ok, err
			}
		}
		return false, nil
	}
	if strings.Contains(pattern, "/") {
		return filepath.Match(pattern, filepath.ToSlash(relPath))
	}
	return filepath.Match(pattern, name)
}

type foundFile struct {
	relPath string
	modTime time.Time
}

// findFiles walks root collecting regular files accepted by match, skipping
// gitignored entries, and returns them sorted by modification time, newest
// first.
func findFiles(root string, match func(relPath string, d fs.DirEntry) (bool, error)) ([]foundFile, error) {
	ignore := newIgnoreMatcher(root)

	var found []foundFile
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // unreadable entries are skipped, not fatal
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil || rel == "." {
			return nil
		}
		if ignore.shouldIgnore(rel, d.IsDir()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		ok, matchErr := match(rel, d)
		if matchErr != nil {
			return matchErr
		}
		if !ok {
			return nil
		}
		info, infoErr := d.Info()
		if infoErr != nil {
			return nil
		}
		found = append(found, foundFile{relPath: rel, modTime: info.ModTime()})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(found, func(a, b int) bool {
		return found[a].modTime.After(found[b].modTime)
	})
	return found, nil
}
